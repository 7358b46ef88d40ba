package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/clipshr/internal/config"
	"github.com/tanq16/clipshr/internal/history"
	"github.com/tanq16/clipshr/internal/orchestrator"
	"github.com/tanq16/clipshr/internal/utils"
)

// State is the single owned instance of configuration and ledger for a run.
// Only the foreground loop mutates it.
type State struct {
	Home       string
	ConfigPath string
	Config     *config.Config
	Ledger     *history.Ledger
	Overrides  config.Overrides
}

// ResolveHome picks the flag value, then CLIPSHR_HOME, then the working
// directory.
func ResolveHome(flagHome string) (string, error) {
	home := flagHome
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("error resolving working directory: %v", err)
		}
		home = cwd
	}
	return filepath.Abs(home)
}

// Load reads config and opens the ledger under home, writing a default
// config when none exists and creating the media folder.
func Load(flagHome string) (*State, error) {
	if cwd, err := os.Getwd(); err == nil {
		config.LoadEnv(cwd)
	}
	home, err := ResolveHome(flagHome)
	if err != nil {
		return nil, err
	}
	config.LoadEnv(home)
	if err := utils.EnsureDir(home); err != nil {
		return nil, fmt.Errorf("error creating home directory: %v", err)
	}
	s := &State{
		Home:       home,
		ConfigPath: filepath.Join(home, config.FileName),
		Ledger:     history.Open(filepath.Join(home, history.FileName)),
		Overrides:  config.ReadOverrides(),
	}
	s.Config = config.Load(s.ConfigPath)
	if !utils.FileExists(s.ConfigPath) {
		if err := s.Flush(); err != nil {
			log.Warn().Str("op", "app/Load").Err(err).Msg("Could not write default config")
		}
	}
	if err := utils.EnsureDir(s.MediaFolder()); err != nil {
		return nil, fmt.Errorf("error creating media folder: %v", err)
	}
	log.Debug().Str("op", "app/Load").Msgf("Home %s, media folder %s", s.Home, s.MediaFolder())
	return s, nil
}

// MediaFolder is the absolute download folder. CLIPSHR_MEDIA_FOLDER wins
// over the stored setting without being persisted.
func (s *State) MediaFolder() string {
	if s.Overrides.MediaFolder != "" {
		if filepath.IsAbs(s.Overrides.MediaFolder) {
			return s.Overrides.MediaFolder
		}
		return filepath.Join(s.Home, s.Overrides.MediaFolder)
	}
	return s.Config.ResolveMediaFolder(s.Home)
}

func (s *State) Flush() error {
	return s.Config.Save(s.ConfigPath)
}

// RecordDownload appends the ledger entry for a finished download. Title
// falls back to the filename and formatLabel to the format id.
func (s *State) RecordDownload(url, title, formatLabel string, result orchestrator.Result) (history.Record, error) {
	if title == "" {
		title = result.Filename
	}
	if formatLabel == "" {
		formatLabel = result.FormatID
	}
	record := history.Record{
		Timestamp:   time.Now().Format(history.TimestampLayout),
		OriginalURL: url,
		Title:       title,
		Format:      formatLabel,
		Filename:    result.Filename,
		Size:        result.Size,
		IsImage:     result.IsImage,
	}
	if err := s.Ledger.Append(record); err != nil {
		return record, fmt.Errorf("error saving history: %w", err)
	}
	return record, nil
}

func (s *State) ClearHistory(confirmation string) (history.ClearReport, error) {
	return s.Ledger.ClearAll(confirmation, s.MediaFolder())
}

func (s *State) ResolveHistoryPath(displayIndex int) (string, error) {
	return s.Ledger.ResolvePath(displayIndex, s.MediaFolder())
}
