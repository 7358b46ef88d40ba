package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	EnvHome        = "CLIPSHR_HOME"
	EnvMediaFolder = "CLIPSHR_MEDIA_FOLDER"
	EnvProxy       = "CLIPSHR_PROXY"
)

// Overrides are process-level settings read from the environment. They are
// never written back to config.json.
type Overrides struct {
	Home        string
	MediaFolder string
	Proxy       string
}

// LoadEnv loads every existing .env file among dirs. Variables already set
// in the environment win over file values.
func LoadEnv(dirs ...string) {
	for _, dir := range dirs {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			log.Warn().Str("op", "config/env").Err(err).Msgf("Error loading %s", path)
			continue
		}
		log.Debug().Str("op", "config/env").Msgf("Loaded environment from %s", path)
	}
}

func ReadOverrides() Overrides {
	return Overrides{
		Home:        os.Getenv(EnvHome),
		MediaFolder: os.Getenv(EnvMediaFolder),
		Proxy:       os.Getenv(EnvProxy),
	}
}
