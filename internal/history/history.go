package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

const (
	FileName           = "history.json"
	ConfirmationPhrase = "DELETE ALL"
	TimestampLayout    = "2006-01-02 15:04:05"
	defaultFileMode    = 0644
)

var (
	ErrIndexOutOfRange      = errors.New("history index out of range")
	ErrConfirmationMismatch = errors.New("confirmation phrase does not match")
	ErrFileMissing          = errors.New("file no longer exists")
	ErrMissingField         = errors.New("required history field is empty")
	ErrUnsafeFilename       = errors.New("filename points outside the media folder")
)

// Record is one completed download. Field names are the on-disk keys.
type Record struct {
	Timestamp   string `json:"timestamp"`
	OriginalURL string `json:"original_url"`
	Title       string `json:"title"`
	Format      string `json:"format"`
	Filename    string `json:"filename"`
	Size        string `json:"size"`
	IsImage     bool   `json:"is_image"`
}

// ClearReport lists what ClearAll did to the files referenced by the ledger.
type ClearReport struct {
	Deleted []string
	Missing []string
	Failed  map[string]error
}

func (r ClearReport) HasFailures() bool {
	return len(r.Failed) > 0
}

// Ledger is the append-only download log. Every mutation reads the whole
// document and rewrites it; there is a single writer.
type Ledger struct {
	path string
}

func Open(path string) *Ledger {
	return &Ledger{path: path}
}

func (l *Ledger) Path() string {
	return l.path
}

// LoadAll returns records in insertion order. A missing or malformed file
// yields an empty ledger.
func (l *Ledger) LoadAll() []Record {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Str("op", "history/LoadAll").Err(err).Msg("Error reading history, treating as empty")
		}
		return []Record{}
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warn().Str("op", "history/LoadAll").Err(err).Msg("Malformed history file, treating as empty")
		return []Record{}
	}
	if records == nil {
		records = []Record{}
	}
	return records
}

func (l *Ledger) save(records []Record) error {
	if records == nil {
		records = []Record{}
	}
	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating history directory: %v", err)
		}
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("error encoding history: %v", err)
	}
	if err := os.WriteFile(l.path, data, defaultFileMode); err != nil {
		return fmt.Errorf("error writing history: %v", err)
	}
	return nil
}

func (l *Ledger) Append(record Record) error {
	if record.Timestamp == "" || record.OriginalURL == "" || record.Filename == "" {
		return ErrMissingField
	}
	records := l.LoadAll()
	records = append(records, record)
	log.Debug().Str("op", "history/Append").Msgf("Recording %s", record.Filename)
	return l.save(records)
}

// storageIndex maps a newest-first display index onto the persisted order.
func storageIndex(displayIndex, length int) (int, error) {
	if displayIndex < 0 || displayIndex >= length {
		return 0, fmt.Errorf("%w: %d (have %d entries)", ErrIndexOutOfRange, displayIndex, length)
	}
	return length - 1 - displayIndex, nil
}

// Delete removes the entry shown at displayIndex. The file on disk is kept.
func (l *Ledger) Delete(displayIndex int) (Record, error) {
	records := l.LoadAll()
	idx, err := storageIndex(displayIndex, len(records))
	if err != nil {
		return Record{}, err
	}
	removed := records[idx]
	records = append(records[:idx], records[idx+1:]...)
	if err := l.save(records); err != nil {
		return Record{}, err
	}
	log.Debug().Str("op", "history/Delete").Msgf("Removed entry %s", removed.Filename)
	return removed, nil
}

// ClearAll deletes every referenced file under folder and empties the
// ledger. File errors are collected and never stop the sweep.
func (l *Ledger) ClearAll(confirmation, folder string) (ClearReport, error) {
	report := ClearReport{Failed: make(map[string]error)}
	if confirmation != ConfirmationPhrase {
		return report, ErrConfirmationMismatch
	}
	for _, record := range l.LoadAll() {
		if record.Filename == "" {
			continue
		}
		path, err := LocalPath(folder, record.Filename)
		if err != nil {
			log.Warn().Str("op", "history/ClearAll").Err(err).Msg("Skipping entry")
			report.Failed[record.Filename] = err
			continue
		}
		err = os.Remove(path)
		switch {
		case err == nil:
			report.Deleted = append(report.Deleted, record.Filename)
		case os.IsNotExist(err):
			report.Missing = append(report.Missing, record.Filename)
		default:
			log.Warn().Str("op", "history/ClearAll").Err(err).Msgf("Could not delete %s", path)
			report.Failed[record.Filename] = err
		}
	}
	if err := l.save([]Record{}); err != nil {
		return report, err
	}
	return report, nil
}

func (l *Ledger) Display() []Record {
	records := l.LoadAll()
	out := make([]Record, len(records))
	for i, record := range records {
		out[len(records)-1-i] = record
	}
	return out
}

func (l *Ledger) Get(displayIndex int) (Record, error) {
	records := l.LoadAll()
	idx, err := storageIndex(displayIndex, len(records))
	if err != nil {
		return Record{}, err
	}
	return records[idx], nil
}

// ResolvePath returns the on-disk location of the entry at displayIndex.
func (l *Ledger) ResolvePath(displayIndex int, folder string) (string, error) {
	record, err := l.Get(displayIndex)
	if err != nil {
		return "", err
	}
	path, err := LocalPath(folder, record.Filename)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return path, fmt.Errorf("%w: %s", ErrFileMissing, record.Filename)
	}
	return path, nil
}

// LocalPath places a recorded filename inside folder. Names with any
// directory component are rejected.
func LocalPath(folder, filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." || filepath.IsAbs(filename) || filepath.Base(filename) != filename {
		return "", fmt.Errorf("%w: %q", ErrUnsafeFilename, filename)
	}
	return filepath.Join(folder, filename), nil
}
