package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/hideseek/config"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir          string
	episodesFile *os.File

	headerWritten bool
}

// NewOutputManager creates an output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "episodes.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating episodes.csv: %w", err)
	}

	return &OutputManager{dir: dir, episodesFile: f}, nil
}

// WriteConfig saves the current configuration as YAML alongside the CSVs.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteEpisode appends an episode record to episodes.csv.
func (om *OutputManager) WriteEpisode(record EpisodeRecord) error {
	if om == nil {
		return nil
	}

	records := []EpisodeRecord{record}

	if !om.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.episodesFile); err != nil {
			return fmt.Errorf("writing episode: %w", err)
		}
		om.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.episodesFile); err != nil {
		return fmt.Errorf("writing episode: %w", err)
	}
	return nil
}

// Close flushes and closes the output files.
func (om *OutputManager) Close() error {
	if om == nil || om.episodesFile == nil {
		return nil
	}
	return om.episodesFile.Close()
}
