// Package report keeps a YAML record of a finished batch next to its output.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/fits2ser/internal/events"
)

const Version = "1.0"

// Report is one batch.
type Report struct {
	Version   string        `yaml:"version"`
	BatchID   string        `yaml:"batch_id"`
	Finished  time.Time     `yaml:"finished"`
	Total     int           `yaml:"total"`
	Succeeded int           `yaml:"succeeded"`
	Failed    int           `yaml:"failed"`
	Elapsed   time.Duration `yaml:"elapsed"`
	Jobs      []Entry       `yaml:"jobs"`
}

// Entry is one input file of the batch.
type Entry struct {
	Input    string        `yaml:"input"`
	Success  bool          `yaml:"success"`
	Frames   int           `yaml:"frames"`
	Video    string        `yaml:"video,omitempty"`
	Duration time.Duration `yaml:"duration"`
	Kind     string        `yaml:"kind,omitempty"`
	Step     string        `yaml:"step,omitempty"`
	Error    string        `yaml:"error,omitempty"`
}

// New builds a report from the outcomes and summary of one batch, in the
// order the outcomes arrived.
func New(summary events.BatchSummary, outcomes []events.JobOutcome) *Report {
	r := &Report{
		Version:   Version,
		BatchID:   summary.BatchID,
		Finished:  time.Now().UTC().Truncate(time.Second),
		Total:     summary.Total,
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
		Elapsed:   summary.Elapsed,
		Jobs:      make([]Entry, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		e := Entry{
			Input:    o.File,
			Success:  o.Success,
			Frames:   o.Frames,
			Video:    o.Video,
			Duration: o.Duration,
		}
		if o.Error != nil {
			e.Kind, e.Step, e.Error = o.Error.Kind, o.Error.Step, o.Error.Message
		}
		r.Jobs = append(r.Jobs, e)
	}
	return r
}

// Path returns where the report of batch id is stored inside dir.
func Path(dir, id string) string {
	return filepath.Join(dir, fmt.Sprintf("fits2ser_%s.yaml", id))
}

// Write writes a report to a YAML file
func Write(r *Report, path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Read reads a report from a YAML file
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, err
	}

	return &r, nil
}
