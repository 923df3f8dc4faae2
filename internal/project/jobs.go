package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/labelnest/internal/model"
)

// JobVersion is written to every saved job file.
const JobVersion = 1

// ErrEmptyJob is returned when a job file holds no items.
var ErrEmptyJob = errors.New("job has no items")

// Job is a reusable packing request: the items plus the sheet settings
// they were packed with.
type Job struct {
	Version       int                        `json:"version"`
	Name          string                     `json:"name"`
	Paper         string                     `json:"paper"`
	Configuration model.PackingConfiguration `json:"configuration"`
	Heuristic     string                     `json:"heuristic,omitempty"`
	Items         []model.Item               `json:"items"`
}

// NewJob builds a job from parsed inputs.
func NewJob(name string, paper model.PaperSize, cfg model.PackingConfiguration, heuristic string, items []model.Item) Job {
	return Job{
		Version:       JobVersion,
		Name:          name,
		Paper:         paper.String(),
		Configuration: cfg,
		Heuristic:     heuristic,
		Items:         append([]model.Item(nil), items...),
	}
}

// PaperSize parses the job's paper field.
func (j Job) PaperSize() (model.PaperSize, error) {
	return model.ParsePaperSize(j.Paper)
}

// JobPath resolves a job reference. A bare name such as "weekly" maps to
// DefaultJobsDir()/weekly.json; anything with a separator or extension is
// used as given.
func JobPath(ref string) string {
	if strings.ContainsRune(ref, os.PathSeparator) || strings.Contains(ref, "/") || filepath.Ext(ref) != "" {
		return ref
	}
	return filepath.Join(DefaultJobsDir(), ref+".json")
}

// SaveJob writes a job to path as indented JSON.
func SaveJob(path string, job Job) error {
	if job.Version == 0 {
		job.Version = JobVersion
	}
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return err
	}
	return writeJSON(path, data)
}

// LoadJob reads a job file. Unlike the history store a missing job file is
// an error.
func LoadJob(path string) (Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, err
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return Job{}, fmt.Errorf("parse job %s: %w", path, err)
	}
	if job.Version > JobVersion {
		return Job{}, fmt.Errorf("job %s: unsupported version %d", path, job.Version)
	}
	if len(job.Items) == 0 {
		return Job{}, fmt.Errorf("job %s: %w", path, ErrEmptyJob)
	}
	return job, nil
}
