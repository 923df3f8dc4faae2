package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BackupVersion is written to every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for exporting every saved job and
// the run history to a single file.
type BackupData struct {
	Version   string      `json:"version"`
	CreatedAt string      `json:"created_at"`
	Jobs      []BackupJob `json:"jobs"`
	History   History     `json:"history"`
}

// BackupJob is a job together with the file name it was stored under.
type BackupJob struct {
	File string `json:"file"`
	Job  Job    `json:"job"`
}

// ExportAllData writes every job in jobsDir and the history at historyPath
// to exportPath. A missing jobs directory or history file is treated as
// empty. Unreadable job files abort the export.
func ExportAllData(exportPath, jobsDir, historyPath string) (BackupData, error) {
	jobs, err := loadJobsDir(jobsDir)
	if err != nil {
		return BackupData{}, err
	}

	history := History{Runs: []RunRecord{}}
	if historyPath != "" {
		history, err = LoadHistory(historyPath)
		if err != nil {
			return BackupData{}, fmt.Errorf("failed to read history: %w", err)
		}
	}

	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Jobs:      jobs,
		History:   history,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to marshal backup data: %w", err)
	}
	if err := writeJSON(exportPath, data); err != nil {
		return BackupData{}, fmt.Errorf("failed to write backup file: %w", err)
	}
	return backup, nil
}

func loadJobsDir(dir string) ([]BackupJob, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupJob{}, nil
		}
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	jobs := make([]BackupJob, 0, len(names))
	for _, name := range names {
		job, err := LoadJob(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, BackupJob{File: name, Job: job})
	}
	return jobs, nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	for _, j := range backup.Jobs {
		if j.File != filepath.Base(j.File) || filepath.Ext(j.File) != ".json" {
			return BackupData{}, fmt.Errorf("invalid backup file: bad job file name %q", j.File)
		}
	}
	if backup.Jobs == nil {
		backup.Jobs = []BackupJob{}
	}
	if backup.History.Runs == nil {
		backup.History.Runs = []RunRecord{}
	}
	return backup, nil
}

// RestoreAllData writes the backed-up jobs into jobsDir, overwriting jobs
// with the same file name, and merges the backed-up runs into the history
// at historyPath. Runs already present (by run ID) are skipped, and the
// merged history is ordered by time. An empty historyPath skips the history.
func RestoreAllData(backup BackupData, jobsDir, historyPath string) error {
	for _, j := range backup.Jobs {
		if err := SaveJob(filepath.Join(jobsDir, j.File), j.Job); err != nil {
			return fmt.Errorf("failed to restore job %s: %w", j.File, err)
		}
	}

	if historyPath == "" || len(backup.History.Runs) == 0 {
		return nil
	}

	current, err := LoadHistory(historyPath)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	seen := make(map[string]bool, len(current.Runs))
	for _, r := range current.Runs {
		seen[r.RunID] = true
	}
	merged := current.Runs
	for _, r := range backup.History.Runs {
		if !seen[r.RunID] {
			seen[r.RunID] = true
			merged = append(merged, r)
		}
	}
	sort.SliceStable(merged, func(i, k int) bool {
		return merged[i].Time.Before(merged[k].Time)
	})

	var h History
	for _, r := range merged {
		h.Append(r, DefaultHistoryLimit)
	}
	return SaveHistory(historyPath, h)
}
