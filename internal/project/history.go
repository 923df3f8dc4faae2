package project

import (
	"encoding/json"
	"os"
	"time"
)

// DefaultHistoryLimit is the number of runs kept in the history file.
const DefaultHistoryLimit = 50

// RunRecord summarises one completed packing run.
type RunRecord struct {
	RunID      string    `json:"run_id"`
	Time       time.Time `json:"time"`
	Job        string    `json:"job,omitempty"`
	Paper      string    `json:"paper"`
	Heuristic  string    `json:"heuristic"`
	Items      int       `json:"items"`
	Placed     int       `json:"placed"`
	Pages      int       `json:"pages"`
	Efficiency float64   `json:"efficiency"`
	Outputs    []string  `json:"outputs,omitempty"`
}

// History is the list of recent runs, oldest first.
type History struct {
	Runs []RunRecord `json:"runs"`
}

// Append adds a record, dropping the oldest entries beyond limit.
// A limit of zero or less uses DefaultHistoryLimit.
func (h *History) Append(r RunRecord, limit int) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	h.Runs = append(h.Runs, r)
	if len(h.Runs) > limit {
		h.Runs = h.Runs[len(h.Runs)-limit:]
	}
}

// Latest returns up to n records, newest first.
func (h History) Latest(n int) []RunRecord {
	if n <= 0 || n > len(h.Runs) {
		n = len(h.Runs)
	}
	out := make([]RunRecord, 0, n)
	for i := len(h.Runs) - 1; i >= len(h.Runs)-n; i-- {
		out = append(out, h.Runs[i])
	}
	return out
}

// LoadHistory reads the history file. A missing file yields an empty history.
func LoadHistory(path string) (History, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return History{Runs: []RunRecord{}}, nil
		}
		return History{}, err
	}
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return History{}, err
	}
	if h.Runs == nil {
		h.Runs = []RunRecord{}
	}
	return h, nil
}

// SaveHistory writes the history file.
func SaveHistory(path string, h History) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}
	return writeJSON(path, data)
}

// RecordRun appends r to the history file at path.
func RecordRun(path string, r RunRecord, limit int) error {
	h, err := LoadHistory(path)
	if err != nil {
		return err
	}
	h.Append(r, limit)
	return SaveHistory(path, h)
}
