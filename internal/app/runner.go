package app

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/piwi3910/labelnest/internal/config"
	"github.com/piwi3910/labelnest/internal/engine"
	"github.com/piwi3910/labelnest/internal/importer"
	"github.com/piwi3910/labelnest/internal/metrics"
	"github.com/piwi3910/labelnest/internal/model"
	"github.com/piwi3910/labelnest/internal/project"
)

var (
	// ErrInput is wrapped by every problem with the item sources themselves
	// (bad item specs, unreadable or malformed item files, job files).
	ErrInput = errors.New("invalid input")
	// ErrNoItems is returned when no item source yielded anything to pack.
	ErrNoItems = errors.New("no items specified")
	// ErrHistoryDisabled is returned by History when no history file is set.
	ErrHistoryDisabled = errors.New("run history is disabled")
)

// Request names where the items for one run come from. Specs and ItemsFile
// may be combined; Job is exclusive with both.
type Request struct {
	ItemSpecs []string // "width,height[,quantity]"
	ItemsFile string   // CSV, XLSX or DXF item list
	Job       string   // Job name or path; supplies items and sheet settings
	SaveJob   string   // Job name or path to save the resolved request to
}

// Outcome describes a completed pack run.
type Outcome struct {
	RunID     string
	Heuristic engine.Heuristic
	Items     []model.Item
	Result    model.PackingResult
	Outputs   []OutputFile
	Elapsed   time.Duration
}

// Runner executes CLI commands against one resolved configuration.
type Runner struct {
	cfg     config.Config
	logger  *zap.Logger
	metrics *metrics.Recorder
	out     io.Writer
	jobsDir string

	now   func() time.Time
	newID func() string
}

// New creates a Runner. Summaries and tables are written to out; logs go to
// logger, which may be nil.
func New(cfg config.Config, logger *zap.Logger, out io.Writer) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
		out:     out,
		jobsDir: project.DefaultJobsDir(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Metrics returns the recorder the runner reports to.
func (r *Runner) Metrics() *metrics.Recorder {
	return r.metrics
}

// job is a fully resolved packing input.
type job struct {
	name      string
	items     []model.Item
	paper     model.PaperSize
	packing   model.PackingConfiguration
	heuristic engine.Heuristic

	// label names the heuristic for failure metrics when resolve fails.
	label string
}

// resolve loads the items and sheet settings for req. Values from a job
// file replace the configured paper, margins and heuristic.
func (r *Runner) resolve(req Request) (job, error) {
	if req.Job != "" && (len(req.ItemSpecs) > 0 || req.ItemsFile != "") {
		return job{}, fmt.Errorf("%w: --job cannot be combined with --item or --items-file", ErrInput)
	}
	if req.Job != "" {
		return r.loadJob(req.Job)
	}

	paper, err := r.cfg.PaperSize()
	if err != nil {
		return job{}, fmt.Errorf("%w: %v", ErrInput, err)
	}
	heuristic, err := r.cfg.ParsedHeuristic()
	if err != nil {
		return job{}, fmt.Errorf("%w: %v", ErrInput, err)
	}

	items, err := model.ParseItems(req.ItemSpecs)
	if err != nil {
		return job{}, fmt.Errorf("%w: %v", ErrInput, err)
	}
	if req.ItemsFile != "" {
		imported, err := r.importItems(req.ItemsFile)
		if err != nil {
			return job{}, err
		}
		items = append(items, imported...)
	}
	if len(items) == 0 {
		return job{}, ErrNoItems
	}

	return job{
		items:     items,
		paper:     paper,
		packing:   r.cfg.PackingConfiguration(),
		heuristic: heuristic,
	}, nil
}

func (r *Runner) loadJob(ref string) (job, error) {
	path := project.JobPath(ref)
	j, err := project.LoadJob(path)
	if err != nil {
		return job{label: unknownHeuristic}, fmt.Errorf("%w: load job: %v", ErrInput, err)
	}
	heuristic, err := engine.ParseHeuristic(j.Heuristic)
	if err != nil {
		return job{label: j.Heuristic}, fmt.Errorf("%w: job %s: %v", ErrInput, path, err)
	}
	paper, err := j.PaperSize()
	if err != nil {
		return job{label: heuristic.String()}, fmt.Errorf("%w: job %s: %v", ErrInput, path, err)
	}

	r.logger.Info("loaded job",
		zap.String("path", path),
		zap.String("name", j.Name),
		zap.Int("items", len(j.Items)))

	return job{
		name:      j.Name,
		items:     j.Items,
		paper:     paper,
		packing:   j.Configuration,
		heuristic: heuristic,
	}, nil
}

func (r *Runner) importItems(path string) ([]model.Item, error) {
	result := importer.Import(path)
	for _, w := range result.Warnings {
		r.logger.Warn("item import warning", zap.String("file", path), zap.String("warning", w))
	}
	if !result.OK() {
		return nil, fmt.Errorf("%w: import %s: %s", ErrInput, path, strings.Join(result.Errors, "; "))
	}
	r.logger.Info("imported items", zap.String("file", path), zap.Int("items", len(result.Items)))
	return result.Items, nil
}

// ─── Commands ───────────────────────────────────────────────

// Pack resolves the request, packs it, writes every configured output
// format and prints the summary table.
func (r *Runner) Pack(req Request) (Outcome, error) {
	j, err := r.resolve(req)
	if err != nil {
		label := j.label
		if label == "" {
			label = r.heuristicLabel()
		}
		r.recordFailure(label, err)
		return Outcome{}, err
	}

	outcome := Outcome{
		RunID:     r.newID(),
		Heuristic: j.heuristic,
		Items:     j.items,
	}

	packer := engine.New(j.heuristic, nil)
	packer.Logger = r.logger

	start := r.now()
	result, err := packer.Pack(j.items, j.paper, j.packing)
	outcome.Elapsed = r.now().Sub(start)
	if err != nil {
		r.recordFailure(j.heuristic.String(), err)
		return Outcome{}, err
	}
	outcome.Result = result

	r.logger.Info("packing complete",
		zap.String("run_id", outcome.RunID),
		zap.String("paper", j.paper.String()),
		zap.String("heuristic", j.heuristic.String()),
		zap.Int("pages", result.PageCount()),
		zap.Int("placed", result.TotalItemsPlaced()),
		zap.Float64("efficiency", result.OverallEfficiency()),
		zap.Duration("elapsed", outcome.Elapsed))

	outputs, err := r.writeOutputs(outcome)
	if err != nil {
		r.recordFailure(j.heuristic.String(), err)
		return Outcome{}, err
	}
	outcome.Outputs = outputs

	r.metrics.ObserveRun(j.heuristic.String(), result, outcome.Elapsed)
	r.flushMetrics()

	if req.SaveJob != "" {
		if err := r.saveJob(req.SaveJob, j); err != nil {
			return Outcome{}, err
		}
	}
	r.recordHistory(outcome, j)

	if err := WriteSummary(r.out, j.items, result); err != nil {
		return Outcome{}, err
	}
	for _, o := range outputs {
		fmt.Fprintf(r.out, "%s saved to: %s\n", strings.ToUpper(o.Format), o.Path)
	}
	return outcome, nil
}

// Compare packs the request under every heuristic and prints a table with
// the best one marked.
func (r *Runner) Compare(req Request) ([]engine.HeuristicComparison, error) {
	j, err := r.resolve(req)
	if err != nil {
		return nil, err
	}

	comparisons, err := engine.CompareHeuristics(j.items, j.paper, j.packing)
	if err != nil {
		return nil, err
	}

	best := engine.BestComparison(comparisons)
	if best >= 0 {
		r.logger.Info("heuristics compared",
			zap.Int("heuristics", len(comparisons)),
			zap.String("best", comparisons[best].Heuristic.String()))
	}
	if err := WriteComparison(r.out, comparisons, best); err != nil {
		return nil, err
	}
	return comparisons, nil
}

// History prints the most recent n runs, newest first. n <= 0 prints all.
func (r *Runner) History(n int) ([]project.RunRecord, error) {
	if r.cfg.HistoryFile == "" {
		return nil, ErrHistoryDisabled
	}
	h, err := project.LoadHistory(r.cfg.HistoryFile)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", r.cfg.HistoryFile, err)
	}
	records := h.Latest(n)
	if err := WriteHistory(r.out, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Sizes prints the built-in paper catalog.
func (r *Runner) Sizes() error {
	return WriteSizes(r.out, model.StandardPaperSizes())
}

// Backup writes every saved job and the run history to path.
func (r *Runner) Backup(path string) error {
	backup, err := project.ExportAllData(path, r.jobsDir, r.cfg.HistoryFile)
	if err != nil {
		return err
	}
	r.logger.Info("backup written",
		zap.String("path", path),
		zap.Int("jobs", len(backup.Jobs)),
		zap.Int("runs", len(backup.History.Runs)))
	_, err = fmt.Fprintf(r.out, "Backed up %d jobs and %d runs to %s\n", len(backup.Jobs), len(backup.History.Runs), path)
	return err
}

// Restore reads a backup written by Backup, restoring its jobs and merging
// its runs into the history.
func (r *Runner) Restore(path string) error {
	backup, err := project.ImportAllData(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInput, err)
	}
	if err := project.RestoreAllData(backup, r.jobsDir, r.cfg.HistoryFile); err != nil {
		return err
	}
	r.logger.Info("backup restored",
		zap.String("path", path),
		zap.Int("jobs", len(backup.Jobs)),
		zap.Int("runs", len(backup.History.Runs)))
	_, err = fmt.Fprintf(r.out, "Restored %d jobs and %d runs from %s\n", len(backup.Jobs), len(backup.History.Runs), path)
	return err
}

// ─── Bookkeeping ────────────────────────────────────────────

func (r *Runner) saveJob(ref string, j job) error {
	path := project.JobPath(ref)
	name := j.name
	if name == "" {
		name = jobName(ref)
	}
	saved := project.NewJob(name, j.paper, j.packing, j.heuristic.String(), j.items)
	if err := project.SaveJob(path, saved); err != nil {
		return fmt.Errorf("save job %s: %w", path, err)
	}
	r.logger.Info("job saved", zap.String("path", path))
	return nil
}

func (r *Runner) recordHistory(o Outcome, j job) {
	if r.cfg.HistoryFile == "" {
		return
	}
	paths := make([]string, len(o.Outputs))
	for i, out := range o.Outputs {
		paths[i] = out.Path
	}
	rec := project.RunRecord{
		RunID:      o.RunID,
		Time:       r.now().UTC(),
		Job:        j.name,
		Paper:      j.paper.String(),
		Heuristic:  o.Heuristic.String(),
		Items:      len(o.Items),
		Placed:     o.Result.TotalItemsPlaced(),
		Pages:      o.Result.PageCount(),
		Efficiency: o.Result.OverallEfficiency(),
		Outputs:    paths,
	}
	if err := project.RecordRun(r.cfg.HistoryFile, rec, project.DefaultHistoryLimit); err != nil {
		r.logger.Warn("failed to record run history", zap.String("path", r.cfg.HistoryFile), zap.Error(err))
	}
}

func (r *Runner) recordFailure(heuristic string, err error) {
	r.metrics.ObserveFailure(heuristic, failureKind(err))
	r.flushMetrics()
}

// unknownHeuristic labels failures of jobs that could not be read.
const unknownHeuristic = "unknown"

// heuristicLabel is the canonical name of the configured heuristic, or the
// raw value when it does not parse.
func (r *Runner) heuristicLabel() string {
	h, err := r.cfg.ParsedHeuristic()
	if err != nil {
		return r.cfg.Heuristic
	}
	return h.String()
}

// failureKind maps an error to its metrics outcome label.
func failureKind(err error) string {
	switch {
	case errors.Is(err, engine.ErrValidation), errors.Is(err, ErrInput), errors.Is(err, ErrNoItems):
		return metrics.OutcomeValidation
	case errors.Is(err, engine.ErrInvariant):
		return metrics.OutcomeInvariant
	default:
		return metrics.OutcomeError
	}
}

func (r *Runner) flushMetrics() {
	if r.cfg.MetricsFile == "" {
		return
	}
	if err := r.metrics.WriteTextfile(r.cfg.MetricsFile); err != nil {
		r.logger.Warn("failed to write metrics", zap.String("path", r.cfg.MetricsFile), zap.Error(err))
	}
}

// jobName derives a display name from a job reference.
func jobName(ref string) string {
	base := ref
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}
