package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/piwi3910/labelnest/internal/app"
	"github.com/piwi3910/labelnest/internal/config"
	"github.com/piwi3910/labelnest/internal/engine"
	"github.com/piwi3910/labelnest/internal/logging"
)

const (
	exitOK         = 0
	exitError      = 1
	exitValidation = 2
	exitInvariant  = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// packFlags are shared by the pack and compare commands. The *Set fields
// record whether the user gave the flag, so explicit values always reach
// config validation.
type packFlags struct {
	paper     *string
	items     *[]string
	itemsFile *string
	job       *string
	margin    *float64
	gutter    *float64
	rotation  *bool
	heuristic *string

	marginSet   *bool
	gutterSet   *bool
	rotationSet *bool
}

func addPackFlags(cmd *kingpin.CmdClause) packFlags {
	f := packFlags{
		marginSet:   new(bool),
		gutterSet:   new(bool),
		rotationSet: new(bool),
	}
	f.paper = cmd.Flag("paper", "Paper size: A2-A6 or WIDTHxHEIGHT in mm").Short('p').String()
	f.items = cmd.Flag("item", "Item as width,height[,quantity] in mm (repeatable)").Short('i').Strings()
	f.itemsFile = cmd.Flag("items-file", "CSV, XLSX or DXF file listing items").ExistingFile()
	f.job = cmd.Flag("job", "Saved job name or path to pack instead of --item").String()
	f.margin = cmd.Flag("margin", "Page margin in mm").Short('m').IsSetByUser(f.marginSet).Float64()
	f.gutter = cmd.Flag("gutter", "Spacing between items in mm").Short('g').IsSetByUser(f.gutterSet).Float64()
	f.rotation = cmd.Flag("rotation", "Allow 90 degree rotation (use --no-rotation to disable)").
		IsSetByUser(f.rotationSet).Default("true").Bool()
	f.heuristic = cmd.Flag("heuristic", "Placement heuristic: bssf, blsf, baf or bl").Short('H').String()
	return f
}

func (f packFlags) apply(o *config.CLIOverrides) {
	if *f.paper != "" {
		o.Paper = f.paper
	}
	if *f.marginSet {
		o.Margin = f.margin
	}
	if *f.gutterSet {
		o.Gutter = f.gutter
	}
	if *f.rotationSet {
		o.AllowRotation = f.rotation
	}
	if *f.heuristic != "" {
		o.Heuristic = f.heuristic
	}
}

func (f packFlags) request() app.Request {
	return app.Request{
		ItemSpecs: *f.items,
		ItemsFile: *f.itemsFile,
		Job:       *f.job,
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	kingpinApp := kingpin.New("labelnest", "Label nesting - packs rectangular labels onto as few sheets as possible")
	kingpinApp.UsageWriter(stdout)
	kingpinApp.ErrorWriter(stderr)

	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	envFile := kingpinApp.Flag("env-file", "Path to a .env file (default: ./.env if present)").String()
	logLevel := kingpinApp.Flag("log-level", "Log level: debug, info, warn, error").String()
	logFormat := kingpinApp.Flag("log-format", "Log format: json or console").String()
	metricsFile := kingpinApp.Flag("metrics-file", "Write Prometheus metrics to this textfile after each run").String()
	historyFile := kingpinApp.Flag("history-file", "Run history file").String()
	recordHistory := kingpinApp.Flag("history", "Record run history (use --no-history to disable)").Default("true").Bool()

	packCmd := kingpinApp.Command("pack", "Pack items onto sheets and write the layout").Default()
	pack := addPackFlags(packCmd)
	output := packCmd.Flag("output", "Output path; other formats are written next to it").Short('o').String()
	formats := packCmd.Flag("format", "Output format: pdf, labels, json, xlsx, dxf (repeatable or comma-separated)").Short('f').Strings()
	saveJob := packCmd.Flag("save-job", "Save the items and settings as a job (name or path)").String()

	compareCmd := kingpinApp.Command("compare", "Pack with every heuristic and compare the results")
	compare := addPackFlags(compareCmd)

	sizesCmd := kingpinApp.Command("sizes", "List the built-in paper sizes")

	historyCmd := kingpinApp.Command("history", "Show recent pack runs")
	historyLimit := historyCmd.Flag("limit", "Number of runs to show (0 for all)").Short('n').Default("10").Int()

	backupCmd := kingpinApp.Command("backup", "Write every saved job and the run history to one file")
	backupPath := backupCmd.Arg("file", "Backup file to write").Required().String()

	restoreCmd := kingpinApp.Command("restore", "Restore jobs and run history from a backup file")
	restorePath := restoreCmd.Arg("file", "Backup file to read").Required().ExistingFile()

	command, err := kingpinApp.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
		EnvFile:    *envFile,
	}
	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}
	if *logFormat != "" {
		overrides.LogFormat = logFormat
	}
	if *metricsFile != "" {
		overrides.MetricsFile = metricsFile
	}
	if *historyFile != "" {
		overrides.HistoryFile = historyFile
	}
	if !*recordHistory {
		disabled := ""
		overrides.HistoryFile = &disabled
	}

	switch command {
	case packCmd.FullCommand():
		pack.apply(overrides)
		if *output != "" {
			overrides.Output = output
		}
		overrides.Formats = *formats
	case compareCmd.FullCommand():
		compare.apply(overrides)
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to load configuration: %v\n", err)
		return exitError
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize logger: %v\n", err)
		return exitError
	}
	defer func() {
		_ = logger.Sync()
	}()

	runner := app.New(cfg, logger, stdout)

	switch command {
	case packCmd.FullCommand():
		req := pack.request()
		req.SaveJob = *saveJob
		_, err = runner.Pack(req)
	case compareCmd.FullCommand():
		_, err = runner.Compare(compare.request())
	case sizesCmd.FullCommand():
		err = runner.Sizes()
	case historyCmd.FullCommand():
		_, err = runner.History(*historyLimit)
	case backupCmd.FullCommand():
		err = runner.Backup(*backupPath)
	case restoreCmd.FullCommand():
		err = runner.Restore(*restorePath)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode separates bad input from packer bugs and everything else.
func exitCode(err error) int {
	switch {
	case errors.Is(err, engine.ErrValidation), errors.Is(err, app.ErrInput), errors.Is(err, app.ErrNoItems):
		return exitValidation
	case errors.Is(err, engine.ErrInvariant):
		return exitInvariant
	default:
		return exitError
	}
}
