package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/labelnest/internal/app"
	"github.com/piwi3910/labelnest/internal/engine"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	base := []string{"--log-level", "error", "--history-file", filepath.Join(t.TempDir(), "history.json")}
	code := run(append(base, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunSizes(t *testing.T) {
	code, stdout, stderr := runCLI(t, "sizes")
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
	}
	for _, name := range []string{"A2", "A3", "A4", "A5", "A6"} {
		if !strings.Contains(stdout, name) {
			t.Fatalf("expected %s in output:\n%s", name, stdout)
		}
	}
}

func TestRunPackWritesJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "layout.pdf")
	code, stdout, stderr := runCLI(t, "pack",
		"-p", "A6", "-i", "40,30,3", "-i", "20,20",
		"-m", "0", "-g", "1", "--heuristic", "bl",
		"-o", out, "--format", "json,pdf")
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
	}
	if !strings.Contains(stdout, "Items placed: 4") {
		t.Fatalf("summary missing placed count:\n%s", stdout)
	}
	for _, path := range []string{out, strings.TrimSuffix(out, ".pdf") + ".json"} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to be written: %v", path, err)
		}
	}
}

func TestRunPackValidationExitCode(t *testing.T) {
	out := filepath.Join(t.TempDir(), "layout.pdf")
	code, _, stderr := runCLI(t, "pack", "-p", "A6", "-i", "300,300", "--no-rotation", "-o", out)
	if code != exitValidation {
		t.Fatalf("expected exit %d, got %d", exitValidation, code)
	}
	if !strings.Contains(stderr, "rotation is disabled") {
		t.Fatalf("expected validation reason in stderr, got %q", stderr)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("expected no output file, stat returned %v", err)
	}
}

func TestRunPackWithoutItems(t *testing.T) {
	code, _, stderr := runCLI(t, "pack", "-o", filepath.Join(t.TempDir(), "x.pdf"))
	if code != exitValidation {
		t.Fatalf("expected exit %d, got %d", exitValidation, code)
	}
	if !strings.Contains(stderr, "no items specified") {
		t.Fatalf("unexpected stderr %q", stderr)
	}
}

func TestRunCompare(t *testing.T) {
	code, stdout, stderr := runCLI(t, "compare", "-p", "A5", "-i", "60,40,5", "-i", "30,30,4")
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
	}
	for _, h := range engine.Heuristics() {
		if !strings.Contains(stdout, h.String()) {
			t.Fatalf("expected %s in comparison:\n%s", h, stdout)
		}
	}
}

func TestRunHistoryAfterPack(t *testing.T) {
	dir := t.TempDir()
	history := filepath.Join(dir, "history.json")
	var stdout, stderr bytes.Buffer

	args := []string{"--log-level", "error", "--history-file", history,
		"pack", "-i", "10,10", "-o", filepath.Join(dir, "a.json"), "-f", "json"}
	if code := run(args, &stdout, &stderr); code != exitOK {
		t.Fatalf("pack failed with %d: %s", code, stderr.String())
	}

	stdout.Reset()
	if code := run([]string{"--log-level", "error", "--history-file", history, "history"}, &stdout, &stderr); code != exitOK {
		t.Fatalf("history failed with %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "BestShortSideFit") {
		t.Fatalf("expected run in history:\n%s", stdout.String())
	}
}

func TestRunUnknownFlag(t *testing.T) {
	code, _, _ := runCLI(t, "pack", "--bogus")
	if code != exitError {
		t.Fatalf("expected exit %d, got %d", exitError, code)
	}
}

func TestRunBadConfig(t *testing.T) {
	code, _, stderr := runCLI(t, "pack", "-i", "10,10", "--heuristic", "worst-fit")
	if code != exitError {
		t.Fatalf("expected exit %d, got %d", exitError, code)
	}
	if !strings.Contains(stderr, "failed to load configuration") {
		t.Fatalf("unexpected stderr %q", stderr)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&engine.ValidationError{}, exitValidation},
		{fmt.Errorf("%w: bad", app.ErrInput), exitValidation},
		{app.ErrNoItems, exitValidation},
		{&engine.InvariantError{}, exitInvariant},
		{errors.New("disk full"), exitError},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Fatalf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRunBackupRequiresFile(t *testing.T) {
	code, _, _ := runCLI(t, "backup")
	if code != exitError {
		t.Fatalf("expected exit %d, got %d", exitError, code)
	}
}

func TestRunNoHistory(t *testing.T) {
	dir := t.TempDir()
	history := filepath.Join(dir, "history.json")
	var stdout, stderr bytes.Buffer

	args := []string{"--log-level", "error", "--history-file", history, "--no-history",
		"pack", "-i", "10,10", "-o", filepath.Join(dir, "a.json"), "-f", "json"}
	if code := run(args, &stdout, &stderr); code != exitOK {
		t.Fatalf("pack failed with %d: %s", code, stderr.String())
	}
	if _, err := os.Stat(history); !os.IsNotExist(err) {
		t.Fatalf("expected no history file, stat returned %v", err)
	}
}

func TestRunPackRejectsNegativeSpacing(t *testing.T) {
	for _, flag := range []string{"--margin=-3", "--gutter=-7"} {
		out := filepath.Join(t.TempDir(), "layout.json")
		code, _, stderr := runCLI(t, "pack", "-i", "10,10", flag, "-f", "json", "-o", out)
		if code != exitError {
			t.Fatalf("%s: expected exit %d, got %d", flag, exitError, code)
		}
		if !strings.Contains(stderr, "must be >= 0") {
			t.Fatalf("%s: unexpected stderr %q", flag, stderr)
		}
		if _, err := os.Stat(out); !os.IsNotExist(err) {
			t.Fatalf("%s: expected no output file, stat returned %v", flag, err)
		}
	}
}

func TestRunPackExplicitZeroMargin(t *testing.T) {
	out := filepath.Join(t.TempDir(), "layout.json")
	// 210x297 only fits A4 with no margin.
	code, _, stderr := runCLI(t, "pack", "-p", "A4", "-i", "210,297", "-m", "0", "-g", "0", "-f", "json", "-o", out)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
	}
}

func TestRunPackRotationFlagOverridesLowerLayers(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "labelnest.yaml")
	if err := os.WriteFile(cfgPath, []byte("allow_rotation: false\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// 250x60 fits A4 only when rotated.
	item := "250,60"

	code, _, _ := runCLI(t, "--config", cfgPath, "pack", "-p", "A4", "-i", item, "-f", "json", "-o", filepath.Join(dir, "a.json"))
	if code != exitValidation {
		t.Fatalf("YAML allow_rotation=false: expected exit %d, got %d", exitValidation, code)
	}

	code, _, stderr := runCLI(t, "--config", cfgPath, "pack", "-p", "A4", "-i", item, "--rotation", "-f", "json", "-o", filepath.Join(dir, "b.json"))
	if code != exitOK {
		t.Fatalf("--rotation over YAML: expected exit 0, got %d (stderr: %s)", code, stderr)
	}

	t.Setenv("LABELNEST_NO_ROTATION", "true")
	code, _, stderr = runCLI(t, "pack", "-p", "A4", "-i", item, "--rotation", "-f", "json", "-o", filepath.Join(dir, "c.json"))
	if code != exitOK {
		t.Fatalf("--rotation over env: expected exit 0, got %d (stderr: %s)", code, stderr)
	}
}
