package cmd

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"hostexport/internal/config"
)

func newExportFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "export"}
	addExportFlags(c)
	if err := c.Flags().Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return c
}

func TestApplyExportFlags(t *testing.T) {
	c := &config.Config{
		Token:      "env-token",
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-31",
		Debug:      "false",
		Accounting: "true",
		OutputDir:  "output",
	}

	applyExportFlags(newExportFlags(t, "--start", "2024-03-01", "--debug", "--accounting=false"), c)

	if c.StartDate != "2024-03-01" {
		t.Errorf("StartDate = %q", c.StartDate)
	}
	if c.EndDate != "2024-01-31" || c.Token != "env-token" || c.OutputDir != "output" {
		t.Errorf("unset flags must keep environment values: %+v", c)
	}
	if c.Debug != "true" || c.Accounting != "false" {
		t.Errorf("Debug = %q, Accounting = %q", c.Debug, c.Accounting)
	}
}

func TestExportDeps_OptionalTargets(t *testing.T) {
	deps, err := exportDeps(&config.Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("exportDeps() error = %v", err)
	}
	if deps.NewFetcher == nil {
		t.Error("fetcher factory is always set")
	}
	if deps.NewSheets != nil || deps.NewUploader != nil || deps.Accounts != nil {
		t.Error("optional targets must stay unset without configuration")
	}

	_, err = exportDeps(&config.Config{AccountMapFile: "does-not-exist.yaml"}, zerolog.Nop())
	if err == nil {
		t.Error("expected error for a missing account mapping file")
	}
}

func TestExportFailed(t *testing.T) {
	boom := errors.New("boom")

	if err := exportFailed(boom, false, zerolog.Nop()); err != nil {
		t.Errorf("non-strict failure should exit cleanly, got %v", err)
	}
	if err := exportFailed(boom, true, zerolog.Nop()); !errors.Is(err, boom) {
		t.Errorf("strict failure should return the error, got %v", err)
	}
}
