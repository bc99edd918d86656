package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"hostexport/internal/config"
	"hostexport/internal/hospitable"
	"hostexport/internal/ledger"
	"hostexport/internal/logger"
	"hostexport/internal/pipeline"
	"hostexport/internal/sheets"
	"hostexport/internal/storage"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export reservations of a property for a date range",
	Long: `Fetch the reservations of one Hospitable property and write them as
CSV. Only accepted reservations are reported.

The reservations report is written to <output-dir>/export_<start>_to_<end>.csv.
With accounting enabled the ledger export is written to
<output-dir>/accounting_<start>_to_<end>.csv. In debug mode the raw API
response is kept under <debug-dir>/export_<start>_to_<end>.json.

Every setting may come from the environment:
  PAT                 - Hospitable personal access token
  PROPERTY_NAME       - Property name, resolved through the properties endpoint
  PROPERTY_ID         - Property id, skips the name lookup
  START_DATE          - First day of the range (YYYY-MM-DD)
  END_DATE            - Last day of the range (YYYY-MM-DD)
  DEBUG               - Keep the raw response and log at debug level
  ACCOUNTING          - Also write the accounting export
  ACCOUNT_MAP_FILE    - YAML file overriding ledger account names
  GOOGLE_SHEET_URL    - Also publish both tables to this spreadsheet
  GCS_OUTPUT_BUCKET   - Also upload the CSV files to this bucket

A failed run is logged and the command still exits 0, so scheduled runs
never abort their caller. Pass --strict to exit non-zero instead.`,
	Example: `  # Export January using settings from .env
  hostexport export

  # Explicit range with the accounting export
  hostexport export --property-name "Beach House" --start 2024-01-01 --end 2024-01-31 --accounting

  # Filter on check-in dates and keep the raw response
  hostexport export --date-query checkin --debug

  # Fail the process when the export fails
  hostexport export --strict`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addExportFlags(exportCmd)
}

func addExportFlags(c *cobra.Command) {
	c.Flags().String("token", "", "Hospitable personal access token (PAT)")
	c.Flags().String("property-name", "", "Property name (PROPERTY_NAME)")
	c.Flags().String("property-id", "", "Property id (PROPERTY_ID)")
	c.Flags().String("start", "", "Start date YYYY-MM-DD (START_DATE)")
	c.Flags().String("end", "", "End date YYYY-MM-DD (END_DATE)")
	c.Flags().Bool("debug", false, "Write the raw response and log at debug level (DEBUG)")
	c.Flags().Bool("accounting", false, "Also write the accounting export (ACCOUNTING)")
	c.Flags().String("date-query", "", "Date field the range applies to, e.g. checkin (DATE_QUERY)")
	c.Flags().String("output-dir", "", "Directory for CSV reports (OUTPUT_DIR)")
	c.Flags().String("debug-dir", "", "Directory for raw response dumps (DEBUG_DIR)")
	c.Flags().String("account-map", "", "YAML account mapping file (ACCOUNT_MAP_FILE)")
	c.Flags().String("sheet-url", "", "Google Sheets URL to publish to (GOOGLE_SHEET_URL)")
	c.Flags().String("gcs-bucket", "", "Cloud Storage bucket to upload to (GCS_OUTPUT_BUCKET)")
	c.Flags().Bool("strict", false, "Exit non-zero when the export fails")
	c.Flags().Bool("json", false, "Print the run result as JSON")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent(baseLog, "export")

	applyExportFlags(cmd, cfg)
	strict, _ := cmd.Flags().GetBool("strict")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	log.Info().
		Str("property_name", cfg.PropertyName).
		Str("property_id", cfg.PropertyID).
		Str("start_date", cfg.StartDate).
		Str("end_date", cfg.EndDate).
		Str("accounting", cfg.Accounting).
		Msg("Starting export")

	deps, err := exportDeps(cfg, log)
	if err != nil {
		return exportFailed(err, strict, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	startTime := time.Now()
	res, err := pipeline.New(cfg, deps, log).Run(ctx)
	if err != nil {
		return exportFailed(err, strict, log)
	}

	duration := time.Since(startTime)
	log.Info().
		Int("fetched", res.Fetched).
		Int("accepted", res.Accepted).
		Int("lines", res.Lines).
		Dur("duration", duration).
		Msg("Export completed successfully")

	if jsonOutput {
		return outputExportJSON(res, duration)
	}
	outputExportConsole(res, duration)
	return nil
}

// applyExportFlags lets explicitly set flags win over the environment.
func applyExportFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()

	for name, target := range map[string]*string{
		"token":         &c.Token,
		"property-name": &c.PropertyName,
		"property-id":   &c.PropertyID,
		"start":         &c.StartDate,
		"end":           &c.EndDate,
		"date-query":    &c.DateQuery,
		"output-dir":    &c.OutputDir,
		"debug-dir":     &c.DebugDir,
		"account-map":   &c.AccountMapFile,
		"sheet-url":     &c.GoogleSheetURL,
		"gcs-bucket":    &c.GCSOutputBucket,
	} {
		if flags.Changed(name) {
			*target, _ = flags.GetString(name)
		}
	}

	for name, target := range map[string]*string{
		"debug":      &c.Debug,
		"accounting": &c.Accounting,
	} {
		if flags.Changed(name) {
			v, _ := flags.GetBool(name)
			*target = strconv.FormatBool(v)
		}
	}
}

// exportDeps wires the real collaborators; optional targets stay nil when unset.
func exportDeps(c *config.Config, log zerolog.Logger) (pipeline.Deps, error) {
	deps := pipeline.Deps{
		NewFetcher: func(s config.Settings, runLog zerolog.Logger) pipeline.Fetcher {
			return hospitable.NewClient(hospitable.ClientConfig{
				BaseURL: c.APIURL,
				Token:   s.Token,
				Timeout: s.HTTPTimeout,
				Logger:  logger.WithComponent(runLog, "hospitable"),
			})
		},
	}

	if c.AccountMapFile != "" {
		accounts, err := ledger.LoadAccounts(c.AccountMapFile)
		if err != nil {
			log.Error().Err(err).Str("file", c.AccountMapFile).Msg("Failed to load account mapping")
			return deps, err
		}
		deps.Accounts = accounts
	}

	if c.GoogleSheetURL != "" {
		deps.NewSheets = func(ctx context.Context) (pipeline.TablePublisher, error) {
			return sheets.NewSheetsService(ctx, c.GoogleSheetURL, logger.WithComponent(log, "sheets"))
		}
	}

	if c.GCSOutputBucket != "" {
		deps.NewUploader = func(ctx context.Context) (storage.Uploader, error) {
			return storage.NewGCSUploader(ctx, c.GCSOutputBucket, logger.WithComponent(log, "storage"))
		}
	}

	return deps, nil
}

func exportFailed(err error, strict bool, log zerolog.Logger) error {
	if strict {
		return err
	}
	log.Error().Err(err).Msg("Export failed")
	fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
	return nil
}

func outputExportJSON(res *pipeline.Result, duration time.Duration) error {
	out := map[string]interface{}{
		"start_date":        res.Settings.StartDate.Format(config.DateLayout),
		"end_date":          res.Settings.EndDate.Format(config.DateLayout),
		"fetched":           res.Fetched,
		"accepted":          res.Accepted,
		"accounting_lines":  res.Lines,
		"reservations_file": res.ReservationsPath,
		"accounting_file":   res.AccountingPath,
		"debug_file":        res.DebugPath,
		"duration_seconds":  duration.Seconds(),
	}
	if res.Summary != nil {
		out["balance"] = res.Summary.Balance.StringFixed(2)
		out["unmapped_bookings"] = res.Summary.Unknown
	}

	jsonData, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(jsonData))
	return nil
}

func outputExportConsole(res *pipeline.Result, duration time.Duration) {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Export %s to %s\n",
		res.Settings.StartDate.Format(config.DateLayout),
		res.Settings.EndDate.Format(config.DateLayout))
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("Reservations fetched:  %d\n", res.Fetched)
	fmt.Printf("Reservations accepted: %d\n", res.Accepted)
	fmt.Printf("Reservations report:   %s\n", res.ReservationsPath)
	if res.DebugPath != "" {
		fmt.Printf("Raw response:          %s\n", res.DebugPath)
	}

	if res.Summary != nil {
		fmt.Println()
		fmt.Printf("Accounting report:     %s (%d lines)\n", res.AccountingPath, res.Lines)
		for _, t := range res.Summary.Totals {
			fmt.Printf("  %-45s %12s\n", t.Account, t.Total.StringFixed(2))
		}
		fmt.Printf("  %-45s %12s\n", "Balance", res.Summary.Balance.StringFixed(2))
		if len(res.Summary.Unknown) > 0 {
			fmt.Printf("Unmapped bookings:     %s\n", strings.Join(res.Summary.Unknown, ", "))
		}
	}

	fmt.Println()
	fmt.Printf("Completed in %.2f seconds\n", duration.Seconds())
}
