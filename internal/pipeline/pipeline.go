// Package pipeline sequences one export run: validate, fetch, normalize,
// write the reservations report and, when enabled, derive and write the
// accounting export. Stages run strictly one after another.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"hostexport/internal/config"
	"hostexport/internal/hospitable"
	"hostexport/internal/ledger"
	"hostexport/internal/report"
	"hostexport/internal/reservation"
	"hostexport/internal/sheets"
	"hostexport/internal/storage"
)

// ErrInvalidConfig is returned when validation fails; no network call is made.
var ErrInvalidConfig = errors.New("invalid configuration")

// Fetcher is the part of the Hospitable client the pipeline uses.
type Fetcher interface {
	ResolvePropertyID(ctx context.Context, name string) (string, error)
	FetchReservations(ctx context.Context, q hospitable.ReservationQuery) (*hospitable.ReservationsResponse, []byte, error)
}

// TablePublisher receives a copy of each report table.
type TablePublisher interface {
	WriteTable(ctx context.Context, sheetName string, header []string, rows [][]string) error
}

// Deps builds the collaborators of a run. Factories are only called after
// validation succeeded; nil optional factories disable the target. The
// fetcher receives the run logger, raised to debug level in debug mode.
type Deps struct {
	NewFetcher  func(s config.Settings, log zerolog.Logger) Fetcher
	NewSheets   func(ctx context.Context) (TablePublisher, error)
	NewUploader func(ctx context.Context) (storage.Uploader, error)
	Accounts    *ledger.AccountTable
}

// Result describes what a run produced.
type Result struct {
	Settings         config.Settings
	Fetched          int
	Accepted         int
	Lines            int
	ReservationsPath string
	AccountingPath   string
	DebugPath        string
	Summary          *ledger.Summary
}

// Runner executes export runs for one configuration.
type Runner struct {
	cfg  *config.Config
	deps Deps
	log  zerolog.Logger
}

// New creates a runner. A nil account table falls back to the defaults.
func New(cfg *config.Config, deps Deps, log zerolog.Logger) *Runner {
	if deps.Accounts == nil {
		deps.Accounts = ledger.DefaultAccounts()
	}
	return &Runner{cfg: cfg, deps: deps, log: log}
}

// Run executes the pipeline, returning at the first failed stage.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	const op = "Run"

	settings, count := r.cfg.Validate(r.log)
	if count > 0 {
		r.log.Error().Int("errors", count).Msg("Configuration invalid, stopping before any API call")
		return nil, fmt.Errorf("%s: %w: %d error(s)", op, ErrInvalidConfig, count)
	}

	log := r.log
	if settings.Debug {
		log = log.Level(zerolog.DebugLevel)
	}

	res := &Result{Settings: settings}
	fetcher := r.deps.NewFetcher(settings, log)

	raws, err := r.fetch(ctx, fetcher, settings, res, log)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}

	records, err := reservation.Normalize(raws)
	if err != nil {
		log.Error().Err(err).Msg("Failed to normalize reservations")
		return res, fmt.Errorf("%s: %w", op, err)
	}
	res.Accepted = len(records)

	accepted := 0
	for _, raw := range raws {
		if raw.ReservationStatus.Current.Category == reservation.StatusAccepted {
			accepted++
		}
	}
	if accepted != len(records) {
		log.Warn().
			Int("accepted", accepted).
			Int("unique", len(records)).
			Msg("Duplicate booking codes in response, keeping the last occurrence")
	}

	log.Info().
		Int("fetched", res.Fetched).
		Int("accepted", res.Accepted).
		Msg("Reservations normalized")

	sorted := reservation.SortByCheckIn(records)
	res.ReservationsPath, err = report.WriteReservations(r.cfg.OutputDir, settings.ExportName(), sorted)
	if err != nil {
		log.Error().Err(err).Msg("Failed to write reservations report")
		return res, fmt.Errorf("%s: %w", op, err)
	}
	log.Info().Str("path", res.ReservationsPath).Msg("Reservations report written")

	var lines []ledger.Line
	if settings.Accounting {
		lines = ledger.Transform(records, r.deps.Accounts)
		res.Lines = len(lines)

		summary := ledger.Summarize(lines)
		res.Summary = &summary
		if len(summary.Unknown) > 0 {
			log.Warn().
				Strs("bookings", summary.Unknown).
				Msg("Accounting lines without a mapped account")
		}
		if !summary.Balance.IsZero() {
			log.Warn().Str("balance", summary.Balance.String()).Msg("Accounting export does not balance")
		}

		res.AccountingPath, err = report.WriteAccounting(r.cfg.OutputDir, settings.AccountingName(), lines)
		if err != nil {
			log.Error().Err(err).Msg("Failed to write accounting report")
			return res, fmt.Errorf("%s: %w", op, err)
		}
		log.Info().
			Str("path", res.AccountingPath).
			Int("lines", res.Lines).
			Msg("Accounting report written")
	}

	if err := r.publish(ctx, res, sorted, lines, log); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}

	return res, nil
}

func (r *Runner) fetch(ctx context.Context, fetcher Fetcher, s config.Settings, res *Result, log zerolog.Logger) ([]reservation.Raw, error) {
	propertyID := s.PropertyID
	if propertyID == "" {
		id, err := fetcher.ResolvePropertyID(ctx, s.PropertyName)
		if err != nil {
			log.Error().Err(err).Str("property", s.PropertyName).Msg("Failed to resolve property")
			return nil, err
		}
		propertyID = id
	}

	resp, body, err := fetcher.FetchReservations(ctx, hospitable.ReservationQuery{
		PropertyID: propertyID,
		StartDate:  s.StartDate.Format(config.DateLayout),
		EndDate:    s.EndDate.Format(config.DateLayout),
		DateQuery:  r.cfg.DateQuery,
	})
	if err != nil {
		log.Error().Err(err).Str("property_id", propertyID).Msg("Failed to fetch reservations")
		return nil, err
	}
	res.Fetched = len(resp.Data)

	if s.Debug {
		path, err := hospitable.DumpDebug(r.cfg.DebugDir, s.ExportName(), body)
		if err != nil {
			// The dump is diagnostic only
			log.Warn().Err(err).Msg("Failed to write debug dump")
		} else {
			res.DebugPath = path
			log.Debug().Str("path", path).Msg("Raw response written")
		}
	}

	return resp.Data, nil
}

func (r *Runner) publish(ctx context.Context, res *Result, records []reservation.Record, lines []ledger.Line, log zerolog.Logger) error {
	if r.deps.NewSheets != nil {
		pub, err := r.deps.NewSheets(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to connect to Google Sheets")
			return err
		}
		if err := pub.WriteTable(ctx, sheets.ReservationsSheet, report.ReservationHeader, report.ReservationRows(records)); err != nil {
			log.Error().Err(err).Msg("Failed to publish reservations to Google Sheets")
			return err
		}
		if res.AccountingPath != "" {
			if err := pub.WriteTable(ctx, sheets.AccountingSheet, report.AccountingHeader, report.AccountingRows(lines)); err != nil {
				log.Error().Err(err).Msg("Failed to publish accounting to Google Sheets")
				return err
			}
		}
	}

	if r.deps.NewUploader != nil {
		up, err := r.deps.NewUploader(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to connect to Cloud Storage")
			return err
		}
		if closer, ok := up.(interface{ Close() error }); ok {
			defer closer.Close()
		}

		files := []string{res.ReservationsPath}
		if res.AccountingPath != "" {
			files = append(files, res.AccountingPath)
		}
		if err := storage.UploadAll(ctx, up, r.cfg.GCSOutputFolder, files...); err != nil {
			log.Error().Err(err).Msg("Failed to upload reports")
			return err
		}
	}

	return nil
}
