package sheets

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Sheet names the reports are published to.
const (
	ReservationsSheet = "Reservations"
	AccountingSheet   = "Accounting"
)

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// Service publishes report tables into one spreadsheet. Each table owns a
// sheet whose contents are replaced on every run.
type Service struct {
	api           *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

// NewSheetsService connects to the spreadsheet behind sheetURL using a
// service account from GOOGLE_APPLICATION_CREDENTIALS (a file) or
// GOOGLE_CREDENTIALS (inline JSON).
func NewSheetsService(ctx context.Context, sheetURL string, log zerolog.Logger) (*Service, error) {
	const op = "NewSheetsService"

	spreadsheetID, err := extractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	creds, err := credentialsJSON()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	jwt, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse credentials: %w", op, err)
	}

	api, err := sheets.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create sheets service: %w", op, err)
	}

	log.Debug().Str("spreadsheet_id", spreadsheetID).Msg("Connected to Google Sheets")
	return &Service{api: api, spreadsheetID: spreadsheetID, log: log}, nil
}

func credentialsJSON() ([]byte, error) {
	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		return data, nil
	}
	if inline := os.Getenv("GOOGLE_CREDENTIALS"); inline != "" {
		return []byte(inline), nil
	}
	return nil, fmt.Errorf("neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is set")
}

func extractSpreadsheetID(url string) (string, error) {
	matches := spreadsheetIDPattern.FindStringSubmatch(url)
	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Google Sheets URL %q", url)
	}
	return matches[1], nil
}

// WriteTable replaces the contents of sheetName with header followed by rows,
// adding the sheet when it does not exist yet.
func (s *Service) WriteTable(ctx context.Context, sheetName string, header []string, rows [][]string) error {
	const op = "WriteTable"

	sheetID, created, err := s.ensureSheet(ctx, sheetName)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.api.Spreadsheets.Values.Clear(
		s.spreadsheetID,
		sheetName,
		&sheets.ClearValuesRequest{},
	).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%s: failed to clear %s: %w", op, sheetName, err)
	}

	table := append([][]string{header}, rows...)
	if _, err := s.api.Spreadsheets.Values.Update(
		s.spreadsheetID,
		tableRange(sheetName, len(header)),
		&sheets.ValueRange{Values: toValues(table)},
	).ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("%s: failed to write %s: %w", op, sheetName, err)
	}

	if created {
		if err := s.formatHeader(ctx, sheetID, int64(len(header))); err != nil {
			s.log.Warn().Err(err).Str("sheet", sheetName).Msg("Failed to format header row")
		}
	}

	s.log.Info().
		Str("sheet", sheetName).
		Int("rows", len(rows)).
		Msg("Published table to Google Sheets")
	return nil
}

// ensureSheet returns the id of sheetName and whether it had to be added.
func (s *Service) ensureSheet(ctx context.Context, sheetName string) (int64, bool, error) {
	spreadsheet, err := s.api.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == sheetName {
			return sheet.Properties.SheetId, false, nil
		}
	}

	resp, err := s.api.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: sheetName}}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("failed to add sheet %s: %w", sheetName, err)
	}

	s.log.Info().Str("sheet", sheetName).Msg("Added sheet")
	return resp.Replies[0].AddSheet.Properties.SheetId, true, nil
}

// formatHeader freezes and bolds the first row.
func (s *Service) formatHeader(ctx context.Context, sheetID, columns int64) error {
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   columns,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true}},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err := s.api.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	return err
}

func toValues(rows [][]string) [][]interface{} {
	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		v := make([]interface{}, len(row))
		for i, cell := range row {
			v[i] = cell
		}
		values = append(values, v)
	}
	return values
}

// tableRange covers columns A..n of sheetName.
func tableRange(sheetName string, n int) string {
	return fmt.Sprintf("%s!A:%s", sheetName, columnLetter(n))
}

// columnLetter converts a 1-based column number to its A1 letters.
func columnLetter(n int) string {
	if n < 1 {
		return "A"
	}
	var letters []byte
	for n > 0 {
		n--
		letters = append([]byte{byte('A' + n%26)}, letters...)
		n /= 26
	}
	return string(letters)
}
