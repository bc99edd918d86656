// Package report serializes the reservations and accounting tables as
// comma-separated files.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"hostexport/internal/ledger"
	"hostexport/internal/reservation"
)

const dateLayout = "2006-01-02"

// ReservationHeader lists the reservations report columns.
var ReservationHeader = []string{
	"id", "platform", "booked_date", "check_in", "check_out", "nights",
	"accom", "guest_fees", "discounts", "adjustments", "taxes", "host_fees", "revenue",
}

// AccountingHeader lists the accounting report columns.
var AccountingHeader = []string{"id", "date", "platform", "description", "variable", "value", "account"}

// ReservationRows renders records in the column order of ReservationHeader.
func ReservationRows(records []reservation.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.ID,
			r.Platform,
			r.BookedDate.Format(dateLayout),
			r.CheckIn.Format(dateLayout),
			r.CheckOut.Format(dateLayout),
			strconv.Itoa(r.Nights),
			r.Accommodation.StringFixed(2),
			r.GuestFees.StringFixed(2),
			r.Discounts.StringFixed(2),
			r.Adjustments.StringFixed(2),
			r.Taxes.StringFixed(2),
			r.HostFees.StringFixed(2),
			r.Revenue.StringFixed(2),
		})
	}
	return rows
}

// AccountingRows renders lines in the column order of AccountingHeader.
// Values are rounded to cents for output only.
func AccountingRows(lines []ledger.Line) [][]string {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{
			l.ID,
			l.Date.Format(dateLayout),
			l.Platform,
			l.Description,
			string(l.Variable),
			l.Value.StringFixed(2),
			l.Account,
		})
	}
	return rows
}

// WriteReservations writes <dir>/<name>.csv and returns its path.
func WriteReservations(dir, name string, records []reservation.Record) (string, error) {
	const op = "WriteReservations"

	path, err := writeFile(dir, name, ReservationHeader, ReservationRows(records))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return path, nil
}

// WriteAccounting writes <dir>/<name>.csv and returns its path.
func WriteAccounting(dir, name string, lines []ledger.Line) (string, error) {
	const op = "WriteAccounting"

	path, err := writeFile(dir, name, AccountingHeader, AccountingRows(lines))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return path, nil
}

func writeFile(dir, name string, header []string, rows [][]string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Write(f, header, rows); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// Write emits header and rows as CSV to w.
func Write(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
