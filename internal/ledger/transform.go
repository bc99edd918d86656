// Package ledger derives a long-format accounting table from normalized
// reservations. Each booking yields up to five signed lines (accommodation,
// guest fees, host fees, receivable, payable), each mapped to a ledger account.
package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"hostexport/internal/reservation"
)

// bookingHostFeeRate models the tax Hospitable adds on top of Booking.com
// commission.
var bookingHostFeeRate = decimal.RequireFromString("1.1")

// Line is one row of the accounting export.
type Line struct {
	ID          string
	Date        time.Time
	Platform    string
	Description string
	Variable    Variable
	Value       decimal.Decimal
	Account     string
}

// Amounts are the five signed values posted for one booking.
type Amounts struct {
	Accommodation decimal.Decimal
	GuestFees     decimal.Decimal
	HostFees      decimal.Decimal
	Receivable    decimal.Decimal
	Payable       decimal.Decimal
}

// Derive applies the platform rules to one reservation.
func Derive(r reservation.Record) Amounts {
	a := Amounts{
		Accommodation: r.AdjustedAccommodation(),
		GuestFees:     r.GuestFees,
		HostFees:      r.HostFees,
		Payable:       decimal.Zero,
	}

	if r.Platform == PlatformBooking {
		// Booking.com commission is invoiced separately: payable, not netted.
		a.HostFees = a.HostFees.Mul(bookingHostFeeRate)
		a.Receivable = a.Accommodation.Add(a.GuestFees).Neg()
		a.Payable = a.HostFees.Neg()
		return a
	}

	a.Receivable = a.Accommodation.Add(a.GuestFees).Add(a.HostFees).Neg()
	return a
}

// Transform builds the accounting lines for all records, dropping zero values,
// sorted by date then variable name.
func Transform(records map[string]reservation.Record, accounts *AccountTable) []Line {
	lines := make([]Line, 0, len(records)*5)

	for _, r := range records {
		a := Derive(r)
		desc := fmt.Sprintf("%s booking %s", r.Platform, r.ID)

		for _, col := range []struct {
			v     Variable
			value decimal.Decimal
		}{
			{Accommodation, a.Accommodation},
			{GuestFees, a.GuestFees},
			{HostFees, a.HostFees},
			{Receivable, a.Receivable},
			{Payable, a.Payable},
		} {
			if col.value.IsZero() {
				continue
			}
			lines = append(lines, Line{
				ID:          r.ID,
				Date:        r.CheckIn,
				Platform:    r.Platform,
				Description: desc,
				Variable:    col.v,
				Value:       col.value,
				Account:     accounts.Resolve(r.Platform, col.v),
			})
		}
	}

	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].Date.Equal(lines[j].Date) {
			return lines[i].Date.Before(lines[j].Date)
		}
		if lines[i].Variable != lines[j].Variable {
			return lines[i].Variable < lines[j].Variable
		}
		return lines[i].ID < lines[j].ID
	})

	return lines
}
