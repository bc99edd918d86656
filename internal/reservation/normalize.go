// Package reservation turns raw Hospitable reservations into flat records
// suitable for the reservations report and the accounting transform.
//
// Only reservations whose current status category is "accepted" are kept.
// Line-item collections (guest fees, host fees, discounts, adjustments, taxes)
// are summed, and every monetary field is converted from minor to major
// currency units.
package reservation

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidDate is returned when a booking, check-in or check-out date
// cannot be parsed as a calendar date.
var ErrInvalidDate = errors.New("invalid reservation date")

const dateLayout = "2006-01-02"

// Normalize converts raw reservations into records keyed by booking code.
// The returned map has no defined order; use SortByCheckIn for reporting.
func Normalize(raws []Raw) (map[string]Record, error) {
	const op = "Normalize"

	records := make(map[string]Record, len(raws))
	for _, r := range raws {
		if r.ReservationStatus.Current.Category != StatusAccepted {
			continue
		}

		rec, err := normalizeOne(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		records[rec.ID] = rec
	}

	return records, nil
}

func normalizeOne(r Raw) (Record, error) {
	booked, err := parseDate(r.BookingDate)
	if err != nil {
		return Record{}, fmt.Errorf("booking %s booking_date %q: %w", r.Code, r.BookingDate, err)
	}
	checkIn, err := parseDate(r.CheckIn)
	if err != nil {
		return Record{}, fmt.Errorf("booking %s check_in %q: %w", r.Code, r.CheckIn, err)
	}
	checkOut, err := parseDate(r.CheckOut)
	if err != nil {
		return Record{}, fmt.Errorf("booking %s check_out %q: %w", r.Code, r.CheckOut, err)
	}

	host := r.Financials.Host
	return Record{
		ID:            r.Code,
		Platform:      r.Platform,
		BookedDate:    booked,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Nights:        r.Nights,
		Accommodation: toMajor(host.Accommodation.Amount),
		GuestFees:     toMajor(sum(host.GuestFees)),
		Discounts:     toMajor(sum(host.Discounts)),
		Adjustments:   toMajor(sum(host.Adjustments)),
		Taxes:         toMajor(sum(host.Taxes)),
		HostFees:      toMajor(sum(host.HostFees)),
		Revenue:       toMajor(host.Revenue.Amount),
	}, nil
}

// parseDate keeps the date-only prefix of a timestamp such as
// "2024-03-01T16:00:00-05:00".
func parseDate(value string) (time.Time, error) {
	if len(value) > 10 {
		value = value[:10]
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func sum(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Amount
	}
	return total
}

// toMajor converts cents to currency units.
func toMajor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// SortByCheckIn returns the records ordered by check-in date, then booking code.
func SortByCheckIn(records map[string]Record) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckIn.Equal(out[j].CheckIn) {
			return out[i].CheckIn.Before(out[j].CheckIn)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// AdjustedAccommodation is the accommodation amount with discounts and taxes
// folded in, as booked on the accommodation income line.
func (r Record) AdjustedAccommodation() decimal.Decimal {
	return r.Accommodation.Add(r.Discounts).Add(r.Taxes)
}
