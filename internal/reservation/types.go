package reservation

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusAccepted is the only reservation status category that is reported.
const StatusAccepted = "accepted"

// Raw is a reservation as returned by the Hospitable reservations endpoint
// with financials included. Only the fields the reports need are decoded.
type Raw struct {
	Code              string     `json:"code"`
	Platform          string     `json:"platform"`
	BookingDate       string     `json:"booking_date"`
	CheckIn           string     `json:"check_in"`
	CheckOut          string     `json:"check_out"`
	Nights            int        `json:"nights"`
	ReservationStatus Status     `json:"reservation_status"`
	Financials        Financials `json:"financials"`
}

type Status struct {
	Current struct {
		Category    string `json:"category"`
		SubCategory string `json:"sub_category,omitempty"`
	} `json:"current"`
}

type Financials struct {
	Currency string     `json:"currency,omitempty"`
	Host     HostLedger `json:"host"`
}

// HostLedger is the host side of the financials block. Amounts are in minor
// currency units.
type HostLedger struct {
	Accommodation Amount     `json:"accommodation"`
	Revenue       Amount     `json:"revenue"`
	GuestFees     []LineItem `json:"guest_fees"`
	HostFees      []LineItem `json:"host_fees"`
	Discounts     []LineItem `json:"discounts"`
	Adjustments   []LineItem `json:"adjustments"`
	Taxes         []LineItem `json:"taxes"`
}

type Amount struct {
	Amount int64 `json:"amount"`
}

type LineItem struct {
	Amount int64  `json:"amount"`
	Label  string `json:"label,omitempty"`
}

// Record is a flattened accepted reservation with money in major units.
type Record struct {
	ID         string
	Platform   string
	BookedDate time.Time
	CheckIn    time.Time
	CheckOut   time.Time
	Nights     int

	Accommodation decimal.Decimal
	GuestFees     decimal.Decimal
	Discounts     decimal.Decimal
	Adjustments   decimal.Decimal
	Taxes         decimal.Decimal
	HostFees      decimal.Decimal
	Revenue       decimal.Decimal
}
