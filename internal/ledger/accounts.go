package ledger

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// UnknownAccount is resolved for any (platform, variable) pair missing from the table.
const UnknownAccount = "unknown"

// Variable names one monetary column of the accounting export.
type Variable string

const (
	Accommodation Variable = "accommodation"
	GuestFees     Variable = "guest_fees"
	HostFees      Variable = "host_fees"
	Receivable    Variable = "receivable"
	Payable       Variable = "payable"
)

// Platform identifiers as sent by Hospitable.
const (
	PlatformAirbnb   = "airbnb"
	PlatformBooking  = "booking"
	PlatformHomeaway = "homeaway"
	PlatformManual   = "manual"
)

type accountKey struct {
	platform string
	variable Variable
}

// AccountTable resolves ledger account names by (platform, variable).
// Receivable and payable lines post to fixed accounts whatever the platform.
type AccountTable struct {
	entries    map[accountKey]string
	receivable string
	payable    string
}

// PlatformAccounts is one platform's entry in an account mapping file.
type PlatformAccounts struct {
	Platform      string `yaml:"platform"`
	Accommodation string `yaml:"accommodation"`
	GuestFees     string `yaml:"guest_fees"`
	HostFees      string `yaml:"host_fees"`
}

// AccountMappingConfig is the YAML layout of an account mapping file.
type AccountMappingConfig struct {
	Receivable string             `yaml:"receivable"`
	Payable    string             `yaml:"payable"`
	Platforms  []PlatformAccounts `yaml:"platforms"`
}

// DefaultAccounts returns the built-in chart for the platforms Hospitable syncs.
// The manual platform has no fee account: direct bookings carry no channel fee.
func DefaultAccounts() *AccountTable {
	t := &AccountTable{
		entries:    make(map[accountKey]string),
		receivable: "Assets:Accounts Receivable",
		payable:    "Liabilities:Accounts Payable",
	}
	t.apply([]PlatformAccounts{
		{
			Platform:      PlatformAirbnb,
			Accommodation: "Income:Rental:Airbnb:Accommodation",
			GuestFees:     "Income:Rental:Airbnb:Guest Fees",
			HostFees:      "Expenses:Rental:Airbnb Fees",
		},
		{
			Platform:      PlatformBooking,
			Accommodation: "Income:Rental:Booking.com:Accommodation",
			GuestFees:     "Income:Rental:Booking.com:Guest Fees",
			HostFees:      "Expenses:Rental:Booking.com Fees",
		},
		{
			Platform:      PlatformHomeaway,
			Accommodation: "Income:Rental:Vrbo:Accommodation",
			GuestFees:     "Income:Rental:Vrbo:Guest Fees",
			HostFees:      "Expenses:Rental:Vrbo Fees",
		},
		{
			Platform:      PlatformManual,
			Accommodation: "Income:Rental:Direct Booking:Accommodation",
			GuestFees:     "Income:Rental:Direct Booking:Guest Fees",
		},
	})
	return t
}

// LoadAccounts reads a YAML mapping file and merges it over the defaults.
func LoadAccounts(path string) (*AccountTable, error) {
	const op = "LoadAccounts"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read account mapping: %w", op, err)
	}

	var cfg AccountMappingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to parse YAML: %w", op, err)
	}

	t := DefaultAccounts()
	if cfg.Receivable != "" {
		t.receivable = cfg.Receivable
	}
	if cfg.Payable != "" {
		t.payable = cfg.Payable
	}
	for _, p := range cfg.Platforms {
		if p.Platform == "" {
			return nil, fmt.Errorf("%s: platform entry without a platform name", op)
		}
	}
	t.apply(cfg.Platforms)

	return t, nil
}

func (t *AccountTable) apply(platforms []PlatformAccounts) {
	for _, p := range platforms {
		for v, account := range map[Variable]string{
			Accommodation: p.Accommodation,
			GuestFees:     p.GuestFees,
			HostFees:      p.HostFees,
		} {
			if account != "" {
				t.entries[accountKey{p.Platform, v}] = account
			}
		}
	}
}

// Resolve returns the account for a line, or UnknownAccount.
func (t *AccountTable) Resolve(platform string, v Variable) string {
	switch v {
	case Receivable:
		return t.receivable
	case Payable:
		return t.payable
	}
	if account, ok := t.entries[accountKey{platform, v}]; ok {
		return account
	}
	return UnknownAccount
}

// Entry is a flattened view of one table row.
type Entry struct {
	Platform string
	Variable Variable
	Account  string
}

// Entries lists the platform-specific rows sorted by platform and variable,
// followed by the fixed receivable and payable accounts.
func (t *AccountTable) Entries() []Entry {
	out := make([]Entry, 0, len(t.entries)+2)
	for k, account := range t.entries {
		out = append(out, Entry{Platform: k.platform, Variable: k.variable, Account: account})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Platform != out[j].Platform {
			return out[i].Platform < out[j].Platform
		}
		return out[i].Variable < out[j].Variable
	})
	out = append(out,
		Entry{Platform: "*", Variable: Receivable, Account: t.receivable},
		Entry{Platform: "*", Variable: Payable, Account: t.payable},
	)
	return out
}
