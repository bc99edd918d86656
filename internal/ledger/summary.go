package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AccountTotal is the sum of all lines posted to one account.
type AccountTotal struct {
	Account string
	Total   decimal.Decimal
	Lines   int
}

// Summary aggregates an accounting export for logging and console output.
type Summary struct {
	Totals []AccountTotal
	// Balance is the sum of every line; zero when every booking balances.
	Balance decimal.Decimal
	// Unknown lists the booking codes with at least one unmapped line.
	Unknown []string
}

// Summarize totals lines per account, in account order.
func Summarize(lines []Line) Summary {
	byAccount := make(map[string]*AccountTotal)
	unknown := make(map[string]bool)
	balance := decimal.Zero

	for _, l := range lines {
		t, ok := byAccount[l.Account]
		if !ok {
			t = &AccountTotal{Account: l.Account, Total: decimal.Zero}
			byAccount[l.Account] = t
		}
		t.Total = t.Total.Add(l.Value)
		t.Lines++
		balance = balance.Add(l.Value)

		if l.Account == UnknownAccount {
			unknown[l.ID] = true
		}
	}

	s := Summary{Balance: balance}
	for _, t := range byAccount {
		s.Totals = append(s.Totals, *t)
	}
	sort.Slice(s.Totals, func(i, j int) bool { return s.Totals[i].Account < s.Totals[j].Account })

	for id := range unknown {
		s.Unknown = append(s.Unknown, id)
	}
	sort.Strings(s.Unknown)

	return s
}
