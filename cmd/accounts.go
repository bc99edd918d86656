package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hostexport/internal/ledger"
	"hostexport/internal/logger"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Show the ledger account mapping",
	Long: `Print the account every (platform, variable) pair of the accounting
export is posted to. Pairs missing from the table are exported with the
account "unknown".

An account mapping file (ACCOUNT_MAP_FILE or --account-map) is merged over
the built-in defaults:

  receivable: Assets:Accounts Receivable
  payable: Liabilities:Accounts Payable
  platforms:
    - platform: manual
      host_fees: Expenses:Rental:Direct Booking Fees`,
	Example: `  hostexport accounts
  hostexport accounts --account-map accounts.yaml`,
	Args: cobra.NoArgs,
	RunE: runAccounts,
}

func init() {
	rootCmd.AddCommand(accountsCmd)

	accountsCmd.Flags().String("account-map", "", "YAML account mapping file (ACCOUNT_MAP_FILE)")
}

func runAccounts(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent(baseLog, "accounts")

	path := cfg.AccountMapFile
	if cmd.Flags().Changed("account-map") {
		path, _ = cmd.Flags().GetString("account-map")
	}

	table := ledger.DefaultAccounts()
	if path != "" {
		loaded, err := ledger.LoadAccounts(path)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("Failed to load account mapping")
			return err
		}
		table = loaded
		log.Debug().Str("file", path).Msg("Account mapping loaded")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLATFORM\tVARIABLE\tACCOUNT")
	for _, e := range table.Entries() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Platform, e.Variable, e.Account)
	}
	return w.Flush()
}
