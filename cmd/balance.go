package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3ledger/internal/ui"
)

var balanceCmd = &cobra.Command{
	Use:   "balance <address-or-wallet>",
	Short: "Show an account balance",
	Long: `Show the token balance of an account. Unknown accounts read as
zero.

Examples:
  w3ledger balance alice
  w3ledger balance 0xABC...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := resolveAddress(args[0])
		if err != nil {
			return err
		}

		tok, j, err := openToken()
		if err != nil {
			return err
		}
		defer j.Close()

		bal := tok.BalanceOf(addr)
		fmt.Println(ui.KeyValueBlock("Balance", [][2]string{
			{"Account", ui.Addr(addr.Hex())},
			{"Balance", fmt.Sprintf("%s %s", ui.Val(formatAmount(bal, cfg.TokenDecimals)), cfg.TokenSymbol)},
			{"Raw", bal.Dec()},
		}))
		return nil
	},
}
