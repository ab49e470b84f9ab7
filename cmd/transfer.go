package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3ledger/internal/ui"
)

var (
	transferFrom   string
	transferTo     string
	transferAmount string
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer tokens between accounts",
	Long: `Move tokens from one account to another. Supply is unchanged and
exactly one transfer record lands in the journal.

Examples:
  w3ledger transfer --from alice --to bob --amount 10
  w3ledger transfer --from 0xABC... --to 0xDEF... --amount 0.5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if transferFrom == "" || transferTo == "" || transferAmount == "" {
			return fmt.Errorf("--from, --to, and --amount are required")
		}

		from, err := resolveAddress(transferFrom)
		if err != nil {
			return err
		}
		to, err := resolveAddress(transferTo)
		if err != nil {
			return err
		}
		value, err := parseAmount(transferAmount, cfg.TokenDecimals)
		if err != nil {
			return err
		}

		tok, j, err := openToken()
		if err != nil {
			return err
		}
		defer j.Close()

		if err := tok.Transfer(from, to, value); err != nil {
			fmt.Println(ui.Err(err.Error()))
			return err
		}

		fmt.Println(ui.Success(fmt.Sprintf("Transferred %s %s", transferAmount, cfg.TokenSymbol)))
		fmt.Printf("  %s → %s\n", ui.Addr(from.Hex()), ui.Addr(to.Hex()))
		fmt.Printf("  sender balance: %s %s\n",
			ui.Val(formatAmount(tok.BalanceOf(from), cfg.TokenDecimals)), cfg.TokenSymbol)
		return nil
	},
}

func init() {
	transferCmd.Flags().StringVar(&transferFrom, "from", "", "sender address or wallet name")
	transferCmd.Flags().StringVar(&transferTo, "to", "", "recipient address or wallet name")
	transferCmd.Flags().StringVar(&transferAmount, "amount", "", "amount in token units")
}
