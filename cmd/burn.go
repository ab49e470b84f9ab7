package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3ledger/internal/ui"
)

var (
	burnFrom   string
	burnAmount string
	burnCaller string
)

var burnCmd = &cobra.Command{
	Use:   "burn",
	Short: "Burn tokens from an account",
	Long: `Burn tokens, shrinking the total supply.

Anyone may burn their own balance; burning another account's balance
requires the ownership gate.

Examples:
  w3ledger burn --from alice --amount 100
  w3ledger burn --from 0xABC... --amount 5 --caller 0xOWNER...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if burnFrom == "" || burnAmount == "" {
			return fmt.Errorf("--from and --amount are required")
		}

		from, err := resolveAddress(burnFrom)
		if err != nil {
			return err
		}
		caller := from
		if burnCaller != "" {
			caller, err = resolveAddress(burnCaller)
			if err != nil {
				return err
			}
		}
		value, err := parseAmount(burnAmount, cfg.TokenDecimals)
		if err != nil {
			return err
		}

		tok, j, err := openToken()
		if err != nil {
			return err
		}
		defer j.Close()

		if err := tok.Burn(caller, from, value); err != nil {
			fmt.Println(ui.Err(err.Error()))
			return err
		}

		fmt.Println(ui.Success(fmt.Sprintf("Burned %s %s from %s",
			burnAmount, cfg.TokenSymbol, ui.Addr(from.Hex()))))
		fmt.Printf("  total supply: %s %s\n",
			ui.Val(formatAmount(tok.TotalSupply(), cfg.TokenDecimals)), cfg.TokenSymbol)
		return nil
	},
}

func init() {
	burnCmd.Flags().StringVar(&burnFrom, "from", "", "account to burn from (address or wallet name)")
	burnCmd.Flags().StringVar(&burnAmount, "amount", "", "amount in token units")
	burnCmd.Flags().StringVar(&burnCaller, "caller", "", "caller address (default: --from)")
}
