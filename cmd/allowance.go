package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3ledger/internal/ui"
)

var (
	allowanceOwner   string
	allowanceSpender string
)

var allowanceCmd = &cobra.Command{
	Use:   "allowance",
	Short: "Show a (owner, spender) allowance",
	Long: `Show what a spender may still spend on an owner's behalf.
Absent allowances read as zero.

Examples:
  w3ledger allowance --owner alice --spender bob`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if allowanceOwner == "" || allowanceSpender == "" {
			return fmt.Errorf("--owner and --spender are required")
		}

		owner, err := resolveAddress(allowanceOwner)
		if err != nil {
			return err
		}
		spender, err := resolveAddress(allowanceSpender)
		if err != nil {
			return err
		}

		tok, j, err := openToken()
		if err != nil {
			return err
		}
		defer j.Close()

		a := tok.Allowance(owner, spender)
		fmt.Println(ui.KeyValueBlock("Allowance", [][2]string{
			{"Owner", ui.Addr(owner.Hex())},
			{"Spender", ui.Addr(spender.Hex())},
			{"Remaining", fmt.Sprintf("%s %s", ui.Val(formatAmount(a, cfg.TokenDecimals)), cfg.TokenSymbol)},
			{"Raw", a.Dec()},
		}))
		return nil
	},
}

func init() {
	allowanceCmd.Flags().StringVar(&allowanceOwner, "owner", "", "allowance owner")
	allowanceCmd.Flags().StringVar(&allowanceSpender, "spender", "", "spender")
}
