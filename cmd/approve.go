package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3ledger/internal/ui"
)

var (
	approveOwner   string
	approveSpender string
	approveAmount  string
)

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Set an allowance directly",
	Long: `Overwrite the allowance a spender may spend on an owner's behalf.

This is the direct path; use "w3ledger permit" to install an allowance
from an off-chain signature instead.

Examples:
  w3ledger approve --owner alice --spender bob --amount 400
  w3ledger approve --owner 0xABC... --spender 0xDEF... --amount 0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if approveOwner == "" || approveSpender == "" || approveAmount == "" {
			return fmt.Errorf("--owner, --spender, and --amount are required")
		}

		owner, err := resolveAddress(approveOwner)
		if err != nil {
			return err
		}
		spender, err := resolveAddress(approveSpender)
		if err != nil {
			return err
		}
		value, err := parseAmount(approveAmount, cfg.TokenDecimals)
		if err != nil {
			return err
		}

		tok, j, err := openToken()
		if err != nil {
			return err
		}
		defer j.Close()

		if err := tok.Approve(owner, spender, value); err != nil {
			fmt.Println(ui.Err(err.Error()))
			return err
		}

		fmt.Println(ui.Success(fmt.Sprintf("Approved %s %s", approveAmount, cfg.TokenSymbol)))
		fmt.Printf("  owner:   %s\n", ui.Addr(owner.Hex()))
		fmt.Printf("  spender: %s\n", ui.Addr(spender.Hex()))
		return nil
	},
}

func init() {
	approveCmd.Flags().StringVar(&approveOwner, "owner", "", "allowance owner (address or wallet name)")
	approveCmd.Flags().StringVar(&approveSpender, "spender", "", "spender (address or wallet name)")
	approveCmd.Flags().StringVar(&approveAmount, "amount", "", "allowance in token units (overwrites)")
}
