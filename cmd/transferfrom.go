package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3ledger/internal/ui"
)

var (
	tfSpender string
	tfOwner   string
	tfTo      string
	tfAmount  string
)

var transferFromCmd = &cobra.Command{
	Use:   "transfer-from",
	Short: "Spend an allowance to move tokens",
	Long: `Move tokens out of an owner's account using a spender's allowance.
The allowance spend and the balance move commit together — a failure
of either leaves both untouched.

Examples:
  w3ledger transfer-from --spender bob --owner alice --to bob --amount 300`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tfSpender == "" || tfOwner == "" || tfTo == "" || tfAmount == "" {
			return fmt.Errorf("--spender, --owner, --to, and --amount are required")
		}

		spender, err := resolveAddress(tfSpender)
		if err != nil {
			return err
		}
		owner, err := resolveAddress(tfOwner)
		if err != nil {
			return err
		}
		to, err := resolveAddress(tfTo)
		if err != nil {
			return err
		}
		value, err := parseAmount(tfAmount, cfg.TokenDecimals)
		if err != nil {
			return err
		}

		tok, j, err := openToken()
		if err != nil {
			return err
		}
		defer j.Close()

		if err := tok.TransferFrom(spender, owner, to, value); err != nil {
			fmt.Println(ui.Err(err.Error()))
			return err
		}

		fmt.Println(ui.Success(fmt.Sprintf("Transferred %s %s via allowance", tfAmount, cfg.TokenSymbol)))
		fmt.Printf("  %s → %s (spender %s)\n",
			ui.Addr(owner.Hex()), ui.Addr(to.Hex()), ui.Addr(spender.Hex()))
		fmt.Printf("  remaining allowance: %s %s\n",
			ui.Val(formatAmount(tok.Allowance(owner, spender), cfg.TokenDecimals)), cfg.TokenSymbol)
		return nil
	},
}

func init() {
	transferFromCmd.Flags().StringVar(&tfSpender, "spender", "", "spender (address or wallet name)")
	transferFromCmd.Flags().StringVar(&tfOwner, "owner", "", "account to move tokens from")
	transferFromCmd.Flags().StringVar(&tfTo, "to", "", "recipient")
	transferFromCmd.Flags().StringVar(&tfAmount, "amount", "", "amount in token units")
}
