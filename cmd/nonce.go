package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3ledger/internal/ui"
)

var nonceCmd = &cobra.Command{
	Use:   "nonce <address-or-wallet>",
	Short: "Show an account's permit nonce",
	Long: `Show the next nonce a permit signature from this account must
cover. The nonce advances by exactly one per accepted permit.`,
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

		fmt.Println(ui.KeyValueBlock("Permit Nonce", [][2]string{
			{"Account", ui.Addr(addr.Hex())},
			{"Nonce", ui.Val(tok.Nonce(addr).Dec())},
		}))
		return nil
	},
}
