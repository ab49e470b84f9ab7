package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3ledger/internal/ui"
)

var supplyCmd = &cobra.Command{
	Use:   "supply",
	Short: "Show the total supply",
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, j, err := openToken()
		if err != nil {
			return err
		}
		defer j.Close()

		supply := tok.TotalSupply()
		fmt.Println(ui.KeyValueBlock("Total Supply", [][2]string{
			{"Token", fmt.Sprintf("%s (%s)", cfg.TokenName, cfg.TokenSymbol)},
			{"Supply", fmt.Sprintf("%s %s", ui.Val(formatAmount(supply, cfg.TokenDecimals)), cfg.TokenSymbol)},
			{"Raw", supply.Dec()},
		}))
		return nil
	},
}
