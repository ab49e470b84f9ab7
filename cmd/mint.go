package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3ledger/internal/ui"
)

var (
	mintTo     string
	mintAmount string
	mintCaller string
)

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint tokens to an account (owner only)",
	Long: `Mint new tokens, growing the total supply.

The caller must pass the ownership gate configured at init.

Examples:
  w3ledger mint --to 0xABC... --amount 1000
  w3ledger mint --to alice --amount 2.5 --caller 0xOWNER...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if mintTo == "" || mintAmount == "" {
			return fmt.Errorf("--to and --amount are required")
		}

		to, err := resolveAddress(mintTo)
		if err != nil {
			return err
		}
		caller, err := callerOrOwner(mintCaller)
		if err != nil {
			return err
		}
		value, err := parseAmount(mintAmount, cfg.TokenDecimals)
		if err != nil {
			return err
		}

		tok, j, err := openToken()
		if err != nil {
			return err
		}
		defer j.Close()

		if err := tok.Mint(caller, to, value); err != nil {
			fmt.Println(ui.Err(err.Error()))
			return err
		}

		fmt.Println(ui.Success(fmt.Sprintf("Minted %s %s to %s",
			mintAmount, cfg.TokenSymbol, ui.Addr(to.Hex()))))
		fmt.Printf("  total supply: %s %s\n",
			ui.Val(formatAmount(tok.TotalSupply(), cfg.TokenDecimals)), cfg.TokenSymbol)
		return nil
	},
}

// callerOrOwner resolves the --caller flag, defaulting to the
// configured owner address.
func callerOrOwner(caller string) (addr common.Address, err error) {
	if caller != "" {
		return resolveAddress(caller)
	}
	if cfg.OwnerAddress == "" {
		return addr, fmt.Errorf("no --caller given and no owner configured — run `w3ledger init --owner`")
	}
	return resolveAddress(cfg.OwnerAddress)
}

func init() {
	mintCmd.Flags().StringVar(&mintTo, "to", "", "recipient address or wallet name")
	mintCmd.Flags().StringVar(&mintAmount, "amount", "", "amount in token units")
	mintCmd.Flags().StringVar(&mintCaller, "caller", "", "caller address (default: configured owner)")
}
