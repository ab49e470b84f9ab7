package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3ledger/internal/journal"
	"github.com/Mohsinsiddi/w3ledger/internal/ui"
)

var (
	initName     string
	initSymbol   string
	initDecimals uint8
	initVersion  string
	initChainID  uint64
	initAddress  string
	initOwner    string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the ledger configuration and journal",
	Long: `Initialize a new ledger instance: token identity, permit domain
parameters, and an empty journal database.

The name, version, chain id, and ledger address feed the permit domain
separator. Changing any of them later invalidates all previously
signed permits, so pick them once.

Examples:
  w3ledger init --name "My Token" --symbol MTK --owner 0xABC...
  w3ledger init --chain-id 8453 --ledger-address 0xDEF...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if initName != "" {
			cfg.TokenName = initName
		}
		if initSymbol != "" {
			cfg.TokenSymbol = initSymbol
		}
		if cmd.Flags().Changed("decimals") {
			cfg.TokenDecimals = initDecimals
		}
		if initVersion != "" {
			cfg.TokenVersion = initVersion
		}
		if cmd.Flags().Changed("chain-id") {
			cfg.ChainID = initChainID
		}
		if initAddress != "" {
			cfg.LedgerAddress = initAddress
		}
		if cfg.LedgerAddress == "" {
			addr, err := randomAddress()
			if err != nil {
				return err
			}
			cfg.LedgerAddress = addr
		}
		if initOwner != "" {
			cfg.OwnerAddress = initOwner
		}

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		// Create the journal now so the first read command does not
		// have to.
		j, err := journal.OpenSQLite(cfg.JournalPath())
		if err != nil {
			return fmt.Errorf("creating journal: %w", err)
		}
		defer j.Close()

		fmt.Println(ui.KeyValueBlock("Ledger Initialized", [][2]string{
			{"Token", fmt.Sprintf("%s (%s)", cfg.TokenName, cfg.TokenSymbol)},
			{"Decimals", fmt.Sprintf("%d", cfg.TokenDecimals)},
			{"Version", cfg.TokenVersion},
			{"Chain ID", fmt.Sprintf("%d", cfg.ChainID)},
			{"Ledger Address", ui.Addr(cfg.LedgerAddress)},
			{"Owner", ui.Addr(cfg.OwnerAddress)},
			{"Journal", cfg.JournalPath()},
		}))
		return nil
	},
}

// randomAddress generates a random instance identity for ledgers that
// are not mirroring a deployed contract.
func randomAddress() (string, error) {
	var b [20]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generating ledger address: %w", err)
	}
	return "0x" + hex.EncodeToString(b[:]), nil
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "token name")
	initCmd.Flags().StringVar(&initSymbol, "symbol", "", "token symbol")
	initCmd.Flags().Uint8Var(&initDecimals, "decimals", 18, "token decimals")
	initCmd.Flags().StringVar(&initVersion, "version", "", "permit domain version")
	initCmd.Flags().Uint64Var(&initChainID, "chain-id", 1, "chain id for the permit domain")
	initCmd.Flags().StringVar(&initAddress, "ledger-address", "", "verifying-contract identity (random if omitted)")
	initCmd.Flags().StringVar(&initOwner, "owner", "", "owner address allowed to mint and burn")
}
