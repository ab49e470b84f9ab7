package cmd

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3ledger/internal/ui"
	"github.com/Mohsinsiddi/w3ledger/internal/wallet"
)

var (
	walletKey     string
	walletAddress string
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage permit-signing wallets",
	Long: `Manage the secp256k1 keys used to sign permits.

Sub-commands:
  w3ledger wallet generate  — create a wallet with a fresh random key
  w3ledger wallet import    — import an existing hex private key
  w3ledger wallet watch     — add a watch-only wallet (address only)
  w3ledger wallet list      — list wallets
  w3ledger wallet remove    — remove a wallet and its stored key
  w3ledger wallet default   — set the default wallet`,
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Create a wallet with a fresh random key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		privKey, err := crypto.GenerateKey()
		if err != nil {
			return fmt.Errorf("generating key: %w", err)
		}
		return addSigningWallet(args[0], privKey)
	},
}

var walletImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Import a hex private key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if walletKey == "" {
			return fmt.Errorf("--key is required")
		}
		mgr := walletManager()
		if err := mgr.AddWithKey(args[0], walletKey); err != nil {
			return err
		}
		w, err := mgr.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Imported wallet %q (%s)", w.Name, ui.Addr(w.Address))))
		return nil
	},
}

var walletWatchCmd = &cobra.Command{
	Use:   "watch <name>",
	Short: "Add a watch-only wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if walletAddress == "" {
			return fmt.Errorf("--address is required")
		}
		addr, err := resolveAddress(walletAddress)
		if err != nil {
			return err
		}
		mgr := walletManager()
		err = mgr.Add(args[0], &wallet.Wallet{
			Name:    args[0],
			Address: addr.Hex(),
			Type:    wallet.TypeWatchOnly,
		})
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Added watch-only wallet %q (%s)", args[0], ui.Addr(addr.Hex()))))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets := walletManager().List()
		if len(wallets) == 0 {
			fmt.Println(ui.Warn("No wallets — run `w3ledger wallet generate <name>`"))
			return nil
		}

		table := ui.NewTable([]ui.Column{
			{Title: "NAME", Width: 16},
			{Title: "ADDRESS", Width: 44},
			{Title: "TYPE", Width: 12},
			{Title: "DEFAULT", Width: 8},
		})
		for _, w := range wallets {
			def := ""
			if w.IsDefault {
				def = "✓"
			}
			table.AddRow(ui.Row{w.Name, w.Address, w.Type, def})
		}
		fmt.Print(table.Render())
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := walletManager().Remove(args[0]); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Removed wallet %q", args[0])))
		return nil
	},
}

var walletDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := walletManager().SetDefault(args[0]); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet is now %q", args[0])))
		return nil
	},
}

func addSigningWallet(name string, privKey *ecdsa.PrivateKey) error {
	hexKey := hex.EncodeToString(crypto.FromECDSA(privKey))
	mgr := walletManager()
	if err := mgr.AddWithKey(name, hexKey); err != nil {
		return err
	}
	addr := crypto.PubkeyToAddress(privKey.PublicKey)
	fmt.Println(ui.Success(fmt.Sprintf("Created wallet %q", name)))
	fmt.Printf("  address: %s\n", ui.Addr(addr.Hex()))
	fmt.Println(ui.Warn("The private key is stored in your OS keychain — back it up separately."))
	return nil
}

func init() {
	walletImportCmd.Flags().StringVar(&walletKey, "key", "", "hex private key")
	walletWatchCmd.Flags().StringVar(&walletAddress, "address", "", "account address")

	walletCmd.AddCommand(
		walletGenerateCmd,
		walletImportCmd,
		walletWatchCmd,
		walletListCmd,
		walletRemoveCmd,
		walletDefaultCmd,
	)
}
