package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3ledger/internal/config"
	"github.com/Mohsinsiddi/w3ledger/internal/gate"
	"github.com/Mohsinsiddi/w3ledger/internal/journal"
	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/permit"
	"github.com/Mohsinsiddi/w3ledger/internal/token"
	"github.com/Mohsinsiddi/w3ledger/internal/ui"
	"github.com/Mohsinsiddi/w3ledger/internal/wallet"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3ledger/cmd.Version=1.2.3" .
var Version = "1.0.0"

var (
	cfgDir  string
	cfg     *config.Config
	verbose bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3ledger",
	Short: "An embedded token ledger with signed-permit allowances",
	Long: `w3ledger — an ERC-20-style token ledger that lives on your machine.

  Mint, transfer, and approve balances; grant allowances with
  EIP-2612 off-chain signatures; and audit every change through the
  append-only journal.

The journal database is the only persistent state: each invocation
replays it to rebuild the ledger, so the audit trail and the balances
can never disagree.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// W3LEDGER_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("W3LEDGER_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.w3ledger)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Register all sub-commands.
	rootCmd.AddCommand(
		initCmd,
		walletCmd,
		mintCmd,
		burnCmd,
		transferCmd,
		transferFromCmd,
		approveCmd,
		balanceCmd,
		supplyCmd,
		allowanceCmd,
		nonceCmd,
		permitCmd,
		journalCmd,
		pauseCmd,
		resumeCmd,
		keccakCmd,
	)
}

// openToken rebuilds the token instance from config and journal. The
// caller must Close the returned journal.
func openToken() (*token.Token, *journal.SQLite, error) {
	j, err := journal.OpenSQLite(cfg.JournalPath())
	if err != nil {
		return nil, nil, err
	}

	var spin *ui.Spinner
	if verbose {
		spin = ui.NewSpinner("replaying journal")
		spin.Start()
	}

	recs, err := j.All()
	if err != nil {
		if spin != nil {
			spin.Stop()
		}
		_ = j.Close()
		return nil, nil, fmt.Errorf("reading journal: %w", err)
	}

	opts := []ledger.Option{ledger.WithSink(j)}
	if cfg.Paused {
		sw := gate.NewSwitch()
		sw.Pause()
		opts = append(opts, ledger.WithPause(sw))
	}

	l := ledger.New(opts...)
	if err := l.Restore(recs); err != nil {
		if spin != nil {
			spin.Stop()
		}
		_ = j.Close()
		return nil, nil, fmt.Errorf("replaying journal: %w", err)
	}
	if spin != nil {
		spin.StopWithMsg(ui.StyleMeta.Render(fmt.Sprintf("replayed %d journal record(s)", len(recs))))
	}

	dom := permit.Domain{
		Name:              cfg.TokenName,
		Version:           cfg.TokenVersion,
		ChainID:           cfg.ChainID,
		VerifyingContract: common.HexToAddress(cfg.LedgerAddress),
	}
	auth := permit.New(l, dom)

	meta := token.Metadata{
		Name:     cfg.TokenName,
		Symbol:   cfg.TokenSymbol,
		Decimals: cfg.TokenDecimals,
		Version:  cfg.TokenVersion,
	}
	tokOpts := []token.Option{}
	if cfg.OwnerAddress != "" {
		tokOpts = append(tokOpts,
			token.WithOwnership(gate.NewStaticOwner(common.HexToAddress(cfg.OwnerAddress))))
	}

	return token.New(meta, l, auth, tokOpts...), j, nil
}

// walletManager returns the wallet manager over the configured wallets
// file and the OS keystore.
func walletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.DefaultKeystore()),
	)
}

// mustAddress parses an address already validated elsewhere.
func mustAddress(s string) common.Address {
	return common.HexToAddress(s)
}

// resolveAddress accepts a 0x address or a wallet name.
func resolveAddress(s string) (common.Address, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if len(s) != 42 {
			return common.Address{}, fmt.Errorf("invalid address %q: want 20 bytes", s)
		}
		return common.HexToAddress(s), nil
	}
	w, err := walletManager().Get(s)
	if err != nil {
		return common.Address{}, fmt.Errorf("resolving %q: %w", s, err)
	}
	return common.HexToAddress(w.Address), nil
}
