package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3ledger/internal/ui"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Block all state-changing operations",
	Long: `Pause the ledger. While paused, every mutator — mint, burn,
transfer, approve, permit — is rejected; reads still work.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Paused {
			fmt.Println(ui.Warn("Ledger is already paused"))
			return nil
		}
		cfg.Paused = true
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Println(ui.Success("Ledger paused"))
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Re-enable state-changing operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Paused {
			fmt.Println(ui.Warn("Ledger is not paused"))
			return nil
		}
		cfg.Paused = false
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Println(ui.Success("Ledger resumed"))
		return nil
	},
}
