package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3ledger/internal/journal"
	"github.com/Mohsinsiddi/w3ledger/internal/ui"
)

var (
	journalLimit    int
	journalInterval time.Duration
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the audit trail",
	Long: `Inspect the append-only journal behind the ledger.

Sub-commands:
  w3ledger journal list   — print recorded mutations
  w3ledger journal watch  — tail the journal live`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print recorded mutations",
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := journal.OpenSQLite(cfg.JournalPath())
		if err != nil {
			return err
		}
		defer j.Close()

		recs, err := j.All()
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println(ui.Warn("Journal is empty"))
			return nil
		}
		if journalLimit > 0 && len(recs) > journalLimit {
			recs = recs[len(recs)-journalLimit:]
		}

		table := ui.NewTable([]ui.Column{
			{Title: "SEQ", Width: 6},
			{Title: "TIME", Width: 20},
			{Title: "KIND", Width: 16},
			{Title: "FROM", Width: 14},
			{Title: "TO", Width: 14},
			{Title: "VALUE", Width: 24},
		})
		for _, r := range recs {
			table.AddRow(ui.Row{
				fmt.Sprintf("%d", r.Seq),
				r.Time.Format("2006-01-02 15:04:05"),
				r.Kind,
				journalParty(r.From),
				journalParty(r.To),
				formatAmount(r.Value, cfg.TokenDecimals) + " " + cfg.TokenSymbol,
			})
		}
		fmt.Print(table.Render())
		return nil
	},
}

var journalWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Tail the journal live",
	Long: `Stream new journal records as they land, in a live terminal view.
Useful alongside a second shell issuing transfers and permits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := journal.OpenSQLite(cfg.JournalPath())
		if err != nil {
			return err
		}
		defer j.Close()

		model := ui.WatchModel{Token: fmt.Sprintf("%s (%s)", cfg.TokenName, cfg.TokenSymbol)}
		p := tea.NewProgram(model)

		// Poll for new records in the background and feed the model.
		done := make(chan struct{})
		defer close(done)
		go pollJournal(p, j, done)

		if _, err := p.Run(); err != nil {
			return fmt.Errorf("watch view: %w", err)
		}
		return nil
	},
}

func pollJournal(p *tea.Program, j *journal.SQLite, done <-chan struct{}) {
	var lastSeq uint64
	ticker := time.NewTicker(journalInterval)
	defer ticker.Stop()

	for {
		p.Send(ui.WatchStatusMsg{LastSeq: lastSeq, Fetching: true})
		recs, err := j.After(lastSeq)
		if err != nil {
			p.Send(ui.WatchStatusMsg{LastSeq: lastSeq, ErrMsg: err.Error()})
		} else {
			for _, r := range recs {
				lastSeq = r.Seq
				p.Send(ui.WatchRecordMsg{
					Seq:      r.Seq,
					Kind:     r.Kind,
					From:     journalParty(r.From),
					To:       journalParty(r.To),
					ValueStr: formatAmount(r.Value, cfg.TokenDecimals),
					Symbol:   cfg.TokenSymbol,
					Time:     r.Time,
				})
			}
			p.Send(ui.WatchStatusMsg{LastSeq: lastSeq})
		}

		select {
		case <-done:
			return
		case <-ticker.C:
		}
	}
}

// journalParty renders an address with the zero-address mint/burn
// sentinel spelled out.
func journalParty(a common.Address) string {
	if a == (common.Address{}) {
		return "—"
	}
	return ui.TruncateAddr(a.Hex())
}

func init() {
	journalListCmd.Flags().IntVar(&journalLimit, "limit", 0, "show only the last N records")
	journalWatchCmd.Flags().DurationVar(&journalInterval, "interval", time.Second, "poll interval")

	journalCmd.AddCommand(journalListCmd, journalWatchCmd)
}
