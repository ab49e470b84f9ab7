package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// WatchRecordMsg is sent when a new journal record is found during
// polling.
type WatchRecordMsg struct {
	Seq      uint64
	Kind     string // "transfer" | "approval" | "permit-accepted"
	From     string // truncated owner/sender address
	To       string // truncated spender/recipient address
	ValueStr string // formatted token amount
	Symbol   string
	Time     time.Time
}

// WatchStatusMsg updates the polling status bar.
type WatchStatusMsg struct {
	LastSeq  uint64
	Fetching bool
	ErrMsg   string
}

// WatchModel is the Bubble Tea model for the live journal stream.
type WatchModel struct {
	Token    string // token name for the title
	Rows     []WatchRecordMsg
	cursor   int
	Status   WatchStatusMsg
	Frame    int
	Quitting bool
}

type watchTickMsg struct{}

var watchSpinFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func watchSpinTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return watchTickMsg{}
	})
}

func (m WatchModel) Init() tea.Cmd { return watchSpinTick() }

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.Rows)-1 {
				m.cursor++
			}
		}

	case watchTickMsg:
		m.Frame = (m.Frame + 1) % len(watchSpinFrames)
		return m, watchSpinTick()

	case WatchRecordMsg:
		// New records prepend so latest is at top.
		m.Rows = append([]WatchRecordMsg{msg}, m.Rows...)
		// Cap at 200 rows.
		if len(m.Rows) > 200 {
			m.Rows = m.Rows[:200]
		}

	case WatchStatusMsg:
		m.Status = msg
	}

	return m, nil
}

func (m WatchModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	spin := watchSpinFrames[m.Frame]

	title := fmt.Sprintf("👁  Live Ledger Records  ·  %s", m.Token)
	sb.WriteString(StyleTitle.Render(title) + "\n")

	// Status bar.
	switch {
	case m.Status.ErrMsg != "":
		sb.WriteString(StyleError.Render("✗ "+m.Status.ErrMsg) + "\n\n")
	case m.Status.Fetching:
		sb.WriteString(StyleAccent.Render(fmt.Sprintf("%s tailing journal from seq %d…", spin, m.Status.LastSeq)) + "\n\n")
	case m.Status.LastSeq > 0:
		sb.WriteString(StyleMeta.Render(fmt.Sprintf("  last seen: seq %d", m.Status.LastSeq)) + "\n\n")
	default:
		sb.WriteString(StyleMeta.Render("  opening journal…") + "\n\n")
	}

	const (
		wSeq  = 6
		wKind = 16
		wAddr = 14
		wVal  = 20
	)
	sep := StyleMeta.Render(strings.Repeat("─", wSeq+wKind+2*wAddr+wVal+10))

	sb.WriteString(
		padR(StyleDim.Render("SEQ"), wSeq) + "  " +
			padR(StyleDim.Render("KIND"), wKind) + "  " +
			padR(StyleDim.Render("FROM"), wAddr) + "  " +
			padR(StyleDim.Render("TO"), wAddr) + "  " +
			StyleDim.Render("VALUE") + "\n",
	)
	sb.WriteString(sep + "\n")

	if len(m.Rows) == 0 {
		sb.WriteString(StyleMeta.Render("  Waiting for records…") + "\n")
	} else {
		for i, row := range m.Rows {
			seqStr := StyleMeta.Render(fmt.Sprintf("#%d", row.Seq))

			var kindStr string
			switch row.Kind {
			case "transfer":
				kindStr = StyleWarning.Render(row.Kind)
			case "permit-accepted":
				kindStr = StyleSuccess.Render(row.Kind)
			default:
				kindStr = StyleAddress.Render(row.Kind)
			}

			valStr := StyleValue.Render(row.ValueStr) + " " + StyleDim.Render(row.Symbol)

			line :=
				padR(seqStr, wSeq) + "  " +
					padR(kindStr, wKind) + "  " +
					padR(StyleAddress.Render(row.From), wAddr) + "  " +
					padR(StyleAddress.Render(row.To), wAddr) + "  " +
					valStr

			if i == m.cursor {
				sb.WriteString(StyleSelected.Render(line) + "\n")
			} else {
				sb.WriteString(line + "\n")
			}
		}
		sb.WriteString(sep + "\n")
		sb.WriteString(StyleMeta.Render(fmt.Sprintf("  %d record(s)", len(m.Rows))) + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(watchControls())
	sb.WriteString("\n")

	return sb.String()
}

func watchControls() string {
	sep := StyleMeta.Render("   ")
	var sb strings.Builder
	sb.WriteString(StyleMeta.Render("[ ↑↓ ]"))
	sb.WriteString(StyleMeta.Render(" navigate"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ q ]"))
	sb.WriteString(StyleMeta.Render(" quit"))
	return sb.String()
}
