package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const maxRecent = 8

// ProgressMsg reports one allocation. It arrives twice per iteration: once
// when submitted and once when mined.
type ProgressMsg struct {
	Cohort    string
	Iteration int // 0-based
	Wallets   int
	Address   string
	Amount    uint64
	TxHash    string
	Nonce     uint64
	Mined     bool
}

// ProgressDoneMsg ends the view. Err is nil on success.
type ProgressDoneMsg struct{ Err error }

// ProgressModel is the Bubble Tea model for the live allocation view.
type ProgressModel struct {
	Title    string
	Quitting bool

	cancel  func()
	spinner spinner.Model
	bar     progress.Model

	cohort  string
	done    int
	total   int
	tokens  uint64
	pending *ProgressMsg
	recent  []ProgressMsg
	err     error
	over    bool
}

// NewProgressModel returns a model; cancel is invoked when the user quits.
func NewProgressModel(title string, cancel func()) ProgressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StyleChain
	return ProgressModel{
		Title:   title,
		cancel:  cancel,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (m ProgressModel) Init() tea.Cmd { return m.spinner.Tick }

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil && !m.over {
				m.cancel()
			}
			m.Quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ProgressMsg:
		if msg.Cohort != m.cohort {
			m.cohort = msg.Cohort
			m.tokens = 0
			m.recent = nil
		}
		m.total = msg.Wallets
		if !msg.Mined {
			p := msg
			m.pending = &p
			return m, nil
		}
		m.pending = nil
		m.done = msg.Iteration + 1
		m.tokens += msg.Amount
		m.recent = append([]ProgressMsg{msg}, m.recent...)
		if len(m.recent) > maxRecent {
			m.recent = m.recent[:maxRecent]
		}

	case ProgressDoneMsg:
		m.over = true
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// Done returns the number of mined allocations in the current cohort.
func (m ProgressModel) Done() int { return m.done }

// Err returns the error the run ended with.
func (m ProgressModel) Err() error { return m.err }

func (m ProgressModel) View() string {
	if m.Quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(m.Title) + "\n")

	if m.cohort == "" {
		sb.WriteString(m.spinner.View() + StyleMeta.Render(" connecting…") + "\n")
		return sb.String()
	}

	pct := 0.0
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}
	sb.WriteString(fmt.Sprintf("%s  %s  %s\n",
		ChainName(m.cohort),
		m.bar.ViewAs(pct),
		Val(fmt.Sprintf("%d/%d", m.done, m.total))))
	sb.WriteString(Meta("  allocated "+Tokens(m.tokens)+" tokens") + "\n\n")

	if m.pending != nil {
		sb.WriteString(fmt.Sprintf("%s #%d %s %s %s\n",
			m.spinner.View(),
			m.pending.Iteration+1,
			Addr(TruncateAddr(m.pending.Address)),
			Val(Tokens(m.pending.Amount)),
			Meta(fmt.Sprintf("waiting for %s (nonce %d)", TruncateAddr(m.pending.TxHash), m.pending.Nonce))))
	}
	for _, r := range m.recent {
		sb.WriteString(fmt.Sprintf("%s #%d %s %s %s\n",
			StyleSuccess.Render("✓"),
			r.Iteration+1,
			Addr(TruncateAddr(r.Address)),
			Val(Tokens(r.Amount)),
			Meta(TruncateAddr(r.TxHash))))
	}

	switch {
	case m.err != nil:
		sb.WriteString("\n" + Err(m.err.Error()) + "\n")
	case m.over:
		sb.WriteString("\n" + Success("done") + "\n")
	default:
		sb.WriteString("\n" + StyleMeta.Render("[ q ] cancel") + "\n")
	}
	return sb.String()
}
