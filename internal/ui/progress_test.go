package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m ProgressModel, msg tea.Msg) (ProgressModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm, ok := next.(ProgressModel)
	require.True(t, ok)
	return pm, cmd
}

func TestProgressModelCountsMined(t *testing.T) {
	m := NewProgressModel("Allocations", nil)
	assert.Contains(t, m.View(), "connecting")

	sub := ProgressMsg{Cohort: "team", Iteration: 0, Wallets: 1070, Address: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", Amount: 1_000_000, TxHash: "0xabcdef0123456789", Nonce: 4}
	m, _ = update(t, m, sub)
	assert.Equal(t, 0, m.Done())
	assert.Contains(t, m.View(), "nonce 4")

	sub.Mined = true
	m, _ = update(t, m, sub)
	assert.Equal(t, 1, m.Done())
	view := m.View()
	assert.Contains(t, view, "team")
	assert.Contains(t, view, "1/1070")
	assert.Contains(t, view, "1,000,000")
}

func TestProgressModelResetsOnNewCohort(t *testing.T) {
	m := NewProgressModel("Allocations", nil)
	m, _ = update(t, m, ProgressMsg{Cohort: "team", Iteration: 1069, Wallets: 1070, Amount: 10_000, Mined: true})
	assert.Equal(t, 1070, m.Done())

	m, _ = update(t, m, ProgressMsg{Cohort: "sales", Iteration: 0, Wallets: 565, Amount: 1_000_000, Mined: true})
	assert.Equal(t, 1, m.Done())
	assert.Contains(t, m.View(), "1/565")
}

func TestProgressModelKeepsRecentBounded(t *testing.T) {
	m := NewProgressModel("Allocations", nil)
	for i := 0; i < 20; i++ {
		m, _ = update(t, m, ProgressMsg{Cohort: "sales", Iteration: i, Wallets: 565, Amount: 1, Mined: true})
	}
	assert.Len(t, m.recent, maxRecent)
	assert.Equal(t, 19, m.recent[0].Iteration)
}

func TestProgressModelDone(t *testing.T) {
	m := NewProgressModel("Allocations", nil)
	m, _ = update(t, m, ProgressMsg{Cohort: "team", Wallets: 2, Mined: true})

	boom := errors.New("transaction reverted")
	m, cmd := update(t, m, ProgressDoneMsg{Err: boom})
	require.NotNil(t, cmd)
	assert.Equal(t, boom, m.Err())
	assert.Contains(t, m.View(), "transaction reverted")
}

func TestProgressModelQuitCancels(t *testing.T) {
	cancelled := false
	m := NewProgressModel("Allocations", func() { cancelled = true })

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.True(t, cancelled)
	assert.True(t, m.Quitting)
	assert.Empty(t, m.View())
}
