package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValueBlock(t *testing.T) {
	result := KeyValueBlock("Deployment", [][2]string{
		{"Network", "amoy"},
		{"Token", "0x5FbDB2315678afecb367f032d93F642f64180aa3"},
	})
	assert.Contains(t, result, "Deployment")
	assert.Contains(t, result, "Network")
	assert.Contains(t, result, "amoy")
	assert.Less(t, strings.Index(result, "Network"), strings.Index(result, "Token"))
}

func TestKeyValueBlockNoTitle(t *testing.T) {
	result := KeyValueBlock("", [][2]string{{"Key", "Value"}})
	assert.Contains(t, result, "Key")
	assert.Contains(t, result, "Value")
}

func TestTableRender(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "ROLE", Width: 10},
		{Title: "AMOUNT", Width: 8, Right: true},
	})
	tbl.AddRow(Row{"team", "30000000"})
	tbl.AddRow(Row{"sales"})

	out := tbl.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "ROLE")
	assert.Contains(t, lines[1], "----------")
	assert.Contains(t, lines[2], "30000000")
	assert.Contains(t, lines[3], "sales")
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab   ", pad("ab", 5, false))
	assert.Equal(t, "   ab", pad("ab", 5, true))
	assert.Equal(t, "abc", pad("abcdef", 3, false))
	assert.Equal(t, "…x ", pad("…x", 3, false))
}
