package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// KeyValueBlock
// ---------------------------------------------------------------------------

func TestKeyValueBlockContainsTitleAndPairs(t *testing.T) {
	result := KeyValueBlock("My Title", [][2]string{
		{"Owner", "0xABC"},
		{"Balance", "1000 WDT"},
	})
	assert.Contains(t, result, "My Title")
	assert.Contains(t, result, "Owner")
	assert.Contains(t, result, "0xABC")
	assert.Contains(t, result, "Balance")
	assert.Contains(t, result, "1000 WDT")
}

func TestKeyValueBlockEmptyTitle(t *testing.T) {
	result := KeyValueBlock("", [][2]string{
		{"Key", "Value"},
	})
	assert.Contains(t, result, "Key")
	assert.Contains(t, result, "Value")
}

func TestKeyValueBlockNoPairs(t *testing.T) {
	result := KeyValueBlock("Empty Block", [][2]string{})
	assert.Contains(t, result, "Empty Block")
	assert.NotEmpty(t, result)
}

func TestKeyValueBlockMultiplePairsPreservesOrder(t *testing.T) {
	result := KeyValueBlock("Config", [][2]string{
		{"First", "AAA"},
		{"Second", "BBB"},
		{"Third", "CCC"},
	})
	idxFirst := strings.Index(result, "First")
	idxSecond := strings.Index(result, "Second")
	idxThird := strings.Index(result, "Third")
	require.Greater(t, idxFirst, -1)
	require.Greater(t, idxSecond, -1)
	require.Greater(t, idxThird, -1)
	assert.Less(t, idxFirst, idxSecond, "First should appear before Second")
	assert.Less(t, idxSecond, idxThird, "Second should appear before Third")
}

func TestKeyValueBlockHasBorder(t *testing.T) {
	result := KeyValueBlock("Bordered", [][2]string{
		{"Key", "Val"},
	})
	// lipgloss RoundedBorder uses ╭ and ╰ for corners.
	assert.Contains(t, result, "╭", "should have top-left rounded border")
	assert.Contains(t, result, "╰", "should have bottom-left rounded border")
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func TestNewTableCreatesEmptyTable(t *testing.T) {
	cols := []Column{
		{Title: "Name", Width: 10},
		{Title: "Value", Width: 20},
	}
	tbl := NewTable(cols)
	assert.Len(t, tbl.Columns, 2)
	assert.Empty(t, tbl.Rows)
	assert.Equal(t, -1, tbl.SelIdx)
}

func TestTableAddRow(t *testing.T) {
	tbl := NewTable([]Column{{Title: "A", Width: 5}})
	tbl.AddRow(Row{"hello"})
	tbl.AddRow(Row{"world"})
	assert.Len(t, tbl.Rows, 2)
}

func TestTableRenderContainsHeaders(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "Account", Width: 14},
		{Title: "Balance", Width: 12},
	})
	result := tbl.Render()
	assert.Contains(t, result, "Account")
	assert.Contains(t, result, "Balance")
}

func TestTableRenderContainsRowData(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "Kind", Width: 16},
		{Title: "Value", Width: 12},
	})
	tbl.AddRow(Row{"transfer", "300"})
	tbl.AddRow(Row{"approval", "400"})

	result := tbl.Render()
	assert.Contains(t, result, "transfer")
	assert.Contains(t, result, "300")
	assert.Contains(t, result, "approval")
	assert.Contains(t, result, "400")
}

func TestTableRenderHasDivider(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Col", Width: 8}})
	result := tbl.Render()
	assert.Contains(t, result, "--------", "should have a divider line")
}

func TestTableRenderRowShorterThanColumns(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "A", Width: 5},
		{Title: "B", Width: 5},
		{Title: "C", Width: 5},
	})
	tbl.AddRow(Row{"only1"})
	// Should not panic — missing cells render as empty.
	result := tbl.Render()
	assert.Contains(t, result, "only1")
}

func TestTableRenderPreservesRowOrder(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Item", Width: 10}})
	tbl.AddRow(Row{"first"})
	tbl.AddRow(Row{"second"})
	tbl.AddRow(Row{"third"})

	result := tbl.Render()
	idxFirst := strings.Index(result, "first")
	idxSecond := strings.Index(result, "second")
	idxThird := strings.Index(result, "third")
	assert.Less(t, idxFirst, idxSecond)
	assert.Less(t, idxSecond, idxThird)
}

func TestTableRenderSelectedRow(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Name", Width: 10}})
	tbl.AddRow(Row{"row0"})
	tbl.AddRow(Row{"row1"})
	tbl.SelIdx = 1

	result := tbl.Render()
	assert.Contains(t, result, "row0")
	assert.Contains(t, result, "row1")
}

func TestTableMultipleColumns(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "Seq", Width: 6},
		{Title: "From", Width: 14},
		{Title: "To", Width: 14},
	})
	tbl.AddRow(Row{"1", "0xabc", "0xdef"})
	result := tbl.Render()
	assert.Contains(t, result, "Seq")
	assert.Contains(t, result, "From")
	assert.Contains(t, result, "To")
	assert.Contains(t, result, "0xabc")
	assert.Contains(t, result, "0xdef")
}
