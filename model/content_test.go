package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableUnits(t *testing.T) {
	table := Table{
		Caption: "Recent earthquakes",
		Headers: []string{"Date", "Location", "Magnitude"},
		Rows: [][]string{
			{"2024-08-15", "Assam", "5.1"},
			{"2024-08-20", "Sikkim"},
		},
	}

	units := table.Units(2)
	require.Len(t, units, 2)

	assert.Equal(t, "TABLE_2_ROW_0", units[0].ID)
	assert.Equal(t, UnitTableRow, units[0].Kind)
	assert.Equal(t, "Recent earthquakes", units[0].TableCaption)
	assert.Equal(t, "2024-08-15 | Assam | 5.1", units[0].Content())

	cell, ok := units[1].Cell(1)
	assert.True(t, ok)
	assert.Equal(t, "Sikkim", cell)

	_, ok = units[1].Cell(2)
	assert.False(t, ok, "Expected short row to report missing cell")
}

func TestDocumentUnits(t *testing.T) {
	doc := &Document{
		Paragraphs: []string{"First paragraph.", "Second paragraph."},
		Tables: []Table{
			{Headers: []string{"Date"}, Rows: [][]string{{"2024-01-01"}}},
		},
	}

	units := doc.Units()
	require.Len(t, units, 3)
	assert.Equal(t, "PARAGRAPH_0", units[0].ID)
	assert.Equal(t, "PARAGRAPH_1", units[1].ID)
	assert.Equal(t, "TABLE_0_ROW_0", units[2].ID)
	assert.Equal(t, "Second paragraph.", units[1].Content())
	assert.Equal(t, "First paragraph.\nSecond paragraph.", doc.Text())
}
