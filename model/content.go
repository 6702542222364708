package model

import (
	"fmt"
	"strings"
)

// UnitKind distinguishes the two shapes of scraped content.
type UnitKind string

const (
	UnitParagraph UnitKind = "paragraph"
	UnitTableRow  UnitKind = "table_row"
)

// ContentUnit is one paragraph or one table row of a scraped document.
// Units are created once per extraction pass and never mutated.
type ContentUnit struct {
	ID           string   `json:"unit_id"`
	Kind         UnitKind `json:"kind"`
	Text         string   `json:"text,omitempty"`
	Cells        []string `json:"cells,omitempty"`
	Headers      []string `json:"headers,omitempty"`
	TableIndex   int      `json:"table_index"`
	RowIndex     int      `json:"row_index"`
	TableCaption string   `json:"table_caption,omitempty"`
}

// ParagraphID returns the unit id of the i-th paragraph.
func ParagraphID(i int) string {
	return fmt.Sprintf("PARAGRAPH_%d", i)
}

// TableRowID returns the unit id of row r of table t.
func TableRowID(t, r int) string {
	return fmt.Sprintf("TABLE_%d_ROW_%d", t, r)
}

// NewParagraph creates the paragraph unit at position i.
func NewParagraph(i int, text string) ContentUnit {
	return ContentUnit{
		ID:       ParagraphID(i),
		Kind:     UnitParagraph,
		Text:     text,
		RowIndex: i,
	}
}

// Content returns the text the detectors run on. Table rows are joined cell by cell.
func (u ContentUnit) Content() string {
	if u.Kind == UnitTableRow {
		return strings.Join(u.Cells, " | ")
	}
	return u.Text
}

// Cell returns the cell at column i, or false if the row is too short.
func (u ContentUnit) Cell(i int) (string, bool) {
	if i < 0 || i >= len(u.Cells) {
		return "", false
	}
	return strings.TrimSpace(u.Cells[i]), true
}

// Table is a scraped HTML table.
type Table struct {
	Caption string     `json:"caption,omitempty"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Units expands the table into one unit per row.
func (t Table) Units(tableIndex int) []ContentUnit {
	units := make([]ContentUnit, 0, len(t.Rows))
	for r, row := range t.Rows {
		units = append(units, ContentUnit{
			ID:           TableRowID(tableIndex, r),
			Kind:         UnitTableRow,
			Cells:        row,
			Headers:      t.Headers,
			TableIndex:   tableIndex,
			RowIndex:     r,
			TableCaption: t.Caption,
		})
	}
	return units
}
