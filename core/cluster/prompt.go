package cluster

import (
	"fmt"
	"strings"

	"github.com/siherrmann/eventer/helper"
	"github.com/siherrmann/eventer/model"
)

// Prompt limits.
const (
	MaxPromptParagraphs = 50
	MaxPromptTables     = 10
	MaxPromptTableRows  = 20
	MinParagraphLength  = 50
)

// BuildPrompt serializes a document for the clustering oracle.
func BuildPrompt(in Input) string {
	var b strings.Builder

	b.WriteString("You are a disaster event extraction expert. Analyze this web content and extract DISCRETE disaster events.\n\n")

	b.WriteString("ARTICLE METADATA:\n")
	fmt.Fprintf(&b, "- URL: %s\n", orUnknown(in.Meta.URL))
	fmt.Fprintf(&b, "- Title: %s\n", orUnknown(in.Meta.Title))
	fmt.Fprintf(&b, "- Published: %s\n\n", orUnknown(in.Meta.PublishDate))

	if in.Bounds.HasConstraint {
		start, end := helper.FormatDate(in.Bounds.StartDate), helper.FormatDate(in.Bounds.EndDate)
		b.WriteString("TIME CONSTRAINT:\n")
		fmt.Fprintf(&b, "- Requested: %s\n", in.Bounds.Description)
		fmt.Fprintf(&b, "- Start Date: %s\n", start)
		fmt.Fprintf(&b, "- End Date: %s\n", end)
		fmt.Fprintf(&b, "Only extract events that occurred between %s and %s. ", start, end)
		b.WriteString("If you cannot determine the date of an event, do not include it.\n\n")
	}

	b.WriteString("AVAILABLE ENTITIES:\n")
	fmt.Fprintf(&b, "- Dates found: %s\n", list(in.Entities.Dates))
	fmt.Fprintf(&b, "- Locations found: %s\n", list(in.Entities.Locations))
	fmt.Fprintf(&b, "- Events mentioned: %s\n", list(in.Entities.EventNames))
	fmt.Fprintf(&b, "- Casualties: %v\n\n", in.Entities.CasualtyNumbers)

	b.WriteString("CONTENT BLOCKS:\n")
	for _, block := range contentBlocks(in.Units) {
		b.WriteString(block)
		b.WriteString("\n")
	}

	b.WriteString(`
TASK:
Extract discrete disaster events with event_id, event_type (flood/earthquake/cyclone/drought/landslide),
description (max 200 chars), start_date (YYYY-MM-DD), end_date (YYYY-MM-DD or null if ongoing),
locations, primary_location, content_ids (the PARAGRAPH_X or TABLE_X_ROW_Y ids describing the event),
casualties (deaths, injured, displaced as numbers) and severity (low/medium/high).

RULES:
- If several blocks describe the same event (same date and location), merge them into ONE event.
- Resolve relative dates like "today" or "yesterday" using the published date.
  If that is impossible, write the start_date as "RELATIVE:<phrase>".
- Use dates from tables if a paragraph lacks them.

OUTPUT FORMAT (JSON):
{"events": [{"event_id": "event_1", "event_type": "earthquake", "description": "6.5 magnitude earthquake in Delhi",
"start_date": "2025-11-06", "end_date": null, "locations": ["Delhi", "Faridabad"], "primary_location": "Delhi",
"content_ids": ["PARAGRAPH_3", "PARAGRAPH_5"], "casualties": {"deaths": 4, "injured": 20, "displaced": 0}, "severity": "medium"}]}

Return ONLY valid JSON.
`)
	return b.String()
}

// contentBlocks renders at most MaxPromptParagraphs paragraph positions (skipping short ones)
// and MaxPromptTables tables with MaxPromptTableRows rows each.
func contentBlocks(units []model.ContentUnit) []string {
	var blocks []string
	tables := map[int]*strings.Builder{}
	var tableOrder []int

	for _, u := range units {
		switch u.Kind {
		case model.UnitParagraph:
			if u.RowIndex >= MaxPromptParagraphs || len(u.Text) <= MinParagraphLength {
				continue
			}
			blocks = append(blocks, fmt.Sprintf("%s: %s", u.ID, u.Text))
		case model.UnitTableRow:
			if u.TableIndex >= MaxPromptTables || u.RowIndex >= MaxPromptTableRows {
				continue
			}
			tb, ok := tables[u.TableIndex]
			if !ok {
				tb = &strings.Builder{}
				fmt.Fprintf(tb, "TABLE_%d (Caption: %s)\n", u.TableIndex, orNA(u.TableCaption))
				fmt.Fprintf(tb, "Headers: %s\n", list(u.Headers))
				tables[u.TableIndex] = tb
				tableOrder = append(tableOrder, u.TableIndex)
			}
			fmt.Fprintf(tb, "Row %d (%s): %s\n", u.RowIndex, u.ID, list(u.Cells))
		}
	}

	for _, t := range tableOrder {
		blocks = append(blocks, tables[t].String())
	}
	return blocks
}

func list(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	return "[" + strings.Join(values, ", ") + "]"
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
