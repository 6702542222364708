package model

import "strings"

// SourceMetadata describes where a document came from.
type SourceMetadata struct {
	URL            string   `json:"url"`
	Title          string   `json:"title"`
	Domain         string   `json:"domain"`
	PublishDate    string   `json:"publish_date,omitempty"`
	Description    string   `json:"description,omitempty"`
	Query          string   `json:"query,omitempty"`
	RelevanceScore float64  `json:"relevance_score"`
	DisasterType   string   `json:"disaster_type,omitempty"`
	Metadata       Metadata `json:"metadata,omitempty"`
}

// Document is one scraped page split into paragraphs and tables.
type Document struct {
	Source     SourceMetadata `json:"source"`
	Paragraphs []string       `json:"paragraphs"`
	Tables     []Table        `json:"tables"`
}

// Units returns all paragraphs followed by all table rows as content units.
func (d *Document) Units() []ContentUnit {
	units := make([]ContentUnit, 0, len(d.Paragraphs))
	for i, p := range d.Paragraphs {
		units = append(units, NewParagraph(i, p))
	}
	for t, table := range d.Tables {
		units = append(units, table.Units(t)...)
	}
	return units
}

// Text returns the concatenated paragraph text.
func (d *Document) Text() string {
	return strings.Join(d.Paragraphs, "\n")
}

// Candidate is a search result that may be crawled.
type Candidate struct {
	URL            string  `json:"url"`
	Title          string  `json:"title"`
	Snippet        string  `json:"snippet"`
	Domain         string  `json:"domain"`
	Query          string  `json:"query,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
}
