package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/siherrmann/eventer/helper"
	"github.com/siherrmann/eventer/model"
)

const minParagraphLength = 20

// ParseHTML turns a crawled page into a document of paragraphs and tables.
// Navigation, header, footer, script and style elements are ignored.
func ParseHTML(html string, pageURL string) (*model.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, helper.NewError("parse html", err)
	}

	doc.Find("script, style, nav, header, footer, noscript").Remove()

	source := model.SourceMetadata{
		URL:      pageURL,
		Domain:   domainOf(pageURL),
		Metadata: model.Metadata{},
	}

	source.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if source.Title == "" {
		source.Title = metaContent(doc, `meta[property="og:title"]`)
	}
	source.Description = metaContent(doc, `meta[name="description"]`)
	if source.Description == "" {
		source.Description = metaContent(doc, `meta[property="og:description"]`)
	}
	source.PublishDate = publishDate(doc)

	result := &model.Document{Source: source}

	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := collapseSpace(s.Text())
		if len(text) > minParagraphLength && !strings.HasPrefix(text, "Skip to") {
			result.Paragraphs = append(result.Paragraphs, text)
		}
	})

	doc.Find("table").Each(func(_ int, s *goquery.Selection) {
		table := model.Table{
			Caption: collapseSpace(s.Find("caption").First().Text()),
		}
		s.Find("th").Each(func(_ int, th *goquery.Selection) {
			table.Headers = append(table.Headers, collapseSpace(th.Text()))
		})
		s.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() == 0 {
				return
			}
			row := make([]string, 0, cells.Length())
			nonEmpty := false
			cells.Each(func(_ int, td *goquery.Selection) {
				text := collapseSpace(td.Text())
				nonEmpty = nonEmpty || text != ""
				row = append(row, text)
			})
			if nonEmpty {
				table.Rows = append(table.Rows, row)
			}
		})
		if len(table.Rows) > 0 || len(table.Headers) > 0 {
			result.Tables = append(result.Tables, table)
		}
	})

	if len(result.Paragraphs) > 0 {
		summary := result.Paragraphs[0]
		if len(summary) > 300 {
			summary = summary[:300]
		}
		source.Metadata["summary"] = summary
	}
	source.Metadata["paragraph_count"] = len(result.Paragraphs)
	source.Metadata["table_count"] = len(result.Tables)
	result.Source = source

	return result, nil
}

// DocumentFromText builds a document from plain text split into paragraphs.
func DocumentFromText(text string, source model.SourceMetadata) *model.Document {
	if source.Domain == "" {
		source.Domain = domainOf(source.URL)
	}
	return &model.Document{
		Source:     source,
		Paragraphs: SplitParagraphs(text),
	}
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func publishDate(doc *goquery.Document) string {
	for _, selector := range []string{
		`meta[property="article:published_time"]`,
		`meta[name="publish-date"]`,
		`meta[name="date"]`,
		`meta[itemprop="datePublished"]`,
	} {
		if v := metaContent(doc, selector); v != "" {
			if normalized, err := helper.NormalizeDate(v); err == nil {
				return normalized
			}
		}
	}

	if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		if normalized, err := helper.NormalizeDate(v); err == nil {
			return normalized
		}
	}
	return ""
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
