package extract

import (
	"strings"
	"testing"

	"github.com/siherrmann/eventer/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
	<title>Kerala floods: 25 dead as rivers overflow</title>
	<meta name="description" content="Heavy monsoon rain floods central Kerala.">
	<meta property="article:published_time" content="2024-08-16T09:15:00+05:30">
	<script>var tracking = "Skip to content";</script>
</head>
<body>
	<nav><p>Home | National | World | Sports | Entertainment</p></nav>
	<header><p>Subscribe to our newsletter for daily updates</p></header>
	<p>Skip to main content of this article please</p>
	<article>
		<p>Short line.</p>
		<p>Floods triggered by heavy rain killed 25 people in Kerala on 2024-08-15, officials said.</p>
		<p>More than 3,000 people were moved to relief camps in Wayanad and Idukki.</p>
		<table>
			<caption>District wise toll</caption>
			<tr><th>Date</th><th>Location</th><th>Deaths</th></tr>
			<tr><td>2024-08-15</td><td>Kerala</td><td>25</td></tr>
			<tr><td></td><td></td><td></td></tr>
		</table>
	</article>
	<footer><p>Copyright 2024 Example News. All rights reserved.</p></footer>
</body>
</html>`

func TestParseHTML(t *testing.T) {
	doc, err := ParseHTML(samplePage, "https://www.example-news.in/kerala-floods")
	require.NoError(t, err, "Expected ParseHTML to not return an error")

	t.Run("Source metadata", func(t *testing.T) {
		assert.Equal(t, "Kerala floods: 25 dead as rivers overflow", doc.Source.Title)
		assert.Equal(t, "Heavy monsoon rain floods central Kerala.", doc.Source.Description)
		assert.Equal(t, "2024-08-16", doc.Source.PublishDate)
		assert.Equal(t, "example-news.in", doc.Source.Domain)
		assert.Equal(t, 2, doc.Source.Metadata["paragraph_count"])
	})

	t.Run("Paragraphs skip boilerplate and short text", func(t *testing.T) {
		require.Len(t, doc.Paragraphs, 2)
		assert.True(t, strings.HasPrefix(doc.Paragraphs[0], "Floods triggered"))
		for _, p := range doc.Paragraphs {
			assert.NotContains(t, p, "newsletter")
			assert.NotContains(t, p, "Copyright")
		}
	})

	t.Run("Tables keep caption headers and non empty rows", func(t *testing.T) {
		require.Len(t, doc.Tables, 1)
		table := doc.Tables[0]
		assert.Equal(t, "District wise toll", table.Caption)
		assert.Equal(t, []string{"Date", "Location", "Deaths"}, table.Headers)
		assert.Equal(t, [][]string{{"2024-08-15", "Kerala", "25"}}, table.Rows)
	})
}

func TestParseHTMLFallbacks(t *testing.T) {
	page := `<html><head><meta property="og:title" content="Cyclone update"></head>
	<body><time datetime="2024-10-25">Oct 25</time><p>A cyclone crossed the Odisha coast overnight with strong winds.</p></body></html>`

	doc, err := ParseHTML(page, "https://news.example.org/a")
	require.NoError(t, err)
	assert.Equal(t, "Cyclone update", doc.Source.Title, "Expected og:title when title tag is missing")
	assert.Equal(t, "2024-10-25", doc.Source.PublishDate, "Expected time element as publish date")
	assert.Empty(t, doc.Tables)
}

func TestDocumentFromText(t *testing.T) {
	doc := DocumentFromText("First paragraph\nwraps here.\n\n\n  Second one.  \n", model.SourceMetadata{URL: "https://www.thehindu.com/x"})
	assert.Equal(t, []string{"First paragraph wraps here.", "Second one."}, doc.Paragraphs)
	assert.Equal(t, "thehindu.com", doc.Source.Domain)
}
