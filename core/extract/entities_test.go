package extract

import (
	"testing"

	"github.com/siherrmann/eventer/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDates(t *testing.T) {
	t.Run("Finds all surface forms in order", func(t *testing.T) {
		text := "Rain began on 14/08/2024 and by August 16, 2024 the river crossed the danger mark. " +
			"Relief camps opened on 2024-08-18 and closed 3 September 2024."

		dates := ExtractDates(text)
		assert.Equal(t, []string{"14/08/2024", "August 16, 2024", "2024-08-18", "3 September 2024"}, dates)
	})

	t.Run("Drops implausible numeric years", func(t *testing.T) {
		dates := ExtractDates("Readings of 6/5/1999 and 1/2/2099 were discarded, 5/8/24 was kept.")
		assert.Equal(t, []string{"5/8/24"}, dates)
	})

	t.Run("Distinct dates", func(t *testing.T) {
		dates := ExtractDates("On 2024-08-15 it rained. Again, 2024-08-15 was the worst day.")
		assert.Equal(t, []string{"2024-08-15"}, dates)
	})

	t.Run("No dates", func(t *testing.T) {
		assert.Empty(t, ExtractDates("magnitude 6.2 tremor felt widely"))
	})
}

func TestExtractLocations(t *testing.T) {
	t.Run("Whole word case insensitive matches", func(t *testing.T) {
		locations := ExtractLocations("Heavy rain in KERALA and tamil nadu, a depression over the Bay of  Bengal.")
		assert.Equal(t, []string{"Kerala", "Tamil Nadu", "Bay of Bengal"}, locations)
	})

	t.Run("No partial word matches", func(t *testing.T) {
		assert.Empty(t, ExtractLocations("Goal posts and Assamese tea"), "Expected Goa and Assam to not match inside words")
	})

	t.Run("Extra locations", func(t *testing.T) {
		e := NewExtractor("Kozhikode")
		assert.Equal(t, []string{"Kozhikode", "Kerala"}, e.ExtractLocations("Kozhikode district of Kerala"))
	})
}

func TestExtractCasualties(t *testing.T) {
	text := "At least 25 people killed, 40 injured and 1,200 displaced. The death toll of 27 was confirmed later."

	assert.Equal(t, []int{25, 40, 1200, 27}, ExtractCasualties(text), "Expected first-seen order")

	counts := ExtractCasualtyCounts(text)
	assert.Equal(t, model.Casualties{Deaths: 25, Injured: 40, Displaced: 1200}, counts)

	assert.Equal(t, model.Casualties{}, ExtractCasualtyCounts("No casualties were reported."))
	assert.Empty(t, ExtractCasualties("The quake measured 5.4 on the Richter scale."))
}

func TestDetectEventTypes(t *testing.T) {
	types := DetectEventTypes("Floods and flooding after the cyclone. Flood relief continues.")
	require.Len(t, types, 2)
	assert.Equal(t, model.EventFlood, types[0], "Expected most mentioned family first")
	assert.Equal(t, model.EventCyclone, types[1])

	assert.Empty(t, DetectEventTypes("A quiet day at the market."))
}

func TestExtractEventNames(t *testing.T) {
	names := ExtractEventNames("Cyclone Dana made landfall. An earthquake of magnitude 5.2 followed, flood in Assam.")
	assert.Contains(t, names, "cyclone: Dana")
	assert.Contains(t, names, "earthquake: 5.2")
	assert.Contains(t, names, "flood: Assam")
}

func TestExtractEntities(t *testing.T) {
	units := []model.ContentUnit{
		model.NewParagraph(0, "Floods hit Assam on 2024-07-02, 12 people died."),
		model.NewParagraph(1, "Relief operations in Bihar continued through July 5, 2024."),
	}
	units = append(units, model.Table{
		Headers: []string{"Date", "Location", "Deaths"},
		Rows:    [][]string{{"2024-08-15", "Kerala", "25"}},
	}.Units(0)...)

	entities := ExtractEntities(units)

	assert.Equal(t, []string{"2024-07-02", "July 5, 2024", "2024-08-15"}, entities.Dates)
	assert.Equal(t, []string{"Assam", "Bihar", "Kerala"}, entities.Locations)
	assert.Equal(t, []int{12}, entities.CasualtyNumbers)
	assert.Contains(t, entities.EventKeywords, "flood")
	assert.Contains(t, entities.EventKeywords, "relief")

	t.Run("Per unit dates and locations", func(t *testing.T) {
		assert.Equal(t, []string{"2024-07-02"}, entities.UnitDates["PARAGRAPH_0"])
		assert.Equal(t, []string{"Assam"}, entities.UnitLocations["PARAGRAPH_0"])
		assert.Equal(t, []string{"July 5, 2024"}, entities.UnitDates["PARAGRAPH_1"])
		assert.Equal(t, []string{"Kerala"}, entities.UnitLocations["TABLE_0_ROW_0"])
	})

	t.Run("Empty input", func(t *testing.T) {
		empty := ExtractEntities(nil)
		assert.True(t, empty.Empty())
		assert.NotNil(t, empty.UnitDates)
	})
}
