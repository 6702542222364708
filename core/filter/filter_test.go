package filter

import (
	"testing"
	"time"

	"github.com/siherrmann/eventer/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 8, 20, 9, 0, 0, 0, time.UTC)

func august(constraint bool) model.TimeBounds {
	return model.TimeBounds{
		StartDate:     time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC),
		HasConstraint: constraint,
		Description:   "August 2024",
	}
}

func TestFilterEvents(t *testing.T) {
	events := []model.DiscreteEvent{
		{ID: "after", StartDate: "2024-09-01"},
		{ID: "last day", StartDate: "2024-08-31"},
		{ID: "first day", StartDate: "2024-08-01"},
		{ID: "before", StartDate: "2024-07-31"},
		{ID: "no start", PrimaryLocation: "Kerala"},
		{ID: "relative", StartDate: "RELATIVE:today"},
		{ID: "garbage", StartDate: "sometime"},
		{ID: "bare year", StartDate: "2024"},
		{ID: "end outside", StartDate: "2024-08-30", EndDate: "2024-09-05"},
	}

	t.Run("Constraint active", func(t *testing.T) {
		kept := FilterEvents(events, august(true), now)
		ids := []string{}
		for _, e := range kept {
			ids = append(ids, e.ID)
		}
		assert.Equal(t, []string{"last day", "first day", "relative", "end outside"}, ids)
	})

	t.Run("No constraint is identity", func(t *testing.T) {
		assert.Equal(t, events, FilterEvents(events, august(false), now))
	})

	t.Run("Relative outside window", func(t *testing.T) {
		later := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
		kept := FilterEvents([]model.DiscreteEvent{{ID: "relative", StartDate: "RELATIVE:yesterday"}}, august(true), later)
		assert.Empty(t, kept)
	})

	t.Run("Empty input", func(t *testing.T) {
		assert.Empty(t, FilterEvents(nil, august(true), now))
	})
}

func TestFilterCandidates(t *testing.T) {
	candidates := []model.Candidate{
		{URL: "https://news.example.com/2024/08/15/kerala-floods", Title: "Kerala floods"},
		{URL: "https://news.example.com/a", Title: "Flood situation on Aug 14, 2024"},
		{URL: "https://news.example.com/b", Title: "Old floods", Snippet: "Published 2023-08-15"},
		{URL: "https://news.example.com/c", Title: "Latest updates on Assam floods"},
		{URL: "https://news.example.com/d", Title: "Flood history of India"},
		{URL: "https://news.example.com/e", Title: "Breaking news", Snippet: "report from 20-07-2024"},
	}

	t.Run("Constraint active", func(t *testing.T) {
		kept := FilterCandidates(candidates, august(true), now)
		urls := []string{}
		for _, c := range kept {
			urls = append(urls, c.URL)
		}
		assert.Equal(t, []string{
			"https://news.example.com/2024/08/15/kerala-floods",
			"https://news.example.com/a",
			"https://news.example.com/c",
		}, urls, "Expected dated candidates outside the window to ignore recency keywords")
	})

	t.Run("No constraint is identity", func(t *testing.T) {
		assert.Equal(t, candidates, FilterCandidates(candidates, august(false), now))
	})

	t.Run("Abbreviated month in window keeps candidate", func(t *testing.T) {
		dotted := []model.Candidate{
			{URL: "https://news.example.com/f", Title: "Floods on Aug. 15, 2024"},
			{URL: "https://news.example.com/g", Title: "Flood archive"},
			{URL: "https://news.example.com/h", Title: "Monsoon history"},
		}
		kept := FilterCandidates(dotted, august(true), now)
		require.Len(t, kept, 1, "Expected only the dated candidate to survive")
		assert.Equal(t, "https://news.example.com/f", kept[0].URL)
	})

	t.Run("All dropped keeps first two", func(t *testing.T) {
		old := []model.Candidate{
			{URL: "https://x.example.com/2020/01/01/a"},
			{URL: "https://x.example.com/b", Title: "Flood archive"},
			{URL: "https://x.example.com/c", Title: "History"},
		}
		kept := FilterCandidates(old, august(true), now)
		require.Len(t, kept, 2)
		assert.Equal(t, old[:2], kept)
	})

	t.Run("All dropped with one candidate", func(t *testing.T) {
		one := []model.Candidate{{URL: "https://x.example.com/2020/01/01/a"}}
		assert.Equal(t, one, FilterCandidates(one, august(true), now))
	})
}

func TestCandidateDates(t *testing.T) {
	tests := []struct {
		name      string
		candidate model.Candidate
		expected  []string
	}{
		{"ISO date in URL", model.Candidate{URL: "https://x.in/2024-08-15/story"}, []string{"2024-08-15"}},
		{"Slashes in URL", model.Candidate{URL: "https://x.in/2024/08/15/story"}, []string{"2024-08-15"}},
		{"Day first", model.Candidate{Snippet: "updated 16/08/2024"}, []string{"2024-08-16"}},
		{"Month name", model.Candidate{Title: "Floods on November 6th, 2024"}, []string{"2024-11-06"}},
		{"Month name with dashes", model.Candidate{URL: "https://x.in/news/nov-6-2024-floods"}, []string{"2024-11-06"}},
		{"Abbreviated month with dot", model.Candidate{Title: "Floods on Aug. 15, 2024"}, []string{"2024-08-15"}},
		{"Four letter month", model.Candidate{Snippet: "Landslide reported Sept 5, 2024 in Wayanad"}, []string{"2024-09-05"}},
		{"Impossible date", model.Candidate{Snippet: "ref 2024-13-45"}, []string{}},
		{"None", model.Candidate{Title: "Monsoon"}, []string{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := []string{}
			for _, d := range CandidateDates(test.candidate) {
				got = append(got, d.Format("2006-01-02"))
			}
			assert.Equal(t, test.expected, got)
		})
	}
}
