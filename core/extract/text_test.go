package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitParagraphs(t *testing.T) {
	t.Run("Blank lines separate paragraphs", func(t *testing.T) {
		paragraphs := SplitParagraphs("One.\n\nTwo.\n \nThree.")
		assert.Equal(t, []string{"One.", "Two.", "Three."}, paragraphs)
	})

	t.Run("Empty text", func(t *testing.T) {
		assert.Empty(t, SplitParagraphs("   \n\n  "))
	})
}

func TestSplitSentences(t *testing.T) {
	sentences := SplitSentences("Rain fell. Rivers rose! Will it stop? Nobody knows.")
	assert.Equal(t, []string{"Rain fell.", "Rivers rose!", "Will it stop?", "Nobody knows."}, sentences)
}

func TestSummarize(t *testing.T) {
	text := "Floods hit Assam. Thousands moved to camps. Rain expected to continue."

	assert.Equal(t, text, Summarize(text, 200), "Expected short text unchanged")
	assert.Equal(t, "Floods hit Assam. Thousands moved to camps.", Summarize(text, 50))
	assert.Equal(t, "Floods hit", Summarize(text, 10), "Expected long first sentence to be cut")
}
