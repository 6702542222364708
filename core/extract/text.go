package extract

import (
	"regexp"
	"strings"
)

var blankLineRegex = regexp.MustCompile(`\n\s*\n`)

// SplitParagraphs splits plain text on blank lines, dropping empty paragraphs.
// Line breaks inside a paragraph are folded into spaces.
func SplitParagraphs(text string) []string {
	paragraphs := []string{}
	for _, para := range blankLineRegex.Split(text, -1) {
		para = collapseSpace(para)
		if para == "" {
			continue
		}
		paragraphs = append(paragraphs, para)
	}
	return paragraphs
}

// SplitSentences splits text after sentence punctuation followed by a space.
func SplitSentences(text string) []string {
	text = strings.ReplaceAll(text, "! ", "!|")
	text = strings.ReplaceAll(text, "? ", "?|")
	text = strings.ReplaceAll(text, ". ", ".|")

	var sentences []string
	for _, s := range strings.Split(text, "|") {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// Summarize returns whole leading sentences of text up to maxLen characters.
// A first sentence longer than maxLen is cut at maxLen.
func Summarize(text string, maxLen int) string {
	text = collapseSpace(text)
	if len(text) <= maxLen {
		return text
	}

	var b strings.Builder
	for _, s := range SplitSentences(text) {
		extra := len(s)
		if b.Len() > 0 {
			extra++
		}
		if b.Len()+extra > maxLen {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}
	if b.Len() == 0 {
		return text[:maxLen]
	}
	return b.String()
}
