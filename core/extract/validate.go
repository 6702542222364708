package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/siherrmann/eventer/model"
)

const (
	MinValidationScore = 5
	MinContentLength   = 500
)

// Validation is the outcome of ValidateContent.
type Validation struct {
	Valid  bool   `json:"valid"`
	Score  int    `json:"score"`
	Length int    `json:"length"`
	Reason string `json:"reason,omitempty"`
}

// ValidateContent decides whether a crawled page is worth extracting.
// Keywords are weighted 3, 2 and 1 by how strongly they indicate a disaster report.
func ValidateContent(doc *model.Document) Validation {
	text := doc.Text()
	lower := strings.ToLower(text)

	v := Validation{Length: len(text)}
	for _, kw := range highValueKeywords {
		if strings.Contains(lower, kw) {
			v.Score += 3
		}
	}
	for _, kw := range mediumValueKeywords {
		if strings.Contains(lower, kw) {
			v.Score += 2
		}
	}
	for _, kw := range lowValueKeywords {
		if strings.Contains(lower, kw) {
			v.Score++
		}
	}

	switch {
	case v.Length <= MinContentLength:
		v.Reason = "content too short"
	case v.Score < MinValidationScore:
		v.Reason = "not disaster related"
	default:
		for i, re := range errorPhraseRegexes {
			if re.MatchString(lower) {
				v.Reason = "error page: " + errorPhrases[i]
				return v
			}
		}
		v.Valid = true
	}
	return v
}

// errorPhraseRegexes match whole tokens so that numbers like 1403 do not count.
var errorPhraseRegexes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(errorPhrases))
	for _, phrase := range errorPhrases {
		res = append(res, wordRegex(phrase, true))
	}
	return res
}()

// ScoreCandidate rates a search result by its domain and the disaster
// vocabulary of its title and snippet.
func ScoreCandidate(c model.Candidate) float64 {
	domain := strings.ToLower(c.Domain)
	if domain == "" {
		domain = domainOf(c.URL)
	}

	score := 0.0
	for _, preferred := range PreferredDomains {
		if strings.Contains(domain, preferred) {
			score += 3
			break
		}
	}

	text := strings.ToLower(c.Title + " " + c.Snippet)
	for _, kw := range relevanceKeywords {
		if strings.Contains(text, kw) {
			score++
		}
	}
	return score
}

// IsExcludedDomain reports whether the url points at social media or forums.
func IsExcludedDomain(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	host := strings.ToLower(u.Hostname())
	for _, excluded := range ExcludedDomains {
		if host == excluded || strings.HasSuffix(host, "."+excluded) {
			return true
		}
	}
	return false
}
