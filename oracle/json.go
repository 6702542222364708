package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/siherrmann/eventer/helper"
)

// CleanJSON strips markdown code fences and surrounding prose from a reply,
// returning the outermost JSON object or array.
func CleanJSON(content string) string {
	s := strings.TrimSpace(content)

	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		rest = strings.TrimPrefix(rest, "json")
		rest = strings.TrimPrefix(rest, "JSON")
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		s = strings.TrimSpace(rest)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}

// DecodeJSON cleans content and unmarshals it into v.
func DecodeJSON(content string, v interface{}) error {
	cleaned := CleanJSON(content)
	if cleaned == "" {
		return helper.NewError("decode reply", fmt.Errorf("empty reply"))
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return helper.NewError("decode reply", err)
	}
	return nil
}
