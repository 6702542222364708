package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/siherrmann/eventer/helper"
)

// Metadata holds free-form crawl details of a source page, like its summary
// and element counts. It is stored as a JSONB object, so a nil map is written as {}.
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(map[string]interface{}(m))
	if err != nil {
		return nil, helper.NewError("marshal metadata", err)
	}
	return b, nil
}

func (m *Metadata) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case Metadata:
		*m = v
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return helper.NewError("scan metadata", fmt.Errorf("unsupported type %T", value))
	}

	decoded := map[string]interface{}{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return helper.NewError("unmarshal metadata", err)
	}
	*m = decoded
	return nil
}

// String returns the value of key if it is a string.
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Int returns the value of key as an int. Counts read back from JSON arrive as float64.
func (m Metadata) Int(key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}
