package model

import (
	"encoding/json"
	"time"
)

// TimeBounds is the resolved date window of a request.
// StartDate and EndDate are calendar dates at UTC midnight with StartDate <= EndDate.
// HasConstraint false means no filtering should happen.
type TimeBounds struct {
	StartDate     time.Time
	EndDate       time.Time
	HasConstraint bool
	Description   string
}

// Contains reports whether the calendar date of t lies within the bounds, both ends inclusive.
func (b TimeBounds) Contains(t time.Time) bool {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return !day.Before(b.StartDate) && !day.After(b.EndDate)
}

// Days returns the number of calendar days covered.
func (b TimeBounds) Days() int {
	return int(b.EndDate.Sub(b.StartDate).Hours()/24) + 1
}

type timeBoundsJSON struct {
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Description   string `json:"temporal_description"`
	HasConstraint bool   `json:"has_time_constraint"`
}

// MarshalJSON writes the bounds with YYYY-MM-DD dates.
func (b TimeBounds) MarshalJSON() ([]byte, error) {
	return json.Marshal(timeBoundsJSON{
		StartDate:     b.StartDate.Format("2006-01-02"),
		EndDate:       b.EndDate.Format("2006-01-02"),
		Description:   b.Description,
		HasConstraint: b.HasConstraint,
	})
}

// UnmarshalJSON reads bounds written by MarshalJSON.
func (b *TimeBounds) UnmarshalJSON(data []byte) error {
	var raw timeBoundsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := time.Parse("2006-01-02", raw.StartDate)
	if err != nil {
		return err
	}
	end, err := time.Parse("2006-01-02", raw.EndDate)
	if err != nil {
		return err
	}
	*b = TimeBounds{StartDate: start, EndDate: end, HasConstraint: raw.HasConstraint, Description: raw.Description}
	return nil
}
