package main

import (
	"context"
	"strings"

	"github.com/siherrmann/eventer/helper"
)

type boundsOutput struct {
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Description   string `json:"temporal_description"`
	HasConstraint bool   `json:"has_time_constraint"`
}

// Execute implements the go-flags Commander interface for BoundsCommand.
func (c *BoundsCommand) Execute(args []string) error {
	query := c.Query
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}

	e, err := newEventer(c.globals, false)
	if err != nil {
		return err
	}
	defer e.Close()

	b := e.ResolveBounds(context.Background(), query)
	return writeJSON(c.out, boundsOutput{
		StartDate:     helper.FormatDate(b.StartDate),
		EndDate:       helper.FormatDate(b.EndDate),
		Description:   b.Description,
		HasConstraint: b.HasConstraint,
	})
}
