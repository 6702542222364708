package main

import (
	"context"
	"fmt"
	"time"

	"github.com/siherrmann/eventer/helper"
	"github.com/siherrmann/eventer/model"
)

// query converts the flags into an event query.
func (c *EventsCommand) query() (model.EventQuery, error) {
	q := model.EventQuery{
		DisasterType: c.DisasterType,
		Location:     c.Location,
		Limit:        c.Limit,
	}
	if c.From != "" {
		from, err := helper.ParseDate(c.From)
		if err != nil {
			return q, err
		}
		q.From = &from
	}
	if c.To != "" {
		to, err := helper.ParseDate(c.To)
		if err != nil {
			return q, err
		}
		q.To = &to
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return q, helper.NewError("events query", fmt.Errorf("--to %s is before --from %s", c.To, c.From))
	}
	return q, nil
}

// Execute implements the go-flags Commander interface for EventsCommand.
func (c *EventsCommand) Execute(args []string) error {
	q, err := c.query()
	if err != nil {
		return err
	}

	e, err := newEventer(c.globals, true)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := context.Background()
	if c.Summary {
		summary, err := e.Events.SelectSummary(ctx)
		if err != nil {
			return err
		}
		return writeJSON(c.out, summary)
	}

	events, err := e.Events.SelectEvents(ctx, q)
	if err != nil {
		return err
	}
	return writeJSON(c.out, events)
}

// Execute implements the go-flags Commander interface for PruneCommand.
func (c *PruneCommand) Execute(args []string) error {
	e, err := newEventer(c.globals, true)
	if err != nil {
		return err
	}
	defer e.Close()

	deleted, err := e.Events.DeleteExpiredEvents(context.Background(), time.Now())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.out, "deleted %d expired events\n", deleted)
	return err
}
