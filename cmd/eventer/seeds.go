package main

import (
	"fmt"
	"sort"
)

// Execute implements the go-flags Commander interface for SeedsCommand.
func (c *SeedsCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	if c.DisasterType != "" {
		queries := cfg.Queries(c.DisasterType)
		if len(queries) == 0 {
			return fmt.Errorf("no seed queries for disaster type %q", c.DisasterType)
		}
		return writeJSON(c.out, map[string][]string{c.DisasterType: queries})
	}

	types := make([]string, 0, len(cfg.SeedQueries))
	for t := range cfg.SeedQueries {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, t := range types {
		fmt.Fprintf(c.out, "%s:\n", t)
		for _, q := range cfg.SeedQueries[t] {
			fmt.Fprintf(c.out, "  %s\n", q)
		}
	}
	return nil
}
