package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	goflags "github.com/jessevdk/go-flags"
	"github.com/siherrmann/eventer"
	"github.com/siherrmann/eventer/config"
	"github.com/siherrmann/eventer/helper"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Extract *ExtractCommand
	Batch   *BatchCommand
	Bounds  *BoundsCommand
	Events  *EventsCommand
	Seeds   *SeedsCommand
	Prune   *PruneCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(out io.Writer) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "eventer"
	parser.LongDescription = "Extract dated disaster events from news pages and filter them by the time window of a query."

	cmds := &commands{
		Extract: &ExtractCommand{globals: &globals, out: out},
		Batch:   &BatchCommand{globals: &globals, out: out},
		Bounds:  &BoundsCommand{globals: &globals, out: out},
		Events:  &EventsCommand{globals: &globals, out: out},
		Seeds:   &SeedsCommand{globals: &globals, out: out},
		Prune:   &PruneCommand{globals: &globals, out: out},
	}

	parser.AddCommand("extract", "Extract events from an HTML page", "Extract events from an HTML page and print the packets as JSON.", cmds.Extract)
	parser.AddCommand("batch", "Extract events from a directory of pages", "Extract events from every .html file of a directory and print per-page results and batch statistics.", cmds.Batch)
	parser.AddCommand("bounds", "Resolve the time window of a query", "Resolve the time window of a query with the configured oracle.", cmds.Bounds)
	parser.AddCommand("events", "Query stored events", "Query stored events by type, location and date range.", cmds.Events)
	parser.AddCommand("seeds", "Print seed search queries", "Print the seed search queries per disaster type.", cmds.Seeds)
	parser.AddCommand("prune", "Delete expired events", "Delete stored events older than their retention period.", cmds.Prune)

	return parser, &globals, cmds
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string, out io.Writer) error {
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Fprintf(out, "eventer %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(out)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}

func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	cfg, err := config.Load(globals.Config)
	if err != nil {
		return nil, helper.NewError("load config", err)
	}
	return cfg, nil
}

// newEventer builds an Eventer. With store set the database is read from EVENTER_DB_*.
func newEventer(globals *GlobalFlags, store bool) (*eventer.Eventer, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}

	var dbConfig *helper.DatabaseConfiguration
	if store || cfg.Database.Enabled {
		dbConfig, err = helper.NewDatabaseConfiguration()
		if err != nil {
			return nil, err
		}
	}

	return eventer.New(cfg, dbConfig, eventer.WithLogger(helper.NewLogger(os.Stderr, helper.ParseLevel(cfg.Log.Level))))
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
