package main

import "io"

// GlobalFlags are shared by all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to YAML config file" default:""`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ExtractCommand runs one HTML page through the pipeline.
type ExtractCommand struct {
	File         string `long:"file" description:"HTML file to extract events from" required:"true"`
	URL          string `long:"url" description:"Source URL of the page" default:""`
	Query        string `long:"query" description:"User query, used to resolve the time window" default:""`
	DisasterType string `long:"type" description:"Disaster type of the page (flood, cyclone, ...)" default:""`
	Store        bool   `long:"store" description:"Store packets in Postgres (EVENTER_DB_* environment)"`
	Embeddings   bool   `long:"embeddings" description:"Embed stored packets with the default sentence model"`

	globals *GlobalFlags
	out     io.Writer
}

// BatchCommand runs every HTML file of a directory through the pipeline.
type BatchCommand struct {
	Dir          string `long:"dir" description:"Directory with .html files" required:"true"`
	Query        string `long:"query" description:"User query, used to resolve the time window" default:""`
	DisasterType string `long:"type" description:"Disaster type of the pages" default:""`
	Store        bool   `long:"store" description:"Store packets and batch statistics in Postgres"`
	ServeMetrics bool   `long:"serve-metrics" description:"Serve Prometheus metrics while the batch runs"`

	globals *GlobalFlags
	out     io.Writer
}

// BoundsCommand prints the time window of a query.
type BoundsCommand struct {
	Query string `long:"query" description:"User query" default:""`

	globals *GlobalFlags
	out     io.Writer
}

// EventsCommand queries stored events.
type EventsCommand struct {
	DisasterType string `long:"type" description:"Filter by disaster type" default:""`
	Location     string `long:"location" description:"Filter by location" default:""`
	From         string `long:"from" description:"Earliest start date (YYYY-MM-DD)" default:""`
	To           string `long:"to" description:"Latest end date (YYYY-MM-DD)" default:""`
	Limit        int    `long:"limit" description:"Maximum results" default:"20"`
	Summary      bool   `long:"summary" description:"Print counts and casualty totals instead of events"`

	globals *GlobalFlags
	out     io.Writer
}

// SeedsCommand prints the seed search queries.
type SeedsCommand struct {
	DisasterType string `long:"type" description:"Only queries of this disaster type" default:""`

	globals *GlobalFlags
	out     io.Writer
}

// PruneCommand deletes events past their retention period.
type PruneCommand struct {
	globals *GlobalFlags
	out     io.Writer
}
