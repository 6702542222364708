package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/eventer"
	"github.com/siherrmann/eventer/config"
	"github.com/siherrmann/eventer/core/pipeline"
	"github.com/siherrmann/eventer/helper"
	"github.com/siherrmann/eventer/model"
)

var pages = []*model.Document{
	{
		Source: model.SourceMetadata{URL: "https://news.example.org/kerala", Domain: "news.example.org", Title: "Kerala floods", DisasterType: "flood"},
		Paragraphs: []string{
			"Severe floods struck Kerala on 15 August 2024 after days of heavy monsoon rain, and 25 people were killed across the state as rivers overflowed.",
			"Relief camps were opened in Wayanad on 16 August 2024 where 1,200 people were displaced from their homes by the rising water levels.",
			"Authorities said that rescue teams from the national response force continued to work in the worst hit districts with boats and helicopters through the night.",
			"The state disaster management authority issued a red alert warning for three more districts as the emergency continued.",
		},
	},
	{
		Source: model.SourceMetadata{URL: "https://news.example.org/odisha", Domain: "news.example.org", Title: "Cyclone hits Odisha", DisasterType: "cyclone"},
		Paragraphs: []string{
			"A severe cyclone made landfall in Odisha on 26 May 2024, bringing winds of 120 km/h and heavy rain to coastal districts of the state.",
			"Officials said 4 people died and 3,000 residents were evacuated to cyclone shelters before the storm reached the coast near Puri.",
			"Relief teams restored power lines and cleared roads in the affected areas while the emergency operations centre monitored the situation.",
			"The disaster response force deployed boats in low lying villages where water entered homes after the storm surge.",
		},
	},
}

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	cfg := config.Default()
	cfg.Pipeline.Workers = 2

	e, err := eventer.New(cfg, dbConfig)
	if err != nil {
		log.Fatalf("Failed to create eventer: %v", err)
	}
	defer e.Close()

	// Embed packets so they can be found by similarity
	if err := e.UseEmbeddings(); err != nil {
		log.Fatalf("Failed to set up embeddings: %v", err)
	}

	ctx := context.Background()
	req := e.NewRequest(ctx, "disasters in India")

	fmt.Println("Processing pages...")
	_, stats, err := e.ProcessDocuments(ctx, req, pages)
	if err != nil {
		log.Fatalf("Failed to process pages: %v", err)
	}
	fmt.Printf("Stored %d of %d packets in %.2fs\n", stats.MessagesStored, stats.MessagesConsumed, stats.ProcessingTimeSeconds)
	fmt.Printf("By type: %v\n", stats.DisasterTypeBreakdown)

	floods, err := e.Events.SelectEventsByType(ctx, "flood", 10)
	if err != nil {
		log.Fatalf("Failed to query floods: %v", err)
	}
	fmt.Printf("\nFlood events: %d\n", len(floods))
	for _, ev := range floods {
		start := "unknown date"
		if ev.EventStartDate != nil {
			start = ev.EventStartDate.Format("2006-01-02")
		}
		fmt.Printf("  %s in %s, %d deaths\n", start, ev.PrimaryLocation, ev.Deaths)
	}

	inOdisha, err := e.Events.SelectEventsByLocation(ctx, "Odisha", 10)
	if err != nil {
		log.Fatalf("Failed to query by location: %v", err)
	}
	fmt.Printf("\nEvents in Odisha: %d\n", len(inOdisha))

	embed, err := pipeline.DefaultEmbedder()
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}
	queryEmbedding, err := embed("storm making landfall on the coast")
	if err != nil {
		log.Fatalf("Failed to embed query: %v", err)
	}
	similar, err := e.Events.SelectSimilarEvents(ctx, queryEmbedding, 3, 0.0)
	if err != nil {
		log.Fatalf("Failed to search similar events: %v", err)
	}
	fmt.Println("\nMost similar to \"storm making landfall on the coast\":")
	for _, ev := range similar {
		fmt.Printf("  %.3f %s: %s\n", ev.Similarity, ev.DisasterType, ev.RawPacket.Event.Description)
	}

	summary, err := e.Events.SelectSummary(ctx)
	if err != nil {
		log.Fatalf("Failed to load summary: %v", err)
	}
	fmt.Printf("\nTotal events: %d, deaths: %d, by severity: %v\n", summary.TotalEvents, summary.TotalDeaths, summary.BySeverity)

	fmt.Println("\nAdvanced example completed successfully!")
}
