package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/eventer"
	"github.com/siherrmann/eventer/config"
)

const samplePage = `<html>
<head>
  <title>Kerala floods: death toll rises to 25</title>
  <meta property="article:published_time" content="2024-08-16T09:30:00Z">
</head>
<body>
  <nav>Skip to main content</nav>
  <p>Severe floods struck Kerala on 15 August 2024 after days of heavy monsoon rain, and 25 people were killed across the state as rivers overflowed.</p>
  <p>Relief camps were opened in Wayanad on 16 August 2024 where 1,200 people were displaced from their homes by the rising water levels.</p>
  <p>Older records show that a flood in Assam on 2 July 2023 had affected several districts in the region during the previous monsoon season.</p>
  <p>Authorities said that rescue teams from the national response force continued to work in the worst hit districts with boats and helicopters through the night.</p>
  <table>
    <caption>District wise casualties</caption>
    <tr><th>Date</th><th>District</th><th>Deaths</th></tr>
    <tr><td>15/08/2024</td><td>Wayanad</td><td>18</td></tr>
    <tr><td>15/08/2024</td><td>Kozhikode</td><td>7</td></tr>
  </table>
</body>
</html>`

func main() {
	// Without an oracle the query resolves to the default window and
	// events come from the deterministic fallback.
	e, err := eventer.New(config.Default(), nil)
	if err != nil {
		log.Fatalf("Failed to create eventer: %v", err)
	}
	defer e.Close()

	ctx := context.Background()
	req := e.NewRequest(ctx, "Kerala floods")
	fmt.Printf("Time window: %s (%s to %s)\n", req.Bounds.Description, req.Bounds.StartDate.Format("2006-01-02"), req.Bounds.EndDate.Format("2006-01-02"))

	res, err := e.ProcessHTML(ctx, req, samplePage, "https://news.example.org/kerala-floods", "flood")
	if err != nil {
		log.Fatalf("Failed to process page: %v", err)
	}

	if res.Skipped {
		fmt.Printf("Page skipped: %s\n", res.SkipReason)
		return
	}

	fmt.Printf("\nFound %d events, dropped %d outside the window\n", len(res.Events), res.Dropped)
	for i, p := range res.Packets {
		fmt.Printf("\n--- Packet %d ---\n", i+1)
		fmt.Printf("ID: %s\n", p.PacketID)
		fmt.Printf("Type: %s (%s)\n", p.Event.EventType, p.Meta.ExtractionMethod)
		fmt.Printf("Start: %s\n", p.StartDate())
		fmt.Printf("Location: %s\n", p.PrimaryLocation())
		fmt.Printf("Deaths: %d, displaced: %d\n", p.Impact.Deaths, p.Impact.Displaced)
		fmt.Printf("Severity: %s\n", p.Event.Severity)
		fmt.Printf("Description: %s\n", p.Event.Description)
	}

	fmt.Println("\nBasic example completed successfully!")
}
