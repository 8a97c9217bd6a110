package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/poiesic/fundmatch"
	"github.com/poiesic/fundmatch/ingestion"
)

// Sample corpus for local development. Deadlines sit far in the future so
// seeding survives the expiry sweep.
var opportunities = []ingestion.RawRecord{
	{
		Title:        "Ocean Observing Technology",
		Description:  "Development of autonomous sensor networks for long-term ocean observation, including acoustic monitoring of coral reef ecosystems.",
		Agency:       "NSF",
		Keywords:     []string{"ocean", "sensors", "coral reefs"},
		DeadlineText: "2099-03-15",
		URL:          "https://grants.example/ocean-observing",
	},
	{
		Title:        "Quantum Network Testbeds",
		Description:  "Entanglement distribution over metropolitan fiber networks and quantum repeater prototypes.",
		Agency:       "DOE",
		Keywords:     []string{"quantum", "networking"},
		DeadlineText: "2099-04-01",
		URL:          "https://grants.example/quantum-testbeds",
	},
	{
		Title:        "Soil Microbiome Resilience",
		Description:  "Research on microbial communities that sustain agricultural soil health under drought stress.",
		Agency:       "USDA",
		Keywords:     []string{"soil", "microbiome", "agriculture"},
		DeadlineText: "2099-05-20",
		URL:          "https://grants.example/soil-microbiome",
	},
	{
		Title:        "Glacier Dynamics and Sea Level",
		Description:  "Field and remote-sensing studies of ice sheet flow and its contribution to sea level projections.",
		Agency:       "NASA",
		Keywords:     []string{"glaciers", "remote sensing", "sea level"},
		DeadlineText: "2099-02-28",
		URL:          "https://grants.example/glacier-dynamics",
	},
	{
		Title:        "Machine Learning for Materials Discovery",
		Description:  "Data-driven prediction of novel battery and photovoltaic materials, with experimental validation loops.",
		Agency:       "DOE",
		Keywords:     []string{"machine learning", "materials", "batteries"},
		DeadlineText: "2099-06-30",
		URL:          "https://grants.example/ml-materials",
	},
	{
		Title:        "Coastal Resilience Engineering",
		Description:  "Nature-based infrastructure for storm surge mitigation in vulnerable coastal communities.",
		Agency:       "NOAA",
		Keywords:     []string{"coastal", "resilience", "infrastructure"},
		DeadlineText: "2099-07-15",
		URL:          "https://grants.example/coastal-resilience",
	},
	{
		Title:        "Wearable Biosensors for Rural Health",
		Description:  "Low-cost continuous monitoring devices and the data pipelines to support rural clinical care.",
		Agency:       "NIH",
		Keywords:     []string{"biosensors", "health", "wearables"},
		DeadlineText: "2099-08-01",
		URL:          "https://grants.example/wearable-biosensors",
	},
	{
		Title:        "Wildfire Smoke Transport Modeling",
		Description:  "Coupled fire-atmosphere models for forecasting smoke plumes and air quality impacts.",
		Agency:       "NSF",
		Keywords:     []string{"wildfire", "atmosphere", "air quality"},
		DeadlineText: "2099-09-10",
		URL:          "https://grants.example/wildfire-smoke",
	},
}

var dbPath = flag.String("db", "./funding_db", "path to the database directory")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	db, err := fundmatch.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	summary, err := db.Ingest(context.Background(), opportunities)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Seeded %d opportunities (%d duplicates skipped, %d unprocessed)\n",
		summary.Added, summary.DuplicatesSkipped, len(summary.Unprocessed))
}
