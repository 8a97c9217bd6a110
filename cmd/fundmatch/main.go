// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/fundmatch"
	"github.com/poiesic/fundmatch/ai"
	"github.com/poiesic/fundmatch/core"
	"github.com/poiesic/fundmatch/ingestion"
	"github.com/poiesic/fundmatch/profile"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "fundmatch",
		Usage: "Semantic matching of researcher profiles to funding opportunities",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to BadgerDB database directory",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "embeddinggemma",
			},
			&cli.StringFlag{
				Name:  "generator-host",
				Usage: "Generation service host URL (defaults to embedding-host)",
			},
			&cli.StringFlag{
				Name:  "generator-model",
				Usage: "Generation model name",
				Value: "qwen2.5:3b",
			},
			&cli.IntFlag{
				Name:  "rpm",
				Usage: "API requests per minute budget",
				Value: 60,
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest funding opportunities from a CSV file",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "csv",
						Usage:    "Path to the CSV file of opportunities",
						Required: true,
					},
				},
			},
			{
				Name:   "profile",
				Usage:  "Create or update a researcher profile",
				Action: profileCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Researcher name (profile identity)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "interests",
						Usage: "Comma-separated research interests",
					},
					&cli.StringSliceFlag{
						Name:  "doc",
						Usage: "Path to a source document (text file); repeatable",
					},
					&cli.StringSliceFlag{
						Name:  "url",
						Usage: "Related URL; repeatable",
					},
				},
			},
			{
				Name:   "match",
				Usage:  "Match a profile against the opportunity corpus",
				Action: matchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Researcher name",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "top",
						Aliases: []string{"k"},
						Usage:   "Number of results",
						Value:   10,
					},
				},
			},
			{
				Name:   "explain",
				Usage:  "Explain why an opportunity matches a profile",
				Action: explainCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Researcher name",
						Required: true,
					},
					&cli.Uint64Flag{
						Name:     "opportunity",
						Usage:    "Opportunity id from match output",
						Required: true,
					},
				},
			},
			{
				Name:   "sweep",
				Usage:  "Expire opportunities whose deadline has passed",
				Action: sweepCommand,
			},
			{
				Name:   "stats",
				Usage:  "Show corpus statistics",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func openDatabase(c *cli.Context) (*fundmatch.Database, error) {
	generatorHost := c.String("generator-host")
	if generatorHost == "" {
		generatorHost = c.String("embedding-host")
	}

	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGeneratorHost(generatorHost),
		ai.WithGeneratorModel(c.String("generator-model")),
		ai.WithRequestsPerMinute(c.Int("rpm")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	return fundmatch.NewDatabase(c.String("db"), fundmatch.WithAIConfig(config))
}

func ingestCommand(c *cli.Context) error {
	records, err := readOpportunityCSV(c.String("csv"))
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := db.Ingest(context.Background(), records)
	if err != nil {
		return err
	}

	fmt.Printf("Added: %d\n", summary.Added)
	fmt.Printf("Duplicates skipped: %d\n", summary.DuplicatesSkipped)
	fmt.Printf("Expired skipped: %d\n", summary.ExpiredSkipped)
	for _, u := range summary.Unprocessed {
		fmt.Printf("Unprocessed: %s (%s)\n", u.Title, u.Reason)
	}
	return nil
}

// readOpportunityCSV maps a CSV with a header row onto raw records. The
// recognized columns are title, description, agency, keywords (semicolon
// separated), deadline, and url; unknown columns are ignored.
func readOpportunityCSV(path string) ([]ingestion.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var records []ingestion.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}

		record := ingestion.RawRecord{
			Title:        field(row, "title"),
			Description:  field(row, "description"),
			Agency:       field(row, "agency"),
			DeadlineText: field(row, "deadline"),
			URL:          field(row, "url"),
		}
		if keywords := field(row, "keywords"); keywords != "" {
			for _, kw := range strings.Split(keywords, ";") {
				if kw = strings.TrimSpace(kw); kw != "" {
					record.Keywords = append(record.Keywords, kw)
				}
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func profileCommand(c *cli.Context) error {
	var interests []string
	for _, s := range strings.Split(c.String("interests"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			interests = append(interests, s)
		}
	}

	var documents []profile.DocumentInput
	for _, path := range c.StringSlice("doc") {
		text, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading document %s: %w", path, err)
		}
		documents = append(documents, profile.DocumentInput{
			Name: path,
			Text: string(text),
		})
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	record, err := db.CreateOrUpdateProfile(context.Background(),
		c.String("name"), interests, documents, c.StringSlice("url"))
	if err != nil {
		return err
	}

	fmt.Printf("Profile %s stored (id %d, %d documents, %d urls)\n",
		record.Name, record.Id, len(record.Documents), len(record.URLs))
	return nil
}

func matchCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	results, err := db.Match(context.Background(), profile.IDForName(c.String("name")), c.Int("top"))
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No matches found.")
		return nil
	}

	for i, r := range results {
		deadline := "no deadline"
		if !r.Deadline.IsZero() {
			deadline = r.Deadline.Format("2006-01-02")
		}
		fmt.Printf("%2d. [%3d%%] %s - %s (due %s, id %d)\n",
			i+1, r.Confidence, r.Title, r.Agency, deadline, r.OpportunityId)
	}
	return nil
}

func explainCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	explanation, err := db.Explain(context.Background(),
		profile.IDForName(c.String("name")), core.ID(c.Uint64("opportunity")))
	if err != nil {
		return err
	}

	fmt.Println("MATCH EXPLANATION")
	fmt.Println(explanation.Summary)
	if len(explanation.Reusable) > 0 {
		fmt.Println("\nREUSABLE CONTENT")
		for _, r := range explanation.Reusable {
			fmt.Printf("- %s: %s\n", r.Document, r.Rationale)
		}
	}
	if len(explanation.NextSteps) > 0 {
		fmt.Println("\nNEXT STEPS")
		for i, step := range explanation.NextSteps {
			fmt.Printf("%d. %s\n", i+1, step)
		}
	}
	return nil
}

func sweepCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	expired, err := db.Sweep(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Expired %d opportunities\n", expired)
	return nil
}

func statsCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Opportunities: %d total, %d active, %d expired, %d unprocessed\n",
		stats.TotalOpportunities, stats.ActiveOpportunities,
		stats.ExpiredOpportunities, stats.UnprocessedOpportunities)
	fmt.Printf("Profiles:      %d\n", stats.Profiles)
	fmt.Printf("Fingerprints:  %d\n", stats.Fingerprints)
	return nil
}
