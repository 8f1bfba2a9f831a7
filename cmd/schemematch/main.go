// Copyright 2025 CivicGraph Labs
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
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	schemematch "github.com/civicgraph/schemematch"
	"github.com/civicgraph/schemematch/ai"
	"github.com/civicgraph/schemematch/core"
	"github.com/civicgraph/schemematch/match"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "schemematch",
		Usage: "Government scheme eligibility matching engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "seed",
				Usage:  "Embed and store scheme documents from a JSON file",
				Action: seedCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to JSON file with scheme texts",
						Required: true,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Run a raw similarity search without eligibility reasoning",
				Action:    searchCommand,
				ArgsUsage: "QUERY",
				Flags: append(engineFlags(),
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Minimum similarity score",
						Value: 0.7,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of matches",
						Value: 10,
					},
				),
			},
			{
				Name:      "match",
				Usage:     "Recommend schemes for a user profile and free-text need",
				Action:    matchCommand,
				ArgsUsage: "NEED",
				Flags: append(engineFlags(),
					&cli.IntFlag{Name: "age", Usage: "Applicant age in years"},
					&cli.StringFlag{Name: "gender", Usage: "Applicant gender (male, female, other)"},
					&cli.StringFlag{Name: "category", Usage: "Social category (general, sc, st, obc, minority)"},
					&cli.Float64Flag{Name: "income", Usage: "Annual household income in rupees"},
					&cli.StringFlag{Name: "occupation", Usage: "Applicant occupation"},
					&cli.StringFlag{Name: "state", Usage: "Applicant state of residence"},
					&cli.StringFlag{Name: "education", Usage: "Education level"},
					&cli.StringSliceFlag{Name: "need-tag", Usage: "Additional specific need (repeatable)"},
					&cli.IntFlag{Name: "max-results", Usage: "Maximum number of recommendations", Value: 5},
					&cli.BoolFlag{Name: "verbose", Usage: "Log each pipeline stage"},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"SCHEMEMATCH_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "embeddinggemma",
			EnvVars: []string{"SCHEMEMATCH_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "extractor-host",
			Usage:   "Criteria extraction service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"SCHEMEMATCH_EXTRACTOR_HOST"},
		},
		&cli.StringFlag{
			Name:    "extractor-model",
			Usage:   "Criteria extraction model name",
			Value:   "qwen2.5:3b",
			EnvVars: []string{"SCHEMEMATCH_EXTRACTOR_MODEL"},
		},
	}
}

func openEngine(c *cli.Context) (*schemematch.Engine, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithExtractorHost(c.String("extractor-host")),
		ai.WithExtractorModel(c.String("extractor-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return schemematch.NewEngine(c.String("db"), schemematch.WithAIConfig(aiConfig))
}

func seedCommand(c *cli.Context) error {
	ctx := context.Background()

	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read schemes file: %w", err)
	}
	var schemes []schemematch.SeedScheme
	if err := json.Unmarshal(data, &schemes); err != nil {
		return fmt.Errorf("failed to parse schemes file: %w", err)
	}
	for i := range schemes {
		if schemes[i].SourceFile == "" {
			schemes[i].SourceFile = c.String("file")
		}
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	count, err := engine.SeedSchemes(ctx, schemes)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Seeded %d scheme documents into %s\n", count, c.String("db"))
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("search query is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.CheckIndex(ctx); err != nil {
		return err
	}

	matches, err := engine.Search(ctx, query, float32(c.Float64("min-score")), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(matches) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for i, m := range matches {
		fmt.Printf("%2d. [%.3f] %s\n", i+1, m.Score, m.Document.SchemeName)
		fmt.Printf("    %s\n", truncate(m.Document.Text, 160))
	}
	return nil
}

func matchCommand(c *cli.Context) error {
	ctx := context.Background()

	need := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if need == "" {
		return fmt.Errorf("a free-text need is required")
	}

	profile := core.UserProfile{
		Gender:         core.Gender(strings.ToLower(c.String("gender"))),
		Category:       core.Category(strings.ToLower(c.String("category"))),
		Occupation:     c.String("occupation"),
		State:          strings.ToLower(c.String("state")),
		EducationLevel: c.String("education"),
		SpecificNeeds:  c.StringSlice("need-tag"),
	}
	if c.IsSet("age") {
		age := c.Int("age")
		profile.Age = &age
	}
	if c.IsSet("income") {
		income := c.Float64("income")
		profile.AnnualIncome = &income
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.CheckIndex(ctx); err != nil {
		return err
	}

	matcher, err := engine.NewMatcher(match.WithMaxResults(c.Int("max-results")))
	if err != nil {
		return err
	}
	defer matcher.Release()

	var monitor match.MatchMonitor
	if c.Bool("verbose") {
		monitor = &loggingMonitor{logger: slog.Default().With("component", "pipeline")}
	}

	results, err := matcher.GetRecommendationsWithMonitor(ctx, profile, need, monitor)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No applicable schemes found.")
		return nil
	}
	for i, r := range results {
		printRecommendation(i+1, r)
	}
	return nil
}

func printRecommendation(rank int, r core.SchemeRecommendation) {
	fmt.Printf("%d. %s (relevance %.2f)\n", rank, r.SchemeName, r.RelevanceScore)
	fmt.Printf("   %s\n", r.Rationale)
	if len(r.Benefits) > 0 {
		fmt.Println("   Benefits:")
		for _, b := range r.Benefits {
			fmt.Printf("     - %s\n", b)
		}
	}
	if len(r.EligibilityRequirements) > 0 {
		fmt.Println("   Eligibility:")
		criteria := make([]string, 0, len(r.EligibilityRequirements))
		for criterion := range r.EligibilityRequirements {
			criteria = append(criteria, criterion)
		}
		sort.Strings(criteria)
		for _, criterion := range criteria {
			status := "unverified"
			if r.EligibilityStatus[criterion] {
				status = "met"
			}
			fmt.Printf("     - %s: %s [%s]\n", criterion, r.EligibilityRequirements[criterion], status)
		}
	}
	if len(r.ApplicationSteps) > 0 {
		fmt.Println("   How to apply:")
		for i, step := range r.ApplicationSteps {
			fmt.Printf("     %d. %s\n", i+1, step)
		}
	}
	fmt.Println()
}

// loggingMonitor logs each pipeline stage for verbose runs.
type loggingMonitor struct {
	logger *slog.Logger
}

func (m *loggingMonitor) Start(need string) {
	m.logger.Info("matching started", "need", need)
}

func (m *loggingMonitor) AfterExpand(variations []string) {
	m.logger.Info("expanded query", "variations", len(variations))
	for _, v := range variations {
		m.logger.Debug("query variation", "text", v)
	}
}

func (m *loggingMonitor) AfterRetrieve(candidates []core.SchemeCandidate) {
	m.logger.Info("retrieved candidates", "count", len(candidates))
}

func (m *loggingMonitor) AfterRegionFilter(candidates []core.SchemeCandidate) {
	m.logger.Info("region filter applied", "remaining", len(candidates))
}

func (m *loggingMonitor) AfterExtract(candidate core.SchemeCandidate, facts core.SchemeFacts) {
	m.logger.Debug("extracted criteria", "scheme", facts.SchemeName)
}

func (m *loggingMonitor) AfterEvaluate(candidate core.SchemeCandidate, verdict core.EligibilityVerdict) {
	m.logger.Debug("evaluated eligibility",
		"scheme", candidate.SchemeName,
		"eligible", verdict.IsEligible,
		"unknown", strings.Join(verdict.UnknownCriteria, ","))
}

func (m *loggingMonitor) Finish(recommendations []core.SchemeRecommendation) {
	m.logger.Info("matching finished", "recommendations", len(recommendations))
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

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
