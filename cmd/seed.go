package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/neo/debatearena_backend/internal/database"
	"github.com/neo/debatearena_backend/internal/topics"
	"github.com/spf13/cobra"
)

var (
	seedDataDir string
	seedUseLLM  bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the topic pool",
	Long: `Insert the starter debate topics into the database. With --llm
the topics are generated with the configured OpenAI account instead of
using the built-in list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}

		db, err := database.New(seedDataDir)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %v", err)
		}
		defer db.Close()

		existing, err := db.GetTopics()
		if err != nil {
			return fmt.Errorf("failed to read topics: %v", err)
		}
		if len(existing) > 0 {
			fmt.Printf("Topic pool already has %d topics, nothing to do\n", len(existing))
			return nil
		}

		titles := topics.DefaultTopics
		if seedUseLLM {
			apiKey := os.Getenv("OPENAI_API_KEY")
			if apiKey == "" {
				return fmt.Errorf("OPENAI_API_KEY is required with --llm")
			}
			generator, err := topics.NewGenerator(apiKey)
			if err != nil {
				return fmt.Errorf("failed to create topic generator: %v", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			titles = generator.Generate(ctx, len(topics.DefaultTopics))
		}

		for i, title := range titles {
			// Spread difficulties 1..5 across the seeded pool
			difficulty := i%5 + 1
			if _, err := db.CreateTopic(title, difficulty); err != nil {
				return fmt.Errorf("failed to create topic %q: %v", title, err)
			}
		}

		fmt.Printf("Seeded %d topics\n", len(titles))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVar(&seedDataDir, "data-dir", "data", "Directory for the sqlite database")
	seedCmd.Flags().BoolVar(&seedUseLLM, "llm", false, "Generate topics with the LLM instead of the built-in list")
}
