package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/neo/debatearena_backend/internal/auth"
	"github.com/neo/debatearena_backend/internal/database"
	"github.com/neo/debatearena_backend/internal/debate"
	"github.com/neo/debatearena_backend/internal/judge"
	"github.com/neo/debatearena_backend/internal/logging"
	"github.com/neo/debatearena_backend/internal/matchmaking"
	"github.com/neo/debatearena_backend/internal/notify"
	"github.com/neo/debatearena_backend/internal/server"
	"github.com/neo/debatearena_backend/internal/topics"
	"github.com/spf13/cobra"
)

var (
	port    int
	dataDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the DebateArena server",
	Long: `Start the DebateArena server with the specified configuration.
This will initialize the database, the matchmaking engine and the
websocket hub, and begin accepting connections.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			fmt.Printf("Error creating data directory: %v\n", err)
			os.Exit(1)
		}

		if _, err := os.Stat(".env"); os.IsNotExist(err) {
			fmt.Println("Warning: .env file not found. Make sure to create it with your OPENAI_API_KEY and JWT_SECRET")
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}

		if err := logging.InitDefaultLogger(logging.Config{
			Level:   logging.INFO,
			Prefix:  "DebateArena",
			Colored: true,
		}); err != nil {
			return fmt.Errorf("failed to initialize logging: %v", err)
		}

		jwtSecret := os.Getenv("JWT_SECRET")
		if jwtSecret == "" {
			return fmt.Errorf("JWT_SECRET is not set in the environment variables")
		}
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			logging.Warn("OPENAI_API_KEY is not set, debates will be judged by the fallback judge", nil)
		}

		db, err := database.New(dataDir)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %v", err)
		}
		defer db.Close()

		// The chain tries the LLM judge first; the fallback never errors
		// so a finished debate always gets a verdict.
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		providers := []judge.Provider{}
		if apiKey != "" {
			providers = append(providers, judge.NewOpenAIJudge(apiKey))
		}
		providers = append(providers, judge.NewFallbackJudge(rng, rng.Intn(3)))
		judgeChain := judge.NewChain(providers...)

		hub := notify.NewHub()
		machine := debate.NewMachine(db, hub, judgeChain)
		engine := matchmaking.NewEngine(db, hub, machine)

		authService := auth.New(auth.Config{JWTSecret: jwtSecret})

		var generator *topics.Generator
		if apiKey != "" {
			generator, err = topics.NewGenerator(apiKey)
			if err != nil {
				logging.Warn("Topic generator unavailable", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		srv := server.New(db, hub, engine, machine, authService, generator, server.Config{
			Port:      fmt.Sprintf("%d", port),
			OpenAIKey: apiKey,
			JWTSecret: jwtSecret,
			DataDir:   dataDir,
		})

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Run(fmt.Sprintf(":%d", port)); err != nil {
				errChan <- fmt.Errorf("server error: %v", err)
			}
		}()

		select {
		case err := <-errChan:
			return err
		case sig := <-sigChan:
			logging.Info("Shutting down", map[string]interface{}{
				"signal": sig.String(),
			})

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logging.Error("Shutdown error", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&port, "port", "p", 3000, "Port to run the server on")
	serveCmd.Flags().StringVar(&dataDir, "data-dir", "data", "Directory for the sqlite database")
}
