package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/neo/debatearena_backend/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Apply any pending database migrations and exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}

		db, err := database.New(migrateDataDir)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %v", err)
		}
		defer db.Close()

		fmt.Println("Database migrations completed successfully")
		return nil
	},
}

var migrateDataDir string

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().StringVar(&migrateDataDir, "data-dir", "data", "Directory for the sqlite database")
}
