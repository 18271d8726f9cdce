package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "debatearena",
	Short: "DebateArena - Competitive 1v1 Debate Platform",
	Long: `DebateArena is a platform for live, turn-based 1v1 debates.
It matches waiting users into debates over a realtime connection,
enforces the turn and round structure, and judges finished debates
with an AI judge.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Global flags can be added here
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is .env)")
}
