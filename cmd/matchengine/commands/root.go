package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "matchengine",
	Short: "Opportunity matching and team formation engine",
	Long: `Matchengine Unified CLI

Scores procurement opportunities against supplier candidates, composes
consortium teams when a single candidate cannot cover the requirements,
predicts win probability, and streams newly published opportunities to
subscribers.

Usage:
  go run ./cmd/matchengine [command]

Examples:
  go run ./cmd/matchengine api
  go run ./cmd/matchengine evaluate --opportunity opp.json --candidate cand.json
  go run ./cmd/matchengine scheduler start
  go run ./cmd/matchengine status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
