/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rag-be",
	Short: "Retrieval-augmented question answering over Confluence",
	Long: `rag-be syncs Confluence spaces into a Weaviate vector index and answers
questions about their content over an HTTP API.

Run "rag-be sync" to build or refresh the index, "rag-be serve" to start
the API server, or "rag-be schedule" to run syncs on a cron schedule.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
}
