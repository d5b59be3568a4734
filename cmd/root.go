// Package cmd implements the localhive CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"
const logo = "🐝"

var configPath string

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "localhive",
	Short: logo + " localhive: tool-augmented chat for local events and places",
	Long:  logo + " localhive: an AI conversation backend where visitors chat about a local event or place and the assistant reaches for tools when it needs facts",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "localhive.yaml", "Path to the config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(chatCmd)
}
