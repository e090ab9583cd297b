// Package cmd implements the corobus CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"
const logo = "🚌"

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "corobus",
	Short: logo + " corobus — cooperative message bus workbench",
	Long:  logo + " corobus — a cooperative coroutine message bus with demo and serve modes",
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

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}
