// Package cmd implements the tasknexus-feishu CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "tasknexus-feishu",
	Short: "tasknexus-feishu - Feishu channel adapter for the TaskNexus host",
	Long: "tasknexus-feishu bridges the Feishu Open Platform event stream to the\n" +
		"TaskNexus message bus and provides an outbound send path.",
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

	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(sendCmd)
}
