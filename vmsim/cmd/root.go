// Package cmd provides the command-line interface of vmsim.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vmsim",
	Short: "vmsim simulates virtual memory translation and page replacement.",
	Long: `vmsim replays memory access traces through a page table and a ` +
		`fixed pool of physical frames, and reports page faults, ` +
		`write-backs and the cost of the page table. It can also generate ` +
		`synthetic traces.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		loadEnvFile(".env")
	},
}

// loadEnvFile reads variables from the file into the environment. Variables
// already set are kept.
func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}

	if err := godotenv.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot load %s: %s\n", path, err)
	}
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}
