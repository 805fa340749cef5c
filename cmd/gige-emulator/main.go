// Gige-emulator runs an emulated GigE Vision camera: a GVCP-S discovery
// and control server paired with a GVSP-S streaming server.
//
// Usage:
//
//	gige-emulator run [flags]
//
// See 'gige-emulator run --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/protolab/gigemc/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "gige-emulator",
	Short:   "GigE Vision camera emulator",
	Long:    `Emulates a GigE Vision camera: GVCP discovery/control plus a GVSP image stream.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gige-emulator %s (commit: %s)\n", version.Version, version.Commit)
	},
}
