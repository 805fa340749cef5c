// Gige-client is a command-line GVCP/GVSP client: it issues a single
// discovery, register, or streaming request per invocation against a
// GigE Vision camera (real or emulated).
//
// Usage:
//
//	gige-client discover --addr host:3956
//	gige-client read-registers --addr host:3956 --addr-list 0x48,0x68
//	gige-client capture --addr host:3956 --listen :0
//
// See 'gige-client <command> --help' for available options.
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
	Use:     "gige-client",
	Short:   "GigE Vision command-line client",
	Long:    `Issues single GVCP discovery/register requests, or captures a GVSP image stream.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(readRegistersCmd)
	rootCmd.AddCommand(writeRegistersCmd)
	rootCmd.AddCommand(readMemoryCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gige-client %s (commit: %s)\n", version.Version, version.Commit)
	},
}
