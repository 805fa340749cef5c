// Mc-emulator runs an emulated MELSEC PLC: an MC protocol TCP server
// backed by a device store and an optional ladder-logic scan engine.
//
// Usage:
//
//	mc-emulator run [flags]
//
// See 'mc-emulator run --help' for available options.
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
	Use:     "mc-emulator",
	Short:   "MELSEC MC protocol PLC emulator",
	Long:    `Emulates a MELSEC PLC: an MC protocol TCP server plus an optional ladder scan engine.`,
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
		fmt.Printf("mc-emulator %s (commit: %s)\n", version.Version, version.Commit)
	},
}
