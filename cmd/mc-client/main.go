// Mc-client is a command-line MC protocol client: it dials a MELSEC
// PLC (real or emulated) and issues a single read, write, or
// remote-control request per invocation.
//
// Usage:
//
//	mc-client read-words --addr host:5007 --device D --start 100 --count 4
//	mc-client write-bits --addr host:5007 --device Y --start 10 --values 1,0,1
//	mc-client remote-run --addr host:5007
//
// See 'mc-client <command> --help' for available options.
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
	Use:     "mc-client",
	Short:   "MELSEC MC protocol command-line client",
	Long:    `Issues single MC protocol requests (batch read/write, remote control) against a PLC.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(readWordsCmd)
	rootCmd.AddCommand(readBitsCmd)
	rootCmd.AddCommand(writeWordsCmd)
	rootCmd.AddCommand(writeBitsCmd)
	rootCmd.AddCommand(remoteRunCmd)
	rootCmd.AddCommand(remoteStopCmd)
	rootCmd.AddCommand(remotePauseCmd)
	rootCmd.AddCommand(remoteResetCmd)
	rootCmd.AddCommand(cpuModelCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mc-client %s (commit: %s)\n", version.Version, version.Commit)
	},
}
