package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	memAddr   string
	memLength uint32
)

var readMemoryCmd = &cobra.Command{
	Use:   "read-memory",
	Short: "Read a span of string-register memory",
	RunE:  runReadMemory,
}

func init() {
	bindCommonFlags(readMemoryCmd)
	readMemoryCmd.Flags().StringVar(&memAddr, "addr-offset", "0x48", "starting register address (decimal or 0x-hex)")
	readMemoryCmd.Flags().Uint32Var(&memLength, "length", 32, "number of bytes to read")
}

func runReadMemory(cmd *cobra.Command, args []string) error {
	addr, err := strconv.ParseUint(strings.TrimPrefix(memAddr, "0x"), hexOrDecBase(memAddr), 32)
	if err != nil {
		return fmt.Errorf("bad address %q: %w", memAddr, err)
	}

	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()

	data, err := c.ReadMemory(uint32(addr), memLength)
	if err != nil {
		return fmt.Errorf("read-memory: %w", err)
	}
	fmt.Printf("%q\n", strings.TrimRight(string(data), "\x00"))
	return nil
}
