package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/protolab/gigemc/internal/gige/gvcp/protocol"
)

var addrList string

var readRegistersCmd = &cobra.Command{
	Use:   "read-registers",
	Short: "Read a list of u32 bootstrap registers",
	RunE:  runReadRegisters,
}

var writeList string

var writeRegistersCmd = &cobra.Command{
	Use:   "write-registers",
	Short: "Write a list of addr=value u32 bootstrap registers",
	RunE:  runWriteRegisters,
}

func init() {
	bindCommonFlags(readRegistersCmd)
	readRegistersCmd.Flags().StringVar(&addrList, "addr-list", "", "comma-separated register addresses (decimal or 0x-hex)")

	bindCommonFlags(writeRegistersCmd)
	writeRegistersCmd.Flags().StringVar(&writeList, "writes", "", "comma-separated addr=value pairs (decimal or 0x-hex)")
}

func runReadRegisters(cmd *cobra.Command, args []string) error {
	addrs, err := parseAddrList(addrList)
	if err != nil {
		return err
	}
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()

	values, err := c.ReadRegisters(addrs)
	if err != nil {
		return fmt.Errorf("read-registers: %w", err)
	}
	for i, v := range values {
		fmt.Printf("0x%08X = 0x%08X\n", addrs[i], v)
	}
	return nil
}

func runWriteRegisters(cmd *cobra.Command, args []string) error {
	writes, err := parseWriteList(writeList)
	if err != nil {
		return err
	}
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()

	n, err := c.WriteRegisters(writes)
	if err != nil {
		return fmt.Errorf("write-registers: %w", err)
	}
	fmt.Printf("wrote %d register(s)\n", n)
	return nil
}

func parseWriteList(s string) ([]protocol.RegisterWrite, error) {
	parts := strings.Split(s, ",")
	out := make([]protocol.RegisterWrite, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("bad write %q (want addr=value)", p)
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(kv[0], "0x"), hexOrDecBase(kv[0]), 32)
		if err != nil {
			return nil, fmt.Errorf("bad address %q: %w", kv[0], err)
		}
		value, err := strconv.ParseUint(strings.TrimPrefix(kv[1], "0x"), hexOrDecBase(kv[1]), 32)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", kv[1], err)
		}
		out = append(out, protocol.RegisterWrite{Address: uint32(addr), Value: uint32(value)})
	}
	return out, nil
}
