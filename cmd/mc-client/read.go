package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	readDevice string
	readStart  int
	readCount  int
)

var readWordsCmd = &cobra.Command{
	Use:   "read-words",
	Short: "Read a run of word devices",
	RunE:  runReadWords,
}

var readBitsCmd = &cobra.Command{
	Use:   "read-bits",
	Short: "Read a run of bit devices",
	RunE:  runReadBits,
}

func init() {
	for _, cmd := range []*cobra.Command{readWordsCmd, readBitsCmd} {
		bindCommonFlags(cmd)
		cmd.Flags().StringVar(&readDevice, "device", "D", "device code (D, W, M, X, Y, ...)")
		cmd.Flags().IntVar(&readStart, "start", 0, "starting address")
		cmd.Flags().IntVar(&readCount, "count", 1, "number of points to read")
	}
}

func runReadWords(cmd *cobra.Command, args []string) error {
	t, err := parseDevice(readDevice)
	if err != nil {
		return err
	}
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()

	values, err := c.ReadWords(t, readStart, readCount)
	if err != nil {
		return fmt.Errorf("read-words: %w", err)
	}
	for i, v := range values {
		fmt.Printf("%s%d = %d\n", t.Code, readStart+i, v)
	}
	return nil
}

func runReadBits(cmd *cobra.Command, args []string) error {
	t, err := parseDevice(readDevice)
	if err != nil {
		return err
	}
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()

	values, err := c.ReadBits(t, readStart, readCount)
	if err != nil {
		return fmt.Errorf("read-bits: %w", err)
	}
	for i, v := range values {
		fmt.Printf("%s%d = %t\n", t.Code, readStart+i, v)
	}
	return nil
}
