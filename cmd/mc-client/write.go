package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	writeDevice string
	writeStart  int
	writeValues string
)

var writeWordsCmd = &cobra.Command{
	Use:   "write-words",
	Short: "Write a run of word devices",
	RunE:  runWriteWords,
}

var writeBitsCmd = &cobra.Command{
	Use:   "write-bits",
	Short: "Write a run of bit devices",
	RunE:  runWriteBits,
}

func init() {
	for _, cmd := range []*cobra.Command{writeWordsCmd, writeBitsCmd} {
		bindCommonFlags(cmd)
		cmd.Flags().StringVar(&writeDevice, "device", "D", "device code (D, W, M, X, Y, ...)")
		cmd.Flags().IntVar(&writeStart, "start", 0, "starting address")
	}
	writeWordsCmd.Flags().StringVar(&writeValues, "values", "", "comma-separated decimal word values")
	writeBitsCmd.Flags().StringVar(&writeValues, "values", "", "comma-separated 0/1 bit values")
}

func runWriteWords(cmd *cobra.Command, args []string) error {
	t, err := parseDevice(writeDevice)
	if err != nil {
		return err
	}
	values, err := parseWordList(writeValues)
	if err != nil {
		return err
	}
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.WriteWords(t, writeStart, values); err != nil {
		return fmt.Errorf("write-words: %w", err)
	}
	fmt.Printf("wrote %d word(s) starting at %s%d\n", len(values), t.Code, writeStart)
	return nil
}

func runWriteBits(cmd *cobra.Command, args []string) error {
	t, err := parseDevice(writeDevice)
	if err != nil {
		return err
	}
	values, err := parseBoolList(writeValues)
	if err != nil {
		return err
	}
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.WriteBits(t, writeStart, values); err != nil {
		return fmt.Errorf("write-bits: %w", err)
	}
	fmt.Printf("wrote %d bit(s) starting at %s%d\n", len(values), t.Code, writeStart)
	return nil
}
