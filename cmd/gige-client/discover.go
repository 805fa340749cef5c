package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/protolab/gigemc/internal/gige/discovery"
)

var useMDNS bool

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Send a Discovery request and print the device descriptor",
	Long: `Sends a GVCP Discovery request to --addr and prints the responding
device's descriptor. With --mdns, browses mDNS for every advertised
camera instead (no --addr needed).`,
	RunE: runDiscover,
}

func init() {
	bindCommonFlags(discoverCmd)
	discoverCmd.Flags().BoolVar(&useMDNS, "mdns", false, "browse mDNS instead of sending a unicast Discovery request")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if useMDNS {
		return runDiscoverMDNS()
	}

	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()

	d, err := c.Discover()
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	fmt.Printf("manufacturer: %s\n", d.Manufacturer)
	fmt.Printf("model:        %s\n", d.Model)
	fmt.Printf("version:      %s\n", d.DeviceVersion)
	fmt.Printf("serial:       %s\n", d.Serial)
	fmt.Printf("name:         %s\n", d.UserDefinedName)
	return nil
}

func runDiscoverMDNS() error {
	scanner := discovery.NewScanner()
	scanner.Timeout = dialTimeout * 5
	found, err := scanner.Scan()
	if err != nil {
		return fmt.Errorf("discover --mdns: %w", err)
	}
	if len(found) == 0 {
		fmt.Println("no cameras found")
		return nil
	}
	for _, a := range found {
		fmt.Printf("%s  %s %s  %s:%d\n", a.Serial, a.Manufacturer, a.Model, a.Host, a.Port)
	}
	return nil
}
