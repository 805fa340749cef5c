package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var remoteRunCmd = &cobra.Command{
	Use:   "remote-run",
	Short: "Put the PLC into RUN",
	RunE:  remoteControl("RUN", func(c remoteClient) error { return c.RemoteRun() }),
}

var remoteStopCmd = &cobra.Command{
	Use:   "remote-stop",
	Short: "Put the PLC into STOP",
	RunE:  remoteControl("STOP", func(c remoteClient) error { return c.RemoteStop() }),
}

var remotePauseCmd = &cobra.Command{
	Use:   "remote-pause",
	Short: "Put the PLC into PAUSE",
	RunE:  remoteControl("PAUSE", func(c remoteClient) error { return c.RemotePause() }),
}

var remoteResetCmd = &cobra.Command{
	Use:   "remote-reset",
	Short: "Reset the PLC",
	RunE:  remoteControl("RESET", func(c remoteClient) error { return c.RemoteReset() }),
}

var cpuModelCmd = &cobra.Command{
	Use:   "cpu-model",
	Short: "Read the PLC's CPU model name",
	RunE:  runCPUModel,
}

func init() {
	for _, cmd := range []*cobra.Command{remoteRunCmd, remoteStopCmd, remotePauseCmd, remoteResetCmd, cpuModelCmd} {
		bindCommonFlags(cmd)
	}
}

// remoteClient is the subset of *client.Client the remote-control
// subcommands need.
type remoteClient interface {
	RemoteRun() error
	RemoteStop() error
	RemotePause() error
	RemoteReset() error
}

func remoteControl(label string, action func(remoteClient) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := dial()
		if err != nil {
			return err
		}
		defer c.Close()

		if err := action(c); err != nil {
			return fmt.Errorf("remote-%s: %w", label, err)
		}
		fmt.Printf("PLC is now %s\n", label)
		return nil
	}
}

func runCPUModel(cmd *cobra.Command, args []string) error {
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()

	model, err := c.ReadCPUModel()
	if err != nil {
		return fmt.Errorf("cpu-model: %w", err)
	}
	fmt.Println(model)
	return nil
}
