package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcconfig "github.com/protolab/gigemc/internal/config/mc"
	"github.com/protolab/gigemc/internal/diagnostics"
	"github.com/protolab/gigemc/internal/logging"
	"github.com/protolab/gigemc/internal/mc/devicestore"
	"github.com/protolab/gigemc/internal/mc/devtype"
	"github.com/protolab/gigemc/internal/mc/dispatch"
	"github.com/protolab/gigemc/internal/mc/ladder"
	mcserver "github.com/protolab/gigemc/internal/mc/server"
)

var (
	mcHost         string
	mcPort         int
	mcLogLevel     string
	station        string
	programPath    string
	scanIntervalMS int
	mcTapAddr      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the MC protocol server and ladder engine",
	Long: `Start an emulated MELSEC PLC: an MC protocol TCP server backed by a
device store, plus a ladder scan engine driven by the dispatcher's
RUN/STOP/PAUSE/RESET commands.`,
	Example: `  # Start with a station profile and ladder program
  mc-emulator run --station line1 --program ./programs/conveyor.ld

  # Bind to a specific host/port
  mc-emulator run --host 127.0.0.1 --port 5007`,
	RunE: runEmulator,
}

func init() {
	runCmd.Flags().StringVar(&mcHost, "host", "", "bind address (empty = all interfaces)")
	runCmd.Flags().IntVar(&mcPort, "port", mcserver.DefaultPort, "MC protocol TCP port")
	runCmd.Flags().StringVar(&mcLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&station, "station", "default", "station profile name to load/create in the config registry")
	runCmd.Flags().StringVar(&programPath, "program", "", "ladder program to load (overrides the station's saved program path)")
	runCmd.Flags().IntVar(&scanIntervalMS, "scan-interval-ms", 10, "ladder scan interval in milliseconds")
	runCmd.Flags().StringVar(&mcTapAddr, "diagnostics-addr", "", "address to serve a diagnostics WebSocket tap on (disabled if empty)")
}

func runEmulator(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(mcLogLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	reg, err := mcconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load station registry: %w", err)
	}
	profile := reg.EnsureStation(station)
	if programPath != "" {
		profile.ProgramPath = programPath
	}
	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save station registry: %w", err)
	}

	store := devicestore.New(devtype.SeriesQ)
	d := dispatch.New(store, nil)
	engine := ladder.New(store, time.Duration(scanIntervalMS)*time.Millisecond)
	d.SetEngine(engine)

	bus := diagnostics.NewBus()
	if mcTapAddr != "" {
		if err := serveDiagnosticsTap(mcTapAddr, bus); err != nil {
			return err
		}
	}
	engine.SetDiagnostics(bus)

	if profile.ProgramPath != "" {
		prog, err := loadProgram(profile.ProgramPath)
		if err != nil {
			return fmt.Errorf("failed to load ladder program %q: %w", profile.ProgramPath, err)
		}
		engine.AddProgram(prog)
		fmt.Printf("mc-emulator: loaded ladder program %q\n", profile.ProgramPath)
	}
	engine.Start()
	defer engine.Stop()

	srv := mcserver.New(mcserver.Config{Host: mcHost, Port: mcPort}, d)
	srv.SetDiagnostics(bus)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start MC server: %w", err)
	}
	defer srv.Stop()

	fmt.Printf("mc-emulator: listening on %s (station %q)\n", srv.Addr(), station)

	waitForSignal()
	return nil
}

func loadProgram(path string) (ladder.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ladder.Compile(f)
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
}
