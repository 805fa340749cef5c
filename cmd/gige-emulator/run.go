package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/protolab/gigemc/internal/diagnostics"
	"github.com/protolab/gigemc/internal/gige"
	"github.com/protolab/gigemc/internal/gige/discovery"
	gvcpserver "github.com/protolab/gigemc/internal/gige/gvcp/server"
	gvspserver "github.com/protolab/gigemc/internal/gige/gvsp/server"
	"github.com/protolab/gigemc/internal/gige/imagesource"
	"github.com/protolab/gigemc/internal/gige/register"
	"github.com/protolab/gigemc/internal/logging"
)

var (
	host          string
	gvcpPort      int
	logLevel      string
	serial        string
	manufacturer  string
	model         string
	width         int
	height        int
	pixelFormat   string
	sourceKind    string
	sourcePath    string
	advertiseMDNS bool
	tapAddr       string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the GVCP-S and GVSP-S servers",
	Long: `Start an emulated GigE Vision camera: a GVCP-S server answering
discovery and bootstrap register requests, and a GVSP-S server that
streams image frames once acquisition is started by a client.`,
	Example: `  # Start with the default checkerboard test pattern
  gige-emulator run

  # Stream a folder of images, advertised on mDNS
  gige-emulator run --source folder --source-path ./frames --mdns

  # Custom identity and resolution
  gige-emulator run --serial CAM001 --width 1280 --height 720`,
	RunE: runEmulator,
}

func init() {
	runCmd.Flags().StringVar(&host, "host", "", "bind address (empty = all interfaces)")
	runCmd.Flags().IntVar(&gvcpPort, "gvcp-port", gvcpserver.DefaultPort, "GVCP UDP port")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&serial, "serial", "SIM0001", "device serial number")
	runCmd.Flags().StringVar(&manufacturer, "manufacturer", "ProtoLab", "device manufacturer string")
	runCmd.Flags().StringVar(&model, "model", "GigE-Vision Emulator", "device model string")
	runCmd.Flags().IntVar(&width, "width", 640, "image width")
	runCmd.Flags().IntVar(&height, "height", 480, "image height")
	runCmd.Flags().StringVar(&pixelFormat, "pixel-format", "mono8", "pixel format (mono8, bgr8)")
	runCmd.Flags().StringVar(&sourceKind, "source", "pattern", "image source (pattern, folder, file)")
	runCmd.Flags().StringVar(&sourcePath, "source-path", "", "path for folder/file sources")
	runCmd.Flags().BoolVar(&advertiseMDNS, "mdns", false, "advertise this camera on mDNS")
	runCmd.Flags().StringVar(&tapAddr, "diagnostics-addr", "", "address to serve a diagnostics WebSocket tap on (disabled if empty)")
}

func runEmulator(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	format, err := parsePixelFormat(pixelFormat)
	if err != nil {
		return err
	}

	cfg := gige.ImageConfig{
		Width:       uint32(width),
		Height:      uint32(height),
		PixelFormat: format,
		FrameRate:   30,
		PacketSize:  1500,
	}

	source, err := buildSource(cfg)
	if err != nil {
		return err
	}

	bus := diagnostics.NewBus()
	if tapAddr != "" {
		if err := serveDiagnosticsTap(tapAddr, bus); err != nil {
			return err
		}
	}

	gvsp, err := gvspserver.New(cfg, source)
	if err != nil {
		return fmt.Errorf("failed to create GVSP-S: %w", err)
	}
	defer gvsp.Close()
	gvsp.SetDiagnostics(bus)

	descriptor := gige.DeviceDescriptor{
		Manufacturer:  manufacturer,
		Model:         model,
		DeviceVersion: "1.0",
		Serial:        serial,
	}

	gvcp := gvcpserver.New(gvcpserver.Config{
		Host:       host,
		Port:       gvcpPort,
		Descriptor: descriptor,
	}, register.NewStore(), gvsp)
	gvcp.SetDiagnostics(bus)

	if err := gvcp.Start(); err != nil {
		return fmt.Errorf("failed to start GVCP-S: %w", err)
	}
	defer gvcp.Stop()

	fmt.Printf("gige-emulator: GVCP-S listening on %s\n", gvcp.Addr())

	if advertiseMDNS {
		ad, err := discovery.Advertise(descriptor, gvcpPort)
		if err != nil {
			fmt.Fprintf(os.Stderr, "gige-emulator: mDNS advertisement failed: %v\n", err)
		} else {
			defer ad.Shutdown()
			fmt.Printf("gige-emulator: advertising %q on mDNS\n", serial)
		}
	}

	waitForSignal()
	return nil
}

func parsePixelFormat(s string) (gige.PixelFormat, error) {
	switch s {
	case "mono8":
		return gige.Mono8, nil
	case "bgr8":
		return gige.BGR8Packed, nil
	default:
		return 0, fmt.Errorf("unknown pixel format %q (want mono8 or bgr8)", s)
	}
}

func buildSource(cfg gige.ImageConfig) (imagesource.Source, error) {
	switch sourceKind {
	case "pattern":
		return imagesource.NewPatternSource(cfg, imagesource.PatternCheckerboard), nil
	case "folder":
		if sourcePath == "" {
			return nil, fmt.Errorf("--source-path is required for a folder source")
		}
		return imagesource.NewFolderSource(sourcePath, cfg.PixelFormat)
	case "file":
		if sourcePath == "" {
			return nil, fmt.Errorf("--source-path is required for a file source")
		}
		return imagesource.NewFileSource(sourcePath, cfg.PixelFormat)
	default:
		return nil, fmt.Errorf("unknown source %q (want pattern, folder, or file)", sourceKind)
	}
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
}
