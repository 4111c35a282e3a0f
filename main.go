package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"LeapPaint/internal/config"
	"LeapPaint/internal/export"
	"LeapPaint/internal/filter"
	"LeapPaint/internal/input"
	bridge "LeapPaint/internal/net"
	"LeapPaint/internal/render"
	"LeapPaint/internal/state"
	"LeapPaint/internal/stroke"
	"LeapPaint/internal/ui"
)

const browseTimeout = 3 * time.Second

func main() {
	// Configuration errors are reported before the configured level is known.
	stroke.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	cfg := config.Load()

	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(logger)
	stroke.SetLogger(logger)

	if len(os.Args) > 1 && os.Args[1] == "browse" {
		runBrowse(logger)
		return
	}
	runPainter(cfg, logger)
}

// runBrowse lists the bridges announced on the local network.
func runBrowse(logger *slog.Logger) {
	err := bridge.Browse(browseTimeout, func(url string) {
		fmt.Println(url)
	})
	if err != nil {
		logger.Error("browse failed", "component", "bridge", "error", err)
		os.Exit(1)
	}
}

func runPainter(cfg config.Config, logger *slog.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	palette := ui.NewPalette()
	size := ui.NewThicknessControl(0.5)
	thickness := filter.NewSourceThickness(size, cfg.ThicknessMin, cfg.ThicknessMax)

	proc := stroke.NewProcessor()
	proc.RegisterFilter(filter.NewPositionMovingAverage(cfg.MovingAverageWindow))
	proc.RegisterFilter(filter.NewPitchYawRoll())
	proc.RegisterFilter(filter.NewColorSample(palette))
	proc.RegisterFilter(thickness)

	history := state.NewHistory()
	ribbon := render.NewRibbon()
	ribbon.OnFinalized = history.NotifyStroke
	proc.RegisterRenderer(ribbon)

	if cfg.BridgeEnabled {
		startBridge(ctx, cfg, proc, logger)
	}

	status := ""
	if cfg.SceneFile != "" {
		if err := loadScene(history, cfg.SceneFile); err != nil {
			logger.Error("load scene failed", "component", "app", "file", cfg.SceneFile, "error", err)
			status = "Could not load " + cfg.SceneFile
		} else {
			status = fmt.Sprintf("Loaded %d strokes from %s", history.Len(), cfg.SceneFile)
		}
	}

	inputCfg := input.DefaultConfig()
	inputCfg.MaxSegmentLength = cfg.MaxSegmentLength
	inputCfg.MinThicknessMinSegmentLength = cfg.MinThicknessMinSegmentLength
	inputCfg.MaxThicknessMinSegmentLength = cfg.MaxThicknessMinSegmentLength

	ui.RunApp(ctx, ui.Options{
		Processor:      proc,
		History:        history,
		Palette:        palette,
		Size:           size,
		Thickness:      thickness,
		Input:          inputCfg,
		PixelsPerMeter: cfg.PixelsPerMeter,
		Export:         export.DefaultOptions(),
		Status:         status,
	})
}

// startBridge streams strokes to remote viewers and, when enabled, announces
// the bridge over mDNS. Everything stops with ctx.
func startBridge(ctx context.Context, cfg config.Config, proc *stroke.Processor, logger *slog.Logger) {
	peers := bridge.NewPeerManager()
	proc.RegisterRenderer(bridge.NewBridge(peers))

	go func() {
		if err := bridge.Serve(ctx, cfg.BridgePort, peers); err != nil {
			logger.Error("bridge stopped", "component", "bridge", "error", err)
		}
	}()

	if ip, err := bridge.OutgoingIP(); err == nil {
		logger.Info("viewers can connect", "component", "bridge", "url", bridge.BridgeURL(ip, cfg.BridgePort))
	}

	if !cfg.MDNSEnabled {
		return
	}
	server, err := bridge.Advertise(cfg.BridgePort)
	if err != nil {
		logger.Error("mDNS advertisement failed", "component", "bridge", "error", err)
		return
	}
	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()
}

func loadScene(h *state.History, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return h.Load(f)
}
