package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rusenback/trackerdash/internal/config"
	"github.com/rusenback/trackerdash/internal/dashboard"
	"github.com/rusenback/trackerdash/internal/logging"
	"github.com/rusenback/trackerdash/internal/render"
	"github.com/rusenback/trackerdash/internal/storage"
	"github.com/rusenback/trackerdash/internal/tracker"
	"github.com/rusenback/trackerdash/internal/tui"
	"golang.org/x/sync/errgroup"
)

const version = "0.3.0"

func main() {
	configPath := flag.String("config", defaultConfigPath(), "Path to configuration file")
	server := flag.String("server", "", "Tracker server base URL (overrides the config file)")
	liveID := flag.String("live", "", "Start with the live stream of this video")
	resultID := flag.String("result", "", "Start with this result video")
	uploadPath := flag.String("upload", "", "Upload this video to the server before starting")
	importPath := flag.String("import", "", "Import this CSV or Excel employee list before starting")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("trackerdash version %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("❌ Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *server != "" {
		cfg.Server.BaseURL = *server
	}

	// The TUI owns the terminal, so logs go to a file
	logger, logFile, err := logging.Open(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		fmt.Printf("❌ Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	client, err := tracker.NewClient(tracker.Config{
		BaseURL: cfg.Server.BaseURL,
		Timeout: cfg.Server.Timeout,
	}, logger)
	if err != nil {
		fmt.Printf("❌ Invalid tracker server: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewStorage(cfg.Storage.Path, cfg.Storage.Retention, logger)
	if err != nil {
		fmt.Printf("❌ Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	renderer := render.Renderer{AwayMarker: cfg.Markers.Away}
	ctrl := dashboard.New(client, dashboard.Options{
		Regions:         cfg.Sync.Regions,
		LoadingFallback: cfg.Live.LoadingFallback,
		DisconnectDelay: cfg.Offline.DisconnectDelay,
		ResultMarker:    cfg.Markers.Result,
		DownloadDir:     cfg.Downloads.Dir,
		Renderer:        renderer,
		Journal:         store,
		Logger:          logger,
	})
	defer ctrl.Close()

	logger.Info("starting trackerdash", "version", version, "server", cfg.Server.BaseURL, "session", client.Session())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// An unreachable server is not fatal: the poller keeps retrying
	loadCtx, loadCancel := context.WithTimeout(ctx, cfg.Server.Timeout)
	if err := ctrl.Load(loadCtx); err != nil {
		logger.Warn("initial page load failed", "err", err)
	}
	loadCancel()

	if *uploadPath != "" {
		if err := ctrl.Upload(ctx, *uploadPath); err != nil {
			fmt.Printf("❌ Upload failed: %v\n", err)
		}
	}
	if *importPath != "" {
		if err := ctrl.ImportEmployees(ctx, *importPath); err != nil {
			fmt.Printf("❌ Employee import failed: %v\n", err)
		}
	}

	switch {
	case *resultID != "":
		err = ctrl.EnterResult(*resultID)
	case *liveID != "":
		err = ctrl.EnterLive(*liveID)
	}
	if err != nil {
		logger.Error("initial view", "err", err)
	}

	poller := dashboard.NewPoller(ctrl, cfg.Sync.Interval, cfg.Sync.ManualRefreshMinInterval, logger)

	m := tui.NewModel(ctrl, poller, store, renderer)
	p := tea.NewProgram(m, tea.WithAltScreen())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		poller.Start(gctx)
		<-gctx.Done()
		poller.Stop()
		p.Quit()
		return nil
	})
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})

	if err := g.Wait(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
	logger.Info("trackerdash stopped")
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "trackerdash.yaml"
	}
	return filepath.Join(home, ".trackerdash", "config.yaml")
}
