// Command loupe is a full-screen image viewer with pinch-zoom, pan, and
// swipe navigation.
//
//	loupe [flags] IMAGE...
//
// Drag or use the arrow keys to change slides, pinch, double-tap or scroll
// to zoom, tap to toggle the footer, S to save a screenshot, Escape to quit.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/loupe"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	index      int
	maxZoom    string
	width      int
	height     int
	logLevel   string
	scriptPath string
	shotDir    string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "loupe [flags] IMAGE...",
		Short:         "View images with pinch-zoom, pan, and swipe navigation",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "TOML config file")
	flags.IntVarP(&opts.index, "index", "i", 0, "slide to open first")
	flags.StringVar(&opts.maxZoom, "max-zoom", "", `maximum zoom, a number or "auto"`)
	flags.IntVar(&opts.width, "width", 960, "window width")
	flags.IntVar(&opts.height, "height", 720, "window height")
	flags.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn, or error")
	flags.StringVar(&opts.scriptPath, "script", "", "JSON gesture script to replay once images load")
	flags.StringVar(&opts.shotDir, "screenshot-dir", "screenshots", "directory for screenshots (S key)")
	return cmd
}

func run(cmd *cobra.Command, opts *options, paths []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(opts.logLevel),
	}))

	cfg, err := buildConfig(cmd, opts)
	if err != nil {
		return err
	}
	cfg.Logger = logger

	viewer, err := loupe.New(len(paths), cfg)
	if err != nil {
		return fmt.Errorf("create viewer: %w", err)
	}

	game := newGame(viewer, paths, opts.shotDir, logger)
	if opts.scriptPath != "" {
		data, err := os.ReadFile(opts.scriptPath)
		if err != nil {
			return fmt.Errorf("read gesture script: %w", err)
		}
		if game.script, err = loupe.LoadGestureScript(data); err != nil {
			return err
		}
		logger.Debug("gesture script loaded", "steps", game.script.Len())
	}
	game.loader.start()

	ebiten.SetWindowSize(opts.width, opts.height)
	ebiten.SetWindowTitle("loupe")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}

// buildConfig loads the config file, if any, and applies flag overrides.
func buildConfig(cmd *cobra.Command, opts *options) (loupe.Config, error) {
	var cfg loupe.Config
	if opts.configPath != "" {
		c, err := loupe.LoadConfig(opts.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = c
	}
	if cmd.Flags().Changed("index") {
		cfg.DefaultIndex = opts.index
	}
	if opts.maxZoom != "" {
		z, err := parseZoom(opts.maxZoom)
		if err != nil {
			return cfg, err
		}
		cfg.MaxZoom = z
	}
	return cfg, nil
}

func parseZoom(s string) (loupe.ZoomLimit, error) {
	if strings.EqualFold(s, "auto") {
		return loupe.ZoomAuto, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < loupe.MinScale {
		return 0, fmt.Errorf("--max-zoom: want a number >= %v or \"auto\", got %q", loupe.MinScale, s)
	}
	return loupe.ZoomLimit(f), nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
