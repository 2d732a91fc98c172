package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/soocke/camsnap/app"
	"github.com/soocke/camsnap/config"
	"github.com/soocke/camsnap/debug"
)

func main() {
	var (
		cfgPath = flag.String("config", config.DefaultPath(), "config file (.json, .yaml or .toml)")
		dbg     = flag.Bool("debug", false, "debug logging and runtime stats")
		facing  = flag.String("facing", "", "initial facing mode: user or environment")
		device  = flag.String("device", "", "device for the initial facing mode")
		source  = flag.String("source", "", "frame source: v4l2, screen or image")
		overlay = flag.String("overlay", "", "overlay PNG path (empty uses the embedded frame)")
		saveDir = flag.String("save-dir", "", "directory for saved photos")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		// Defaults are still usable; report and continue.
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
	}
	// Written before flag overrides so one-off flags are not persisted.
	created, werr := ensureConfig(*cfgPath, cfg)
	if werr != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", werr)
	}
	applyFlags(cfg, *dbg, *facing, *device, *source, *overlay, *saveDir)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level, os.Stdout)
	logger.Info("camsnap starting", "config", *cfgPath, "config_created", created, "source", cfg.Camera.Source, "facing", cfg.Camera.Facing)

	if cfg.Debug {
		debug.StartGoroutineLogger(5*time.Second, logger)
		debug.StartMemLogger(5*time.Second, logger)
	}

	application, err := app.NewApp("camsnap", cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	application.Start()
}

// ensureConfig writes cfg to path when no config file exists yet, so first runs leave an
// editable file behind. An existing file is never touched.
func ensureConfig(path string, cfg *config.Config) (bool, error) {
	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err := cfg.Save(path); err != nil {
		return false, fmt.Errorf("write default config: %w", err)
	}
	return true, nil
}

// applyFlags overrides config values with non-empty command line flags.
func applyFlags(cfg *config.Config, dbg bool, facing, device, source, overlay, saveDir string) {
	if dbg {
		cfg.Debug = true
	}
	if facing != "" {
		cfg.Camera.Facing = facing
	}
	if source != "" {
		cfg.Camera.Source = source
	}
	if device != "" {
		if cfg.Camera.Facing == config.FacingEnvironment {
			cfg.Camera.BackDevice = device
		} else {
			cfg.Camera.FrontDevice = device
		}
	}
	if overlay != "" {
		cfg.Overlay.Path = overlay
		cfg.Overlay.Disabled = false
	}
	if saveDir != "" {
		cfg.Output.SaveDir = saveDir
	}
}
