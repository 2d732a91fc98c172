package app

import (
	"log/slog"

	"github.com/soocke/camsnap/config"
	"github.com/soocke/camsnap/domain/camera"
	"github.com/soocke/camsnap/domain/compose"
	"github.com/soocke/camsnap/domain/photo"
	"github.com/soocke/camsnap/ui/model"
	"github.com/soocke/camsnap/ui/presenter"
	"github.com/soocke/camsnap/ui/view"
)

// Container assembles models, services, presenters and the root view.
type AppContainer struct {
	Config *config.Config
	Logger *slog.Logger

	// Models
	Capture *model.CaptureModel
	Camera  *model.CameraModel
	Photos  *model.PhotoModel

	// Services
	Acquirer   *camera.Acquirer
	Compositor *compose.Compositor
	Overlay    *compose.Overlay
	Exporter   *photo.FileExporter
	Clipboard  *photo.Clipboard

	// View
	RootView *view.RootView
	Display  presenter.DisplayControl

	// Presenters
	Controller *presenter.CaptureController
	Input      *presenter.Input
	Loop       *presenter.Loop
}

// BuildContainer constructs all components. Side-effects limited to asset loading; no
// device is opened until the controller starts.
func BuildContainer(cfg *config.Config, logger *slog.Logger, sched presenter.Scheduler) (*AppContainer, error) {
	c := &AppContainer{Config: cfg, Logger: logger}

	acq, err := camera.NewAcquirer(cfg, logger)
	if err != nil {
		return nil, err
	}
	c.Acquirer = acq

	if !cfg.Overlay.Disabled {
		ov, err := compose.LoadOverlay(cfg.Overlay.Path)
		if err != nil {
			// A broken overlay only costs the frame decoration.
			logger.Warn("overlay unavailable", "path", cfg.Overlay.Path, "error", err)
		} else {
			c.Overlay = ov
			logger.Info("overlay loaded", "source", ov.Source(), "width", ov.Width(), "height", ov.Height())
		}
	}

	c.Compositor = compose.NewCompositor(nil, logger)
	c.Exporter = photo.NewFileExporter(cfg.Output.SaveDir, cfg.Output.Prefix, logger)
	logger.Info("photo output", "dir", c.Exporter.Dir())
	c.Clipboard = photo.NewClipboard(logger)

	c.Capture = &model.CaptureModel{}
	c.Camera = model.NewCameraModel(camera.ParseFacing(cfg.Camera.Facing))
	c.Photos = model.NewPhotoModel()

	c.RootView = view.NewRootView(cfg, logger)
	c.Display = view.NewDisplayControl(cfg.Display.Fullscreen)

	c.Input = presenter.NewInput(logger)
	c.Controller = presenter.NewCaptureController(presenter.Deps{
		Acquirer:       c.Acquirer,
		Compositor:     c.Compositor,
		Overlay:        c.Overlay,
		Scheduler:      sched,
		Display:        c.Display,
		Exporter:       c.Exporter,
		Clipboard:      c.Clipboard,
		View:           c.RootView,
		Capture:        c.Capture,
		Camera:         c.Camera,
		Photos:         c.Photos,
		RetryDelay:     cfg.RetryDelay(),
		MaxRetries:     cfg.Capture.MaxRetries,
		NoticeDuration: cfg.NoticeDuration(),
		Logger:         logger,
	})
	c.Input.Bind(c.Controller)
	return c, nil
}
