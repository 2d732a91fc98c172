package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/camsnap/config"
	"github.com/soocke/camsnap/ui/presenter"
	"github.com/soocke/camsnap/ui/theme"
)

const autoFullscreenDelay = time.Second

type app struct {
	config  *config.Config
	logger  *slog.Logger
	c       *AppContainer
	ctx     context.Context
	cancel  context.CancelFunc
	afterID string
	closed  bool
}

func NewApp(title string, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{config: cfg, logger: logger}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	c, err := BuildContainer(cfg, logger, tkScheduler{logger: logger})
	if err != nil {
		a.cancel()
		return nil, err
	}
	a.c = c

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", cfg.Display.Width, cfg.Display.Height))
	return a, nil
}

// Start builds the UI, opens the camera and blocks in the Tk main loop.
func (a *app) Start() {
	theme.SetDark(a.config.Display.Dark)
	a.c.RootView.Build(a.c.Input, a.exitHandler)

	a.c.Loop = presenter.NewLoop(a.c.Controller, a.c.RootView, a.scheduleUpdate)
	a.c.Loop.Watch = a.c.Controller
	a.c.Loop.Summary = a.c.Controller
	a.c.Loop.Info = a.c.RootView

	a.c.Controller.Start(a.ctx)
	if a.config.Display.AutoFullscreen {
		a.c.Controller.AutoFullscreen(autoFullscreenDelay)
	}

	a.scheduleUpdate()
	App.Wait()
	a.shutdown()
}

func (a *app) exitHandler() {
	a.shutdown()
	Destroy(App)
}

func (a *app) shutdown() {
	if a.closed {
		return
	}
	a.closed = true
	// Cancel scheduled after event if any.
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
		a.afterID = ""
	}
	a.c.Controller.Close()
	a.cancel()
	taken, saved := a.c.Photos.Counts()
	a.logger.Info("camsnap exiting", "photos", taken, "saved", saved)
}

func (a *app) scheduleUpdate() {
	if a.closed {
		return
	}
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(a.config.Tick(), func() { a.c.Loop.Tick() })
}
