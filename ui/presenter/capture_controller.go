package presenter

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/soocke/camsnap/domain/camera"
	"github.com/soocke/camsnap/domain/compose"
	"github.com/soocke/camsnap/domain/photo"
	"github.com/soocke/camsnap/ui/model"
)

const fullscreenNotice = "Press Esc to exit fullscreen"

// FeedAcquirer opens a live feed for a facing mode.
type FeedAcquirer interface {
	Acquire(ctx context.Context, facing camera.FacingMode) (camera.Feed, error)
}

// Compositor turns a frame into an encoded photo.
type Compositor interface {
	Compose(frame image.Image, overlay *compose.Overlay, mirror bool) (*photo.Photo, error)
}

// Scheduler runs fn once after d on the UI thread. The returned func cancels it.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

// DisplayControl is the fullscreen capability selected at startup.
type DisplayControl interface {
	Supported() bool
	Enter() error
	Exit() error
	Active() bool
	OnChange(fn func(active bool))
}

// Exporter persists a photo and returns where it went.
type Exporter interface {
	Export(p *photo.Photo) (string, error)
}

// Clipboard copies a photo to the system clipboard.
type Clipboard interface {
	Copy(p *photo.Photo) error
}

// LiveView shows the live camera feed.
type LiveView interface {
	ShowLive()
	UpdateLive(img image.Image, mirrored bool)
}

// PhotoView previews a captured photo.
type PhotoView interface {
	ShowPhoto(p *photo.Photo)
}

// StatusView surfaces errors and short status messages.
type StatusView interface {
	ShowError(msg string)
	ClearError()
	ShowStatus(msg string)
}

// DisplayView reflects fullscreen state.
type DisplayView interface {
	SetFullscreenSupported(bool)
	SetFullscreen(active bool)
	ShowNotice(msg string)
	HideNotice()
}

// View is everything the controller drives.
type View interface {
	LiveView
	PhotoView
	StatusView
	DisplayView
}

// Deps collects the collaborators of a CaptureController.
type Deps struct {
	Acquirer   FeedAcquirer
	Compositor Compositor
	Overlay    *compose.Overlay
	Scheduler  Scheduler
	Display    DisplayControl
	Exporter   Exporter
	Clipboard  Clipboard
	View       View

	Capture *model.CaptureModel
	Camera  *model.CameraModel
	Photos  *model.PhotoModel

	RetryDelay     time.Duration
	MaxRetries     int
	NoticeDuration time.Duration
	Logger         *slog.Logger
}

// CaptureController owns the capture state machine, the current feed and the photo
// preview. All methods must be called from the UI thread.
type CaptureController struct {
	acquirer   FeedAcquirer
	compositor Compositor
	overlay    *compose.Overlay
	scheduler  Scheduler
	display    DisplayControl
	exporter   Exporter
	clipboard  Clipboard
	view       View

	capture *model.CaptureModel
	camera  *model.CameraModel
	photos  *model.PhotoModel

	retryDelay     time.Duration
	maxRetries     int
	noticeDuration time.Duration
	logger         *slog.Logger

	ctx          context.Context
	feed         camera.Feed
	liveGen      uint64 // bumped whenever the live view is shown again
	cancelRetry  func()
	cancelNotice func()
}

// NewCaptureController wires a controller. Missing models are created; a missing display
// control is treated as unsupported.
func NewCaptureController(d Deps) *CaptureController {
	c := &CaptureController{
		acquirer:       d.Acquirer,
		compositor:     d.Compositor,
		overlay:        d.Overlay,
		scheduler:      d.Scheduler,
		display:        d.Display,
		exporter:       d.Exporter,
		clipboard:      d.Clipboard,
		view:           d.View,
		capture:        d.Capture,
		camera:         d.Camera,
		photos:         d.Photos,
		retryDelay:     d.RetryDelay,
		maxRetries:     d.MaxRetries,
		noticeDuration: d.NoticeDuration,
		logger:         d.Logger,
		ctx:            context.Background(),
	}
	if c.capture == nil {
		c.capture = &model.CaptureModel{}
	}
	if c.camera == nil {
		c.camera = model.NewCameraModel(camera.FacingUser)
	}
	if c.photos == nil {
		c.photos = model.NewPhotoModel()
	}
	if c.retryDelay <= 0 {
		c.retryDelay = 100 * time.Millisecond
	}
	if c.maxRetries <= 0 {
		c.maxRetries = 20
	}
	if c.noticeDuration <= 0 {
		c.noticeDuration = 3 * time.Second
	}
	if c.view != nil {
		c.view.SetFullscreenSupported(c.fullscreenSupported())
	}
	if c.fullscreenSupported() {
		c.display.OnChange(c.onDisplayChange)
	}
	return c
}

// Start acquires the initial feed. ctx bounds this and later re-acquisitions.
func (c *CaptureController) Start(ctx context.Context) {
	if c == nil {
		return
	}
	if ctx != nil {
		c.ctx = ctx
	}
	c.acquire()
}

// Close stops the feed and cancels pending timers.
func (c *CaptureController) Close() {
	if c == nil {
		return
	}
	if c.cancelRetry != nil {
		c.cancelRetry()
		c.cancelRetry = nil
	}
	c.capture.SetRetryPending(false)
	if c.cancelNotice != nil {
		c.cancelNotice()
		c.cancelNotice = nil
	}
	c.stopFeed()
}

// Feed returns the current live feed, nil when none is acquired.
func (c *CaptureController) Feed() camera.FrameSource {
	if c == nil || c.feed == nil {
		return nil
	}
	return c.feed
}

// LiveFrame returns the latest feed frame when the live view is showing.
func (c *CaptureController) LiveFrame() (camera.FrameSnapshot, bool) {
	if c == nil || c.feed == nil || c.photos.PreviewVisible() {
		return camera.FrameSnapshot{}, false
	}
	snap := c.feed.LatestFrame()
	return snap, snap.Ready()
}

// LiveGeneration changes every time the live view is re-shown, so the update loop
// repaints even when the feed sequence did not advance.
func (c *CaptureController) LiveGeneration() uint64 {
	if c == nil {
		return 0
	}
	return c.liveGen
}

// Mirrored reports whether live frames and captures are currently mirrored.
func (c *CaptureController) Mirrored() bool { return c != nil && c.camera.Mirrored() }

// Capture takes a photo of the current frame. A capture already in flight, a pending
// retry or a previewed photo absorbs the trigger.
func (c *CaptureController) Capture() {
	if c == nil {
		return
	}
	if c.photos.PreviewVisible() {
		c.debug("capture trigger dropped, photo in preview")
		return
	}
	if c.capture.RetryPending() {
		c.debug("capture trigger dropped, retry pending")
		return
	}
	c.capture.ResetRetries()
	c.attempt()
}

func (c *CaptureController) attempt() {
	if !c.capture.TryBegin() {
		c.debug("capture already in progress")
		return
	}
	defer c.capture.End()
	defer func() {
		if r := recover(); r != nil && c.logger != nil {
			c.logger.Error("capture panic", "error", r)
		}
	}()

	var snap camera.FrameSnapshot
	if c.feed != nil {
		snap = c.feed.LatestFrame()
	}
	if !snap.Ready() {
		c.capture.End()
		c.scheduleRetry()
		return
	}
	c.capture.ResetRetries()

	mirror := c.camera.Mirrored()
	p, err := c.compositor.Compose(snap.Image, c.overlay, mirror)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("capture failed", "error", err, "width", snap.Width(), "height", snap.Height())
		}
		return
	}
	c.photos.Set(p)
	if c.view != nil {
		c.view.ShowPhoto(p)
	}
	if c.logger != nil {
		c.logger.Info("photo captured",
			"width", p.Width,
			"height", p.Height,
			"mirror", mirror,
			"facing", c.camera.Facing().String(),
			"size", p.Size(),
		)
	}
}

func (c *CaptureController) scheduleRetry() {
	n := c.capture.NextRetry()
	if n > c.maxRetries {
		if c.logger != nil {
			c.logger.Warn("feed not ready, capture abandoned", "attempts", n-1)
		}
		c.capture.ResetRetries()
		return
	}
	if c.scheduler == nil || !c.capture.SetRetryPending(true) {
		return
	}
	c.debug("feed not ready, retry scheduled", "attempt", n, "delay", c.retryDelay)
	c.cancelRetry = c.scheduler.After(c.retryDelay, c.retry)
}

func (c *CaptureController) retry() {
	c.cancelRetry = nil
	c.capture.SetRetryPending(false)
	c.attempt()
}

// SwitchCamera flips the facing mode and re-acquires the feed. It is ignored while a
// photo is previewed.
func (c *CaptureController) SwitchCamera() {
	if c == nil {
		return
	}
	if c.photos.PreviewVisible() {
		c.debug("camera switch ignored, photo in preview")
		return
	}
	facing := c.camera.ToggleFacing()
	if c.logger != nil {
		c.logger.Info("switching camera", "facing", facing.String())
	}
	c.stopFeed()
	c.acquire()
}

// ToggleFullscreen enters or leaves fullscreen.
func (c *CaptureController) ToggleFullscreen() {
	if c == nil || !c.fullscreenSupported() {
		return
	}
	var err error
	if c.display.Active() {
		err = c.display.Exit()
	} else {
		err = c.display.Enter()
	}
	if err != nil && c.logger != nil {
		c.logger.Warn("fullscreen toggle failed", "error", err)
	}
}

// ExitFullscreen leaves fullscreen if active.
func (c *CaptureController) ExitFullscreen() {
	if c == nil || !c.fullscreenSupported() || !c.display.Active() {
		return
	}
	if err := c.display.Exit(); err != nil && c.logger != nil {
		c.logger.Warn("exit fullscreen failed", "error", err)
	}
}

// AutoFullscreen enters fullscreen once after delay.
func (c *CaptureController) AutoFullscreen(delay time.Duration) {
	if c == nil || c.scheduler == nil || !c.fullscreenSupported() {
		return
	}
	c.scheduler.After(delay, func() {
		if !c.display.Active() {
			if err := c.display.Enter(); err != nil && c.logger != nil {
				c.logger.Warn("auto fullscreen failed", "error", err)
			}
		}
	})
}

func (c *CaptureController) onDisplayChange(active bool) {
	if !c.camera.SetFullscreen(active) {
		return
	}
	if c.view == nil {
		return
	}
	c.view.SetFullscreen(active)
	if c.cancelNotice != nil {
		c.cancelNotice()
		c.cancelNotice = nil
	}
	if !active {
		c.view.HideNotice()
		return
	}
	c.view.ShowNotice(fullscreenNotice)
	if c.scheduler != nil {
		c.cancelNotice = c.scheduler.After(c.noticeDuration, func() {
			c.cancelNotice = nil
			c.view.HideNotice()
		})
	}
}

// Save exports the previewed photo and returns to the live view.
func (c *CaptureController) Save() {
	if c == nil || c.exporter == nil {
		return
	}
	p := c.photos.Current()
	if p == nil {
		return
	}
	path, err := c.exporter.Export(p)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("save failed", "error", err)
		}
		if c.view != nil {
			c.view.ShowStatus("Save failed: " + err.Error())
		}
		return
	}
	c.photos.MarkSaved()
	if c.view != nil {
		c.view.ShowStatus("Saved " + filepath.Base(path))
	}
	c.Retake()
}

// Retake discards the previewed photo and shows the live feed again.
func (c *CaptureController) Retake() {
	if c == nil || !c.photos.PreviewVisible() {
		return
	}
	c.photos.Clear()
	c.showLive()
}

// Copy puts the previewed photo on the clipboard.
func (c *CaptureController) Copy() {
	if c == nil || c.clipboard == nil {
		return
	}
	p := c.photos.Current()
	if p == nil {
		return
	}
	msg := "Copied to clipboard"
	if err := c.clipboard.Copy(p); err != nil {
		if c.logger != nil {
			c.logger.Error("copy failed", "error", err)
		}
		msg = "Copy failed: " + err.Error()
	}
	if c.view != nil {
		c.view.ShowStatus(msg)
	}
}

// Summary describes the current feed and photo counters for the info bar.
func (c *CaptureController) Summary() string {
	if c == nil {
		return ""
	}
	taken, saved := c.photos.Counts()
	if c.feed == nil {
		return fmt.Sprintf("No camera | photos %d, saved %d", taken, saved)
	}
	snap := c.feed.LatestFrame()
	stats := c.feed.Stats()
	return fmt.Sprintf("%s (%s) %dx%d | frames %d | photos %d, saved %d",
		c.feed.Name(), c.camera.Facing(), snap.Width(), snap.Height(), stats.Frames, taken, saved)
}

// Photos exposes the photo model for status rendering.
func (c *CaptureController) Photos() *model.PhotoModel { return c.photos }

func (c *CaptureController) acquire() {
	if c.acquirer == nil {
		return
	}
	facing := c.camera.Facing()
	feed, err := c.acquirer.Acquire(c.ctx, facing)
	if err != nil {
		c.camera.SetError(err)
		if c.logger != nil {
			c.logger.Error("camera unavailable", "facing", facing.String(), "error", err)
		}
		if c.view != nil {
			c.view.ShowError(fmt.Sprintf("Camera unavailable (%s): %v", facing, err))
		}
		return
	}
	c.feed = feed
	c.camera.SetAcquired(feed.Name())
	if c.view != nil {
		c.view.ClearError()
	}
	if !c.photos.PreviewVisible() {
		c.showLive()
	}
}

// CheckFeed surfaces a feed that stopped on its own (unplugged device, persistent grab
// errors) as a device error and drops it. Called from the update loop.
func (c *CaptureController) CheckFeed() {
	if c == nil || c.feed == nil || c.feed.Running() {
		return
	}
	err := c.feed.Err()
	if err == nil {
		err = camera.ErrFeedLost
	}
	name := c.feed.Name()
	c.stopFeed()
	c.camera.SetError(err)
	facing := c.camera.Facing()
	if c.logger != nil {
		c.logger.Error("camera lost", "feed", name, "facing", facing.String(), "error", err)
	}
	if c.view != nil {
		c.view.ShowError(fmt.Sprintf("Camera unavailable (%s): %v", facing, err))
	}
}

func (c *CaptureController) showLive() {
	c.liveGen++
	if c.view != nil {
		c.view.ShowLive()
	}
}

func (c *CaptureController) stopFeed() {
	if c.feed == nil {
		return
	}
	c.feed.Stop()
	c.feed = nil
}

func (c *CaptureController) fullscreenSupported() bool {
	return c.display != nil && c.display.Supported()
}

func (c *CaptureController) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
