package presenter

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/soocke/camsnap/domain/camera"
	"github.com/soocke/camsnap/domain/compose"
	"github.com/soocke/camsnap/domain/photo"
	"github.com/soocke/camsnap/ui/model"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// mockFeed is a controllable camera.Feed.
type mockFeed struct {
	name    string
	snap    camera.FrameSnapshot
	stopped int
	lost    error
}

func (f *mockFeed) LatestFrame() camera.FrameSnapshot { return f.snap }
func (f *mockFeed) Running() bool                     { return f.stopped == 0 && f.lost == nil }
func (f *mockFeed) Err() error                        { return f.lost }
func (f *mockFeed) Name() string                      { return f.name }
func (f *mockFeed) Stats() camera.FeedStats           { return camera.FeedStats{} }
func (f *mockFeed) Stop()                             { f.stopped++ }

var _ camera.Feed = (*mockFeed)(nil)

func readyFeed(name string, w, h int) *mockFeed {
	return &mockFeed{name: name, snap: camera.FrameSnapshot{Image: image.NewRGBA(image.Rect(0, 0, w, h)), Sequence: 1}}
}

type mockAcquirer struct {
	feeds  []*mockFeed
	err    error
	facing []camera.FacingMode
}

func (a *mockAcquirer) Acquire(_ context.Context, facing camera.FacingMode) (camera.Feed, error) {
	a.facing = append(a.facing, facing)
	if a.err != nil {
		return nil, a.err
	}
	if len(a.feeds) == 0 {
		return readyFeed("default", 4, 4), nil
	}
	f := a.feeds[0]
	a.feeds = a.feeds[1:]
	return f, nil
}

type composeCall struct {
	w, h    int
	mirror  bool
	overlay bool
}

type mockCompositor struct {
	calls  []composeCall
	err    error
	during func()
}

func (m *mockCompositor) Compose(frame image.Image, overlay *compose.Overlay, mirror bool) (*photo.Photo, error) {
	m.calls = append(m.calls, composeCall{w: frame.Bounds().Dx(), h: frame.Bounds().Dy(), mirror: mirror, overlay: overlay.Loaded()})
	if m.during != nil {
		m.during()
	}
	if m.err != nil {
		return nil, m.err
	}
	return &photo.Photo{Data: []byte{1, 2, 3}, MIME: "image/jpeg", Width: frame.Bounds().Dx(), Height: frame.Bounds().Dy()}, nil
}

// mockScheduler queues callbacks; tests run them explicitly.
type mockScheduler struct {
	queue    []scheduled
	canceled int
}

type scheduled struct {
	d        time.Duration
	fn       func()
	canceled *bool
}

func (s *mockScheduler) After(d time.Duration, fn func()) func() {
	c := new(bool)
	s.queue = append(s.queue, scheduled{d: d, fn: fn, canceled: c})
	return func() {
		if !*c {
			*c = true
			s.canceled++
		}
	}
}

// runNext runs the oldest non-canceled callback and reports whether one ran.
func (s *mockScheduler) runNext() bool {
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		if *next.canceled {
			continue
		}
		next.fn()
		return true
	}
	return false
}

func (s *mockScheduler) pending() int {
	n := 0
	for _, q := range s.queue {
		if !*q.canceled {
			n++
		}
	}
	return n
}

type mockDisplay struct {
	supported bool
	active    bool
	listener  func(bool)
	enters    int
	exits     int
}

func (d *mockDisplay) Supported() bool { return d.supported }
func (d *mockDisplay) Active() bool    { return d.active }
func (d *mockDisplay) OnChange(fn func(bool)) {
	d.listener = fn
}
func (d *mockDisplay) Enter() error {
	d.enters++
	d.active = true
	if d.listener != nil {
		d.listener(true)
	}
	return nil
}
func (d *mockDisplay) Exit() error {
	d.exits++
	d.active = false
	if d.listener != nil {
		d.listener(false)
	}
	return nil
}

type mockExporter struct {
	saved []*photo.Photo
	err   error
}

func (e *mockExporter) Export(p *photo.Photo) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	e.saved = append(e.saved, p)
	return "/tmp/photo_1.jpg", nil
}

type mockClipboard struct {
	copied int
	err    error
}

func (c *mockClipboard) Copy(*photo.Photo) error {
	if c.err != nil {
		return c.err
	}
	c.copied++
	return nil
}

type mockView struct {
	liveShown   int
	photos      []*photo.Photo
	errors      []string
	errCleared  int
	status      []string
	supported   bool
	fullscreen  bool
	notice      string
	noticeShown bool
	live        int
}

func (v *mockView) ShowLive()                       { v.liveShown++ }
func (v *mockView) UpdateLive(image.Image, bool)    { v.live++ }
func (v *mockView) ShowPhoto(p *photo.Photo)        { v.photos = append(v.photos, p) }
func (v *mockView) ShowError(msg string)            { v.errors = append(v.errors, msg) }
func (v *mockView) ClearError()                     { v.errCleared++ }
func (v *mockView) ShowStatus(msg string)           { v.status = append(v.status, msg) }
func (v *mockView) SetFullscreenSupported(b bool)   { v.supported = b }
func (v *mockView) SetFullscreen(active bool)       { v.fullscreen = active }
func (v *mockView) ShowNotice(msg string)           { v.notice, v.noticeShown = msg, true }
func (v *mockView) HideNotice()                     { v.noticeShown = false }

type fixture struct {
	acq     *mockAcquirer
	comp    *mockCompositor
	sched   *mockScheduler
	display *mockDisplay
	exp     *mockExporter
	clip    *mockClipboard
	view    *mockView
	capture *model.CaptureModel
	camera  *model.CameraModel
	photos  *model.PhotoModel
	c       *CaptureController
}

func newFixture(feeds ...*mockFeed) *fixture {
	f := &fixture{
		acq:     &mockAcquirer{feeds: feeds},
		comp:    &mockCompositor{},
		sched:   &mockScheduler{},
		display: &mockDisplay{supported: true},
		exp:     &mockExporter{},
		clip:    &mockClipboard{},
		view:    &mockView{},
		capture: &model.CaptureModel{},
		camera:  model.NewCameraModel(camera.FacingUser),
		photos:  model.NewPhotoModel(),
	}
	f.c = NewCaptureController(Deps{
		Acquirer:       f.acq,
		Compositor:     f.comp,
		Overlay:        compose.NewOverlay(image.NewRGBA(image.Rect(0, 0, 512, 512)), "test"),
		Scheduler:      f.sched,
		Display:        f.display,
		Exporter:       f.exp,
		Clipboard:      f.clip,
		View:           f.view,
		Capture:        f.capture,
		Camera:         f.camera,
		Photos:         f.photos,
		RetryDelay:     50 * time.Millisecond,
		MaxRetries:     3,
		NoticeDuration: 3 * time.Second,
		Logger:         discardLogger(),
	})
	return f
}

func TestCapture_ReentrantTriggerIsNoop(t *testing.T) {
	f := newFixture(readyFeed("cam", 1280, 720))
	f.c.Start(context.Background())
	f.comp.during = func() {
		if f.capture.State() != model.CaptureCapturing {
			t.Errorf("state during compose = %v", f.capture.State())
		}
		f.c.Capture() // duplicate touch+click
		f.c.Capture()
	}
	f.c.Capture()
	if len(f.comp.calls) != 1 {
		t.Fatalf("compose called %d times, want 1", len(f.comp.calls))
	}
	if f.capture.State() != model.CaptureIdle {
		t.Fatalf("guard not released: %v", f.capture.State())
	}
	if f.sched.pending() != 0 {
		t.Fatal("re-entrant trigger must not schedule anything")
	}
}

func TestCapture_BufferMatchesFeedSize(t *testing.T) {
	f := newFixture(readyFeed("cam", 1280, 720))
	f.c.Start(context.Background())
	f.c.Capture()
	if len(f.comp.calls) != 1 || f.comp.calls[0].w != 1280 || f.comp.calls[0].h != 720 {
		t.Fatalf("compose calls = %+v", f.comp.calls)
	}
	p := f.photos.Current()
	if p == nil || p.Width != 1280 || p.Height != 720 {
		t.Fatalf("photo = %+v", p)
	}
	if len(f.view.photos) != 1 {
		t.Fatal("photo not shown in preview")
	}
}

func TestCapture_MirrorFollowsCurrentFacing(t *testing.T) {
	f := newFixture(readyFeed("front", 8, 8), readyFeed("back", 8, 8))
	f.c.Start(context.Background())
	f.c.Capture()
	f.c.Retake()
	f.c.SwitchCamera()
	f.c.Capture()
	if len(f.comp.calls) != 2 {
		t.Fatalf("compose calls = %d", len(f.comp.calls))
	}
	if !f.comp.calls[0].mirror || f.comp.calls[1].mirror {
		t.Fatalf("mirror flags = %v, %v; want front mirrored, back not", f.comp.calls[0].mirror, f.comp.calls[1].mirror)
	}
	if !f.comp.calls[0].overlay || !f.comp.calls[1].overlay {
		t.Fatal("overlay should be passed on every capture")
	}
	if got := f.acq.facing; len(got) != 2 || got[0] != camera.FacingUser || got[1] != camera.FacingEnvironment {
		t.Fatalf("acquire facings = %v", got)
	}
}

func TestCapture_MirrorReadAtCaptureTime(t *testing.T) {
	f := newFixture(readyFeed("front", 8, 8))
	f.c.Start(context.Background())
	// facing committed without re-acquiring yet
	f.camera.ToggleFacing()
	f.c.Capture()
	if f.comp.calls[0].mirror {
		t.Fatal("capture must use the committed facing mode, not the one at acquisition")
	}
}

func TestCapture_FailureReleasesGuard(t *testing.T) {
	f := newFixture(readyFeed("cam", 16, 16))
	f.c.Start(context.Background())
	f.comp.err = errors.New("encode failed")
	f.c.Capture()
	if f.capture.State() != model.CaptureIdle {
		t.Fatal("guard stuck after failure")
	}
	if f.photos.PreviewVisible() || len(f.view.photos) != 0 {
		t.Fatal("failed capture must not produce a photo")
	}
	f.comp.err = nil
	f.c.Capture()
	if len(f.comp.calls) != 2 || !f.photos.PreviewVisible() {
		t.Fatal("capture after failure should proceed normally")
	}
}

func TestCapture_PanicReleasesGuard(t *testing.T) {
	f := newFixture(readyFeed("cam", 16, 16))
	f.c.Start(context.Background())
	f.comp.during = func() { panic("surface lost") }
	f.c.Capture()
	if f.capture.State() != model.CaptureIdle {
		t.Fatal("guard stuck after panic")
	}
}

func TestCapture_NotReadyRetriesUntilReady(t *testing.T) {
	feed := &mockFeed{name: "warming"}
	f := newFixture(feed)
	f.c.Start(context.Background())
	f.c.Capture()
	if len(f.comp.calls) != 0 || f.sched.pending() != 1 {
		t.Fatalf("compose=%d pending=%d, want one retry scheduled", len(f.comp.calls), f.sched.pending())
	}
	if f.sched.queue[0].d != 50*time.Millisecond {
		t.Fatalf("retry delay = %v", f.sched.queue[0].d)
	}
	if f.capture.State() != model.CaptureIdle {
		t.Fatal("guard must be released while waiting for the retry")
	}
	// extra triggers while a retry is pending are dropped
	f.c.Capture()
	if f.sched.pending() != 1 {
		t.Fatalf("pending = %d, want 1", f.sched.pending())
	}
	feed.snap = camera.FrameSnapshot{Image: image.NewRGBA(image.Rect(0, 0, 32, 24)), Sequence: 1}
	f.sched.runNext()
	if len(f.comp.calls) != 1 || f.comp.calls[0].w != 32 {
		t.Fatalf("retry did not capture: %+v", f.comp.calls)
	}
	if f.capture.Retries() != 0 || f.capture.RetryPending() {
		t.Fatal("retry state not reset after success")
	}
}

func TestCapture_RetryCeiling(t *testing.T) {
	f := newFixture(&mockFeed{name: "stalled"})
	f.c.Start(context.Background())
	f.c.Capture()
	runs := 0
	for f.sched.runNext() {
		runs++
		if runs > 10 {
			t.Fatal("retries not bounded")
		}
	}
	if runs != 3 {
		t.Fatalf("retries run = %d, want 3", runs)
	}
	if len(f.comp.calls) != 0 || f.capture.State() != model.CaptureIdle || f.capture.RetryPending() {
		t.Fatal("abandoned capture left state behind")
	}
	// a fresh user trigger starts a new bounded sequence
	f.c.Capture()
	if f.sched.pending() != 1 {
		t.Fatal("new trigger should schedule a retry again")
	}
}

func TestCapture_NoFeedRetriesThenAbandons(t *testing.T) {
	f := newFixture()
	f.acq.err = camera.ErrDeviceUnavailable
	f.c.Start(context.Background())
	f.c.Capture()
	for f.sched.runNext() {
	}
	if len(f.comp.calls) != 0 {
		t.Fatal("capture without a feed must not compose")
	}
}

func TestStart_DeviceUnavailableShowsError(t *testing.T) {
	f := newFixture()
	f.acq.err = errors.Join(camera.ErrDeviceUnavailable, errors.New("no such device"))
	f.c.Start(context.Background())
	if len(f.view.errors) != 1 || f.camera.Err() == nil {
		t.Fatalf("errors = %v", f.view.errors)
	}
	if f.view.liveShown != 0 {
		t.Fatal("live feed must stay hidden when the device is unavailable")
	}
	// switching to the other camera succeeds and clears the panel
	f.acq.err = nil
	f.c.SwitchCamera()
	if f.view.errCleared != 1 || f.camera.Err() != nil || f.view.liveShown != 1 {
		t.Fatalf("cleared=%d live=%d err=%v", f.view.errCleared, f.view.liveShown, f.camera.Err())
	}
}

func TestSwitchCamera_StopsPreviousFeed(t *testing.T) {
	front := readyFeed("front", 4, 4)
	f := newFixture(front, readyFeed("back", 4, 4))
	f.c.Start(context.Background())
	f.c.SwitchCamera()
	if front.stopped != 1 {
		t.Fatalf("front stopped %d times", front.stopped)
	}
	if f.camera.Device() != "back" || f.camera.Facing() != camera.FacingEnvironment {
		t.Fatalf("device=%s facing=%s", f.camera.Device(), f.camera.Facing())
	}
}

func TestSaveThenRetakeState(t *testing.T) {
	f := newFixture(readyFeed("cam", 8, 8))
	f.c.Start(context.Background())
	f.c.Capture()
	if !f.photos.PreviewVisible() {
		t.Fatal("preview not visible after capture")
	}
	liveBefore := f.view.liveShown
	f.c.Save()
	if len(f.exp.saved) != 1 {
		t.Fatal("photo not exported")
	}
	if f.photos.PreviewVisible() || f.photos.Current() != nil {
		t.Fatal("preview should be hidden after save")
	}
	if f.view.liveShown != liveBefore+1 {
		t.Fatal("live feed should be shown after save")
	}
	if _, saved := f.photos.Counts(); saved != 1 {
		t.Fatalf("saved count = %d", saved)
	}

	// post-save state equals post-retake state
	f.c.Capture()
	f.c.Retake()
	if f.photos.PreviewVisible() || f.view.liveShown != liveBefore+2 {
		t.Fatal("retake should mirror post-save state")
	}
}

func TestSave_FailureKeepsPreview(t *testing.T) {
	f := newFixture(readyFeed("cam", 8, 8))
	f.c.Start(context.Background())
	f.c.Capture()
	f.exp.err = errors.New("disk full")
	f.c.Save()
	if !f.photos.PreviewVisible() {
		t.Fatal("preview must stay after a failed save")
	}
	if len(f.view.status) != 1 {
		t.Fatalf("status = %v", f.view.status)
	}
}

func TestSaveRetakeCopy_NoPhotoNoop(t *testing.T) {
	f := newFixture(readyFeed("cam", 8, 8))
	f.c.Start(context.Background())
	live := f.view.liveShown
	f.c.Save()
	f.c.Retake()
	f.c.Copy()
	if len(f.exp.saved) != 0 || f.clip.copied != 0 || f.view.liveShown != live || len(f.view.status) != 0 {
		t.Fatal("actions without a photo must be no-ops")
	}
}

func TestCopy(t *testing.T) {
	f := newFixture(readyFeed("cam", 8, 8))
	f.c.Start(context.Background())
	f.c.Capture()
	f.c.Copy()
	if f.clip.copied != 1 || !f.photos.PreviewVisible() {
		t.Fatal("copy should not change preview state")
	}
	f.clip.err = errors.New("no display")
	f.c.Copy()
	if len(f.view.status) != 2 {
		t.Fatalf("status = %v", f.view.status)
	}
}

func TestFullscreen_NoticeShownThenHidden(t *testing.T) {
	f := newFixture(readyFeed("cam", 8, 8))
	if !f.view.supported {
		t.Fatal("view should be told fullscreen is supported")
	}
	f.c.ToggleFullscreen()
	if !f.display.active || !f.camera.Fullscreen() || !f.view.fullscreen {
		t.Fatal("fullscreen not entered")
	}
	if !f.view.noticeShown || f.view.notice == "" {
		t.Fatal("notice not shown")
	}
	if len(f.sched.queue) != 1 || f.sched.queue[0].d != 3*time.Second {
		t.Fatalf("notice timer = %+v", f.sched.queue)
	}
	f.sched.runNext()
	if f.view.noticeShown {
		t.Fatal("notice should hide after the timeout")
	}
	f.c.ExitFullscreen()
	if f.display.active || f.camera.Fullscreen() || f.view.fullscreen {
		t.Fatal("fullscreen not exited")
	}
	f.c.ExitFullscreen()
	if f.display.exits != 1 {
		t.Fatalf("exit called %d times", f.display.exits)
	}
}

func TestFullscreen_ExitCancelsNotice(t *testing.T) {
	f := newFixture()
	f.c.ToggleFullscreen()
	f.c.ToggleFullscreen()
	if f.sched.canceled != 1 || f.sched.pending() != 0 || f.view.noticeShown {
		t.Fatalf("canceled=%d pending=%d shown=%v", f.sched.canceled, f.sched.pending(), f.view.noticeShown)
	}
}

func TestFullscreen_Unsupported(t *testing.T) {
	f := newFixture()
	f.display.supported = false
	c := NewCaptureController(Deps{Display: f.display, View: f.view, Scheduler: f.sched})
	c.ToggleFullscreen()
	c.AutoFullscreen(time.Second)
	if f.display.enters != 0 || f.view.supported || f.sched.pending() != 0 {
		t.Fatal("unsupported display must stay untouched")
	}
}

func TestAutoFullscreen(t *testing.T) {
	f := newFixture()
	f.c.AutoFullscreen(time.Second)
	f.sched.runNext()
	if f.display.enters != 1 || !f.camera.Fullscreen() {
		t.Fatal("auto fullscreen did not enter")
	}
}

func TestClose_StopsFeedAndTimers(t *testing.T) {
	feed := &mockFeed{name: "stalled"}
	f := newFixture(feed)
	f.c.Start(context.Background())
	f.c.Capture()
	f.c.Close()
	if feed.stopped != 1 || f.sched.pending() != 0 || f.c.Feed() != nil {
		t.Fatalf("stopped=%d pending=%d", feed.stopped, f.sched.pending())
	}
}

func TestLiveFrame_HiddenDuringPreview(t *testing.T) {
	feed := readyFeed("cam", 8, 8)
	feed.snap.Image.(*image.RGBA).Set(0, 0, color.White)
	f := newFixture(feed)
	f.c.Start(context.Background())
	if _, ok := f.c.LiveFrame(); !ok {
		t.Fatal("live frame should be available")
	}
	f.c.Capture()
	if _, ok := f.c.LiveFrame(); ok {
		t.Fatal("live frame must not be served while previewing a photo")
	}
}

// 1920x1080 user-facing feed with a loaded 512x512 overlay.
func TestCapture_FullHDScenario(t *testing.T) {
	feed := readyFeed("cam", 1920, 1080)
	f := newFixture(feed)
	f.c = NewCaptureController(Deps{
		Acquirer:   f.acq,
		Compositor: compose.NewCompositor(nil, nil),
		Overlay:    compose.NewOverlay(image.NewRGBA(image.Rect(0, 0, 512, 512)), "test"),
		Scheduler:  f.sched,
		View:       f.view,
		Camera:     f.camera,
		Photos:     f.photos,
	})
	f.c.Start(context.Background())
	f.c.Capture()
	p := f.photos.Current()
	if p == nil {
		t.Fatal("no photo")
	}
	if p.Width != 1920 || p.Height != 1080 || p.MIME != "image/jpeg" {
		t.Fatalf("photo %s %dx%d", p.MIME, p.Width, p.Height)
	}
}

func TestSummary(t *testing.T) {
	f := newFixture()
	f.acq.err = camera.ErrDeviceUnavailable
	f.c.Start(context.Background())
	if got := f.c.Summary(); got != "No camera | photos 0, saved 0" {
		t.Fatalf("summary = %q", got)
	}
	f.acq.err = nil
	f.acq.feeds = []*mockFeed{readyFeed("/dev/video0", 640, 480)}
	f.c.SwitchCamera()
	if got := f.c.Summary(); got != "/dev/video0 (environment) 640x480 | frames 0 | photos 0, saved 0" {
		t.Fatalf("summary = %q", got)
	}
}

func TestCapture_IgnoredWhilePreviewing(t *testing.T) {
	f := newFixture(readyFeed("cam", 8, 8))
	f.c.Start(context.Background())
	f.c.Capture()
	first := f.photos.Current()
	f.c.Capture() // space pressed again over the preview
	if len(f.comp.calls) != 1 || f.photos.Current() != first {
		t.Fatalf("compose calls = %d, previewed photo replaced", len(f.comp.calls))
	}
	if taken, _ := f.photos.Counts(); taken != 1 {
		t.Fatalf("taken = %d, want 1", taken)
	}
	f.c.Retake()
	f.c.Capture()
	if len(f.comp.calls) != 2 {
		t.Fatal("capture after retake should proceed")
	}
}

func TestSwitchCamera_IgnoredWhilePreviewing(t *testing.T) {
	front := readyFeed("front", 4, 4)
	f := newFixture(front)
	f.c.Start(context.Background())
	f.c.Capture()
	f.acq.err = camera.ErrDeviceUnavailable
	f.c.SwitchCamera()
	if front.stopped != 0 || len(f.acq.facing) != 1 || len(f.view.errors) != 0 {
		t.Fatalf("switch during preview: stopped=%d acquires=%d errors=%v", front.stopped, len(f.acq.facing), f.view.errors)
	}
	if f.camera.Facing() != camera.FacingUser || !f.photos.PreviewVisible() {
		t.Fatal("facing or preview changed by an ignored switch")
	}
}

func TestCheckFeed_LostFeedShowsError(t *testing.T) {
	feed := readyFeed("/dev/video0", 8, 8)
	f := newFixture(feed)
	f.c.Start(context.Background())
	f.c.CheckFeed()
	if len(f.view.errors) != 0 || f.c.Feed() == nil {
		t.Fatal("healthy feed must not raise an error")
	}

	feed.lost = fmt.Errorf("%w: /dev/video0: 30 consecutive grab errors", camera.ErrFeedLost)
	f.c.CheckFeed()
	if len(f.view.errors) != 1 || !errors.Is(f.camera.Err(), camera.ErrFeedLost) {
		t.Fatalf("errors=%v camera err=%v", f.view.errors, f.camera.Err())
	}
	if feed.stopped != 1 || f.c.Feed() != nil {
		t.Fatalf("lost feed not released: stopped=%d", feed.stopped)
	}
	f.c.CheckFeed()
	if len(f.view.errors) != 1 {
		t.Fatal("error shown twice for one lost feed")
	}
	if got := f.c.Summary(); got != "No camera | photos 0, saved 0" {
		t.Fatalf("summary = %q", got)
	}
}
