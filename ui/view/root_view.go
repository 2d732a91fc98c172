package view

import (
	"image"
	"log/slog"

	"github.com/soocke/camsnap/config"
	"github.com/soocke/camsnap/domain/photo"
	"github.com/soocke/camsnap/ui/presenter"
	"github.com/soocke/camsnap/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const controlsHeight = 140 // pixels reserved below the preview for buttons and labels

// RootView composes the top-level camera layout and implements presenter.View.
type RootView struct {
	cfg    *config.Config
	logger *slog.Logger

	// Subviews
	Preview Preview
	Info    InfoBar

	// Widgets
	errorLabel    *TLabelWidget
	noticeLabel   *TLabelWidget
	captureBtn    *TButtonWidget
	switchBtn     *TButtonWidget
	fullscreenBtn *TButtonWidget
	saveBtn       *TButtonWidget
	retakeBtn     *TButtonWidget
	copyBtn       *TButtonWidget

	fullscreenSupported bool
	errorShown          bool
	previewing          bool
}

var _ presenter.View = (*RootView)(nil)

func NewRootView(cfg *config.Config, logger *slog.Logger) *RootView {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &RootView{cfg: cfg, logger: logger}
}

// Build constructs the layout. Every button and key binding raises an input event on in;
// onExit runs from the Exit button.
func (rv *RootView) Build(in *presenter.Input, onExit func()) {
	if rv == nil || in == nil {
		return
	}
	const columns = 6

	// Row 0: error panel and fullscreen notice share the top line.
	rv.errorLabel = TLabel(Style(theme.StyleErrorLabel), Anchor("center"))
	Grid(rv.errorLabel, Row(0), Column(0), Columnspan(columns), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	rv.noticeLabel = TLabel(Style(theme.StyleNoticeLabel), Anchor("center"))
	Grid(rv.noticeLabel, Row(1), Column(0), Columnspan(columns), Sticky("we"), Padx("0.4m"))

	// Row 2: preview sized to the configured window.
	rv.Preview = NewPreview(2, columns, rv.cfg.Display.Width, rv.cfg.Display.Height-controlsHeight)
	GridRowConfigure(App, 2, Weight(1))
	for c := 0; c < columns; c++ {
		GridColumnConfigure(App, c, Weight(1))
	}

	// Row 3: live controls then photo controls.
	btnFrame := Frame()
	Grid(btnFrame, Row(3), Column(0), Columnspan(columns), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	button := func(col int, text, style string, ev presenter.InputEvent) *TButtonWidget {
		opts := []Opt{Txt(text), Command(in.Handler(ev))}
		if style != "" {
			opts = append(opts, Style(style))
		}
		b := TButton(opts...)
		Grid(b, In(btnFrame), Row(0), Column(col), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
		return b
	}
	rv.captureBtn = button(0, "Capture", theme.StyleShutterButton, presenter.InputCapture)
	rv.switchBtn = button(1, "Switch Camera", "", presenter.InputSwitchCamera)
	rv.fullscreenBtn = button(2, "Fullscreen", "", presenter.InputToggleFullscreen)
	rv.saveBtn = button(3, "Save", theme.StyleSaveButton, presenter.InputSave)
	rv.retakeBtn = button(4, "Retake", "", presenter.InputRetake)
	rv.copyBtn = button(5, "Copy", "", presenter.InputCopy)
	exitBtn := TButton(Txt("Exit"), Command(onExit))
	Grid(exitBtn, In(btnFrame), Row(0), Column(6), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	// Row 4: status and feed info.
	rv.Info = NewInfoBar(nil, 4, 0)

	for _, k := range presenter.Keys {
		Bind(App, k.Sequence, Command(in.Handler(k.Event)))
	}

	rv.setPhotoMode(false)
	rv.applyFullscreenSupport()
}

// ShowLive switches to the live feed.
func (rv *RootView) ShowLive() {
	if rv == nil {
		return
	}
	rv.setPhotoMode(false)
	if rv.Preview != nil {
		rv.Preview.Reset()
	}
}

// UpdateLive renders one live frame.
func (rv *RootView) UpdateLive(img image.Image, mirrored bool) {
	if rv == nil || rv.Preview == nil || rv.errorShown {
		return
	}
	rv.Preview.Update(img, mirrored)
}

// ShowPhoto previews a captured photo. Captures are already mirrored as needed.
func (rv *RootView) ShowPhoto(p *photo.Photo) {
	if rv == nil || rv.Preview == nil {
		return
	}
	img, err := p.Decode()
	if err != nil {
		if rv.logger != nil {
			rv.logger.Error("photo preview", "error", err)
		}
		return
	}
	rv.Preview.Update(img, false)
	rv.setPhotoMode(true)
	rv.ShowStatus("Photo " + p.Size() + ", press s to save or r to retake")
}

// ShowError shows the persistent error panel and hides the live feed. A previewed photo
// stays visible so it can still be saved.
func (rv *RootView) ShowError(msg string) {
	if rv == nil {
		return
	}
	rv.errorShown = true
	if rv.errorLabel != nil {
		rv.errorLabel.Configure(Txt(msg))
	}
	if rv.Preview != nil && !rv.previewing {
		rv.Preview.Reset()
	}
	if rv.captureBtn != nil {
		rv.captureBtn.Configure(State("disabled"))
	}
}

// ClearError hides the error panel.
func (rv *RootView) ClearError() {
	if rv == nil {
		return
	}
	rv.errorShown = false
	if rv.errorLabel != nil {
		rv.errorLabel.Configure(Txt(""))
	}
	if rv.captureBtn != nil {
		rv.captureBtn.Configure(State("normal"))
	}
}

// ShowStatus sets the status line.
func (rv *RootView) ShowStatus(msg string) {
	if rv != nil && rv.Info != nil {
		rv.Info.SetStatus(msg)
	}
}

// SetInfo updates the feed summary line.
func (rv *RootView) SetInfo(text string) {
	if rv != nil && rv.Info != nil {
		rv.Info.SetInfo(text)
	}
}

// SetFullscreenSupported hides the fullscreen control when no display control exists.
func (rv *RootView) SetFullscreenSupported(b bool) {
	if rv == nil {
		return
	}
	rv.fullscreenSupported = b
	rv.applyFullscreenSupport()
}

// SetFullscreen updates the toggle label.
func (rv *RootView) SetFullscreen(active bool) {
	if rv == nil || rv.fullscreenBtn == nil {
		return
	}
	if active {
		rv.fullscreenBtn.Configure(Txt("Exit Fullscreen"))
		return
	}
	rv.fullscreenBtn.Configure(Txt("Fullscreen"))
}

func (rv *RootView) ShowNotice(msg string) {
	if rv != nil && rv.noticeLabel != nil {
		rv.noticeLabel.Configure(Txt(msg))
	}
}

func (rv *RootView) HideNotice() {
	if rv != nil && rv.noticeLabel != nil {
		rv.noticeLabel.Configure(Txt(""))
	}
}

func (rv *RootView) applyFullscreenSupport() {
	if rv.fullscreenBtn == nil {
		return
	}
	if rv.fullscreenSupported {
		rv.fullscreenBtn.Configure(State("normal"))
		return
	}
	rv.fullscreenBtn.Configure(State("disabled"))
}

// setPhotoMode enables the controls that make sense for the live feed or the preview.
func (rv *RootView) setPhotoMode(previewing bool) {
	rv.previewing = previewing
	live, preview := "normal", "disabled"
	if previewing {
		live, preview = "disabled", "normal"
	}
	for _, b := range []*TButtonWidget{rv.captureBtn, rv.switchBtn} {
		if b != nil {
			b.Configure(State(live))
		}
	}
	for _, b := range []*TButtonWidget{rv.saveBtn, rv.retakeBtn, rv.copyBtn} {
		if b != nil {
			b.Configure(State(preview))
		}
	}
	if rv.errorShown && rv.captureBtn != nil {
		rv.captureBtn.Configure(State("disabled"))
	}
}
