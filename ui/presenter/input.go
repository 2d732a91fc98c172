package presenter

import (
	"log/slog"
)

// InputEvent is one of the user actions the window can raise.
type InputEvent int

const (
	InputCapture InputEvent = iota + 1
	InputSwitchCamera
	InputToggleFullscreen
	InputExitFullscreen
	InputSave
	InputRetake
	InputCopy
)

var inputNames = map[InputEvent]string{
	InputCapture:          "capture",
	InputSwitchCamera:     "switch_camera",
	InputToggleFullscreen: "toggle_fullscreen",
	InputExitFullscreen:   "exit_fullscreen",
	InputSave:             "save",
	InputRetake:           "retake",
	InputCopy:             "copy",
}

func (e InputEvent) String() string {
	if n, ok := inputNames[e]; ok {
		return n
	}
	return "unknown"
}

// KeyBinding maps a Tk key sequence to an input event.
type KeyBinding struct {
	Sequence string
	Event    InputEvent
}

// Keys are the keyboard shortcuts bound on the main window.
var Keys = []KeyBinding{
	{"<space>", InputCapture},
	{"<Key-c>", InputSwitchCamera},
	{"<Key-f>", InputToggleFullscreen},
	{"<Escape>", InputExitFullscreen},
	{"<Key-s>", InputSave},
	{"<Key-r>", InputRetake},
	{"<Key-y>", InputCopy},
}

// Input dispatches input events to registered handlers, one handler per event.
type Input struct {
	handlers map[InputEvent]func()
	logger   *slog.Logger
}

func NewInput(logger *slog.Logger) *Input {
	return &Input{handlers: make(map[InputEvent]func()), logger: logger}
}

// Register binds fn to ev, replacing any previous handler.
func (in *Input) Register(ev InputEvent, fn func()) {
	if in == nil || fn == nil {
		return
	}
	in.handlers[ev] = fn
}

// Dispatch runs the handler for ev. Panics are logged and swallowed so a faulty
// handler cannot take down the Tk event loop.
func (in *Input) Dispatch(ev InputEvent) {
	if in == nil {
		return
	}
	fn, ok := in.handlers[ev]
	if !ok {
		if in.logger != nil {
			in.logger.Warn("unhandled input", "event", ev.String())
		}
		return
	}
	defer func() {
		if r := recover(); r != nil && in.logger != nil {
			in.logger.Error("input handler panic", "event", ev.String(), "error", r)
		}
	}()
	if in.logger != nil {
		in.logger.Debug("input", "event", ev.String())
	}
	fn()
}

// Handler returns a closure dispatching ev, for use as a widget command.
func (in *Input) Handler(ev InputEvent) func() {
	return func() { in.Dispatch(ev) }
}

// Bind registers every controller action against its input event.
func (in *Input) Bind(c *CaptureController) {
	in.Register(InputCapture, c.Capture)
	in.Register(InputSwitchCamera, c.SwitchCamera)
	in.Register(InputToggleFullscreen, c.ToggleFullscreen)
	in.Register(InputExitFullscreen, c.ExitFullscreen)
	in.Register(InputSave, c.Save)
	in.Register(InputRetake, c.Retake)
	in.Register(InputCopy, c.Copy)
}
