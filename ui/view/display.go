package view

import (
	"fmt"

	"github.com/soocke/camsnap/ui/presenter"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// NewDisplayControl selects the fullscreen implementation once at startup: the Tk window
// manager when enabled, otherwise a control that reports unsupported.
func NewDisplayControl(enabled bool) presenter.DisplayControl {
	if !enabled {
		return noDisplay{}
	}
	return &tkDisplay{}
}

// tkDisplay toggles `wm attributes -fullscreen` on the main window. Tk does not report
// changes made by the window manager, so the flag tracks requests made here.
type tkDisplay struct {
	active    bool
	listeners []func(bool)
}

func (d *tkDisplay) Supported() bool { return true }
func (d *tkDisplay) Active() bool    { return d.active }

func (d *tkDisplay) OnChange(fn func(bool)) {
	if fn != nil {
		d.listeners = append(d.listeners, fn)
	}
}

func (d *tkDisplay) Enter() error { return d.set(true) }
func (d *tkDisplay) Exit() error  { return d.set(false) }

func (d *tkDisplay) set(active bool) (err error) {
	if d.active == active {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fullscreen request failed: %v", r)
		}
	}()
	WmAttributes(App, "-fullscreen", active)
	d.active = active
	for _, fn := range d.listeners {
		fn(active)
	}
	return nil
}

// noDisplay is used when fullscreen is disabled or unavailable.
type noDisplay struct{}

func (noDisplay) Supported() bool     { return false }
func (noDisplay) Active() bool        { return false }
func (noDisplay) OnChange(func(bool)) {}
func (noDisplay) Enter() error        { return nil }
func (noDisplay) Exit() error         { return nil }
