package presenter

import (
	"github.com/soocke/camsnap/domain/camera"
)

// LiveSource supplies frames for the live preview. LiveGeneration changes whenever the
// live view was reset and needs the current frame again.
type LiveSource interface {
	LiveFrame() (camera.FrameSnapshot, bool)
	LiveGeneration() uint64
	Mirrored() bool
}

// FeedWatcher is told once per tick to check the feed's health.
type FeedWatcher interface {
	CheckFeed()
}

// Summarizer produces the one-line feed and photo summary.
type Summarizer interface {
	Summary() string
}

// InfoView receives the periodic summary.
type InfoView interface {
	SetInfo(text string)
}

const defaultInfoEvery = 30

// Loop drives the periodic live preview refresh.
//
// It pushes a frame to the view only when the feed sequence or the live generation
// advanced and then invokes the scheduler callback. The zero value is usable (methods
// are nil-safe).
type Loop struct {
	Source    LiveSource
	View      LiveView
	Watch     FeedWatcher
	Summary   Summarizer
	Info      InfoView
	InfoEvery int // ticks between summary refreshes
	Schedule  func()

	lastSeq uint64
	lastGen uint64
	pushed  uint64
	ticks   int
}

func NewLoop(source LiveSource, view LiveView, schedule func()) *Loop {
	return &Loop{Source: source, View: view, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	if l.Watch != nil {
		l.Watch.CheckFeed()
	}
	if l.Source != nil && l.View != nil {
		if gen := l.Source.LiveGeneration(); gen != l.lastGen {
			l.lastGen = gen
			l.Reset()
		}
		if snap, ok := l.Source.LiveFrame(); ok && snap.Sequence != l.lastSeq {
			l.lastSeq = snap.Sequence
			l.pushed++
			l.View.UpdateLive(snap.Image, l.Source.Mirrored())
		}
	}
	if l.Summary != nil && l.Info != nil {
		every := l.InfoEvery
		if every <= 0 {
			every = defaultInfoEvery
		}
		if l.ticks%every == 0 {
			l.Info.SetInfo(l.Summary.Summary())
		}
		l.ticks++
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}

// Reset forgets the last pushed frame so the next ready frame is pushed again.
func (l *Loop) Reset() {
	if l != nil {
		l.lastSeq = 0
	}
}

// Pushed returns how many frames reached the view.
func (l *Loop) Pushed() uint64 {
	if l == nil {
		return 0
	}
	return l.pushed
}
