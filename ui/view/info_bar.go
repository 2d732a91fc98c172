package view

import (
	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"

	"github.com/soocke/camsnap/ui/theme"
)

// InfoBar shows the transient status message and the feed/photo summary.
type InfoBar interface {
	SetStatus(text string)
	SetInfo(text string)
}

type infoBar struct {
	statusLbl *TLabelWidget
	infoLbl   *TLabelWidget
}

// NewInfoBar creates the status and info labels in a grid layout.
// The status label is placed at (row, startCol) and the info label at (row, startCol+1).
// If parent is nil, labels are positioned relative to the App root.
func NewInfoBar(parent *FrameWidget, row, startCol int) InfoBar {
	b := &infoBar{
		statusLbl: TLabel(Style(theme.StyleStatusLabel), Anchor("w")),
		infoLbl:   TLabel(Style(theme.StyleStatusLabel), Anchor("e")),
	}
	if parent != nil {
		Grid(b.statusLbl, In(parent), Row(row), Column(startCol), Sticky("we"), Padx("0.2m"))
		Grid(b.infoLbl, In(parent), Row(row), Column(startCol+1), Sticky("e"), Padx("0.2m"))
	} else {
		Grid(b.statusLbl, Row(row), Column(startCol), Sticky("we"), Padx("0.2m"))
		Grid(b.infoLbl, Row(row), Column(startCol+1), Sticky("e"), Padx("0.2m"))
	}
	b.statusLbl.Configure(Txt("Ready"))
	b.infoLbl.Configure(Txt("No camera"))
	return b
}

func (b *infoBar) SetStatus(text string) {
	if b == nil || b.statusLbl == nil {
		return
	}
	b.statusLbl.Configure(Txt(text))
}

func (b *infoBar) SetInfo(text string) {
	if b == nil || b.infoLbl == nil {
		return
	}
	b.infoLbl.Configure(Txt(text))
}
