package view

import (
	"image"

	"github.com/soocke/camsnap/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Preview is the single image area showing either the live feed or a captured photo.
type Preview interface {
	Update(img image.Image, mirrored bool)
	Reset()
	SetTargetSize(w, h int)
}

type preview struct {
	label     *LabelWidget
	targetW   int
	targetH   int
	prevPhoto *Img // last Tk photo image instance
}

// Internal state tracks the current photo so the old image is disposed before it is
// replaced, preventing accumulation of off-screen image data.

// NewPreview creates the preview label, grids it spanning all columns of row and returns
// the view.
func NewPreview(row, columns, w, h int) Preview {
	v := &preview{}
	v.SetTargetSize(w, h)
	pngBytes := images.EncodePNG(placeholder(v.targetW, v.targetH))
	v.prevPhoto = NewPhoto(Data(pngBytes))
	v.label = Label(Image(v.prevPhoto), Borderwidth(1), Relief("sunken"), Anchor("center"))
	Grid(v.label, Row(row), Column(0), Columnspan(columns), Sticky("nsew"), Padx("0.4m"), Pady("0.4m"))
	return v
}

const (
	minPreviewW = 160
	minPreviewH = 120
)

func (v *preview) Update(img image.Image, mirrored bool) {
	if v == nil || v.label == nil || img == nil {
		return
	}
	// Scale for display only; allocate a fresh scaled image each call.
	v.show(images.PreviewPNG(img, v.targetW, v.targetH, mirrored))
}

func (v *preview) Reset() {
	if v == nil || v.label == nil {
		return
	}
	v.show(images.EncodePNG(placeholder(v.targetW, v.targetH)))
}

func (v *preview) show(pngBytes []byte) {
	if len(pngBytes) == 0 {
		return
	}
	// Replace previous photo to avoid retaining obsolete pixel buffers.
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
	}
	v.prevPhoto = NewPhoto(Data(pngBytes))
	v.label.Configure(Image(v.prevPhoto))
}

// SetTargetSize updates the scaling box used by Update.
func (v *preview) SetTargetSize(w, h int) {
	if v == nil {
		return
	}
	if w < minPreviewW {
		w = minPreviewW
	}
	if h < minPreviewH {
		h = minPreviewH
	}
	v.targetW, v.targetH = w, h
}

func placeholder(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}
