package compose

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

var identity = f64.Aff3{1, 0, 0, 0, 1, 0}

// Surface is a resizable RGBA drawing surface with a canvas-style transform stack.
// Transforms apply to subsequent draws only; Save and Restore bracket them.
type Surface struct {
	img   *image.RGBA
	m     f64.Aff3
	stack []f64.Aff3
}

// NewSurface returns an empty surface. Call Resize before drawing.
func NewSurface() *Surface {
	return &Surface{img: image.NewRGBA(image.Rectangle{}), m: identity}
}

// Resize reallocates the backing image to exactly w x h and resets the transform state.
// A fresh image is allocated each time so earlier results handed out by Image stay intact.
func (s *Surface) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
	s.m = identity
	s.stack = s.stack[:0]
}

// Width returns the current surface width.
func (s *Surface) Width() int { return s.img.Bounds().Dx() }

// Height returns the current surface height.
func (s *Surface) Height() int { return s.img.Bounds().Dy() }

// Clear sets every pixel to transparent black.
func (s *Surface) Clear() {
	clear(s.img.Pix)
}

// Save pushes the current transform.
func (s *Surface) Save() { s.stack = append(s.stack, s.m) }

// Restore pops the transform pushed by the matching Save. Unbalanced calls are ignored.
func (s *Surface) Restore() {
	if n := len(s.stack); n > 0 {
		s.m = s.stack[n-1]
		s.stack = s.stack[:n-1]
	}
}

// Translate moves the origin by (tx, ty) in the current coordinate space.
func (s *Surface) Translate(tx, ty float64) {
	s.m[2] += s.m[0]*tx + s.m[1]*ty
	s.m[5] += s.m[3]*tx + s.m[4]*ty
}

// Scale scales the current coordinate space. Scale(-1, 1) mirrors horizontally.
func (s *Surface) Scale(sx, sy float64) {
	s.m[0] *= sx
	s.m[3] *= sx
	s.m[1] *= sy
	s.m[4] *= sy
}

// DrawImage composites src at the origin at 1:1 scale through the current transform.
func (s *Surface) DrawImage(src image.Image) {
	if src == nil {
		return
	}
	sr := src.Bounds()
	if tx, ty, ok := integerTranslation(s.m); ok {
		dr := image.Rect(tx, ty, tx+sr.Dx(), ty+sr.Dy())
		draw.Draw(s.img, dr, src, sr.Min, draw.Over)
		return
	}
	// Transform maps src coordinates relative to sr.Min; pixel centres land exactly on
	// mirrored pixel centres for the ±1 scales used here.
	m := s.m
	m[2] -= m[0]*float64(sr.Min.X) + m[1]*float64(sr.Min.Y)
	m[5] -= m[3]*float64(sr.Min.X) + m[4]*float64(sr.Min.Y)
	xdraw.NearestNeighbor.Transform(s.img, m, src, sr, xdraw.Over, nil)
}

// DrawImageScaled composites src stretched to a w x h box at the origin through the
// current transform, using bilinear filtering.
func (s *Surface) DrawImageScaled(src image.Image, w, h int) {
	if src == nil || w <= 0 || h <= 0 {
		return
	}
	sr := src.Bounds()
	if sr.Empty() {
		return
	}
	if tx, ty, ok := integerTranslation(s.m); ok {
		xdraw.BiLinear.Scale(s.img, image.Rect(tx, ty, tx+w, ty+h), src, sr, xdraw.Over, nil)
		return
	}
	sx := float64(w) / float64(sr.Dx())
	sy := float64(h) / float64(sr.Dy())
	m := s.m
	m[0] *= sx
	m[3] *= sx
	m[1] *= sy
	m[4] *= sy
	m[2] -= m[0]*float64(sr.Min.X) + m[1]*float64(sr.Min.Y)
	m[5] -= m[3]*float64(sr.Min.X) + m[4]*float64(sr.Min.Y)
	xdraw.BiLinear.Transform(s.img, m, src, sr, xdraw.Over, nil)
}

// Image returns the backing image. It stays valid after the next Resize.
func (s *Surface) Image() *image.RGBA { return s.img }

func integerTranslation(m f64.Aff3) (int, int, bool) {
	if m[0] != 1 || m[1] != 0 || m[3] != 0 || m[4] != 1 {
		return 0, 0, false
	}
	tx, ty := int(m[2]), int(m[5])
	if float64(tx) != m[2] || float64(ty) != m[5] {
		return 0, 0, false
	}
	return tx, ty, true
}
