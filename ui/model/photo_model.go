package model

import (
	"github.com/soocke/camsnap/domain/photo"
)

// PhotoModel holds the current captured photo and whether its preview is shown.
// The zero value shows the live feed. No synchronization: only the UI thread touches it.
type PhotoModel struct {
	current *photo.Photo
	taken   int
	saved   int
}

func NewPhotoModel() *PhotoModel { return &PhotoModel{} }

// Set stores a freshly captured photo; the preview becomes visible.
func (m *PhotoModel) Set(p *photo.Photo) {
	if m == nil || p.Empty() {
		return
	}
	m.current = p
	m.taken++
}

// Current returns the photo under preview, nil when the live feed is shown.
func (m *PhotoModel) Current() *photo.Photo {
	if m == nil {
		return nil
	}
	return m.current
}

// PreviewVisible reports whether a photo is being previewed.
func (m *PhotoModel) PreviewVisible() bool { return m.Current() != nil }

// Clear discards the current photo, returning to live view.
func (m *PhotoModel) Clear() {
	if m == nil {
		return
	}
	m.current = nil
}

// MarkSaved counts a successful save.
func (m *PhotoModel) MarkSaved() {
	if m == nil {
		return
	}
	m.saved++
}

// Counts returns how many photos were taken and saved in this session.
func (m *PhotoModel) Counts() (taken, saved int) {
	if m == nil {
		return 0, 0
	}
	return m.taken, m.saved
}
