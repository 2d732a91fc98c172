package model

import (
	"sync"

	"github.com/soocke/camsnap/domain/camera"
)

// CameraModel holds the facing mode, fullscreen flag and the last acquisition error.
// Writes happen on the UI thread; the mutex keeps reads from debug goroutines consistent.
type CameraModel struct {
	mu         sync.RWMutex
	facing     camera.FacingMode
	fullscreen bool
	device     string
	err        error
}

// NewCameraModel returns a model starting in the given facing mode.
func NewCameraModel(facing camera.FacingMode) *CameraModel {
	if facing == "" {
		facing = camera.FacingUser
	}
	return &CameraModel{facing: facing}
}

// Facing returns the committed facing mode.
func (m *CameraModel) Facing() camera.FacingMode {
	if m == nil {
		return camera.FacingUser
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.facing == "" {
		return camera.FacingUser
	}
	return m.facing
}

// ToggleFacing flips the facing mode and returns the new value.
func (m *CameraModel) ToggleFacing() camera.FacingMode {
	if m == nil {
		return camera.FacingUser
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.facing == "" {
		m.facing = camera.FacingUser
	}
	m.facing = m.facing.Toggle()
	return m.facing
}

// Mirrored reports whether captures should be mirrored right now.
func (m *CameraModel) Mirrored() bool { return m.Facing().Mirrored() }

// Fullscreen reports the last known fullscreen state.
func (m *CameraModel) Fullscreen() bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fullscreen
}

// SetFullscreen stores the fullscreen state and reports whether it changed.
func (m *CameraModel) SetFullscreen(b bool) bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fullscreen == b {
		return false
	}
	m.fullscreen = b
	return true
}

// SetAcquired records a successful acquisition and clears any previous error.
func (m *CameraModel) SetAcquired(device string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.device = device
	m.err = nil
}

// SetError records an acquisition failure.
func (m *CameraModel) SetError(err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.device = ""
	m.err = err
}

// Device returns the device name of the current feed, empty when none.
func (m *CameraModel) Device() string {
	if m == nil {
		return ""
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.device
}

// Err returns the last acquisition error, nil after a successful acquisition.
func (m *CameraModel) Err() error {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}
