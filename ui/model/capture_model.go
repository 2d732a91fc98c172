package model

import (
	"sync/atomic"
)

// CaptureState is the capture guard state.
type CaptureState int32

const (
	CaptureIdle CaptureState = iota
	CaptureCapturing
)

func (s CaptureState) String() string {
	if s == CaptureCapturing {
		return "capturing"
	}
	return "idle"
}

// CaptureModel guards against overlapping captures. The zero value is idle and usable.
// Concurrency-safe via atomic Bool because duplicate input events may arrive back to back.
type CaptureModel struct {
	capturing atomic.Bool
	retries   atomic.Int32
	pending   atomic.Bool
}

// TryBegin moves idle -> capturing. It returns false when a capture is already running.
func (m *CaptureModel) TryBegin() bool {
	if m == nil {
		return false
	}
	return m.capturing.CompareAndSwap(false, true)
}

// End returns the guard to idle. Safe to call when already idle.
func (m *CaptureModel) End() {
	if m == nil {
		return
	}
	m.capturing.Store(false)
}

// State reports the current guard state.
func (m *CaptureModel) State() CaptureState {
	if m == nil || !m.capturing.Load() {
		return CaptureIdle
	}
	return CaptureCapturing
}

// NextRetry counts one not-ready attempt and returns the new total.
func (m *CaptureModel) NextRetry() int {
	if m == nil {
		return 0
	}
	return int(m.retries.Add(1))
}

// Retries returns the consecutive not-ready attempts so far.
func (m *CaptureModel) Retries() int {
	if m == nil {
		return 0
	}
	return int(m.retries.Load())
}

// ResetRetries clears the not-ready counter.
func (m *CaptureModel) ResetRetries() {
	if m == nil {
		return
	}
	m.retries.Store(0)
}

// SetRetryPending records whether a deferred retry is scheduled. It returns false if the
// flag already had the requested value.
func (m *CaptureModel) SetRetryPending(b bool) bool {
	if m == nil {
		return false
	}
	return m.pending.CompareAndSwap(!b, b)
}

// RetryPending reports whether a deferred retry is scheduled.
func (m *CaptureModel) RetryPending() bool {
	if m == nil {
		return false
	}
	return m.pending.Load()
}
