package camera

import (
	"fmt"

	"github.com/soocke/camsnap/config"
)

// SizeRange is a frame size advertised by a device. Discrete sizes have Min == Max and a
// zero step; stepwise sizes cover [Min, Max] in Step increments.
type SizeRange struct {
	MinW, MaxW, StepW int
	MinH, MaxH, StepH int
}

// PickSize chooses the advertised size closest to the ideal hints that stays inside the
// min/max bounds. ok is false when no candidate satisfies the bounds.
func PickSize(cands []SizeRange, c config.Constraints) (w, h int, ok bool) {
	best := -1
	for _, cand := range cands {
		cw := dimFor(cand.MinW, cand.MaxW, cand.StepW, c.Width.Ideal)
		ch := dimFor(cand.MinH, cand.MaxH, cand.StepH, c.Height.Ideal)
		if !within(cw, c.Width) || !within(ch, c.Height) {
			continue
		}
		score := distance(cw, c.Width) + distance(ch, c.Height)
		if best < 0 || score < best || (score == best && cw*ch > w*h) {
			best, w, h = score, cw, ch
		}
	}
	return w, h, best >= 0
}

// Satisfies reports whether a negotiated size honours the hard bounds of c.
func Satisfies(w, h int, c config.Constraints) bool {
	return w > 0 && h > 0 && within(w, c.Width) && within(h, c.Height)
}

// describe formats a constraint rung for logs.
func describe(c config.Constraints) string {
	return fmt.Sprintf("%dx%d (min %dx%d) @%dfps", c.Width.Ideal, c.Height.Ideal, c.Width.Min, c.Height.Min, c.FrameRate.Ideal)
}

func dimFor(minV, maxV, step, ideal int) int {
	if step == 0 || minV == maxV || ideal <= 0 {
		return maxV
	}
	v := ideal
	if v < minV {
		v = minV
	}
	if v > maxV {
		v = maxV
	}
	return minV + ((v-minV)/step)*step
}

func within(v int, r config.Range) bool {
	if r.Min > 0 && v < r.Min {
		return false
	}
	if r.Max > 0 && v > r.Max {
		return false
	}
	return true
}

func distance(v int, r config.Range) int {
	target := r.Ideal
	if target <= 0 {
		target = r.Max
	}
	if target <= 0 {
		return 0
	}
	if v > target {
		return v - target
	}
	return target - v
}
