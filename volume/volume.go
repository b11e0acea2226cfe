// Package volume maps mux channels onto Windows audio endpoint volumes.
package volume

import "errors"

var (
	ErrUnsupported = errors.New("volume: endpoint volume is only supported on windows")
	ErrClosed      = errors.New("volume: sink closed")
)

// Percent scales a raw sample to 0..100 against fullScale.
func Percent(raw, fullScale uint16) uint8 {
	if fullScale == 0 {
		return 0
	}
	if raw >= fullScale {
		return 100
	}
	return uint8(uint32(raw) * 100 / uint32(fullScale))
}

// clamp limits level to 0..1.
func clamp(level float32) float32 {
	if level < 0 {
		return 0
	}
	if level > 1 {
		return 1
	}
	return level
}

type request struct {
	deviceID string
	level    float32
}

// Tracker remembers the last percent sent per device so a sink is only
// driven when the level actually changes.
type Tracker struct {
	last map[string]uint8
}

func NewTracker() *Tracker {
	return &Tracker{last: make(map[string]uint8)}
}

// Changed records percent for deviceID and reports whether it differs from
// the previous value.
func (t *Tracker) Changed(deviceID string, percent uint8) bool {
	prev, ok := t.last[deviceID]
	t.last[deviceID] = percent
	return !ok || prev != percent
}
