// Package simhal is an in-memory multiplexer.HAL for tests and dry runs
// without hardware.
package simhal

import (
	"errors"
	"fmt"
	"sync"

	"analog-mux/multiplexer"
)

var ErrNotOutput = errors.New("simhal: pin not configured as output")

type Op uint8

const (
	OpConfigure Op = iota + 1
	OpSet
	OpGet
	OpAnalog
)

func (o Op) String() string {
	switch o {
	case OpConfigure:
		return "configure"
	case OpSet:
		return "set"
	case OpGet:
		return "get"
	case OpAnalog:
		return "analog"
	default:
		return "unknown"
	}
}

// Call records one HAL primitive invocation.
type Call struct {
	Op    Op
	Pin   multiplexer.Pin
	Level bool
}

// Source produces the analog value seen on an analog pin. It may inspect the
// simulated pin levels through the HAL, e.g. to emulate a mux.
type Source func(h *HAL, pin multiplexer.Pin) multiplexer.Value

// HAL simulates digital pins and analog inputs.
type HAL struct {
	lock    sync.Mutex
	outputs map[multiplexer.Pin]bool
	levels  map[multiplexer.Pin]bool
	analog  map[multiplexer.Pin]multiplexer.Value
	source  Source
	calls   []Call
	failOn  map[Op]error
}

func New() *HAL {
	return &HAL{
		outputs: make(map[multiplexer.Pin]bool),
		levels:  make(map[multiplexer.Pin]bool),
		analog:  make(map[multiplexer.Pin]multiplexer.Value),
		failOn:  make(map[Op]error),
	}
}

func (h *HAL) ConfigureOutput(pin multiplexer.Pin) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if err := h.record(Call{Op: OpConfigure, Pin: pin}); err != nil {
		return err
	}
	h.outputs[pin] = true
	return nil
}

func (h *HAL) SetPin(pin multiplexer.Pin, level bool) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if err := h.record(Call{Op: OpSet, Pin: pin, Level: level}); err != nil {
		return err
	}
	if !h.outputs[pin] {
		return fmt.Errorf("%w: %d", ErrNotOutput, pin)
	}
	h.levels[pin] = level
	return nil
}

func (h *HAL) GetPin(pin multiplexer.Pin) (bool, error) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if err := h.record(Call{Op: OpGet, Pin: pin}); err != nil {
		return false, err
	}
	return h.levels[pin], nil
}

func (h *HAL) ReadAnalog(pin multiplexer.Pin) (multiplexer.Value, error) {
	h.lock.Lock()
	if err := h.record(Call{Op: OpAnalog, Pin: pin}); err != nil {
		h.lock.Unlock()
		return 0, err
	}
	source := h.source
	v := h.analog[pin]
	h.lock.Unlock()

	if source != nil {
		return source(h, pin), nil
	}
	return v, nil
}

// record must be called with the lock held.
func (h *HAL) record(c Call) error {
	h.calls = append(h.calls, c)
	return h.failOn[c.Op]
}

// SimulateValue sets the value returned for an analog pin when no Source is set.
func (h *HAL) SimulateValue(pin multiplexer.Pin, v multiplexer.Value) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.analog[pin] = v
}

func (h *HAL) SetSource(s Source) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.source = s
}

// FailOn makes every subsequent call of op return err. A nil err clears it.
func (h *HAL) FailOn(op Op, err error) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if err == nil {
		delete(h.failOn, op)
		return
	}
	h.failOn[op] = err
}

// Level returns the simulated level of pin without recording a call.
func (h *HAL) Level(pin multiplexer.Pin) bool {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.levels[pin]
}

// Drive changes a pin level from outside, like another device on the line.
func (h *HAL) Drive(pin multiplexer.Pin, level bool) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.levels[pin] = level
}

func (h *HAL) IsOutput(pin multiplexer.Pin) bool {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.outputs[pin]
}

func (h *HAL) Calls() []Call {
	h.lock.Lock()
	defer h.lock.Unlock()
	out := make([]Call, len(h.calls))
	copy(out, h.calls)
	return out
}

func (h *HAL) ResetCalls() {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.calls = nil
}

// MuxSource emulates a mux whose select lines are pins: the selected channel
// is decoded from the simulated levels and passed to value.
func MuxSource(pins []multiplexer.Pin, value func(channel uint) multiplexer.Value) Source {
	return func(h *HAL, _ multiplexer.Pin) multiplexer.Value {
		var channel uint
		for i, p := range pins {
			if h.Level(p) {
				channel |= 1 << i
			}
		}
		return value(channel)
	}
}
