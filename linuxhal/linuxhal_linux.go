//go:build linux

// Package linuxhal drives a mux from a Linux board: select lines through the
// GPIO character device, samples through an IIO ADC.
package linuxhal

import (
	"errors"
	"fmt"
	"sync"

	"analog-mux/multiplexer"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "analog-mux"

var ErrNotRequested = errors.New("linuxhal: line not requested")

type HAL struct {
	chip string
	adc  *IIOADC

	lock  sync.Mutex
	lines map[multiplexer.Pin]*gpiocdev.Line
}

func New(chip string, adc *IIOADC) *HAL {
	return &HAL{
		chip:  chip,
		adc:   adc,
		lines: make(map[multiplexer.Pin]*gpiocdev.Line),
	}
}

func (h *HAL) ConfigureOutput(pin multiplexer.Pin) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	if _, ok := h.lines[pin]; ok {
		return nil
	}
	l, err := gpiocdev.RequestLine(h.chip, int(pin), gpiocdev.AsOutput(0), gpiocdev.WithConsumer(consumer))
	if err != nil {
		return fmt.Errorf("request %s:%d: %w", h.chip, pin, err)
	}
	h.lines[pin] = l
	return nil
}

func (h *HAL) line(pin multiplexer.Pin) (*gpiocdev.Line, error) {
	h.lock.Lock()
	defer h.lock.Unlock()
	l, ok := h.lines[pin]
	if !ok {
		return nil, fmt.Errorf("%w: %s:%d", ErrNotRequested, h.chip, pin)
	}
	return l, nil
}

func (h *HAL) SetPin(pin multiplexer.Pin, level bool) error {
	l, err := h.line(pin)
	if err != nil {
		return err
	}
	v := 0
	if level {
		v = 1
	}
	return l.SetValue(v)
}

func (h *HAL) GetPin(pin multiplexer.Pin) (bool, error) {
	l, err := h.line(pin)
	if err != nil {
		return false, err
	}
	v, err := l.Value()
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

func (h *HAL) ReadAnalog(pin multiplexer.Pin) (multiplexer.Value, error) {
	return h.adc.ReadAnalog(pin)
}

// Close releases every requested line and the ADC files.
func (h *HAL) Close() error {
	h.lock.Lock()
	defer h.lock.Unlock()

	var first error
	for pin, l := range h.lines {
		if err := l.Close(); err != nil && first == nil {
			first = err
		}
		delete(h.lines, pin)
	}
	if err := h.adc.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
