//go:build tinygo

// Package board implements multiplexer.HAL on top of the tinygo machine
// package.
package board

import (
	"machine"

	"analog-mux/multiplexer"
)

type HAL struct {
	adcs map[multiplexer.Pin]machine.ADC
}

// New powers up the ADC peripheral. Call once at startup.
func New() *HAL {
	machine.InitADC()
	return &HAL{adcs: make(map[multiplexer.Pin]machine.ADC)}
}

func (h *HAL) ConfigureOutput(pin multiplexer.Pin) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinOutput})
	return nil
}

func (h *HAL) SetPin(pin multiplexer.Pin, level bool) error {
	machine.Pin(pin).Set(level)
	return nil
}

func (h *HAL) GetPin(pin multiplexer.Pin) (bool, error) {
	return machine.Pin(pin).Get(), nil
}

// ReadAnalog returns a 12 bit sample. tinygo scales every ADC to 16 bits.
func (h *HAL) ReadAnalog(pin multiplexer.Pin) (multiplexer.Value, error) {
	adc, ok := h.adcs[pin]
	if !ok {
		adc = machine.ADC{Pin: machine.Pin(pin)}
		adc.Configure(machine.ADCConfig{})
		h.adcs[pin] = adc
	}
	return multiplexer.Value(adc.Get() >> 4), nil
}
