package multiplexer

import (
	"errors"
	"fmt"
)

// MaxSelectPins bounds the number of select lines a mux may use.
const MaxSelectPins = 16

var (
	ErrNotConfigured     = errors.New("multiplexer: not configured")
	ErrTooManySelectPins = errors.New("multiplexer: too many select pins")
)

// AnalogMux drives a 4051/4067 style analog multiplexer. Select pin 0 carries
// the least significant bit of the channel number.
type AnalogMux struct {
	hal        HAL
	ain        Pin
	selectPins []Pin
	configured bool
}

func NewAnalogMux(hal HAL) *AnalogMux {
	return &AnalogMux{hal: hal}
}

// Begin stores the analog input pin and a copy of the select pins, then
// configures every select pin as an output in order.
func (m *AnalogMux) Begin(ain Pin, selectPins ...Pin) error {
	if len(selectPins) > MaxSelectPins {
		return fmt.Errorf("%w: %d > %d", ErrTooManySelectPins, len(selectPins), MaxSelectPins)
	}

	pins := make([]Pin, len(selectPins))
	copy(pins, selectPins)

	// a failed Begin leaves the mux unconfigured
	m.Close()
	for _, pin := range pins {
		if err := m.hal.ConfigureOutput(pin); err != nil {
			return fmt.Errorf("configure select pin %d: %w", pin, err)
		}
	}

	m.ain = ain
	m.selectPins = pins
	m.configured = true
	return nil
}

// Select drives the select pins to the binary encoding of channel.
// Bits above the select count are dropped, so channel aliases to
// channel mod ChannelCount().
func (m *AnalogMux) Select(channel uint) error {
	if !m.configured {
		return ErrNotConfigured
	}

	for _, pin := range m.selectPins {
		if err := m.hal.SetPin(pin, channel%2 == 1); err != nil {
			return fmt.Errorf("drive select pin %d: %w", pin, err)
		}
		channel /= 2
	}
	return nil
}

// ReadChannel selects channel and returns one raw sample of the analog pin.
func (m *AnalogMux) ReadChannel(channel uint) (Value, error) {
	if err := m.Select(channel); err != nil {
		return 0, err
	}

	v, err := m.hal.ReadAnalog(m.ain)
	if err != nil {
		return 0, fmt.Errorf("sample analog pin %d: %w", m.ain, err)
	}
	return v, nil
}

// ReadAll reads every addressable channel in ascending order and appends the
// samples to dst.
func (m *AnalogMux) ReadAll(dst []Value) ([]Value, error) {
	if !m.configured {
		return dst, ErrNotConfigured
	}

	for ch := uint(0); ch < m.ChannelCount(); ch++ {
		v, err := m.ReadChannel(ch)
		if err != nil {
			return dst, err
		}
		dst = append(dst, v)
	}
	return dst, nil
}

func (m *AnalogMux) SignalPin() Pin {
	return m.ain
}

func (m *AnalogMux) SelectCount() int {
	return len(m.selectPins)
}

// ChannelCount returns the number of channels addressable with the
// configured select pins.
func (m *AnalogMux) ChannelCount() uint {
	return 1 << len(m.selectPins)
}

// CurrentChannel reads the select pins back and recomposes the channel
// number they encode.
func (m *AnalogMux) CurrentChannel() (uint, error) {
	if !m.configured {
		return 0, ErrNotConfigured
	}

	var channel uint
	for i, pin := range m.selectPins {
		high, err := m.hal.GetPin(pin)
		if err != nil {
			return 0, fmt.Errorf("read select pin %d: %w", pin, err)
		}
		if high {
			channel += 1 << i
		}
	}
	return channel, nil
}

// Close releases the select pins and returns the mux to its unconfigured
// state. The pins keep their last driven levels.
func (m *AnalogMux) Close() error {
	m.selectPins = nil
	m.configured = false
	return nil
}
