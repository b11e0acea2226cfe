package multiplexer

// Pin identifies a hardware pin on the controlling board.
type Pin uint32

// Value is a raw analog sample. Resolution is platform defined
// (0-1023 on AVR boards, 0-4095 or left shifted to 16 bits elsewhere).
type Value uint16

// HAL is the hardware collaborator the driver talks to.
// Platform-specific implementations handle actual pin control.
type HAL interface {
	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin Pin) error

	// SetPin drives the pin high (true) or low (false)
	SetPin(pin Pin, level bool) error

	// GetPin reads the current logic level of the pin
	GetPin(pin Pin) (bool, error)

	// ReadAnalog performs a one-shot sample of an analog input pin
	ReadAnalog(pin Pin) (Value, error)
}
