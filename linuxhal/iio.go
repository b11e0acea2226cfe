package linuxhal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"analog-mux/multiplexer"
)

// DefaultIIODevice is the first industrial I/O device, where most SoC ADCs
// show up.
const DefaultIIODevice = "/sys/bus/iio/devices/iio:device0"

// IIOADC reads raw samples from in_voltage<N>_raw files of an IIO device.
type IIOADC struct {
	Dir   string
	files map[multiplexer.Pin]*os.File
}

func NewIIOADC(dir string) *IIOADC {
	if dir == "" {
		dir = DefaultIIODevice
	}
	return &IIOADC{Dir: dir, files: make(map[multiplexer.Pin]*os.File)}
}

func (a *IIOADC) open(pin multiplexer.Pin) (*os.File, error) {
	if fd, ok := a.files[pin]; ok {
		return fd, nil
	}
	path := filepath.Join(a.Dir, fmt.Sprintf("in_voltage%d_raw", pin))
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	a.files[pin] = fd
	return fd, nil
}

func (a *IIOADC) ReadAnalog(pin multiplexer.Pin) (multiplexer.Value, error) {
	fd, err := a.open(pin)
	if err != nil {
		return 0, err
	}
	if _, err := fd.Seek(0, 0); err != nil {
		return 0, err
	}

	buf := make([]byte, 16)
	n, err := fd.Read(buf)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(buf[:n])), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("parse %s sample: %w", fd.Name(), err)
	}
	return multiplexer.Value(v), nil
}

func (a *IIOADC) Close() error {
	var first error
	for pin, fd := range a.files {
		if err := fd.Close(); err != nil && first == nil {
			first = err
		}
		delete(a.files, pin)
	}
	return first
}
