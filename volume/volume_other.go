//go:build !windows

package volume

import "log/slog"

type Sink struct{}

func NewSink(logger *slog.Logger) (*Sink, error) {
	return nil, ErrUnsupported
}

func (s *Sink) Set(deviceID string, level float32) error {
	return ErrUnsupported
}

func (s *Sink) Close() error {
	return nil
}
