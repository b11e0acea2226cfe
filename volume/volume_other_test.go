//go:build !windows

package volume

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestSinkUnsupported(t *testing.T) {
	sink, err := NewSink(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("NewSink: expected ErrUnsupported, got %v", err)
	}
	if err := sink.Set("dev", 0.5); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Set: expected ErrUnsupported, got %v", err)
	}
}
