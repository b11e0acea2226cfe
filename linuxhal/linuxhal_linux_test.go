//go:build linux

package linuxhal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestUnrequestedLine(t *testing.T) {
	h := New("gpiochip0", NewIIOADC(t.TempDir()))
	defer h.Close()

	if err := h.SetPin(17, true); !errors.Is(err, ErrNotRequested) {
		t.Errorf("SetPin: expected ErrNotRequested, got %v", err)
	}
	if _, err := h.GetPin(17); !errors.Is(err, ErrNotRequested) {
		t.Errorf("GetPin: expected ErrNotRequested, got %v", err)
	}
}

func TestReadAnalogUsesIIO(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "in_voltage0_raw"), []byte("4095\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := New("gpiochip0", NewIIOADC(dir))
	defer h.Close()

	v, err := h.ReadAnalog(0)
	if err != nil {
		t.Fatalf("ReadAnalog failed: %v", err)
	}
	if v != 4095 {
		t.Errorf("Expected 4095, got %d", v)
	}
}
