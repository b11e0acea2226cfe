package linuxhal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIIOADC(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in_voltage2_raw")
	if err := os.WriteFile(path, []byte("1234\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	adc := NewIIOADC(dir)
	defer adc.Close()

	v, err := adc.ReadAnalog(2)
	if err != nil {
		t.Fatalf("ReadAnalog failed: %v", err)
	}
	if v != 1234 {
		t.Errorf("Expected 1234, got %d", v)
	}

	// the file handle is kept open and rewound on every read
	if err := os.WriteFile(path, []byte("87\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	v, err = adc.ReadAnalog(2)
	if err != nil {
		t.Fatalf("ReadAnalog failed: %v", err)
	}
	if v != 87 {
		t.Errorf("Expected 87, got %d", v)
	}
}

func TestIIOADCErrors(t *testing.T) {
	dir := t.TempDir()
	adc := NewIIOADC(dir)
	defer adc.Close()

	if _, err := adc.ReadAnalog(0); err == nil {
		t.Error("Expected error for missing channel")
	}

	if err := os.WriteFile(filepath.Join(dir, "in_voltage1_raw"), []byte("garbage\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := adc.ReadAnalog(1); err == nil {
		t.Error("Expected parse error")
	}
}

func TestIIOADCDefaultDir(t *testing.T) {
	if NewIIOADC("").Dir != DefaultIIODevice {
		t.Error("Expected default IIO device")
	}
}
