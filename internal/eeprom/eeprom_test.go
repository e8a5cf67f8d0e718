package eeprom

import (
	"path/filepath"
	"testing"
)

func TestFilePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")

	dev, err := Open(path, 64)
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}
	if err := dev.WriteWord(2, 350); err != nil {
		t.Fatalf("failed to write word: %v", err)
	}
	if err := dev.WriteByte(0, 0xAA); err != nil {
		t.Fatalf("failed to write byte: %v", err)
	}

	// Power cycle.
	dev, err = Open(path, 64)
	if err != nil {
		t.Fatalf("failed to reopen: %v", err)
	}
	marker, err := dev.ReadByte(0)
	if err != nil {
		t.Fatalf("failed to read byte: %v", err)
	}
	if marker != 0xAA {
		t.Fatalf("expected marker 0xAA, got 0x%02x", marker)
	}
	word, err := dev.ReadWord(2)
	if err != nil {
		t.Fatalf("failed to read word: %v", err)
	}
	if word != 350 {
		t.Fatalf("expected 350, got %d", word)
	}
}

func TestFreshDeviceReadsErased(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")
	dev, err := Open(path, 32)
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}
	b, err := dev.ReadByte(31)
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if b != 0xFF {
		t.Fatalf("expected erased cell 0xFF, got 0x%02x", b)
	}
}

func TestOutOfRangeAddresses(t *testing.T) {
	dev := NewMemory(16)
	if _, err := dev.ReadByte(16); err == nil {
		t.Fatalf("expected error reading past the end")
	}
	if err := dev.WriteWord(15, 1); err == nil {
		t.Fatalf("expected error writing a word at the last byte")
	}
}
