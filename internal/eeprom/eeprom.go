// Package eeprom emulates a byte-addressable non-volatile store. The file
// variant keeps a full image in memory and writes it through on every
// mutation, so scores survive a power cycle the same way they would on a
// real part. Words are little-endian, matching the AVR EEPROM layout the
// score schema describes.
package eeprom

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultSize matches the 1 KiB EEPROM of the original target part.
const DefaultSize = 1024

// erased is the value every cell reads before its first write.
const erased = 0xFF

// File is a file-backed device image.
type File struct {
	path  string
	image []byte
}

// Open loads the image at path, creating a blank (erased) one if the file
// does not exist. A shorter existing image is padded; a longer one keeps
// its size.
func Open(path string, size int) (*File, error) {
	if size <= 0 {
		return nil, fmt.Errorf("eeprom size must be > 0")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create eeprom directory: %w", err)
	}
	image := make([]byte, size)
	for i := range image {
		image[i] = erased
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read eeprom image: %w", err)
		}
	} else {
		if len(data) > size {
			image = data
		} else {
			copy(image, data)
		}
	}
	return &File{path: path, image: image}, nil
}

// ReadByte returns the byte at addr.
func (f *File) ReadByte(addr uint16) (byte, error) {
	if int(addr) >= len(f.image) {
		return 0, fmt.Errorf("eeprom address 0x%04x out of range", addr)
	}
	return f.image[addr], nil
}

// WriteByte stores v at addr and flushes the image.
func (f *File) WriteByte(addr uint16, v byte) error {
	if int(addr) >= len(f.image) {
		return fmt.Errorf("eeprom address 0x%04x out of range", addr)
	}
	f.image[addr] = v
	return f.flush()
}

// ReadWord returns the little-endian word at addr.
func (f *File) ReadWord(addr uint16) (uint16, error) {
	if int(addr)+1 >= len(f.image) {
		return 0, fmt.Errorf("eeprom address 0x%04x out of range", addr)
	}
	return binary.LittleEndian.Uint16(f.image[addr:]), nil
}

// WriteWord stores v at addr little-endian and flushes the image.
func (f *File) WriteWord(addr uint16, v uint16) error {
	if int(addr)+1 >= len(f.image) {
		return fmt.Errorf("eeprom address 0x%04x out of range", addr)
	}
	binary.LittleEndian.PutUint16(f.image[addr:], v)
	return f.flush()
}

func (f *File) flush() error {
	if err := os.WriteFile(f.path, f.image, 0o644); err != nil {
		return fmt.Errorf("failed to write eeprom image: %w", err)
	}
	return nil
}

// Memory is an in-memory device for tests and dry runs.
type Memory struct {
	image []byte
}

// NewMemory returns an erased in-memory device of the given size.
func NewMemory(size int) *Memory {
	image := make([]byte, size)
	for i := range image {
		image[i] = erased
	}
	return &Memory{image: image}
}

// ReadByte returns the byte at addr.
func (m *Memory) ReadByte(addr uint16) (byte, error) {
	if int(addr) >= len(m.image) {
		return 0, fmt.Errorf("eeprom address 0x%04x out of range", addr)
	}
	return m.image[addr], nil
}

// WriteByte stores v at addr.
func (m *Memory) WriteByte(addr uint16, v byte) error {
	if int(addr) >= len(m.image) {
		return fmt.Errorf("eeprom address 0x%04x out of range", addr)
	}
	m.image[addr] = v
	return nil
}

// ReadWord returns the little-endian word at addr.
func (m *Memory) ReadWord(addr uint16) (uint16, error) {
	if int(addr)+1 >= len(m.image) {
		return 0, fmt.Errorf("eeprom address 0x%04x out of range", addr)
	}
	return binary.LittleEndian.Uint16(m.image[addr:]), nil
}

// WriteWord stores v at addr little-endian.
func (m *Memory) WriteWord(addr uint16, v uint16) error {
	if int(addr)+1 >= len(m.image) {
		return fmt.Errorf("eeprom address 0x%04x out of range", addr)
	}
	binary.LittleEndian.PutUint16(m.image[addr:], v)
	return nil
}
