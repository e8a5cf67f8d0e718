// Package score maintains the durable best-three reaction times per
// difficulty. The table for each tier is always sorted ascending and
// exactly three entries long; slots that have never been beaten hold the
// sentinel worst-possible time.
package score

import (
	"fmt"

	"reflex/internal/model"
)

// Sentinel is the worst-possible time written into fresh slots.
const Sentinel uint16 = 9999

// Device is the byte-addressable non-volatile store the ledger persists
// to. Words are little-endian.
type Device interface {
	ReadByte(addr uint16) (byte, error)
	WriteByte(addr uint16, v byte) error
	ReadWord(addr uint16) (uint16, error)
	WriteWord(addr uint16, v uint16) error
}

// Schema describes the storage layout: a one-byte initialization marker at
// a fixed address, then one fixed-size block of score slots per
// difficulty. The marker doubles as a migration hook; a future layout
// bumps the marker value and converts on mismatch.
type Schema struct {
	MarkerAddr uint16
	Marker     byte
	Slots      int
	SlotWidth  uint16
	Blocks     map[model.Difficulty]uint16
}

// DefaultSchema returns the layout the original device shipped with:
// marker 0xAA at address 0, three two-byte slots per difficulty at
// addresses 2, 14, and 26.
func DefaultSchema() Schema {
	return Schema{
		MarkerAddr: 0,
		Marker:     0xAA,
		Slots:      3,
		SlotWidth:  2,
		Blocks: map[model.Difficulty]uint16{
			model.Easy:   2,
			model.Medium: 14,
			model.Hard:   26,
		},
	}
}

// Validate checks the layout for overlapping blocks and a marker placed
// inside a block.
func (s Schema) Validate() error {
	if s.Slots <= 0 {
		return fmt.Errorf("schema has no score slots")
	}
	if s.SlotWidth == 0 {
		return fmt.Errorf("schema slot width must be > 0")
	}
	if len(s.Blocks) == 0 {
		return fmt.Errorf("schema has no difficulty blocks")
	}
	span := uint16(s.Slots) * s.SlotWidth
	for d, base := range s.Blocks {
		if s.MarkerAddr >= base && s.MarkerAddr < base+span {
			return fmt.Errorf("marker address 0x%04x inside %s block", s.MarkerAddr, d)
		}
		for other, otherBase := range s.Blocks {
			if other == d {
				continue
			}
			if base < otherBase+span && otherBase < base+span {
				return fmt.Errorf("%s and %s blocks overlap", d, other)
			}
		}
	}
	return nil
}

func (s Schema) slotAddr(d model.Difficulty, i int) (uint16, error) {
	base, ok := s.Blocks[d]
	if !ok {
		return 0, fmt.Errorf("no block for difficulty %s", d)
	}
	return base + uint16(i)*s.SlotWidth, nil
}

// Ledger reads and updates the top-score table on a Device. It writes only
// on Initialize, Submit, and Reset, never on Read.
type Ledger struct {
	dev    Device
	schema Schema
}

// NewLedger validates the schema and returns a ledger over dev.
func NewLedger(dev Device, schema Schema) (*Ledger, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid score schema: %w", err)
	}
	return &Ledger{dev: dev, schema: schema}, nil
}

// Initialize bootstraps a device that has never held scores: if the marker
// byte is absent it writes the sentinel into every slot and then the
// marker. Calling it on an initialized device writes nothing.
func (l *Ledger) Initialize() error {
	marker, err := l.dev.ReadByte(l.schema.MarkerAddr)
	if err != nil {
		return fmt.Errorf("failed to read init marker: %w", err)
	}
	if marker == l.schema.Marker {
		return nil
	}
	if err := l.writeSentinels(); err != nil {
		return err
	}
	if err := l.dev.WriteByte(l.schema.MarkerAddr, l.schema.Marker); err != nil {
		return fmt.Errorf("failed to write init marker: %w", err)
	}
	return nil
}

// Reset wipes all stored scores back to the sentinel and re-marks the
// device as initialized.
func (l *Ledger) Reset() error {
	if err := l.writeSentinels(); err != nil {
		return err
	}
	if err := l.dev.WriteByte(l.schema.MarkerAddr, l.schema.Marker); err != nil {
		return fmt.Errorf("failed to write init marker: %w", err)
	}
	return nil
}

func (l *Ledger) writeSentinels() error {
	for d := range l.schema.Blocks {
		for i := 0; i < l.schema.Slots; i++ {
			addr, err := l.schema.slotAddr(d, i)
			if err != nil {
				return err
			}
			if err := l.dev.WriteWord(addr, Sentinel); err != nil {
				return fmt.Errorf("failed to write sentinel for %s: %w", d, err)
			}
		}
	}
	return nil
}

// Read returns the ordered ascending table for a difficulty.
func (l *Ledger) Read(d model.Difficulty) ([]uint16, error) {
	scores := make([]uint16, l.schema.Slots)
	for i := range scores {
		addr, err := l.schema.slotAddr(d, i)
		if err != nil {
			return nil, err
		}
		scores[i], err = l.dev.ReadWord(addr)
		if err != nil {
			return nil, fmt.Errorf("failed to read score for %s: %w", d, err)
		}
	}
	return scores, nil
}

// Submit offers a candidate time for a difficulty. If the candidate is
// strictly better than a stored entry, it is inserted at that position,
// everything from there shifts one slot toward the worst, the previous
// worst falls off, and the full table is persisted. Ties and worse
// candidates leave the table untouched. Reports whether an insert
// happened.
func (l *Ledger) Submit(d model.Difficulty, candidate uint16) (bool, error) {
	scores, err := l.Read(d)
	if err != nil {
		return false, err
	}

	pos := len(scores)
	for i, stored := range scores {
		if candidate < stored {
			pos = i
			break
		}
	}
	if pos == len(scores) {
		return false, nil
	}

	copy(scores[pos+1:], scores[pos:])
	scores[pos] = candidate

	for i, v := range scores {
		addr, err := l.schema.slotAddr(d, i)
		if err != nil {
			return false, err
		}
		if err := l.dev.WriteWord(addr, v); err != nil {
			return false, fmt.Errorf("failed to persist score for %s: %w", d, err)
		}
	}
	return true, nil
}
