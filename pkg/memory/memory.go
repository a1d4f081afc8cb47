// Package memory provides flat 64K memory backings for the z80 core.
package memory

// PlainMemory is a flat 64K RAM with no mapping or protection. The zero
// value is usable.
type PlainMemory struct {
	data [0x10000]uint8
}

// New returns an empty 64K memory.
func New() *PlainMemory {
	return &PlainMemory{}
}

func (m *PlainMemory) Peek(address uint16) uint8 {
	return m.data[address]
}

func (m *PlainMemory) Poke(address uint16, value uint8) {
	m.data[address] = value
}

// Load copies data into memory starting at org, wrapping at the top of the
// address space.
func (m *PlainMemory) Load(org uint16, data []byte) {
	for i, b := range data {
		m.data[org+uint16(i)] = b
	}
}

// Bytes returns the full 64K contents as a fresh slice.
func (m *PlainMemory) Bytes() []byte {
	out := make([]byte, len(m.data))
	copy(out, m.data[:])
	return out
}

// SetBytes overwrites memory from the start with data.
func (m *PlainMemory) SetBytes(data []byte) {
	copy(m.data[:], data)
}
