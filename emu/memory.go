package emu

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

// Memory is a flat, host-addressable, little-endian byte store
// (spec.md §4.B). Reads/writes are unaligned-tolerant except for the
// atomic family, which requires the accessed range to stay within one
// 16-byte line.
type Memory struct {
	bytes map[uint64][]byte // sparse, keyed by 4KiB page base
	local monitor
	global monitor
}

const pageSize = 4096
const pageMask = pageSize - 1

// NewMemory returns an empty sparse memory image.
func NewMemory() *Memory {
	return &Memory{bytes: make(map[uint64][]byte)}
}

func (m *Memory) page(addr uint64) []byte {
	base := addr &^ pageMask
	p, ok := m.bytes[base]
	if !ok {
		p = make([]byte, pageSize)
		m.bytes[base] = p
	}
	return p
}

// span returns a byte slice view of [addr, addr+n) which may straddle a
// page boundary; straddling accesses are copied into a scratch buffer.
func (m *Memory) span(addr uint64, n int) []byte {
	base := addr &^ pageMask
	off := int(addr & pageMask)
	if off+n <= pageSize {
		return m.page(addr)[off : off+n]
	}
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[i] = m.page(addr + uint64(i))[(addr+uint64(i))&pageMask]
	}
	_ = base
	return buf
}

func (m *Memory) writeSpan(addr uint64, data []byte) {
	for i, b := range data {
		a := addr + uint64(i)
		m.page(a)[a&pageMask] = b
	}
}

// Read8/Read16/Read32/Read64 perform little-endian typed loads.
func (m *Memory) Read8(addr uint64) uint8   { return m.span(addr, 1)[0] }
func (m *Memory) Read16(addr uint64) uint16 { return binary.LittleEndian.Uint16(m.span(addr, 2)) }
func (m *Memory) Read32(addr uint64) uint32 { return binary.LittleEndian.Uint32(m.span(addr, 4)) }
func (m *Memory) Read64(addr uint64) uint64 { return binary.LittleEndian.Uint64(m.span(addr, 8)) }

// Read128 loads a 16-byte quad as (low, high).
func (m *Memory) Read128(addr uint64) (lo, hi uint64) {
	return m.Read64(addr), m.Read64(addr + 8)
}

// Write8/16/32/64 perform little-endian typed stores, then apply the
// "maybe_clear" slack any non-exclusive store is permitted to apply to
// the local monitor (spec.md §4.B).
func (m *Memory) Write8(addr uint64, v uint8) {
	m.writeSpan(addr, []byte{v})
	m.local.maybeClear()
}

func (m *Memory) Write16(addr uint64, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	m.writeSpan(addr, b[:])
	m.local.maybeClear()
}

func (m *Memory) Write32(addr uint64, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	m.writeSpan(addr, b[:])
	m.local.maybeClear()
}

func (m *Memory) Write64(addr uint64, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	m.writeSpan(addr, b[:])
	m.local.maybeClear()
}

// Write128 stores a 16-byte quad.
func (m *Memory) Write128(addr uint64, lo, hi uint64) {
	m.Write64(addr, lo)
	m.Write64(addr+8, hi)
}

// LoadProgram copies a program image into memory starting at addr.
func (m *Memory) LoadProgram(addr uint64, program []byte) {
	m.writeSpan(addr, program)
}

// CheckAtomicAlignment returns an alignment-fault error if [addr,
// addr+size) crosses a 16-byte line, as required for the atomic family
// (spec.md §4.B "strict within a 16-byte line for atomics").
func (m *Memory) CheckAtomicAlignment(addr uint64, size int) error {
	line := addr &^ 0xF
	if addr+uint64(size) > line+16 {
		return &SimError{Category: ErrAlignment, PC: 0, Detail: fmt.Sprintf("atomic access [0x%X,+%d) crosses 16-byte line", addr, size)}
	}
	return nil
}

// FenceFull issues a full host-side memory barrier. Load-acquire wraps
// its load with a fence *after*; store-release wraps its store with a
// fence *before*; DMB/DSB/ISB call this directly (spec.md §4.B, §5).
func FenceFull() {
	// A single-threaded interpreter has no real reordering to fence
	// against; this models the architectural barrier as an explicit
	// host-visible sequence point so memory shared with host threads
	// observes the same order the emulated program would establish.
	var sink int32
	atomic.AddInt32(&sink, 0)
}

// monitor is a single-interval exclusive-access record (spec.md §4.B,
// §9 design note: "a single-interval struct with clear/mark/contains").
type monitor struct {
	valid bool
	addr  uint64
	size  uint64
}

func (mo *monitor) mark(addr uint64, size uint64) {
	mo.valid = true
	mo.addr = addr
	mo.size = size
}

func (mo *monitor) contains(addr uint64, size uint64) bool {
	return mo.valid && addr >= mo.addr && addr+size <= mo.addr+mo.size
}

func (mo *monitor) clear() { mo.valid = false }

// maybeClear always clears, which is a legal and simpler realization of
// the architecturally-permitted "may clear" slack (spec.md §4.B, §9).
func (mo *monitor) maybeClear() { mo.clear() }

// MarkExclusive records an exclusive-access interval on both the local
// and global monitors, as LDXR/LDAXR do.
func (m *Memory) MarkExclusive(addr, size uint64) {
	m.local.mark(addr, size)
	m.global.mark(addr, size)
}

// IsExclusive reports whether a store-exclusive to [addr, addr+size)
// may succeed: the local monitor's recorded interval must still cover
// the query and the global monitor must also hold (spec.md §4.B/§8).
func (m *Memory) IsExclusive(addr, size uint64) bool {
	return m.local.contains(addr, size) && m.global.contains(addr, size)
}

// ClearExclusive implements CLREX: it always clears the local monitor
// (spec.md §4.J "CLREX clears only the local monitor").
func (m *Memory) ClearExclusive() {
	m.local.clear()
}

// ClearExclusiveStore drops both monitors after a successful
// store-exclusive, matching one store-exclusive consuming the pair.
func (m *Memory) ClearExclusiveStore() {
	m.local.clear()
	m.global.clear()
}
