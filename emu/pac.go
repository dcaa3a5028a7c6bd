package emu

import "hash/fnv"

// pacMAC derives a deterministic 64-bit authentication code from a
// pointer value, a modifier and a key index. Real hardware PAC uses
// QARMA; spec.md §9's design note permits any deterministic MAC since
// the core only needs Add/Auth/Strip to round-trip consistently
// within one run, not cross-implementation compatibility — so a
// stdlib FNV-1a hash over the packed inputs stands in.
func pacMAC(ptr, modifier uint64, key uint8) uint64 {
	h := fnv.New64a()
	var b [17]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(ptr >> (8 * i))
		b[8+i] = byte(modifier >> (8 * i))
	}
	b[16] = key
	h.Write(b[:])
	return h.Sum64()
}

// PAC key indices, matching the architected APIAKey/APIBKey/APDAKey/
// APDBKey/APGAKey selection (spec.md §3/§9).
const (
	PACKeyIA uint8 = iota
	PACKeyIB
	PACKeyDA
	PACKeyDB
	PACKeyGA
)

// pacFieldBits returns the PAC field width and the position of the
// "extension bit" (top bit of the unauthenticated address) for a
// 64-bit virtual address space with a 48-bit (TTBR-style) address
// range, the configuration spec.md assumes when it doesn't say
// otherwise.
const (
	pacAddrBits  = 48
	pacTopBit    = 55 // bit replicated into the PAC field's top bits
	pacFieldBits = pacTopBit - pacAddrBits
)

// PACAdd computes a pointer-authentication code for ptr under the
// given modifier and key, and inserts it into the PAC field of ptr
// (bits [54:48] for a 48-bit VA), leaving bit 55 (the extension bit)
// and the low 48 address bits untouched, per spec.md §3 PAC invariants.
func PACAdd(ptr, modifier uint64, key uint8) uint64 {
	mac := pacMAC(ptr, modifier, key)
	ext := (ptr >> pacTopBit) & 1
	var extField uint64
	if ext != 0 {
		extField = (uint64(1)<<pacFieldBits - 1) << pacAddrBits
	}
	pacField := (mac & (uint64(1)<<pacFieldBits - 1)) << pacAddrBits
	addrPart := ptr & (uint64(1)<<pacAddrBits - 1)
	extBit := ptr & (uint64(1) << pacTopBit)
	_ = extField
	return addrPart | extBit | pacField
}

// PACStrip removes the PAC field, restoring the canonical address by
// sign-extending bit 55 across the stripped field (spec.md §3/§9).
func PACStrip(ptr uint64) uint64 {
	addrPart := ptr & (uint64(1)<<pacAddrBits - 1)
	ext := (ptr >> pacTopBit) & 1
	if ext != 0 {
		allOnes := ^uint64(0)
		return addrPart | (allOnes << pacAddrBits)
	}
	return addrPart
}

// PACAuth recomputes the expected PAC field for the stripped address
// and compares it against the one embedded in ptr. On success it
// returns the stripped canonical address and ok=true; on failure,
// per spec.md §3/§7, it returns a poisoned pointer (error-indicating
// bits injected so a subsequent dereference visibly faults) and
// ok=false so callers can raise ErrAuthentication instead if the
// corresponding trap is enabled.
func PACAuth(ptr, modifier uint64, key uint8) (result uint64, ok bool) {
	stripped := PACStrip(ptr)
	expected := PACAdd(stripped, modifier, key)
	gotField := (ptr >> pacAddrBits) & (uint64(1)<<pacFieldBits - 1)
	wantField := (expected >> pacAddrBits) & (uint64(1)<<pacFieldBits - 1)
	if gotField == wantField {
		return stripped, true
	}
	// Poison: flip the top two address bits so the pointer reliably
	// faults on dereference without being mistaken for a valid address.
	poisoned := stripped ^ (uint64(3) << (pacAddrBits - 2))
	return poisoned, false
}
