package emu

// AddrMode names the addressing-mode family spec.md §4.I describes.
type AddrMode uint8

const (
	AddrOffset AddrMode = iota
	AddrPreIndex
	AddrPostIndex
)

// LoadStoreUnit implements the load/store visitor surface, generalizing
// the teacher's per-width LDR/STR methods
// (`_examples/syifan-m2sim2/emu/load_store.go`) across addressing
// mode, width, and the exclusive/atomic/LSE family the teacher has no
// precedent for (grounded directly on spec.md §4.I and VIXL's
// VisitLoadStoreExclusive/VisitAtomicMemory).
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
}

func NewLoadStoreUnit(regFile *RegFile, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{regFile: regFile, memory: memory}
}

// ResolveAddr computes the access address and, for PreIndex, writes
// back Rn *before* the access; PostIndex write-back is applied by
// WriteBack after the access runs, matching spec.md §4.I's explicit
// log-ordering requirement. If rn==31 (SP) and SP is misaligned, it
// returns an alignment SimError.
func (lsu *LoadStoreUnit) ResolveAddr(rn uint8, mode AddrMode, offset int64) (addr uint64, err error) {
	base := lsu.regFile.ReadX(rn, true)
	if rn == 31 && !lsu.regFile.StackAligned() {
		return 0, &SimError{Category: ErrAlignment, PC: lsu.regFile.PC(), Detail: "SP misaligned on load/store base"}
	}
	switch mode {
	case AddrOffset:
		return uint64(int64(base) + offset), nil
	case AddrPreIndex:
		addr = uint64(int64(base) + offset)
		lsu.regFile.WriteX(rn, addr, true)
		return addr, nil
	case AddrPostIndex:
		return base, nil
	default:
		return base, nil
	}
}

// WriteBack applies the post-index update after the access completes.
func (lsu *LoadStoreUnit) WriteBack(rn uint8, mode AddrMode, base uint64, offset int64) {
	if mode == AddrPostIndex {
		lsu.regFile.WriteX(rn, uint64(int64(base)+offset), true)
	}
}

// Scalar loads/stores, zero/sign-extension selected explicitly, as in
// the teacher's LDR64/LDR32/LDRB/STRB/LDRSB64/etc.
func (lsu *LoadStoreUnit) LDRB(rd uint8, addr uint64)  { lsu.regFile.WriteX(rd, uint64(lsu.memory.Read8(addr)), false) }
func (lsu *LoadStoreUnit) STRB(rd uint8, addr uint64)  { lsu.memory.Write8(addr, uint8(lsu.regFile.ReadX(rd, false))) }
func (lsu *LoadStoreUnit) LDRH(rd uint8, addr uint64)  { lsu.regFile.WriteX(rd, uint64(lsu.memory.Read16(addr)), false) }
func (lsu *LoadStoreUnit) STRH(rd uint8, addr uint64)  { lsu.memory.Write16(addr, uint16(lsu.regFile.ReadX(rd, false))) }
func (lsu *LoadStoreUnit) LDR32(rd uint8, addr uint64) { lsu.regFile.WriteW(rd, lsu.memory.Read32(addr), false) }
func (lsu *LoadStoreUnit) STR32(rd uint8, addr uint64) { lsu.memory.Write32(addr, lsu.regFile.ReadW(rd, false)) }
func (lsu *LoadStoreUnit) LDR64(rd uint8, addr uint64) { lsu.regFile.WriteX(rd, lsu.memory.Read64(addr), false) }
func (lsu *LoadStoreUnit) STR64(rd uint8, addr uint64) { lsu.memory.Write64(addr, lsu.regFile.ReadX(rd, false)) }

func (lsu *LoadStoreUnit) LDRSB64(rd uint8, addr uint64) {
	lsu.regFile.WriteX(rd, uint64(SignExtendBits(uint64(lsu.memory.Read8(addr)), 8)), false)
}
func (lsu *LoadStoreUnit) LDRSB32(rd uint8, addr uint64) {
	lsu.regFile.WriteW(rd, uint32(SignExtendBits(uint64(lsu.memory.Read8(addr)), 8)), false)
}
func (lsu *LoadStoreUnit) LDRSH64(rd uint8, addr uint64) {
	lsu.regFile.WriteX(rd, uint64(SignExtendBits(uint64(lsu.memory.Read16(addr)), 16)), false)
}
func (lsu *LoadStoreUnit) LDRSH32(rd uint8, addr uint64) {
	lsu.regFile.WriteW(rd, uint32(SignExtendBits(uint64(lsu.memory.Read16(addr)), 16)), false)
}
func (lsu *LoadStoreUnit) LDRSW(rd uint8, addr uint64) {
	lsu.regFile.WriteX(rd, uint64(SignExtendBits(uint64(lsu.memory.Read32(addr)), 32)), false)
}

// Pair loads/stores access two consecutive elements; stores permit
// Rt==Rt2 (spec.md §4.I).
func (lsu *LoadStoreUnit) LDPW(rt, rt2 uint8, addr uint64) {
	lsu.regFile.WriteW(rt, lsu.memory.Read32(addr), false)
	lsu.regFile.WriteW(rt2, lsu.memory.Read32(addr+4), false)
}
func (lsu *LoadStoreUnit) STPW(rt, rt2 uint8, addr uint64) {
	lsu.memory.Write32(addr, lsu.regFile.ReadW(rt, false))
	lsu.memory.Write32(addr+4, lsu.regFile.ReadW(rt2, false))
}
func (lsu *LoadStoreUnit) LDPX(rt, rt2 uint8, addr uint64) {
	lsu.regFile.WriteX(rt, lsu.memory.Read64(addr), false)
	lsu.regFile.WriteX(rt2, lsu.memory.Read64(addr+8), false)
}
func (lsu *LoadStoreUnit) STPX(rt, rt2 uint8, addr uint64) {
	lsu.memory.Write64(addr, lsu.regFile.ReadX(rt, false))
	lsu.memory.Write64(addr+8, lsu.regFile.ReadX(rt2, false))
}
func (lsu *LoadStoreUnit) LDPSW(rt, rt2 uint8, addr uint64) {
	lsu.regFile.WriteX(rt, uint64(SignExtendBits(uint64(lsu.memory.Read32(addr)), 32)), false)
	lsu.regFile.WriteX(rt2, uint64(SignExtendBits(uint64(lsu.memory.Read32(addr+4)), 32)), false)
}

// Literal loads use a PC-relative address the decoder already
// resolved (spec.md §4.I "Literal loads").
func (lsu *LoadStoreUnit) LDRLiteral32(rd uint8, addr uint64) { lsu.LDR32(rd, addr) }
func (lsu *LoadStoreUnit) LDRLiteral64(rd uint8, addr uint64) { lsu.LDR64(rd, addr) }

// --- Exclusive and atomic family (spec.md §4.I) ---

// LDXR/LDAXR mark the monitor (global fence after for the acquire form).
func (lsu *LoadStoreUnit) LDXR(rt uint8, addr uint64, size uint64, acquire bool) {
	lsu.memory.MarkExclusive(addr, size)
	v := lsu.readSized(addr, size)
	lsu.regFile.WriteX(rt, v, false)
	if acquire {
		FenceFull()
	}
}

// STXR/STLXR succeed only if both monitors still cover [addr,
// addr+size); Rs receives 0 on success, 1 on failure (spec.md §4.I).
func (lsu *LoadStoreUnit) STXR(rs, rt uint8, addr uint64, size uint64, release bool) {
	if !lsu.memory.IsExclusive(addr, size) {
		lsu.regFile.WriteX(rs, 1, false)
		return
	}
	if release {
		FenceFull()
	}
	lsu.writeSized(addr, size, lsu.regFile.ReadX(rt, false))
	lsu.memory.ClearExclusiveStore()
	lsu.regFile.WriteX(rs, 0, false)
}

func (lsu *LoadStoreUnit) readSized(addr, size uint64) uint64 {
	switch size {
	case 1:
		return uint64(lsu.memory.Read8(addr))
	case 2:
		return uint64(lsu.memory.Read16(addr))
	case 4:
		return uint64(lsu.memory.Read32(addr))
	default:
		return lsu.memory.Read64(addr)
	}
}

func (lsu *LoadStoreUnit) writeSized(addr, size, v uint64) {
	switch size {
	case 1:
		lsu.memory.Write8(addr, uint8(v))
	case 2:
		lsu.memory.Write16(addr, uint16(v))
	case 4:
		lsu.memory.Write32(addr, uint32(v))
	default:
		lsu.memory.Write64(addr, v)
	}
}

// CAS atomically compares mem[addr] against Rs; on match, writes Rt;
// Rs always receives the *observed* (pre-swap) value (spec.md §4.I).
func (lsu *LoadStoreUnit) CAS(rs, rt uint8, addr uint64, size uint64, acquire, release bool) error {
	if err := lsu.memory.CheckAtomicAlignment(addr, int(size)); err != nil {
		return err
	}
	observed := lsu.readSized(addr, size)
	if acquire {
		FenceFull()
	}
	expect := lsu.regFile.ReadX(rs, false) & maskBits(int(size)*8)
	if observed == expect {
		if release {
			FenceFull()
		}
		lsu.writeSized(addr, size, lsu.regFile.ReadX(rt, false))
	}
	lsu.regFile.WriteX(rs, observed, false)
	return nil
}

// CASP is the paired (2-element) CAS form.
func (lsu *LoadStoreUnit) CASP(rs, rs2, rt, rt2 uint8, addr uint64, size uint64) error {
	if err := lsu.memory.CheckAtomicAlignment(addr, int(size)*2); err != nil {
		return err
	}
	obsLo := lsu.readSized(addr, size)
	obsHi := lsu.readSized(addr+size, size)
	expectLo := lsu.regFile.ReadX(rs, false) & maskBits(int(size)*8)
	expectHi := lsu.regFile.ReadX(rs2, false) & maskBits(int(size)*8)
	if obsLo == expectLo && obsHi == expectHi {
		lsu.writeSized(addr, size, lsu.regFile.ReadX(rt, false))
		lsu.writeSized(addr+size, size, lsu.regFile.ReadX(rt2, false))
	}
	lsu.regFile.WriteX(rs, obsLo, false)
	lsu.regFile.WriteX(rs2, obsHi, false)
	return nil
}

// SWP atomically stores Rs to mem[addr] and returns the prior value
// in Rt.
func (lsu *LoadStoreUnit) SWP(rs, rt uint8, addr uint64, size uint64) {
	prev := lsu.readSized(addr, size)
	lsu.writeSized(addr, size, lsu.regFile.ReadX(rs, false))
	lsu.regFile.WriteX(rt, prev, false)
}

// AtomicOp names the LDADD/LDCLR/LDEOR/LDSET/LDSMAX/LDSMIN/LDUMAX/LDUMIN family.
type AtomicOp uint8

const (
	AtomicADD AtomicOp = iota
	AtomicCLR
	AtomicEOR
	AtomicSET
	AtomicSMAX
	AtomicSMIN
	AtomicUMAX
	AtomicUMIN
)

// LDOp reads mem[addr] into Rt (the pre-value), applies op with Rs as
// operand, and writes the result back to mem[addr] (spec.md §4.I).
func (lsu *LoadStoreUnit) LDOp(op AtomicOp, rs, rt uint8, addr uint64, size uint64) {
	pre := lsu.readSized(addr, size)
	operand := lsu.regFile.ReadX(rs, false) & maskBits(int(size)*8)
	bits := int(size) * 8
	var result uint64
	switch op {
	case AtomicADD:
		result = (pre + operand) & maskBits(bits)
	case AtomicCLR:
		result = pre &^ operand
	case AtomicEOR:
		result = pre ^ operand
	case AtomicSET:
		result = pre | operand
	case AtomicSMAX:
		if signExtendLane(pre, bits) > signExtendLane(operand, bits) {
			result = pre
		} else {
			result = operand
		}
	case AtomicSMIN:
		if signExtendLane(pre, bits) < signExtendLane(operand, bits) {
			result = pre
		} else {
			result = operand
		}
	case AtomicUMAX:
		if pre > operand {
			result = pre
		} else {
			result = operand
		}
	case AtomicUMIN:
		if pre < operand {
			result = pre
		} else {
			result = operand
		}
	}
	lsu.writeSized(addr, size, result)
	lsu.regFile.WriteX(rt, pre, false)
}

// LDAPR/STLUR are RCpc-style load-acquire/store-release with a
// one-shot 16-byte alignment check (spec.md §4.I).
func (lsu *LoadStoreUnit) LDAPR(rt uint8, addr uint64, size uint64) error {
	if err := lsu.memory.CheckAtomicAlignment(addr, int(size)); err != nil {
		return err
	}
	v := lsu.readSized(addr, size)
	FenceFull()
	lsu.regFile.WriteX(rt, v, false)
	return nil
}

func (lsu *LoadStoreUnit) STLUR(rt uint8, addr uint64, size uint64) error {
	if err := lsu.memory.CheckAtomicAlignment(addr, int(size)); err != nil {
		return err
	}
	FenceFull()
	lsu.writeSized(addr, size, lsu.regFile.ReadX(rt, false)&maskBits(int(size)*8))
	return nil
}
