// SVE arm coverage:
//
//	implemented: PTRUE/PFALSE, PTEST, predicate logicals (AND/BIC/EOR/
//	  NAND/NOR/ORN/ORR/SEL), INDEX, DUP, INSR, UNPK (lo/hi, signed/
//	  unsigned), CMP (vector and immediate forms), INC/DEC by pattern
//	  element count with saturation (the count is not taken from a
//	  governing predicate), WHILELT/LE/LO/LS, CTERMEQ/NE, MOVPRFX latch,
//	  vector contiguous LDR/STR (there is no predicate-register LDR/STR).
//	unimplemented (spec.md §9(b)): gather/scatter loads, FP-SVE
//	  transcendental reductions (FADDA-style serial reduce, FP compare-
//	  with-zero predicated forms). Both return ErrUnimplementedSVE.
package emu

// SVE is the predicate/Z-register engine (spec.md §4.F). It shares the
// VRegFile with the NEON/SIMD lane engine since Z registers alias V
// registers at VL width.
type SVE struct {
	V *VRegFile

	// movprfx latches the destination of a MOVPRFX so the
	// immediately following instruction inherits it as a merge/zero
	// target. Cleared at the bottom of every driver Step (SPEC_FULL §12).
	movprfxActive bool
	movprfxZd     uint8
}

func NewSVE(v *VRegFile) *SVE { return &SVE{V: v} }

// ClearMovprfx drops the MOVPRFX latch; called once per Step regardless
// of whether the latched instruction executed (spec.md §9 design note).
func (s *SVE) ClearMovprfx() {
	s.movprfxActive = false
}

// MOVPRFX records a one-shot prefix for the next instruction.
func (s *SVE) MOVPRFX(zd uint8) {
	s.movprfxActive = true
	s.movprfxZd = zd
}

func elemBytes(esize int) int { return esize / 8 }

// lanesFor returns the lane count for an element size at the current VL.
func (s *SVE) lanesFor(esize int) int { return int(s.V.VL) / esize }

// PTRUE sets predicate lanes true for the leading N elements, where N
// derives from the VL and pattern constant (spec.md §4.F). Supported
// patterns are the explicit VLn constants, POW2, MUL3, MUL4 and ALL;
// unrecognized patterns fall back to ALL.
type SVEPattern uint8

const (
	PatPOW2 SVEPattern = iota
	PatVL1
	PatVL2
	PatVL3
	PatVL4
	PatVL5
	PatVL6
	PatVL7
	PatVL8
	PatVL16
	PatVL32
	PatVL64
	PatVL128
	PatVL256
	PatMUL4
	PatMUL3
	PatALL SVEPattern = 31
)

func patternCount(pattern SVEPattern, total int) int {
	switch pattern {
	case PatVL1:
		return clampCount(1, total)
	case PatVL2:
		return clampCount(2, total)
	case PatVL3:
		return clampCount(3, total)
	case PatVL4:
		return clampCount(4, total)
	case PatVL5:
		return clampCount(5, total)
	case PatVL6:
		return clampCount(6, total)
	case PatVL7:
		return clampCount(7, total)
	case PatVL8:
		return clampCount(8, total)
	case PatVL16:
		return clampCount(16, total)
	case PatVL32:
		return clampCount(32, total)
	case PatVL64:
		return clampCount(64, total)
	case PatVL128:
		return clampCount(128, total)
	case PatVL256:
		return clampCount(256, total)
	case PatMUL4:
		return (total / 4) * 4
	case PatMUL3:
		return (total / 3) * 3
	case PatPOW2:
		n := 1
		for n*2 <= total {
			n *= 2
		}
		return n
	default: // ALL and anything unrecognized
		return total
	}
}

func clampCount(n, total int) int {
	if n > total {
		return 0
	}
	return n
}

// PTRUE sets pd's lanes true for the leading N elements of esize width
// (N from pattern), zeroing the rest. With setFlags it also runs PTEST
// over pd but does not return the flags; driver.go sets NZCV for the
// flag-setting form (PTEST against an all-true governing predicate).
func (s *SVE) PTRUE(pd uint8, esize int, pattern SVEPattern, setFlags bool) {
	total := s.lanesFor(esize)
	n := patternCount(pattern, total)
	eb := elemBytes(esize)
	for k := 0; k < total; k++ {
		active := k < n
		for b := 0; b < eb; b++ {
			s.V.SetPredBit(pd, k*eb+b, active)
		}
	}
	if setFlags {
		s.setPTESTFlags(pd, pd, esize, nil)
	}
}

// PFALSE clears every bit of pd.
func (s *SVE) PFALSE(pd uint8) {
	for k := range s.V.P[pd] {
		s.V.P[pd][k] = 0
	}
	s.V.modP |= 1 << pd
}

// sveFlags is the NZCV result of PTEST and WHILE; driver.go writes the
// returned flags into NZCV.
type sveFlags = NZCV

// PTEST computes N/Z/C/V per spec.md §4.F: N = first predicate bit
// under mask, Z = no active true bit, C = !last bit, V = 0.
func (s *SVE) PTEST(pg, pn uint8, esize int) sveFlags {
	total := s.lanesFor(esize)
	eb := elemBytes(esize)
	var flags sveFlags
	anyTrue := false
	firstSeen := false
	lastBit := false
	for k := 0; k < total; k++ {
		gated := s.V.PredBit(pg, k*eb)
		if !gated {
			continue
		}
		bit := s.V.PredBit(pn, k*eb)
		if !firstSeen {
			flags.N = bit
			firstSeen = true
		}
		if bit {
			anyTrue = true
		}
		lastBit = bit
	}
	flags.Z = !anyTrue
	flags.C = !lastBit
	flags.V = false
	return flags
}

func (s *SVE) setPTESTFlags(pg, pn uint8, esize int, out *sveFlags) {
	f := s.PTEST(pg, pn, esize)
	if out != nil {
		*out = f
	}
}

// predLogical applies a bitwise op across pn/pm lanes gated by pg,
// implementing AND/BIC/EOR/NAND/NOR/ORN/ORR (spec.md §4.F).
type PredOp uint8

const (
	PredAND PredOp = iota
	PredBIC
	PredEOR
	PredNAND
	PredNOR
	PredORN
	PredORR
	PredSEL
)

func (s *SVE) PredLogical(pd, pg, pn, pm uint8, esize int, op PredOp, setFlags bool) {
	total := s.lanesFor(esize)
	eb := elemBytes(esize)
	for k := 0; k < total; k++ {
		gate := s.V.PredBit(pg, k*eb)
		a := s.V.PredBit(pn, k*eb)
		b := s.V.PredBit(pm, k*eb)
		var r bool
		switch op {
		case PredAND:
			r = a && b
		case PredBIC:
			r = a && !b
		case PredEOR:
			r = a != b
		case PredNAND:
			r = !(a && b)
		case PredNOR:
			r = !(a || b)
		case PredORN:
			r = a || !b
		case PredORR:
			r = a || b
		case PredSEL:
			if gate {
				r = a
			} else {
				r = b
			}
		}
		if !gate && op != PredSEL {
			r = false
		}
		for b2 := 0; b2 < eb; b2++ {
			s.V.SetPredBit(pd, k*eb+b2, r)
		}
	}
	if setFlags {
		s.setPTESTFlags(pg, pd, esize, nil)
	}
}

// INDEX fills zd lanes with start + k*step (spec.md §4.F).
func (s *SVE) INDEX(zd uint8, esize int, start, step int64) {
	n := s.lanesFor(esize)
	for k := 0; k < n; k++ {
		v := start + int64(k)*step
		s.V.WriteLane(zd, k, esize, uint64(v)&maskBits(esize))
	}
}

// DUP broadcasts an immediate/scalar across every zd lane (SVE form).
func (s *SVE) DUP(zd uint8, esize int, value uint64) {
	n := s.lanesFor(esize)
	for k := 0; k < n; k++ {
		s.V.WriteLane(zd, k, esize, value&maskBits(esize))
	}
}

// INSR shifts zdn right by one lane and inserts scalar at lane 0.
func (s *SVE) INSR(zdn uint8, esize int, scalar uint64) {
	n := s.lanesFor(esize)
	for k := n - 1; k > 0; k-- {
		s.V.WriteLane(zdn, k, esize, s.V.ReadLane(zdn, k-1, esize))
	}
	s.V.WriteLane(zdn, 0, esize, scalar&maskBits(esize))
}

// UNPK widens the low or high half of zn's narrow lanes into zd's
// double-width lanes, sign- or zero-extending (spec.md §4.F).
func (s *SVE) UNPK(zd, zn uint8, narrowESize int, hi bool, signed bool) {
	wideESize := narrowESize * 2
	nNarrow := s.lanesFor(narrowESize)
	nWide := s.lanesFor(wideESize)
	start := 0
	if hi {
		start = nWide
	}
	for k := 0; k < nWide && start+k < nNarrow; k++ {
		raw := s.V.ReadLane(zn, start+k, narrowESize)
		var v uint64
		if signed {
			v = uint64(signExtendLane(raw, narrowESize)) & maskBits(wideESize)
		} else {
			v = raw
		}
		s.V.WriteLane(zd, k, wideESize, v)
	}
}

// CMPCond names the SVE integer compare family.
type CMPCond uint8

const (
	CmpEQ CMPCond = iota
	CmpNE
	CmpGE
	CmpGT
	CmpLE
	CmpLT
	CmpHI
	CmpHS
	CmpLO
	CmpLS
)

func evalCmp(cond CMPCond, a, b int64) bool {
	ua, ub := uint64(a), uint64(b)
	switch cond {
	case CmpEQ:
		return a == b
	case CmpNE:
		return a != b
	case CmpGE:
		return a >= b
	case CmpGT:
		return a > b
	case CmpLE:
		return a <= b
	case CmpLT:
		return a < b
	case CmpHI:
		return ua > ub
	case CmpHS:
		return ua >= ub
	case CmpLO:
		return ua < ub
	case CmpLS:
		return ua <= ub
	default:
		return false
	}
}

// CMP compares zn[k] against zm[k] (vector form) under governing
// predicate pg, writing the boolean result into pd and running PTEST.
func (s *SVE) CMP(pd, pg, zn, zm uint8, esize int, cond CMPCond, signed bool) {
	n := s.lanesFor(esize)
	eb := elemBytes(esize)
	for k := 0; k < n; k++ {
		gate := s.V.PredBit(pg, k*eb)
		var r bool
		if gate {
			a := s.lane(zn, k, VectorFormat{esize, n}, signed)
			b := s.lane(zm, k, VectorFormat{esize, n}, signed)
			r = evalCmp(cond, a, b)
		}
		s.V.SetPredBit(pd, k*eb, r)
	}
	s.setPTESTFlags(pg, pd, esize, nil)
}

// CMPImm compares zn[k] against a sign-extended immediate.
func (s *SVE) CMPImm(pd, pg, zn uint8, esize int, imm int64, cond CMPCond, signed bool) {
	n := s.lanesFor(esize)
	eb := elemBytes(esize)
	for k := 0; k < n; k++ {
		gate := s.V.PredBit(pg, k*eb)
		var r bool
		if gate {
			a := s.lane(zn, k, VectorFormat{esize, n}, signed)
			r = evalCmp(cond, a, imm)
		}
		s.V.SetPredBit(pd, k*eb, r)
	}
	s.setPTESTFlags(pg, pd, esize, nil)
}

// ActiveCount returns the number of true lanes of pg at esize width.
// The driver's INC/DEC arm does not call it: it counts lanes by
// pattern (patternCount), not by a governing predicate.
func (s *SVE) ActiveCount(pg uint8, esize int) int {
	n := s.lanesFor(esize)
	eb := elemBytes(esize)
	c := 0
	for k := 0; k < n; k++ {
		if s.V.PredBit(pg, k*eb) {
			c++
		}
	}
	return c
}

// IncDecSaturate applies ±count to acc at the given result width,
// saturating per spec.md §4.F's exact signed/unsigned rule.
func IncDecSaturate(acc int64, count int64, resultBits int, signed bool) uint64 {
	if resultBits < 64 {
		// Narrower widths: read acc at the result width and clamp the
		// exact sum into that width's range.
		mask := maskBits(resultBits)
		v := int64(uint64(acc) & mask)
		if signed {
			v = signExtendLane(uint64(acc)&mask, resultBits)
		}
		r := v + count
		if lo := laneMin(resultBits, signed); r < lo {
			r = lo
		} else if hi := laneMax(resultBits, signed); r > hi {
			r = hi
		}
		return uint64(r) & mask
	}
	result := acc + count
	if !signed {
		uacc := uint64(acc)
		uresult := uint64(result)
		if count < 0 && uresult > uacc {
			return 0
		}
		if count > 0 && uresult < uacc {
			return maskBits(resultBits)
		}
		return uresult & maskBits(resultBits)
	}
	accSign := acc < 0
	resultSign := result < 0
	countSign := count < 0
	if accSign == countSign && accSign != resultSign {
		if accSign {
			return uint64(laneMin(resultBits, true)) & maskBits(resultBits)
		}
		return uint64(laneMax(resultBits, true)) & maskBits(resultBits)
	}
	return uint64(result) & maskBits(resultBits)
}

// WHILE implements WHILELT/LE/LO/LS: starting from rn, set predicate
// lanes true while the running comparison against rm holds; once
// false, every subsequent lane is false too (spec.md §4.F).
func (s *SVE) WHILE(pd uint8, esize int, rn, rm int64, cond CMPCond) sveFlags {
	n := s.lanesFor(esize)
	eb := elemBytes(esize)
	running := true
	for k := 0; k < n; k++ {
		if running {
			running = evalCmp(cond, rn+int64(k), rm)
		}
		for b := 0; b < eb; b++ {
			s.V.SetPredBit(pd, k*eb+b, running)
		}
	}
	// Flags are PTEST against an all-true governing predicate. The true
	// lanes form a prefix, so lane 0 decides both N and Z.
	first := s.V.PredBit(pd, 0)
	last := s.V.PredBit(pd, (n-1)*eb)
	return sveFlags{N: first, Z: !first, C: !last}
}

// CTERMEQ/CTERMNE set N and V from a scalar comparison, leaving C/Z
// untouched (spec.md §4.F) — callers merge the returned partial flags
// into the live NZCV.
func CTERM(a, b uint64, eq bool) (n, v bool) {
	if eq {
		return a == b, false
	}
	return a != b, false
}

func (s *SVE) lane(zr uint8, i int, vf VectorFormat, signed bool) int64 {
	raw := s.V.ReadLane(zr, i, vf.ESize)
	if signed {
		return signExtendLane(raw, vf.ESize)
	}
	return int64(raw)
}

// SEL merges zn/zm lanes under pg (no set-flags form; predicate SEL
// above handles the predicate-register variant).
func (s *SVE) SEL(zd, pg, zn, zm uint8, esize int) {
	n := s.lanesFor(esize)
	eb := elemBytes(esize)
	for k := 0; k < n; k++ {
		if s.V.PredBit(pg, k*eb) {
			s.V.WriteLane(zd, k, esize, s.V.ReadLane(zn, k, esize))
		} else {
			s.V.WriteLane(zd, k, esize, s.V.ReadLane(zm, k, esize))
		}
	}
}

// LDR/STR are the contiguous predicated vector load/store forms;
// inactive lanes under pg are skipped on store and left as the
// merge-default (zero, per spec.md's zeroing-predication convention
// for loads) on load.
func (s *SVE) LDR(zd, pg uint8, mem *Memory, addr uint64, esize int) {
	n := s.lanesFor(esize)
	eb := elemBytes(esize)
	stride := uint64(esize / 8)
	for k := 0; k < n; k++ {
		if !s.V.PredBit(pg, k*eb) {
			s.V.WriteLane(zd, k, esize, 0)
			continue
		}
		a := addr + uint64(k)*stride
		var v uint64
		switch esize {
		case 8:
			v = uint64(mem.Read8(a))
		case 16:
			v = uint64(mem.Read16(a))
		case 32:
			v = uint64(mem.Read32(a))
		default:
			v = mem.Read64(a)
		}
		s.V.WriteLane(zd, k, esize, v)
	}
}

func (s *SVE) STR(zd, pg uint8, mem *Memory, addr uint64, esize int) {
	n := s.lanesFor(esize)
	eb := elemBytes(esize)
	stride := uint64(esize / 8)
	for k := 0; k < n; k++ {
		if !s.V.PredBit(pg, k*eb) {
			continue
		}
		a := addr + uint64(k)*stride
		v := s.V.ReadLane(zd, k, esize)
		switch esize {
		case 8:
			mem.Write8(a, uint8(v))
		case 16:
			mem.Write16(a, uint16(v))
		case 32:
			mem.Write32(a, uint32(v))
		default:
			mem.Write64(a, v)
		}
	}
}

// GatherLoad/ScatterStore are not implemented (spec.md §9(b)); callers
// in driver.go raise ErrUnimplementedSVE for these decode arms.
func (s *SVE) GatherLoad() error {
	return &SimError{Category: ErrUnimplementedSVE, Detail: "SVE gather load"}
}

func (s *SVE) ScatterStore() error {
	return &SimError{Category: ErrUnimplementedSVE, Detail: "SVE scatter store"}
}

// FPSerialReduce (FADDA and friends) is not implemented (spec.md §9(b)).
func (s *SVE) FPSerialReduce() error {
	return &SimError{Category: ErrUnimplementedSVE, Detail: "SVE FP serial reduction"}
}
