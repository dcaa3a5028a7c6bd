package emu

import "math"

// VectorFormat names a lane element type and count for the SIMD lane
// engine (spec.md §4.E): e.g. 16B, 8H, 4S, 2D, and the scalar forms
// 1B/1H/1S/1D. ESize is the element width in bits; Lanes is the lane
// count (1 for scalar forms).
type VectorFormat struct {
	ESize int
	Lanes int
}

var (
	VF8B  = VectorFormat{8, 8}
	VF16B = VectorFormat{8, 16}
	VF4H  = VectorFormat{16, 4}
	VF8H  = VectorFormat{16, 8}
	VF2S  = VectorFormat{32, 2}
	VF4S  = VectorFormat{32, 4}
	VF1D  = VectorFormat{64, 1}
	VF2D  = VectorFormat{64, 2}
	VF1B  = VectorFormat{8, 1}
	VF1H  = VectorFormat{16, 1}
	VF1S  = VectorFormat{32, 1}
)

// postOp names which post-processing stages a primary lane op applies,
// in the fixed order spec.md §4.E prescribes: primary, round, halve,
// saturate.
type postOp uint8

const (
	postRound postOp = 1 << iota
	postHalve
	postSaturateSigned
	postSaturateUnsigned
)

// SIMD is the lane engine: it reads/writes lanes directly through a
// VRegFile, grounded on the teacher's ReadLaneN/WriteLaneN idiom
// (`_examples/syifan-m2sim2/emu/simd.go`) generalized across VectorFormat.
type SIMD struct {
	V *VRegFile
}

func NewSIMD(v *VRegFile) *SIMD { return &SIMD{V: v} }

func signExtendLane(v uint64, bits int) int64 {
	return int64(SignExtendBits(v, bits))
}

func laneMax(bits int, signed bool) int64 {
	if signed {
		return int64(1)<<(bits-1) - 1
	}
	return int64(uint64(1)<<bits - 1)
}

func laneMin(bits int, signed bool) int64 {
	if signed {
		return -(int64(1) << (bits - 1))
	}
	return 0
}

// saturate clamps a double-width intermediate into the destination
// lane width, per spec.md §4.E stage 4, returning the clamped value
// and whether saturation occurred (for FPSR QC tracking callers may add).
func saturate(v int64, bits int, signed bool) (uint64, bool) {
	max := laneMax(bits, signed)
	min := laneMin(bits, signed)
	switch {
	case v > max:
		return uint64(max) & maskBits(bits), true
	case v < min:
		return uint64(min) & maskBits(bits), true
	default:
		return uint64(v) & maskBits(bits), false
	}
}

func maskBits(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<uint(bits) - 1
}

// applyPost runs the round/halve/saturate pipeline on a double-width
// signed intermediate, per spec.md §4.E's fixed stage order.
func applyPost(v int64, bits int, signed bool, ops postOp) uint64 {
	if ops&postRound != 0 {
		v += 1 << (bits - 1)
	}
	if ops&postHalve != 0 {
		v >>= 1
	}
	if ops&postSaturateSigned != 0 {
		r, _ := saturate(v, bits, true)
		return r
	}
	if ops&postSaturateUnsigned != 0 {
		r, _ := saturate(v, bits, false)
		return r
	}
	return uint64(v) & maskBits(bits)
}

func (s *SIMD) lane(vr uint8, i int, vf VectorFormat, signed bool) int64 {
	raw := s.V.ReadLane(vr, i, vf.ESize)
	if signed {
		return signExtendLane(raw, vf.ESize)
	}
	return int64(raw)
}

func (s *SIMD) setLane(vr uint8, i int, vf VectorFormat, v uint64) {
	s.V.WriteLane(vr, i, vf.ESize, v&maskBits(vf.ESize))
	if vf.Lanes == 1 {
		s.V.ClearUpper(vr, vf.ESize/8)
	}
}

// binaryIntOp applies fn per-lane over vn/vm into vd, with optional
// post-processing (stages 2-4 of spec.md §4.E).
func (s *SIMD) binaryIntOp(vd, vn, vm uint8, vf VectorFormat, signed bool, ops postOp, fn func(a, b int64) int64) {
	for i := 0; i < vf.Lanes; i++ {
		a := s.lane(vn, i, vf, signed)
		b := s.lane(vm, i, vf, signed)
		r := fn(a, b)
		s.setLane(vd, i, vf, applyPost(r, vf.ESize, signed, ops))
	}
}

// VADD/VSUB generalize the teacher's VADD/VSUB across every integer
// VectorFormat (spec.md §4.E primary op "add, sub").
func (s *SIMD) VADD(vd, vn, vm uint8, vf VectorFormat) {
	s.binaryIntOp(vd, vn, vm, vf, false, 0, func(a, b int64) int64 { return a + b })
}

func (s *SIMD) VSUB(vd, vn, vm uint8, vf VectorFormat) {
	s.binaryIntOp(vd, vn, vm, vf, false, 0, func(a, b int64) int64 { return a - b })
}

// VMUL multiplies lanes, truncating to the destination width (no
// widening) — the plain integer MUL form.
func (s *SIMD) VMUL(vd, vn, vm uint8, vf VectorFormat) {
	s.binaryIntOp(vd, vn, vm, vf, false, 0, func(a, b int64) int64 { return a * b })
}

// VMLA/VMLS are multiply-accumulate/-subtract: vd += vn*vm / vd -= vn*vm.
func (s *SIMD) VMLA(vd, vn, vm uint8, vf VectorFormat) {
	for i := 0; i < vf.Lanes; i++ {
		acc := s.lane(vd, i, vf, false)
		a := s.lane(vn, i, vf, false)
		b := s.lane(vm, i, vf, false)
		s.setLane(vd, i, vf, applyPost(acc+a*b, vf.ESize, false, 0))
	}
}

func (s *SIMD) VMLS(vd, vn, vm uint8, vf VectorFormat) {
	for i := 0; i < vf.Lanes; i++ {
		acc := s.lane(vd, i, vf, false)
		a := s.lane(vn, i, vf, false)
		b := s.lane(vm, i, vf, false)
		s.setLane(vd, i, vf, applyPost(acc-a*b, vf.ESize, false, 0))
	}
}

// VABS/VNEG are unary lane ops with signed saturation at the minimum
// (ABS/NEG of the most-negative value saturates, per AArch64 semantics).
func (s *SIMD) VABS(vd, vn uint8, vf VectorFormat) {
	for i := 0; i < vf.Lanes; i++ {
		a := s.lane(vn, i, vf, true)
		if a < 0 {
			a = -a
		}
		s.setLane(vd, i, vf, applyPost(a, vf.ESize, true, postSaturateSigned))
	}
}

func (s *SIMD) VNEG(vd, vn uint8, vf VectorFormat) {
	for i := 0; i < vf.Lanes; i++ {
		a := s.lane(vn, i, vf, true)
		s.setLane(vd, i, vf, applyPost(-a, vf.ESize, true, postSaturateSigned))
	}
}

// VSQADD/VSQSUB/VUQADD/VUQSUB are the saturating add/sub family.
func (s *SIMD) VSQADD(vd, vn, vm uint8, vf VectorFormat) {
	s.binaryIntOp(vd, vn, vm, vf, true, postSaturateSigned, func(a, b int64) int64 { return a + b })
}

func (s *SIMD) VSQSUB(vd, vn, vm uint8, vf VectorFormat) {
	s.binaryIntOp(vd, vn, vm, vf, true, postSaturateSigned, func(a, b int64) int64 { return a - b })
}

func (s *SIMD) VUQADD(vd, vn, vm uint8, vf VectorFormat) {
	s.binaryIntOp(vd, vn, vm, vf, false, postSaturateUnsigned, func(a, b int64) int64 { return a + b })
}

func (s *SIMD) VUQSUB(vd, vn, vm uint8, vf VectorFormat) {
	s.binaryIntOp(vd, vn, vm, vf, false, postSaturateUnsigned, func(a, b int64) int64 { return a - b })
}

// VSHL/VSSHR/VUSHR implement the shift family; right shifts may be
// rounding (add half before truncating) per spec.md §4.E stage 2.
func (s *SIMD) VSHL(vd, vn uint8, vf VectorFormat, amount uint8) {
	for i := 0; i < vf.Lanes; i++ {
		a := s.lane(vn, i, vf, false)
		s.setLane(vd, i, vf, applyPost(a<<amount, vf.ESize, false, 0))
	}
}

func (s *SIMD) shiftRight(vd, vn uint8, vf VectorFormat, amount uint8, signed, rounding bool) {
	for i := 0; i < vf.Lanes; i++ {
		a := s.lane(vn, i, vf, signed)
		if rounding && amount > 0 {
			a += 1 << (amount - 1)
		}
		a >>= amount
		s.setLane(vd, i, vf, uint64(a)&maskBits(vf.ESize))
	}
}

func (s *SIMD) VSSHR(vd, vn uint8, vf VectorFormat, amount uint8) {
	s.shiftRight(vd, vn, vf, amount, true, false)
}

func (s *SIMD) VUSHR(vd, vn uint8, vf VectorFormat, amount uint8) {
	s.shiftRight(vd, vn, vf, amount, false, false)
}

func (s *SIMD) VSRSHR(vd, vn uint8, vf VectorFormat, amount uint8) {
	s.shiftRight(vd, vn, vf, amount, true, true)
}

func (s *SIMD) VURSHR(vd, vn uint8, vf VectorFormat, amount uint8) {
	s.shiftRight(vd, vn, vf, amount, false, true)
}

// VCMEQ/VCMGT/VCMGE/VCMHI/VCMHS produce an all-ones/all-zero mask lane.
func (s *SIMD) vcmp(vd, vn, vm uint8, vf VectorFormat, signed bool, fn func(a, b int64) bool) {
	for i := 0; i < vf.Lanes; i++ {
		a := s.lane(vn, i, vf, signed)
		b := s.lane(vm, i, vf, signed)
		if fn(a, b) {
			s.setLane(vd, i, vf, maskBits(vf.ESize))
		} else {
			s.setLane(vd, i, vf, 0)
		}
	}
}

func (s *SIMD) VCMEQ(vd, vn, vm uint8, vf VectorFormat) {
	s.vcmp(vd, vn, vm, vf, false, func(a, b int64) bool { return a == b })
}
func (s *SIMD) VCMGT(vd, vn, vm uint8, vf VectorFormat) {
	s.vcmp(vd, vn, vm, vf, true, func(a, b int64) bool { return a > b })
}
func (s *SIMD) VCMGE(vd, vn, vm uint8, vf VectorFormat) {
	s.vcmp(vd, vn, vm, vf, true, func(a, b int64) bool { return a >= b })
}
func (s *SIMD) VCMHI(vd, vn, vm uint8, vf VectorFormat) {
	s.vcmp(vd, vn, vm, vf, false, func(a, b int64) bool { return uint64(a) > uint64(b) })
}
func (s *SIMD) VCMHS(vd, vn, vm uint8, vf VectorFormat) {
	s.vcmp(vd, vn, vm, vf, false, func(a, b int64) bool { return uint64(a) >= uint64(b) })
}

// VSMAX/VSMIN/VUMAX/VUMIN are lane-wise min/max.
func (s *SIMD) VSMAX(vd, vn, vm uint8, vf VectorFormat) {
	s.binaryIntOp(vd, vn, vm, vf, true, 0, func(a, b int64) int64 { return maxI64(a, b) })
}
func (s *SIMD) VSMIN(vd, vn, vm uint8, vf VectorFormat) {
	s.binaryIntOp(vd, vn, vm, vf, true, 0, func(a, b int64) int64 { return minI64(a, b) })
}
func (s *SIMD) VUMAX(vd, vn, vm uint8, vf VectorFormat) {
	s.binaryIntOp(vd, vn, vm, vf, false, 0, func(a, b int64) int64 {
		if uint64(a) > uint64(b) {
			return a
		}
		return b
	})
}
func (s *SIMD) VUMIN(vd, vn, vm uint8, vf VectorFormat) {
	s.binaryIntOp(vd, vn, vm, vf, false, 0, func(a, b int64) int64 {
		if uint64(a) < uint64(b) {
			return a
		}
		return b
	})
}

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
func minI64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Cross-lane reductions: ADDV/SMAXV/SMINV/UMAXV/UMINV (spec.md §4.E).
func (s *SIMD) ADDV(vn uint8, vf VectorFormat) uint64 {
	var acc int64
	for i := 0; i < vf.Lanes; i++ {
		acc += s.lane(vn, i, vf, false)
	}
	return uint64(acc) & maskBits(vf.ESize)
}

func (s *SIMD) SMAXV(vn uint8, vf VectorFormat) int64 {
	m := s.lane(vn, 0, vf, true)
	for i := 1; i < vf.Lanes; i++ {
		m = maxI64(m, s.lane(vn, i, vf, true))
	}
	return m
}

func (s *SIMD) SMINV(vn uint8, vf VectorFormat) int64 {
	m := s.lane(vn, 0, vf, true)
	for i := 1; i < vf.Lanes; i++ {
		m = minI64(m, s.lane(vn, i, vf, true))
	}
	return m
}

func (s *SIMD) UMAXV(vn uint8, vf VectorFormat) uint64 {
	m := uint64(s.lane(vn, 0, vf, false))
	for i := 1; i < vf.Lanes; i++ {
		v := uint64(s.lane(vn, i, vf, false))
		if v > m {
			m = v
		}
	}
	return m
}

func (s *SIMD) UMINV(vn uint8, vf VectorFormat) uint64 {
	m := uint64(s.lane(vn, 0, vf, false))
	for i := 1; i < vf.Lanes; i++ {
		v := uint64(s.lane(vn, i, vf, false))
		if v < m {
			m = v
		}
	}
	return m
}

// SADDLV/UADDLV accumulate into a double-width result.
func (s *SIMD) SADDLV(vn uint8, vf VectorFormat) int64 {
	var acc int64
	for i := 0; i < vf.Lanes; i++ {
		acc += s.lane(vn, i, vf, true)
	}
	return acc
}

func (s *SIMD) UADDLV(vn uint8, vf VectorFormat) uint64 {
	var acc uint64
	for i := 0; i < vf.Lanes; i++ {
		acc += uint64(s.lane(vn, i, vf, false))
	}
	return acc
}

// TBL/TBX index a 1-4 register table by byte lanes of vm; TBL zeros
// out-of-range indices, TBX leaves the destination lane untouched
// (spec.md §4.E).
func (s *SIMD) TBL(vd uint8, table []uint8, vm uint8, vf VectorFormat) {
	tableLen := len(table) * 16
	for i := 0; i < vf.Lanes; i++ {
		idx := s.V.ReadLane(vm, i, 8)
		if int(idx) >= tableLen {
			s.V.WriteLane(vd, i, 8, 0)
			continue
		}
		reg := table[idx/16]
		s.V.WriteLane(vd, i, 8, s.V.ReadLane(reg, int(idx%16), 8))
	}
}

func (s *SIMD) TBX(vd uint8, table []uint8, vm uint8, vf VectorFormat) {
	tableLen := len(table) * 16
	for i := 0; i < vf.Lanes; i++ {
		idx := s.V.ReadLane(vm, i, 8)
		if int(idx) >= tableLen {
			continue
		}
		reg := table[idx/16]
		s.V.WriteLane(vd, i, 8, s.V.ReadLane(reg, int(idx%16), 8))
	}
}

// Narrowing/widening: XTN truncates each double-width lane into the
// low half of the destination; SXTL/UXTL widen the low half of a
// source into full-width destination lanes (spec.md §4.E).
func (s *SIMD) XTN(vd, vn uint8, narrow, wide VectorFormat) {
	for i := 0; i < narrow.Lanes; i++ {
		v := s.V.ReadLane(vn, i, wide.ESize)
		s.V.WriteLane(vd, i, narrow.ESize, v&maskBits(narrow.ESize))
	}
}

func (s *SIMD) SXTL(vd, vn uint8, narrow, wide VectorFormat) {
	for i := 0; i < narrow.Lanes; i++ {
		v := signExtendLane(s.V.ReadLane(vn, i, narrow.ESize), narrow.ESize)
		s.V.WriteLane(vd, i, wide.ESize, uint64(v)&maskBits(wide.ESize))
	}
}

func (s *SIMD) UXTL(vd, vn uint8, narrow, wide VectorFormat) {
	for i := 0; i < narrow.Lanes; i++ {
		v := s.V.ReadLane(vn, i, narrow.ESize)
		s.V.WriteLane(vd, i, wide.ESize, v)
	}
}

// --- FP lane ops, generalizing the teacher's per-arrangement vfadd/
// vfsub/vfmul functions (`_examples/syifan-m2sim2/emu/simd.go`) across
// a shared float32/float64 kernel and the full FPCR/NaN discipline
// from fp.go. ---

func (s *SIMD) fpBinary32(vd, vn, vm uint8, lanes int, fpcr FPCR, fn func(a, b float32) float32) {
	for i := 0; i < lanes; i++ {
		aBits := uint32(s.V.ReadLane(vn, i, 32))
		bBits := uint32(s.V.ReadLane(vm, i, 32))
		if r, isNaN := ProcessNaNs32(aBits, bBits, fpcr); isNaN {
			s.V.WriteLane(vd, i, 32, uint64(r))
			continue
		}
		a := math.Float32frombits(aBits)
		b := math.Float32frombits(bBits)
		s.V.WriteLane(vd, i, 32, uint64(math.Float32bits(fn(a, b))))
	}
}

func (s *SIMD) fpBinary64(vd, vn, vm uint8, lanes int, fpcr FPCR, fn func(a, b float64) float64) {
	for i := 0; i < lanes; i++ {
		aBits := s.V.ReadLane(vn, i, 64)
		bBits := s.V.ReadLane(vm, i, 64)
		if r, isNaN := ProcessNaNs64(aBits, bBits, fpcr); isNaN {
			s.V.WriteLane(vd, i, 64, r)
			continue
		}
		a := math.Float64frombits(aBits)
		b := math.Float64frombits(bBits)
		s.V.WriteLane(vd, i, 64, math.Float64bits(fn(a, b)))
	}
}

func (s *SIMD) VFADD(vd, vn, vm uint8, vf VectorFormat, fpcr FPCR) {
	if vf.ESize == 32 {
		s.fpBinary32(vd, vn, vm, vf.Lanes, fpcr, func(a, b float32) float32 { return a + b })
	} else {
		s.fpBinary64(vd, vn, vm, vf.Lanes, fpcr, func(a, b float64) float64 { return a + b })
	}
}

func (s *SIMD) VFSUB(vd, vn, vm uint8, vf VectorFormat, fpcr FPCR) {
	if vf.ESize == 32 {
		s.fpBinary32(vd, vn, vm, vf.Lanes, fpcr, func(a, b float32) float32 { return a - b })
	} else {
		s.fpBinary64(vd, vn, vm, vf.Lanes, fpcr, func(a, b float64) float64 { return a - b })
	}
}

func (s *SIMD) VFMUL(vd, vn, vm uint8, vf VectorFormat, fpcr FPCR) {
	if vf.ESize == 32 {
		s.fpBinary32(vd, vn, vm, vf.Lanes, fpcr, func(a, b float32) float32 { return a * b })
	} else {
		s.fpBinary64(vd, vn, vm, vf.Lanes, fpcr, func(a, b float64) float64 { return a * b })
	}
}

func (s *SIMD) VFDIV(vd, vn, vm uint8, vf VectorFormat, fpcr FPCR) {
	if vf.ESize == 32 {
		s.fpBinary32(vd, vn, vm, vf.Lanes, fpcr, func(a, b float32) float32 { return a / b })
	} else {
		s.fpBinary64(vd, vn, vm, vf.Lanes, fpcr, func(a, b float64) float64 { return a / b })
	}
}

func (s *SIMD) VFMAX(vd, vn, vm uint8, vf VectorFormat, fpcr FPCR) {
	if vf.ESize == 32 {
		s.fpBinary32(vd, vn, vm, vf.Lanes, fpcr, func(a, b float32) float32 { return float32(math.Max(float64(a), float64(b))) })
	} else {
		s.fpBinary64(vd, vn, vm, vf.Lanes, fpcr, math.Max)
	}
}

func (s *SIMD) VFMIN(vd, vn, vm uint8, vf VectorFormat, fpcr FPCR) {
	if vf.ESize == 32 {
		s.fpBinary32(vd, vn, vm, vf.Lanes, fpcr, func(a, b float32) float32 { return float32(math.Min(float64(a), float64(b))) })
	} else {
		s.fpBinary64(vd, vn, vm, vf.Lanes, fpcr, math.Min)
	}
}

// FADDP/FMAXP/FMINP pairwise-combine adjacent lanes across vn:vm
// concatenated, per spec.md §4.E.
func (s *SIMD) FADDP(vd, vn, vm uint8, vf VectorFormat, fpcr FPCR) {
	s.pairwiseFP(vd, vn, vm, vf, fpcr, func(a, b float64) float64 { return a + b })
}

func (s *SIMD) FMAXP(vd, vn, vm uint8, vf VectorFormat, fpcr FPCR) {
	s.pairwiseFP(vd, vn, vm, vf, fpcr, math.Max)
}

func (s *SIMD) FMINP(vd, vn, vm uint8, vf VectorFormat, fpcr FPCR) {
	s.pairwiseFP(vd, vn, vm, vf, fpcr, math.Min)
}

func (s *SIMD) pairwiseFP(vd, vn, vm uint8, vf VectorFormat, fpcr FPCR, fn func(a, b float64) float64) {
	concat := make([]float64, 0, vf.Lanes*2)
	readAll := func(vr uint8) {
		for i := 0; i < vf.Lanes; i++ {
			if vf.ESize == 32 {
				concat = append(concat, float64(s.V.ReadLaneF32(vr, i)))
			} else {
				concat = append(concat, s.V.ReadLaneF64(vr, i))
			}
		}
	}
	readAll(vn)
	readAll(vm)
	for i := 0; i < vf.Lanes; i++ {
		r := fn(concat[2*i], concat[2*i+1])
		if vf.ESize == 32 {
			s.V.WriteLaneF32(vd, i, float32(r))
		} else {
			s.V.WriteLaneF64(vd, i, r)
		}
	}
	_ = fpcr
}

// LDR128/STR128 and DUP adapt the teacher's NEON load/store and
// broadcast helpers (`_examples/syifan-m2sim2/emu/simd.go`).
func (s *SIMD) LDR128(vd uint8, mem *Memory, addr uint64) {
	lo, hi := mem.Read128(addr)
	s.V.WriteLane(vd, 0, 64, lo)
	s.V.WriteLane(vd, 1, 64, hi)
}

func (s *SIMD) STR128(vd uint8, mem *Memory, addr uint64) {
	lo := s.V.ReadLane(vd, 0, 64)
	hi := s.V.ReadLane(vd, 1, 64)
	mem.Write128(addr, lo, hi)
}

// DUP broadcasts a scalar value across every lane of the destination
// VectorFormat.
func (s *SIMD) DUP(vd uint8, value uint64, vf VectorFormat) {
	for i := 0; i < vf.Lanes; i++ {
		s.setLane(vd, i, vf, value&maskBits(vf.ESize))
	}
}

// DUPElement broadcasts lane idx of vn across every lane of vd.
func (s *SIMD) DUPElement(vd, vn uint8, idx int, vf VectorFormat) {
	v := s.V.ReadLane(vn, idx, vf.ESize)
	s.DUP(vd, v, vf)
}
