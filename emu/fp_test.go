package emu_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/a64core/emu"
)

var _ = Describe("FP16 conversions", func() {
	It("F16ToF32 converts a normal value exactly", func() {
		Expect(emu.F16ToF32(0x3C00, emu.FPCR{})).To(Equal(float32(1.0)))
	})

	It("F32ToF16 packs a normal float32 back to the same bits", func() {
		Expect(emu.F32ToF16(1.0, emu.FPCR{})).To(Equal(uint16(0x3C00)))
	})

	It("F16ToF32 scales a subnormal by 2^-24", func() {
		got := emu.F16ToF32(0x0001, emu.FPCR{})
		Expect(got).To(Equal(float32(math.Ldexp(1, -24))))
	})

	It("F16ToF32 produces +Inf for the exponent-max/mantissa-zero pattern", func() {
		got := emu.F16ToF32(0x7C00, emu.FPCR{})
		Expect(math.IsInf(float64(got), 1)).To(BeTrue())
	})

	It("F16ToF32 produces a NaN for the exponent-max/mantissa-nonzero pattern", func() {
		got := emu.F16ToF32(0x7E00, emu.FPCR{})
		Expect(math.IsNaN(float64(got))).To(BeTrue())
	})

	It("F32ToF16 overflows a too-large float32 to infinity", func() {
		Expect(emu.F32ToF16(1e10, emu.FPCR{})).To(Equal(uint16(0x7C00)))
	})
})

var _ = Describe("NaN propagation", func() {
	It("ProcessNaNs32 quietens a signalling NaN operand", func() {
		sNaN := uint32(0x7F800001) // signalling: exponent all-1, low mantissa bit set, quiet bit clear
		result, isNaN := emu.ProcessNaNs32(sNaN, math.Float32bits(2.0), emu.FPCR{})

		Expect(isNaN).To(BeTrue())
		Expect(result & (uint32(1) << 22)).NotTo(BeZero())
	})

	It("ProcessNaNs32 returns false when neither operand is NaN", func() {
		_, isNaN := emu.ProcessNaNs32(math.Float32bits(1.0), math.Float32bits(2.0), emu.FPCR{})
		Expect(isNaN).To(BeFalse())
	})

	It("ProcessNaNs64 forces the default NaN when FPCR.DN is set", func() {
		nan := math.Float64bits(math.NaN())
		result, isNaN := emu.ProcessNaNs64(nan, math.Float64bits(3.0), emu.FPCR{DN: true})

		Expect(isNaN).To(BeTrue())
		Expect(result).To(Equal(uint64(0x7FF8_0000_0000_0000)))
	})
})

var _ = Describe("Fixed-point conversions", func() {
	It("FixedToFloat32 scales a signed fixed-point value by 2^-fbits", func() {
		Expect(emu.FixedToFloat32(8, 3, true)).To(Equal(float32(1.0)))
	})

	It("FixedToFloat64 treats the input as unsigned when signed=false", func() {
		Expect(emu.FixedToFloat64(4, 2, false)).To(Equal(1.0))
	})

	It("FloatToFixedValue rounds ties to even after scaling", func() {
		Expect(emu.FloatToFixedValue(1.5, 0, emu.RModeTieEven)).To(Equal(2.0))
		Expect(emu.FloatToFixedValue(2.5, 0, emu.RModeTieEven)).To(Equal(2.0))
	})

	It("FloatToFixedValue truncates toward zero in RModeZero", func() {
		Expect(emu.FloatToFixedValue(1.9, 0, emu.RModeZero)).To(Equal(1.0))
		Expect(emu.FloatToFixedValue(-1.9, 0, emu.RModeZero)).To(Equal(-1.0))
	})
})

var _ = Describe("FPToIntSaturate", func() {
	It("passes an in-range signed value through unchanged", func() {
		Expect(emu.FPToIntSaturate(5.0, 8, true)).To(Equal(uint64(5)))
	})

	It("clamps a too-large signed value to INT_MAX for the width", func() {
		Expect(emu.FPToIntSaturate(200.0, 8, true)).To(Equal(uint64(127)))
	})

	It("clamps a too-small unsigned value to zero", func() {
		Expect(emu.FPToIntSaturate(-5.0, 8, false)).To(Equal(uint64(0)))
	})

	It("clamps a too-large unsigned value to UINT_MAX for the width", func() {
		Expect(emu.FPToIntSaturate(300.0, 8, false)).To(Equal(uint64(255)))
	})

	It("saturates a NaN input to zero", func() {
		Expect(emu.FPToIntSaturate(math.NaN(), 8, true)).To(Equal(uint64(0)))
	})
})

var _ = Describe("FJCVTZS", func() {
	It("reports exact when the truncated value equals the input", func() {
		result, exact := emu.FJCVTZS(3.0)
		Expect(result).To(Equal(uint32(3)))
		Expect(exact).To(BeTrue())
	})

	It("reports inexact when truncation drops a fractional part", func() {
		result, exact := emu.FJCVTZS(3.7)
		Expect(result).To(Equal(uint32(3)))
		Expect(exact).To(BeFalse())
	})

	It("reports inexact for NaN/Inf without panicking", func() {
		_, exact := emu.FJCVTZS(math.NaN())
		Expect(exact).To(BeFalse())
	})
})

var _ = Describe("FRInt32/FRInt64", func() {
	It("round to the nearest even integer by default", func() {
		Expect(emu.FRInt64(2.5, emu.RModeTieEven)).To(Equal(2.0))
		Expect(emu.FRInt32(2.5, emu.RModeTieEven)).To(Equal(float32(2.0)))
	})
})

var _ = Describe("FPCompareFlags", func() {
	It("sets C and V for an unordered (NaN) comparison", func() {
		Expect(emu.FPCompareFlags(true, false, false)).To(Equal(emu.NZCV{C: true, V: true}))
	})

	It("sets Z and C for an equal comparison", func() {
		Expect(emu.FPCompareFlags(false, false, true)).To(Equal(emu.NZCV{Z: true, C: true}))
	})

	It("sets N for a less-than comparison", func() {
		Expect(emu.FPCompareFlags(false, true, false)).To(Equal(emu.NZCV{N: true}))
	})

	It("sets only C for a greater-than comparison", func() {
		Expect(emu.FPCompareFlags(false, false, false)).To(Equal(emu.NZCV{C: true}))
	})
})
