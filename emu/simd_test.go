package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/a64core/emu"
)

var _ = Describe("SIMD", func() {
	var (
		vregs *emu.VRegFile
		simd  *emu.SIMD
	)

	BeforeEach(func() {
		vregs = emu.NewVRegFile(emu.VL128)
		simd = emu.NewSIMD(vregs)
	})

	setLanes := func(vr uint8, vf emu.VectorFormat, values ...uint64) {
		for i, v := range values {
			vregs.WriteLane(vr, i, vf.ESize, v)
		}
	}
	readLanes := func(vr uint8, vf emu.VectorFormat) []uint64 {
		out := make([]uint64, vf.Lanes)
		for i := range out {
			out[i] = vregs.ReadLane(vr, i, vf.ESize)
		}
		return out
	}

	Describe("integer arithmetic", func() {
		It("VADD adds every lane of a 4S vector", func() {
			setLanes(0, emu.VF4S, 1, 2, 3, 4)
			setLanes(1, emu.VF4S, 10, 20, 30, 40)
			simd.VADD(2, 0, 1, emu.VF4S)

			Expect(readLanes(2, emu.VF4S)).To(Equal([]uint64{11, 22, 33, 44}))
		})

		It("VSUB subtracts lane-wise", func() {
			setLanes(0, emu.VF2D, 100, 200)
			setLanes(1, emu.VF2D, 40, 50)
			simd.VSUB(2, 0, 1, emu.VF2D)

			Expect(readLanes(2, emu.VF2D)).To(Equal([]uint64{60, 150}))
		})

		It("VMUL truncates to the destination width without widening", func() {
			setLanes(0, emu.VF8B, 200)
			setLanes(1, emu.VF8B, 200)
			simd.VMUL(2, 0, 1, emu.VF8B)

			// 200*200 = 40000 = 0x9C40; low byte 0x40.
			Expect(readLanes(2, emu.VF8B)[0]).To(Equal(uint64(0x40)))
		})

		It("VMLA accumulates vn*vm into vd", func() {
			setLanes(2, emu.VF2S, 5, 0)
			setLanes(0, emu.VF2S, 3, 0)
			setLanes(1, emu.VF2S, 4, 0)
			simd.VMLA(2, 0, 1, emu.VF2S)

			Expect(readLanes(2, emu.VF2S)[0]).To(Equal(uint64(17)))
		})
	})

	Describe("VABS/VNEG", func() {
		It("VABS takes the absolute value of each signed lane", func() {
			negFive := int64(-5)
			vregs.WriteLane(0, 0, 32, uint64(negFive)&0xFFFFFFFF)
			simd.VABS(1, 0, emu.VF1S)

			Expect(vregs.ReadLane(1, 0, 32)).To(Equal(uint64(5)))
		})

		It("VNEG saturates the most-negative signed value instead of overflowing", func() {
			vregs.WriteLane(0, 0, 8, 0x80) // INT8_MIN
			simd.VNEG(1, 0, emu.VF1B)

			Expect(vregs.ReadLane(1, 0, 8)).To(Equal(uint64(0x7F)))
		})
	})

	Describe("saturating add/sub", func() {
		It("VSQADD clamps to INT8_MAX instead of wrapping", func() {
			vregs.WriteLane(0, 0, 8, 0x7F)
			vregs.WriteLane(1, 0, 8, 1)
			simd.VSQADD(2, 0, 1, emu.VF1B)

			Expect(vregs.ReadLane(2, 0, 8)).To(Equal(uint64(0x7F)))
		})

		It("VUQSUB clamps to zero instead of wrapping negative", func() {
			vregs.WriteLane(0, 0, 8, 1)
			vregs.WriteLane(1, 0, 8, 2)
			simd.VUQSUB(2, 0, 1, emu.VF1B)

			Expect(vregs.ReadLane(2, 0, 8)).To(Equal(uint64(0)))
		})
	})

	Describe("shifts", func() {
		It("VSHL shifts left and truncates to the lane width", func() {
			vregs.WriteLane(0, 0, 8, 0x01)
			simd.VSHL(1, 0, emu.VF1B, 7)

			Expect(vregs.ReadLane(1, 0, 8)).To(Equal(uint64(0x80)))
		})

		It("VSSHR arithmetic-shifts a negative lane, sign-extending", func() {
			vregs.WriteLane(0, 0, 8, 0x80) // -128
			simd.VSSHR(1, 0, emu.VF1B, 4)

			Expect(vregs.ReadLane(1, 0, 8)).To(Equal(uint64(0xF8)))
		})

		It("VURSHR rounds before truncating", func() {
			vregs.WriteLane(0, 0, 8, 0x03) // 3 >> 1 rounded = (3+1)>>1 = 2
			simd.VURSHR(1, 0, emu.VF1B, 1)

			Expect(vregs.ReadLane(1, 0, 8)).To(Equal(uint64(2)))
		})
	})

	Describe("compares", func() {
		It("VCMEQ sets all-ones on equal lanes and all-zero otherwise", func() {
			setLanes(0, emu.VF2S, 5, 9)
			setLanes(1, emu.VF2S, 5, 1)
			simd.VCMEQ(2, 0, 1, emu.VF2S)

			Expect(readLanes(2, emu.VF2S)).To(Equal([]uint64{0xFFFFFFFF, 0}))
		})

		It("VCMHI compares unsigned even when the sign bit is set", func() {
			vregs.WriteLane(0, 0, 8, 0xFF) // 255 unsigned, -1 signed
			vregs.WriteLane(1, 0, 8, 1)
			simd.VCMHI(2, 0, 1, emu.VF1B)

			Expect(vregs.ReadLane(2, 0, 8)).To(Equal(uint64(0xFF)))
		})
	})

	Describe("min/max", func() {
		It("VSMAX picks the signed maximum", func() {
			vregs.WriteLane(0, 0, 8, 0x80) // -128
			vregs.WriteLane(1, 0, 8, 0x01) // 1
			simd.VSMAX(2, 0, 1, emu.VF1B)

			Expect(vregs.ReadLane(2, 0, 8)).To(Equal(uint64(1)))
		})

		It("VUMAX picks the unsigned maximum", func() {
			vregs.WriteLane(0, 0, 8, 0x80)
			vregs.WriteLane(1, 0, 8, 0x01)
			simd.VUMAX(2, 0, 1, emu.VF1B)

			Expect(vregs.ReadLane(2, 0, 8)).To(Equal(uint64(0x80)))
		})
	})

	Describe("cross-lane reductions", func() {
		It("ADDV sums all lanes, truncated to the element width", func() {
			setLanes(0, emu.VF4S, 1, 2, 3, 4)
			Expect(simd.ADDV(0, emu.VF4S)).To(Equal(uint64(10)))
		})

		It("SMAXV finds the signed maximum across lanes", func() {
			setLanes(0, emu.VF8B, 0x80, 0x7F, 0, 0, 0, 0, 0, 0) // -128, 127, zeros
			Expect(simd.SMAXV(0, emu.VF8B)).To(Equal(int64(127)))
		})

		It("UMINV finds the unsigned minimum across lanes", func() {
			setLanes(0, emu.VF8B, 0x80, 0x01, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05)
			Expect(simd.UMINV(0, emu.VF8B)).To(Equal(uint64(1)))
		})
	})

	Describe("widen/narrow", func() {
		It("UXTL zero-extends the low half into full-width lanes", func() {
			vregs.WriteLane(0, 0, 8, 0xFF)
			simd.UXTL(1, 0, emu.VF8B, emu.VF8H)

			Expect(vregs.ReadLane(1, 0, 16)).To(Equal(uint64(0xFF)))
		})

		It("SXTL sign-extends the low half", func() {
			vregs.WriteLane(0, 0, 8, 0x80)
			simd.SXTL(1, 0, emu.VF8B, emu.VF8H)

			Expect(vregs.ReadLane(1, 0, 16)).To(Equal(uint64(0xFF80)))
		})

		It("XTN truncates a wide lane into the narrow destination", func() {
			vregs.WriteLane(0, 0, 16, 0x1234)
			simd.XTN(1, 0, emu.VF8B, emu.VF8H)

			Expect(vregs.ReadLane(1, 0, 8)).To(Equal(uint64(0x34)))
		})
	})

	Describe("floating point", func() {
		It("VFADD adds float32 lanes", func() {
			vregs.WriteLaneF32(0, 0, 1.5)
			vregs.WriteLaneF32(1, 0, 2.5)
			simd.VFADD(2, 0, 1, emu.VF1S, emu.FPCR{})

			Expect(vregs.ReadLaneF32(2, 0)).To(Equal(float32(4.0)))
		})

		It("VFMUL multiplies float64 lanes", func() {
			vregs.WriteLaneF64(0, 0, 2.0)
			vregs.WriteLaneF64(1, 0, 3.0)
			simd.VFMUL(2, 0, 1, emu.VF1D, emu.FPCR{})

			Expect(vregs.ReadLaneF64(2, 0)).To(Equal(6.0))
		})
	})

	Describe("DUP/DUPElement", func() {
		It("DUP broadcasts a scalar across every lane", func() {
			simd.DUP(0, 0x42, emu.VF4S)
			Expect(readLanes(0, emu.VF4S)).To(Equal([]uint64{0x42, 0x42, 0x42, 0x42}))
		})

		It("DUPElement broadcasts one lane of a source register", func() {
			setLanes(0, emu.VF4S, 1, 2, 3, 4)
			simd.DUPElement(1, 0, 2, emu.VF4S)

			Expect(readLanes(1, emu.VF4S)).To(Equal([]uint64{3, 3, 3, 3}))
		})
	})

	Describe("LDR128/STR128", func() {
		It("round-trips a 128-bit vector through memory", func() {
			mem := emu.NewMemory()
			vregs.WriteLane(0, 0, 64, 0x1111111111111111)
			vregs.WriteLane(0, 1, 64, 0x2222222222222222)

			simd.STR128(0, mem, 0x9000)
			simd.LDR128(1, mem, 0x9000)

			Expect(vregs.ReadLane(1, 0, 64)).To(Equal(uint64(0x1111111111111111)))
			Expect(vregs.ReadLane(1, 1, 64)).To(Equal(uint64(0x2222222222222222)))
		})
	})
})
