package emu_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/a64core/emu"
)

var _ = Describe("SVE", func() {
	var (
		vregs *emu.VRegFile
		sve   *emu.SVE
	)

	BeforeEach(func() {
		vregs = emu.NewVRegFile(emu.VL128)
		sve = emu.NewSVE(vregs)
	})

	Describe("PTRUE/PFALSE", func() {
		It("sets the leading N lanes true for a VL2 pattern and zeroes the rest", func() {
			sve.PTRUE(0, 32, emu.PatVL2, false)

			Expect(vregs.PredBit(0, 0*4)).To(BeTrue())
			Expect(vregs.PredBit(0, 1*4)).To(BeTrue())
			Expect(vregs.PredBit(0, 2*4)).To(BeFalse())
			Expect(vregs.PredBit(0, 3*4)).To(BeFalse())
		})

		It("PatALL sets every lane true", func() {
			sve.PTRUE(0, 32, emu.PatALL, false)

			for k := 0; k < 4; k++ {
				Expect(vregs.PredBit(0, k*4)).To(BeTrue())
			}
		})

		It("PFALSE clears every bit", func() {
			sve.PTRUE(0, 32, emu.PatALL, false)
			sve.PFALSE(0)

			for k := 0; k < 4; k++ {
				Expect(vregs.PredBit(0, k*4)).To(BeFalse())
			}
		})
	})

	Describe("PTEST", func() {
		It("computes N/Z/C from the first, any, and last gated bits", func() {
			sve.PTRUE(1, 32, emu.PatALL, false) // pg: all 4 lanes active

			vregs.SetPredBit(2, 0*4, true)
			vregs.SetPredBit(2, 1*4, false)
			vregs.SetPredBit(2, 2*4, true)
			vregs.SetPredBit(2, 3*4, false)

			flags := sve.PTEST(1, 2, 32)
			Expect(flags).To(Equal(emu.NZCV{N: true, C: true}))
		})

		It("sets Z when no gated lane is true", func() {
			sve.PTRUE(1, 32, emu.PatALL, false)
			sve.PFALSE(2)

			flags := sve.PTEST(1, 2, 32)
			Expect(flags.Z).To(BeTrue())
		})
	})

	Describe("PredLogical", func() {
		It("AND requires both operands true under the gate", func() {
			sve.PTRUE(0, 32, emu.PatALL, false) // pg

			vregs.SetPredBit(1, 0*4, true)
			vregs.SetPredBit(1, 1*4, true)
			vregs.SetPredBit(2, 0*4, true)
			vregs.SetPredBit(2, 1*4, false)

			sve.PredLogical(3, 0, 1, 2, 32, emu.PredAND, false)

			Expect(vregs.PredBit(3, 0*4)).To(BeTrue())
			Expect(vregs.PredBit(3, 1*4)).To(BeFalse())
		})

		It("forces the result false for ungated lanes regardless of operands", func() {
			sve.PFALSE(0) // pg: nothing gated

			vregs.SetPredBit(1, 0*4, true)
			vregs.SetPredBit(2, 0*4, true)

			sve.PredLogical(3, 0, 1, 2, 32, emu.PredORR, false)

			Expect(vregs.PredBit(3, 0*4)).To(BeFalse())
		})

		It("SEL ignores the gate-forces-false rule and merges by gate instead", func() {
			sve.PFALSE(0)
			vregs.SetPredBit(0, 1*4, true) // gate true only on lane 1

			vregs.SetPredBit(1, 0*4, true)
			vregs.SetPredBit(1, 1*4, true)
			vregs.SetPredBit(2, 0*4, false)
			vregs.SetPredBit(2, 1*4, false)

			sve.PredLogical(3, 0, 1, 2, 32, emu.PredSEL, false)

			// lane0: gate false -> takes pm (false); lane1: gate true -> takes pn (true).
			Expect(vregs.PredBit(3, 0*4)).To(BeFalse())
			Expect(vregs.PredBit(3, 1*4)).To(BeTrue())
		})
	})

	Describe("INDEX", func() {
		It("fills lanes with start + k*step", func() {
			sve.INDEX(0, 32, 5, 2)

			Expect(vregs.ReadLane(0, 0, 32)).To(Equal(uint64(5)))
			Expect(vregs.ReadLane(0, 1, 32)).To(Equal(uint64(7)))
			Expect(vregs.ReadLane(0, 2, 32)).To(Equal(uint64(9)))
			Expect(vregs.ReadLane(0, 3, 32)).To(Equal(uint64(11)))
		})
	})

	Describe("DUP (SVE scalar broadcast)", func() {
		It("broadcasts a value across every lane", func() {
			sve.DUP(0, 32, 0x42)

			for k := 0; k < 4; k++ {
				Expect(vregs.ReadLane(0, k, 32)).To(Equal(uint64(0x42)))
			}
		})
	})

	Describe("INSR", func() {
		It("shifts lanes toward the high index and inserts the scalar at lane 0", func() {
			vregs.WriteLane(0, 0, 32, 1)
			vregs.WriteLane(0, 1, 32, 2)
			vregs.WriteLane(0, 2, 32, 3)
			vregs.WriteLane(0, 3, 32, 4)

			sve.INSR(0, 32, 99)

			Expect(vregs.ReadLane(0, 0, 32)).To(Equal(uint64(99)))
			Expect(vregs.ReadLane(0, 1, 32)).To(Equal(uint64(1)))
			Expect(vregs.ReadLane(0, 2, 32)).To(Equal(uint64(2)))
			Expect(vregs.ReadLane(0, 3, 32)).To(Equal(uint64(3)))
		})
	})

	Describe("UNPK", func() {
		It("sign-extends the low half of narrow lanes into wide lanes", func() {
			vregs.WriteLane(0, 0, 8, 0x80) // -128
			vregs.WriteLane(0, 1, 8, 0x01)

			sve.UNPK(1, 0, 8, false, true)

			Expect(vregs.ReadLane(1, 0, 16)).To(Equal(uint64(0xFF80)))
			Expect(vregs.ReadLane(1, 1, 16)).To(Equal(uint64(0x0001)))
		})

		It("zero-extends when signed is false", func() {
			vregs.WriteLane(0, 0, 8, 0x80)

			sve.UNPK(1, 0, 8, false, false)

			Expect(vregs.ReadLane(1, 0, 16)).To(Equal(uint64(0x0080)))
		})
	})

	Describe("CMP/CMPImm", func() {
		It("CMP compares vector lanes under the governing predicate", func() {
			sve.PTRUE(0, 32, emu.PatALL, false) // pg
			vregs.WriteLane(1, 0, 32, 5)
			vregs.WriteLane(2, 0, 32, 3)

			sve.CMP(3, 0, 1, 2, 32, emu.CmpGT, true)

			Expect(vregs.PredBit(3, 0*4)).To(BeTrue())
		})

		It("CMP with CmpHI splits signed/unsigned interpretation", func() {
			sve.PTRUE(0, 32, emu.PatALL, false)
			vregs.WriteLane(1, 0, 32, 0xFFFFFFFF) // -1 signed, max unsigned
			vregs.WriteLane(2, 0, 32, 1)

			sve.CMP(3, 0, 1, 2, 32, emu.CmpHI, false)
			Expect(vregs.PredBit(3, 0*4)).To(BeTrue())

			sve.CMP(3, 0, 1, 2, 32, emu.CmpGT, true)
			Expect(vregs.PredBit(3, 0*4)).To(BeFalse())
		})

		It("CMPImm compares against a sign-extended immediate", func() {
			sve.PTRUE(0, 32, emu.PatALL, false)
			vregs.WriteLane(1, 0, 32, 10)

			sve.CMPImm(2, 0, 1, 32, 5, emu.CmpGT, true)
			Expect(vregs.PredBit(2, 0*4)).To(BeTrue())
		})
	})

	Describe("ActiveCount", func() {
		It("counts the gated true lanes", func() {
			sve.PTRUE(0, 32, emu.PatVL2, false)
			Expect(sve.ActiveCount(0, 32)).To(Equal(2))
		})
	})

	Describe("IncDecSaturate", func() {
		It("saturates an unsigned decrement below zero to zero", func() {
			Expect(emu.IncDecSaturate(5, -10, 32, false)).To(Equal(uint64(0)))
		})

		It("passes an in-range unsigned increment through unchanged", func() {
			Expect(emu.IncDecSaturate(5, 3, 32, false)).To(Equal(uint64(8)))
		})

		It("saturates a signed 64-bit overflow to INT64_MAX", func() {
			got := emu.IncDecSaturate(math.MaxInt64, 1, 64, true)
			Expect(got).To(Equal(uint64(math.MaxInt64)))
		})

		It("passes an in-range signed value through unchanged", func() {
			got := emu.IncDecSaturate(-5, 3, 64, true)
			Expect(int64(got)).To(Equal(int64(-2)))
		})
	})

	Describe("WHILE", func() {
		It("latches false for every subsequent lane once the comparison fails", func() {
			flags := sve.WHILE(0, 32, 0, 2, emu.CmpLT)

			Expect(vregs.PredBit(0, 0*4)).To(BeTrue())  // 0 < 2
			Expect(vregs.PredBit(0, 1*4)).To(BeTrue())  // 1 < 2
			Expect(vregs.PredBit(0, 2*4)).To(BeFalse()) // 2 < 2 fails, latches off
			Expect(vregs.PredBit(0, 3*4)).To(BeFalse())
			Expect(flags).To(Equal(emu.NZCV{N: true, C: true}))
		})

		It("WHILELO compares unsigned even with a negative-looking rn", func() {
			flags := sve.WHILE(0, 32, -1, 2, emu.CmpLO)
			// uint64(-1) is enormous, so the very first comparison fails.
			Expect(vregs.PredBit(0, 0*4)).To(BeFalse())
			Expect(flags.Z).To(BeTrue())
		})
	})

	Describe("CTERM", func() {
		It("CTERMEQ sets N from equality and leaves V false", func() {
			n, v := emu.CTERM(5, 5, true)
			Expect(n).To(BeTrue())
			Expect(v).To(BeFalse())
		})

		It("CTERMNE sets N from inequality", func() {
			n, _ := emu.CTERM(5, 6, false)
			Expect(n).To(BeTrue())
		})
	})

	Describe("SEL (vector merge)", func() {
		It("merges zn/zm lanes under pg", func() {
			sve.PTRUE(0, 32, emu.PatVL2, false) // lanes 0,1 true; 2,3 false
			vregs.WriteLane(1, 0, 32, 1)
			vregs.WriteLane(1, 1, 32, 2)
			vregs.WriteLane(1, 2, 32, 3)
			vregs.WriteLane(1, 3, 32, 4)
			vregs.WriteLane(2, 0, 32, 10)
			vregs.WriteLane(2, 1, 32, 20)
			vregs.WriteLane(2, 2, 32, 30)
			vregs.WriteLane(2, 3, 32, 40)

			sve.SEL(3, 0, 1, 2, 32)

			Expect(vregs.ReadLane(3, 0, 32)).To(Equal(uint64(1)))
			Expect(vregs.ReadLane(3, 1, 32)).To(Equal(uint64(2)))
			Expect(vregs.ReadLane(3, 2, 32)).To(Equal(uint64(30)))
			Expect(vregs.ReadLane(3, 3, 32)).To(Equal(uint64(40)))
		})
	})

	Describe("LDR/STR (contiguous predicated)", func() {
		It("LDR zeroes inactive lanes and loads active ones from memory", func() {
			mem := emu.NewMemory()
			mem.Write32(0x9000, 111)
			mem.Write32(0x9004, 222)
			mem.Write32(0x9008, 333)
			mem.Write32(0x900C, 444)

			sve.PTRUE(0, 32, emu.PatVL2, false) // lanes 0,1 active

			sve.LDR(1, 0, mem, 0x9000, 32)

			Expect(vregs.ReadLane(1, 0, 32)).To(Equal(uint64(111)))
			Expect(vregs.ReadLane(1, 1, 32)).To(Equal(uint64(222)))
			Expect(vregs.ReadLane(1, 2, 32)).To(Equal(uint64(0)))
			Expect(vregs.ReadLane(1, 3, 32)).To(Equal(uint64(0)))
		})

		It("STR skips inactive lanes, leaving the underlying memory untouched", func() {
			mem := emu.NewMemory()
			mem.Write32(0x9008, 0xDEAD)

			sve.PTRUE(0, 32, emu.PatVL2, false) // lanes 0,1 active; 2,3 inactive
			vregs.WriteLane(1, 0, 32, 1)
			vregs.WriteLane(1, 1, 32, 2)
			vregs.WriteLane(1, 2, 32, 3)
			vregs.WriteLane(1, 3, 32, 4)

			sve.STR(1, 0, mem, 0x9000, 32)

			Expect(mem.Read32(0x9000)).To(Equal(uint32(1)))
			Expect(mem.Read32(0x9004)).To(Equal(uint32(2)))
			Expect(mem.Read32(0x9008)).To(Equal(uint32(0xDEAD)))
		})
	})

	Describe("unimplemented gather/scatter/FP-serial-reduce", func() {
		It("GatherLoad reports ErrUnimplementedSVE", func() {
			err := sve.GatherLoad()
			Expect(err).To(HaveOccurred())

			var simErr *emu.SimError
			Expect(err).To(BeAssignableToTypeOf(simErr))
		})

		It("ScatterStore reports ErrUnimplementedSVE", func() {
			Expect(sve.ScatterStore()).To(HaveOccurred())
		})

		It("FPSerialReduce reports ErrUnimplementedSVE", func() {
			Expect(sve.FPSerialReduce()).To(HaveOccurred())
		})
	})

	Describe("MOVPRFX latch", func() {
		It("records the prefix and ClearMovprfx drops it", func() {
			sve.MOVPRFX(5)
			sve.ClearMovprfx()
			// No public getter exists; re-prefixing after clearing must not panic.
			sve.MOVPRFX(5)
		})
	})
})
