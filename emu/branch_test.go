package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/a64core/emu"
)

var _ = Describe("BranchUnit", func() {
	var (
		regFile *emu.RegFile
		branch  *emu.BranchUnit
	)

	BeforeEach(func() {
		regFile = emu.NewRegFile()
		branch = emu.NewBranchUnit(regFile)
	})

	Describe("CheckCondition", func() {
		It("EQ holds only when Z is set", func() {
			regFile.Flags = emu.NZCV{Z: true}
			Expect(branch.CheckCondition(emu.CondEQ)).To(BeTrue())
			regFile.Flags = emu.NZCV{Z: false}
			Expect(branch.CheckCondition(emu.CondEQ)).To(BeFalse())
		})

		It("HI holds only when C is set and Z is clear", func() {
			regFile.Flags = emu.NZCV{C: true, Z: false}
			Expect(branch.CheckCondition(emu.CondHI)).To(BeTrue())
			regFile.Flags = emu.NZCV{C: true, Z: true}
			Expect(branch.CheckCondition(emu.CondHI)).To(BeFalse())
		})

		It("GE holds when N equals V", func() {
			regFile.Flags = emu.NZCV{N: true, V: true}
			Expect(branch.CheckCondition(emu.CondGE)).To(BeTrue())
			regFile.Flags = emu.NZCV{N: true, V: false}
			Expect(branch.CheckCondition(emu.CondGE)).To(BeFalse())
		})

		It("GT additionally requires Z clear", func() {
			regFile.Flags = emu.NZCV{N: true, V: true, Z: true}
			Expect(branch.CheckCondition(emu.CondGT)).To(BeFalse())
		})

		It("AL and NV always hold regardless of flags", func() {
			regFile.Flags = emu.NZCV{}
			Expect(branch.CheckCondition(emu.CondAL)).To(BeTrue())
			Expect(branch.CheckCondition(emu.CondNV)).To(BeTrue())
		})
	})

	Describe("B/BL", func() {
		It("B adds the offset to PC and resets BTNext", func() {
			regFile.SetPC(0x1000)
			regFile.BTNext = emu.BTypeBranchAndLink
			branch.B(0x20)

			Expect(regFile.PC()).To(Equal(uint64(0x1020)))
			Expect(regFile.BTNext).To(Equal(emu.BTypeDefault))
		})

		It("B follows a negative offset backwards", func() {
			regFile.SetPC(0x1000)
			branch.B(-0x100)

			Expect(regFile.PC()).To(Equal(uint64(0xF00)))
		})

		It("BL sets LR to PC+4 before branching", func() {
			regFile.SetPC(0x2000)
			branch.BL(0x40)

			Expect(regFile.ReadX(30, false)).To(Equal(uint64(0x2004)))
			Expect(regFile.PC()).To(Equal(uint64(0x2040)))
		})
	})

	Describe("BCond", func() {
		It("branches when the condition holds", func() {
			regFile.SetPC(0x1000)
			regFile.Flags = emu.NZCV{Z: true}
			branch.BCond(0x10, emu.CondEQ)

			Expect(regFile.PC()).To(Equal(uint64(0x1010)))
		})

		It("falls through when the condition fails", func() {
			regFile.SetPC(0x1000)
			regFile.Flags = emu.NZCV{Z: false}
			branch.BCond(0x10, emu.CondEQ)

			Expect(regFile.PC()).To(Equal(uint64(0x1000)))
		})
	})

	Describe("CBZ/CBNZ", func() {
		It("CBZ branches only on a zero value", func() {
			regFile.SetPC(0x1000)
			branch.CBZ(0, 0x10)
			Expect(regFile.PC()).To(Equal(uint64(0x1010)))

			regFile.SetPC(0x1000)
			branch.CBZ(1, 0x10)
			Expect(regFile.PC()).To(Equal(uint64(0x1000)))
		})

		It("CBNZ branches only on a nonzero value", func() {
			regFile.SetPC(0x1000)
			branch.CBNZ(1, 0x10)
			Expect(regFile.PC()).To(Equal(uint64(0x1010)))

			regFile.SetPC(0x1000)
			branch.CBNZ(0, 0x10)
			Expect(regFile.PC()).To(Equal(uint64(0x1000)))
		})
	})

	Describe("TBZ/TBNZ", func() {
		It("TBZ branches when the tested bit is clear", func() {
			regFile.SetPC(0x1000)
			branch.TBZ(0b0100, 1, 0x10)
			Expect(regFile.PC()).To(Equal(uint64(0x1010)))

			regFile.SetPC(0x1000)
			branch.TBZ(0b0010, 1, 0x10)
			Expect(regFile.PC()).To(Equal(uint64(0x1000)))
		})

		It("TBNZ branches when the tested bit is set", func() {
			regFile.SetPC(0x1000)
			branch.TBNZ(0b0010, 1, 0x10)
			Expect(regFile.PC()).To(Equal(uint64(0x1010)))

			regFile.SetPC(0x1000)
			branch.TBNZ(0b0100, 1, 0x10)
			Expect(regFile.PC()).To(Equal(uint64(0x1000)))
		})
	})

	Describe("indirect branches", func() {
		It("BR jumps to Xn and sets BTNext for an unguarded source", func() {
			regFile.WriteX(5, 0x4000, false)
			branch.BR(5, false)

			Expect(regFile.PC()).To(Equal(uint64(0x4000)))
			Expect(regFile.BTNext).To(Equal(emu.BTypeFromUnguardedOrToIP))
		})

		It("BR from a guarded source yields FromGuardedNotToIP", func() {
			regFile.WriteX(5, 0x4000, false)
			branch.BR(5, true)

			Expect(regFile.BTNext).To(Equal(emu.BTypeFromGuardedNotToIP))
		})

		It("BLR sets LR and always yields BranchAndLink", func() {
			regFile.SetPC(0x3000)
			regFile.WriteX(9, 0x5000, false)
			branch.BLR(9, true)

			Expect(regFile.ReadX(30, false)).To(Equal(uint64(0x3004)))
			Expect(regFile.PC()).To(Equal(uint64(0x5000)))
			Expect(regFile.BTNext).To(Equal(emu.BTypeBranchAndLink))
		})

		It("RET jumps to Xn (X30 by convention) and resets BTNext", func() {
			regFile.WriteX(30, 0x6000, false)
			regFile.BTNext = emu.BTypeFromUnguardedOrToIP
			branch.RET(30)

			Expect(regFile.PC()).To(Equal(uint64(0x6000)))
			Expect(regFile.BTNext).To(Equal(emu.BTypeDefault))
		})
	})
})

var _ = Describe("CheckBTI", func() {
	It("always accepts a non-indirect landing", func() {
		Expect(emu.CheckBTI(emu.BTypeDefault, false, false)).To(BeTrue())
	})

	It("always accepts a landing from an unguarded page", func() {
		Expect(emu.CheckBTI(emu.BTypeFromUnguardedOrToIP, false, false)).To(BeTrue())
	})

	It("accepts BranchAndLink only when the BTI form accepts c", func() {
		Expect(emu.CheckBTI(emu.BTypeBranchAndLink, true, false)).To(BeTrue())
		Expect(emu.CheckBTI(emu.BTypeBranchAndLink, false, false)).To(BeFalse())
	})

	It("accepts FromGuardedNotToIP only when the BTI form accepts j", func() {
		Expect(emu.CheckBTI(emu.BTypeFromGuardedNotToIP, false, true)).To(BeTrue())
		Expect(emu.CheckBTI(emu.BTypeFromGuardedNotToIP, false, false)).To(BeFalse())
	})
})
