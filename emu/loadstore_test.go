package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/a64core/emu"
)

var _ = Describe("LoadStoreUnit", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
		lsu     *emu.LoadStoreUnit
	)

	BeforeEach(func() {
		regFile = emu.NewRegFile()
		memory = emu.NewMemory()
		lsu = emu.NewLoadStoreUnit(regFile, memory)
	})

	Describe("ResolveAddr", func() {
		It("AddrOffset computes base+offset without writing Rn back", func() {
			regFile.WriteX(0, 0x1000, false)
			addr, err := lsu.ResolveAddr(0, emu.AddrOffset, 0x20)

			Expect(err).NotTo(HaveOccurred())
			Expect(addr).To(Equal(uint64(0x1020)))
			Expect(regFile.ReadX(0, false)).To(Equal(uint64(0x1000)))
		})

		It("AddrPreIndex writes Rn back before the access", func() {
			regFile.WriteX(0, 0x1000, false)
			addr, err := lsu.ResolveAddr(0, emu.AddrPreIndex, 0x20)

			Expect(err).NotTo(HaveOccurred())
			Expect(addr).To(Equal(uint64(0x1020)))
			Expect(regFile.ReadX(0, false)).To(Equal(uint64(0x1020)))
		})

		It("AddrPostIndex returns the unmodified base; write-back is deferred", func() {
			regFile.WriteX(0, 0x1000, false)
			addr, err := lsu.ResolveAddr(0, emu.AddrPostIndex, 0x20)

			Expect(err).NotTo(HaveOccurred())
			Expect(addr).To(Equal(uint64(0x1000)))
			Expect(regFile.ReadX(0, false)).To(Equal(uint64(0x1000)))
		})
	})

	Describe("WriteBack", func() {
		It("applies the post-index update only for AddrPostIndex", func() {
			regFile.WriteX(0, 0, false)
			lsu.WriteBack(0, emu.AddrPostIndex, 0x1000, 0x20)
			Expect(regFile.ReadX(0, false)).To(Equal(uint64(0x1020)))

			regFile.WriteX(1, 0, false)
			lsu.WriteBack(1, emu.AddrOffset, 0x1000, 0x20)
			Expect(regFile.ReadX(1, false)).To(Equal(uint64(0)))
		})
	})

	Describe("scalar loads/stores", func() {
		It("round-trips a byte through STRB/LDRB", func() {
			regFile.WriteX(0, 0xAB, false)
			lsu.STRB(0, 0x2000)
			lsu.LDRB(1, 0x2000)
			Expect(regFile.ReadX(1, false)).To(Equal(uint64(0xAB)))
		})

		It("round-trips a doubleword through STR64/LDR64", func() {
			regFile.WriteX(0, 0x1122334455667788, false)
			lsu.STR64(0, 0x2000)
			lsu.LDR64(1, 0x2000)
			Expect(regFile.ReadX(1, false)).To(Equal(uint64(0x1122334455667788)))
		})

		It("LDRSB64 sign-extends a negative byte to 64 bits", func() {
			memory.Write8(0x2000, 0x80)
			lsu.LDRSB64(0, 0x2000)
			Expect(regFile.ReadX(0, false)).To(Equal(^uint64(0) &^ 0x7F))
		})

		It("LDRSW sign-extends a negative word to 64 bits", func() {
			memory.Write32(0x2000, 0x80000000)
			lsu.LDRSW(0, 0x2000)
			Expect(regFile.ReadX(0, false)).To(Equal(uint64(0xFFFFFFFF80000000)))
		})
	})

	Describe("pair loads/stores", func() {
		It("STPX/LDPX access two consecutive doublewords", func() {
			regFile.WriteX(0, 0x1111, false)
			regFile.WriteX(1, 0x2222, false)
			lsu.STPX(0, 1, 0x3000)

			lsu.LDPX(2, 3, 0x3000)
			Expect(regFile.ReadX(2, false)).To(Equal(uint64(0x1111)))
			Expect(regFile.ReadX(3, false)).To(Equal(uint64(0x2222)))
		})

		It("LDPSW sign-extends both lanes independently", func() {
			memory.Write32(0x3000, 0x80000000)
			memory.Write32(0x3004, 0x00000001)
			lsu.LDPSW(0, 1, 0x3000)

			Expect(regFile.ReadX(0, false)).To(Equal(uint64(0xFFFFFFFF80000000)))
			Expect(regFile.ReadX(1, false)).To(Equal(uint64(1)))
		})
	})

	Describe("exclusive family", func() {
		It("STXR succeeds and clears the monitor when it still covers the address", func() {
			regFile.WriteX(1, 0x42, false)
			lsu.LDXR(0, 0x4000, 8, false)
			lsu.STXR(2, 1, 0x4000, 8, false)

			Expect(regFile.ReadX(2, false)).To(Equal(uint64(0)))
			Expect(memory.Read64(0x4000)).To(Equal(uint64(0x42)))
		})

		It("STXR fails when no LDXR established the monitor", func() {
			regFile.WriteX(1, 0x42, false)
			lsu.STXR(2, 1, 0x4000, 8, false)

			Expect(regFile.ReadX(2, false)).To(Equal(uint64(1)))
		})

		It("STXR fails after the monitor has already been consumed", func() {
			regFile.WriteX(1, 0x42, false)
			lsu.LDXR(0, 0x4000, 8, false)
			lsu.STXR(2, 1, 0x4000, 8, false)

			lsu.STXR(3, 1, 0x4000, 8, false)
			Expect(regFile.ReadX(3, false)).To(Equal(uint64(1)))
		})
	})

	Describe("CAS", func() {
		It("swaps in Rt and reports the observed value when it matches Rs", func() {
			memory.Write64(0x5000, 0x10)
			regFile.WriteX(0, 0x10, false) // Rs: expected
			regFile.WriteX(1, 0x99, false) // Rt: new value

			err := lsu.CAS(0, 1, 0x5000, 8, false, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(regFile.ReadX(0, false)).To(Equal(uint64(0x10)))
			Expect(memory.Read64(0x5000)).To(Equal(uint64(0x99)))
		})

		It("leaves memory unchanged and reports the observed value on mismatch", func() {
			memory.Write64(0x5000, 0x10)
			regFile.WriteX(0, 0x11, false)
			regFile.WriteX(1, 0x99, false)

			err := lsu.CAS(0, 1, 0x5000, 8, false, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(regFile.ReadX(0, false)).To(Equal(uint64(0x10)))
			Expect(memory.Read64(0x5000)).To(Equal(uint64(0x10)))
		})
	})

	Describe("SWP", func() {
		It("exchanges Rs into memory and the prior value into Rt", func() {
			memory.Write64(0x6000, 0x10)
			regFile.WriteX(0, 0x99, false)

			lsu.SWP(0, 1, 0x6000, 8)
			Expect(memory.Read64(0x6000)).To(Equal(uint64(0x99)))
			Expect(regFile.ReadX(1, false)).To(Equal(uint64(0x10)))
		})
	})

	Describe("LDOp", func() {
		It("LDADD adds Rs into memory and returns the pre-value in Rt", func() {
			memory.Write64(0x7000, 5)
			regFile.WriteX(0, 3, false)

			lsu.LDOp(emu.AtomicADD, 0, 1, 0x7000, 8)
			Expect(regFile.ReadX(1, false)).To(Equal(uint64(5)))
			Expect(memory.Read64(0x7000)).To(Equal(uint64(8)))
		})

		It("LDUMAX stores the larger unsigned value", func() {
			memory.Write64(0x7000, 5)
			regFile.WriteX(0, 3, false)

			lsu.LDOp(emu.AtomicUMAX, 0, 1, 0x7000, 8)
			Expect(memory.Read64(0x7000)).To(Equal(uint64(5)))
		})

		It("LDSMIN compares as signed, not unsigned", func() {
			negOne := int64(-1)
			memory.Write64(0x7000, uint64(negOne))
			regFile.WriteX(0, 1, false)

			lsu.LDOp(emu.AtomicSMIN, 0, 1, 0x7000, 8)
			Expect(memory.Read64(0x7000)).To(Equal(uint64(negOne)))
		})
	})

	Describe("LDAPR/STLUR", func() {
		It("STLUR then LDAPR round-trips a value through a 16-byte-aligned address", func() {
			regFile.WriteX(0, 0xCAFEBABE, false)
			err := lsu.STLUR(0, 0x8000, 8)
			Expect(err).NotTo(HaveOccurred())

			err = lsu.LDAPR(1, 0x8000, 8)
			Expect(err).NotTo(HaveOccurred())
			Expect(regFile.ReadX(1, false)).To(Equal(uint64(0xCAFEBABE)))
		})

		It("rejects an access that crosses a 16-byte line", func() {
			err := lsu.STLUR(0, 0x800C, 8)
			Expect(err).To(HaveOccurred())
		})
	})
})
