package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/a64core/emu"
)

var _ = Describe("AddWithCarry", func() {
	It("sets Z and clears N/C/V for 0 + 0", func() {
		var flags emu.NZCV
		result := emu.AddWithCarry(true, true, 0, 0, 0, &flags)

		Expect(result).To(Equal(uint64(0)))
		Expect(flags).To(Equal(emu.NZCV{Z: true}))
	})

	It("sets N and V but not C on signed 32-bit overflow", func() {
		var flags emu.NZCV
		// INT32_MAX + 1 overflows into the sign bit.
		result := emu.AddWithCarry(false, true, 0x7FFFFFFF, 1, 0, &flags)

		Expect(result).To(Equal(uint64(0x80000000)))
		Expect(flags.N).To(BeTrue())
		Expect(flags.V).To(BeTrue())
		Expect(flags.C).To(BeFalse())
	})

	It("sets C on unsigned 64-bit carry-out", func() {
		var flags emu.NZCV
		result := emu.AddWithCarry(true, true, ^uint64(0), 1, 0, &flags)

		Expect(result).To(Equal(uint64(0)))
		Expect(flags.C).To(BeTrue())
		Expect(flags.Z).To(BeTrue())
	})

	It("leaves flags untouched when setFlags is false", func() {
		flags := emu.NZCV{N: true, Z: true, C: true, V: true}
		emu.AddWithCarry(true, false, 1, 1, 0, &flags)

		Expect(flags).To(Equal(emu.NZCV{N: true, Z: true, C: true, V: true}))
	})
})

var _ = Describe("Shift", func() {
	It("LSL shifts left and truncates to the register width", func() {
		Expect(emu.Shift(false, 1, emu.ShiftLSL, 31)).To(Equal(uint64(0x80000000)))
	})

	It("LSR shifts in zeros from the top", func() {
		Expect(emu.Shift(false, 0x80000000, emu.ShiftLSR, 4)).To(Equal(uint64(0x08000000)))
	})

	It("ASR sign-extends from the top for a negative 32-bit value", func() {
		Expect(emu.Shift(false, 0x80000000, emu.ShiftASR, 4)).To(Equal(uint64(0xF8000000)))
	})

	It("ROR rotates within the register width", func() {
		Expect(emu.Shift(false, 1, emu.ShiftROR, 1)).To(Equal(uint64(0x80000000)))
	})

	It("is a no-op for a zero shift amount", func() {
		Expect(emu.Shift(true, 0x1234, emu.ShiftLSL, 0)).To(Equal(uint64(0x1234)))
	})
})

var _ = Describe("Extend", func() {
	It("zero-extends UXTB", func() {
		Expect(emu.Extend(true, 0xFF, emu.ExtUXTB, 0)).To(Equal(uint64(0xFF)))
	})

	It("sign-extends SXTB for a negative byte", func() {
		Expect(emu.Extend(true, 0x80, emu.ExtSXTB, 0)).To(Equal(^uint64(0) &^ 0x7F))
	})

	It("applies the left shift after extension", func() {
		Expect(emu.Extend(true, 0x01, emu.ExtUXTW, 4)).To(Equal(uint64(0x10)))
	})

	It("passes X-register values through unmodified for UXTX/SXTX", func() {
		Expect(emu.Extend(true, 0xDEADBEEFCAFEBABE, emu.ExtUXTX, 0)).To(Equal(uint64(0xDEADBEEFCAFEBABE)))
	})
})

var _ = Describe("CLZ/CLS/RBIT/REV", func() {
	It("CLZ64 counts 64 for a zero input", func() {
		Expect(emu.CLZ64(0)).To(Equal(64))
	})

	It("CLZ64 counts leading zeros", func() {
		Expect(emu.CLZ64(1)).To(Equal(63))
	})

	It("CLZ32 counts leading zeros in a 32-bit value", func() {
		Expect(emu.CLZ32(0x0000_00FF)).To(Equal(24))
	})

	It("CLS64 counts bits matching the sign bit, not including it", func() {
		Expect(emu.CLS64(0xFFFF_FFFF_FFFF_FFFE)).To(Equal(62))
	})

	It("RBIT64 reverses bit order", func() {
		Expect(emu.RBIT64(1)).To(Equal(uint64(1) << 63))
	})

	It("RBIT32 reverses bit order", func() {
		Expect(emu.RBIT32(1)).To(Equal(uint32(1) << 31))
	})

	It("Rev32 reverses byte order", func() {
		Expect(emu.Rev32(0x01020304)).To(Equal(uint32(0x04030201)))
	})

	It("Rev64 reverses byte order across the full register", func() {
		Expect(emu.Rev64(0x0102030405060708)).To(Equal(uint64(0x0807060504030201)))
	})
})

var _ = Describe("CRC32", func() {
	It("is idempotent on an all-zero input with seed 0", func() {
		Expect(emu.CRC32(0, 0, 8, emu.CRC32Poly)).To(Equal(uint32(0)))
	})

	It("produces different results for CRC32 vs CRC32C polynomials", func() {
		a := emu.CRC32(0xFFFFFFFF, 0x12345678, 32, emu.CRC32Poly)
		b := emu.CRC32(0xFFFFFFFF, 0x12345678, 32, emu.CRC32CPoly)
		Expect(a).NotTo(Equal(b))
	})
})
