package emu_test

import (
	"bytes"
	"io"
	"strings"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/a64core/emu"
)

var _ = Describe("System", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
		sys     *emu.System
	)

	BeforeEach(func() {
		regFile = emu.NewRegFile()
		memory = emu.NewMemory()
		fds := emu.NewFDTable(strings.NewReader(""), io.Discard, io.Discard)
		sys = emu.NewSystem(regFile, memory, emu.NewFeatureSet(), fds, logr.Discard())
	})

	Describe("MRS/MSR on NZCV", func() {
		It("MRS packs the flags into bits 31:28", func() {
			regFile.Flags = emu.NZCV{N: true, C: true}
			sys.MRS(0, emu.SysNZCV)

			Expect(regFile.ReadX(0, false)).To(Equal(uint64(emu.NZCV{N: true, C: true}.Pack())))
		})

		It("MSR unpacks bits 31:28 back into the flags", func() {
			regFile.WriteX(0, uint64((emu.NZCV{Z: true, V: true}).Pack()), false)
			sys.MSR(0, emu.SysNZCV)

			Expect(regFile.Flags).To(Equal(emu.NZCV{Z: true, V: true}))
		})
	})

	Describe("MRS on SysRNDR", func() {
		It("writes a pseudo-random value and clears NZCV", func() {
			regFile.Flags = emu.NZCV{N: true, Z: true, C: true, V: true}
			sys.MRS(0, emu.SysRNDR)

			Expect(regFile.Flags).To(Equal(emu.NZCV{}))
		})

		It("is deterministic across two fresh Systems with the same seed", func() {
			otherRegFile := emu.NewRegFile()
			otherFds := emu.NewFDTable(strings.NewReader(""), io.Discard, io.Discard)
			other := emu.NewSystem(otherRegFile, emu.NewMemory(), emu.NewFeatureSet(), otherFds, logr.Discard())

			sys.MRS(0, emu.SysRNDR)
			other.MRS(0, emu.SysRNDR)

			Expect(regFile.ReadX(0, false)).To(Equal(otherRegFile.ReadX(0, false)))
		})
	})

	Describe("CheckBTIHint", func() {
		It("accepts a non-indirect landing under any hint kind", func() {
			regFile.BTCur = emu.BTypeDefault
			Expect(sys.CheckBTIHint(emu.BTIPlain)).To(BeTrue())
			Expect(sys.CheckBTIHint(emu.BTIc)).To(BeTrue())
		})

		It("BTIc accepts a BranchAndLink landing; BTIPlain does not", func() {
			regFile.BTCur = emu.BTypeBranchAndLink
			Expect(sys.CheckBTIHint(emu.BTIc)).To(BeTrue())
			Expect(sys.CheckBTIHint(emu.BTIPlain)).To(BeFalse())
		})
	})

	Describe("CLREX", func() {
		It("drops a monitor established by MarkExclusive", func() {
			memory.MarkExclusive(0x1000, 8)
			Expect(memory.IsExclusive(0x1000, 8)).To(BeTrue())

			sys.CLREX()
			Expect(memory.IsExclusive(0x1000, 8)).To(BeFalse())
		})
	})

	Describe("trace mask", func() {
		It("TraceEnabled reflects the bits set by SetTrace", func() {
			Expect(sys.TraceEnabled(emu.TraceREGS)).To(BeFalse())

			sys.SetTrace(emu.TraceREGS | emu.TraceBRANCH)
			Expect(sys.TraceEnabled(emu.TraceREGS)).To(BeTrue())
			Expect(sys.TraceEnabled(emu.TraceBRANCH)).To(BeTrue())
			Expect(sys.TraceEnabled(emu.TraceDISASM)).To(BeFalse())
		})
	})
})

var _ = Describe("HostTrapHandler", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
		sys     *emu.System
		stderr  *bytes.Buffer
		stdout  *bytes.Buffer
		handler *emu.HostTrapHandler
	)

	BeforeEach(func() {
		regFile = emu.NewRegFile()
		memory = emu.NewMemory()
		stderr = &bytes.Buffer{}
		stdout = &bytes.Buffer{}
		fds := emu.NewFDTable(strings.NewReader(""), stdout, stderr)
		sys = emu.NewSystem(regFile, memory, emu.NewFeatureSet(), fds, logr.Discard())
		handler = emu.NewHostTrapHandler(sys, stderr)
	})

	It("HLTUnreachable reports ErrHostTrapAbort", func() {
		err := handler.Dispatch(emu.HLTUnreachable, 0x1000, 0xD4200000)
		Expect(err).To(HaveOccurred())

		var simErr *emu.SimError
		Expect(err).To(BeAssignableToTypeOf(simErr))
	})

	It("HLTTrace sets the trace mask from X0", func() {
		regFile.WriteX(0, uint64(emu.TraceREGS), false)
		err := handler.Dispatch(emu.HLTTrace, 0x1000, 0)

		Expect(err).NotTo(HaveOccurred())
		Expect(sys.TraceEnabled(emu.TraceREGS)).To(BeTrue())
	})

	It("HLTLog dumps registers to stderr", func() {
		err := handler.Dispatch(emu.HLTLog, 0x1000, 0)

		Expect(err).NotTo(HaveOccurred())
		Expect(stderr.String()).To(ContainSubstring("PC  ="))
	})

	It("HLTPrintf formats %d/%u/%x/%s through fd 1", func() {
		msg := "n=%d u=%u x=%x s=%s\x00"
		msgAddr := uint64(0x9000)
		for i := 0; i < len(msg); i++ {
			memory.Write8(msgAddr+uint64(i), msg[i])
		}
		strAddr := uint64(0xA000)
		for i, c := range []byte("hi\x00") {
			memory.Write8(strAddr+uint64(i), c)
		}

		regFile.WriteX(0, msgAddr, false)
		regFile.WriteX(1, ^uint64(0), false) // %d: -1
		regFile.WriteX(2, 255, false)        // %u
		regFile.WriteX(3, 0xFF, false)       // %x
		regFile.WriteX(4, strAddr, false)    // %s

		err := handler.Dispatch(emu.HLTPrintf, 0x1000, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(stdout.String()).To(Equal("n=-1 u=255 x=ff s=hi"))
	})

	It("HLTSaveCPUFeatures/HLTRestoreCPUFeatures round-trip through the feature stack", func() {
		sys2 := emu.NewSystem(regFile, memory, emu.NewFeatureSet(emu.FeatureFP), fds(stdout, stderr), logr.Discard())
		handler2 := emu.NewHostTrapHandler(sys2, stderr)

		Expect(handler2.Dispatch(emu.HLTSaveCPUFeatures, 0, 0)).NotTo(HaveOccurred())
		Expect(handler2.Dispatch(emu.HLTRestoreCPUFeatures, 0, 0)).NotTo(HaveOccurred())
	})

	It("an unrecognized HLT imm reports ErrUnallocated", func() {
		err := handler.Dispatch(0xFFFF, 0x1000, 0)
		Expect(err).To(HaveOccurred())
	})
})

func fds(stdout, stderr io.Writer) *emu.FDTable {
	return emu.NewFDTable(strings.NewReader(""), stdout, stderr)
}
