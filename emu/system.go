package emu

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
)

// SysReg names an MSR/MRS target register (spec.md §4.J).
type SysReg uint8

const (
	SysNZCV SysReg = iota
	SysFPCR
	SysRNDR
	SysRNDRRS
)

// rng is the deterministic 48-bit linear-congruential RNDR source
// (spec.md §5 "three sixteen-bit words of state"; §9 Open Question
// decision: kept deterministic for test reproducibility even though
// the architecture permits true randomness).
type rng struct {
	s0, s1, s2 uint16
}

func newRNG() *rng {
	return &rng{s0: 0x330E, s1: 0xABCD, s2: 0x1234}
}

// next draws the next 48-bit LCG value using the POSIX drand48
// recurrence (multiplier 0x5DEECE66D, increment 0xB), a standard and
// well-understood 48-bit LCG shape appropriate for a placeholder RNDR.
func (r *rng) next() uint64 {
	const mulHi, mulMid, mulLo = 0x5, 0xDEEC, 0xE66D
	const add = 0xB
	x := uint64(r.s2)<<32 | uint64(r.s1)<<16 | uint64(r.s0)
	mul := uint64(mulHi)<<32 | uint64(mulMid)<<16 | uint64(mulLo)
	x = (x*mul + add) & 0xFFFF_FFFF_FFFF
	r.s0 = uint16(x)
	r.s1 = uint16(x >> 16)
	r.s2 = uint16(x >> 32)
	return x
}

// System implements MSR/MRS, HINT, barriers, CLREX, and the HLT
// host-trap surface (spec.md §4.J), grounded on VIXL's
// Simulator::VisitException dispatch
// (`original_source/src/aarch64/simulator-aarch64.cc:4318-4358`) for
// the HLT opcode table, and adapting the teacher's
// DefaultSyscallHandler/FDTable (`syscall.go`, `fdtable.go`) into the
// kPrintf trap's stream backing since this architecture's HLT ABI
// replaces Linux SVC syscalls entirely.
type System struct {
	regFile  *RegFile
	memory   *Memory
	features *FeatureSet
	fds      *FDTable
	log      logr.Logger
	rnd      *rng

	traceMask uint32
}

func NewSystem(regFile *RegFile, memory *Memory, features *FeatureSet, fds *FDTable, log logr.Logger) *System {
	return &System{regFile: regFile, memory: memory, features: features, fds: fds, log: log, rnd: newRNG()}
}

// Trace category bits (spec.md §6 "Trace categories are bit-selectable").
const (
	TraceDISASM uint32 = 1 << iota
	TraceREGS
	TraceVREGS
	TracePREGS
	TraceSYSREGS
	TraceWRITE
	TraceBRANCH
)

func (s *System) TraceEnabled(cat uint32) bool { return s.traceMask&cat != 0 }
func (s *System) SetTrace(mask uint32)         { s.traceMask = mask }

// traceCategoryNames maps the CLI-facing `--trace` flag values (spec.md
// §6 "bit-selectable" categories) to their bitmask, for cmd/a64core.
var traceCategoryNames = map[string]uint32{
	"disasm":  TraceDISASM,
	"regs":    TraceREGS,
	"vregs":   TraceVREGS,
	"pregs":   TracePREGS,
	"sysregs": TraceSYSREGS,
	"write":   TraceWRITE,
	"branch":  TraceBRANCH,
}

// ParseTraceMask ORs together the bitmask for each named category,
// returning an error naming the first unrecognized one.
func ParseTraceMask(names []string) (uint32, error) {
	var mask uint32
	for _, name := range names {
		bit, ok := traceCategoryNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown trace category %q", name)
		}
		mask |= bit
	}
	return mask, nil
}

// MRS reads a system register into Xt.
func (s *System) MRS(rt uint8, reg SysReg) {
	switch reg {
	case SysNZCV:
		s.regFile.WriteX(rt, uint64(s.regFile.Flags.Pack()), false)
	case SysFPCR:
		s.regFile.WriteX(rt, packFPCR(s.regFile.FPCR), false)
	case SysRNDR, SysRNDRRS:
		// RNDR never fails in this implementation and clears NZCV
		// (spec.md §4.J).
		s.regFile.WriteX(rt, s.rnd.next(), false)
		s.regFile.Flags = NZCV{}
	}
}

// MSR writes Xt into a system register.
func (s *System) MSR(rt uint8, reg SysReg) {
	v := s.regFile.ReadX(rt, false)
	switch reg {
	case SysNZCV:
		s.regFile.Flags.Unpack(uint32(v))
	case SysFPCR:
		s.regFile.FPCR = unpackFPCR(uint32(v))
	}
}

func packFPCR(f FPCR) uint64 {
	var v uint32
	v |= uint32(f.RMode) << 22
	if f.FZ {
		v |= 1 << 24
	}
	if f.DN {
		v |= 1 << 25
	}
	if f.AHP {
		v |= 1 << 26
	}
	return uint64(v)
}

func unpackFPCR(v uint32) FPCR {
	return FPCR{
		RMode: RMode((v >> 22) & 0x3),
		FZ:    v&(1<<24) != 0,
		DN:    v&(1<<25) != 0,
		AHP:   v&(1<<26) != 0,
	}
}

// BTIHint is the kind carried by a BTI landing-pad hint.
type BTIHint uint8

const (
	BTIPlain BTIHint = iota
	BTIc
	BTIj
	BTIjc
)

// CheckBTIHint validates the current BType against a BTI hint at the
// current instruction, returning false on violation (spec.md §4.J).
func (s *System) CheckBTIHint(hint BTIHint) bool {
	switch hint {
	case BTIPlain:
		return CheckBTI(s.regFile.BTCur, false, false)
	case BTIc:
		return CheckBTI(s.regFile.BTCur, true, false)
	case BTIj:
		return CheckBTI(s.regFile.BTCur, false, true)
	case BTIjc:
		return CheckBTI(s.regFile.BTCur, true, true)
	default:
		return true
	}
}

// CLREX clears only the local monitor (spec.md §4.J).
func (s *System) CLREX() { s.memory.ClearExclusive() }

// DMB/DSB/ISB all emit a full host fence (spec.md §5).
func (s *System) DMB() { FenceFull() }
func (s *System) DSB() { FenceFull() }
func (s *System) ISB() { FenceFull() }

// HLT trap opcode identifiers, named after VIXL's kXxx constants
// (`original_source/...:4318-4358`, spec.md §6).
const (
	HLTUnreachable uint16 = iota
	HLTTrace
	HLTLog
	HLTPrintf
	HLTRuntimeCall
	HLTSetCPUFeatures
	HLTEnableCPUFeatures
	HLTDisableCPUFeatures
	HLTSaveCPUFeatures
	HLTRestoreCPUFeatures
)

// HostTrapHandler dispatches HLT #imm host-service opcodes. kPrintf
// writes through sys.fds (fd 1, the configured stdout); there are no
// guest open/read/write traps. dumpRegisters goes straight to stderr
// since it is a host-side diagnostic, not guest I/O.
type HostTrapHandler struct {
	sys    *System
	stderr io.Writer
}

func NewHostTrapHandler(sys *System, stderr io.Writer) *HostTrapHandler {
	return &HostTrapHandler{sys: sys, stderr: stderr}
}

// Dispatch executes the host trap named by imm. pc/opcode are passed
// through for fatal-abort diagnostics (spec.md §4.J, §7).
func (h *HostTrapHandler) Dispatch(imm uint16, pc uint64, opcode uint32) error {
	switch imm {
	case HLTUnreachable:
		return &SimError{Category: ErrHostTrapAbort, PC: pc, Opcode: opcode, Detail: "kUnreachable"}
	case HLTTrace:
		h.sys.SetTrace(uint32(h.sys.regFile.ReadX(0, false)))
		return nil
	case HLTLog:
		h.dumpRegisters()
		return nil
	case HLTPrintf:
		return h.printf()
	case HLTRuntimeCall:
		h.sys.log.V(1).Info("kRuntimeCall is not supported by this host; skipping", "pc", pc)
		return nil
	case HLTSetCPUFeatures, HLTEnableCPUFeatures, HLTDisableCPUFeatures:
		return nil // accepted without changing the feature set
	case HLTSaveCPUFeatures:
		h.sys.features.Save()
		return nil
	case HLTRestoreCPUFeatures:
		h.sys.features.Restore()
		return nil
	default:
		return &SimError{Category: ErrUnallocated, PC: pc, Opcode: opcode, Detail: fmt.Sprintf("unknown HLT imm 0x%X", imm)}
	}
}

func (h *HostTrapHandler) dumpRegisters() {
	r := h.sys.regFile
	for i := 0; i < 31; i++ {
		fmt.Fprintf(h.stderr, "X%-2d = 0x%016X\n", i, r.X[i])
	}
	fmt.Fprintf(h.stderr, "SP  = 0x%016X\nPC  = 0x%016X\n", r.SP(), r.PC())
}

// printf implements kPrintf: X0 holds a pointer to a NUL-terminated
// format string, and arguments are taken from X1 upward, left to
// right. Only %d (Xn as signed decimal), %u (Xn unsigned), %x (Xn hex)
// and %s (Xn as a NUL-terminated string pointer) consume an argument,
// and %% prints a percent sign; any other conversion, %f included, is
// copied to the output unchanged. The argument count/pattern
// parameters are not read, and D registers are never consumed.
func (h *HostTrapHandler) printf() error {
	fmtAddr := h.sys.regFile.ReadX(0, false)
	format := h.readCString(fmtAddr)
	argX := 1
	out := make([]byte, 0, len(format))
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			out = append(out, c)
			continue
		}
		i++
		switch format[i] {
		case 'd':
			out = append(out, []byte(fmt.Sprintf("%d", int64(h.sys.regFile.ReadX(uint8(argX), false))))...)
			argX++
		case 'u':
			out = append(out, []byte(fmt.Sprintf("%d", h.sys.regFile.ReadX(uint8(argX), false)))...)
			argX++
		case 'x':
			out = append(out, []byte(fmt.Sprintf("%x", h.sys.regFile.ReadX(uint8(argX), false)))...)
			argX++
		case 's':
			out = append(out, []byte(h.readCString(h.sys.regFile.ReadX(uint8(argX), false)))...)
			argX++
		case '%':
			out = append(out, '%')
		default:
			out = append(out, '%', format[i])
		}
	}
	_, err := h.sys.fds.Write(1, out)
	return err
}

func (h *HostTrapHandler) readCString(addr uint64) string {
	var b []byte
	for i := 0; i < 4096; i++ {
		c := h.sys.memory.Read8(addr + uint64(i))
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return string(b)
}
