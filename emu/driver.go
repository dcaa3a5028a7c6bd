package emu

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"golang.org/x/arch/arm64/arm64asm"

	"github.com/sarchlab/a64core/insts"
)

// StepResult reports what happened during one fetch-execute cycle,
// generalizing the teacher's StepResult (`_examples/syifan-m2sim2/emu/emulator.go`)
// to the kEndOfSimAddress exit convention (spec.md §3/§6) instead of
// an SVC-exit convention.
type StepResult struct {
	Exited   bool
	ExitCode int64
	Err      error
}

// Simulator is the fetch-execute driver (spec.md §2 row K), wiring
// every execution unit built in this package behind the single
// Step/Run loop the teacher's Emulator established.
type Simulator struct {
	regFile  *RegFile
	vregFile *VRegFile
	memory   *Memory
	decoder  *insts.Decoder
	features *FeatureSet
	fds      *FDTable

	alu    *BranchUnit // condition/branch logic lives in BranchUnit
	lsu    *LoadStoreUnit
	simd   *SIMD
	sve    *SVE
	sys    *System
	traps  *HostTrapHandler
	sampler *Sampler

	log    logr.Logger
	disasm *Disassembler
	tracer *Tracer

	stdout, stderr io.Writer

	instructionCount uint64
	maxInstructions  uint64
}

// SimulatorOption is a functional option, mirroring the teacher's
// EmulatorOption pattern.
type SimulatorOption func(*Simulator)

func WithStdout(w io.Writer) SimulatorOption { return func(s *Simulator) { s.stdout = w } }
func WithStderr(w io.Writer) SimulatorOption { return func(s *Simulator) { s.stderr = w } }
func WithVectorLength(vl VectorBits) SimulatorOption {
	return func(s *Simulator) { s.vregFile.SetVL(vl) }
}
func WithMaxInstructions(max uint64) SimulatorOption {
	return func(s *Simulator) { s.maxInstructions = max }
}
func WithFeatures(features ...Feature) SimulatorOption {
	return func(s *Simulator) { s.features = NewFeatureSet(features...) }
}
func WithLogger(l logr.Logger) SimulatorOption { return func(s *Simulator) { s.log = l } }

// NewSimulator constructs a Simulator in its architected post-reset
// state (spec.md §3 Invariants), wiring register file, memory, every
// execution unit, and the host-trap/diagnostic stack.
func NewSimulator(opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		regFile:  NewRegFile(),
		vregFile: NewVRegFile(VL128),
		memory:   NewMemory(),
		decoder:  insts.NewDecoder(),
		features: NewFeatureSet(FeatureFP, FeatureLSE, FeatureCRC32),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		log:      stdr.New(nil),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.fds = NewFDTable(os.Stdin, s.stdout, s.stderr)
	s.alu = NewBranchUnit(s.regFile)
	s.lsu = NewLoadStoreUnit(s.regFile, s.memory)
	s.simd = NewSIMD(s.vregFile)
	s.sve = NewSVE(s.vregFile)
	s.sys = NewSystem(s.regFile, s.memory, s.features, s.fds, s.log)
	s.traps = NewHostTrapHandler(s.sys, s.stderr)
	s.sampler = NewSampler()
	s.disasm = NewDisassembler()
	s.tracer = NewTracer(s.sys)

	return s
}

func (s *Simulator) RegFile() *RegFile   { return s.regFile }
func (s *Simulator) VRegFile() *VRegFile { return s.vregFile }
func (s *Simulator) Memory() *Memory     { return s.memory }
func (s *Simulator) Sampler() *Sampler   { return s.sampler }
func (s *Simulator) InstructionCount() uint64 { return s.instructionCount }

// SetTraceMask enables the given bitwise-OR of Trace* categories
// (spec.md §6); pass 0 to disable tracing entirely.
func (s *Simulator) SetTraceMask(mask uint32) { s.sys.SetTrace(mask) }

// LoadProgram copies program into memory at entry and sets PC.
func (s *Simulator) LoadProgram(entry uint64, program []byte) {
	s.memory.LoadProgram(entry, program)
	s.regFile.SetPC(entry)
}

// Step executes exactly one instruction: fetch, external-decoder
// call, dispatch, PC/BType advance, movprfx-latch clear (spec.md §2/§3,
// SPEC_FULL §12). PC termination at EndOfSimAddress is detected before
// fetch to match the architected "only clean exit" (spec.md §6).
func (s *Simulator) Step() StepResult {
	if s.regFile.PC() == EndOfSimAddress {
		return StepResult{Exited: true}
	}
	if s.maxInstructions > 0 && s.instructionCount >= s.maxInstructions {
		return StepResult{Err: fmt.Errorf("max instructions reached")}
	}

	pc := s.regFile.PC()
	word := s.memory.Read32(pc)
	inst := s.decoder.Decode(word)

	if s.sys.TraceEnabled(TraceDISASM) {
		s.log.V(1).Info("disasm", "pc", fmt.Sprintf("0x%X", pc), "text", s.disasm.Text(word, pc))
	}

	s.regFile.BTCur = s.regFile.BTNext
	result := s.execute(inst, pc, word)
	s.sampler.Record(inst.Op)
	s.tracer.Regs(s.regFile)
	s.tracer.VRegs(s.vregFile)
	s.tracer.PRegs(s.vregFile)
	if inst.Format == insts.FormatBranchImm || inst.Format == insts.FormatBranchCond ||
		inst.Format == insts.FormatBranchReg || inst.Format == insts.FormatCompareBranch ||
		inst.Format == insts.FormatTestBranch {
		s.tracer.Branch(pc, s.regFile.PC(), s.regFile.PC() != pc)
	}

	// movprfx_ is a one-instruction latch regardless of whether the
	// latched instruction executed this step (SPEC_FULL §12).
	s.sve.ClearMovprfx()

	if result.Err == nil && !result.Exited && s.regFile.PC() == pc {
		s.regFile.SetPC(pc + 4)
	}

	s.instructionCount++
	return result
}

// Run executes instructions until EndOfSimAddress or a fatal error.
func (s *Simulator) Run() int64 {
	for {
		result := s.Step()
		if result.Exited {
			return result.ExitCode
		}
		if result.Err != nil {
			fmt.Fprintf(s.stderr, "a64core: %v\n", result.Err)
			if disErr, ok := result.Err.(*SimError); ok {
				s.log.Error(disErr, "fatal abort", "category", disErr.Category.String())
			}
			return -1
		}
	}
}

func (s *Simulator) execute(inst *insts.Instruction, pc uint64, word uint32) StepResult {
	if inst.Op == insts.OpUnknown {
		return StepResult{Err: &SimError{Category: ErrUnallocated, PC: pc, Opcode: word, Detail: "no matching decode class"}}
	}

	switch inst.Format {
	case insts.FormatAddSubImm, insts.FormatAddSubShifted, insts.FormatAddSubExtended, insts.FormatAddSubCarry:
		return s.executeAddSub(inst, pc)
	case insts.FormatLogicalImm, insts.FormatLogicalShifted:
		return s.executeLogical(inst)
	case insts.FormatMoveWide:
		return s.executeMoveWide(inst)
	case insts.FormatBitfield:
		return s.executeBitfield(inst)
	case insts.FormatExtract:
		return s.executeExtract(inst)
	case insts.FormatCondSelect:
		return s.executeCondSelect(inst)
	case insts.FormatCondCompareReg, insts.FormatCondCompareImm:
		return s.executeCondCompare(inst)
	case insts.FormatDP1Source:
		return s.executeDP1(inst)
	case insts.FormatDP2Source:
		return s.executeDP2(inst, pc, word)
	case insts.FormatDP3Source:
		return s.executeDP3(inst)
	case insts.FormatPCRel:
		return s.executePCRel(inst, pc)
	case insts.FormatBranchImm, insts.FormatBranchCond, insts.FormatBranchReg,
		insts.FormatCompareBranch, insts.FormatTestBranch:
		return s.executeBranch(inst, pc)
	case insts.FormatLoadStoreOffset, insts.FormatLoadStorePre, insts.FormatLoadStorePost,
		insts.FormatLoadStorePair, insts.FormatLoadStoreLiteral:
		return s.executeLoadStore(inst, pc)
	case insts.FormatLoadStoreExclusive:
		return s.executeLoadStoreExclusive(inst, pc)
	case insts.FormatSIMD3Same:
		return s.executeSIMD3Same(inst)
	case insts.FormatSIMD2RegMisc:
		return s.executeSIMD2RegMisc(inst)
	case insts.FormatSIMDShiftImm:
		return s.executeSIMDShiftImm(inst)
	case insts.FormatSIMDAcrossLanes:
		return s.executeSIMDAcrossLanes(inst)
	case insts.FormatSIMDTableLookup:
		return s.executeSIMDTableLookup(inst)
	case insts.FormatSIMDDup:
		return s.executeSIMDDup(inst)
	case insts.FormatSIMDLoadStore:
		return s.executeSIMDLoadStore128(inst)
	case insts.FormatAtomicMemory:
		return s.executeAtomic(inst, pc)
	case insts.FormatFPImmediate, insts.FormatFPIntegerConvert, insts.FormatFPCompare,
		insts.FormatFPCondSelect, insts.FormatFPCondCompare, insts.FormatFPDP1Source,
		insts.FormatFPDP2Source:
		return s.executeFP(inst)
	case insts.FormatSystem:
		return s.executeSystem(inst)
	case insts.FormatHLT:
		return s.executeHLT(inst, pc, word)
	case insts.FormatSVEPredicate:
		return s.executeSVEPredicate(inst, pc, word)
	case insts.FormatSVEIntCompareVectors:
		return s.executeSVEIntCompareVectors(inst, pc, word)
	default:
		return StepResult{Err: &SimError{Category: ErrUnallocated, PC: pc, Opcode: word, Detail: "unhandled format"}}
	}
}

// --- AddSub/Logical/MoveWide/Bitfield/Extract ---

func (s *Simulator) operandRm(inst *insts.Instruction) uint64 {
	rm := s.regFile.ReadX(inst.Rm, false)
	if !inst.Is64Bit {
		rm = uint64(uint32(rm))
	}
	switch inst.Format {
	case insts.FormatAddSubShifted, insts.FormatLogicalShifted:
		return Shift(inst.Is64Bit, rm, ShiftType(inst.ShiftType), inst.Shift)
	case insts.FormatAddSubExtended:
		return Extend(inst.Is64Bit, rm, ExtendType(inst.ExtendType), inst.Shift)
	default:
		return rm
	}
}

func (s *Simulator) executeAddSub(inst *insts.Instruction, pc uint64) StepResult {
	rn := s.regFile.ReadX(inst.Rn, inst.Format == insts.FormatAddSubImm)
	var operand uint64
	var carryIn uint64
	switch inst.Format {
	case insts.FormatAddSubImm:
		operand = inst.Imm << inst.Shift
	case insts.FormatAddSubCarry:
		operand = s.regFile.ReadX(inst.Rm, false)
		if s.regFile.Flags.C {
			carryIn = 1
		}
	default:
		operand = s.operandRm(inst)
	}
	if !inst.Is64Bit {
		rn = uint64(uint32(rn))
		operand = uint64(uint32(operand))
	}

	// AddWithCarry(x, y, carry_in) computes x + y + carry_in; SUB/SBC
	// pass the one's complement of the operand. SUB forces carry_in to
	// 1 and ADD forces it to 0; SBC and ADC keep the real carry flag
	// read above.
	isSub := inst.Op == insts.OpSUB || inst.Op == insts.OpSBC
	var flags NZCV
	var result uint64
	if isSub {
		if inst.Format != insts.FormatAddSubCarry {
			carryIn = 1
		}
		result = AddWithCarry(inst.Is64Bit, inst.SetFlags, rn, ^operand, carryIn, &flags)
	} else {
		if inst.Format != insts.FormatAddSubCarry {
			carryIn = 0
		}
		result = AddWithCarry(inst.Is64Bit, inst.SetFlags, rn, operand, carryIn, &flags)
	}
	if inst.SetFlags {
		s.regFile.Flags = flags
	}
	zeroAsSP := inst.Format == insts.FormatAddSubImm && !inst.SetFlags
	if inst.Is64Bit {
		s.regFile.WriteX(inst.Rd, result, zeroAsSP)
	} else {
		s.regFile.WriteW(inst.Rd, uint32(result), zeroAsSP)
	}
	return StepResult{}
}

func (s *Simulator) executeLogical(inst *insts.Instruction) StepResult {
	rn := s.regFile.ReadX(inst.Rn, false)
	var operand uint64
	if inst.Format == insts.FormatLogicalImm {
		field, _ := bitfieldRotateMask(inst.Is64Bit, ^uint64(0), uint8(inst.Shift), uint8(inst.Imm))
		operand = field
	} else {
		operand = s.operandRm(inst)
	}
	if !inst.Is64Bit {
		rn = uint64(uint32(rn))
		operand = uint64(uint32(operand))
	}

	var result uint64
	switch inst.Op {
	case insts.OpAND:
		result = rn & operand
	case insts.OpORR:
		result = rn | operand
	case insts.OpEOR:
		result = rn ^ operand
	case insts.OpORN:
		result = rn | ^operand
	case insts.OpBIC:
		result = rn &^ operand
	case insts.OpEON:
		result = rn ^ ^operand
	}
	result &= regMask(inst.Is64Bit)
	if inst.SetFlags {
		s.regFile.Flags.N = result&signMask(inst.Is64Bit) != 0
		s.regFile.Flags.Z = result == 0
		s.regFile.Flags.C = false
		s.regFile.Flags.V = false
	}
	zeroAsSP := inst.Format == insts.FormatLogicalImm && !inst.SetFlags
	if inst.Is64Bit {
		s.regFile.WriteX(inst.Rd, result, zeroAsSP)
	} else {
		s.regFile.WriteW(inst.Rd, uint32(result), zeroAsSP)
	}
	return StepResult{}
}

func (s *Simulator) executeMoveWide(inst *insts.Instruction) StepResult {
	imm := inst.Imm << inst.Shift
	var result uint64
	switch inst.Op {
	case insts.OpMOVZ:
		result = imm
	case insts.OpMOVN:
		result = ^imm & regMask(inst.Is64Bit)
	case insts.OpMOVK:
		cur := s.regFile.ReadX(inst.Rd, false)
		mask := uint64(0xFFFF) << inst.Shift
		result = (cur &^ mask) | imm
	}
	if inst.Is64Bit {
		s.regFile.WriteX(inst.Rd, result, false)
	} else {
		s.regFile.WriteW(inst.Rd, uint32(result), false)
	}
	return StepResult{}
}

func (s *Simulator) executeBitfield(inst *insts.Instruction) StepResult {
	rn := s.regFile.ReadX(inst.Rn, false)
	field, width := bitfieldRotateMask(inst.Is64Bit, rn, uint8(inst.Shift), uint8(inst.Imm))
	dst := s.regFile.ReadX(inst.Rd, false)
	var result uint64
	switch inst.Op {
	case insts.OpUBFM:
		result = field
	case insts.OpSBFM:
		result = uint64(SignExtendBits(field, width)) & regMask(inst.Is64Bit)
	case insts.OpBFM:
		mask := uint64(1)<<uint(width) - 1
		result = (dst &^ mask) | field
	}
	if inst.Is64Bit {
		s.regFile.WriteX(inst.Rd, result, false)
	} else {
		s.regFile.WriteW(inst.Rd, uint32(result), false)
	}
	return StepResult{}
}

func (s *Simulator) executeExtract(inst *insts.Instruction) StepResult {
	rn := s.regFile.ReadX(inst.Rn, false)
	rm := s.regFile.ReadX(inst.Rm, false)
	size := 32
	if inst.Is64Bit {
		size = 64
	}
	lsb := int(inst.Imm)
	result := (rm >> uint(lsb)) | (rn << uint(size-lsb))
	result &= regMask(inst.Is64Bit)
	if inst.Is64Bit {
		s.regFile.WriteX(inst.Rd, result, false)
	} else {
		s.regFile.WriteW(inst.Rd, uint32(result), false)
	}
	return StepResult{}
}

func (s *Simulator) executeCondSelect(inst *insts.Instruction) StepResult {
	cond := s.alu.CheckCondition(Cond(inst.Cond))
	rn := s.regFile.ReadX(inst.Rn, false)
	rm := s.regFile.ReadX(inst.Rm, false)
	var result uint64
	if cond {
		result = rn
	} else {
		switch inst.Op {
		case insts.OpCSEL:
			result = rm
		case insts.OpCSINC:
			result = rm + 1
		case insts.OpCSINV:
			result = ^rm
		case insts.OpCSNEG:
			result = uint64(-int64(rm))
		}
	}
	result &= regMask(inst.Is64Bit)
	if inst.Is64Bit {
		s.regFile.WriteX(inst.Rd, result, false)
	} else {
		s.regFile.WriteW(inst.Rd, uint32(result), false)
	}
	return StepResult{}
}

func (s *Simulator) executeCondCompare(inst *insts.Instruction) StepResult {
	if !s.alu.CheckCondition(Cond(inst.Cond)) {
		// The CCMP/CCMN immediate nzcv field packs N/Z/C/V into bits
		// 3:0, not the MRS/MSR bit-31:28 image NZCV.Unpack expects.
		nzcv := uint32(inst.Imm & 0xF)
		s.regFile.Flags.N = nzcv&0x8 != 0
		s.regFile.Flags.Z = nzcv&0x4 != 0
		s.regFile.Flags.C = nzcv&0x2 != 0
		s.regFile.Flags.V = nzcv&0x1 != 0
		return StepResult{}
	}
	rn := s.regFile.ReadX(inst.Rn, false)
	var operand uint64
	if inst.Format == insts.FormatCondCompareImm {
		operand = (inst.Imm >> 8) & 0x1F
	} else {
		operand = s.regFile.ReadX(inst.Rm, false)
	}
	var flags NZCV
	if inst.Op == insts.OpCCMP {
		AddWithCarry(inst.Is64Bit, true, rn, ^operand, 1, &flags)
	} else {
		AddWithCarry(inst.Is64Bit, true, rn, operand, 0, &flags)
	}
	s.regFile.Flags = flags
	return StepResult{}
}

func (s *Simulator) executeDP1(inst *insts.Instruction) StepResult {
	rn := s.regFile.ReadX(inst.Rn, false)
	var result uint64
	if inst.Is64Bit {
		switch inst.Op {
		case insts.OpRBIT:
			result = RBIT64(rn)
		case insts.OpCLZ:
			result = uint64(CLZ64(rn))
		case insts.OpCLS:
			result = uint64(CLS64(rn))
		case insts.OpREV16:
			result = uint64(Rev16(uint16(rn))) | uint64(Rev16(uint16(rn>>16)))<<16 | uint64(Rev16(uint16(rn>>32)))<<32 | uint64(Rev16(uint16(rn>>48)))<<48
		case insts.OpREV32:
			result = uint64(Rev32(uint32(rn))) | uint64(Rev32(uint32(rn>>32)))<<32
		case insts.OpREV64:
			result = Rev64(rn)
		}
		s.regFile.WriteX(inst.Rd, result, false)
	} else {
		w := uint32(rn)
		switch inst.Op {
		case insts.OpRBIT:
			result = uint64(RBIT32(w))
		case insts.OpCLZ:
			result = uint64(CLZ32(w))
		case insts.OpCLS:
			result = uint64(CLS32(w))
		case insts.OpREV16:
			result = uint64(Rev16(uint16(w))) | uint64(Rev16(uint16(w>>16)))<<16
		case insts.OpREV32:
			result = uint64(Rev32(w))
		}
		s.regFile.WriteW(inst.Rd, uint32(result), false)
	}
	return StepResult{}
}

func (s *Simulator) executeDP2(inst *insts.Instruction, pc uint64, word uint32) StepResult {
	rn := s.regFile.ReadX(inst.Rn, false)
	rm := s.regFile.ReadX(inst.Rm, false)
	var result uint64
	switch inst.Op {
	case insts.OpUDIV:
		if rm == 0 {
			result = 0
		} else if inst.Is64Bit {
			result = rn / rm
		} else {
			result = uint64(uint32(rn) / uint32(rm))
		}
	case insts.OpSDIV:
		sn, sm := int64(rn), int64(rm)
		if !inst.Is64Bit {
			sn, sm = int64(int32(rn)), int64(int32(rm))
		}
		switch {
		case sm == 0:
			result = 0
		case sn == laneMin(64, true) && sm == -1 && inst.Is64Bit:
			result = uint64(sn)
		default:
			result = uint64(sn / sm)
		}
	case insts.OpLSLV:
		result = Shift(inst.Is64Bit, rn, ShiftLSL, uint8(rm&regShiftMask(inst.Is64Bit)))
	case insts.OpLSRV:
		result = Shift(inst.Is64Bit, rn, ShiftLSR, uint8(rm&regShiftMask(inst.Is64Bit)))
	case insts.OpASRV:
		result = Shift(inst.Is64Bit, rn, ShiftASR, uint8(rm&regShiftMask(inst.Is64Bit)))
	case insts.OpRORV:
		result = Shift(inst.Is64Bit, rn, ShiftROR, uint8(rm&regShiftMask(inst.Is64Bit)))
	case insts.OpCRC32:
		bytes := crc32OperandBits(word)
		result = uint64(CRC32(uint32(rn), rm, bytes, CRC32Poly))
	case insts.OpCRC32C:
		bytes := crc32OperandBits(word)
		result = uint64(CRC32(uint32(rn), rm, bytes, CRC32CPoly))
	}
	if inst.Is64Bit {
		s.regFile.WriteX(inst.Rd, result, false)
	} else {
		s.regFile.WriteW(inst.Rd, uint32(result), false)
	}
	return StepResult{}
}

func regShiftMask(is64 bool) uint64 {
	if is64 {
		return 63
	}
	return 31
}

// crc32OperandBits recovers the CRC32/CRC32C operand width (8/16/32/64
// bits) from the sz field the decoder folded into the DP2Source
// opcode rather than re-deriving it via an extra Instruction field.
func crc32OperandBits(word uint32) int {
	sz := (word >> 10) & 0x3
	switch sz {
	case 0:
		return 8
	case 1:
		return 16
	case 2:
		return 32
	default:
		return 64
	}
}

func (s *Simulator) executeDP3(inst *insts.Instruction) StepResult {
	rn := s.regFile.ReadX(inst.Rn, false)
	rm := s.regFile.ReadX(inst.Rm, false)
	ra := s.regFile.ReadX(inst.Ra, false)
	var result uint64
	switch inst.Op {
	case insts.OpMADD:
		result = ra + rn*rm
	case insts.OpMSUB:
		result = ra - rn*rm
	case insts.OpSMADDL:
		result = uint64(int64(ra) + int64(int32(rn))*int64(int32(rm)))
	case insts.OpUMADDL:
		result = ra + uint64(uint32(rn))*uint64(uint32(rm))
	}
	if inst.Is64Bit {
		s.regFile.WriteX(inst.Rd, result, false)
	} else {
		s.regFile.WriteW(inst.Rd, uint32(result), false)
	}
	return StepResult{}
}

func (s *Simulator) executePCRel(inst *insts.Instruction, pc uint64) StepResult {
	var base uint64
	if inst.Op == insts.OpADRP {
		base = pc &^ 0xFFF
	} else {
		base = pc
	}
	s.regFile.WriteX(inst.Rd, uint64(int64(base)+inst.BranchOffset), false)
	return StepResult{}
}

// --- Branches ---

func (s *Simulator) executeBranch(inst *insts.Instruction, pc uint64) StepResult {
	switch inst.Op {
	case insts.OpB:
		s.alu.B(inst.BranchOffset)
	case insts.OpBL:
		s.alu.BL(inst.BranchOffset)
	case insts.OpBCond:
		s.alu.BCond(inst.BranchOffset, Cond(inst.Cond))
	case insts.OpCBZ:
		v := s.regFile.ReadX(inst.Rt, false)
		if !inst.Is64Bit {
			v = uint64(uint32(v))
		}
		s.alu.CBZ(v, inst.BranchOffset)
	case insts.OpCBNZ:
		v := s.regFile.ReadX(inst.Rt, false)
		if !inst.Is64Bit {
			v = uint64(uint32(v))
		}
		s.alu.CBNZ(v, inst.BranchOffset)
	case insts.OpTBZ:
		v := s.regFile.ReadX(inst.Rt, false)
		s.alu.TBZ(v, uint8(inst.Imm), inst.BranchOffset)
	case insts.OpTBNZ:
		v := s.regFile.ReadX(inst.Rt, false)
		s.alu.TBNZ(v, uint8(inst.Imm), inst.BranchOffset)
	case insts.OpBR:
		s.alu.BR(inst.Rn, false)
	case insts.OpBLR:
		s.alu.BLR(inst.Rn, false)
	case insts.OpRET:
		s.alu.RET(inst.Rn)
	}
	return StepResult{}
}

// --- Load/store ---

func (s *Simulator) resolveLSAddr(inst *insts.Instruction) (uint64, error) {
	var emuMode AddrMode
	switch inst.AddrMode {
	case insts.AddrPreIndex:
		emuMode = AddrPreIndex
	case insts.AddrPostIndex:
		emuMode = AddrPostIndex
	default:
		emuMode = AddrOffset
	}
	if inst.RegOffset {
		rm := s.regFile.ReadX(inst.Rm, false)
		offset := int64(Extend(true, rm, ExtendType(inst.ExtendType), inst.Shift))
		return s.lsu.ResolveAddr(inst.Rn, emuMode, offset)
	}
	return s.lsu.ResolveAddr(inst.Rn, emuMode, inst.SignedImm+int64(inst.Imm))
}

func (s *Simulator) executeLoadStore(inst *insts.Instruction, pc uint64) StepResult {
	if inst.Format == insts.FormatLoadStoreLiteral {
		addr := uint64(int64(pc) + inst.BranchOffset)
		if inst.Op == insts.OpLDRLiteral64 {
			s.lsu.LDRLiteral64(inst.Rt, addr)
		} else {
			s.lsu.LDRLiteral32(inst.Rt, addr)
		}
		return StepResult{}
	}

	if inst.Format == insts.FormatLoadStorePair {
		addr := uint64(int64(s.regFile.ReadX(inst.Rn, true)) + inst.SignedImm)
		switch inst.Op {
		case insts.OpLDPX:
			s.lsu.LDPX(inst.Rt, inst.Rt2, addr)
		case insts.OpSTPX:
			s.lsu.STPX(inst.Rt, inst.Rt2, addr)
		case insts.OpLDPW:
			s.lsu.LDPW(inst.Rt, inst.Rt2, addr)
		case insts.OpSTPW:
			s.lsu.STPW(inst.Rt, inst.Rt2, addr)
		case insts.OpLDPSW:
			s.lsu.LDPSW(inst.Rt, inst.Rt2, addr)
		}
		return StepResult{}
	}

	addr, err := s.resolveLSAddr(inst)
	if err != nil {
		return StepResult{Err: err}
	}

	switch inst.Op {
	case insts.OpLDRB:
		s.lsu.LDRB(inst.Rt, addr)
	case insts.OpSTRB:
		s.lsu.STRB(inst.Rt, addr)
	case insts.OpLDRH:
		s.lsu.LDRH(inst.Rt, addr)
	case insts.OpSTRH:
		s.lsu.STRH(inst.Rt, addr)
	case insts.OpLDR32:
		s.lsu.LDR32(inst.Rt, addr)
	case insts.OpSTR32:
		s.lsu.STR32(inst.Rt, addr)
	case insts.OpLDR64:
		s.lsu.LDR64(inst.Rt, addr)
	case insts.OpSTR64:
		s.lsu.STR64(inst.Rt, addr)
	case insts.OpLDRSB32:
		s.lsu.LDRSB32(inst.Rt, addr)
	case insts.OpLDRSB64:
		s.lsu.LDRSB64(inst.Rt, addr)
	case insts.OpLDRSH32:
		s.lsu.LDRSH32(inst.Rt, addr)
	case insts.OpLDRSH64:
		s.lsu.LDRSH64(inst.Rt, addr)
	case insts.OpLDRSW:
		s.lsu.LDRSW(inst.Rt, addr)
	}

	emuMode := AddrOffset
	switch insts.AddrMode(inst.AddrMode) {
	case insts.AddrPreIndex:
		emuMode = AddrPreIndex
	case insts.AddrPostIndex:
		emuMode = AddrPostIndex
	}
	s.lsu.WriteBack(inst.Rn, emuMode, addr, inst.SignedImm)
	return StepResult{}
}

func (s *Simulator) executeLoadStoreExclusive(inst *insts.Instruction, pc uint64) StepResult {
	addr := s.regFile.ReadX(inst.Rn, true)
	switch inst.Op {
	case insts.OpLDXR:
		s.lsu.LDXR(inst.Rt, addr, inst.Size, false)
	case insts.OpLDAXR:
		s.lsu.LDXR(inst.Rt, addr, inst.Size, true)
	case insts.OpSTXR:
		s.lsu.STXR(inst.Rs, inst.Rt, addr, inst.Size, false)
	case insts.OpSTLXR:
		s.lsu.STXR(inst.Rs, inst.Rt, addr, inst.Size, true)
	}
	return StepResult{}
}

// --- SIMD ---

func arrToVF(a insts.Arrangement) VectorFormat {
	switch a {
	case insts.Arr8B:
		return VF8B
	case insts.Arr16B:
		return VF16B
	case insts.Arr4H:
		return VF4H
	case insts.Arr8H:
		return VF8H
	case insts.Arr2S:
		return VF2S
	case insts.Arr4S:
		return VF4S
	case insts.Arr2D:
		return VF2D
	default:
		return VF1D
	}
}

func (s *Simulator) executeSIMD3Same(inst *insts.Instruction) StepResult {
	vf := arrToVF(inst.Arrangement)
	switch inst.Op {
	case insts.OpVADD:
		s.simd.VADD(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVSUB:
		s.simd.VSUB(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVMUL:
		s.simd.VMUL(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVMLA:
		s.simd.VMLA(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVMLS:
		s.simd.VMLS(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVFADD:
		s.simd.VFADD(inst.Rd, inst.Rn, inst.Rm, vf, s.regFile.FPCR)
	case insts.OpVFSUB:
		s.simd.VFSUB(inst.Rd, inst.Rn, inst.Rm, vf, s.regFile.FPCR)
	case insts.OpVFMUL:
		s.simd.VFMUL(inst.Rd, inst.Rn, inst.Rm, vf, s.regFile.FPCR)
	case insts.OpVFDIV:
		s.simd.VFDIV(inst.Rd, inst.Rn, inst.Rm, vf, s.regFile.FPCR)
	case insts.OpVSQADD:
		s.simd.VSQADD(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVSQSUB:
		s.simd.VSQSUB(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVUQADD:
		s.simd.VUQADD(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVUQSUB:
		s.simd.VUQSUB(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVCMEQ:
		s.simd.VCMEQ(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVCMGT:
		s.simd.VCMGT(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVCMGE:
		s.simd.VCMGE(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVCMHI:
		s.simd.VCMHI(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVCMHS:
		s.simd.VCMHS(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVSMAX:
		s.simd.VSMAX(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVSMIN:
		s.simd.VSMIN(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVUMAX:
		s.simd.VUMAX(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVUMIN:
		s.simd.VUMIN(inst.Rd, inst.Rn, inst.Rm, vf)
	case insts.OpVFMAX:
		s.simd.VFMAX(inst.Rd, inst.Rn, inst.Rm, vf, s.regFile.FPCR)
	case insts.OpVFMIN:
		s.simd.VFMIN(inst.Rd, inst.Rn, inst.Rm, vf, s.regFile.FPCR)
	case insts.OpFADDP:
		s.simd.FADDP(inst.Rd, inst.Rn, inst.Rm, vf, s.regFile.FPCR)
	case insts.OpFMAXP:
		s.simd.FMAXP(inst.Rd, inst.Rn, inst.Rm, vf, s.regFile.FPCR)
	case insts.OpFMINP:
		s.simd.FMINP(inst.Rd, inst.Rn, inst.Rm, vf, s.regFile.FPCR)
	}
	return StepResult{}
}

// --- SIMD 2-register-misc / shift-immediate / across-lanes / table
// lookup / dup / 128-bit load-store ---

func (s *Simulator) executeSIMD2RegMisc(inst *insts.Instruction) StepResult {
	vf := arrToVF(inst.Arrangement)
	switch inst.Op {
	case insts.OpVABS:
		s.simd.VABS(inst.Rd, inst.Rn, vf)
	case insts.OpVNEG:
		s.simd.VNEG(inst.Rd, inst.Rn, vf)
	case insts.OpXTN:
		narrow, wide := narrowWideVF(inst.Arrangement)
		s.simd.XTN(inst.Rd, inst.Rn, narrow, wide)
	case insts.OpSXTL:
		narrow, wide := narrowWideVF(inst.Arrangement)
		s.simd.SXTL(inst.Rd, inst.Rn, narrow, wide)
	case insts.OpUXTL:
		narrow, wide := narrowWideVF(inst.Arrangement)
		s.simd.UXTL(inst.Rd, inst.Rn, narrow, wide)
	}
	return StepResult{}
}

// narrowWideVF derives the narrow/wide VectorFormat pair XTN/SXTL/UXTL
// need from the decoded arrangement, which the decoder populates with
// the narrow (destination for XTN, source for SXTL/UXTL) side.
func narrowWideVF(a insts.Arrangement) (narrow, wide VectorFormat) {
	narrow = arrToVF(a)
	switch narrow.ESize {
	case 8:
		wide = VF8H
	case 16:
		wide = VF4S
	default:
		wide = VF2D
	}
	return narrow, wide
}

func (s *Simulator) executeSIMDShiftImm(inst *insts.Instruction) StepResult {
	vf := arrToVF(inst.Arrangement)
	amount := inst.Shift
	switch inst.Op {
	case insts.OpVSHL:
		s.simd.VSHL(inst.Rd, inst.Rn, vf, amount)
	case insts.OpVSSHR:
		s.simd.VSSHR(inst.Rd, inst.Rn, vf, amount)
	case insts.OpVUSHR:
		s.simd.VUSHR(inst.Rd, inst.Rn, vf, amount)
	case insts.OpVSRSHR:
		s.simd.VSRSHR(inst.Rd, inst.Rn, vf, amount)
	case insts.OpVURSHR:
		s.simd.VURSHR(inst.Rd, inst.Rn, vf, amount)
	}
	return StepResult{}
}

func (s *Simulator) executeSIMDAcrossLanes(inst *insts.Instruction) StepResult {
	vf := arrToVF(inst.Arrangement)
	var result uint64
	switch inst.Op {
	case insts.OpADDV:
		result = s.simd.ADDV(inst.Rn, vf)
	case insts.OpSMAXV:
		result = uint64(s.simd.SMAXV(inst.Rn, vf))
	case insts.OpSMINV:
		result = uint64(s.simd.SMINV(inst.Rn, vf))
	case insts.OpUMAXV:
		result = s.simd.UMAXV(inst.Rn, vf)
	case insts.OpUMINV:
		result = s.simd.UMINV(inst.Rn, vf)
	case insts.OpSADDLV:
		result = uint64(s.simd.SADDLV(inst.Rn, vf))
	case insts.OpUADDLV:
		result = s.simd.UADDLV(inst.Rn, vf)
	}
	s.vregFile.WriteLane(inst.Rd, 0, 64, result)
	return StepResult{}
}

func (s *Simulator) executeSIMDTableLookup(inst *insts.Instruction) StepResult {
	vf := arrToVF(inst.Arrangement)
	table := make([]uint8, inst.TableLen)
	for i := range table {
		table[i] = uint8((int(inst.Rn) + i) & 0x1F)
	}
	if inst.Op == insts.OpTBX {
		s.simd.TBX(inst.Rd, table, inst.Rm, vf)
	} else {
		s.simd.TBL(inst.Rd, table, inst.Rm, vf)
	}
	return StepResult{}
}

func (s *Simulator) executeSIMDDup(inst *insts.Instruction) StepResult {
	vf := arrToVF(inst.Arrangement)
	if inst.Op == insts.OpDUPElement {
		s.simd.DUPElement(inst.Rd, inst.Rn, inst.Index, vf)
		return StepResult{}
	}
	value := s.regFile.ReadX(inst.Rn, false)
	s.simd.DUP(inst.Rd, value, vf)
	return StepResult{}
}

func (s *Simulator) executeSIMDLoadStore128(inst *insts.Instruction) StepResult {
	addr := s.regFile.ReadX(inst.Rn, true) + inst.Imm
	if inst.Op == insts.OpSTR128 {
		s.simd.STR128(inst.Rd, s.memory, addr)
	} else {
		s.simd.LDR128(inst.Rd, s.memory, addr)
	}
	return StepResult{}
}

// --- Atomic/exclusive memory (LSE) ---

func (s *Simulator) executeAtomic(inst *insts.Instruction, pc uint64) StepResult {
	addr := s.regFile.ReadX(inst.Rn, true)
	switch inst.Op {
	case insts.OpCAS:
		if err := s.lsu.CAS(inst.Rs, inst.Rt, addr, inst.Size, inst.Acquire, inst.Release); err != nil {
			return StepResult{Err: err}
		}
	case insts.OpCASP:
		rs2 := (inst.Rs + 1) & 0x1F
		if err := s.lsu.CASP(inst.Rs, rs2, inst.Rt, inst.Rt2, addr, inst.Size); err != nil {
			return StepResult{Err: err}
		}
	case insts.OpSWP:
		s.lsu.SWP(inst.Rs, inst.Rt, addr, inst.Size)
	case insts.OpLDADD:
		s.lsu.LDOp(AtomicADD, inst.Rs, inst.Rt, addr, inst.Size)
	case insts.OpLDCLR:
		s.lsu.LDOp(AtomicCLR, inst.Rs, inst.Rt, addr, inst.Size)
	case insts.OpLDEOR:
		s.lsu.LDOp(AtomicEOR, inst.Rs, inst.Rt, addr, inst.Size)
	case insts.OpLDSET:
		s.lsu.LDOp(AtomicSET, inst.Rs, inst.Rt, addr, inst.Size)
	case insts.OpLDSMAX:
		s.lsu.LDOp(AtomicSMAX, inst.Rs, inst.Rt, addr, inst.Size)
	case insts.OpLDSMIN:
		s.lsu.LDOp(AtomicSMIN, inst.Rs, inst.Rt, addr, inst.Size)
	case insts.OpLDUMAX:
		s.lsu.LDOp(AtomicUMAX, inst.Rs, inst.Rt, addr, inst.Size)
	case insts.OpLDUMIN:
		s.lsu.LDOp(AtomicUMIN, inst.Rs, inst.Rt, addr, inst.Size)
	case insts.OpLDAPR:
		if err := s.lsu.LDAPR(inst.Rt, addr, inst.Size); err != nil {
			return StepResult{Err: err}
		}
	case insts.OpSTLUR:
		if err := s.lsu.STLUR(inst.Rt, addr, inst.Size); err != nil {
			return StepResult{Err: err}
		}
	}
	return StepResult{}
}

// --- System / HLT ---

func (s *Simulator) executeSystem(inst *insts.Instruction) StepResult {
	switch inst.Op {
	case insts.OpMRS:
		s.sys.MRS(inst.Rt, SysReg(inst.SysReg))
	case insts.OpMSR:
		s.sys.MSR(inst.Rt, SysReg(inst.SysReg))
	case insts.OpDMB:
		s.sys.DMB()
	case insts.OpDSB:
		s.sys.DSB()
	case insts.OpISB:
		s.sys.ISB()
	case insts.OpCLREX:
		s.sys.CLREX()
	case insts.OpHINT, insts.OpNOP:
		// NOP/ESB/CSDB/plain-HINT variants require no state change.
		// BTI-kind hints also execute as NOPs: no landing-pad check
		// against BTCur is made, so no BTI violation is ever raised.
	}
	return StepResult{}
}

func (s *Simulator) executeHLT(inst *insts.Instruction, pc uint64, word uint32) StepResult {
	if inst.Op == insts.OpBRK {
		return StepResult{Err: &SimError{Category: ErrUDF, PC: pc, Opcode: word, Detail: fmt.Sprintf("BRK #0x%X", inst.Imm16)}}
	}
	if inst.Op == insts.OpUDF {
		return StepResult{Err: &SimError{Category: ErrUDF, PC: pc, Opcode: word, Detail: "UDF"}}
	}
	if err := s.traps.Dispatch(inst.Imm16, pc, word); err != nil {
		return StepResult{Err: err}
	}
	return StepResult{}
}

// --- FP scalar ---

func (s *Simulator) readFPScalar(r uint8, double bool) float64 {
	if double {
		return s.vregFile.ReadLaneF64(r, 0)
	}
	return float64(s.vregFile.ReadLaneF32(r, 0))
}

func (s *Simulator) writeFPScalar(r uint8, double bool, v float64) {
	if double {
		s.vregFile.WriteLaneF64(r, 0, v)
	} else {
		s.vregFile.WriteLaneF32(r, 0, float32(v))
	}
}

func (s *Simulator) executeFP(inst *insts.Instruction) StepResult {
	switch inst.Format {
	case insts.FormatFPImmediate:
		return s.executeFPImmediate(inst)
	case insts.FormatFPIntegerConvert:
		return s.executeFPIntegerConvert(inst)
	case insts.FormatFPCompare:
		return s.executeFPCompare(inst)
	case insts.FormatFPCondSelect:
		return s.executeFPCondSelect(inst)
	case insts.FormatFPCondCompare:
		return s.executeFPCondCompare(inst)
	case insts.FormatFPDP1Source:
		return s.executeFPDP1(inst)
	case insts.FormatFPDP2Source:
		return s.executeFPDP2(inst)
	}
	return StepResult{}
}

func (s *Simulator) executeFPImmediate(inst *insts.Instruction) StepResult {
	s.writeFPScalar(inst.Rd, inst.Is64Bit, math.Float64frombits(inst.Imm))
	return StepResult{}
}

func (s *Simulator) executeFPIntegerConvert(inst *insts.Instruction) StepResult {
	fbits := int(inst.Imm)
	switch inst.Op {
	case insts.OpSCVTF, insts.OpUCVTF:
		gpr := s.regFile.ReadX(inst.Rn, false)
		if !inst.Is64Bit {
			gpr = uint64(uint32(gpr))
		}
		signed := inst.Op == insts.OpSCVTF
		if inst.ESize == 64 {
			s.vregFile.WriteLaneF64(inst.Rd, 0, FixedToFloat64(gpr, fbits, signed))
		} else {
			s.vregFile.WriteLaneF32(inst.Rd, 0, FixedToFloat32(gpr, fbits, signed))
		}
	case insts.OpFCVTZS, insts.OpFCVTZU:
		v := s.readFPScalar(inst.Rn, inst.ESize == 64)
		bits := 32
		if inst.Is64Bit {
			bits = 64
		}
		result := FPToIntSaturate(v, bits, inst.Op == insts.OpFCVTZS)
		if inst.Is64Bit {
			s.regFile.WriteX(inst.Rd, result, false)
		} else {
			s.regFile.WriteW(inst.Rd, uint32(result), false)
		}
	case insts.OpFCVT:
		v := s.readFPScalar(inst.Rn, inst.Signed)
		s.writeFPScalar(inst.Rd, inst.ESize == 64, v)
	case insts.OpFJCVTZS:
		v := s.vregFile.ReadLaneF64(inst.Rn, 0)
		result, exactZ := FJCVTZS(v)
		s.regFile.WriteW(inst.Rd, result, false)
		s.regFile.Flags = NZCV{Z: exactZ}
	}
	return StepResult{}
}

func (s *Simulator) executeFPCompare(inst *insts.Instruction) StepResult {
	a := s.readFPScalar(inst.Rn, inst.Is64Bit)
	b := 0.0
	if inst.Op == insts.OpFCMP {
		b = s.readFPScalar(inst.Rm, inst.Is64Bit)
	}
	unordered := math.IsNaN(a) || math.IsNaN(b)
	s.regFile.Flags = FPCompareFlags(unordered, a < b, a == b)
	return StepResult{}
}

func (s *Simulator) executeFPCondSelect(inst *insts.Instruction) StepResult {
	var v float64
	if s.alu.CheckCondition(Cond(inst.Cond)) {
		v = s.readFPScalar(inst.Rn, inst.Is64Bit)
	} else {
		v = s.readFPScalar(inst.Rm, inst.Is64Bit)
	}
	s.writeFPScalar(inst.Rd, inst.Is64Bit, v)
	return StepResult{}
}

func (s *Simulator) executeFPCondCompare(inst *insts.Instruction) StepResult {
	if !s.alu.CheckCondition(Cond(inst.Cond)) {
		nzcv := uint32(inst.Imm & 0xF)
		s.regFile.Flags = NZCV{
			N: nzcv&0x8 != 0,
			Z: nzcv&0x4 != 0,
			C: nzcv&0x2 != 0,
			V: nzcv&0x1 != 0,
		}
		return StepResult{}
	}
	a := s.readFPScalar(inst.Rn, inst.Is64Bit)
	b := s.readFPScalar(inst.Rm, inst.Is64Bit)
	unordered := math.IsNaN(a) || math.IsNaN(b)
	s.regFile.Flags = FPCompareFlags(unordered, a < b, a == b)
	return StepResult{}
}

func (s *Simulator) executeFPDP1(inst *insts.Instruction) StepResult {
	v := s.readFPScalar(inst.Rn, inst.Is64Bit)
	switch inst.Op {
	case insts.OpFABS:
		v = math.Abs(v)
	case insts.OpFNEG:
		v = -v
	case insts.OpFSQRT:
		v = math.Sqrt(v)
	case insts.OpFMOV:
		// copy, value already read
	}
	s.writeFPScalar(inst.Rd, inst.Is64Bit, v)
	return StepResult{}
}

func (s *Simulator) executeFPDP2(inst *insts.Instruction) StepResult {
	fpcr := s.regFile.FPCR
	double := inst.Is64Bit
	if double {
		aBits := math.Float64bits(s.vregFile.ReadLaneF64(inst.Rn, 0))
		bBits := math.Float64bits(s.vregFile.ReadLaneF64(inst.Rm, 0))
		if r, isNaN := ProcessNaNs64(aBits, bBits, fpcr); isNaN {
			s.vregFile.WriteLaneF64(inst.Rd, 0, math.Float64frombits(r))
			return StepResult{}
		}
		a, b := math.Float64frombits(aBits), math.Float64frombits(bBits)
		var r float64
		switch inst.Op {
		case insts.OpFADD:
			r = a + b
		case insts.OpFSUB:
			r = a - b
		case insts.OpFMUL:
			r = a * b
		case insts.OpFDIV:
			r = a / b
		case insts.OpFMAX:
			r = math.Max(a, b)
		case insts.OpFMIN:
			r = math.Min(a, b)
		}
		s.vregFile.WriteLaneF64(inst.Rd, 0, r)
		return StepResult{}
	}
	aBits := math.Float32bits(s.vregFile.ReadLaneF32(inst.Rn, 0))
	bBits := math.Float32bits(s.vregFile.ReadLaneF32(inst.Rm, 0))
	if r, isNaN := ProcessNaNs32(aBits, bBits, fpcr); isNaN {
		s.vregFile.WriteLaneF32(inst.Rd, 0, math.Float32frombits(r))
		return StepResult{}
	}
	a, b := math.Float32frombits(aBits), math.Float32frombits(bBits)
	var r float32
	switch inst.Op {
	case insts.OpFADD:
		r = a + b
	case insts.OpFSUB:
		r = a - b
	case insts.OpFMUL:
		r = a * b
	case insts.OpFDIV:
		r = a / b
	case insts.OpFMAX:
		r = float32(math.Max(float64(a), float64(b)))
	case insts.OpFMIN:
		r = float32(math.Min(float64(a), float64(b)))
	}
	s.vregFile.WriteLaneF32(inst.Rd, 0, r)
	return StepResult{}
}

// --- SVE ---

func (s *Simulator) cmpCond(c uint8) CMPCond { return CMPCond(c) }

func (s *Simulator) executeSVEPredicate(inst *insts.Instruction, pc uint64, word uint32) StepResult {
	switch inst.Op {
	case insts.OpPTRUE:
		s.sve.PTRUE(inst.Rd, inst.ESize, SVEPattern(inst.Pattern), inst.SetFlags)
		if inst.SetFlags {
			// PTEST against an all-true governing predicate: only the
			// leading n of total lanes are true.
			total := s.sve.lanesFor(inst.ESize)
			n := patternCount(SVEPattern(inst.Pattern), total)
			s.regFile.Flags = NZCV{N: n > 0, Z: n == 0, C: n < total}
		}
	case insts.OpPFALSE:
		s.sve.PFALSE(inst.Rd)
	case insts.OpPTEST:
		s.regFile.Flags = s.sve.PTEST(inst.Rs, inst.Rn, inst.ESize)
	case insts.OpSVEPredLogical:
		s.sve.PredLogical(inst.Rd, inst.Rs, inst.Rn, inst.Rm, inst.ESize, PredOp(inst.PredOp), false)
	case insts.OpSVEIndex:
		s.sve.INDEX(inst.Rd, inst.ESize, inst.SignedImm, int64(inst.Shift))
	case insts.OpSVEDup:
		s.sve.DUP(inst.Rd, inst.ESize, uint64(inst.SignedImm))
	case insts.OpSVEInsr:
		s.sve.INSR(inst.Rd, inst.ESize, s.regFile.ReadX(inst.Rn, false))
	case insts.OpSVEUnpk:
		s.sve.UNPK(inst.Rd, inst.Rn, inst.ESize, inst.Hi, inst.Signed)
	case insts.OpSVESel:
		s.sve.SEL(inst.Rd, inst.Rs, inst.Rn, inst.Rm, inst.ESize)
	case insts.OpSVELdr:
		addr := uint64(int64(s.regFile.ReadX(inst.Rn, true)) + inst.SignedImm*int64(inst.ESize/8))
		s.sve.LDR(inst.Rd, inst.Rs, s.memory, addr, inst.ESize)
	case insts.OpSVEStr:
		addr := uint64(int64(s.regFile.ReadX(inst.Rn, true)) + inst.SignedImm*int64(inst.ESize/8))
		s.sve.STR(inst.Rd, inst.Rs, s.memory, addr, inst.ESize)
	case insts.OpSVEMovprfx:
		s.sve.MOVPRFX(inst.Rd)
	default:
		return StepResult{Err: &SimError{Category: ErrUnimplementedSVE, PC: pc, Opcode: word, Detail: "unhandled SVE predicate op"}}
	}
	return StepResult{}
}

func (s *Simulator) executeSVEIntCompareVectors(inst *insts.Instruction, pc uint64, word uint32) StepResult {
	cond := s.cmpCond(inst.CmpCond)
	signed := cond <= CmpLT // EQ/NE/GE/GT/LE/LT are the signed-style comparisons
	switch inst.Op {
	case insts.OpSVECmp:
		s.sve.CMP(inst.Rd, inst.Rs, inst.Rn, inst.Rm, inst.ESize, cond, signed)
	case insts.OpSVECmpImm:
		s.sve.CMPImm(inst.Rd, inst.Rs, inst.Rn, inst.ESize, inst.SignedImm, cond, signed)
	case insts.OpSVEWhile:
		rn := int64(s.regFile.ReadX(inst.Rn, false))
		rm := int64(s.regFile.ReadX(inst.Rm, false))
		s.regFile.Flags = s.sve.WHILE(inst.Rd, inst.ESize, rn, rm, cond)
	case insts.OpSVECterm:
		a := s.regFile.ReadX(inst.Rn, false)
		b := s.regFile.ReadX(inst.Rm, false)
		if !inst.Is64Bit {
			a, b = uint64(uint32(a)), uint64(uint32(b))
		}
		n, v := CTERM(a, b, inst.SetFlags)
		s.regFile.Flags.N = n
		s.regFile.Flags.V = v
	case insts.OpSVEIncDec:
		total := s.sve.lanesFor(inst.ESize)
		delta := int64(patternCount(SVEPattern(inst.Pattern), total))
		if inst.SetFlags { // SetFlags selects DEC over INC here (decoder comment)
			delta = -delta
		}
		acc := int64(s.regFile.ReadX(inst.Rd, false))
		if !inst.Is64Bit {
			acc = int64(int32(acc))
		}
		resultBits := 32
		if inst.Is64Bit {
			resultBits = 64
		}
		result := IncDecSaturate(acc, delta, resultBits, inst.Signed)
		if inst.Is64Bit {
			s.regFile.WriteX(inst.Rd, result, false)
		} else {
			s.regFile.WriteW(inst.Rd, uint32(result), false)
		}
	default:
		return StepResult{Err: &SimError{Category: ErrUnimplementedSVE, PC: pc, Opcode: word, Detail: "unhandled SVE compare/control op"}}
	}
	return StepResult{}
}

// Disassembler wraps golang.org/x/arch/arm64/arm64asm for best-effort
// textual disassembly used only by the DISASM trace category
// (spec.md §6) — never by decode/execute, which always go through
// insts.Decoder. Fatal-abort messages carry the raw opcode word.
type Disassembler struct{}

func NewDisassembler() *Disassembler { return &Disassembler{} }

func (d *Disassembler) Text(word uint32, pc uint64) string {
	defer func() { recover() }()
	var buf [4]byte
	buf[0] = byte(word)
	buf[1] = byte(word >> 8)
	buf[2] = byte(word >> 16)
	buf[3] = byte(word >> 24)
	inst, err := arm64asm.Decode(buf[:])
	if err != nil {
		return fmt.Sprintf("<unknown 0x%08X>", word)
	}
	return inst.String()
}
