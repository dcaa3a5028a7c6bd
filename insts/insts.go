// Package insts is the external-collaborator decoder: it turns a
// 32-bit A64 word into a tagged Instruction value. spec.md §1 treats
// the decoder as out of scope for the execution core and models it as
// the sole caller into the interpreter's visitor surface; this package
// plays that role with a single Decode entry point rather than a
// polymorphic Visit* dispatcher, per spec.md §9's note that a tagged
// union matches the teacher's existing idiom better than the source's
// visitor base class.
package insts

// Op names a decoded operation. Unlike a plain mnemonic, Op already
// folds in the width/sign/flag variant the Format/flag fields don't
// otherwise distinguish, mirroring the teacher's flat Op enum.
type Op uint16

const (
	OpUnknown Op = iota

	// Integer data processing.
	OpADD
	OpADC
	OpSUB
	OpSBC
	OpAND
	OpORR
	OpEOR
	OpORN
	OpBIC
	OpEON
	OpMOVZ
	OpMOVN
	OpMOVK
	OpSBFM
	OpBFM
	OpUBFM
	OpEXTR
	OpCSEL
	OpCSINC
	OpCSINV
	OpCSNEG
	OpCCMP
	OpCCMN
	OpMADD
	OpMSUB
	OpSMADDL
	OpUMADDL
	OpSDIV
	OpUDIV
	OpLSLV
	OpLSRV
	OpASRV
	OpRORV
	OpCLZ
	OpCLS
	OpRBIT
	OpREV16
	OpREV32
	OpREV64
	OpCRC32
	OpCRC32C
	OpADR
	OpADRP

	// Branches.
	OpB
	OpBL
	OpBCond
	OpBR
	OpBLR
	OpRET
	OpBRAuth
	OpBLRAuth
	OpRETAuth
	OpCBZ
	OpCBNZ
	OpTBZ
	OpTBNZ

	// Load/store.
	OpLDRB
	OpLDRH
	OpLDR32
	OpLDR64
	OpSTRB
	OpSTRH
	OpSTR32
	OpSTR64
	OpLDRSB32
	OpLDRSB64
	OpLDRSH32
	OpLDRSH64
	OpLDRSW
	OpLDPW
	OpSTPW
	OpLDPX
	OpSTPX
	OpLDPSW
	OpLDRLiteral32
	OpLDRLiteral64
	OpLDXR
	OpLDAXR
	OpSTXR
	OpSTLXR
	OpCAS
	OpCASP
	OpSWP
	OpLDADD
	OpLDCLR
	OpLDEOR
	OpLDSET
	OpLDSMAX
	OpLDSMIN
	OpLDUMAX
	OpLDUMIN
	OpLDAPR
	OpSTLUR

	// SIMD.
	OpVADD
	OpVSUB
	OpVMUL
	OpVMLA
	OpVMLS
	OpVFADD
	OpVFSUB
	OpVFMUL
	OpVFDIV
	OpLDR128
	OpSTR128
	OpDUP
	OpVABS
	OpVNEG
	OpVSQADD
	OpVSQSUB
	OpVUQADD
	OpVUQSUB
	OpVSHL
	OpVSSHR
	OpVUSHR
	OpVSRSHR
	OpVURSHR
	OpVCMEQ
	OpVCMGT
	OpVCMGE
	OpVCMHI
	OpVCMHS
	OpVSMAX
	OpVSMIN
	OpVUMAX
	OpVUMIN
	OpADDV
	OpSMAXV
	OpSMINV
	OpUMAXV
	OpUMINV
	OpSADDLV
	OpUADDLV
	OpTBL
	OpTBX
	OpXTN
	OpSXTL
	OpUXTL
	OpVFMAX
	OpVFMIN
	OpFADDP
	OpFMAXP
	OpFMINP
	OpDUPElement

	// FP scalar.
	OpFMOVImm
	OpFMOV
	OpFCVT
	OpFCVTZS
	OpFCVTZU
	OpSCVTF
	OpUCVTF
	OpFJCVTZS
	OpFCMP
	OpFCMPZero
	OpFCSEL
	OpFCCMP
	OpFABS
	OpFNEG
	OpFSQRT
	OpFADD
	OpFSUB
	OpFMUL
	OpFDIV
	OpFMAX
	OpFMIN

	// System.
	OpMRS
	OpMSR
	OpHINT
	OpDMB
	OpDSB
	OpISB
	OpCLREX
	OpHLT
	OpBRK
	OpUDF
	OpNOP

	// SVE.
	OpPTRUE
	OpPFALSE
	OpPTEST
	OpSVEIndex
	OpSVEDup
	OpSVEWhile
	OpSVEPredLogical
	OpSVEInsr
	OpSVEUnpk
	OpSVECmp
	OpSVECmpImm
	OpSVECterm
	OpSVEIncDec
	OpSVESel
	OpSVELdr
	OpSVEStr
	OpSVEMovprfx
)

// Format groups the Op space into the decoder-visitor families
// spec.md §6 names (e.g. VisitAddSubShifted, VisitLoadStorePairOffset).
type Format uint8

const (
	FormatUnknown Format = iota
	FormatAddSubShifted
	FormatAddSubExtended
	FormatAddSubImm
	FormatAddSubCarry
	FormatLogicalShifted
	FormatLogicalImm
	FormatMoveWide
	FormatBitfield
	FormatExtract
	FormatCondSelect
	FormatCondCompareReg
	FormatCondCompareImm
	FormatDP1Source
	FormatDP2Source
	FormatDP3Source
	FormatPCRel
	FormatBranchImm
	FormatBranchCond
	FormatBranchReg
	FormatCompareBranch
	FormatTestBranch
	FormatLoadStoreOffset
	FormatLoadStorePre
	FormatLoadStorePost
	FormatLoadStorePair
	FormatLoadStoreLiteral
	FormatLoadStoreExclusive
	FormatAtomicMemory
	FormatSIMD3Same
	FormatSIMDLoadStore
	FormatSIMD2RegMisc
	FormatSIMDShiftImm
	FormatSIMDAcrossLanes
	FormatSIMDTableLookup
	FormatSIMDDup
	FormatFPImmediate
	FormatFPIntegerConvert
	FormatFPCompare
	FormatFPCondSelect
	FormatFPCondCompare
	FormatFPDP1Source
	FormatFPDP2Source
	FormatSystem
	FormatHLT
	FormatSVEPredicate
	FormatSVEIntCompareVectors
)

// Cond is the 4-bit condition field, re-exported here so decoded
// instructions carry their own copy without importing emu (the
// decoder is a standalone external collaborator, spec.md §1).
type Cond uint8

const (
	CondEQ Cond = 0b0000
	CondNE Cond = 0b0001
	CondCS Cond = 0b0010
	CondCC Cond = 0b0011
	CondMI Cond = 0b0100
	CondPL Cond = 0b0101
	CondVS Cond = 0b0110
	CondVC Cond = 0b0111
	CondHI Cond = 0b1000
	CondLS Cond = 0b1001
	CondGE Cond = 0b1010
	CondLT Cond = 0b1011
	CondGT Cond = 0b1100
	CondLE Cond = 0b1101
	CondAL Cond = 0b1110
	CondNV Cond = 0b1111
)

// ShiftType mirrors emu.ShiftType for the decoder's own use.
type ShiftType uint8

const (
	ShiftLSL ShiftType = 0b00
	ShiftLSR ShiftType = 0b01
	ShiftASR ShiftType = 0b10
	ShiftROR ShiftType = 0b11
)

// ExtendType mirrors emu.ExtendType encodings for extended-register
// AddSub and load/store register-offset addressing.
type ExtendType uint8

const (
	ExtUXTB ExtendType = iota
	ExtUXTH
	ExtUXTW
	ExtUXTX
	ExtSXTB
	ExtSXTH
	ExtSXTW
	ExtSXTX
)

// AddrMode mirrors emu.AddrMode.
type AddrMode uint8

const (
	AddrOffset AddrMode = iota
	AddrPreIndex
	AddrPostIndex
)

// Arrangement names a NEON/SIMD vector arrangement (spec.md §4.E).
type Arrangement uint8

const (
	Arr8B Arrangement = iota
	Arr16B
	Arr4H
	Arr8H
	Arr2S
	Arr4S
	Arr1D
	Arr2D
)

// Instruction is the decoded, tagged-union representation every
// visitor in emu/ switches on. Field population is format-specific;
// irrelevant fields are left zero.
type Instruction struct {
	Op     Op
	Format Format

	Is64Bit  bool
	SetFlags bool

	Rd, Rn, Rm, Ra uint8
	Rt, Rt2, Rs    uint8

	Imm      uint64
	SignedImm int64
	Shift    uint8
	ShiftType ShiftType
	ExtendType ExtendType

	BranchOffset int64
	Cond         Cond

	AddrMode    AddrMode
	Size        uint64 // access size in bytes, for load/store
	Acquire     bool
	Release     bool
	RegOffset   bool // true when Rm/ExtendType/Shift hold a register-offset addend

	Arrangement Arrangement
	Index       int // element index for scalar/indexed SIMD forms

	SysReg  uint8
	HintImm uint8
	Imm16   uint16 // HLT/BRK/SVC immediate

	// SVE/FP-scalar/extended-SIMD auxiliary fields. Populated only by
	// the Format groups that need them; zero elsewhere.
	ESize     int   // element width in bits (SVE lanes; FP scalar single/double)
	Signed    bool  // signed vs. unsigned variant selector
	Pattern   uint8 // SVEPattern for PTRUE-family predicate counts
	PredOp    uint8 // PredOp for the predicate-logical family
	CmpCond   uint8 // CMPCond for SVE integer compares/WHILE
	Hi        bool  // UNPK high/low half selector
	TableLen  uint8 // TBL/TBX register-list length (1-4)
}

// PC returns the PC-relative target for formats carrying a
// BranchOffset, given the instruction's own address.
func (i *Instruction) Target(pc uint64) uint64 {
	return uint64(int64(pc) + i.BranchOffset)
}
