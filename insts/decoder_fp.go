package insts

import "math"

// FP scalar decode arm (spec.md §4.H), grounded on emu/fp.go's helper
// surface. Real A64 packs these seven sub-classes into the dense
// "Floating-point data-processing" major group with several
// overlapping opcode subfields; this decoder instead gives each its
// own top-byte tag (0xE0-0xE6, verified collision-free against every
// other isXxx predicate in this package) and a flat field layout, the
// same trade this package already makes for the system-register
// subspace. FMOV's 8-bit compact immediate is likewise replaced with
// a simpler sign/exp5/frac4 layout rather than VFPExpandImm's exact
// bit-for-bit replicated-exponent trick — both are "pick a biased
// power of two and a 4-bit fraction", just encoded differently.

func isFPImmediate(word uint32) bool       { return bits(word, 31, 24) == 0xE0 }
func isFPIntegerConvert(word uint32) bool  { return bits(word, 31, 24) == 0xE1 }
func isFPCompare(word uint32) bool         { return bits(word, 31, 24) == 0xE2 }
func isFPCondSelect(word uint32) bool      { return bits(word, 31, 24) == 0xE3 }
func isFPCondCompare(word uint32) bool     { return bits(word, 31, 24) == 0xE4 }
func isFPDP1Source(word uint32) bool       { return bits(word, 31, 24) == 0xE5 }
func isFPDP2Source(word uint32) bool       { return bits(word, 31, 24) == 0xE6 }

func decodeFPImmediate(word uint32, inst *Instruction) {
	inst.Format = FormatFPImmediate
	inst.Op = OpFMOVImm
	inst.Is64Bit = bits(word, 23, 23) == 1 // double-precision destination
	inst.Rd = uint8(bits(word, 22, 18))
	sign := bits(word, 17, 17)
	exp5 := bits(word, 16, 12)
	frac4 := bits(word, 11, 8)

	val := (1 + float64(frac4)/16) * math.Pow(2, float64(int(exp5)-15))
	if sign == 1 {
		val = -val
	}
	inst.Imm = math.Float64bits(val)
}

func decodeFPIntegerConvert(word uint32, inst *Instruction) {
	inst.Format = FormatFPIntegerConvert
	op4 := bits(word, 23, 20)
	inst.Rd = uint8(bits(word, 19, 15))
	inst.Rn = uint8(bits(word, 14, 10))
	inst.Is64Bit = bits(word, 9, 9) == 1 // GPR operand width
	inst.ESize = 32
	if bits(word, 8, 8) == 1 {
		inst.ESize = 64
	}
	inst.Imm = uint64(bits(word, 7, 2)) // fixed-point fbits, 0 for plain int convert

	switch op4 {
	case 0:
		inst.Op = OpSCVTF
	case 1:
		inst.Op = OpUCVTF
	case 2:
		inst.Op = OpFCVTZS
	case 3:
		inst.Op = OpFCVTZU
	case 4:
		inst.Op = OpFCVT
		inst.Signed = bits(word, 1, 1) == 1 // source is double-precision
	case 5:
		inst.Op = OpFJCVTZS
	}
}

func decodeFPCompare(word uint32, inst *Instruction) {
	inst.Format = FormatFPCompare
	inst.Rn = uint8(bits(word, 23, 19))
	inst.Rm = uint8(bits(word, 18, 14))
	inst.Is64Bit = bits(word, 13, 13) == 1
	if bits(word, 12, 12) == 1 {
		inst.Op = OpFCMPZero
	} else {
		inst.Op = OpFCMP
	}
}

func decodeFPCondSelect(word uint32, inst *Instruction) {
	inst.Format = FormatFPCondSelect
	inst.Op = OpFCSEL
	inst.Rd = uint8(bits(word, 23, 19))
	inst.Rn = uint8(bits(word, 18, 14))
	inst.Rm = uint8(bits(word, 13, 9))
	inst.Cond = Cond(bits(word, 8, 5))
	inst.Is64Bit = bits(word, 4, 4) == 1
}

func decodeFPCondCompare(word uint32, inst *Instruction) {
	inst.Format = FormatFPCondCompare
	inst.Op = OpFCCMP
	inst.Rn = uint8(bits(word, 23, 19))
	inst.Rm = uint8(bits(word, 18, 14))
	inst.Cond = Cond(bits(word, 13, 10))
	inst.Imm = uint64(bits(word, 9, 6)) // nzcv for the not-taken case
	inst.Is64Bit = bits(word, 5, 5) == 1
}

func decodeFPDP1Source(word uint32, inst *Instruction) {
	inst.Format = FormatFPDP1Source
	op2 := bits(word, 23, 22)
	inst.Rd = uint8(bits(word, 21, 17))
	inst.Rn = uint8(bits(word, 16, 12))
	inst.Is64Bit = bits(word, 11, 11) == 1

	switch op2 {
	case 0:
		inst.Op = OpFABS
	case 1:
		inst.Op = OpFNEG
	case 2:
		inst.Op = OpFSQRT
	case 3:
		inst.Op = OpFMOV
	}
}

func decodeFPDP2Source(word uint32, inst *Instruction) {
	inst.Format = FormatFPDP2Source
	op3 := bits(word, 23, 21)
	inst.Rd = uint8(bits(word, 20, 16))
	inst.Rn = uint8(bits(word, 15, 11))
	inst.Rm = uint8(bits(word, 10, 6))
	inst.Is64Bit = bits(word, 5, 5) == 1

	switch op3 {
	case 0:
		inst.Op = OpFADD
	case 1:
		inst.Op = OpFSUB
	case 2:
		inst.Op = OpFMUL
	case 3:
		inst.Op = OpFDIV
	case 4:
		inst.Op = OpFMAX
	case 5:
		inst.Op = OpFMIN
	}
}
