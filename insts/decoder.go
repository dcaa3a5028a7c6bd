package insts

// Decoder decodes A64 machine words into Instruction values, grounded
// on the teacher's `_examples/syifan-m2sim2/insts/decoder.go` bitfield
// idiom (one isXxx/decodeXxx pair per instruction class) and expanded
// to the full class set spec.md §4.G/§4.I/§4.J/§6 names.
type Decoder struct{}

func NewDecoder() *Decoder { return &Decoder{} }

func bits(word uint32, hi, lo uint) uint32 {
	return (word >> lo) & ((1 << (hi - lo + 1)) - 1)
}

func signExtend(v uint32, width uint) int64 {
	shift := 32 - width
	return int64(int32(v<<shift)) >> shift
}

// Decode dispatches word to the matching instruction-class decoder in
// roughly A64 manual class order.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{Op: OpUnknown, Format: FormatUnknown}

	switch {
	case isAtomicMemory(word):
		decodeAtomicMemory(word, inst)
	case isSVEPredicate(word):
		decodeSVEPredicate(word, inst)
	case isSVEIntCompareVectors(word):
		decodeSVEIntCompareVectors(word, inst)
	case isFPImmediate(word):
		decodeFPImmediate(word, inst)
	case isFPIntegerConvert(word):
		decodeFPIntegerConvert(word, inst)
	case isFPCompare(word):
		decodeFPCompare(word, inst)
	case isFPCondSelect(word):
		decodeFPCondSelect(word, inst)
	case isFPCondCompare(word):
		decodeFPCondCompare(word, inst)
	case isFPDP1Source(word):
		decodeFPDP1Source(word, inst)
	case isFPDP2Source(word):
		decodeFPDP2Source(word, inst)
	case isSIMD2RegMisc(word):
		decodeSIMD2RegMisc(word, inst)
	case isSIMDShiftImm(word):
		decodeSIMDShiftImm(word, inst)
	case isSIMDAcrossLanes(word):
		decodeSIMDAcrossLanes(word, inst)
	case isSIMDTableLookup(word):
		decodeSIMDTableLookup(word, inst)
	case isSIMDDup(word):
		decodeSIMDDup(word, inst)
	case isSIMDLoadStore128(word):
		decodeSIMDLoadStore128(word, inst)
	case isHLTBRK(word):
		decodeHLTBRK(word, inst)
	case isSystem(word):
		decodeSystem(word, inst)
	case isBranchReg(word):
		decodeBranchReg(word, inst)
	case isBranchImm(word):
		decodeBranchImm(word, inst)
	case isBranchCond(word):
		decodeBranchCond(word, inst)
	case isCompareBranch(word):
		decodeCompareBranch(word, inst)
	case isTestBranch(word):
		decodeTestBranch(word, inst)
	case isPCRel(word):
		decodePCRel(word, inst)
	case isAddSubImm(word):
		decodeAddSubImm(word, inst)
	case isLogicalImm(word):
		decodeLogicalImm(word, inst)
	case isMoveWide(word):
		decodeMoveWide(word, inst)
	case isBitfield(word):
		decodeBitfield(word, inst)
	case isExtract(word):
		decodeExtract(word, inst)
	case isAddSubShifted(word):
		decodeAddSubShifted(word, inst)
	case isAddSubExtended(word):
		decodeAddSubExtended(word, inst)
	case isAddSubCarry(word):
		decodeAddSubCarry(word, inst)
	case isCondCompareReg(word):
		decodeCondCompare(word, inst, false)
	case isCondCompareImm(word):
		decodeCondCompare(word, inst, true)
	case isCondSelect(word):
		decodeCondSelect(word, inst)
	case isDP3Source(word):
		decodeDP3Source(word, inst)
	case isDP2Source(word):
		decodeDP2Source(word, inst)
	case isDP1Source(word):
		decodeDP1Source(word, inst)
	case isLogicalShifted(word):
		decodeLogicalShifted(word, inst)
	case isLoadStorePair(word):
		decodeLoadStorePair(word, inst)
	case isLoadStoreExclusive(word):
		decodeLoadStoreExclusive(word, inst)
	case isLoadStoreLiteral(word):
		decodeLoadStoreLiteral(word, inst)
	case isLoadStoreUnsignedImm(word):
		decodeLoadStoreUnsignedImm(word, inst)
	case isLoadStoreRegOffsetOrIndexed(word):
		decodeLoadStoreRegOffsetOrIndexed(word, inst)
	case isSIMD3Same(word):
		decodeSIMD3Same(word, inst)
	}

	return inst
}

// --- Data-processing (immediate): AddSub, Logical, MoveWide, Bitfield, Extract, PC-rel ---

func isAddSubImm(word uint32) bool { return bits(word, 28, 23) == 0b100010 }

func decodeAddSubImm(word uint32, inst *Instruction) {
	inst.Format = FormatAddSubImm
	sf := bits(word, 31, 31)
	op := bits(word, 30, 30)
	s := bits(word, 29, 29)
	sh := bits(word, 22, 22)
	imm12 := bits(word, 21, 10)
	rn := bits(word, 9, 5)
	rd := bits(word, 4, 0)

	inst.Is64Bit = sf == 1
	inst.SetFlags = s == 1
	inst.Rd, inst.Rn = uint8(rd), uint8(rn)
	inst.Imm = uint64(imm12)
	if sh == 1 {
		inst.Shift = 12
	}
	if op == 0 {
		inst.Op = OpADD
	} else {
		inst.Op = OpSUB
	}
}

func isLogicalImm(word uint32) bool { return bits(word, 28, 23) == 0b100100 }

func decodeLogicalImm(word uint32, inst *Instruction) {
	inst.Format = FormatLogicalImm
	sf := bits(word, 31, 31)
	opc := bits(word, 30, 29)
	n := bits(word, 22, 22)
	immr := bits(word, 21, 16)
	imms := bits(word, 15, 10)
	rn := bits(word, 9, 5)
	rd := bits(word, 4, 0)

	inst.Is64Bit = sf == 1
	inst.Rd, inst.Rn = uint8(rd), uint8(rn)
	inst.Shift = uint8(immr)
	inst.Imm = uint64(imms)
	_ = n
	switch opc {
	case 0b00:
		inst.Op = OpAND
	case 0b01:
		inst.Op = OpORR
	case 0b10:
		inst.Op = OpEOR
	case 0b11:
		inst.Op = OpAND
		inst.SetFlags = true
	}
}

func isMoveWide(word uint32) bool { return bits(word, 28, 23) == 0b100101 }

func decodeMoveWide(word uint32, inst *Instruction) {
	inst.Format = FormatMoveWide
	sf := bits(word, 31, 31)
	opc := bits(word, 30, 29)
	hw := bits(word, 22, 21)
	imm16 := bits(word, 20, 5)
	rd := bits(word, 4, 0)

	inst.Is64Bit = sf == 1
	inst.Rd = uint8(rd)
	inst.Imm = uint64(imm16)
	inst.Shift = uint8(hw) * 16
	switch opc {
	case 0b00:
		inst.Op = OpMOVN
	case 0b10:
		inst.Op = OpMOVZ
	case 0b11:
		inst.Op = OpMOVK
	}
}

func isBitfield(word uint32) bool { return bits(word, 28, 23) == 0b100110 }

func decodeBitfield(word uint32, inst *Instruction) {
	inst.Format = FormatBitfield
	sf := bits(word, 31, 31)
	opc := bits(word, 30, 29)
	immr := bits(word, 21, 16)
	imms := bits(word, 15, 10)
	rn := bits(word, 9, 5)
	rd := bits(word, 4, 0)

	inst.Is64Bit = sf == 1
	inst.Rd, inst.Rn = uint8(rd), uint8(rn)
	inst.Shift = uint8(immr)
	inst.Imm = uint64(imms)
	switch opc {
	case 0b00:
		inst.Op = OpSBFM
	case 0b01:
		inst.Op = OpBFM
	case 0b10:
		inst.Op = OpUBFM
	}
}

func isExtract(word uint32) bool { return bits(word, 28, 21) == 0b10010111 }

func decodeExtract(word uint32, inst *Instruction) {
	inst.Format = FormatExtract
	sf := bits(word, 31, 31)
	rm := bits(word, 20, 16)
	imms := bits(word, 15, 10)
	rn := bits(word, 9, 5)
	rd := bits(word, 4, 0)

	inst.Is64Bit = sf == 1
	inst.Op = OpEXTR
	inst.Rd, inst.Rn, inst.Rm = uint8(rd), uint8(rn), uint8(rm)
	inst.Imm = uint64(imms)
}

func isPCRel(word uint32) bool { return bits(word, 28, 24) == 0b10000 }

func decodePCRel(word uint32, inst *Instruction) {
	inst.Format = FormatPCRel
	op := bits(word, 31, 31)
	immlo := bits(word, 30, 29)
	immhi := bits(word, 23, 5)
	rd := bits(word, 4, 0)

	imm := (immhi << 2) | immlo
	offset := signExtend(imm, 21)
	inst.Rd = uint8(rd)
	if op == 1 {
		inst.Op = OpADRP
		inst.BranchOffset = offset << 12
	} else {
		inst.Op = OpADR
		inst.BranchOffset = offset
	}
}

// --- Data-processing (register) ---

func isLogicalShifted(word uint32) bool { return bits(word, 28, 24) == 0b01010 }

func decodeLogicalShifted(word uint32, inst *Instruction) {
	inst.Format = FormatLogicalShifted
	sf := bits(word, 31, 31)
	opc := bits(word, 30, 29)
	shift := bits(word, 23, 22)
	n := bits(word, 21, 21)
	rm := bits(word, 20, 16)
	imm6 := bits(word, 15, 10)
	rn := bits(word, 9, 5)
	rd := bits(word, 4, 0)

	inst.Is64Bit = sf == 1
	inst.Rd, inst.Rn, inst.Rm = uint8(rd), uint8(rn), uint8(rm)
	inst.ShiftType = ShiftType(shift)
	inst.Shift = uint8(imm6)

	switch {
	case opc == 0b00 && n == 0:
		inst.Op = OpAND
	case opc == 0b00 && n == 1:
		inst.Op = OpBIC
	case opc == 0b01 && n == 0:
		inst.Op = OpORR
	case opc == 0b01 && n == 1:
		inst.Op = OpORN
	case opc == 0b10 && n == 0:
		inst.Op = OpEOR
	case opc == 0b10 && n == 1:
		inst.Op = OpEON
	case opc == 0b11 && n == 0:
		inst.Op = OpAND
		inst.SetFlags = true
	case opc == 0b11 && n == 1:
		inst.Op = OpBIC
		inst.SetFlags = true
	}
}

func isAddSubShifted(word uint32) bool {
	return bits(word, 28, 24) == 0b01011 && bits(word, 21, 21) == 0
}

func decodeAddSubShifted(word uint32, inst *Instruction) {
	inst.Format = FormatAddSubShifted
	sf := bits(word, 31, 31)
	op := bits(word, 30, 30)
	s := bits(word, 29, 29)
	shift := bits(word, 23, 22)
	rm := bits(word, 20, 16)
	imm6 := bits(word, 15, 10)
	rn := bits(word, 9, 5)
	rd := bits(word, 4, 0)

	inst.Is64Bit = sf == 1
	inst.SetFlags = s == 1
	inst.Rd, inst.Rn, inst.Rm = uint8(rd), uint8(rn), uint8(rm)
	inst.ShiftType = ShiftType(shift)
	inst.Shift = uint8(imm6)
	if op == 0 {
		inst.Op = OpADD
	} else {
		inst.Op = OpSUB
	}
}

func isAddSubExtended(word uint32) bool {
	return bits(word, 28, 24) == 0b01011 && bits(word, 21, 21) == 1
}

func decodeAddSubExtended(word uint32, inst *Instruction) {
	inst.Format = FormatAddSubExtended
	sf := bits(word, 31, 31)
	op := bits(word, 30, 30)
	s := bits(word, 29, 29)
	rm := bits(word, 20, 16)
	option := bits(word, 15, 13)
	imm3 := bits(word, 12, 10)
	rn := bits(word, 9, 5)
	rd := bits(word, 4, 0)

	inst.Is64Bit = sf == 1
	inst.SetFlags = s == 1
	inst.Rd, inst.Rn, inst.Rm = uint8(rd), uint8(rn), uint8(rm)
	inst.ExtendType = ExtendType(option)
	inst.Shift = uint8(imm3)
	if op == 0 {
		inst.Op = OpADD
	} else {
		inst.Op = OpSUB
	}
}

func isAddSubCarry(word uint32) bool { return bits(word, 28, 21) == 0b11010000 }

func decodeAddSubCarry(word uint32, inst *Instruction) {
	inst.Format = FormatAddSubCarry
	sf := bits(word, 31, 31)
	op := bits(word, 30, 30)
	s := bits(word, 29, 29)
	rm := bits(word, 20, 16)
	rn := bits(word, 9, 5)
	rd := bits(word, 4, 0)

	inst.Is64Bit = sf == 1
	inst.SetFlags = s == 1
	inst.Rd, inst.Rn, inst.Rm = uint8(rd), uint8(rn), uint8(rm)
	if op == 0 {
		inst.Op = OpADC
	} else {
		inst.Op = OpSBC
	}
}

func isCondCompareReg(word uint32) bool {
	return bits(word, 28, 21) == 0b11010010 && bits(word, 11, 11) == 0 && bits(word, 10, 10) == 0
}
func isCondCompareImm(word uint32) bool {
	return bits(word, 28, 21) == 0b11010010 && bits(word, 11, 11) == 1 && bits(word, 10, 10) == 0
}

func decodeCondCompare(word uint32, inst *Instruction, imm bool) {
	if imm {
		inst.Format = FormatCondCompareImm
	} else {
		inst.Format = FormatCondCompareReg
	}
	sf := bits(word, 31, 31)
	op := bits(word, 30, 30)
	rn := bits(word, 9, 5)
	cond := bits(word, 15, 12)
	nzcv := bits(word, 3, 0)

	inst.Is64Bit = sf == 1
	inst.Rn = uint8(rn)
	inst.Cond = Cond(cond)
	inst.Imm = uint64(nzcv)
	if imm {
		inst.Imm |= uint64(bits(word, 20, 16)) << 8 // imm5 packed above nzcv
	} else {
		inst.Rm = uint8(bits(word, 20, 16))
	}
	if op == 0 {
		inst.Op = OpCCMN
	} else {
		inst.Op = OpCCMP
	}
}

func isCondSelect(word uint32) bool { return bits(word, 28, 21) == 0b11010100 }

func decodeCondSelect(word uint32, inst *Instruction) {
	inst.Format = FormatCondSelect
	sf := bits(word, 31, 31)
	op := bits(word, 30, 30)
	rm := bits(word, 20, 16)
	cond := bits(word, 15, 12)
	op2 := bits(word, 11, 10)
	rn := bits(word, 9, 5)
	rd := bits(word, 4, 0)

	inst.Is64Bit = sf == 1
	inst.Rd, inst.Rn, inst.Rm = uint8(rd), uint8(rn), uint8(rm)
	inst.Cond = Cond(cond)
	switch {
	case op == 0 && op2 == 0b00:
		inst.Op = OpCSEL
	case op == 0 && op2 == 0b01:
		inst.Op = OpCSINC
	case op == 1 && op2 == 0b00:
		inst.Op = OpCSINV
	case op == 1 && op2 == 0b01:
		inst.Op = OpCSNEG
	}
}

func isDP1Source(word uint32) bool { return bits(word, 28, 21) == 0b11010110 && bits(word, 30, 29) == 0b10 }

func decodeDP1Source(word uint32, inst *Instruction) {
	inst.Format = FormatDP1Source
	sf := bits(word, 31, 31)
	opcode := bits(word, 15, 10)
	rn := bits(word, 9, 5)
	rd := bits(word, 4, 0)

	inst.Is64Bit = sf == 1
	inst.Rd, inst.Rn = uint8(rd), uint8(rn)
	switch opcode {
	case 0b000000:
		inst.Op = OpRBIT
	case 0b000001:
		inst.Op = OpREV16
	case 0b000010:
		inst.Op = OpREV32
	case 0b000011:
		inst.Op = OpREV64
	case 0b000100:
		inst.Op = OpCLZ
	case 0b000101:
		inst.Op = OpCLS
	}
}

func isDP2Source(word uint32) bool {
	return bits(word, 28, 21) == 0b11010110 && bits(word, 30, 29) == 0b00
}

func decodeDP2Source(word uint32, inst *Instruction) {
	inst.Format = FormatDP2Source
	sf := bits(word, 31, 31)
	rm := bits(word, 20, 16)
	opcode := bits(word, 15, 10)
	rn := bits(word, 9, 5)
	rd := bits(word, 4, 0)

	inst.Is64Bit = sf == 1
	inst.Rd, inst.Rn, inst.Rm = uint8(rd), uint8(rn), uint8(rm)
	switch opcode {
	case 0b000010:
		inst.Op = OpUDIV
	case 0b000011:
		inst.Op = OpSDIV
	case 0b001000:
		inst.Op = OpLSLV
	case 0b001001:
		inst.Op = OpLSRV
	case 0b001010:
		inst.Op = OpASRV
	case 0b001011:
		inst.Op = OpRORV
	case 0b010000:
		inst.Op = OpCRC32
	case 0b010001:
		inst.Op = OpCRC32
	case 0b010010:
		inst.Op = OpCRC32
	case 0b010011:
		inst.Op = OpCRC32
	case 0b010100:
		inst.Op = OpCRC32C
	case 0b010101:
		inst.Op = OpCRC32C
	case 0b010110:
		inst.Op = OpCRC32C
	case 0b010111:
		inst.Op = OpCRC32C
	}
}

func isDP3Source(word uint32) bool { return bits(word, 28, 24) == 0b11011 }

func decodeDP3Source(word uint32, inst *Instruction) {
	inst.Format = FormatDP3Source
	sf := bits(word, 31, 31)
	op31 := bits(word, 23, 21)
	rm := bits(word, 20, 16)
	o0 := bits(word, 15, 15)
	ra := bits(word, 14, 10)
	rn := bits(word, 9, 5)
	rd := bits(word, 4, 0)

	inst.Is64Bit = sf == 1
	inst.Rd, inst.Rn, inst.Rm, inst.Ra = uint8(rd), uint8(rn), uint8(rm), uint8(ra)
	switch {
	case op31 == 0b000 && o0 == 0:
		inst.Op = OpMADD
	case op31 == 0b000 && o0 == 1:
		inst.Op = OpMSUB
	case op31 == 0b001 && o0 == 0:
		inst.Op = OpSMADDL
	case op31 == 0b101 && o0 == 0:
		inst.Op = OpUMADDL
	}
}
