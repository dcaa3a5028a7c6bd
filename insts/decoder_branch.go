package insts

func isBranchImm(word uint32) bool { return bits(word, 30, 26) == 0b00101 }

func decodeBranchImm(word uint32, inst *Instruction) {
	inst.Format = FormatBranchImm
	op := bits(word, 31, 31)
	imm26 := bits(word, 25, 0)
	inst.BranchOffset = signExtend(imm26, 26) * 4
	if op == 0 {
		inst.Op = OpB
	} else {
		inst.Op = OpBL
	}
}

func isBranchCond(word uint32) bool {
	return bits(word, 31, 25) == 0b0101010 && bits(word, 4, 4) == 0
}

func decodeBranchCond(word uint32, inst *Instruction) {
	inst.Format = FormatBranchCond
	inst.Op = OpBCond
	imm19 := bits(word, 23, 5)
	cond := bits(word, 3, 0)
	inst.BranchOffset = signExtend(imm19, 19) * 4
	inst.Cond = Cond(cond)
}

func isCompareBranch(word uint32) bool { return bits(word, 30, 25) == 0b011010 }

func decodeCompareBranch(word uint32, inst *Instruction) {
	inst.Format = FormatCompareBranch
	sf := bits(word, 31, 31)
	op := bits(word, 24, 24)
	imm19 := bits(word, 23, 5)
	rt := bits(word, 4, 0)

	inst.Is64Bit = sf == 1
	inst.Rt = uint8(rt)
	inst.BranchOffset = signExtend(imm19, 19) * 4
	if op == 0 {
		inst.Op = OpCBZ
	} else {
		inst.Op = OpCBNZ
	}
}

func isTestBranch(word uint32) bool { return bits(word, 30, 25) == 0b011011 }

func decodeTestBranch(word uint32, inst *Instruction) {
	inst.Format = FormatTestBranch
	b5 := bits(word, 31, 31)
	op := bits(word, 24, 24)
	b40 := bits(word, 23, 19)
	imm14 := bits(word, 18, 5)
	rt := bits(word, 4, 0)

	inst.Rt = uint8(rt)
	inst.Imm = uint64(b5<<5 | b40) // bit position to test
	inst.BranchOffset = signExtend(imm14, 14) * 4
	if op == 0 {
		inst.Op = OpTBZ
	} else {
		inst.Op = OpTBNZ
	}
}

func isBranchReg(word uint32) bool {
	hi := bits(word, 31, 25)
	mid := bits(word, 15, 10)
	lo := bits(word, 4, 0)
	return hi == 0b1101011 && mid == 0b000000 && lo == 0b00000
}

func decodeBranchReg(word uint32, inst *Instruction) {
	inst.Format = FormatBranchReg
	op := bits(word, 22, 21)
	rn := bits(word, 9, 5)
	inst.Rn = uint8(rn)
	switch op {
	case 0b00:
		inst.Op = OpBR
	case 0b01:
		inst.Op = OpBLR
	case 0b10:
		inst.Op = OpRET
	default:
		inst.Op = OpUnknown
	}
}
