package insts

// isSystem covers MRS/MSR, HINT, barriers (DMB/DSB/ISB), and CLREX
// (bits [31:22] == 0b1101010100, the "System" top-level class).
func isSystem(word uint32) bool { return bits(word, 31, 22) == 0b1101010100 }

func decodeSystem(word uint32, inst *Instruction) {
	inst.Format = FormatSystem
	l := bits(word, 21, 21)
	op0 := bits(word, 20, 19)
	op1 := bits(word, 18, 16)
	crn := bits(word, 15, 12)
	crm := bits(word, 11, 8)
	op2 := bits(word, 7, 5)
	rt := bits(word, 4, 0)

	inst.Rt = uint8(rt)

	switch {
	case op0 == 0b00 && crn == 0b0011 && rt == 0b11111:
		decodeHintOrBarrier(crm, op2, inst)
	case l == 1:
		inst.Op = OpMRS
		inst.SysReg = sysRegFromFields(op1, crn, crm, op2)
	case l == 0:
		inst.Op = OpMSR
		inst.SysReg = sysRegFromFields(op1, crn, crm, op2)
	}
}

func decodeHintOrBarrier(crm, op2 uint32, inst *Instruction) {
	switch {
	case crm == 0b0011 && op2 == 0b100:
		inst.Op = OpDSB
	case crm == 0b0011 && op2 == 0b101:
		inst.Op = OpDMB
	case crm == 0b0011 && op2 == 0b110:
		inst.Op = OpISB
	case crm == 0b0010 && op2 == 0b010:
		inst.Op = OpCLREX
	case op2 == 0b000 && crm == 0:
		inst.Op = OpNOP
	default:
		inst.Op = OpHINT
		inst.HintImm = uint8(crm<<3 | op2)
	}
}

// sysRegFromFields maps the small set of system registers spec.md
// §4.J names (NZCV, FPCR, RNDR, RNDRRS) to SysReg indices consumed by
// emu.System; any other encoding decodes to an out-of-range value the
// driver treats as unallocated.
func sysRegFromFields(op1, crn, crm, op2 uint32) uint8 {
	switch {
	case op1 == 0b011 && crn == 0b0100 && crm == 0b0010 && op2 == 0b000:
		return 0 // NZCV
	case op1 == 0b011 && crn == 0b0100 && crm == 0b0100 && op2 == 0b000:
		return 1 // FPCR
	case op1 == 0b011 && crn == 0b0010 && crm == 0b0100 && op2 == 0b000:
		return 2 // RNDR
	case op1 == 0b011 && crn == 0b0010 && crm == 0b0100 && op2 == 0b001:
		return 3 // RNDRRS
	default:
		return 0xFF
	}
}

func isHLTBRK(word uint32) bool {
	top := bits(word, 31, 21)
	return top == 0b11010100010 || top == 0b11010100001 || top == 0b11010100000
}

func decodeHLTBRK(word uint32, inst *Instruction) {
	inst.Format = FormatHLT
	top := bits(word, 31, 21)
	imm16 := bits(word, 20, 5)
	inst.Imm16 = uint16(imm16)
	switch top {
	case 0b11010100010:
		inst.Op = OpHLT
	case 0b11010100001:
		inst.Op = OpBRK
	case 0b11010100000:
		inst.Op = OpUDF
	}
}
