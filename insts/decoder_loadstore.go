package insts

// sizeFromOpc maps the LDR/STR "size" field (bits [31:30]) to a byte
// count for the unsigned-immediate and register-offset forms.
func sizeFromOpc(size uint32) uint64 {
	return uint64(1) << size
}

func isLoadStoreUnsignedImm(word uint32) bool {
	return bits(word, 29, 27) == 0b111 && bits(word, 25, 24) == 0b01 && bits(word, 21, 21) == 0
}

func decodeLoadStoreUnsignedImm(word uint32, inst *Instruction) {
	inst.Format = FormatLoadStoreOffset
	inst.AddrMode = AddrOffset
	size := bits(word, 31, 30)
	v := bits(word, 26, 26)
	opc := bits(word, 23, 22)
	imm12 := bits(word, 21, 10)
	rn := bits(word, 9, 5)
	rt := bits(word, 4, 0)

	inst.Rn, inst.Rt = uint8(rn), uint8(rt)
	inst.Size = sizeFromOpc(size)
	inst.Imm = uint64(imm12) * inst.Size
	_ = v

	switch {
	case size == 0b00 && opc == 0b00:
		inst.Op = OpSTRB
	case size == 0b00 && opc == 0b01:
		inst.Op = OpLDRB
	case size == 0b00 && opc == 0b10:
		inst.Op = OpLDRSB64
	case size == 0b00 && opc == 0b11:
		inst.Op = OpLDRSB32
	case size == 0b01 && opc == 0b00:
		inst.Op = OpSTRH
	case size == 0b01 && opc == 0b01:
		inst.Op = OpLDRH
	case size == 0b01 && opc == 0b10:
		inst.Op = OpLDRSH64
	case size == 0b01 && opc == 0b11:
		inst.Op = OpLDRSH32
	case size == 0b10 && opc == 0b00:
		inst.Op = OpSTR32
	case size == 0b10 && opc == 0b01:
		inst.Op = OpLDR32
	case size == 0b10 && opc == 0b10:
		inst.Op = OpLDRSW
	case size == 0b11 && opc == 0b00:
		inst.Op = OpSTR64
		inst.Is64Bit = true
	case size == 0b11 && opc == 0b01:
		inst.Op = OpLDR64
		inst.Is64Bit = true
	}
}

// isLoadStoreRegOffsetOrIndexed covers the register-offset,
// pre-index and post-index unscaled-immediate forms sharing bits
// [29:27]=111, [25:24]=00, [21]=1 (reg offset) or [21]=0 with a
// nonzero op2 distinguishing pre/post index.
func isLoadStoreRegOffsetOrIndexed(word uint32) bool {
	return bits(word, 29, 27) == 0b111 && bits(word, 25, 24) == 0b00
}

func decodeLoadStoreRegOffsetOrIndexed(word uint32, inst *Instruction) {
	size := bits(word, 31, 30)
	opc := bits(word, 23, 22)
	rn := bits(word, 9, 5)
	rt := bits(word, 4, 0)
	inst.Rn, inst.Rt = uint8(rn), uint8(rt)
	inst.Size = sizeFromOpc(size)

	isRegOffset := bits(word, 21, 21) == 1 && bits(word, 11, 10) == 0b10
	if isRegOffset {
		inst.Format = FormatLoadStoreOffset
		inst.AddrMode = AddrOffset
		inst.RegOffset = true
		inst.Rm = uint8(bits(word, 20, 16))
		inst.ExtendType = ExtendType(bits(word, 15, 13))
		if bits(word, 12, 12) == 1 {
			inst.Shift = uint8(size)
		}
	} else {
		imm9 := bits(word, 20, 12)
		op2 := bits(word, 11, 10)
		inst.SignedImm = signExtend(imm9, 9)
		switch op2 {
		case 0b01:
			inst.Format = FormatLoadStorePost
			inst.AddrMode = AddrPostIndex
		case 0b11:
			inst.Format = FormatLoadStorePre
			inst.AddrMode = AddrPreIndex
		default:
			inst.Format = FormatLoadStoreOffset
			inst.AddrMode = AddrOffset
		}
	}

	switch {
	case size == 0b00 && opc == 0b00:
		inst.Op = OpSTRB
	case size == 0b00 && opc == 0b01:
		inst.Op = OpLDRB
	case size == 0b01 && opc == 0b00:
		inst.Op = OpSTRH
	case size == 0b01 && opc == 0b01:
		inst.Op = OpLDRH
	case size == 0b10 && opc == 0b00:
		inst.Op = OpSTR32
	case size == 0b10 && opc == 0b01:
		inst.Op = OpLDR32
	case size == 0b11 && opc == 0b00:
		inst.Op = OpSTR64
		inst.Is64Bit = true
	case size == 0b11 && opc == 0b01:
		inst.Op = OpLDR64
		inst.Is64Bit = true
	}
}

func isLoadStorePair(word uint32) bool {
	return bits(word, 29, 25) == 0b10100 // covers offset/pre/post pair forms (op2 in [26:23])
}

func decodeLoadStorePair(word uint32, inst *Instruction) {
	inst.Format = FormatLoadStorePair
	opc := bits(word, 31, 30)
	v := bits(word, 26, 26)
	l := bits(word, 22, 22)
	imm7 := bits(word, 21, 15)
	rt2 := bits(word, 14, 10)
	rn := bits(word, 9, 5)
	rt := bits(word, 4, 0)
	_ = v

	isX := opc == 0b10
	elemSize := uint64(4)
	if isX {
		elemSize = 8
		inst.Is64Bit = true
	}
	inst.Rn, inst.Rt, inst.Rt2 = uint8(rn), uint8(rt), uint8(rt2)
	inst.SignedImm = signExtend(imm7, 7) * int64(elemSize)
	inst.AddrMode = AddrOffset

	switch {
	case opc == 0b10 && l == 0:
		inst.Op = OpSTPX
	case opc == 0b10 && l == 1:
		inst.Op = OpLDPX
	case opc == 0b00 && l == 0:
		inst.Op = OpSTPW
	case opc == 0b00 && l == 1:
		inst.Op = OpLDPW
	case opc == 0b01 && l == 1:
		inst.Op = OpLDPSW
	}
}

func isLoadStoreExclusive(word uint32) bool { return bits(word, 29, 24) == 0b001000 }

func decodeLoadStoreExclusive(word uint32, inst *Instruction) {
	inst.Format = FormatLoadStoreExclusive
	size := bits(word, 31, 30)
	l := bits(word, 22, 22)
	o0 := bits(word, 15, 15)
	rs := bits(word, 20, 16)
	rt2 := bits(word, 14, 10)
	rn := bits(word, 9, 5)
	rt := bits(word, 4, 0)

	inst.Size = sizeFromOpc(size)
	inst.Rn, inst.Rt, inst.Rt2, inst.Rs = uint8(rn), uint8(rt), uint8(rt2), uint8(rs)
	inst.Acquire = o0 == 1
	inst.Release = o0 == 1

	switch l {
	case 1:
		if o0 == 1 {
			inst.Op = OpLDAXR
		} else {
			inst.Op = OpLDXR
		}
	case 0:
		if o0 == 1 {
			inst.Op = OpSTLXR
		} else {
			inst.Op = OpSTXR
		}
	}
}

func isLoadStoreLiteral(word uint32) bool { return bits(word, 29, 24) == 0b011000 }

func decodeLoadStoreLiteral(word uint32, inst *Instruction) {
	inst.Format = FormatLoadStoreLiteral
	opc := bits(word, 31, 30)
	imm19 := bits(word, 23, 5)
	rt := bits(word, 4, 0)

	inst.Rt = uint8(rt)
	inst.BranchOffset = signExtend(imm19, 19) * 4
	if opc == 0b01 {
		inst.Op = OpLDRLiteral64
		inst.Is64Bit = true
	} else {
		inst.Op = OpLDRLiteral32
	}
}
