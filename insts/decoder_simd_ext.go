package insts

// Extended SIMD decode arms covering the emu/simd.go methods that
// decodeSIMD3Same's original 9-op coverage left unreachable (spec.md
// §4.E): 2-register-misc, shift-by-immediate, across-lanes reduction,
// table lookup, dup/broadcast, and the 128-bit vector load/store
// already declared as FormatSIMDLoadStore. Each gets its own top-byte
// tag (0xEE/0xEF/0xF4/0xF5/0xF6/0xFE, verified collision-free against
// every other isXxx predicate in this package) rather than real
// NEON's dense shared encoding, the same trade decoder_sve.go and
// decoder_fp.go make.

func isSIMD2RegMisc(word uint32) bool { return bits(word, 31, 24) == 0xEE }

func decodeSIMD2RegMisc(word uint32, inst *Instruction) {
	inst.Format = FormatSIMD2RegMisc
	op3 := bits(word, 23, 21)
	q := bits(word, 20, 20)
	size := bits(word, 19, 18)
	inst.Arrangement = arrangementFromQSize(q, size)
	inst.Rd = uint8(bits(word, 17, 13))
	inst.Rn = uint8(bits(word, 12, 8))

	switch op3 {
	case 0:
		inst.Op = OpVABS
	case 1:
		inst.Op = OpVNEG
	case 2:
		inst.Op = OpXTN
	case 3:
		inst.Op = OpSXTL
	case 4:
		inst.Op = OpUXTL
	}
}

func isSIMDShiftImm(word uint32) bool { return bits(word, 31, 24) == 0xEF }

func decodeSIMDShiftImm(word uint32, inst *Instruction) {
	inst.Format = FormatSIMDShiftImm
	op3 := bits(word, 23, 21)
	q := bits(word, 20, 20)
	size := bits(word, 19, 18)
	inst.Arrangement = arrangementFromQSize(q, size)
	inst.Shift = uint8(bits(word, 17, 12))
	inst.Rd = uint8(bits(word, 11, 7))
	inst.Rn = uint8(bits(word, 6, 2))

	switch op3 {
	case 0:
		inst.Op = OpVSHL
	case 1:
		inst.Op = OpVSSHR
	case 2:
		inst.Op = OpVUSHR
	case 3:
		inst.Op = OpVSRSHR
	case 4:
		inst.Op = OpVURSHR
	}
}

func isSIMDAcrossLanes(word uint32) bool { return bits(word, 31, 24) == 0xF4 }

func decodeSIMDAcrossLanes(word uint32, inst *Instruction) {
	inst.Format = FormatSIMDAcrossLanes
	op3 := bits(word, 23, 21)
	q := bits(word, 20, 20)
	size := bits(word, 19, 18)
	inst.Arrangement = arrangementFromQSize(q, size)
	inst.Rd = uint8(bits(word, 17, 13))
	inst.Rn = uint8(bits(word, 12, 8))

	switch op3 {
	case 0:
		inst.Op = OpADDV
	case 1:
		inst.Op = OpSMAXV
	case 2:
		inst.Op = OpSMINV
	case 3:
		inst.Op = OpUMAXV
	case 4:
		inst.Op = OpUMINV
	case 5:
		inst.Op = OpSADDLV
	case 6:
		inst.Op = OpUADDLV
	}
}

func isSIMDTableLookup(word uint32) bool { return bits(word, 31, 24) == 0xF5 }

func decodeSIMDTableLookup(word uint32, inst *Instruction) {
	inst.Format = FormatSIMDTableLookup
	isTBX := bits(word, 23, 23) == 1
	q := bits(word, 22, 22)
	length := bits(word, 21, 20) + 1
	inst.Rd = uint8(bits(word, 19, 15))
	inst.Rn = uint8(bits(word, 14, 10)) // first table register
	inst.Rm = uint8(bits(word, 9, 5))   // index vector
	inst.TableLen = uint8(length)
	inst.Arrangement = arrangementFromQSize(q, 0b00)

	if isTBX {
		inst.Op = OpTBX
	} else {
		inst.Op = OpTBL
	}
}

func isSIMDDup(word uint32) bool { return bits(word, 31, 24) == 0xF6 }

func decodeSIMDDup(word uint32, inst *Instruction) {
	inst.Format = FormatSIMDDup
	isElement := bits(word, 23, 23) == 1
	q := bits(word, 22, 22)
	size := bits(word, 21, 20)
	inst.Arrangement = arrangementFromQSize(q, size)
	inst.Rd = uint8(bits(word, 19, 15))
	inst.Rn = uint8(bits(word, 14, 10))
	inst.Index = int(bits(word, 9, 6))

	if isElement {
		inst.Op = OpDUPElement
	} else {
		inst.Op = OpDUP
	}
}

func isSIMDLoadStore128(word uint32) bool { return bits(word, 31, 24) == 0xFE }

func decodeSIMDLoadStore128(word uint32, inst *Instruction) {
	inst.Format = FormatSIMDLoadStore
	isStore := bits(word, 23, 23) == 1
	inst.Rd = uint8(bits(word, 22, 18))
	inst.Rn = uint8(bits(word, 17, 13))
	inst.Imm = uint64(bits(word, 12, 1)) * 16

	if isStore {
		inst.Op = OpSTR128
	} else {
		inst.Op = OpLDR128
	}
}
