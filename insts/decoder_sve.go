package insts

// SVE decode arm, grounded on the teacher's per-class isXxx/decodeXxx
// idiom (decoder.go) and on emu/sve.go's method surface (spec.md
// §4.F). Z registers (32, 5 bits) and P registers (16, 4 bits)
// already fit their real architected widths; the bit budget that runs
// short is the element-size/condition/immediate side of a handful of
// sub-ops, which are narrowed or fixed to a common case and documented
// per case below — the same kind of pragmatic simplification this
// decoder already takes for the system-register subspace.
//
// Both SVE classes get their own top-byte tag (0xE7 predicate ops,
// 0xEC integer-compare/control-flow ops), verified collision-free
// against every other isXxx predicate in this package, rather than
// real SVE's own (much larger) instruction encoding.

func esizeFromCode(code uint32) int {
	switch code {
	case 0b00:
		return 8
	case 0b01:
		return 16
	case 0b10:
		return 32
	default:
		return 64
	}
}

func isSVEPredicate(word uint32) bool { return bits(word, 31, 24) == 0xE7 }

func decodeSVEPredicate(word uint32, inst *Instruction) {
	inst.Format = FormatSVEPredicate
	op5 := bits(word, 23, 19)

	switch op5 {
	case 0: // PTRUE
		inst.Op = OpPTRUE
		inst.Rd = uint8(bits(word, 18, 15))
		inst.ESize = esizeFromCode(bits(word, 14, 13))
		inst.Pattern = uint8(bits(word, 12, 8))
		inst.SetFlags = bits(word, 7, 7) == 1
	case 1: // PFALSE
		inst.Op = OpPFALSE
		inst.Rd = uint8(bits(word, 18, 15))
	case 2: // PTEST
		inst.Op = OpPTEST
		inst.Rs = uint8(bits(word, 18, 15)) // Pg
		inst.Rn = uint8(bits(word, 14, 11)) // Pn
		inst.ESize = esizeFromCode(bits(word, 10, 9))
	case 3: // predicate logical (AND/BIC/EOR/NAND/NOR/ORN/ORR/SEL)
		inst.Op = OpSVEPredLogical
		inst.Rd = uint8(bits(word, 18, 15)) // Pd
		inst.Rs = uint8(bits(word, 14, 11)) // Pg
		inst.Rn = uint8(bits(word, 10, 7))  // Pn
		inst.Rm = uint8(bits(word, 6, 3))   // Pm
		inst.PredOp = uint8(bits(word, 2, 0))
		inst.ESize = 8
	case 4: // INDEX
		inst.Op = OpSVEIndex
		inst.Rd = uint8(bits(word, 18, 14))
		inst.ESize = esizeFromCode(bits(word, 13, 12))
		inst.SignedImm = signExtend(bits(word, 11, 6), 6)
		inst.Shift = uint8(bits(word, 5, 0))
	case 5: // DUP (immediate broadcast)
		inst.Op = OpSVEDup
		inst.Rd = uint8(bits(word, 18, 14))
		inst.ESize = esizeFromCode(bits(word, 13, 12))
		inst.SignedImm = signExtend(bits(word, 11, 0), 12)
	case 6: // INSR
		inst.Op = OpSVEInsr
		inst.Rd = uint8(bits(word, 18, 14)) // Zdn
		inst.ESize = esizeFromCode(bits(word, 13, 12))
		inst.Rn = uint8(bits(word, 11, 7)) // scalar GPR source
	case 7: // UNPK
		inst.Op = OpSVEUnpk
		inst.Rd = uint8(bits(word, 18, 14))
		inst.Rn = uint8(bits(word, 13, 9))
		inst.ESize = esizeFromCode(bits(word, 8, 7))
		inst.Hi = bits(word, 6, 6) == 1
		inst.Signed = bits(word, 5, 5) == 1
	case 8: // SEL (vector merge under predicate)
		inst.Op = OpSVESel
		inst.Rd = uint8(bits(word, 18, 14))
		inst.Rs = uint8(bits(word, 13, 10)) // Pg
		inst.Rn = uint8(bits(word, 9, 5))
		inst.Rm = uint8(bits(word, 4, 0))
		inst.ESize = 32
	case 9: // LDR (contiguous predicated vector load)
		inst.Op = OpSVELdr
		inst.Rd = uint8(bits(word, 18, 14))
		inst.Rs = uint8(bits(word, 13, 10)) // Pg
		inst.ESize = esizeFromCode(bits(word, 9, 8))
		inst.Rn = uint8(bits(word, 7, 3))
		inst.SignedImm = signExtend(bits(word, 2, 0), 3)
	case 10: // STR
		inst.Op = OpSVEStr
		inst.Rd = uint8(bits(word, 18, 14))
		inst.Rs = uint8(bits(word, 13, 10)) // Pg
		inst.ESize = esizeFromCode(bits(word, 9, 8))
		inst.Rn = uint8(bits(word, 7, 3))
		inst.SignedImm = signExtend(bits(word, 2, 0), 3)
	case 11: // MOVPRFX
		inst.Op = OpSVEMovprfx
		inst.Rd = uint8(bits(word, 18, 14))
	}
}

func isSVEIntCompareVectors(word uint32) bool { return bits(word, 31, 24) == 0xEC }

func decodeSVEIntCompareVectors(word uint32, inst *Instruction) {
	inst.Format = FormatSVEIntCompareVectors
	op3 := bits(word, 23, 21)

	switch op3 {
	case 0: // CMP (vector)
		inst.Op = OpSVECmp
		inst.Rd = uint8(bits(word, 20, 17)) // Pd
		inst.Rs = uint8(bits(word, 16, 13)) // Pg
		inst.Rn = uint8(bits(word, 12, 8))  // Zn
		inst.Rm = uint8(bits(word, 7, 4))   // Zm (narrowed to Z0-Z15)
		inst.CmpCond = uint8(bits(word, 3, 0))
		inst.ESize = 32
	case 1: // CMP (immediate)
		inst.Op = OpSVECmpImm
		inst.Rd = uint8(bits(word, 20, 17)) // Pd
		inst.Rs = uint8(bits(word, 16, 13)) // Pg
		inst.Rn = uint8(bits(word, 12, 8))  // Zn
		inst.SignedImm = signExtend(bits(word, 7, 4), 4)
		inst.CmpCond = uint8(bits(word, 3, 0))
		inst.ESize = 32
	case 2: // WHILELT/LE/LO/LS
		inst.Op = OpSVEWhile
		inst.Rd = uint8(bits(word, 20, 17)) // Pd
		inst.Rn = uint8(bits(word, 16, 12)) // Rn (GPR)
		inst.Rm = uint8(bits(word, 11, 7))  // Rm (GPR)
		inst.ESize = esizeFromCode(bits(word, 6, 5))
		inst.CmpCond = uint8(bits(word, 4, 1))
	case 3: // CTERMEQ/NE
		inst.Op = OpSVECterm
		inst.Rn = uint8(bits(word, 20, 16))
		inst.Rm = uint8(bits(word, 15, 11))
		inst.SetFlags = bits(word, 10, 10) == 1 // eq (true) vs ne (false)
		inst.Is64Bit = bits(word, 9, 9) == 1
	case 4: // INC/DEC by pattern element count, saturating (no governing predicate is decoded)
		inst.Op = OpSVEIncDec
		inst.Rd = uint8(bits(word, 20, 16)) // Rdn (GPR, read-modify-write)
		inst.Pattern = uint8(bits(word, 15, 11))
		inst.Signed = bits(word, 10, 10) == 1
		inst.SetFlags = bits(word, 9, 9) == 1 // true selects DEC, false INC
		inst.ESize = esizeFromCode(bits(word, 8, 7))
		inst.Is64Bit = bits(word, 6, 6) == 1
	}
}
