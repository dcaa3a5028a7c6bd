package insts

// String renders an Op as its A64 mnemonic-ish name, used by
// cmd/profile's chart labels and diagnostic error messages.
func (o Op) String() string {
	switch o {
	case OpADD:
		return "ADD"
	case OpADC:
		return "ADC"
	case OpSUB:
		return "SUB"
	case OpSBC:
		return "SBC"
	case OpAND:
		return "AND"
	case OpORR:
		return "ORR"
	case OpEOR:
		return "EOR"
	case OpORN:
		return "ORN"
	case OpBIC:
		return "BIC"
	case OpEON:
		return "EON"
	case OpMOVZ:
		return "MOVZ"
	case OpMOVN:
		return "MOVN"
	case OpMOVK:
		return "MOVK"
	case OpSBFM:
		return "SBFM"
	case OpBFM:
		return "BFM"
	case OpUBFM:
		return "UBFM"
	case OpEXTR:
		return "EXTR"
	case OpCSEL:
		return "CSEL"
	case OpCSINC:
		return "CSINC"
	case OpCSINV:
		return "CSINV"
	case OpCSNEG:
		return "CSNEG"
	case OpCCMP:
		return "CCMP"
	case OpCCMN:
		return "CCMN"
	case OpMADD:
		return "MADD"
	case OpMSUB:
		return "MSUB"
	case OpSMADDL:
		return "SMADDL"
	case OpUMADDL:
		return "UMADDL"
	case OpSDIV:
		return "SDIV"
	case OpUDIV:
		return "UDIV"
	case OpLSLV:
		return "LSLV"
	case OpLSRV:
		return "LSRV"
	case OpASRV:
		return "ASRV"
	case OpRORV:
		return "RORV"
	case OpCLZ:
		return "CLZ"
	case OpCLS:
		return "CLS"
	case OpRBIT:
		return "RBIT"
	case OpREV16:
		return "REV16"
	case OpREV32:
		return "REV32"
	case OpREV64:
		return "REV64"
	case OpCRC32:
		return "CRC32"
	case OpCRC32C:
		return "CRC32C"
	case OpADR:
		return "ADR"
	case OpADRP:
		return "ADRP"
	case OpB:
		return "B"
	case OpBL:
		return "BL"
	case OpBCond:
		return "BCond"
	case OpBR:
		return "BR"
	case OpBLR:
		return "BLR"
	case OpRET:
		return "RET"
	case OpBRAuth:
		return "BRAuth"
	case OpBLRAuth:
		return "BLRAuth"
	case OpRETAuth:
		return "RETAuth"
	case OpCBZ:
		return "CBZ"
	case OpCBNZ:
		return "CBNZ"
	case OpTBZ:
		return "TBZ"
	case OpTBNZ:
		return "TBNZ"
	case OpLDRB:
		return "LDRB"
	case OpLDRH:
		return "LDRH"
	case OpLDR32:
		return "LDR32"
	case OpLDR64:
		return "LDR64"
	case OpSTRB:
		return "STRB"
	case OpSTRH:
		return "STRH"
	case OpSTR32:
		return "STR32"
	case OpSTR64:
		return "STR64"
	case OpLDRSB32:
		return "LDRSB32"
	case OpLDRSB64:
		return "LDRSB64"
	case OpLDRSH32:
		return "LDRSH32"
	case OpLDRSH64:
		return "LDRSH64"
	case OpLDRSW:
		return "LDRSW"
	case OpLDPW:
		return "LDPW"
	case OpSTPW:
		return "STPW"
	case OpLDPX:
		return "LDPX"
	case OpSTPX:
		return "STPX"
	case OpLDPSW:
		return "LDPSW"
	case OpLDRLiteral32:
		return "LDRLiteral32"
	case OpLDRLiteral64:
		return "LDRLiteral64"
	case OpLDXR:
		return "LDXR"
	case OpLDAXR:
		return "LDAXR"
	case OpSTXR:
		return "STXR"
	case OpSTLXR:
		return "STLXR"
	case OpCAS:
		return "CAS"
	case OpCASP:
		return "CASP"
	case OpSWP:
		return "SWP"
	case OpLDADD:
		return "LDADD"
	case OpLDCLR:
		return "LDCLR"
	case OpLDEOR:
		return "LDEOR"
	case OpLDSET:
		return "LDSET"
	case OpLDSMAX:
		return "LDSMAX"
	case OpLDSMIN:
		return "LDSMIN"
	case OpLDUMAX:
		return "LDUMAX"
	case OpLDUMIN:
		return "LDUMIN"
	case OpLDAPR:
		return "LDAPR"
	case OpSTLUR:
		return "STLUR"
	case OpVADD:
		return "VADD"
	case OpVSUB:
		return "VSUB"
	case OpVMUL:
		return "VMUL"
	case OpVMLA:
		return "VMLA"
	case OpVMLS:
		return "VMLS"
	case OpVFADD:
		return "VFADD"
	case OpVFSUB:
		return "VFSUB"
	case OpVFMUL:
		return "VFMUL"
	case OpVFDIV:
		return "VFDIV"
	case OpLDR128:
		return "LDR128"
	case OpSTR128:
		return "STR128"
	case OpDUP:
		return "DUP"
	case OpVABS:
		return "VABS"
	case OpVNEG:
		return "VNEG"
	case OpVSQADD:
		return "VSQADD"
	case OpVSQSUB:
		return "VSQSUB"
	case OpVUQADD:
		return "VUQADD"
	case OpVUQSUB:
		return "VUQSUB"
	case OpVSHL:
		return "VSHL"
	case OpVSSHR:
		return "VSSHR"
	case OpVUSHR:
		return "VUSHR"
	case OpVSRSHR:
		return "VSRSHR"
	case OpVURSHR:
		return "VURSHR"
	case OpVCMEQ:
		return "VCMEQ"
	case OpVCMGT:
		return "VCMGT"
	case OpVCMGE:
		return "VCMGE"
	case OpVCMHI:
		return "VCMHI"
	case OpVCMHS:
		return "VCMHS"
	case OpVSMAX:
		return "VSMAX"
	case OpVSMIN:
		return "VSMIN"
	case OpVUMAX:
		return "VUMAX"
	case OpVUMIN:
		return "VUMIN"
	case OpADDV:
		return "ADDV"
	case OpSMAXV:
		return "SMAXV"
	case OpSMINV:
		return "SMINV"
	case OpUMAXV:
		return "UMAXV"
	case OpUMINV:
		return "UMINV"
	case OpSADDLV:
		return "SADDLV"
	case OpUADDLV:
		return "UADDLV"
	case OpTBL:
		return "TBL"
	case OpTBX:
		return "TBX"
	case OpXTN:
		return "XTN"
	case OpSXTL:
		return "SXTL"
	case OpUXTL:
		return "UXTL"
	case OpVFMAX:
		return "VFMAX"
	case OpVFMIN:
		return "VFMIN"
	case OpFADDP:
		return "FADDP"
	case OpFMAXP:
		return "FMAXP"
	case OpFMINP:
		return "FMINP"
	case OpDUPElement:
		return "DUPElement"
	case OpFMOVImm:
		return "FMOVImm"
	case OpFMOV:
		return "FMOV"
	case OpFCVT:
		return "FCVT"
	case OpFCVTZS:
		return "FCVTZS"
	case OpFCVTZU:
		return "FCVTZU"
	case OpSCVTF:
		return "SCVTF"
	case OpUCVTF:
		return "UCVTF"
	case OpFJCVTZS:
		return "FJCVTZS"
	case OpFCMP:
		return "FCMP"
	case OpFCMPZero:
		return "FCMPZero"
	case OpFCSEL:
		return "FCSEL"
	case OpFCCMP:
		return "FCCMP"
	case OpFABS:
		return "FABS"
	case OpFNEG:
		return "FNEG"
	case OpFSQRT:
		return "FSQRT"
	case OpFADD:
		return "FADD"
	case OpFSUB:
		return "FSUB"
	case OpFMUL:
		return "FMUL"
	case OpFDIV:
		return "FDIV"
	case OpFMAX:
		return "FMAX"
	case OpFMIN:
		return "FMIN"
	case OpMRS:
		return "MRS"
	case OpMSR:
		return "MSR"
	case OpHINT:
		return "HINT"
	case OpDMB:
		return "DMB"
	case OpDSB:
		return "DSB"
	case OpISB:
		return "ISB"
	case OpCLREX:
		return "CLREX"
	case OpHLT:
		return "HLT"
	case OpBRK:
		return "BRK"
	case OpUDF:
		return "UDF"
	case OpNOP:
		return "NOP"
	case OpPTRUE:
		return "PTRUE"
	case OpPFALSE:
		return "PFALSE"
	case OpPTEST:
		return "PTEST"
	case OpSVEIndex:
		return "SVEIndex"
	case OpSVEDup:
		return "SVEDup"
	case OpSVEWhile:
		return "SVEWhile"
	case OpSVEPredLogical:
		return "SVEPredLogical"
	case OpSVEInsr:
		return "SVEInsr"
	case OpSVEUnpk:
		return "SVEUnpk"
	case OpSVECmp:
		return "SVECmp"
	case OpSVECmpImm:
		return "SVECmpImm"
	case OpSVECterm:
		return "SVECterm"
	case OpSVEIncDec:
		return "SVEIncDec"
	case OpSVESel:
		return "SVESel"
	case OpSVELdr:
		return "SVELdr"
	case OpSVEStr:
		return "SVEStr"
	case OpSVEMovprfx:
		return "SVEMovprfx"
	default:
		return "UNKNOWN"
	}
}
