package emu

// Cond is an ARM64 condition code, kept near-verbatim from the
// teacher's branch.go (`_examples/syifan-m2sim2/emu/branch.go`) since
// the 16-entry table is architecturally fixed.
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

// BranchUnit implements branches, condition evaluation, and the
// BType/BTI bookkeeping the teacher's BranchUnit never had to do
// (spec.md §3 "Program counter & BType", §4.G).
type BranchUnit struct {
	regFile *RegFile
}

func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// CheckCondition evaluates a condition code against the live NZCV,
// transcribed from the teacher's BranchUnit.CheckCondition.
func (b *BranchUnit) CheckCondition(cond Cond) bool {
	f := &b.regFile.Flags
	switch cond {
	case CondEQ:
		return f.Z
	case CondNE:
		return !f.Z
	case CondCS:
		return f.C
	case CondCC:
		return !f.C
	case CondMI:
		return f.N
	case CondPL:
		return !f.N
	case CondVS:
		return f.V
	case CondVC:
		return !f.V
	case CondHI:
		return f.C && !f.Z
	case CondLS:
		return !f.C || f.Z
	case CondGE:
		return f.N == f.V
	case CondLT:
		return f.N != f.V
	case CondGT:
		return !f.Z && (f.N == f.V)
	case CondLE:
		return f.Z || (f.N != f.V)
	case CondAL, CondNV:
		return true
	default:
		return false
	}
}

// B/BL are direct PC-relative branches; BL additionally sets LR to the
// return address (PC+4), per the teacher's BranchUnit.
func (b *BranchUnit) B(offset int64) {
	b.regFile.SetPC(uint64(int64(b.regFile.PC()) + offset))
	b.regFile.BTNext = BTypeDefault
}

func (b *BranchUnit) BL(offset int64) {
	b.regFile.WriteX(30, b.regFile.PC()+4, false)
	b.regFile.SetPC(uint64(int64(b.regFile.PC()) + offset))
	b.regFile.BTNext = BTypeDefault
}

// BCond is a conditional direct branch; a direct branch never needs
// BTI validation (only indirect branches do, spec.md §4.G).
func (b *BranchUnit) BCond(offset int64, cond Cond) {
	if b.CheckCondition(cond) {
		b.regFile.SetPC(uint64(int64(b.regFile.PC()) + offset))
	}
	b.regFile.BTNext = BTypeDefault
}

// CBZ/CBNZ compare-and-branch, TBZ/TBNZ test-bit-and-branch.
func (b *BranchUnit) CBZ(value uint64, offset int64) {
	if value == 0 {
		b.regFile.SetPC(uint64(int64(b.regFile.PC()) + offset))
	}
	b.regFile.BTNext = BTypeDefault
}

func (b *BranchUnit) CBNZ(value uint64, offset int64) {
	if value != 0 {
		b.regFile.SetPC(uint64(int64(b.regFile.PC()) + offset))
	}
	b.regFile.BTNext = BTypeDefault
}

func (b *BranchUnit) TBZ(value uint64, bit uint8, offset int64) {
	if value&(1<<bit) == 0 {
		b.regFile.SetPC(uint64(int64(b.regFile.PC()) + offset))
	}
	b.regFile.BTNext = BTypeDefault
}

func (b *BranchUnit) TBNZ(value uint64, bit uint8, offset int64) {
	if value&(1<<bit) != 0 {
		b.regFile.SetPC(uint64(int64(b.regFile.PC()) + offset))
	}
	b.regFile.BTNext = BTypeDefault
}

// indirectBType computes the BType the *target* instruction will see,
// per spec.md §3: "determined solely by instruction class and Rn" —
// BLR always yields BranchAndLink; BR yields
// BranchFromUnguardedOrToIP unless the source page is guarded, in
// which case BranchFromGuardedNotToIP. The caller supplies
// fromGuardedPage; the driver models no guarded pages and passes
// false. RET/RETAuth do not use this and reset BTNext to BTypeDefault.
func indirectBType(isLink bool, fromGuardedPage bool) BType {
	if isLink {
		return BTypeBranchAndLink
	}
	if fromGuardedPage {
		return BTypeFromGuardedNotToIP
	}
	return BTypeFromUnguardedOrToIP
}

// BR performs an indirect branch to Xn, optionally authenticating with
// a PAC key first (BRAA/BRAB); authFailed errors are surfaced by the
// caller as ErrAuthentication if trapping is enabled (spec.md §4.C/§4.G).
func (b *BranchUnit) BR(rn uint8, fromGuardedPage bool) {
	target := b.regFile.ReadX(rn, false)
	b.regFile.SetPC(target)
	b.regFile.BTNext = indirectBType(false, fromGuardedPage)
}

func (b *BranchUnit) BRAuth(rn uint8, modifier uint64, key uint8, fromGuardedPage bool) (authOK bool) {
	raw := b.regFile.ReadX(rn, false)
	target, ok := PACAuth(raw, modifier, key)
	b.regFile.SetPC(target)
	b.regFile.BTNext = indirectBType(false, fromGuardedPage)
	return ok
}

// BLR is BR with link: LR is set to PC+4 before branching.
func (b *BranchUnit) BLR(rn uint8, fromGuardedPage bool) {
	target := b.regFile.ReadX(rn, false)
	b.regFile.WriteX(30, b.regFile.PC()+4, false)
	b.regFile.SetPC(target)
	b.regFile.BTNext = indirectBType(true, fromGuardedPage)
}

func (b *BranchUnit) BLRAuth(rn uint8, modifier uint64, key uint8, fromGuardedPage bool) (authOK bool) {
	raw := b.regFile.ReadX(rn, false)
	target, ok := PACAuth(raw, modifier, key)
	b.regFile.WriteX(30, b.regFile.PC()+4, false)
	b.regFile.SetPC(target)
	b.regFile.BTNext = indirectBType(true, fromGuardedPage)
	return ok
}

// RET returns via Xn (X30 by default), with an optional PAC-authenticated
// form (RETAA/RETAB, which always use SP as the modifier and key A/B).
func (b *BranchUnit) RET(rn uint8) {
	b.regFile.SetPC(b.regFile.ReadX(rn, false))
	b.regFile.BTNext = BTypeDefault
}

func (b *BranchUnit) RETAuth(rn uint8, modifier uint64, key uint8) (authOK bool) {
	raw := b.regFile.ReadX(rn, false)
	target, ok := PACAuth(raw, modifier, key)
	b.regFile.SetPC(target)
	b.regFile.BTNext = BTypeDefault
	return ok
}

// CheckBTI validates the current BType against a landing instruction's
// BTI hint kind, per spec.md §4.J: "BTI hints validate BType against
// the current guarded-page status; a mismatch aborts." kind is one of
// 'n' (plain BTI, accepts only BranchAndLink/neither-guard states
// depending on target), 'c' (BTI c), 'j' (BTI j), or "jc" encoded by
// passing both acceptC and acceptJ true.
func CheckBTI(bt BType, acceptC, acceptJ bool) bool {
	switch bt {
	case BTypeDefault:
		return true // not an indirect-branch landing, always legal
	case BTypeBranchAndLink:
		return acceptC
	case BTypeFromUnguardedOrToIP:
		return true // landing from an unguarded page is always legal
	case BTypeFromGuardedNotToIP:
		return acceptJ
	default:
		return false
	}
}
