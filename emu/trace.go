package emu

import "fmt"

// Tracer renders the bit-selectable trace categories system.go defines
// (TraceDISASM..TraceBRANCH, spec.md §6) as structured log lines
// through the same logr.Logger the rest of the ambient stack uses,
// so a `run --trace=regs,branch` CLI flag becomes log verbosity
// rather than a second output channel.
type Tracer struct {
	sys *System
}

func NewTracer(sys *System) *Tracer { return &Tracer{sys: sys} }

// Regs logs every general register touched since the last drain.
func (t *Tracer) Regs(r *RegFile) {
	if !t.sys.TraceEnabled(TraceREGS) {
		return
	}
	for _, i := range r.DrainModified() {
		t.sys.log.V(1).Info("reg write", "reg", fmt.Sprintf("X%d", i), "value", fmt.Sprintf("0x%X", r.ReadX(i, false)))
	}
}

// VRegs logs modified Z registers.
func (t *Tracer) VRegs(v *VRegFile) {
	if !t.sys.TraceEnabled(TraceVREGS) {
		return
	}
	z, _ := v.DrainModified()
	for _, i := range z {
		t.sys.log.V(1).Info("vreg write", "reg", fmt.Sprintf("Z%d", i))
	}
}

// PRegs logs modified P registers.
func (t *Tracer) PRegs(v *VRegFile) {
	if !t.sys.TraceEnabled(TracePREGS) {
		return
	}
	_, p := v.DrainModified()
	for _, i := range p {
		t.sys.log.V(1).Info("preg write", "reg", fmt.Sprintf("P%d", i))
	}
}

// SysRegs logs an MSR/MRS access.
func (t *Tracer) SysRegs(name string, value uint64) {
	if !t.sys.TraceEnabled(TraceSYSREGS) {
		return
	}
	t.sys.log.V(1).Info("sysreg", "name", name, "value", fmt.Sprintf("0x%X", value))
}

// Write logs a memory store.
func (t *Tracer) Write(addr uint64, size uint64, value uint64) {
	if !t.sys.TraceEnabled(TraceWRITE) {
		return
	}
	t.sys.log.V(1).Info("mem write", "addr", fmt.Sprintf("0x%X", addr), "size", size, "value", fmt.Sprintf("0x%X", value))
}

// Branch logs a taken or not-taken branch.
func (t *Tracer) Branch(from, to uint64, taken bool) {
	if !t.sys.TraceEnabled(TraceBRANCH) {
		return
	}
	t.sys.log.V(1).Info("branch", "from", fmt.Sprintf("0x%X", from), "to", fmt.Sprintf("0x%X", to), "taken", taken)
}
