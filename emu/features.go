package emu

import "sort"

// Feature names an optional A64 architectural feature the simulator
// may expose, consulted at startup for VL selection and during HLT
// k*CPUFeatures traps (spec.md §4.J, §6 "Feature set").
type Feature uint8

const (
	FeatureNone Feature = iota // sentinel terminating feature lists (spec.md §6)
	FeatureFP
	FeatureFP16
	FeatureSVE
	FeatureSVE2
	FeaturePACA
	FeaturePACB
	FeatureRCpc
	FeatureLSE
	FeatureCRC32
	FeatureDotProd
	FeatureJSCVT
)

// FeatureSet is a mutable set of enabled features, with a snapshot
// stack for kSave/kRestoreCPUFeatures (spec.md §4.J).
type FeatureSet struct {
	enabled map[Feature]bool
	stack   []map[Feature]bool
}

// NewFeatureSet returns a set with the given features enabled.
func NewFeatureSet(features ...Feature) *FeatureSet {
	fs := &FeatureSet{enabled: make(map[Feature]bool)}
	for _, f := range features {
		fs.enabled[f] = true
	}
	return fs
}

func (f Feature) String() string {
	switch f {
	case FeatureFP:
		return "fp"
	case FeatureFP16:
		return "fp16"
	case FeatureSVE:
		return "sve"
	case FeatureSVE2:
		return "sve2"
	case FeaturePACA:
		return "paca"
	case FeaturePACB:
		return "pacb"
	case FeatureRCpc:
		return "rcpc"
	case FeatureLSE:
		return "lse"
	case FeatureCRC32:
		return "crc32"
	case FeatureDotProd:
		return "dotprod"
	case FeatureJSCVT:
		return "jscvt"
	default:
		return "none"
	}
}

// ParseFeature maps a CLI-facing feature name (as produced by String)
// back to its Feature value; ok is false for an unrecognized name.
func ParseFeature(name string) (f Feature, ok bool) {
	for _, candidate := range []Feature{
		FeatureFP, FeatureFP16, FeatureSVE, FeatureSVE2, FeaturePACA,
		FeaturePACB, FeatureRCpc, FeatureLSE, FeatureCRC32,
		FeatureDotProd, FeatureJSCVT,
	} {
		if candidate.String() == name {
			return candidate, true
		}
	}
	return FeatureNone, false
}

// All returns every feature currently enabled, sorted for stable
// output (cmd/a64core's `features` subcommand).
func (fs *FeatureSet) All() []Feature {
	out := make([]Feature, 0, len(fs.enabled))
	for f, on := range fs.enabled {
		if on {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (fs *FeatureSet) Has(f Feature) bool { return fs.enabled[f] }

func (fs *FeatureSet) Set(f Feature)   { fs.enabled[f] = true }
func (fs *FeatureSet) Clear(f Feature) { delete(fs.enabled, f) }

// Configure replaces the set with the given list, stopping at the
// first FeatureNone sentinel (spec.md §6 "terminated by a sentinel
// value equal to the 'None' feature").
func (fs *FeatureSet) Configure(list []Feature) {
	fs.enabled = make(map[Feature]bool)
	for _, f := range list {
		if f == FeatureNone {
			break
		}
		fs.enabled[f] = true
	}
}

// Save pushes a snapshot of the current set; Restore pops the most
// recent one. Restoring an empty stack is a no-op.
func (fs *FeatureSet) Save() {
	snap := make(map[Feature]bool, len(fs.enabled))
	for k, v := range fs.enabled {
		snap[k] = v
	}
	fs.stack = append(fs.stack, snap)
}

func (fs *FeatureSet) Restore() {
	if len(fs.stack) == 0 {
		return
	}
	last := len(fs.stack) - 1
	fs.enabled = fs.stack[last]
	fs.stack = fs.stack[:last]
}
