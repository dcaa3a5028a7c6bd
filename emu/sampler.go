package emu

import (
	"sort"
	"sync"

	"github.com/sarchlab/a64core/insts"
)

// Sampler accumulates per-opcode-group execution counts, driven once
// per Simulator.Step, so cmd/profile can chart hot instruction classes
// without re-running the program under an external profiler.
type Sampler struct {
	mu     sync.Mutex
	counts map[insts.Op]uint64
	total  uint64
}

func NewSampler() *Sampler {
	return &Sampler{counts: make(map[insts.Op]uint64)}
}

func (s *Sampler) Record(op insts.Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[op]++
	s.total++
}

// Sample is one opcode's observed share of total executed instructions.
type Sample struct {
	Op    insts.Op
	Count uint64
}

// Top returns the n most-executed opcodes, most frequent first.
func (s *Sampler) Top(n int) []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	samples := make([]Sample, 0, len(s.counts))
	for op, count := range s.counts {
		samples = append(samples, Sample{Op: op, Count: count})
	}
	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Count != samples[j].Count {
			return samples[i].Count > samples[j].Count
		}
		return samples[i].Op < samples[j].Op
	})
	if n > 0 && n < len(samples) {
		samples = samples[:n]
	}
	return samples
}

func (s *Sampler) Total() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}
