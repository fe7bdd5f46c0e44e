package features

import (
	"math/bits"
	"sync"
)

// MappingType selects how a raw circular binary pattern is reduced to a
// histogram bin index.
type MappingType int

const (
	// MappingNone keeps the raw pattern: 2^s bins
	MappingNone MappingType = iota
	// MappingU2 gives every uniform pattern (at most two circular bit
	// transitions) its own bin and collapses the rest into one:
	// s*(s-1)+3 bins
	MappingU2
	// MappingRI collapses all circular rotations of a pattern into one bin
	MappingRI
	// MappingRIU2 maps uniform patterns by their number of set bits and
	// collapses the rest into one bin: s+2 bins
	MappingRIU2
)

func (m MappingType) String() string {
	switch m {
	case MappingNone:
		return "none"
	case MappingU2:
		return "u2"
	case MappingRI:
		return "ri"
	case MappingRIU2:
		return "riu2"
	}
	return "unknown"
}

// lbpMapping is a lookup table from raw s-bit pattern to bin index.
// Immutable once built.
type lbpMapping struct {
	table []int
	bins  int
}

type mappingKey struct {
	samples int
	mapping MappingType
}

// Tables depend only on (samples, mapping), so they are built once and
// shared read-only across windows and calls.
var mappingCache sync.Map

func getMapping(samples int, mapping MappingType) *lbpMapping {
	key := mappingKey{samples: samples, mapping: mapping}
	if m, ok := mappingCache.Load(key); ok {
		return m.(*lbpMapping)
	}
	m, _ := mappingCache.LoadOrStore(key, buildMapping(samples, mapping))
	return m.(*lbpMapping)
}

func buildMapping(samples int, mapping MappingType) *lbpMapping {
	n := 1 << samples
	table := make([]int, n)
	switch mapping {
	case MappingNone:
		for p := 0; p < n; p++ {
			table[p] = p
		}
		return &lbpMapping{table: table, bins: n}
	case MappingU2:
		// Uniform patterns get sequential indices in pattern order,
		// everything else shares the final bin.
		junk := samples*(samples-1) + 2
		next := 0
		for p := 0; p < n; p++ {
			if transitions(p, samples) <= 2 {
				table[p] = next
				next++
			} else {
				table[p] = junk
			}
		}
		return &lbpMapping{table: table, bins: junk + 1}
	case MappingRI:
		// One bin per rotation-equivalence class, indexed by order of the
		// class's minimal rotation.
		index := map[int]int{}
		for p := 0; p < n; p++ {
			m := minRotation(p, samples)
			if _, ok := index[m]; !ok {
				index[m] = len(index)
			}
			table[p] = index[m]
		}
		return &lbpMapping{table: table, bins: len(index)}
	case MappingRIU2:
		for p := 0; p < n; p++ {
			if transitions(p, samples) <= 2 {
				table[p] = bits.OnesCount32(uint32(p))
			} else {
				table[p] = samples + 1
			}
		}
		return &lbpMapping{table: table, bins: samples + 2}
	}
	panic("unknown LBP mapping type")
}

// Number of circular 0-1 transitions in an s-bit pattern
func transitions(pattern, s int) int {
	count := 0
	for i := 0; i < s; i++ {
		a := (pattern >> i) & 1
		b := (pattern >> ((i + 1) % s)) & 1
		if a != b {
			count++
		}
	}
	return count
}

// Minimum value over all circular rotations of an s-bit pattern
func minRotation(pattern, s int) int {
	mask := (1 << s) - 1
	best := pattern
	p := pattern
	for i := 1; i < s; i++ {
		p = ((p >> 1) | (p << (s - 1))) & mask
		if p < best {
			best = p
		}
	}
	return best
}
