// Package lz78 builds a bit-packed, variable-order Markov context tree from
// a reference nucleotide stream (an LZ78-style incremental parse) and uses
// it to score how well a query stream is explained by that reference.
package lz78

import (
	"fmt"
	"io"
	"math"
)

// ByteSource yields nucleotide-stream bytes one at a time, terminating with
// io.EOF. nucstream.Stream satisfies this directly.
type ByteSource interface {
	ReadByte() (byte, error)
}

// LenBases precomputes, for a given max tree depth, the starting bit index
// of each depth's block of nodes. bases[d-1] is the offset of depth d's
// block, and bases[i] equals the total number of node slots at depths 1
// through i.
type LenBases struct {
	bases    []int
	maxDepth int
}

// NewLenBases builds the offset table for maxDepth, where
// bases[i] = bases[i-1] + 4<<(2*(i-1)).
func NewLenBases(maxDepth int) LenBases {
	bases := make([]int, maxDepth+1)
	for i := 1; i <= maxDepth; i++ {
		bases[i] = bases[i-1] + (4 << uint(2*(i-1)))
	}
	return LenBases{bases: bases, maxDepth: maxDepth}
}

// Bases returns the offset table.
func (lb LenBases) Bases() []int { return lb.bases }

// MaxDepth returns the depth the table was built for.
func (lb LenBases) MaxDepth() int { return lb.maxDepth }

func memSize(lb LenBases, maxDepth int) int {
	return lb.bases[maxDepth-1]/8 + 1
}

// baseIndex maps an upper-cased nucleotide byte to its 2-bit code. The
// shift-and-mask trick used here groups A and C together and T and G
// together in ASCII, giving the order A,C,T,G.
func baseIndex(p byte) int {
	return int(p>>1) & 3
}

// Model is a built context tree: which paths from the root are internal
// nodes (seen more than once during Build) versus implicit leaves.
type Model struct {
	mem             []byte
	lenBases        LenBases
	maxDepth        int
	leafCount       int
	fullDepth       int
	numNodesInDepth []int
}

func (m *Model) checkBit(idx int) bool {
	return m.mem[idx>>3]&(128>>uint(idx&7)) != 0
}

func (m *Model) setBit(idx int) {
	m.mem[idx>>3] |= 128 >> uint(idx&7)
}

// Build consumes src to completion and returns the resulting context tree.
// The stream is expected to already be upper-cased with N marking record
// and ambiguous-base boundaries, as produced by nucstream.
func Build(src ByteSource, maxDepth int) (*Model, error) {
	if maxDepth < 1 {
		return nil, fmt.Errorf("lz78: max depth must be >= 1, got %d", maxDepth)
	}
	lb := NewLenBases(maxDepth)
	m := &Model{
		mem:             make([]byte, memSize(lb, maxDepth)),
		lenBases:        lb,
		maxDepth:        maxDepth,
		leafCount:       4,
		numNodesInDepth: make([]int, maxDepth+1),
	}
	m.numNodesInDepth[0] = 1

	currDepth := 1
	currSeq := 0
	for {
		p, err := src.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("lz78: build: %w", err)
		}
		if p == 'N' {
			currDepth, currSeq = 1, 0
			continue
		}

		currSeq |= baseIndex(p)
		if currDepth > m.maxDepth-1 {
			currDepth, currSeq = 1, 0
			continue
		}

		idx := lb.bases[currDepth-1] + currSeq
		if !m.checkBit(idx) {
			m.addNode(idx, currDepth)
			currDepth, currSeq = 1, 0
			continue
		}

		if currDepth == m.maxDepth-1 {
			currDepth, currSeq = 1, 0
		} else {
			currSeq <<= 2
			currDepth++
		}
	}

	m.fullDepth = 0
	for m.fullDepth+1 < m.maxDepth && m.numNodesInDepth[m.fullDepth+1] == 4<<uint(2*m.fullDepth) {
		m.fullDepth++
	}
	return m, nil
}

func (m *Model) addNode(idx, depth int) {
	m.setBit(idx)
	m.numNodesInDepth[depth]++
	// One leaf becomes an inner node and gains four children: net +3 leaves.
	m.leafCount += 3
}

// AverageLogScore walks src through the tree, restarting at the root every
// time the walk runs off the known tree (a "leaf" is reached) or an N is
// seen, and returns leafCount*log2(totalLeaves)/charsConsumed — the
// average per-base log-loss under this model. ok is false when src never
// produced a single completed leaf walk (e.g. it was empty), in which case
// the score is not defined.
func (m *Model) AverageLogScore(src ByteSource) (score float64, ok bool) {
	var nchars, actualNchars, leafCount int
	currDepth, currSeq := 1, 0

	for {
		p, err := src.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		if p == 'N' {
			currDepth, currSeq = 1, 0
			continue
		}

		i := baseIndex(p)
		nchars++
		currSeq |= i
		idx := m.lenBases.bases[currDepth-1] + currSeq

		if currDepth <= m.fullDepth || (currDepth < m.maxDepth && m.checkBit(idx)) {
			currSeq <<= 2
			currDepth++
			continue
		}
		leafCount++
		currDepth, currSeq = 1, 0
		actualNchars = nchars
	}

	if actualNchars == 0 {
		return 0, false
	}
	return math.Log2(float64(m.leafCount)) * float64(leafCount) / float64(actualNchars), true
}

// NumInnerNodes returns the total number of internal (non-leaf) nodes
// across every depth below maxDepth.
func (m *Model) NumInnerNodes() int {
	n := 0
	for i := 0; i < m.maxDepth; i++ {
		n += m.numNodesInDepth[i]
	}
	return n
}

// FullDepth returns the deepest level at which every possible node is
// present.
func (m *Model) FullDepth() int { return m.fullDepth }

// LeafCount returns the total number of leaves (paths) in the tree.
func (m *Model) LeafCount() int { return m.leafCount }

// Marshal returns the tree's raw bit-array memory together with the two
// scalars (max depth, leaf count) needed to reconstruct it with
// UnmarshalModel, without re-training from the original FASTA.
func (m *Model) Marshal() (mem []byte, maxDepth, leafCount int) {
	return append([]byte(nil), m.mem...), m.maxDepth, m.leafCount
}

// UnmarshalModel rebuilds a Model from the values Marshal returns. The
// per-depth node counts and fullDepth optimisation are recomputed by
// scanning mem rather than stored, since they are cheap to derive and
// keep the serialised form to just the bit array and two integers.
func UnmarshalModel(mem []byte, maxDepth, leafCount int) (*Model, error) {
	if maxDepth < 1 {
		return nil, fmt.Errorf("lz78: max depth must be >= 1, got %d", maxDepth)
	}
	lb := NewLenBases(maxDepth)
	if want := memSize(lb, maxDepth); len(mem) != want {
		return nil, fmt.Errorf("lz78: unmarshal: expected %d bytes of tree memory, got %d", want, len(mem))
	}
	m := &Model{
		mem:             append([]byte(nil), mem...),
		lenBases:        lb,
		maxDepth:        maxDepth,
		leafCount:       leafCount,
		numNodesInDepth: make([]int, maxDepth+1),
	}
	m.numNodesInDepth[0] = 1
	for d := 1; d < maxDepth; d++ {
		count := 0
		for idx := lb.bases[d-1]; idx < lb.bases[d]; idx++ {
			if m.checkBit(idx) {
				count++
			}
		}
		m.numNodesInDepth[d] = count
	}
	m.fullDepth = 0
	for m.fullDepth+1 < m.maxDepth && m.numNodesInDepth[m.fullDepth+1] == 4<<uint(2*m.fullDepth) {
		m.fullDepth++
	}
	return m, nil
}
