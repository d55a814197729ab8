// Package kmer computes canonical, reverse-complement-collapsed k-mer
// frequency profiles from a nucleotide stream, used both as a genome
// fingerprint for direct comparison and as the classifier's genus-level
// prefilter.
package kmer

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ByteSource yields nucleotide-stream bytes one at a time, terminating with
// io.EOF. nucstream.Stream satisfies this directly.
type ByteSource interface {
	ReadByte() (byte, error)
}

// Vector is a normalized, canonical k-mer frequency profile: one entry per
// surviving (non-reverse-complement-redundant) k-mer, L1-normalized to sum
// to 1.
type Vector []float64

var baseValue = map[byte]int{'A': 0b00, 'C': 0b01, 'G': 0b10, 'T': 0b11}

var complementValue = map[byte]int{'A': 0b11, 'T': 0b00, 'C': 0b10, 'G': 0b01}

var reverseValue = map[int]byte{0b00: 'A', 0b01: 'C', 0b10: 'G', 0b11: 'T'}

func bitsMask(k int) int {
	mask := 0
	for i := 0; i < k; i++ {
		mask = (mask << 2) + 0b11
	}
	return mask
}

// complementIndex maps the index of a k-length word to the index of its
// reverse complement.
func complementIndex(word, k int) int {
	mask := bitsMask(k)
	nucleotideMask := bitsMask(1)
	xorWord := word ^ mask
	newIndex := 0
	for j := k; j >= 1; j-- {
		shift := (k - j) * 2
		newIndex = (newIndex << 2) | (nucleotideMask & (xorWord >> uint(shift)))
	}
	return newIndex
}

// Labels returns the canonical k-mer strings in the same index order
// Profile and Counts use, one per surviving (non-redundant) index.
func Labels(k int) []string {
	n := 1 << uint(2*k)
	var out []string
	for i := 0; i < n; i++ {
		if complementIndex(i, k) < i {
			continue
		}
		buf := make([]byte, k)
		masked := i
		for j := k - 1; j >= 0; j-- {
			buf[j] = reverseValue[masked&0b11]
			masked >>= 2
		}
		out = append(out, string(buf))
	}
	return out
}

// rawCounts walks src and accumulates occurrence counts of every k-mer,
// folded onto whichever of {forward, reverse-complement} index is smaller.
// A stream N resets the in-progress word so no k-mer spans a record
// boundary or ambiguous base.
func rawCounts(k int, src ByteSource) ([]float64, error) {
	if k < 1 {
		return nil, fmt.Errorf("kmer: k must be >= 1, got %d", k)
	}
	size := 1 << uint(2*k)
	vector := make([]float64, size)
	mask := bitsMask(k)

	var index, findex, found int
	for {
		b, err := src.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("kmer: %w", err)
		}
		v, ok := baseValue[b]
		if ok {
			index = ((index << 2) | v) & mask
			findex = (findex >> 2) | (complementValue[b] << uint(2*(k-1)))
			if found < k {
				found++
			}
			if found >= k {
				if index < findex {
					vector[index]++
				} else {
					vector[findex]++
				}
			}
			continue
		}
		if b == 'N' {
			found = 0
		}
	}
	return vector, nil
}

// minimize drops every index whose reverse complement has a strictly
// smaller index, leaving one entry per canonical k-mer in ascending index
// order.
func minimize(vector []float64, k int) []float64 {
	out := make([]float64, 0, len(vector))
	for i, v := range vector {
		if complementIndex(i, k) < i {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Counts returns the unnormalized canonical k-mer occurrence vector.
func Counts(k int, src ByteSource) (Vector, error) {
	raw, err := rawCounts(k, src)
	if err != nil {
		return nil, err
	}
	return minimize(raw, k), nil
}

// Profile returns the L1-normalized canonical k-mer frequency vector.
func Profile(k int, src ByteSource) (Vector, error) {
	v, err := Counts(k, src)
	if err != nil {
		return nil, err
	}
	total := floats.Sum(v)
	if total == 0 {
		return v, nil
	}
	floats.Scale(1/total, v)
	return v, nil
}

// Correlation returns the Pearson correlation coefficient between two
// profiles of matching length, used by the classifier's genus-level
// prefilter to retain only reference genomes whose k-mer composition
// resembles the query's.
func Correlation(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("kmer: correlation: mismatched lengths %d, %d", len(a), len(b))
	}
	return stat.Correlation(a, b, nil), nil
}
