// Package gc computes GC content over a nucleotide stream.
package gc

import "io"

// ByteSource yields nucleotide-stream bytes one at a time, terminating with
// io.EOF. nucstream.Stream satisfies this directly.
type ByteSource interface {
	ReadByte() (byte, error)
}

// Percent returns the fraction of G/C bases among all A/C/G/T bases in
// src, as a percentage in [0, 100]. It is 0 if src contains no A/C/G/T
// bases at all.
func Percent(src ByteSource) (float64, error) {
	var gcCount, length float64
	for {
		b, err := src.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		switch b {
		case 'A', 'T', 'G', 'C':
			length++
			if b == 'G' || b == 'C' {
				gcCount++
			}
		}
	}
	if length == 0 {
		return 0, nil
	}
	return (gcCount / length) * 100, nil
}
