package kmer

import (
	"io"
	"math"
	"testing"
)

type rawBytes struct {
	data []byte
	pos  int
}

func (r *rawBytes) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func TestLabelsOneMer(t *testing.T) {
	got := Labels(1)
	want := []string{"A", "C"}
	if !equalStrings(got, want) {
		t.Fatalf("Labels(1) = %v, want %v", got, want)
	}
}

func TestLabelsTwoMer(t *testing.T) {
	got := Labels(2)
	want := []string{"AA", "AC", "AG", "AT", "CA", "CC", "CG", "GA", "GC", "TA"}
	if !equalStrings(got, want) {
		t.Fatalf("Labels(2) = %v, want %v", got, want)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCountsHandComputedExample(t *testing.T) {
	// "ACGT" with k=2 yields the 2-mers AC and CG, plus GT which folds
	// into AC's canonical bucket as its reverse complement.
	counts, err := Counts(2, &rawBytes{data: []byte("ACGT")})
	if err != nil {
		t.Fatal(err)
	}
	labels := Labels(2)
	byLabel := make(map[string]float64, len(labels))
	for i, l := range labels {
		byLabel[l] = counts[i]
	}
	if byLabel["AC"] != 2 {
		t.Fatalf("count[AC] = %v, want 2 (one direct hit, one GT fold-in)", byLabel["AC"])
	}
	if byLabel["CG"] != 1 {
		t.Fatalf("count[CG] = %v, want 1", byLabel["CG"])
	}
	var total float64
	for _, v := range counts {
		total += v
	}
	if total != 3 {
		t.Fatalf("total count = %v, want 3", total)
	}
}

func TestProfileNormalizesToOne(t *testing.T) {
	profile, err := Profile(2, &rawBytes{data: []byte("ACGTACGTACGT")})
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, v := range profile {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("profile sums to %v, want 1", sum)
	}
}

func TestComplementIndexIsAnInvolution(t *testing.T) {
	for k := 1; k <= 4; k++ {
		n := 1 << uint(2*k)
		for i := 0; i < n; i++ {
			j := complementIndex(i, k)
			if complementIndex(j, k) != i {
				t.Fatalf("k=%d: complementIndex(complementIndex(%d)) = %d, want %d", k, i, complementIndex(j, k), i)
			}
		}
	}
}

func TestCorrelationOfIdenticalProfilesIsOne(t *testing.T) {
	a := Vector{0.1, 0.2, 0.3, 0.4}
	b := Vector{0.1, 0.2, 0.3, 0.4}
	c, err := Correlation(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(c-1) > 1e-9 {
		t.Fatalf("Correlation(a,a) = %v, want 1", c)
	}
}

func TestCorrelationLengthMismatch(t *testing.T) {
	if _, err := Correlation(Vector{1, 2}, Vector{1, 2, 3}); err == nil {
		t.Fatal("expected an error for mismatched vector lengths")
	}
}
