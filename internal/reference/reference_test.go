package reference

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFasta(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "genome.fna")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildComputesGCAndSelfScore(t *testing.T) {
	path := writeFasta(t, ">chr1\nACGTACGTACGTACGTACGTACGT\n")
	seq, err := Build(path, "test-genome", 5, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if seq.Name() != "test-genome" {
		t.Fatalf("Name() = %q", seq.Name())
	}
	if got := seq.GC(); got < 49 || got > 51 {
		t.Fatalf("GC() = %v, want ~50", got)
	}
	if _, ok := seq.SelfValue(); !ok {
		t.Fatal("SelfValue() should be defined for a long enough genome")
	}
	if seq.Kmer() != nil {
		t.Fatal("Kmer() should be nil when KmerSize is not requested")
	}
}

func TestBuildWithKmerProfile(t *testing.T) {
	path := writeFasta(t, ">chr1\nACGTACGTACGTACGTACGTACGT\n")
	seq, err := Build(path, "test-genome", 5, Options{KmerSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	if seq.Kmer() == nil {
		t.Fatal("Kmer() should be populated when KmerSize is requested")
	}
	var sum float64
	for _, v := range seq.Kmer() {
		sum += v
	}
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("kmer profile sums to %v, want ~1", sum)
	}
}

func TestBuildTooShortForSelfScore(t *testing.T) {
	path := writeFasta(t, ">chr1\nA\n")
	seq, err := Build(path, "tiny", 5, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := seq.SelfValue(); ok {
		t.Fatal("SelfValue() should be undefined for a single-base genome")
	}
}
