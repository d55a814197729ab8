package nucstream

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readAll(t *testing.T, s *Stream) []byte {
	t.Helper()
	var out []byte
	err := Each(s, func(b byte) error {
		out = append(out, b)
		return nil
	})
	if err != nil {
		t.Fatalf("Each: %v", err)
	}
	return out
}

func TestSingleRecord(t *testing.T) {
	path := writeTemp(t, "one.fna", ">seq1 description\nACGT\nacgt\n")
	s, err := Open(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got := string(readAll(t, s))
	want := "NACGTACGT"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMultiRecordInsertsSeparatorN(t *testing.T) {
	path := writeTemp(t, "two.fna", ">a\nACGT\n>b\nTTTT\n")
	s, err := Open(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got := string(readAll(t, s))
	want := "NACGTNTTTT"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEOF(t *testing.T) {
	path := writeTemp(t, "empty.fna", "")
	s, err := Open(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	_, err = s.ReadByte()
	if err != io.EOF {
		t.Fatalf("ReadByte on empty file = %v, want io.EOF", err)
	}
}

func TestRecordReaderPreservesContigIdentity(t *testing.T) {
	path := writeTemp(t, "contigs.fna", ">contig_1\nACGT\n>contig_2\nTTTT\n")
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rr := NewRecordReader(f)

	r1, err := rr.Next()
	if err != nil {
		t.Fatal(err)
	}
	if r1.ID != "contig_1" || string(r1.Seq) != "ACGT" {
		t.Fatalf("first record = %+v", r1)
	}

	r2, err := rr.Next()
	if err != nil {
		t.Fatal(err)
	}
	if r2.ID != "contig_2" || string(r2.Seq) != "TTTT" {
		t.Fatalf("second record = %+v", r2)
	}

	if _, err := rr.Next(); err != io.EOF {
		t.Fatalf("third Next() = %v, want io.EOF", err)
	}
}
