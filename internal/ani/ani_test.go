package ani

import (
	"strings"
	"testing"
)

func TestFastANIBuildCommandIncludesFlags(t *testing.T) {
	f := FastANI{Query: "q.fna", Reference: "r.fna", Out: "out.tsv", KmerSize: 16, Threads: 4}
	cmd, err := f.BuildCommand()
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(cmd.Args, " ")
	for _, want := range []string{"fastANI", "-q q.fna", "-r r.fna", "-o out.tsv", "-k 16", "-t 4"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("command %q missing %q", joined, want)
		}
	}
}

func TestFastANIBuildCommandRequiresPaths(t *testing.T) {
	if _, err := (FastANI{}).BuildCommand(); err == nil {
		t.Fatal("expected an error for missing query/reference/out")
	}
}

func TestSkaniBuildCommandIncludesFlags(t *testing.T) {
	s := Skani{Query: "q.fna", Reference: "r.fna", Out: "out.tsv", Threads: 2}
	cmd, err := s.BuildCommand()
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(cmd.Args, " ")
	for _, want := range []string{"skani", "dist", "-q q.fna", "-r r.fna", "-o out.tsv", "-t 2"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("command %q missing %q", joined, want)
		}
	}
}

func TestParseTabular(t *testing.T) {
	data := "genomeA.fna\tgenomeB.fna\t97.534\t120\t130\ngenomeA.fna\tgenomeC.fna\t82.1\t90\t130\n"
	recs, err := ParseTabular(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Query != "genomeA.fna" || recs[0].Reference != "genomeB.fna" || recs[0].ANI != 97.534 {
		t.Fatalf("record 0 = %+v", recs[0])
	}
	if recs[1].ANI != 82.1 {
		t.Fatalf("record 1 ANI = %v, want 82.1", recs[1].ANI)
	}
}

func TestParseTabularRejectsShortRows(t *testing.T) {
	if _, err := ParseTabular(strings.NewReader("a\tb\n")); err == nil {
		t.Fatal("expected an error for a row with fewer than 3 fields")
	}
}
