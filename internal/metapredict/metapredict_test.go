package metapredict

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"genezip/internal/classifier"
	"genezip/internal/output"
)

func writeFasta(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeManifest(t *testing.T, dir string, rows [][2]string) string {
	t.Helper()
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(r[0])
		b.WriteByte('\t')
		b.WriteString(r[1])
		b.WriteByte('\n')
	}
	path := filepath.Join(dir, "manifest.tsv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	return lines
}

func buildClassifier(t *testing.T, dir string) *classifier.Classifier {
	t.Helper()
	refA := writeFasta(t, dir, "refA.fna", ">seqA\n"+strings.Repeat("A", 20)+"\n")
	refB := writeFasta(t, dir, "refB.fna", ">seqB\n"+strings.Repeat("ACGT", 5)+"\n")
	manifest := writeManifest(t, dir, [][2]string{{"refA", refA}, {"refB", refB}})
	c := classifier.New(4, 0)
	if err := c.BuildFromManifest(manifest, 0, 2); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRunPerRecordWhenGenesDisabled(t *testing.T) {
	dir := t.TempDir()
	c := buildClassifier(t, dir)

	fasta := writeFasta(t, dir, "meta.fna",
		">g_1\n"+strings.Repeat("A", 10)+"\n"+
			">g_2\n"+strings.Repeat("A", 10)+"\n"+
			">h_1\n"+strings.Repeat("ACGT", 5)+"\n")

	outPath := filepath.Join(dir, "out.tsv")
	streams, err := output.Open(map[output.Kind]string{output.BestHit: outPath})
	if err != nil {
		t.Fatal(err)
	}
	if err := Run(c, fasta, streams, Options{}); err != nil {
		t.Fatal(err)
	}
	if err := streams.Close(); err != nil {
		t.Fatal(err)
	}

	lines := readLines(t, outPath)
	want := []string{
		"Genome_name\tLength\tBest_hit",
		"g_1\t10\trefA",
		"g_2\t10\trefA",
		"h_1\t20\trefB",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %v", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRunAggregatesGenesByContig(t *testing.T) {
	dir := t.TempDir()
	c := buildClassifier(t, dir)

	fasta := writeFasta(t, dir, "meta.fna",
		">g_1\n"+strings.Repeat("A", 10)+"\n"+
			">g_2\n"+strings.Repeat("A", 10)+"\n"+
			">h_1\n"+strings.Repeat("ACGT", 5)+"\n")

	outPath := filepath.Join(dir, "out.tsv")
	streams, err := output.Open(map[output.Kind]string{output.BestHit: outPath})
	if err != nil {
		t.Fatal(err)
	}
	if err := Run(c, fasta, streams, Options{Genes: true}); err != nil {
		t.Fatal(err)
	}
	if err := streams.Close(); err != nil {
		t.Fatal(err)
	}

	lines := readLines(t, outPath)
	want := []string{
		"Genome_name\tLength\tBest_hit",
		"g\t20\trefA", // 10 + 10; the N separator is not counted
		"h\t20\trefB",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %v", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRunMinGenesSuppressesShortContigs(t *testing.T) {
	dir := t.TempDir()
	c := buildClassifier(t, dir)

	fasta := writeFasta(t, dir, "meta.fna",
		">g_1\n"+strings.Repeat("A", 10)+"\n"+
			">g_2\n"+strings.Repeat("A", 10)+"\n"+
			">h_1\n"+strings.Repeat("ACGT", 5)+"\n")

	outPath := filepath.Join(dir, "out.tsv")
	streams, err := output.Open(map[output.Kind]string{output.BestHit: outPath})
	if err != nil {
		t.Fatal(err)
	}
	if err := Run(c, fasta, streams, Options{Genes: true, MinGenes: 2}); err != nil {
		t.Fatal(err)
	}
	if err := streams.Close(); err != nil {
		t.Fatal(err)
	}

	lines := readLines(t, outPath)
	want := []string{
		"Genome_name\tLength\tBest_hit",
		"g\t20\trefA",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %v", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
