package classifier

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"genezip/internal/taxonomy"
)

// Sample is one manifest row: a model name, the FASTA file to train or
// score it from, and an optional taxonomy tag.
type Sample struct {
	Name        string
	Path        string
	Taxonomy    taxonomy.Taxonomy
	HasTaxonomy bool
	LineNumber  int // 0-based
}

// ParseManifest reads a tab-delimited manifest: name, path, and, when
// includeTaxonomy is set, a third taxonomy column. Errors report the
// 0-based line number they occurred on.
func ParseManifest(path string, includeTaxonomy bool) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("classifier: open manifest %s: %w", path, err)
	}
	defer f.Close()

	var samples []Sample
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		fields := strings.Split(sc.Text(), "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("classifier: manifest %s line %d: expected a tab-delimited line with at least 2 fields", path, line)
		}
		s := Sample{Name: fields[0], Path: fields[1], LineNumber: line}
		if includeTaxonomy {
			if len(fields) < 3 {
				return nil, fmt.Errorf("classifier: manifest %s line %d: expected a tab-delimited line with at least 3 fields (missing taxonomy column; pass kmer size 0 or add it)", path, line)
			}
			tax, err := taxonomy.Parse(fields[2])
			if err != nil {
				return nil, fmt.Errorf("classifier: manifest %s line %d: %w", path, line, err)
			}
			s.Taxonomy = tax
			s.HasTaxonomy = true
		}
		samples = append(samples, s)
		line++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("classifier: reading manifest %s: %w", path, err)
	}
	return samples, nil
}
