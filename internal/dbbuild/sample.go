package dbbuild

import (
	"os"
	"strings"

	"genezip/internal/classifier"
	"genezip/internal/taxonomy"
)

// Sample is one candidate reference genome read from the build manifest:
// a name, a FASTA path, and its taxonomy tag.
type Sample = classifier.Sample

// CollectSamples reads the build manifest at manifestPath. Every row must
// carry a taxonomy column; any taxonomy missing its species rank has that
// rank filled via the synthetic-name rule, so same-genus samples without
// an assigned species still group and cluster consistently rather than
// silently colliding under an empty key.
func CollectSamples(manifestPath string) ([]Sample, error) {
	samples, err := classifier.ParseManifest(manifestPath, true)
	if err != nil {
		return nil, err
	}
	for i := range samples {
		samples[i].Taxonomy.FillRank(taxonomy.Species)
	}
	return samples, nil
}

// GroupByTaxonomy buckets samples by their full (species-filled)
// taxonomy, and returns the distinct taxonomies in first-seen order.
// Representative sampling and genus numbering both follow this order so
// that identical input and seed reproduce identical output.
func GroupByTaxonomy(samples []Sample) (map[taxonomy.Taxonomy][]Sample, []taxonomy.Taxonomy) {
	groups := make(map[taxonomy.Taxonomy][]Sample)
	var order []taxonomy.Taxonomy
	for _, s := range samples {
		if _, ok := groups[s.Taxonomy]; !ok {
			order = append(order, s.Taxonomy)
		}
		groups[s.Taxonomy] = append(groups[s.Taxonomy], s)
	}
	return groups, order
}

// WriteListFile writes one genome path per line: the reference-list
// input format fastANI and skani both accept for a many-vs-many run.
func WriteListFile(path string, samples []Sample) error {
	var b strings.Builder
	for _, s := range samples {
		b.WriteString(s.Path)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
