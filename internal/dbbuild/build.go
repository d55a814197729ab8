// Package dbbuild assembles a genezip reference database from a manifest
// of candidate genomes: it samples representatives per taxonomy, pools
// those representatives by genus to compute pairwise average nucleotide
// identity, and merges taxonomies whose genomes are similar enough into
// clusters via connected components of a similarity graph, emitting the
// artifacts genezip's training step consumes.
package dbbuild

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"genezip/internal/ani"
	"genezip/internal/taxonomy"
)

// Options parameterizes a database build.
type Options struct {
	// Seed drives representative sampling; the same seed and manifest
	// always produce the same representatives.
	Seed int64
	// MaxRepresentatives caps how many genomes are sampled per taxonomy
	// before pairwise ANI is computed. 0 (or >= a taxonomy's size) keeps
	// every genome.
	MaxRepresentatives int
	// ANIThreshold is the identity percentage at or above which two
	// taxonomies are merged into the same cluster.
	ANIThreshold float64
	// WorkDir holds intermediate list files, ANI tool output, and the
	// per-genus ANI caches.
	WorkDir string
	// NewRunner builds the ani.Runner for one pairwise comparison; the
	// caller chooses FastANI or Skani and its parameters.
	NewRunner func(query, reference, out string) ani.Runner
}

// Cluster is one group of taxonomies whose representative genomes' ANI
// met the clustering threshold (or a singleton, if none did), together
// with every representative sample drawn from those taxonomies.
type Cluster struct {
	ID         int
	Taxonomies []taxonomy.Taxonomy
	Members    []Sample
}

// Result is the outcome of a Build: every cluster found, and the full
// set of representative genomes clusters were computed from.
type Result struct {
	Clusters        []Cluster
	Representatives []Sample
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

func genusFileStem(genus string) string {
	stem := nonAlnum.ReplaceAllString(genus, "_")
	if stem == "" {
		stem = "unclassified"
	}
	return stem
}

// Build reads the manifest at manifestPath and runs the full pipeline.
func Build(manifestPath string, opts Options) (*Result, error) {
	samples, err := CollectSamples(manifestPath)
	if err != nil {
		return nil, err
	}
	bySpecies, order := GroupByTaxonomy(samples)

	if err := os.MkdirAll(opts.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("dbbuild: create work dir %s: %w", opts.WorkDir, err)
	}

	// Sample representatives per full taxonomy, in first-seen order, and
	// record which taxonomy each representative's path belongs to so ANI
	// results (keyed by path) can be translated back to taxonomies.
	reps := make(map[taxonomy.Taxonomy][]Sample, len(order))
	pathToTaxonomy := make(map[string]taxonomy.Taxonomy)
	var representatives []Sample
	for _, tax := range order {
		picked := SelectRepresentatives(bySpecies[tax], opts.MaxRepresentatives, uint64(opts.Seed))
		reps[tax] = picked
		representatives = append(representatives, picked...)
		for _, s := range picked {
			pathToTaxonomy[s.Path] = tax
		}
	}

	// Project each taxonomy to genus; a genus is numbered by the smallest
	// first-seen order of any taxonomy mapping to it, and pools every one
	// of those taxonomies' representatives into a single ANI list, since
	// ANI is computed across an entire genus at once, not per species.
	genusOrder := make(map[taxonomy.Taxonomy]int)
	var generaInOrder []taxonomy.Taxonomy
	genusSamples := make(map[taxonomy.Taxonomy][]Sample)
	for i, tax := range order {
		genus := tax.Limit2Rank(taxonomy.Genus)
		if _, ok := genusOrder[genus]; !ok {
			genusOrder[genus] = i
			generaInOrder = append(generaInOrder, genus)
		}
		genusSamples[genus] = append(genusSamples[genus], reps[tax]...)
	}
	sort.Slice(generaInOrder, func(i, j int) bool {
		return genusOrder[generaInOrder[i]] < genusOrder[generaInOrder[j]]
	})

	var allPairs []ANIPair
	for _, genus := range generaInOrder {
		genomes := genusSamples[genus]
		if err := WriteListFile(filepath.Join(opts.WorkDir, genusFileStem(genus.String())+".list"), genomes); err != nil {
			return nil, err
		}
		pairs, err := pairwiseANI(opts, genus.String(), genomes)
		if err != nil {
			return nil, err
		}
		allPairs = append(allPairs, pairs...)
	}

	// The similarity graph spans every taxonomy found; edges only ever
	// connect taxonomies within the same genus, since ANI was only ever
	// computed within a genus, so taxonomies from different genera always
	// end up in different components.
	groupsOfTaxa, err := clusters(order, allPairs, pathToTaxonomy, opts.ANIThreshold)
	if err != nil {
		return nil, err
	}
	sort.Slice(groupsOfTaxa, func(i, j int) bool {
		return minTaxonomyString(groupsOfTaxa[i]) < minTaxonomyString(groupsOfTaxa[j])
	})

	var result Result
	result.Representatives = representatives
	for idx, taxa := range groupsOfTaxa {
		sort.Slice(taxa, func(i, j int) bool { return taxa[i].String() < taxa[j].String() })
		cluster := Cluster{ID: idx + 1, Taxonomies: taxa}
		for _, tax := range taxa {
			cluster.Members = append(cluster.Members, reps[tax]...)
		}
		sort.Slice(cluster.Members, func(i, j int) bool { return cluster.Members[i].Name < cluster.Members[j].Name })
		result.Clusters = append(result.Clusters, cluster)
	}
	return &result, nil
}

func minTaxonomyString(taxa []taxonomy.Taxonomy) string {
	min := taxa[0].String()
	for _, t := range taxa[1:] {
		if s := t.String(); s < min {
			min = s
		}
	}
	return min
}

// pairwiseANI computes (or fetches from cache) the ANI between every pair
// of genomes pooled for genus, using a per-genus cache file under
// opts.WorkDir so repeated builds over an unchanged genus skip re-running
// the ANI tool entirely.
func pairwiseANI(opts Options, genus string, genomes []Sample) ([]ANIPair, error) {
	if len(genomes) < 2 {
		return nil, nil
	}

	cache, err := OpenANICache(filepath.Join(opts.WorkDir, genusFileStem(genus)+".ani.kv"))
	if err != nil {
		return nil, err
	}
	defer cache.Close()

	var pairs []ANIPair
	for i := 0; i < len(genomes); i++ {
		for j := i + 1; j < len(genomes); j++ {
			a, b := genomes[i], genomes[j]
			value, ok, err := cache.Get(a.Path, b.Path)
			if err != nil {
				return nil, err
			}
			if !ok {
				value, err = runANI(opts, genus, a, b)
				if err != nil {
					return nil, err
				}
				if err := cache.Put(a.Path, b.Path, value); err != nil {
					return nil, err
				}
			}
			pairs = append(pairs, ANIPair{A: a.Path, B: b.Path, ANI: value})
		}
	}
	return pairs, nil
}

func runANI(opts Options, genus string, a, b Sample) (float64, error) {
	outPath := filepath.Join(opts.WorkDir, fmt.Sprintf("%s.%s.%s.ani.tsv", genusFileStem(genus), a.Name, b.Name))
	runner := opts.NewRunner(a.Path, b.Path, outPath)
	cmd, err := runner.BuildCommand()
	if err != nil {
		return 0, fmt.Errorf("dbbuild: build ani command for %s vs %s: %w", a.Name, b.Name, err)
	}
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("dbbuild: run ani command for %s vs %s: %w", a.Name, b.Name, err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		return 0, fmt.Errorf("dbbuild: open ani result %s: %w", outPath, err)
	}
	defer f.Close()
	recs, err := ani.ParseTabular(f)
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return 0, nil
	}
	return recs[0].ANI, nil
}
