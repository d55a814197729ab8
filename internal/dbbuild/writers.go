package dbbuild

import (
	"fmt"
	"os"
)

// WriteTaxa2Cluster writes one line per taxonomy per cluster:
// taxonomy<TAB>cluster_index, with no header.
func WriteTaxa2Cluster(path string, result *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dbbuild: create %s: %w", path, err)
	}
	defer f.Close()
	for _, c := range result.Clusters {
		for _, tax := range c.Taxonomies {
			if _, err := fmt.Fprintf(f, "%s\t%d\n", tax.String(), c.ID); err != nil {
				return fmt.Errorf("dbbuild: write %s: %w", path, err)
			}
		}
	}
	return nil
}

// WriteRepresentative2Cluster writes one line per representative sample:
// path<TAB>cluster_index, with no header.
func WriteRepresentative2Cluster(path string, result *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dbbuild: create %s: %w", path, err)
	}
	defer f.Close()
	for _, c := range result.Clusters {
		for _, m := range c.Members {
			if _, err := fmt.Fprintf(f, "%s\t%d\n", m.Path, c.ID); err != nil {
				return fmt.Errorf("dbbuild: write %s: %w", path, err)
			}
		}
	}
	return nil
}

// WriteTraining writes the classifier manifest (name, path) consumed by
// classifier.BuildFromManifest: one line per representative sample.
func WriteTraining(path string, result *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dbbuild: create %s: %w", path, err)
	}
	defer f.Close()
	for _, c := range result.Clusters {
		for _, m := range c.Members {
			if _, err := fmt.Fprintf(f, "%s\t%s\n", m.Name, m.Path); err != nil {
				return fmt.Errorf("dbbuild: write %s: %w", path, err)
			}
		}
	}
	return nil
}
