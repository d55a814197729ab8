// genezip-dbbuild assembles a genezip reference database from a manifest
// of candidate genomes: it groups them by genus, samples representatives,
// clusters those representatives by pairwise average nucleotide identity,
// and writes the artifacts genezip train consumes.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"genezip/internal/ani"
	"genezip/internal/dbbuild"
)

func main() {
	manifest := flag.String("manifest", "", "candidate genome manifest: name, fasta path, taxonomy (required)")
	workDir := flag.String("workdir", "", "directory for list files, ANI caches, and tool output (required)")
	seed := flag.Int64("seed", 1, "random seed for representative sampling")
	maxReps := flag.Int("max-representatives", 0, "cap on genomes sampled per taxonomy before clustering (0 keeps all)")
	threshold := flag.Float64("ani-threshold", 95.0, "ANI percentage at or above which genomes cluster together")
	tool := flag.String("tool", "fastani", `ANI tool to invoke: "fastani" or "skani"`)
	toolCmd := flag.String("tool-cmd", "", "override the ANI tool's executable name or path")
	threads := flag.Int("threads", 1, "threads passed to the ANI tool")
	kmerSize := flag.Int("ani-kmer", 0, "fastANI k-mer size override (0 uses the tool default)")
	outDir := flag.String("out", "", "directory to write taxa2cluster.tsv, representative2cluster.tsv, and training.tsv (required)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *manifest == "" || *workDir == "" || *outDir == "" {
		flag.Usage()
		os.Exit(2)
	}

	newRunner, err := runnerFactory(*tool, *toolCmd, *threads, *kmerSize)
	if err != nil {
		log.Fatal(err)
	}

	opts := dbbuild.Options{
		Seed:               *seed,
		MaxRepresentatives: *maxReps,
		ANIThreshold:       *threshold,
		WorkDir:            *workDir,
		NewRunner:          newRunner,
	}
	result, err := dbbuild.Build(*manifest, opts)
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}
	if err := dbbuild.WriteTaxa2Cluster(filepath.Join(*outDir, "taxa2cluster.tsv"), result); err != nil {
		log.Fatal(err)
	}
	if err := dbbuild.WriteRepresentative2Cluster(filepath.Join(*outDir, "representative2cluster.tsv"), result); err != nil {
		log.Fatal(err)
	}
	if err := dbbuild.WriteTraining(filepath.Join(*outDir, "training.tsv"), result); err != nil {
		log.Fatal(err)
	}

	fmt.Fprintf(os.Stderr, "genezip-dbbuild: %d representatives, %d clusters\n", len(result.Representatives), len(result.Clusters))
}

func runnerFactory(tool, cmd string, threads, kmerSize int) (func(query, reference, out string) ani.Runner, error) {
	switch tool {
	case "fastani":
		return func(query, reference, out string) ani.Runner {
			return ani.FastANI{
				Cmd:       cmd,
				Query:     query,
				Reference: reference,
				Out:       out,
				KmerSize:  kmerSize,
				Threads:   threads,
			}
		}, nil
	case "skani":
		return func(query, reference, out string) ani.Runner {
			return ani.Skani{
				Cmd:       cmd,
				Query:     query,
				Reference: reference,
				Out:       out,
				Threads:   threads,
			}
		}, nil
	default:
		return nil, fmt.Errorf("genezip-dbbuild: unknown ani tool %q, want \"fastani\" or \"skani\"", tool)
	}
}
