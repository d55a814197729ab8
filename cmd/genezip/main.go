// genezip trains LZ78 context models from reference genomes and
// classifies query genomes or metagenome contigs against them.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"genezip/internal/classifier"
	"genezip/internal/database"
	"genezip/internal/kmer"
	"genezip/internal/metapredict"
	"genezip/internal/nucstream"
	"genezip/internal/output"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(os.Args[2:])
	case "predict":
		err = runPredict(os.Args[2:])
	case "meta-predict":
		err = runMetaPredict(os.Args[2:])
	case "kmer-compare":
		err = runKmerCompare(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage of %[1]s:
  $ %[1]s train -manifest <samples.tsv> -depth <n> -out <db.gzp> [options]
  $ %[1]s predict -db <db.gzp> -manifest <queries.tsv> [-besthit <out.tsv>] [-matrix <out.tsv>]
  $ %[1]s meta-predict -db <db.gzp> -fasta <metagenome.fna> [-genes] [-min-genes <n>] [options]
  $ %[1]s kmer-compare -manifest <samples.tsv> -kmer <n> [-out <out.tsv>]
`, os.Args[0])
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	manifest := fs.String("manifest", "", "training manifest: name, fasta path, taxonomy (required)")
	depth := fs.Int("depth", 16, "maximum LZ78 context tree depth")
	kmerSize := fs.Int("kmer", 0, "k-mer size to profile for each model (0 disables k-mer profiling)")
	bufSize := fs.Int("buffer", 1<<16, "read buffer size per genome stream")
	jobs := fs.Int("jobs", runtime.NumCPU(), "number of genomes to train concurrently")
	out := fs.String("out", "", "output database path (required)")
	fs.Parse(args)

	if *manifest == "" || *out == "" {
		fs.Usage()
		os.Exit(2)
	}

	c := classifier.New(*depth, *bufSize)
	if err := c.BuildFromManifest(*manifest, *kmerSize, *jobs); err != nil {
		return err
	}
	return database.Save(database.New(c, *kmerSize), *out)
}

func runPredict(args []string) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	dbPath := fs.String("db", "", "trained database path (required)")
	manifest := fs.String("manifest", "", "query manifest: name, fasta path (required)")
	bufSize := fs.Int("buffer", 1<<16, "read buffer size per genome stream")
	gcLimit := fs.Float64("gc-limit", 0, "retain models within this GC%% of the query (0 disables)")
	kmerCluster := fs.Int("kmer-cluster", 0, "k-mer size for the genus prefilter (0 disables)")
	reflect := fs.Bool("reflect", false, "use symmetrized reflect scoring")
	bestHitPath := fs.String("besthit", "", "best-hit table output path")
	matrixPath := fs.String("matrix", "", "full LZ-score matrix output path")
	fs.Parse(args)

	if *dbPath == "" || *manifest == "" {
		fs.Usage()
		os.Exit(2)
	}
	if *bestHitPath == "" && *matrixPath == "" {
		*bestHitPath = "-"
	}

	db, err := database.Load(*dbPath, *bufSize)
	if err != nil {
		return err
	}
	c := db.Classifier()

	paths := outputPaths(*bestHitPath, *matrixPath)
	streams, err := output.Open(paths)
	if err != nil {
		return err
	}
	defer streams.Close()

	if err := c.WriteHeader(streams); err != nil {
		return err
	}

	samples, err := classifier.ParseManifest(*manifest, false)
	if err != nil {
		return err
	}
	opts := classifier.PredictOptions{
		HasGCLimit:      *gcLimit > 0,
		GCLimit:         *gcLimit,
		KmerClusterSize: *kmerCluster,
		Reflect:         *reflect,
	}
	for _, s := range samples {
		length, err := genomeLength(s.Path, *bufSize)
		if err != nil {
			return err
		}
		scores, err := c.Predict(s.Path, opts)
		if err != nil {
			return err
		}
		if err := c.WritePrediction(streams, s.Name, length, scores); err != nil {
			return err
		}
	}
	return streams.Close()
}

func runMetaPredict(args []string) error {
	fs := flag.NewFlagSet("meta-predict", flag.ExitOnError)
	dbPath := fs.String("db", "", "trained database path (required)")
	fasta := fs.String("fasta", "", "metagenome or multi-contig FASTA to classify (required)")
	bufSize := fs.Int("buffer", 1<<16, "read buffer size")
	genes := fs.Bool("genes", false, "aggregate consecutive gene calls sharing a contig prefix")
	minGenes := fs.Int("min-genes", 0, "suppress contigs with fewer than this many gene calls (0 disables)")
	gcLimit := fs.Float64("gc-limit", 0, "retain models within this GC%% of each contig (0 disables)")
	bestHitPath := fs.String("besthit", "", "best-hit table output path")
	matrixPath := fs.String("matrix", "", "full LZ-score matrix output path")
	fs.Parse(args)

	if *dbPath == "" || *fasta == "" {
		fs.Usage()
		os.Exit(2)
	}
	if *bestHitPath == "" && *matrixPath == "" {
		*bestHitPath = "-"
	}

	db, err := database.Load(*dbPath, *bufSize)
	if err != nil {
		return err
	}

	paths := outputPaths(*bestHitPath, *matrixPath)
	streams, err := output.Open(paths)
	if err != nil {
		return err
	}
	defer streams.Close()

	opts := metapredict.Options{
		Genes:      *genes,
		MinGenes:   *minGenes,
		HasGCLimit: *gcLimit > 0,
		GCLimit:    *gcLimit,
	}
	if err := metapredict.Run(db.Classifier(), *fasta, streams, opts); err != nil {
		return err
	}
	return streams.Close()
}

func runKmerCompare(args []string) error {
	fs := flag.NewFlagSet("kmer-compare", flag.ExitOnError)
	manifest := fs.String("manifest", "", "genome manifest: name, fasta path (required)")
	k := fs.Int("kmer", 4, "k-mer size")
	bufSize := fs.Int("buffer", 1<<16, "read buffer size per genome stream")
	outPath := fs.String("out", "-", "output path for the k-mer correlation matrix ('-' for stdout)")
	fs.Parse(args)

	if *manifest == "" {
		fs.Usage()
		os.Exit(2)
	}

	samples, err := classifier.ParseManifest(*manifest, false)
	if err != nil {
		return err
	}
	profiles := make([]kmer.Vector, len(samples))
	for i, s := range samples {
		stream, err := nucstream.Open(s.Path, *bufSize)
		if err != nil {
			return err
		}
		profiles[i], err = kmer.Profile(*k, stream)
		stream.Close()
		if err != nil {
			return err
		}
	}

	w := os.Stdout
	if *outPath != "-" {
		f, err := os.Create(*outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	fmt.Fprint(w, "Genome_name")
	for _, s := range samples {
		fmt.Fprintf(w, "\t%s", s.Name)
	}
	fmt.Fprintln(w)
	for i, s := range samples {
		fmt.Fprint(w, s.Name)
		for j := range samples {
			corr, err := kmer.Correlation(profiles[i], profiles[j])
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "\t%.5f", corr)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func outputPaths(bestHit, matrix string) map[output.Kind]string {
	paths := make(map[output.Kind]string)
	if bestHit != "" {
		paths[output.BestHit] = bestHit
	}
	if matrix != "" {
		paths[output.LZMatrix] = matrix
	}
	return paths
}

// genomeLength counts the non-N nucleotide bytes of the genome at path,
// excluding the synthetic N record separators nucstream injects.
func genomeLength(path string, bufSize int) (int, error) {
	s, err := nucstream.Open(path, bufSize)
	if err != nil {
		return 0, err
	}
	defer s.Close()
	n := 0
	err = nucstream.Each(s, func(b byte) error {
		if b != nucstream.N {
			n++
		}
		return nil
	})
	return n, err
}
