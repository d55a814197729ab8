// Package database serialises a trained classifier to disk and back, as
// one opaque, block-compressed file.
package database

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bgzf"

	"genezip/internal/classifier"
	"genezip/internal/kmer"
	"genezip/internal/lz78"
	"genezip/internal/reference"
	"genezip/internal/taxonomy"
)

// Database bundles a trained classifier with the parameters it was built
// with, so a loaded database can be used for prediction without the
// caller having to already know its depth or k-mer size.
type Database struct {
	MaxDepth int
	KmerSize int

	classifier *classifier.Classifier
}

// New wraps an already-built classifier for serialisation.
func New(c *classifier.Classifier, kmerSize int) *Database {
	return &Database{MaxDepth: c.MaxDepth(), KmerSize: kmerSize, classifier: c}
}

// Classifier returns the wrapped classifier.
func (d *Database) Classifier() *classifier.Classifier { return d.classifier }

// record is the gob-serialisable shape of one model: reference.Sequence
// keeps its fields private, so Save/Load round-trip through this instead.
type record struct {
	Name        string
	FastaPath   string
	GC          float64
	Kmer        []float64
	HasKmer     bool
	Cluster     string
	HasCluster  bool
	SelfValue   float64
	HasSelf     bool
	ModelMem    []byte
	ModelDepth  int
	ModelLeaves int
}

type payload struct {
	MaxDepth int
	KmerSize int
	Models   []record
}

// Save writes d to path as a BGZF-framed gob stream: the same
// block-compression container biogo/hts uses for BAM, reused here as the
// database's on-disk envelope.
func Save(d *Database, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("database: create %s: %w", path, err)
	}
	defer f.Close()

	bw := bgzf.NewWriter(f, 1)

	p := payload{MaxDepth: d.MaxDepth, KmerSize: d.KmerSize}
	for _, name := range d.classifier.Order() {
		seq := d.classifier.Model(name)
		r := record{
			Name:      name,
			FastaPath: seq.FastaPath(),
			GC:        seq.GC(),
		}
		if profile := seq.Kmer(); profile != nil {
			r.Kmer = []float64(profile)
			r.HasKmer = true
		}
		if cluster, ok := seq.Cluster(); ok {
			r.Cluster = cluster.String()
			r.HasCluster = true
		}
		if self, ok := seq.SelfValue(); ok {
			r.SelfValue = self
			r.HasSelf = true
		}
		mem, depth, leaves := seq.Model().Marshal()
		r.ModelMem = mem
		r.ModelDepth = depth
		r.ModelLeaves = leaves
		p.Models = append(p.Models, r)
	}

	enc := gob.NewEncoder(bw)
	if err := enc.Encode(p); err != nil {
		bw.Close()
		return fmt.Errorf("database: encode %s: %w", path, err)
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("database: close bgzf writer for %s: %w", path, err)
	}
	return nil
}

// Load reads a database previously written by Save.
func Load(path string, bufSize int) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", path, err)
	}
	defer f.Close()

	br, err := bgzf.NewReader(f, 0)
	if err != nil {
		return nil, fmt.Errorf("database: bgzf reader for %s: %w", path, err)
	}
	defer br.Close()

	var p payload
	dec := gob.NewDecoder(io.Reader(br))
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("database: decode %s: %w", path, err)
	}

	c := classifier.New(p.MaxDepth, bufSize)
	for _, r := range p.Models {
		model, err := lz78.UnmarshalModel(r.ModelMem, r.ModelDepth, r.ModelLeaves)
		if err != nil {
			return nil, fmt.Errorf("database: rebuild model %q: %w", r.Name, err)
		}
		opts := reference.PrebuiltOptions{
			Name:      r.Name,
			FastaPath: r.FastaPath,
			GC:        r.GC,
		}
		if r.HasKmer {
			opts.Kmer = kmer.Vector(r.Kmer)
			opts.HasKmer = true
		}
		if r.HasCluster {
			tax, err := taxonomy.Parse(r.Cluster)
			if err != nil {
				return nil, fmt.Errorf("database: rebuild model %q: %w", r.Name, err)
			}
			opts.Cluster = tax
			opts.HasCluster = true
		}
		if r.HasSelf {
			opts.SelfValue = r.SelfValue
			opts.HasSelfValue = true
		}
		seq := reference.FromPrebuilt(model, opts)
		if err := c.AddModel(r.Name, seq); err != nil {
			return nil, fmt.Errorf("database: load %s: %w", path, err)
		}
	}
	return &Database{MaxDepth: p.MaxDepth, KmerSize: p.KmerSize, classifier: c}, nil
}
