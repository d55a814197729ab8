// Package reference bundles everything genezip precomputes about one
// reference genome: its LZ78 context model, GC content, optional k-mer
// profile, optional cluster tag, and its own self-score.
package reference

import (
	"fmt"

	"genezip/internal/gc"
	"genezip/internal/kmer"
	"genezip/internal/lz78"
	"genezip/internal/nucstream"
	"genezip/internal/taxonomy"
)

// Sequence is one trained reference genome, ready to score queries or be
// scored against.
type Sequence struct {
	model      *lz78.Model
	gcPercent  float64
	kmer       kmer.Vector // nil when no k-mer size was requested
	name       string
	cluster    taxonomy.Taxonomy
	hasCluster bool
	selfValue  float64
	valid      bool // whether selfValue is defined
	fastaPath  string
}

// Options controls how a Sequence is built.
type Options struct {
	// KmerSize, if non-zero, causes a k-mer profile to be computed
	// alongside the LZ78 model.
	KmerSize int
	// Cluster tags the sequence with a grouping taxonomy (typically
	// limited to genus), used by the classifier's k-mer prefilter.
	Cluster   taxonomy.Taxonomy
	HasCluster bool
	// BufSize sizes the underlying nucstream buffer; 0 picks the
	// default.
	BufSize int
}

// Build trains a Sequence named name from the FASTA file at fastaPath.
// maxDepth parameterizes the LZ78 context tree; it is shared across an
// entire classifier build so the resulting models stay comparable.
func Build(fastaPath, name string, maxDepth int, opts Options) (*Sequence, error) {
	model, err := trainModel(fastaPath, maxDepth, opts.BufSize)
	if err != nil {
		return nil, fmt.Errorf("reference: train %s: %w", fastaPath, err)
	}

	selfValue, valid, err := scoreSelf(fastaPath, model, opts.BufSize)
	if err != nil {
		return nil, fmt.Errorf("reference: self-score %s: %w", fastaPath, err)
	}

	gcPercent, err := computeGC(fastaPath, opts.BufSize)
	if err != nil {
		return nil, fmt.Errorf("reference: gc %s: %w", fastaPath, err)
	}

	var profile kmer.Vector
	if opts.KmerSize > 0 {
		profile, err = computeKmer(fastaPath, opts.KmerSize, opts.BufSize)
		if err != nil {
			return nil, fmt.Errorf("reference: kmer %s: %w", fastaPath, err)
		}
	}

	return &Sequence{
		model:      model,
		gcPercent:  gcPercent,
		kmer:       profile,
		name:       name,
		cluster:    opts.Cluster,
		hasCluster: opts.HasCluster,
		selfValue:  selfValue,
		valid:      valid,
		fastaPath:  fastaPath,
	}, nil
}

func trainModel(fastaPath string, maxDepth, bufSize int) (*lz78.Model, error) {
	s, err := nucstream.Open(fastaPath, bufSize)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return lz78.Build(s, maxDepth)
}

func scoreSelf(fastaPath string, model *lz78.Model, bufSize int) (float64, bool, error) {
	s, err := nucstream.Open(fastaPath, bufSize)
	if err != nil {
		return 0, false, err
	}
	defer s.Close()
	v, ok := model.AverageLogScore(s)
	return v, ok, nil
}

func computeGC(fastaPath string, bufSize int) (float64, error) {
	s, err := nucstream.Open(fastaPath, bufSize)
	if err != nil {
		return 0, err
	}
	defer s.Close()
	return gc.Percent(s)
}

func computeKmer(fastaPath string, k, bufSize int) (kmer.Vector, error) {
	s, err := nucstream.Open(fastaPath, bufSize)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return kmer.Profile(k, s)
}

// Model returns the trained LZ78 context tree.
func (s *Sequence) Model() *lz78.Model { return s.model }

// GC returns the GC percentage, in [0, 100].
func (s *Sequence) GC() float64 { return s.gcPercent }

// Kmer returns the k-mer profile, or nil if one was not requested.
func (s *Sequence) Kmer() kmer.Vector { return s.kmer }

// Name returns the sequence's manifest name.
func (s *Sequence) Name() string { return s.name }

// Cluster returns the grouping taxonomy and whether one is set.
func (s *Sequence) Cluster() (taxonomy.Taxonomy, bool) { return s.cluster, s.hasCluster }

// SelfValue returns the sequence's average log-score against itself, and
// whether that value is defined (it is undefined for genomes too short to
// complete even one walk through their own tree).
func (s *Sequence) SelfValue() (float64, bool) { return s.selfValue, s.valid }

// FastaPath returns the source FASTA path this sequence was built from.
func (s *Sequence) FastaPath() string { return s.fastaPath }

// PrebuiltOptions supplies every field of a Sequence whose LZ78 model was
// already trained elsewhere (used when loading a serialised database).
type PrebuiltOptions struct {
	Name         string
	FastaPath    string
	GC           float64
	Kmer         kmer.Vector
	HasKmer      bool
	Cluster      taxonomy.Taxonomy
	HasCluster   bool
	SelfValue    float64
	HasSelfValue bool
}

// FromPrebuilt assembles a Sequence around an already-trained model,
// without re-reading any FASTA file.
func FromPrebuilt(model *lz78.Model, opts PrebuiltOptions) *Sequence {
	s := &Sequence{
		model:      model,
		gcPercent:  opts.GC,
		name:       opts.Name,
		cluster:    opts.Cluster,
		hasCluster: opts.HasCluster,
		selfValue:  opts.SelfValue,
		valid:      opts.HasSelfValue,
		fastaPath:  opts.FastaPath,
	}
	if opts.HasKmer {
		s.kmer = opts.Kmer
	}
	return s
}
