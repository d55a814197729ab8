// Package classifier trains a named set of reference genomes into LZ78
// context models and scores query genomes against them.
package classifier

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"genezip/internal/gc"
	"genezip/internal/kmer"
	"genezip/internal/lz78"
	"genezip/internal/nucstream"
	"genezip/internal/reference"
	"genezip/internal/taxonomy"
)

// ErrDuplicateName is returned by AddModel, and surfaces from
// BuildFromManifest, when a manifest assigns the same model name to more
// than one reference genome.
var ErrDuplicateName = errors.New("classifier: duplicate model name")

// Score is a classifier score together with whether it is defined. Some
// queries are too short to complete a single walk through a model's
// context tree, in which case Valid is false rather than the score being
// some sentinel float value such as NaN or zero.
type Score struct {
	Value float64
	Valid bool
}

// ModelScore names one reference model's score against a query.
type ModelScore struct {
	Name  string
	Score Score
}

// Classifier holds a named collection of trained reference models, all
// built with the same LZ78 depth parameters so their scores are
// comparable.
type Classifier struct {
	models   map[string]*reference.Sequence
	order    []string // models_order: always kept sorted
	lenBases lz78.LenBases
	maxDepth int
	bufSize  int
}

// New creates an empty classifier parameterized for context trees of
// maxDepth.
func New(maxDepth, bufSize int) *Classifier {
	return &Classifier{
		models:   make(map[string]*reference.Sequence),
		lenBases: lz78.NewLenBases(maxDepth),
		maxDepth: maxDepth,
		bufSize:  bufSize,
	}
}

// MaxDepth returns the context tree depth this classifier was built for.
func (c *Classifier) MaxDepth() int { return c.maxDepth }

// Order returns the model names in canonical (sorted) column order.
func (c *Classifier) Order() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Model returns the named reference sequence, or nil if it is unknown.
func (c *Classifier) Model(name string) *reference.Sequence { return c.models[name] }

// AddModel registers seq under name, keeping the column order sorted. It
// fails with ErrDuplicateName if name is already registered.
func (c *Classifier) AddModel(name string, seq *reference.Sequence) error {
	if _, exists := c.models[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	c.models[name] = seq
	c.order = append(c.order, name)
	sort.Strings(c.order)
	return nil
}

// BuildFromManifest trains one reference model per row of the manifest at
// manifestPath, running up to jobs of them concurrently, and registers
// each in manifest order (so a duplicate name is reported against the
// same row every time regardless of how the workers interleave). A
// kmerSize of 0 disables k-mer profiling and the taxonomy column is not
// required in the manifest.
func (c *Classifier) BuildFromManifest(manifestPath string, kmerSize, jobs int) error {
	samples, err := ParseManifest(manifestPath, kmerSize > 0)
	if err != nil {
		return err
	}
	if jobs < 1 {
		jobs = 1
	}

	type result struct {
		seq *reference.Sequence
		err error
	}
	results := make([]result, len(samples))

	work := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				s := samples[i]
				opts := reference.Options{
					KmerSize:   kmerSize,
					BufSize:    c.bufSize,
					Cluster:    s.Taxonomy,
					HasCluster: s.HasTaxonomy,
				}
				seq, err := reference.Build(s.Path, s.Name, c.maxDepth, opts)
				if err != nil {
					err = fmt.Errorf("classifier: manifest %s line %d: %w", manifestPath, s.LineNumber, err)
				}
				results[i] = result{seq: seq, err: err}
			}
		}()
	}
	for i := range samples {
		work <- i
	}
	close(work)
	wg.Wait()

	for i, s := range samples {
		if results[i].err != nil {
			return results[i].err
		}
		if err := c.AddModel(s.Name, results[i].seq); err != nil {
			return fmt.Errorf("classifier: manifest %s line %d: %w", manifestPath, s.LineNumber, err)
		}
	}
	return nil
}

// PredictOptions controls Predict's candidate filtering and scoring mode.
type PredictOptions struct {
	// HasGCLimit, GCLimit: retain only models whose GC% is within
	// GCLimit of the query's.
	HasGCLimit bool
	GCLimit    float64
	// KmerClusterSize, when non-zero, computes a k-mer profile of this
	// size for the query, finds the candidate with the highest Pearson
	// correlation to it, and retains only models sharing that
	// candidate's genus.
	KmerClusterSize int
	// Reflect enables symmetrized scoring: build a throwaway model from
	// the query itself and combine both directions' scores, normalized
	// by both genomes' self-scores.
	Reflect bool
}

// Opener produces a fresh, independent ByteSource over the same
// underlying genome each time it is called; Predict may need several
// independent passes (GC, k-mer filter, scoring, reflect) over the same
// query.
type Opener func() (lz78.ByteSource, error)

// FileOpener returns an Opener reading the FASTA file at path.
func FileOpener(path string, bufSize int) Opener {
	return func() (lz78.ByteSource, error) {
		return nucstream.Open(path, bufSize)
	}
}

// BytesOpener returns an Opener over an in-memory nucleotide-stream byte
// slice (already upper-cased and N-delimited, as produced by nucstream),
// used by the meta-predictor to score accumulated contig buffers without
// round-tripping them through the filesystem.
func BytesOpener(data []byte) Opener {
	return func() (lz78.ByteSource, error) {
		return &byteSliceSource{data: data}, nil
	}
}

type byteSliceSource struct {
	data []byte
	pos  int
}

func (b *byteSliceSource) ReadByte() (byte, error) {
	if b.pos >= len(b.data) {
		return 0, io.EOF
	}
	c := b.data[b.pos]
	b.pos++
	return c, nil
}

// closeIfCloser closes src if it implements io.Closer (nucstream.Stream
// does; byteSliceSource does not).
func closeIfCloser(src lz78.ByteSource) {
	if c, ok := src.(interface{ Close() error }); ok {
		c.Close()
	}
}

// Predict scores every retained candidate model against the query FASTA
// at queryPath.
func (c *Classifier) Predict(queryPath string, opts PredictOptions) ([]ModelScore, error) {
	return c.predict(FileOpener(queryPath, c.bufSize), opts)
}

// PredictBytes scores every retained candidate model against an
// in-memory nucleotide-stream buffer.
func (c *Classifier) PredictBytes(data []byte, opts PredictOptions) ([]ModelScore, error) {
	return c.predict(BytesOpener(data), opts)
}

func (c *Classifier) predict(open Opener, opts PredictOptions) ([]ModelScore, error) {
	candidates := c.order

	if opts.HasGCLimit {
		filtered, err := c.filterByGC(open, opts.GCLimit, candidates)
		if err != nil {
			return nil, err
		}
		candidates = filtered
	}

	if opts.KmerClusterSize > 0 {
		filtered, err := c.filterByKmerCluster(open, opts.KmerClusterSize, candidates)
		if err != nil {
			return nil, err
		}
		candidates = filtered
	}

	var reflectModel *lz78.Model
	var reflectSelf Score
	if opts.Reflect {
		m, self, ok, err := c.buildReflectModel(open)
		if err != nil {
			return nil, err
		}
		reflectModel = m
		reflectSelf = Score{Value: self, Valid: ok}
	}

	results := make([]ModelScore, len(candidates))
	var wg sync.WaitGroup
	errs := make([]error, len(candidates))
	for i, name := range candidates {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			score, err := c.scoreAgainst(open, name, opts.Reflect, reflectModel, reflectSelf)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = ModelScore{Name: name, Score: score}
		}(i, name)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (c *Classifier) scoreAgainst(open Opener, modelName string, reflect bool, reflectModel *lz78.Model, reflectSelf Score) (Score, error) {
	model := c.models[modelName]
	s, err := open()
	if err != nil {
		return Score{}, err
	}
	gzScore, ok := model.Model().AverageLogScore(s)
	closeIfCloser(s)
	if !ok {
		return Score{}, nil
	}
	if !reflect {
		return Score{Value: gzScore, Valid: true}, nil
	}

	selfValue, selfOK := model.SelfValue()
	if !selfOK || !reflectSelf.Valid {
		return Score{}, nil
	}
	ms, err := nucstream.Open(model.FastaPath(), c.bufSize)
	if err != nil {
		return Score{}, err
	}
	reverse, ok := reflectModel.AverageLogScore(ms)
	ms.Close()
	if !ok {
		return Score{}, nil
	}
	denom := reflectSelf.Value + selfValue
	if denom == 0 {
		return Score{}, nil
	}
	return Score{Value: (gzScore + reverse) / denom, Valid: true}, nil
}

func (c *Classifier) buildReflectModel(open Opener) (*lz78.Model, float64, bool, error) {
	s, err := open()
	if err != nil {
		return nil, 0, false, err
	}
	model, err := lz78.Build(s, c.maxDepth)
	closeIfCloser(s)
	if err != nil {
		return nil, 0, false, err
	}
	s2, err := open()
	if err != nil {
		return nil, 0, false, err
	}
	self, ok := model.AverageLogScore(s2)
	closeIfCloser(s2)
	return model, self, ok, nil
}

func (c *Classifier) filterByGC(open Opener, limit float64, candidates []string) ([]string, error) {
	s, err := open()
	if err != nil {
		return nil, err
	}
	defer closeIfCloser(s)
	genomeGC, err := gc.Percent(s)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, name := range candidates {
		model := c.models[name]
		d := model.GC() - genomeGC
		if d < 0 {
			d = -d
		}
		if d < limit {
			out = append(out, name)
		}
	}
	return out, nil
}

func (c *Classifier) filterByKmerCluster(open Opener, k int, candidates []string) ([]string, error) {
	s, err := open()
	if err != nil {
		return nil, err
	}
	genomeKmer, err := kmer.Profile(k, s)
	closeIfCloser(s)
	if err != nil {
		return nil, err
	}

	var bestCluster taxonomy.Taxonomy
	haveBest := false
	bestCorr := 0.0
	for _, name := range candidates {
		model := c.models[name]
		cluster, hasCluster := model.Cluster()
		if !hasCluster {
			return nil, fmt.Errorf("classifier: kmer-cluster filter: model %q has no cluster taxonomy", name)
		}
		modelKmer := model.Kmer()
		if modelKmer == nil {
			return nil, fmt.Errorf("classifier: kmer-cluster filter: model %q has no k-mer profile", name)
		}
		corr, err := kmer.Correlation(genomeKmer, modelKmer)
		if err != nil {
			return nil, fmt.Errorf("classifier: kmer-cluster filter: %w", err)
		}
		if !haveBest || corr > bestCorr {
			bestCorr = corr
			bestCluster = cluster
			haveBest = true
		}
	}
	if !haveBest {
		return nil, nil
	}

	var out []string
	for _, name := range candidates {
		cluster, _ := c.models[name].Cluster()
		if cluster.EqualToRank(bestCluster, taxonomy.Genus) {
			out = append(out, name)
		}
	}
	return out, nil
}

// BestHit returns the name of the lowest-scoring (best-matching) model
// among scores, and false if none of them carry a valid score.
func BestHit(scores []ModelScore) (string, bool) {
	best := ""
	haveBest := false
	var bestValue float64
	for _, s := range scores {
		if !s.Score.Valid {
			continue
		}
		if !haveBest || s.Score.Value < bestValue {
			bestValue = s.Score.Value
			best = s.Name
			haveBest = true
		}
	}
	return best, haveBest
}
