// Package metapredict classifies the contigs of a single multi-record
// FASTA file (a metagenome, or a genome already split into gene calls)
// against a trained classifier, one prediction row per contig.
package metapredict

import (
	"io"

	"genezip/internal/classifier"
	"genezip/internal/nucstream"
	"genezip/internal/output"
)

// Options controls contig aggregation and candidate filtering.
type Options struct {
	// Genes, when set, treats consecutive records whose IDs share a
	// contig prefix (everything up to the right-most underscore) as
	// separate gene calls on the same contig: their sequences are
	// joined with a synthetic N separator and scored as one unit, and
	// the output row is named after the contig rather than the gene.
	Genes bool
	// MinGenes suppresses a contig's prediction row unless at least
	// this many gene records contributed to it. Ignored unless Genes
	// is set; 0 disables the check.
	MinGenes int
	// HasGCLimit, GCLimit: forwarded to classifier.PredictOptions for
	// every contig.
	HasGCLimit bool
	GCLimit    float64
}

// Run streams fastaPath record by record, aggregates contigs per Options,
// scores each against classifier c, and writes one prediction row per
// contig into streams. It writes the table header first.
func Run(c *classifier.Classifier, fastaPath string, streams *output.Streams, opts Options) error {
	r, err := nucstream.OpenRaw(fastaPath)
	if err != nil {
		return err
	}
	defer r.Close()
	rr := nucstream.NewRecordReader(r)

	if err := c.WriteHeader(streams); err != nil {
		return err
	}

	var buf []byte
	var groupID string
	haveGroup := false
	foundGenes := 0

	predOpts := classifier.PredictOptions{HasGCLimit: opts.HasGCLimit, GCLimit: opts.GCLimit}

	flush := func() error {
		if !haveGroup {
			return nil
		}
		if opts.Genes && opts.MinGenes > 0 && foundGenes < opts.MinGenes {
			return nil
		}
		contig := groupID
		if opts.Genes {
			name, err := ContigName(groupID)
			if err != nil {
				return err
			}
			contig = name
		}
		scores, err := c.PredictBytes(buf, predOpts)
		if err != nil {
			return err
		}
		return c.WritePrediction(streams, contig, nonNLength(buf), scores)
	}

	for {
		rec, err := rr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		if !haveGroup {
			groupID = rec.ID
			haveGroup = true
			foundGenes = 1
			buf = append([]byte(nil), rec.Seq...)
			continue
		}

		sameContig := false
		if opts.Genes {
			sameContig, err = SameContig(groupID, rec.ID)
			if err != nil {
				return err
			}
		}
		if sameContig {
			foundGenes++
			buf = append(buf, nucstream.N)
			buf = append(buf, rec.Seq...)
			continue
		}

		if err := flush(); err != nil {
			return err
		}
		groupID = rec.ID
		foundGenes = 1
		buf = append([]byte(nil), rec.Seq...)
	}
	if err := flush(); err != nil {
		return err
	}
	return streams.Flush()
}

// nonNLength counts buf's bytes excluding the synthetic N separators
// inserted between joined gene records, so the reported contig length
// matches the genome's actual nucleotide count regardless of how many
// genes were concatenated into it.
func nonNLength(buf []byte) int {
	n := 0
	for _, b := range buf {
		if b != nucstream.N {
			n++
		}
	}
	return n
}
