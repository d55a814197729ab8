package nucstream

import (
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Record is one FASTA entry reduced to the stream alphabet: an ID and its
// upper-cased, newline-stripped nucleotide bytes.
type Record struct {
	ID   string
	Desc string
	Seq  []byte
}

// RecordReader yields successive Records from a multi-entry FASTA source,
// used by the meta-predictor where contig identity must survive past the
// byte stream. It is built directly on biogo's scanner/reader pair.
type RecordReader struct {
	sc *seqio.Scanner
}

// NewRecordReader wraps r, a raw byte source (already gzip-decompressed if
// necessary), as a sequence of Records.
func NewRecordReader(r io.Reader) *RecordReader {
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA)))
	return &RecordReader{sc: sc}
}

// Next returns the next record, or io.EOF when the source is exhausted.
func (rr *RecordReader) Next() (Record, error) {
	if !rr.sc.Next() {
		if err := rr.sc.Error(); err != nil {
			return Record{}, fmt.Errorf("nucstream: record read: %w", err)
		}
		return Record{}, io.EOF
	}
	seq := rr.sc.Seq().(*linear.Seq)
	buf := make([]byte, seq.Len())
	for i, l := range seq.Seq {
		buf[i] = byte(l) &^ 0x20
	}
	return Record{ID: seq.ID, Desc: seq.Desc, Seq: buf}, nil
}
