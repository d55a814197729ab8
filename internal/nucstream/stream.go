// Package nucstream turns a FASTA source into the nucleotide-byte stream
// contract the rest of genezip trains and scores against: upper-cased
// {A,C,G,T,N}, with header lines elided and replaced by one N at each
// record boundary.
package nucstream

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// N is the synthetic separator byte emitted at record boundaries and
// wherever the source itself contains an ambiguous base.
const N = 'N'

// Stream is a single-pass, non-seekable source of nucleotide bytes. It is
// cheap to recreate via Open but, once consumed, cannot be rewound; every
// caller that needs a second pass over the same file calls Open again.
type Stream struct {
	path   string
	bufSrc *bufio.Reader
	closer io.Closer
	inSeq  bool // whether we're past the first header
}

// Open opens path for nucleotide streaming. Files whose name ends ".gz"
// are transparently gzip-decompressed.
func Open(path string, bufSize int) (*Stream, error) {
	r, closer, err := openRaw(path)
	if err != nil {
		return nil, err
	}
	if bufSize <= 0 {
		bufSize = 4096
	}
	return &Stream{
		path:   path,
		bufSrc: bufio.NewReaderSize(r, bufSize),
		closer: closer,
	}, nil
}

// OpenRaw opens path for record-structured reading (used by RecordReader,
// which needs biogo's own fasta.Reader rather than the byte-stream
// contract ReadByte implements). Files whose name ends ".gz" are
// transparently gzip-decompressed, same as Open.
func OpenRaw(path string) (io.ReadCloser, error) {
	r, closer, err := openRaw(path)
	if err != nil {
		return nil, err
	}
	return readCloser{r, closer}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

func openRaw(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("nucstream: open %s: %w", path, err)
	}
	var r io.Reader = f
	var closer io.Closer = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("nucstream: gzip %s: %w", path, err)
		}
		r = gz
		closer = multiCloser{gz, f}
	}
	return r, closer, nil
}

type multiCloser struct {
	first, second io.Closer
}

func (m multiCloser) Close() error {
	err1 := m.first.Close()
	err2 := m.second.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Path returns the source path this stream was opened from.
func (s *Stream) Path() string { return s.path }

// Close releases the underlying file handle(s).
func (s *Stream) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// ReadByte returns the next nucleotide-stream byte: an upper-cased
// {A,C,G,T,N}, or any other raw byte the source contains verbatim (the
// caller is responsible for ignoring bytes outside the alphabet when
// they build models, per spec). io.EOF signals stream exhaustion.
func (s *Stream) ReadByte() (byte, error) {
	c, err := s.bufSrc.ReadByte()
	if err != nil {
		return 0, err
	}
	if c == '>' {
		for {
			c, err := s.bufSrc.ReadByte()
			if err != nil {
				return N, nil
			}
			if c == '\n' {
				break
			}
		}
		s.inSeq = true
		return N, nil
	}
	if c == '\n' || c == '\r' {
		return s.ReadByte()
	}
	s.inSeq = true
	// Maps lower case to upper case (clears bit 5); upper case and
	// other bytes are passed through unchanged.
	return c &^ 0x20, nil
}

// Each calls fn once for every byte in the stream, stopping at the first
// error fn returns (io.EOF from the stream itself is not passed to fn).
func Each(s *Stream, fn func(b byte) error) error {
	for {
		b, err := s.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
	}
}
