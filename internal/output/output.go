// Package output writes genezip's two prediction tables: a best-hit
// summary and a dense per-model LZ-score matrix.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Kind identifies one of the two output tables genezip can emit.
type Kind int

const (
	// BestHit is the default output: one row per query with its length
	// and the single best-scoring reference.
	BestHit Kind = iota
	// LZMatrix is the expressive table of every model's score against
	// every query.
	LZMatrix
)

func (k Kind) String() string {
	switch k {
	case BestHit:
		return "best-hit"
	case LZMatrix:
		return "lz-matrix"
	default:
		return "unknown"
	}
}

// Streams holds the open writers for whichever output kinds were
// requested. Construction is all-or-nothing: if any requested file fails
// to open, every file opened so far is closed before returning the error.
type Streams struct {
	writers map[Kind]*bufio.Writer
	files   map[Kind]*os.File
	paths   map[Kind]string
}

// Open creates the files named in paths and wraps each in a buffered
// writer. It opens every file or none.
func Open(paths map[Kind]string) (*Streams, error) {
	s := &Streams{
		writers: make(map[Kind]*bufio.Writer, len(paths)),
		files:   make(map[Kind]*os.File, len(paths)),
		paths:   make(map[Kind]string, len(paths)),
	}
	for kind, path := range paths {
		f, err := os.Create(path)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("output: create %s output %s: %w", kind, path, err)
		}
		s.files[kind] = f
		s.writers[kind] = bufio.NewWriter(f)
		s.paths[kind] = path
	}
	return s, nil
}

// Writer returns the writer for kind, or nil if that kind was not
// requested.
func (s *Streams) Writer(kind Kind) io.Writer {
	w, ok := s.writers[kind]
	if !ok {
		return nil
	}
	return w
}

// Has reports whether kind was requested.
func (s *Streams) Has(kind Kind) bool {
	_, ok := s.writers[kind]
	return ok
}

// Flush flushes every open writer.
func (s *Streams) Flush() error {
	for kind, w := range s.writers {
		if err := w.Flush(); err != nil {
			return fmt.Errorf("output: flush %s: %w", kind, err)
		}
	}
	return nil
}

// Close flushes and closes every open writer, returning the first error
// encountered (but still attempting to close the rest).
func (s *Streams) Close() error {
	var firstErr error
	for kind, w := range s.writers {
		if err := w.Flush(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("output: flush %s: %w", kind, err)
		}
		delete(s.writers, kind)
	}
	for kind, f := range s.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("output: close %s: %w", kind, err)
		}
		delete(s.files, kind)
	}
	return firstErr
}
