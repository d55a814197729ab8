// Package ani wraps the external average-nucleotide-identity tools
// genezip can shell out to when building a reference database, and
// parses their tabular results back into Go values.
package ani

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/biogo/external"
)

// FastANI builds an exec.Cmd for the fastANI tool.
//
// Usage: fastANI -q <file> -r <file> -o <file>
type FastANI struct {
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}fastANI{{end}}"`

	Query     string `buildarg:"-q{{split}}{{.}}"`                       // -q <s>
	Reference string `buildarg:"-r{{split}}{{.}}"`                       // -r <s>
	Out       string `buildarg:"-o{{split}}{{.}}"`                       // -o <s>
	KmerSize  int    `buildarg:"{{if .}}-k{{split}}{{.}}{{end}}"`        // -k <n>
	FragLen   int    `buildarg:"{{if .}}--fragLen{{split}}{{.}}{{end}}"` // --fragLen <n>
	MinFrac   float64 `buildarg:"{{if .}}--minFraction{{split}}{{.}}{{end}}"` // --minFraction <f>
	Threads   int    `buildarg:"{{if .}}-t{{split}}{{.}}{{end}}"`        // -t <n>

	// ExtraFlags will be passed through to fastANI as flags.
	ExtraFlags string
}

func (f FastANI) BuildCommand() (*exec.Cmd, error) {
	if f.Query == "" || f.Reference == "" || f.Out == "" {
		return nil, errors.New("fastani: missing query, reference, or out path")
	}
	var extra []string
	if f.ExtraFlags != "" {
		extra = strings.Split(f.ExtraFlags, " ")
	}
	cl := external.Must(external.Build(f))
	return exec.Command(cl[0], append(cl[1:], extra...)...), nil
}

// Skani builds an exec.Cmd for the skani tool's "dist" subcommand.
//
// Usage: skani dist -q <file> -r <file> -o <file>
type Skani struct {
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}skani{{end}}"`

	Query     string `buildarg:"dist{{split}}-q{{split}}{{.}}"` // dist -q <s>
	Reference string `buildarg:"{{if .}}-r{{split}}{{.}}{{end}}"`
	Out       string `buildarg:"{{if .}}-o{{split}}{{.}}{{end}}"`
	Threads   int    `buildarg:"{{if .}}-t{{split}}{{.}}{{end}}"`
	ScreenMin float64 `buildarg:"{{if .}}--min-af{{split}}{{.}}{{end}}"`

	// ExtraFlags will be passed through to skani as flags.
	ExtraFlags string
}

func (s Skani) BuildCommand() (*exec.Cmd, error) {
	if s.Query == "" || s.Reference == "" || s.Out == "" {
		return nil, errors.New("skani: missing query, reference, or out path")
	}
	var extra []string
	if s.ExtraFlags != "" {
		extra = strings.Split(s.ExtraFlags, " ")
	}
	cl := external.Must(external.Build(s))
	return exec.Command(cl[0], append(cl[1:], extra...)...), nil
}

// Runner is satisfied by FastANI and Skani: a tagged sum of the two ANI
// drivers genezip's database builder knows how to invoke.
type Runner interface {
	BuildCommand() (*exec.Cmd, error)
}

// Record is one parsed row of an ANI tool's tabular output: query path,
// reference path, and the estimated average nucleotide identity.
type Record struct {
	Query     string
	Reference string
	ANI       float64
}

// ParseTabular reads fastANI/skani's tab-delimited result table: query
// path, reference path, ANI value, and (for fastANI) two fragment-count
// columns this parser ignores.
func ParseTabular(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var recs []Record
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return recs, fmt.Errorf("ani: parse tabular result: %w", err)
		}
		if len(fields) < 3 {
			return recs, fmt.Errorf("ani: parse tabular result: expected at least 3 fields, got %d: %q", len(fields), fields)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return recs, fmt.Errorf("ani: parse tabular result: %w", err)
		}
		recs = append(recs, Record{
			Query:     strings.TrimSpace(fields[0]),
			Reference: strings.TrimSpace(fields[1]),
			ANI:       value,
		})
	}
	return recs, nil
}
