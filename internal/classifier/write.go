package classifier

import (
	"fmt"

	"genezip/internal/output"
)

// WriteHeader writes the column headers for every output table the
// streams were opened with.
func (c *Classifier) WriteHeader(streams *output.Streams) error {
	if w := streams.Writer(output.BestHit); w != nil {
		if _, err := fmt.Fprintln(w, "Genome_name\tLength\tBest_hit"); err != nil {
			return err
		}
	}
	if w := streams.Writer(output.LZMatrix); w != nil {
		if _, err := fmt.Fprint(w, "Genome_name"); err != nil {
			return err
		}
		for _, name := range c.order {
			if _, err := fmt.Fprintf(w, "\t%s", name); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// WritePrediction writes one row of results for queryName, whose
// nucleotide length (the count of its non-N bytes, as both callers
// compute it) is queryLength, into every output table the streams were
// opened with.
func (c *Classifier) WritePrediction(streams *output.Streams, queryName string, queryLength int, scores []ModelScore) error {
	if w := streams.Writer(output.BestHit); w != nil {
		best, ok := BestHit(scores)
		if !ok {
			best = "NA"
		}
		if _, err := fmt.Fprintf(w, "%s\t%d\t%s\n", queryName, queryLength, best); err != nil {
			return err
		}
	}
	if w := streams.Writer(output.LZMatrix); w != nil {
		byName := make(map[string]Score, len(scores))
		for _, s := range scores {
			byName[s.Name] = s.Score
		}
		if _, err := fmt.Fprint(w, queryName); err != nil {
			return err
		}
		for _, name := range c.order {
			score, ok := byName[name]
			if ok && score.Valid {
				if _, err := fmt.Fprintf(w, "\t%.5f", score.Value); err != nil {
					return err
				}
			} else {
				if _, err := fmt.Fprint(w, "\tNA"); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
