// Package taxonomy implements the seven-rank taxonomic tag used to group
// and filter reference genomes.
package taxonomy

import (
	"fmt"
	"strings"
)

// Rank identifies one of the seven taxonomic levels, ordered coarsest
// (Domain) to finest (Species).
type Rank int

const (
	Domain Rank = iota
	Phylum
	Class
	Order
	Family
	Genus
	Species

	numRanks = int(Species) + 1
)

var rankCode = [numRanks]byte{'d', 'p', 'c', 'o', 'f', 'g', 's'}

var rankName = [numRanks]string{"Domain", "Phylum", "Class", "Order", "Family", "Genus", "Species"}

func (r Rank) String() string {
	if r < Domain || r > Species {
		return "Invalid"
	}
	return rankName[r]
}

func rankForCode(c byte) (Rank, bool) {
	for i, rc := range rankCode {
		if rc == c {
			return Rank(i), true
		}
	}
	return 0, false
}

// Taxonomy is an ordered tuple of optional rank names, Domain through
// Species. A rank is "populated" when it is present in names.
type Taxonomy struct {
	names [numRanks]string
	has   [numRanks]bool
}

// Parse parses a ';'-delimited taxonomy string where each entry begins
// with a one-letter rank code then "__" then the name, e.g.
// "d__Bacteria;p__Firmicutes;...".
func Parse(s string) (Taxonomy, error) {
	var t Taxonomy
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if len(entry) < 3 || entry[1:3] != "__" {
			return Taxonomy{}, fmt.Errorf("taxonomy: invalid rank token %q", entry)
		}
		rank, ok := rankForCode(entry[0])
		if !ok {
			return Taxonomy{}, fmt.Errorf("taxonomy: unknown rank code %q in %q", entry[:1], entry)
		}
		t.names[rank] = entry[3:]
		t.has[rank] = true
	}
	return t, nil
}

// Has reports whether rank is populated.
func (t Taxonomy) Has(rank Rank) bool { return t.has[rank] }

// Name returns the name at rank, or "" if unpopulated.
func (t Taxonomy) Name(rank Rank) string { return t.names[rank] }

// String renders the taxonomy back into its ';'-delimited form, skipping
// unpopulated ranks.
func (t Taxonomy) String() string {
	var b strings.Builder
	first := true
	for r := Domain; r <= Species; r++ {
		if !t.has[r] {
			continue
		}
		if !first {
			b.WriteByte(';')
		}
		first = false
		b.WriteByte(rankCode[r])
		b.WriteString("__")
		b.WriteString(t.names[r])
	}
	return b.String()
}

// LCU returns the longest common rank prefix (lowest common uncestor rank)
// of t and other: the deepest rank at which both are populated and equal,
// walking from Domain down and stopping at the first rank where they
// differ or only one of them is populated. A rank unpopulated in both is
// skipped. ok is false if no rank before that stopping point is populated
// and equal in both.
func (t Taxonomy) LCU(other Taxonomy) (rank Rank, ok bool) {
	found := false
	var last Rank
	for r := Domain; r <= Species; r++ {
		if !t.has[r] && !other.has[r] {
			continue
		}
		if !t.has[r] || !other.has[r] {
			break
		}
		if t.names[r] != other.names[r] {
			break
		}
		last = r
		found = true
	}
	return last, found
}

// EqualToRank reports whether t and other agree from Domain down to and
// including rank.
func (t Taxonomy) EqualToRank(other Taxonomy, rank Rank) bool {
	lcu, ok := t.LCU(other)
	if !ok {
		return false
	}
	return lcu >= rank
}

// Limit2Rank returns a copy of t with every rank deeper than rank dropped.
func (t Taxonomy) Limit2Rank(rank Rank) Taxonomy {
	var out Taxonomy
	for r := Domain; r <= rank; r++ {
		out.names[r] = t.names[r]
		out.has[r] = t.has[r]
	}
	return out
}

// FillRank sets rank to a synthetic name composed of the nearest
// populated coarser rank's name plus "Unknown<Rank>", if rank is not
// already populated. It is a no-op if rank is already set. If no coarser
// rank is populated, the synthetic name is "Unknown<Rank>" alone.
func (t *Taxonomy) FillRank(rank Rank) {
	if t.has[rank] {
		return
	}
	parent := ""
	for r := rank - 1; r >= Domain; r-- {
		if t.has[r] {
			parent = t.names[r]
			break
		}
	}
	t.names[rank] = parent + "Unknown" + rank.String()
	t.has[rank] = true
}

// Less orders taxonomies lexicographically top-down by populated rank
// names, by comparing their String forms.
func (t Taxonomy) Less(other Taxonomy) bool {
	return t.String() < other.String()
}
