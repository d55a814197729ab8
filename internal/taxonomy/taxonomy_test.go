package taxonomy

import "testing"

func mustParse(t *testing.T, s string) Taxonomy {
	t.Helper()
	tax, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return tax
}

func TestParseAndString(t *testing.T) {
	s := "d__Bacteria;p__Firmicutes;c__Bacilli;o__Lactobacillales;f__Streptococcaceae;g__Streptococcus;s__pyogenes"
	tax := mustParse(t, s)
	if tax.Name(Domain) != "Bacteria" || tax.Name(Species) != "pyogenes" {
		t.Fatalf("unexpected parse: %+v", tax)
	}
	if got := tax.String(); got != s {
		t.Fatalf("String() = %q, want %q", got, s)
	}
}

func TestParseInvalidRank(t *testing.T) {
	if _, err := Parse("x__Whatever"); err == nil {
		t.Fatal("expected error for unknown rank code")
	}
	if _, err := Parse("d_Bacteria"); err == nil {
		t.Fatal("expected error for malformed separator")
	}
}

func TestLCUSelf(t *testing.T) {
	tax := mustParse(t, "d__Bacteria;p__Firmicutes;g__Streptococcus;s__pyogenes")
	rank, ok := tax.LCU(tax)
	if !ok || rank != Species {
		t.Fatalf("LCU(t,t) = (%v,%v), want (Species,true)", rank, ok)
	}
	if !tax.EqualToRank(tax, Domain) {
		t.Fatal("EqualToRank(t,t,Domain) should always hold")
	}
}

func TestLCUDiverge(t *testing.T) {
	a := mustParse(t, "d__Bacteria;p__Firmicutes;g__Streptococcus;s__pyogenes")
	b := mustParse(t, "d__Bacteria;p__Firmicutes;g__Lactobacillus;s__acidophilus")
	rank, ok := a.LCU(b)
	if !ok || rank != Phylum {
		t.Fatalf("LCU = (%v,%v), want (Phylum,true)", rank, ok)
	}
	if a.EqualToRank(b, Genus) {
		t.Fatal("genus-level taxonomies should not be equal")
	}
	if !a.EqualToRank(b, Phylum) {
		t.Fatal("phylum-level taxonomies should be equal")
	}
}

func TestLimit2Rank(t *testing.T) {
	a := mustParse(t, "d__Bacteria;p__Firmicutes;g__Streptococcus;s__pyogenes")
	g := a.Limit2Rank(Genus)
	if g.Has(Species) {
		t.Fatal("Limit2Rank(Genus) should drop species")
	}
	if !g.Has(Genus) || g.Name(Genus) != "Streptococcus" {
		t.Fatal("Limit2Rank(Genus) should keep genus")
	}
}

func TestFillRank(t *testing.T) {
	a := mustParse(t, "d__Bacteria;p__Firmicutes;g__Streptococcus")
	a.FillRank(Species)
	if a.Name(Species) != "StreptococcusUnknownSpecies" {
		t.Fatalf("FillRank produced %q", a.Name(Species))
	}
}
