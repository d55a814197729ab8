package dbbuild

import "testing"

func TestSelectRepresentativesReturnsAllWhenNTooLarge(t *testing.T) {
	items := []string{"a", "b", "c"}
	got := SelectRepresentatives(items, 10, 1)
	if len(got) != 3 {
		t.Fatalf("got %d items, want 3", len(got))
	}
}

func TestSelectRepresentativesIsDeterministic(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	a := SelectRepresentatives(items, 4, 42)
	b := SelectRepresentatives(items, 4, 42)
	if len(a) != 4 || len(b) != 4 {
		t.Fatalf("got lengths %d, %d, want 4, 4", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different samples: %v vs %v", a, b)
		}
	}
}

func TestSelectRepresentativesPreservesOriginalOrder(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	got := SelectRepresentatives(items, 5, 7)
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("sample %v is not in increasing original-index order", got)
		}
	}
}

func TestSelectRepresentativesDifferentSeedsCanDiffer(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	a := SelectRepresentatives(items, 4, 1)
	b := SelectRepresentatives(items, 4, 2)
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("expected different seeds to usually produce different samples, got %v for both", a)
	}
}
