package stb

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// lineMetric places points on a line at their timestamp and measures
// absolute separation. Simple enough to verify neighbor rows by hand.
func lineMetric(p, o Point) float64 {
	d := p.Timestamp - o.Timestamp
	if d < 0 {
		d = -d
	}
	return d
}

func linePoints(positions ...float64) []Point {
	pts := make([]Point, len(positions))
	for i, pos := range positions {
		pts[i] = Point{Timestamp: pos}
	}
	return pts
}

func TestBruteForceIndexOrdering(t *testing.T) {
	pts := linePoints(0, 10, 25, 27, 100)
	ix := NewBruteForceIndex(pts, lineMetric)

	got := ix.KNearest(2, 4)
	want := []Neighbor{
		{Index: 3, Distance: 2},
		{Index: 1, Distance: 15},
		{Index: 0, Distance: 25},
		{Index: 4, Distance: 75},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("KNearest mismatch (-want +got):\n%s", diff)
	}
}

func TestBruteForceIndexExcludesSelf(t *testing.T) {
	pts := linePoints(0, 1, 2)
	ix := NewBruteForceIndex(pts, lineMetric)

	for q := range pts {
		for _, nb := range ix.KNearest(q, 2) {
			if nb.Index == q {
				t.Errorf("query %d returned itself as a neighbor", q)
			}
		}
	}
}

func TestBruteForceIndexTieBreakByIndex(t *testing.T) {
	// Points 1 and 3 are both at distance 10 from point 2; the lower
	// index must come first so neighbor rows are total and reproducible.
	pts := linePoints(0, 10, 20, 30, 40)
	ix := NewBruteForceIndex(pts, lineMetric)

	got := ix.KNearest(2, 2)
	want := []Neighbor{
		{Index: 1, Distance: 10},
		{Index: 3, Distance: 10},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tie-break mismatch (-want +got):\n%s", diff)
	}
}

func TestBruteForceIndexClampsK(t *testing.T) {
	pts := linePoints(0, 5)
	ix := NewBruteForceIndex(pts, lineMetric)

	got := ix.KNearest(0, 10)
	if len(got) != 1 {
		t.Fatalf("KNearest returned %d neighbors, want 1", len(got))
	}
}

func TestBruteForceIndexDeterministic(t *testing.T) {
	pts := linePoints(3, 1, 4, 1.5, 9, 2.6, 5.3)
	ix := NewBruteForceIndex(pts, lineMetric)

	first := ix.KNearest(0, 5)
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, ix.KNearest(0, 5)); diff != "" {
			t.Fatalf("query %d diverged (-first +now):\n%s", i, diff)
		}
	}
}
