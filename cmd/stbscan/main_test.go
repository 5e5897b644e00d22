package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitColumns(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{"single", "flow", []string{"flow"}},
		{"multiple", "flow,speed", []string{"flow", "speed"}},
		{"spaces", " flow , speed ", []string{"flow", "speed"}},
		{"trailing_comma", "flow,speed,", []string{"flow", "speed"}},
		{"empty", "", nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.expected, splitColumns(tc.input)); diff != "" {
				t.Errorf("splitColumns(%q) mismatch (-want +got):\n%s", tc.input, diff)
			}
		})
	}
}

func TestBehavioralWeights(t *testing.T) {
	got, err := behavioralWeights("", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]float64{1, 1, 1}, got); diff != "" {
		t.Errorf("default weights mismatch (-want +got):\n%s", diff)
	}

	got, err = behavioralWeights("2,0.5", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]float64{2, 0.5}, got); diff != "" {
		t.Errorf("explicit weights mismatch (-want +got):\n%s", diff)
	}

	if _, err := behavioralWeights("1,2,3", 2); err == nil {
		t.Error("expected error for weight/column count mismatch")
	}
	if _, err := behavioralWeights("fast", 1); err == nil {
		t.Error("expected error for non-numeric weight")
	}
}

func TestAutoUpperBound(t *testing.T) {
	// Fewer than ~50 points: the 1-percentile rank rounds to zero, so the
	// bound falls back to the maximum observed factor.
	small := []float64{1.0, 0.9, 2.5, 1.1}
	if got := autoUpperBound(small); got != 2.5 {
		t.Errorf("autoUpperBound(small) = %v, want 2.5", got)
	}

	// 200 points: rank round(200*0.01) = 2, i.e. the second largest.
	large := make([]float64, 200)
	for i := range large {
		large[i] = 1.0
	}
	large[17] = 9.0
	large[42] = 8.0
	if got := autoUpperBound(large); got != 8.0 {
		t.Errorf("autoUpperBound(large) = %v, want 8.0", got)
	}
}
