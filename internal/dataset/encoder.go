package dataset

import (
	"fmt"
	"sort"
)

// LabelEncoder maps categorical sensor identifiers to contiguous 0-based
// integers, consistent with the spatial distance matrix indexing. Fitting
// sorts the distinct ids lexically before assignment, so the mapping is
// deterministic regardless of input order.
type LabelEncoder struct {
	toIndex map[string]int
	toLabel []string
}

// NewLabelEncoder fits an encoder on the given ids. Duplicates are allowed.
func NewLabelEncoder(ids []string) *LabelEncoder {
	distinct := map[string]bool{}
	for _, id := range ids {
		distinct[id] = true
	}
	labels := make([]string, 0, len(distinct))
	for id := range distinct {
		labels = append(labels, id)
	}
	sort.Strings(labels)

	toIndex := make(map[string]int, len(labels))
	for i, id := range labels {
		toIndex[id] = i
	}
	return &LabelEncoder{toIndex: toIndex, toLabel: labels}
}

// Len returns the number of distinct ids the encoder was fitted on.
func (e *LabelEncoder) Len() int { return len(e.toLabel) }

// Transform returns the integer index for a sensor id.
func (e *LabelEncoder) Transform(id string) (int, error) {
	i, ok := e.toIndex[id]
	if !ok {
		return 0, fmt.Errorf("unknown sensor id %q (not present in the distances file)", id)
	}
	return i, nil
}

// Inverse returns the original sensor id for an index.
func (e *LabelEncoder) Inverse(i int) (string, error) {
	if i < 0 || i >= len(e.toLabel) {
		return "", fmt.Errorf("sensor index %d out of range [0,%d)", i, len(e.toLabel))
	}
	return e.toLabel[i], nil
}
