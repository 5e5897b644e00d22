package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// LoadDistances reads a long-form pairwise distance CSV (`id1,id2,dist`
// with header) and returns a label encoder fitted on all sensor ids in the
// file together with the symmetric distance matrix indexed by encoded id.
//
// A pair may appear in either or both orientations; if both appear they
// must agree, since the matrix is symmetric by definition. The diagonal is
// zero. Distances must be non-negative.
func LoadDistances(r io.Reader) (*LabelEncoder, *mat.SymDense, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("distances: reading header: %w", err)
	}
	if len(header) < 3 || header[0] != "id1" || header[1] != "id2" || header[2] != "dist" {
		return nil, nil, fmt.Errorf("distances: want header id1,id2,dist, got %v", header)
	}

	type pair struct {
		id1, id2 string
		dist     float64
	}
	var pairs []pair
	var ids []string
	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("distances: row %d: %w", row, err)
		}
		d, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("distances: row %d: invalid distance %q", row, record[2])
		}
		if d < 0 || math.IsNaN(d) {
			return nil, nil, fmt.Errorf("distances: row %d: distance %v must be non-negative", row, d)
		}
		pairs = append(pairs, pair{record[0], record[1], d})
		ids = append(ids, record[0], record[1])
	}
	if len(pairs) == 0 {
		return nil, nil, fmt.Errorf("distances: file contains no pairs")
	}

	enc := NewLabelEncoder(ids)
	n := enc.Len()
	spatial := mat.NewSymDense(n, nil)
	seen := make(map[[2]int]float64)
	for _, p := range pairs {
		i, _ := enc.Transform(p.id1)
		j, _ := enc.Transform(p.id2)
		if i == j {
			if p.dist != 0 {
				return nil, nil, fmt.Errorf("distances: sensor %q has non-zero self distance %v", p.id1, p.dist)
			}
			continue
		}
		key := [2]int{min(i, j), max(i, j)}
		if prev, ok := seen[key]; ok && prev != p.dist {
			return nil, nil, fmt.Errorf("distances: conflicting values %v and %v for pair %q,%q", prev, p.dist, p.id1, p.id2)
		}
		seen[key] = p.dist
		spatial.SetSym(i, j, p.dist)
	}
	return enc, spatial, nil
}
