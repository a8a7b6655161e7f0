package model

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/safetystack/dashgen/internal/dataset"
)

// categoricalFields lists the logical fields tried as categorical
// features, in order, when their columns are present.
var categoricalFields = []string{"category", "department", "site_project", "location"}

// features holds the raw feature columns selected for training: the
// found score columns as numerics, plus any present categorical columns.
type features struct {
	numNames []string
	numVals  [][]float64
	catNames []string
	catVals  [][]string
}

func collectFeatures(t *dataset.Table, r dataset.Resolver, sevCol string, sevOK bool, likeCol string, likeOK bool) *features {
	f := &features{}
	seen := map[string]bool{}
	if sevOK {
		f.numNames = append(f.numNames, sevCol)
		f.numVals = append(f.numVals, t.Numeric(sevCol))
		seen[sevCol] = true
	}
	if likeOK && !seen[likeCol] {
		f.numNames = append(f.numNames, likeCol)
		f.numVals = append(f.numVals, t.Numeric(likeCol))
		seen[likeCol] = true
	}
	for _, field := range categoricalFields {
		col, ok := r.Column(t, field)
		if !ok || seen[col] {
			continue
		}
		seen[col] = true
		f.catNames = append(f.catNames, col)
		f.catVals = append(f.catVals, t.Column(col))
	}
	return f
}

// encoder is the fitted preprocessing state: per-column medians for
// numeric imputation, per-column modes for categorical imputation, and
// the category vocabulary for one-hot encoding. It is fitted on the
// training rows only; categories unseen at fit time encode to all zeros.
type encoder struct {
	medians []float64
	modes   []string
	vocab   []map[string]int // category -> one-hot slot, per categorical column
	width   int
}

func fitEncoder(f *features, trainIdx []int) *encoder {
	e := &encoder{width: len(f.numVals)}

	for _, vals := range f.numVals {
		var present []float64
		for _, i := range trainIdx {
			if !math.IsNaN(vals[i]) {
				present = append(present, vals[i])
			}
		}
		med := 0.0
		if len(present) > 0 {
			sort.Float64s(present)
			med = stat.Quantile(0.5, stat.Empirical, present, nil)
		}
		e.medians = append(e.medians, med)
	}

	for _, vals := range f.catVals {
		counts := map[string]int{}
		for _, i := range trainIdx {
			if vals[i] != "" {
				counts[vals[i]]++
			}
		}
		mode := ""
		for v, c := range counts {
			if c > counts[mode] || (c == counts[mode] && (mode == "" || v < mode)) {
				mode = v
			}
		}
		e.modes = append(e.modes, mode)

		cats := make([]string, 0, len(counts))
		for v := range counts {
			cats = append(cats, v)
		}
		sort.Strings(cats)
		slots := make(map[string]int, len(cats))
		for _, v := range cats {
			slots[v] = e.width
			e.width++
		}
		e.vocab = append(e.vocab, slots)
	}
	return e
}

// transform encodes the selected rows into a dense design matrix:
// median-imputed numerics followed by one-hot blocks per categorical
// column. Unknown categories leave their block all zero.
func (e *encoder) transform(f *features, idx []int) *mat.Dense {
	x := mat.NewDense(len(idx), e.width, nil)
	for row, i := range idx {
		for j, vals := range f.numVals {
			v := vals[i]
			if math.IsNaN(v) {
				v = e.medians[j]
			}
			x.Set(row, j, v)
		}
		for j, vals := range f.catVals {
			v := vals[i]
			if v == "" {
				v = e.modes[j]
			}
			if slot, ok := e.vocab[j][v]; ok {
				x.Set(row, slot, 1)
			}
		}
	}
	return x
}
