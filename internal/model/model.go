// Package model derives a binary "high risk" label from incident score
// columns and fits a logistic regression over whatever feature columns the
// upload happens to carry. Every failure shape (no usable columns, a
// constant label, a split too small to hold out) degrades to a disabled
// Metrics value; training never aborts a run.
package model

import (
	"math"

	"github.com/safetystack/dashgen/internal/dataset"
)

const (
	modelName  = "LogisticRegression"
	targetName = "high_risk"

	// Fixed policy: a row is high risk when either score, with missing
	// values treated as 0, reaches this threshold.
	riskThreshold = 7.0

	testFraction = 0.25
	splitSeed    = 42
	maxIter      = 1000
)

// Metrics is the model block of the summary document. Accuracy is nil
// (serialized as null) whenever training was skipped.
type Metrics struct {
	Enabled  bool     `json:"enabled"`
	Model    string   `json:"model"`
	Target   string   `json:"target"`
	Rows     int      `json:"rows"`
	Accuracy *float64 `json:"accuracy"`
}

// Disabled is the well-formed sentinel for a skipped training run.
func Disabled(rows int) Metrics {
	return Metrics{Model: modelName, Target: targetName, Rows: rows}
}

// Train attempts to fit the risk classifier against t. Three exits:
// disabled when neither a severity nor a likelihood column resolves,
// disabled when the derived label has a single class, and an enabled
// result with held-out accuracy otherwise.
func Train(t *dataset.Table, r dataset.Resolver) Metrics {
	rows := t.Len()

	sevCol, sevOK := r.Column(t, "severity")
	likeCol, likeOK := r.Column(t, "likelihood")
	if !sevOK && !likeOK {
		return Disabled(rows)
	}

	sev := scoreColumn(t, sevCol, sevOK)
	like := scoreColumn(t, likeCol, likeOK)

	y := make([]float64, rows)
	var positives int
	for i := 0; i < rows; i++ {
		if fillZero(sev[i]) >= riskThreshold || fillZero(like[i]) >= riskThreshold {
			y[i] = 1
			positives++
		}
	}
	if positives == 0 || positives == rows {
		return Disabled(rows)
	}

	feats := collectFeatures(t, r, sevCol, sevOK, likeCol, likeOK)

	trainIdx, testIdx := stratifiedSplit(y, testFraction, splitSeed)
	if len(trainIdx) == 0 || len(testIdx) == 0 {
		return Disabled(rows)
	}

	enc := fitEncoder(feats, trainIdx)
	xTrain := enc.transform(feats, trainIdx)
	xTest := enc.transform(feats, testIdx)

	clf := fitLogistic(xTrain, subset(y, trainIdx), maxIter)
	acc := clf.accuracy(xTest, subset(y, testIdx))

	return Metrics{
		Enabled:  true,
		Model:    modelName,
		Target:   targetName,
		Rows:     rows,
		Accuracy: &acc,
	}
}

// scoreColumn returns the coerced numeric column, or all-NaN when the
// logical field did not resolve.
func scoreColumn(t *dataset.Table, col string, ok bool) []float64 {
	if ok {
		return t.Numeric(col)
	}
	out := make([]float64, t.Len())
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func fillZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func subset(vals []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = vals[j]
	}
	return out
}
