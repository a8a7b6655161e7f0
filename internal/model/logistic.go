package model

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// stratifiedSplit partitions row indices into train and test sets,
// sampling testFrac within each label class so both classes appear on
// both sides whenever their counts allow. The shuffle is seeded, so the
// split is reproducible across runs.
func stratifiedSplit(y []float64, testFrac float64, seed int64) (train, test []int) {
	byClass := map[float64][]int{}
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	// iterate classes deterministically
	classes := make([]float64, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	if len(classes) == 2 && classes[0] > classes[1] {
		classes[0], classes[1] = classes[1], classes[0]
	}

	rng := rand.New(rand.NewSource(seed))
	for _, c := range classes {
		idx := byClass[c]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		nTest := int(float64(len(idx)) * testFrac)
		if nTest == 0 && len(idx) > 1 {
			nTest = 1
		}
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}
	return train, test
}

// logit is a fitted logistic regression with the feature scaling learned
// at fit time.
type logit struct {
	w     *mat.VecDense
	b     float64
	mean  []float64
	scale []float64
}

// fitLogistic trains by full-batch gradient descent. Features are
// standardized with training-set statistics first; small one-hot heavy
// design matrices converge comfortably within the iteration cap.
func fitLogistic(x *mat.Dense, y []float64, iters int) *logit {
	n, d := x.Dims()
	m := &logit{
		w:     mat.NewVecDense(d, nil),
		mean:  make([]float64, d),
		scale: make([]float64, d),
	}
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, x)
		var sum float64
		for _, v := range col {
			sum += v
		}
		mu := sum / float64(n)
		var ss float64
		for _, v := range col {
			ss += (v - mu) * (v - mu)
		}
		sd := math.Sqrt(ss / float64(n))
		if sd == 0 {
			sd = 1
		}
		m.mean[j] = mu
		m.scale[j] = sd
	}
	xs := m.standardize(x)

	const lr = 0.5
	grad := mat.NewVecDense(d, nil)
	for it := 0; it < iters; it++ {
		var gradB float64
		grad.Zero()
		for i := 0; i < n; i++ {
			row := xs.RowView(i)
			p := sigmoid(mat.Dot(row, m.w) + m.b)
			diff := p - y[i]
			grad.AddScaledVec(grad, diff, row)
			gradB += diff
		}
		m.w.AddScaledVec(m.w, -lr/float64(n), grad)
		m.b -= lr * gradB / float64(n)
	}
	return m
}

func (m *logit) standardize(x *mat.Dense) *mat.Dense {
	n, d := x.Dims()
	out := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			out.Set(i, j, (x.At(i, j)-m.mean[j])/m.scale[j])
		}
	}
	return out
}

// accuracy scores the fitted model on a held-out design matrix, returning
// the correct-prediction fraction in [0,1].
func (m *logit) accuracy(x *mat.Dense, y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	xs := m.standardize(x)
	var correct int
	for i := range y {
		p := sigmoid(mat.Dot(xs.RowView(i), m.w) + m.b)
		pred := 0.0
		if p >= 0.5 {
			pred = 1
		}
		if pred == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(y))
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
