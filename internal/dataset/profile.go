package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Report is a markdown-friendly profile of a loaded table, used by the
// inspect command to eyeball an upload before generating assets.
type Report struct {
	Name string
	Rows int
	Cols []ColumnSummary
}

// ColumnSummary captures inferred kind and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|datetime|categorical|text|unknown
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Categorical top values
	TopValues []CategoryCount
}

// CategoryCount pairs a categorical value with its occurrence count.
type CategoryCount struct {
	Value string
	Count int
}

const profileTopValues = 8

// Profile infers a kind for every column and summarizes it. Kind is
// decided by the predominant parsed type across non-blank cells.
func Profile(t *Table) *Report {
	rep := &Report{Name: t.Source, Rows: t.Len()}
	for _, name := range t.Columns {
		rep.Cols = append(rep.Cols, profileColumn(name, t.Column(name)))
	}
	return rep
}

func profileColumn(name string, values []string) ColumnSummary {
	s := ColumnSummary{Name: name, Kind: "unknown"}
	var (
		numCnt, dtCnt, txtCnt int
		n                     int
		mean, m2              float64
		minV                  = math.Inf(1)
		maxV                  = math.Inf(-1)
		cats                  = map[string]int{}
	)
	for _, raw := range values {
		v := strings.TrimSpace(raw)
		if v == "" {
			s.Missing++
			continue
		}
		s.NonNull++
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			numCnt++
			n++
			if x < minV {
				minV = x
			}
			if x > maxV {
				maxV = x
			}
			delta := x - mean
			mean += delta / float64(n)
			m2 += delta * (x - mean)
			continue
		}
		if _, ok := parseDate(v); ok {
			dtCnt++
			continue
		}
		txtCnt++
		if len(v) <= 64 {
			cats[v]++
		}
	}

	switch {
	case numCnt > 0 && numCnt >= dtCnt && numCnt >= txtCnt:
		s.Kind = "numeric"
		s.Min = minV
		s.Max = maxV
		s.Mean = mean
		if n > 1 {
			s.Std = math.Sqrt(m2 / float64(n-1))
		}
	case dtCnt > 0 && dtCnt >= txtCnt:
		s.Kind = "datetime"
	case len(cats) > 0:
		s.Kind = "categorical"
		tops := make([]CategoryCount, 0, len(cats))
		for k, c := range cats {
			tops = append(tops, CategoryCount{Value: k, Count: c})
		}
		sort.Slice(tops, func(i, j int) bool {
			if tops[i].Count == tops[j].Count {
				return tops[i].Value < tops[j].Value
			}
			return tops[i].Count > tops[j].Count
		})
		if len(tops) > profileTopValues {
			tops = tops[:profileTopValues]
		}
		s.TopValues = tops
		s.Unique = len(cats)
	case txtCnt > 0:
		s.Kind = "text"
	}
	return s
}

// Markdown renders a compact profile suitable for a terminal or a doc.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET PROFILE]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		name := c.Name
		if name == "" {
			name = "(unnamed)"
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", name, c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf(" min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
		case "categorical":
			if len(c.TopValues) > 0 {
				b.WriteString(" top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", kv.Value, kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
