package dataset

// Resolver maps a logical field name to an ordered list of literal column
// names to try. Uploaded files name the same field differently
// ("Severity" vs "severityScore"); lookups go through a resolver instead
// of a hardcoded column name so one code path serves them all.
type Resolver map[string][]string

// Column returns the first alias of field present in the table.
func (r Resolver) Column(t *Table, field string) (string, bool) {
	for _, alias := range r[field] {
		if t.Has(alias) {
			return alias, true
		}
	}
	return "", false
}

// FirstColumn resolves fields in order and returns the first hit. Useful
// where several logical fields could feed the same chart.
func (r Resolver) FirstColumn(t *Table, fields ...string) (string, bool) {
	for _, f := range fields {
		if col, ok := r.Column(t, f); ok {
			return col, true
		}
	}
	return "", false
}
