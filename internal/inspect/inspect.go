// Package inspect builds a human-readable report of the structure observed
// across a document collection: per field, the set of value types seen and
// any nested shape. It exists for the --inspect flag; the conversion
// engines do no global type reconciliation.
package inspect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reltab/reltab/internal/models"
)

// FieldInfo accumulates what was observed for one field across documents.
type FieldInfo struct {
	Types  map[string]struct{}
	Nested *Report
}

// Report describes the fields of one structural level in first-seen order.
type Report struct {
	order  []string
	fields map[string]*FieldInfo
}

func newReport() *Report {
	return &Report{fields: make(map[string]*FieldInfo)}
}

// Analyze scans every document and returns the merged structure report.
func Analyze(coll models.Collection) *Report {
	report := newReport()
	for _, doc := range coll.Docs {
		report.observeObject(doc)
	}
	return report
}

func (r *Report) observeObject(obj *models.Value) {
	for _, m := range obj.Members {
		info, ok := r.fields[m.Key]
		if !ok {
			info = &FieldInfo{Types: make(map[string]struct{})}
			r.fields[m.Key] = info
			r.order = append(r.order, m.Key)
		}
		info.Types[typeName(m.Value)] = struct{}{}

		switch m.Value.Kind {
		case models.Object:
			if info.Nested == nil {
				info.Nested = newReport()
			}
			info.Nested.observeObject(m.Value)
		case models.Array:
			for _, elem := range m.Value.Elems {
				if elem.Kind == models.Object {
					if info.Nested == nil {
						info.Nested = newReport()
					}
					info.Nested.observeObject(elem)
				}
			}
		}
	}
}

// Field returns the info recorded for a field name, or nil.
func (r *Report) Field(name string) *FieldInfo {
	return r.fields[name]
}

// Fields returns the field names in first-seen order.
func (r *Report) Fields() []string {
	return append([]string(nil), r.order...)
}

// String renders the report as an indented listing, one field per line with
// its sorted type set.
func (r *Report) String() string {
	var b strings.Builder
	r.render(&b, 0)
	return b.String()
}

func (r *Report) render(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, name := range r.order {
		info := r.fields[name]
		types := make([]string, 0, len(info.Types))
		for t := range info.Types {
			types = append(types, t)
		}
		sort.Strings(types)
		fmt.Fprintf(b, "%s%s: %s\n", indent, name, strings.Join(types, ", "))
		if info.Nested != nil {
			info.Nested.render(b, depth+1)
		}
	}
}

func typeName(v *models.Value) string {
	switch v.Kind {
	case models.Null:
		return "null"
	case models.Bool:
		return "bool"
	case models.Number:
		return "number"
	case models.String:
		return "string"
	case models.Object:
		return "object"
	case models.Array:
		return "array"
	}
	return "unknown"
}
