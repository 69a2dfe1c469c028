// Package flatten implements the single-table conversion: a path-union scan
// over the whole collection followed by a per-document row projection.
package flatten

import (
	"strconv"

	"github.com/reltab/reltab/internal/models"
)

// DefaultSeparator joins path segments in flattened column names.
const DefaultSeparator = "/"

// TableName names the single table produced by flattening.
const TableName = "flattened"

// Scan walks every document depth-first and returns the union of leaf
// paths in first-discovery order. Array positions contribute per-position
// paths, so a column like "tags/3" exists if any document has a fourth
// element, even when others have fewer.
func Scan(coll models.Collection, separator string) []string {
	if separator == "" {
		separator = DefaultSeparator
	}
	var paths []string
	seen := make(map[string]struct{})
	register := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}
	for _, doc := range coll.Docs {
		walk(doc, "", separator, func(path string, _ *models.Value) {
			register(path)
		})
	}
	return paths
}

// Project renders one document into a row over the discovered path union.
// Paths the document does not reach are simply absent from the row and
// resolve to empty at write time.
func Project(doc *models.Value, separator string) models.Row {
	if separator == "" {
		separator = DefaultSeparator
	}
	row := make(models.Row)
	walk(doc, "", separator, func(path string, leaf *models.Value) {
		row[path] = leaf.Scalar()
	})
	return row
}

// Flatten converts the whole collection into a single table whose columns
// are the scanned path union and whose rows follow document input order.
func Flatten(coll models.Collection, separator string) *models.Table {
	table := models.NewTable(TableName)
	for _, path := range Scan(coll, separator) {
		table.AddColumn(path)
	}
	for _, doc := range coll.Docs {
		table.Append(Project(doc, separator))
	}
	return table
}

// walk visits every leaf of a document in field and element order, calling
// fn with the joined path. Empty objects and arrays contribute no leaves.
func walk(v *models.Value, prefix, separator string, fn func(path string, leaf *models.Value)) {
	switch v.Kind {
	case models.Object:
		for _, m := range v.Members {
			walk(m.Value, join(prefix, m.Key, separator), separator, fn)
		}
	case models.Array:
		for i, elem := range v.Elems {
			walk(elem, join(prefix, strconv.Itoa(i), separator), separator, fn)
		}
	default:
		fn(prefix, v)
	}
}

func join(prefix, segment, separator string) string {
	if prefix == "" {
		return segment
	}
	return prefix + separator + segment
}
