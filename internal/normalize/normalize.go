// Package normalize decomposes nested documents into a forest of relational
// tables with surrogate primary keys and parent-pointing foreign keys.
package normalize

import (
	"fmt"
	"strconv"

	"github.com/reltab/reltab/internal/errors"
	"github.com/reltab/reltab/internal/inflect"
	"github.com/reltab/reltab/internal/models"
	"github.com/reltab/reltab/internal/registry"
)

// DefaultRootTable is the table name used when the caller supplies none.
const DefaultRootTable = "root"

// Normalizer walks documents and emits rows into a table registry. All
// surrogate-id state lives in the registry, so one Normalizer per registry
// per run; documents are processed strictly in input order.
type Normalizer struct {
	reg *registry.Registry
}

// New creates a Normalizer writing into reg.
func New(reg *registry.Registry) *Normalizer {
	return &Normalizer{reg: reg}
}

// Normalize decomposes every document in the collection into the registry,
// rooting each one in rootTable.
func (n *Normalizer) Normalize(coll models.Collection, rootTable string) error {
	if rootTable == "" {
		rootTable = DefaultRootTable
	}
	for i, doc := range coll.Docs {
		if err := n.normalizeObject(doc, rootTable, "", 0); err != nil {
			return errors.NewConvertError(fmt.Sprintf("document %d", i), err)
		}
	}
	return nil
}

// normalizeObject emits one row for obj into tableName and recurses into
// nested structures. parentTable/parentID carry the enclosing recursion
// frame: the foreign key always points at the immediate parent row, never
// a more distant ancestor.
func (n *Normalizer) normalizeObject(obj *models.Value, tableName, parentTable string, parentID int64) error {
	table := n.reg.GetOrCreate(tableName)
	table.SetPrimaryKey(inflect.Singularize(tableName) + "_id")

	id := table.NextID()
	row := models.Row{table.PK: strconv.FormatInt(id, 10)}
	if parentTable != "" {
		fk := foreignKeyColumn(table, parentTable)
		table.SetForeignKey(fk, parentTable)
		row[fk] = strconv.FormatInt(parentID, 10)
	}
	// Append before descending so every parent row is created strictly
	// before its children; later scalar fields mutate the same map.
	table.Append(row)

	for _, m := range obj.Members {
		switch m.Value.Kind {
		case models.Object:
			childTable := inflect.Pluralize(m.Key)
			if err := n.normalizeObject(m.Value, childTable, tableName, id); err != nil {
				return fmt.Errorf("field %q: %w", m.Key, err)
			}
		case models.Array:
			if len(m.Value.Elems) == 0 {
				// Empty arrays create neither rows nor tables.
				continue
			}
			childTable := inflect.Pluralize(m.Key)
			for _, elem := range m.Value.Elems {
				if elem.Kind == models.Object {
					if err := n.normalizeObject(elem, childTable, tableName, id); err != nil {
						return fmt.Errorf("field %q: %w", m.Key, err)
					}
					continue
				}
				if err := n.emitValueRow(elem, childTable, tableName, id); err != nil {
					return fmt.Errorf("field %q: %w", m.Key, err)
				}
			}
		default:
			table.AddColumn(m.Key)
			row[m.Key] = m.Value.Scalar()
		}
	}
	return nil
}

// emitValueRow stores one primitive array element as a child row with a
// single "value" column.
func (n *Normalizer) emitValueRow(elem *models.Value, tableName, parentTable string, parentID int64) error {
	table := n.reg.GetOrCreate(tableName)
	table.SetPrimaryKey(inflect.Singularize(tableName) + "_id")
	fk := foreignKeyColumn(table, parentTable)
	table.SetForeignKey(fk, parentTable)
	table.AddColumn("value")

	text, err := renderElement(elem)
	if err != nil {
		return err
	}
	table.Append(models.Row{
		table.PK: strconv.FormatInt(table.NextID(), 10),
		fk:       strconv.FormatInt(parentID, 10),
		"value":  text,
	})
	return nil
}

// foreignKeyColumn names the parent-pointing column in table. When a field
// nests under a same-named field the child lands in its parent's table and
// the derived name would collide with that table's own primary key; the
// reference then moves to a parent_ prefixed column so the surrogate id is
// never overwritten.
func foreignKeyColumn(table *models.Table, parentTable string) string {
	fk := inflect.Singularize(parentTable) + "_id"
	if fk == table.PK {
		fk = "parent_" + fk
	}
	return fk
}

// renderElement renders a primitive element as its scalar text; an array
// nested inside an array serializes to its JSON text.
func renderElement(elem *models.Value) (string, error) {
	if elem.IsScalar() {
		return elem.Scalar(), nil
	}
	data, err := elem.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
