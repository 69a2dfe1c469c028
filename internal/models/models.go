package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind discriminates the variants of a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Object
	Array
)

// Member is a single key/value pair of a JSON object. Objects are kept as
// ordered member slices rather than maps so that field order survives
// parsing; the whole conversion pipeline depends on first-seen ordering.
type Member struct {
	Key   string
	Value *Value
}

// Value is a parsed JSON node. Exactly one of the payload fields is
// meaningful, selected by Kind. Values are immutable once parsed.
type Value struct {
	Kind    Kind
	Bool    bool
	Num     json.Number
	Str     string
	Members []Member // Object
	Elems   []*Value // Array
}

// IsScalar reports whether v is a leaf node (null included).
func (v *Value) IsScalar() bool {
	switch v.Kind {
	case Null, Bool, Number, String:
		return true
	}
	return false
}

// Scalar renders a leaf node as cell text. Null renders empty; booleans,
// numbers and strings render as their literal text form. No type coercion
// is attempted.
func (v *Value) Scalar() string {
	switch v.Kind {
	case Null:
		return ""
	case Bool:
		return strconv.FormatBool(v.Bool)
	case Number:
		return v.Num.String()
	case String:
		return v.Str
	}
	return ""
}

// MarshalJSON re-serializes a Value preserving object member order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) encode(buf *bytes.Buffer) error {
	switch v.Kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.Bool))
	case Number:
		buf.WriteString(v.Num.String())
	case String:
		data, err := json.Marshal(v.Str)
		if err != nil {
			return err
		}
		buf.Write(data)
	case Object:
		buf.WriteByte('{')
		for i, m := range v.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case Array:
		buf.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	}
	return nil
}

// Collection is a parsed document collection: one or more object documents.
// A single top-level object is treated as a one-document collection.
type Collection struct {
	Docs         []*Value
	RootWasArray bool
}

// Row maps column names to cell text. Columns added to the table after a
// row was written are simply absent from older rows and resolve to empty
// at write time.
type Row map[string]string

// ForeignKey records one parent linkage: the column carrying the parent's
// surrogate id and the name of the table it references.
type ForeignKey struct {
	Column string
	Parent string
}

// Table accumulates rows under a growing, append-only column set.
// Column order is first-seen order; row order is creation order.
type Table struct {
	Name string
	// PK is the primary key column name, set lazily on first use.
	PK string
	// ForeignKeys lists parent linkages in first-seen order. A table
	// reached from several structural positions carries one entry per
	// distinct FK column. Empty for root tables.
	ForeignKeys []ForeignKey

	Columns []string
	Rows    []Row

	colSet map[string]struct{}
	fkSet  map[string]struct{}
	nextID int64
}

// NewTable creates an empty table with no columns.
func NewTable(name string) *Table {
	return &Table{
		Name:   name,
		colSet: make(map[string]struct{}),
		fkSet:  make(map[string]struct{}),
	}
}

// SetPrimaryKey assigns the primary key column once; later calls are no-ops
// so that a table shared between structural positions keeps its first key.
func (t *Table) SetPrimaryKey(col string) {
	if t.PK != "" {
		return
	}
	t.PK = col
	t.AddColumn(col)
}

// SetForeignKey records a parent linkage and ensures the FK column exists.
// The first parent recorded for a given column wins; a table shared between
// structural positions accumulates one linkage per distinct column.
func (t *Table) SetForeignKey(col, parent string) {
	if _, ok := t.fkSet[col]; !ok {
		t.fkSet[col] = struct{}{}
		t.ForeignKeys = append(t.ForeignKeys, ForeignKey{Column: col, Parent: parent})
	}
	t.AddColumn(col)
}

// ForeignKeyParent returns the parent table a column references, if the
// column is a recorded foreign key.
func (t *Table) ForeignKeyParent(col string) (string, bool) {
	for _, fk := range t.ForeignKeys {
		if fk.Column == col {
			return fk.Parent, true
		}
	}
	return "", false
}

// IsForeignKey reports whether the column is a recorded foreign key.
func (t *Table) IsForeignKey(col string) bool {
	_, ok := t.fkSet[col]
	return ok
}

// AddColumn appends a column if unseen. Columns are never removed or
// reordered, which keeps output deterministic across heterogeneous input.
func (t *Table) AddColumn(name string) {
	if _, ok := t.colSet[name]; ok {
		return
	}
	t.colSet[name] = struct{}{}
	t.Columns = append(t.Columns, name)
}

// HasColumn reports whether the column has been introduced.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colSet[name]
	return ok
}

// NextID returns the next surrogate key for this table. Counters start at 1
// and are never reused, including across documents.
func (t *Table) NextID() int64 {
	t.nextID++
	return t.nextID
}

// Append adds a row at the end of the table.
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}
