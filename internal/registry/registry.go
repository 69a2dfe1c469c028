// Package registry holds the tables produced by normalization. A Registry
// is scoped per conversion run; tests can build isolated instances.
package registry

import "github.com/reltab/reltab/internal/models"

// Registry tracks tables by name and remembers first-creation order so the
// write-out stage emits a deterministic table list, root table first.
type Registry struct {
	tables map[string]*models.Table
	order  []string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		tables: make(map[string]*models.Table),
	}
}

// GetOrCreate returns the table with the given name, creating it on first
// use. Creation is lazy: a table exists only once some structural pattern
// actually reaches it.
func (r *Registry) GetOrCreate(name string) *models.Table {
	if t, ok := r.tables[name]; ok {
		return t
	}
	t := models.NewTable(name)
	r.tables[name] = t
	r.order = append(r.order, name)
	return t
}

// Lookup returns the named table, or nil if it was never created.
func (r *Registry) Lookup(name string) *models.Table {
	return r.tables[name]
}

// Tables returns all tables in first-creation order.
func (r *Registry) Tables() []*models.Table {
	out := make([]*models.Table, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tables[name])
	}
	return out
}

// Len returns the number of tables created so far.
func (r *Registry) Len() int {
	return len(r.order)
}
