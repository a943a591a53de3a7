package router

import "sync/atomic"

// Table holds the active router. Sessions load it once per request; Reload replaces it
// wholesale, so in-flight requests keep using the router they've started with.
type Table struct {
	active atomic.Pointer[Router]
}

func NewTable(r *Router) *Table {
	t := new(Table)
	t.active.Store(r)
	return t
}

// Router returns the currently active router.
func (t *Table) Router() *Router {
	return t.active.Load()
}

// Reload builds a new router and activates it. If building fails, the active router is
// left untouched.
func (t *Table) Reload(build func() (*Router, error)) error {
	r, err := build()
	if err != nil {
		return err
	}

	t.active.Store(r)
	return nil
}
