// Package router maps request paths onto resources. A Router is built once and never
// modified afterwards; Table swaps whole routers atomically, so request servicing
// requires no locking.
package router

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/httpy-web/httpy/fileman"
	"github.com/httpy-web/httpy/router/pathtree"
)

var (
	ErrNotRegistered = errors.New("path is not registered")
	ErrBadPath       = errors.New("path must begin with a slash")
)

// Match is a successfully resolved path.
type Match struct {
	Resource *Resource
	// Trailing is the part of the path matched by a wildcard segment.
	Trailing string
}

type Router struct {
	tree     *pathtree.Node[*Resource]
	paths    map[string]*Resource
	notFound *Resource
}

func New() *Router {
	return &Router{
		tree:  pathtree.New[*Resource](),
		paths: make(map[string]*Resource),
	}
}

// Add registers the resource at the path. The path may end with the wildcard segment,
// e.g. /static/*.
func (r *Router) Add(path string, resource *Resource) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%s: %w", path, ErrBadPath)
	}

	if err := r.tree.Insert(path, resource); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	r.paths[path] = resource
	return nil
}

// Static registers the file entry at the path.
func (r *Router) Static(path string, entry *fileman.Entry) error {
	return r.Add(path, NewStatic(path, entry))
}

// Page registers the handler at the path.
func (r *Router) Page(path string, handler PageHandler) error {
	return r.Add(path, NewPage(path, handler))
}

// Alias makes the resource registered at the path also available at the alias.
func (r *Router) Alias(alias, path string) error {
	resource, found := r.paths[path]
	if !found {
		return fmt.Errorf("%s: %w", path, ErrNotRegistered)
	}

	return r.Add(alias, resource)
}

// NotFound sets the resource serving unresolved paths. Its response status is always
// overridden by 404.
func (r *Router) NotFound(resource *Resource) *Router {
	r.notFound = resource
	return r
}

// NotFoundResource returns the resource serving unresolved paths. Nil if none was set.
func (r *Router) NotFoundResource() *Resource {
	return r.notFound
}

// Resolve looks the path up.
func (r *Router) Resolve(path string) (Match, bool) {
	resource, trailing, found := r.tree.Lookup(path)
	if !found {
		return Match{}, false
	}

	return Match{
		Resource: resource,
		Trailing: trailing,
	}, true
}

// Routes iterates over all the registered paths and their resources.
func (r *Router) Routes() iter.Seq2[string, *Resource] {
	return func(yield func(string, *Resource) bool) {
		for path, resource := range r.paths {
			if !yield(path, resource) {
				return
			}
		}
	}
}

// Len returns the number of registered paths.
func (r *Router) Len() int {
	return len(r.paths)
}
