// Package pages loads page manifests and provides the built-in dynamic pages.
//
// Every page lives in its own directory containing an index.json manifest:
//
//	{
//	  "web_path": "/",
//	  "web_path_aliases": ["/index.html"],
//	  "filepath": "{prefix}/index.html",
//	  "locales": ["en", "ru"]
//	}
//
// A manifest naming a handler instead of a file is served by the handler registered under
// that name. A filepath pointing to a directory serves all of its files under the web
// path, e.g. "web_path": "/static/*".
package pages

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/httpy-web/httpy/fileman"
	"github.com/httpy-web/httpy/router"
	"github.com/httpy-web/httpy/router/pathtree"
	json "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

// ManifestName is the name of the manifest file in a page directory.
const ManifestName = "index.json"

var (
	ErrUnknownHandler = errors.New("no handler is registered by the name")
	ErrEmptyManifest  = errors.New("manifest must have either a filepath or a handler")
	ErrDuplicatePath  = errors.New("web path is already taken by another page")
)

// Manifest describes a single page.
type Manifest struct {
	WebPath string   `json:"web_path"`
	Aliases []string `json:"web_path_aliases"`
	// Filepath is relative to the page directory. May contain the {prefix} placeholder,
	// substituted by each of the locales.
	Filepath string   `json:"filepath"`
	Locales  []string `json:"locales"`
	// Handler is the name of a registered handler. Takes precedence over Filepath.
	Handler string `json:"handler"`
	Cached  bool   `json:"cached"`
}

// ReadManifest reads and parses the manifest file.
func ReadManifest(path string) (m Manifest, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}

	if err = json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("%s: %w", path, err)
	}

	if len(m.WebPath) == 0 {
		return m, fmt.Errorf("%s: %w", path, fileman.ErrEmptyWebPath)
	}

	if len(m.Handler) == 0 && len(m.Filepath) == 0 {
		return m, fmt.Errorf("%s: %w", path, ErrEmptyManifest)
	}

	return m, nil
}

// Registry holds named page handlers, so manifests may refer to them.
type Registry struct {
	handlers map[string]router.PageHandler
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]router.PageHandler),
	}
}

// Register adds the handler under the name, overriding the previous one if any.
func (r *Registry) Register(name string, handler router.PageHandler) *Registry {
	r.handlers[name] = handler
	return r
}

// Lookup returns the handler registered under the name.
func (r *Registry) Lookup(name string) (router.PageHandler, bool) {
	handler, found := r.handlers[name]
	return handler, found
}

// Loader registers pages from a directory into the router.
type Loader struct {
	Handlers *Registry
	Files    *fileman.Registry
	Router   *router.Router
	Logger   zerolog.Logger
}

// Load walks the immediate subdirectories of dir, registering a page per manifest found.
// Directories without a manifest are skipped with a warning; broken manifests abort
// the loading.
func (l Loader) Load(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pageDir := filepath.Join(dir, entry.Name())
		manifest, err := ReadManifest(filepath.Join(pageDir, ManifestName))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			l.Logger.Warn().Str("dir", pageDir).Msg("missing " + ManifestName + ", skipping")
			continue
		case err != nil:
			return err
		}

		if err = l.register(pageDir, manifest); err != nil {
			return fmt.Errorf("%s: %w", pageDir, err)
		}
	}

	return nil
}

func (l Loader) register(pageDir string, m Manifest) error {
	if len(m.Handler) > 0 {
		handler, found := l.Handlers.Lookup(m.Handler)
		if !found {
			return fmt.Errorf("%s: %w", m.Handler, ErrUnknownHandler)
		}

		return l.add(m.WebPath, m.Aliases, router.NewPage(m.Handler, handler))
	}

	file := filepath.Join(pageDir, m.Filepath)
	if info, err := os.Stat(file); err == nil && info.IsDir() {
		return l.registerDir(file, m)
	}

	if l.Files.Exists(m.WebPath) {
		return fmt.Errorf("%s: %w", m.WebPath, ErrDuplicatePath)
	}

	entry, err := l.Files.Add(m.WebPath, file, fileman.Options{
		Locales: m.Locales,
		Cached:  m.Cached,
	})
	if err != nil {
		return err
	}

	return l.add(m.WebPath, m.Aliases, router.NewStatic(m.WebPath, entry))
}

// registerDir serves every file of the directory under the web path, which acts as
// a prefix. A trailing wildcard segment is allowed, e.g. /static/*. Aliases are prefixes
// as well.
func (l Loader) registerDir(dir string, m Manifest) error {
	prefix := dirPrefix(m.WebPath)
	webPaths, err := l.Files.AddDir(prefix, dir, fileman.Options{Cached: m.Cached})
	if err != nil {
		return err
	}

	for _, webPath := range webPaths {
		entry, _ := l.Files.Entry(webPath)
		rel := strings.TrimPrefix(webPath, prefix)

		aliases := make([]string, len(m.Aliases))
		for i, alias := range m.Aliases {
			aliases[i] = path.Join(dirPrefix(alias), rel)
		}

		if err = l.add(webPath, aliases, router.NewStatic(webPath, entry)); err != nil {
			return err
		}
	}

	return nil
}

func dirPrefix(webPath string) string {
	return "/" + strings.Trim(strings.TrimSuffix(webPath, pathtree.Wildcard), "/") + "/"
}

func (l Loader) add(webPath string, aliases []string, resource *router.Resource) error {
	if err := l.Router.Add(webPath, resource); err != nil {
		return err
	}

	l.Logger.Info().Str("path", webPath).Stringer("resource", resource).Msg("page added")

	for _, alias := range aliases {
		if err := l.Router.Alias(alias, webPath); err != nil {
			return err
		}

		l.Logger.Info().Str("path", alias).Str("alias of", webPath).Msg("page added")
	}

	return nil
}
