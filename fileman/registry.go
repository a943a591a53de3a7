// Package fileman registers static files along with their pre-compressed siblings. Nothing
// is ever compressed at runtime: a gzip or brotli variant is offered only if a file with
// the corresponding extension lies next to the original one.
package fileman

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/httpy-web/httpy/http/coding"
	"github.com/httpy-web/httpy/http/mime"
	"github.com/klauspost/compress/gzip"
)

// LocalePlaceholder is substituted by the locale in paths of localized files, e.g.
// `{prefix}/index.html` becomes `ru/index.html`.
const LocalePlaceholder = "{prefix}"

var (
	ErrNotRegular   = errors.New("not a regular file")
	ErrEmptyWebPath = errors.New("web path must not be empty")
	ErrCorrupted    = errors.New("compressed variant is corrupted")
)

// Options control how files are registered.
type Options struct {
	// Locales the file is available in. Ignored unless the file path contains
	// the LocalePlaceholder.
	Locales []string
	// Cached files are read into memory once registered.
	Cached bool
}

// Registry maps web paths onto static entries. It's meant to be filled once at startup and
// is read-only afterwards, so it is safe for concurrent lookups.
type Registry struct {
	entries map[string]*Entry
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
	}
}

// Add registers the file at the web path.
func (r *Registry) Add(webPath, file string, opts Options) (*Entry, error) {
	if len(webPath) == 0 {
		return nil, ErrEmptyWebPath
	}

	entry := &Entry{
		byLocale: make(map[string]Variants),
	}

	if len(opts.Locales) == 0 || !strings.Contains(file, LocalePlaceholder) {
		variants, err := loadVariants(file, opts.Cached)
		if err != nil {
			return nil, err
		}

		entry.byLocale[""] = variants
	} else {
		for _, locale := range opts.Locales {
			variants, err := loadVariants(strings.ReplaceAll(file, LocalePlaceholder, locale), opts.Cached)
			if err != nil {
				return nil, fmt.Errorf("locale %s: %w", locale, err)
			}

			entry.locales = append(entry.locales, locale)
			entry.byLocale[locale] = variants
		}
	}

	r.entries[webPath] = entry
	return entry, nil
}

// AddDir registers every file in the directory recursively under the web path prefix and
// returns the web paths registered. Compressed siblings aren't registered on their own.
func (r *Registry) AddDir(prefix, dir string, opts Options) (webPaths []string, err error) {
	prefix = "/" + strings.Trim(prefix, "/")

	err = filepath.WalkDir(dir, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || isSibling(file) {
			return nil
		}

		rel, err := filepath.Rel(dir, file)
		if err != nil {
			return err
		}

		webPath := path.Join(prefix, filepath.ToSlash(rel))
		if _, err = r.Add(webPath, file, Options{Cached: opts.Cached}); err != nil {
			return err
		}

		webPaths = append(webPaths, webPath)
		return nil
	})

	return webPaths, err
}

// Exists reports whether anything is registered at the web path.
func (r *Registry) Exists(webPath string) bool {
	_, found := r.entries[webPath]
	return found
}

// Entry returns the entry registered at the web path.
func (r *Registry) Entry(webPath string) (*Entry, bool) {
	entry, found := r.entries[webPath]
	return entry, found
}

// Len returns the number of registered web paths.
func (r *Registry) Len() int {
	return len(r.entries)
}

func loadVariants(file string, cached bool) (variants Variants, err error) {
	contentType := mime.ByExtension(file)

	variants.Identity, err = loadVariant(file, contentType, coding.Identity, cached)
	if err != nil {
		return variants, err
	}

	variants.Gzip, err = loadSibling(file, contentType, coding.Gzip, cached)
	if err != nil {
		return variants, err
	}

	variants.Brotli, err = loadSibling(file, contentType, coding.Brotli, cached)
	return variants, err
}

// loadSibling loads the pre-compressed variant, if it exists.
func loadSibling(file string, contentType mime.MIME, c coding.Coding, cached bool) (*Variant, error) {
	variant, err := loadVariant(file+c.Extension(), contentType, c, cached)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, err
	}

	if c == coding.Gzip {
		if err = checkGzip(variant); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", variant.path, ErrCorrupted, err)
		}
	}

	return variant, nil
}

// checkGzip makes sure the variant starts with a valid gzip header, so a broken file is
// reported at startup instead of being served to clients.
func checkGzip(variant *Variant) error {
	f, err := variant.Open()
	if err != nil {
		return err
	}

	defer f.Close()

	_, err = gzip.NewReader(f)
	return err
}

func loadVariant(file string, contentType mime.MIME, c coding.Coding, cached bool) (*Variant, error) {
	info, err := os.Stat(file)
	if err != nil {
		return nil, err
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", file, ErrNotRegular)
	}

	variant := &Variant{
		ContentType: contentType,
		Coding:      c,
		Size:        info.Size(),
		path:        file,
	}

	if cached {
		if variant.cached, err = os.ReadFile(file); err != nil {
			return nil, err
		}

		variant.Size = int64(len(variant.cached))
	}

	return variant, nil
}

// isSibling reports whether the file is a compressed variant of another existing file.
func isSibling(file string) bool {
	for _, c := range [...]coding.Coding{coding.Gzip, coding.Brotli} {
		if original, found := strings.CutSuffix(file, c.Extension()); found {
			if _, err := os.Stat(original); err == nil {
				return true
			}
		}
	}

	return false
}
