package fileman

import (
	"bytes"
	"io"
	"os"

	"github.com/httpy-web/httpy/http/coding"
	"github.com/httpy-web/httpy/http/mime"
)

// Variant is a single rendition of a static file: either the file itself or one of its
// pre-compressed siblings.
type Variant struct {
	ContentType mime.MIME
	Coding      coding.Coding
	Size        int64
	path        string
	cached      []byte
}

// Open returns a fresh reader over the variant's content. Cached variants are served
// from memory, others are read from disk lazily.
func (v *Variant) Open() (io.ReadCloser, error) {
	if v.cached != nil {
		return io.NopCloser(bytes.NewReader(v.cached)), nil
	}

	return os.Open(v.path)
}

// Path returns the location of the variant on disk.
func (v *Variant) Path() string {
	return v.path
}

// Variants is a set of renditions of the same content. Identity is always present.
type Variants struct {
	Identity, Gzip, Brotli *Variant
}

// Offered returns the set of codings the content is available in, besides identity.
func (v Variants) Offered() (set coding.Set) {
	if v.Gzip != nil {
		set = set.With(coding.Gzip)
	}

	if v.Brotli != nil {
		set = set.With(coding.Brotli)
	}

	return set
}

// Get returns the variant of the coding, or identity if there's no such.
func (v Variants) Get(c coding.Coding) *Variant {
	switch {
	case c == coding.Gzip && v.Gzip != nil:
		return v.Gzip
	case c == coding.Brotli && v.Brotli != nil:
		return v.Brotli
	default:
		return v.Identity
	}
}

// Entry holds variants of a routable file, per locale. Files that aren't localized are
// stored under the empty locale.
type Entry struct {
	locales  []string
	byLocale map[string]Variants
}

// Locales returns the locales the entry is offered in. Empty for non-localized files.
func (e *Entry) Locales() []string {
	return e.locales
}

// Variants returns the variants for the locale. Unknown locales fall back to the
// non-localized variants, then to the first registered locale.
func (e *Entry) Variants(locale string) Variants {
	if v, found := e.byLocale[locale]; found {
		return v
	}

	if v, found := e.byLocale[""]; found {
		return v
	}

	if len(e.locales) > 0 {
		return e.byLocale[e.locales[0]]
	}

	return Variants{}
}
