package router

import (
	"slices"
	"strings"

	"github.com/httpy-web/httpy/fileman"
	"github.com/httpy-web/httpy/http"
	"github.com/httpy-web/httpy/http/coding"
	"github.com/httpy-web/httpy/http/status"
	"github.com/httpy-web/httpy/negotiate"
)

// PageHandler produces a response for a dynamic resource. Returned errors (and panics) are
// turned into 500 Internal Server Error without leaking the details to the client.
type PageHandler interface {
	OnRequest(request *http.Request) (*http.Response, error)
}

// HandlerFunc adapts an ordinary function to the PageHandler interface.
type HandlerFunc func(request *http.Request) (*http.Response, error)

func (h HandlerFunc) OnRequest(request *http.Request) (*http.Response, error) {
	return h(request)
}

// Resource is something routable: either a static file entry or a dynamic page. Resources
// are immutable once registered, so the same one may be shared by several paths.
type Resource struct {
	// Name identifies the resource in logs.
	Name    string
	Entry   *fileman.Entry
	Handler PageHandler
}

// NewStatic returns a resource serving the file entry.
func NewStatic(name string, entry *fileman.Entry) *Resource {
	return &Resource{Name: name, Entry: entry}
}

// NewPage returns a resource served by the handler.
func NewPage(name string, handler PageHandler) *Resource {
	return &Resource{Name: name, Handler: handler}
}

// Serve produces the response for the request. Static entries are negotiated by the
// Accept-Language and Accept-Encoding headers, the chosen variant is opened and attached
// as the response body.
func (r *Resource) Serve(request *http.Request) (*http.Response, error) {
	switch {
	case r == nil:
		return http.Error(status.ErrNotFound), nil
	case r.Handler != nil:
		return r.Handler.OnRequest(request)
	case r.Entry != nil:
		return serveStatic(r.Entry, request)
	default:
		return http.Error(status.ErrNotFound), nil
	}
}

func serveStatic(entry *fileman.Entry, request *http.Request) (*http.Response, error) {
	locales := entry.Locales()
	locale := negotiate.SelectLocale(request.AcceptLanguage(), locales)
	if len(locales) > 0 && !slices.Contains(locales, locale) {
		locale = locales[0]
	}

	variants := entry.Variants(locale)
	if variants.Identity == nil {
		return http.Error(status.ErrNotFound), nil
	}

	offered := variants.Offered()
	variant := variants.Get(negotiate.SelectEncoding(request.AcceptEncoding(), offered))

	file, err := variant.Open()
	if err != nil {
		return nil, err
	}

	response := http.NewResponse().
		File(file, variant.Size).
		ContentType(variant.ContentType).
		ContentEncoding(variant.Coding)

	if offered != 0 {
		response.Header("Vary", "Accept-Encoding")
	}

	if len(locales) > 0 {
		response.Header("Content-Language", locale)
	}

	return response, nil
}

// String describes the resource for logs.
func (r *Resource) String() string {
	switch {
	case r.Handler != nil:
		return "page " + r.Name
	case r.Entry != nil:
		variants := r.Entry.Variants(negotiate.DefaultLocale)
		codings := []string{coding.Identity.String()}
		for _, c := range []coding.Coding{coding.Gzip, coding.Brotli} {
			if variants.Offered().Has(c) {
				codings = append(codings, c.String())
			}
		}

		return "static " + r.Name + " (" + strings.Join(codings, ", ") + ")"
	default:
		return "empty " + r.Name
	}
}
