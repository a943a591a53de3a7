package http

import (
	"bytes"
	"io"
	"iter"
	"net"

	"github.com/httpy-web/httpy/http/headers"
	"github.com/httpy-web/httpy/http/method"
	"github.com/httpy-web/httpy/kv"
)

// Head contains everything the decoder extracts from the request head. It's used to
// construct an immutable Request.
type Head struct {
	Method method.Method
	// Path always begins with a slash. It isn't percent-decoded.
	Path string
	// Query holds the query arguments, duplicates are already resolved (the last wins).
	Query *kv.Storage
	// Headers hold lower-cased header keys.
	Headers *kv.Storage
	// Accept, AcceptEncoding and AcceptLanguage are pre-parsed quality-valued headers. Nil
	// if absent or malformed.
	Accept, AcceptEncoding, AcceptLanguage headers.Quality
	// Body is whatever followed the headers terminator in the received buffer.
	Body []byte
}

// Request represents HTTP request. It's immutable once constructed; all the derived values
// (e.g. with the trailing path set by the router) are shallow copies.
type Request struct {
	head     Head
	remote   net.Addr
	trailing string
}

func NewRequest(head Head, remote net.Addr) *Request {
	if head.Query == nil {
		head.Query = kv.New()
	}

	if head.Headers == nil {
		head.Headers = kv.New()
	}

	return &Request{
		head:   head,
		remote: remote,
	}
}

// Method returns the request method.
func (r *Request) Method() method.Method {
	return r.head.Method
}

// Path returns the normalized request path, always beginning with a slash.
func (r *Request) Path() string {
	return r.head.Path
}

// Trailing is the part of the path matched by a wildcard segment. Empty if the route
// wasn't matched via a wildcard.
func (r *Request) Trailing() string {
	return r.trailing
}

// WithTrailing returns a copy of the request with the trailing path set.
func (r *Request) WithTrailing(trailing string) *Request {
	req := *r
	req.trailing = trailing
	return &req
}

// Query returns the value of the query argument and whether it was presented at all.
func (r *Request) Query(key string) (string, bool) {
	return r.head.Query.Get(key)
}

// QueryArgs iterates over all the query arguments in their order.
func (r *Request) QueryArgs() iter.Seq2[string, string] {
	return r.head.Query.Pairs()
}

// Header returns the header value, or an empty string if it isn't presented. Lookup
// is case-insensitive.
func (r *Request) Header(key string) string {
	return r.head.Headers.Value(key)
}

// HasHeader reports whether the header was presented.
func (r *Request) HasHeader(key string) bool {
	return r.head.Headers.Has(key)
}

// Headers iterates over all the headers. Keys are lower-cased.
func (r *Request) Headers() iter.Seq2[string, string] {
	return r.head.Headers.Pairs()
}

// Accept returns the parsed Accept header.
func (r *Request) Accept() headers.Quality {
	return r.head.Accept
}

// AcceptEncoding returns the parsed Accept-Encoding header.
func (r *Request) AcceptEncoding() headers.Quality {
	return r.head.AcceptEncoding
}

// AcceptLanguage returns the parsed Accept-Language header.
func (r *Request) AcceptLanguage() headers.Quality {
	return r.head.AcceptLanguage
}

// Body returns a reader over the bytes received after the request head. Each call returns
// a fresh reader.
func (r *Request) Body() io.Reader {
	return bytes.NewReader(r.head.Body)
}

// Remote returns the remote address of the client. May be nil.
func (r *Request) Remote() net.Addr {
	return r.remote
}

// WithRemote returns a copy of the request bound to the remote address.
func (r *Request) WithRemote(addr net.Addr) *Request {
	req := *r
	req.remote = addr
	return &req
}
