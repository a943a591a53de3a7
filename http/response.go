package http

import (
	"io"
	"iter"

	"github.com/httpy-web/httpy/http/coding"
	"github.com/httpy-web/httpy/http/mime"
	"github.com/httpy-web/httpy/http/status"
	"github.com/httpy-web/httpy/kv"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

// BodyKind tells which of the body sources a response carries. Exactly one at a time.
type BodyKind uint8

const (
	NoBody BodyKind = iota
	BytesBody
	StreamBody
	FileBody
)

// UnknownSize marks a body whose length isn't known until it is exhausted. Such bodies
// are delimited by closing the connection.
const UnknownSize = -1

const defaultContentType = mime.HTML + ";charset=" + mime.UTF8

type Response struct {
	code        status.Code
	headers     *kv.Storage
	contentType mime.MIME
	encoding    coding.Coding
	kind        BodyKind
	bytes       []byte
	stream      iter.Seq[[]byte]
	file        io.ReadCloser
	size        int64
}

// NewResponse returns a new response without a status. Unless set explicitly, it'll be
// 200 OK if a body is set and 404 Not Found otherwise.
func NewResponse() *Response {
	return &Response{
		headers:     kv.New(),
		contentType: defaultContentType,
		size:        UnknownSize,
	}
}

// Code sets a Response code.
func (r *Response) Code(code status.Code) *Response {
	r.code = code
	return r
}

// ContentType sets a custom Content-Type header value.
func (r *Response) ContentType(value mime.MIME) *Response {
	r.contentType = value
	return r
}

// ContentEncoding marks the body as being encoded by the coding. The body itself must be
// already encoded.
func (r *Response) ContentEncoding(c coding.Coding) *Response {
	r.encoding = c
	return r
}

// Header sets the header value, overriding previous values of the key. Content-Type and
// Content-Encoding are handled specially, while Content-Length and Connection are always
// computed by the server and thus ignored.
func (r *Response) Header(key, value string) *Response {
	switch {
	case strcomp.EqualFold(key, "content-type"):
		return r.ContentType(value)
	case strcomp.EqualFold(key, "content-encoding"):
		if c, ok := coding.Parse(value); ok {
			return r.ContentEncoding(c)
		}
	case strcomp.EqualFold(key, "content-length"), strcomp.EqualFold(key, "connection"):
		return r
	}

	r.headers.Set(key, value)
	return r
}

// String sets the response's body to the passed string
func (r *Response) String(body string) *Response {
	return r.Bytes(uf.S2B(body))
}

// Bytes sets the response's body to passed slice WITHOUT COPYING. Changing
// the passed slice later will affect the response by itself
func (r *Response) Bytes(body []byte) *Response {
	r.reset()
	r.kind = BytesBody
	r.bytes = body
	r.size = int64(len(body))
	return r
}

// Write implements io.Writer interface, appending the data to the bytes body.
func (r *Response) Write(b []byte) (n int, err error) {
	if r.kind != BytesBody {
		r.Bytes(nil)
	}

	r.bytes = append(r.bytes, b...)
	r.size = int64(len(r.bytes))
	return len(b), nil
}

// Stream sets a lazy body. The sequence is iterated exactly once. If size is known, it'll
// be sent as Content-Length, otherwise pass UnknownSize.
func (r *Response) Stream(chunks iter.Seq[[]byte], size int64) *Response {
	r.reset()
	r.kind = StreamBody
	r.stream = chunks
	r.size = size
	return r
}

// File sets an opened file (or any other ReadCloser) as a body. The response owns it from
// now on, so it's closed via Close.
func (r *Response) File(file io.ReadCloser, size int64) *Response {
	r.reset()
	r.kind = FileBody
	r.file = file
	r.size = size
	return r
}

// TryJSON serializes the model as a body.
func (r *Response) TryJSON(model any) (*Response, error) {
	r.Bytes(r.bytes[:0])
	stream := json.ConfigDefault.BorrowStream(r)
	stream.WriteVal(model)
	err := stream.Flush()
	json.ConfigDefault.ReturnStream(stream)

	return r.ContentType(mime.JSON), err
}

// JSON does the same as TryJSON does, except returned error is being implicitly wrapped
// by Error
func (r *Response) JSON(model any) *Response {
	resp, err := r.TryJSON(model)
	if err != nil {
		return r.Error(err)
	}

	return resp
}

// Error turns the response into an error one. status.HTTPError values define the code and
// the body, any other error is an internal server error with its details hidden.
func (r *Response) Error(err error) *Response {
	if err == nil {
		return r
	}

	code := status.CodeOf(err)

	return r.
		Code(code).
		ContentType(mime.Plain + ";charset=" + mime.UTF8).
		String(string(status.Text(code)))
}

// StatusCode returns the effective status code.
func (r *Response) StatusCode() status.Code {
	switch {
	case r.code != 0:
		return r.code
	case r.kind == NoBody:
		return status.NotFound
	default:
		return status.OK
	}
}

func (r *Response) Headers() iter.Seq2[string, string] {
	return r.headers.Pairs()
}

func (r *Response) HasHeader(key string) bool {
	return r.headers.Has(key)
}

func (r *Response) GetContentType() mime.MIME {
	return r.contentType
}

func (r *Response) GetContentEncoding() coding.Coding {
	return r.encoding
}

func (r *Response) Kind() BodyKind {
	return r.kind
}

// Size returns the body length or UnknownSize.
func (r *Response) Size() int64 {
	if r.kind == NoBody {
		return 0
	}

	return r.size
}

func (r *Response) BytesBody() []byte {
	return r.bytes
}

func (r *Response) StreamBody() iter.Seq[[]byte] {
	return r.stream
}

func (r *Response) FileBody() io.Reader {
	return r.file
}

// Close releases the file body, if any. Safe to call multiple times.
func (r *Response) Close() error {
	if r.file == nil {
		return nil
	}

	err := r.file.Close()
	r.file = nil
	return err
}

func (r *Response) reset() {
	if r.file != nil {
		_ = r.file.Close()
	}

	r.kind = NoBody
	r.bytes = nil
	r.stream = nil
	r.file = nil
	r.size = UnknownSize
}

// Respond is a shorthand for NewResponse().
func Respond() *Response {
	return NewResponse()
}

// String is a shorthand for a 200 OK response with a textual body.
func String(str string) *Response {
	return NewResponse().String(str)
}

// Error is a shorthand for NewResponse().Error(err).
func Error(err error) *Response {
	return NewResponse().Error(err)
}
