package mime

type Charset = string

const (
	UTF8  Charset = "utf-8"
	ASCII Charset = "us-ascii"
)

// WithCharset appends the charset parameter to the MIME.
func WithCharset(mime MIME, charset Charset) MIME {
	return mime + ";charset=" + charset
}
