package http1

import (
	"strings"

	"github.com/httpy-web/httpy/config"
	"github.com/httpy-web/httpy/http"
	"github.com/httpy-web/httpy/http/headers"
	"github.com/httpy-web/httpy/http/method"
	"github.com/httpy-web/httpy/http/status"
	"github.com/httpy-web/httpy/kv"
	"github.com/indigo-web/utils/uf"
)

// MethodWindow is the number of leading bytes the first space must appear within: the
// longest method token followed by the space.
const MethodWindow = method.MaxLength + 1

// HeadTerminator separates the request head from the body.
const HeadTerminator = "\r\n\r\n"

// Decode parses the whole request head contained in the buffer. The buffer isn't
// retained: all the values are copied, so it may be reused right after the call.
//
// Errors are always status.HTTPError values, so the client may be answered with the
// corresponding code.
func Decode(buf []byte, cfg *config.Config) (*http.Request, error) {
	if len(buf) == 0 {
		return nil, status.ErrEmptyRequest
	}

	sp := strings.IndexByte(uf.B2S(buf[:min(len(buf), MethodWindow)]), ' ')
	if sp == -1 {
		return nil, status.ErrMalformedRequestLine
	}

	m := method.Parse(uf.B2S(buf[:sp]))
	if m == method.Unknown {
		return nil, status.ErrUnknownMethod
	}

	// a single copy, all the values below are substrings of it
	data := string(buf[sp+1:])

	targetEnd := strings.IndexByte(data[:min(len(data), cfg.URI.MaxPathLength)], ' ')
	if targetEnd == -1 {
		return nil, status.ErrMalformedRequestLine
	}

	path, query := splitTarget(data[:targetEnd])
	data = data[targetEnd+1:]

	lineEnd := strings.IndexByte(data, '\n')
	if lineEnd == -1 {
		// the request line is the only thing there is
		data = ""
	} else {
		data = data[lineEnd+1:]
	}

	var body string
	if strings.HasPrefix(data, "\r\n") {
		// no headers at all
		data, body = "", data[2:]
	} else if end := strings.Index(data, HeadTerminator); end != -1 {
		data, body = data[:end+2], data[end+len(HeadTerminator):]
	}

	head := http.Head{
		Method:  m,
		Path:    path,
		Query:   parseQuery(query, cfg.URI.MaxQueryArgs),
		Headers: parseHeaders(data, cfg.Headers.MaxNumber),
		Body:    uf.S2B(body),
	}

	head.Accept = parseQuality(head.Headers, "accept", cfg.Headers.MaxQualityTokens)
	head.AcceptEncoding = parseQuality(head.Headers, "accept-encoding", cfg.Headers.MaxQualityTokens)
	head.AcceptLanguage = parseQuality(head.Headers, "accept-language", cfg.Headers.MaxQualityTokens)

	return http.NewRequest(head, nil), nil
}

func splitTarget(target string) (path, query string) {
	if q := strings.IndexByte(target, '?'); q != -1 {
		path, query = target[:q], target[q+1:]
	} else {
		path = target
	}

	if len(path) == 0 || path[0] != '/' {
		path = "/" + path
	}

	return path, query
}

func parseQuery(query string, maxArgs int) *kv.Storage {
	args := kv.New()
	if len(query) == 0 {
		return args
	}

	for i, arg := range strings.SplitN(query, "&", maxArgs+1) {
		if i == maxArgs {
			// everything beyond the limit is dropped
			break
		}

		if len(arg) == 0 {
			continue
		}

		key, value, _ := strings.Cut(arg, "=")
		args.Set(key, value)
	}

	return args
}

func parseHeaders(data string, maxNumber int) *kv.Storage {
	hdrs := kv.NewPrealloc(min(maxNumber, 16))

	for lines := 0; len(data) > 0 && lines < maxNumber; lines++ {
		var line string
		if end := strings.IndexByte(data, '\n'); end == -1 {
			line, data = data, ""
		} else {
			line, data = data[:end], data[end+1:]
		}

		line = strings.TrimSuffix(line, "\r")
		if len(line) == 0 {
			break
		}

		key, value, found := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		if !found || len(key) == 0 {
			continue
		}

		hdrs.Set(strings.ToLower(key), strings.TrimSpace(value))
	}

	return hdrs
}

func parseQuality(hdrs *kv.Storage, key string, maxTokens int) headers.Quality {
	value, found := hdrs.Get(key)
	if !found {
		return nil
	}

	q, err := headers.ParseQuality(value, maxTokens)
	if err != nil {
		return nil
	}

	return q
}
