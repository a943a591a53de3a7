package pages

import (
	"crypto/rand"
	"errors"
	"strconv"
	"strings"

	"github.com/httpy-web/httpy/http"
	"github.com/httpy-web/httpy/http/mime"
	"github.com/httpy-web/httpy/http/status"
	"github.com/httpy-web/httpy/router"
)

const (
	KiB = 1 << 10
	MiB = 1 << 20
	GiB = 1 << 30
)

const (
	// DefaultRandomSize is served when the size query argument is omitted.
	DefaultRandomSize = "16mib"
	randomChunkSize   = 64 * KiB
)

var (
	ErrBadSize   = errors.New("malformed size")
	ErrSizeRange = status.NewError(status.BadRequest, "requested size is out of range")
)

// Redirect permanently redirects every request to the same path at the target, e.g.
// the same resource over HTTPS.
func Redirect(target string) router.PageHandler {
	target = strings.TrimSuffix(target, "/")

	return router.HandlerFunc(func(request *http.Request) (*http.Response, error) {
		location := target + request.Path()

		var query []string
		for key, value := range request.QueryArgs() {
			query = append(query, key+"="+value)
		}

		if len(query) > 0 {
			location += "?" + strings.Join(query, "&")
		}

		return http.NewResponse().
			Code(status.MovedPermanently).
			Header("Location", location).
			String(""), nil
	})
}

// Text serves the same body of the content type to every request.
func Text(body string, contentType mime.MIME) router.PageHandler {
	return router.HandlerFunc(func(*http.Request) (*http.Response, error) {
		return http.String(body).ContentType(contentType), nil
	})
}

// JSON serves the model returned by the function, serialized on every request.
func JSON(model func() any) router.PageHandler {
	return router.HandlerFunc(func(*http.Request) (*http.Response, error) {
		return http.NewResponse().TryJSON(model())
	})
}

// RandomData streams random bytes. The amount is controlled by the size query argument,
// e.g. ?size=128kib, and must lie within [minSize, maxSize].
func RandomData(minSize, maxSize int64) router.PageHandler {
	return router.HandlerFunc(func(request *http.Request) (*http.Response, error) {
		value, found := request.Query("size")
		if !found {
			value = DefaultRandomSize
		}

		size, err := ParseSize(value)
		if err != nil {
			return http.Error(status.ErrBadRequest), nil
		}

		if size < minSize || size > maxSize {
			return http.Error(ErrSizeRange), nil
		}

		return http.NewResponse().
			ContentType(mime.OctetStream).
			Stream(randomChunks(size), size), nil
	})
}

func randomChunks(size int64) func(yield func([]byte) bool) {
	return func(yield func([]byte) bool) {
		chunk := make([]byte, min(size, randomChunkSize))

		for size > 0 {
			n := min(size, int64(len(chunk)))
			if _, err := rand.Read(chunk[:n]); err != nil {
				return
			}

			if !yield(chunk[:n]) {
				return
			}

			size -= n
		}
	}
}

// ParseSize parses sizes like 512, 16b, 128kib, 16mib or 1gib. Units are case-insensitive.
func ParseSize(str string) (int64, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	digits := strings.IndexFunc(str, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if digits == -1 {
		digits = len(str)
	}

	number, err := strconv.ParseInt(str[:digits], 10, 64)
	if err != nil {
		return 0, ErrBadSize
	}

	var multiplier int64

	switch str[digits:] {
	case "", "b":
		multiplier = 1
	case "kib":
		multiplier = KiB
	case "mib":
		multiplier = MiB
	case "gib":
		multiplier = GiB
	default:
		return 0, ErrBadSize
	}

	if number > (1<<63-1)/multiplier {
		return 0, ErrBadSize
	}

	return number * multiplier, nil
}
