package coding

import "strings"

// Coding is a content-coding a static variant may be stored in.
type Coding uint8

const (
	Identity Coding = iota
	Gzip
	Brotli
)

// Token returns the token used in Accept-Encoding and Content-Encoding headers. Identity
// has no token, as it's never announced.
func (c Coding) Token() string {
	switch c {
	case Gzip:
		return "gzip"
	case Brotli:
		return "br"
	default:
		return ""
	}
}

// Parse returns the coding by its token. Unknown tokens aren't supported.
func Parse(token string) (Coding, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "identity", "":
		return Identity, true
	case "gzip", "x-gzip":
		return Gzip, true
	case "br":
		return Brotli, true
	default:
		return Identity, false
	}
}

func (c Coding) String() string {
	if c == Identity {
		return "identity"
	}

	return c.Token()
}

// Extension is the file suffix pre-generated variants are stored with.
func (c Coding) Extension() string {
	switch c {
	case Gzip:
		return ".gz"
	case Brotli:
		return ".br"
	default:
		return ""
	}
}

// Set is a bitset of offered codings.
type Set uint8

func NewSet(codings ...Coding) (s Set) {
	for _, c := range codings {
		s = s.With(c)
	}

	return s
}

func (s Set) With(c Coding) Set {
	return s | 1<<c
}

func (s Set) Has(c Coding) bool {
	return s&(1<<c) != 0
}
