package method

//go:generate stringer -type=Method
type Method uint8

const (
	Unknown Method = iota
	GET
	HEAD
	POST
	PUT
	DELETE
	CONNECT
	OPTIONS
	TRACE
	PATCH
)

// MaxLength is the length of the longest known method token.
const MaxLength = len("OPTIONS")

// Known lists every method a request may carry, Unknown excluded.
var Known = [...]Method{GET, HEAD, POST, PUT, DELETE, CONNECT, OPTIONS, TRACE, PATCH}

// byLength buckets the known methods by their token length, so Parse compares against
// two candidates at most.
var byLength = func() (table [MaxLength + 1][]Method) {
	for _, m := range Known {
		table[len(m.String())] = append(table[len(m.String())], m)
	}

	return table
}()

// Parse matches the token against the known methods. The match is case-sensitive, as
// method tokens are.
func Parse(token string) Method {
	if len(token) > MaxLength {
		return Unknown
	}

	for _, m := range byLength[len(token)] {
		if m.String() == token {
			return m
		}
	}

	return Unknown
}
