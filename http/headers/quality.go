package headers

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/indigo-web/utils/strcomp"
)

// InvalidWeight marks a token whose q-parameter couldn't be parsed. It's lower than any
// valid weight, so such tokens are sorted last, but they aren't rejected.
const InvalidWeight = -1.0

var ErrBadQuality = errors.New("malformed quality-valued header")

// QualityValue is a single token of a quality-valued header, e.g. `gzip;q=0.8`.
type QualityValue struct {
	Token  string
	Weight float64
}

// Quality is a parsed weighted preference list, e.g. Accept-Encoding or Accept-Language.
// Tokens are stored in the declaration order.
type Quality []QualityValue

// ParseQuality parses a comma-separated list of `token[;q=weight]`. Empty entries are
// skipped. An empty list or a list longer than maxTokens (if positive) is an error.
func ParseQuality(value string, maxTokens int) (Quality, error) {
	var q Quality

	for len(value) > 0 {
		var entry string
		comma := strings.IndexByte(value, ',')
		if comma == -1 {
			entry, value = value, ""
		} else {
			entry, value = value[:comma], value[comma+1:]
		}

		token := strings.TrimSpace(ValueOf(entry))
		if len(token) == 0 {
			continue
		}

		if maxTokens > 0 && len(q) >= maxTokens {
			return nil, ErrBadQuality
		}

		q = append(q, QualityValue{
			Token:  token,
			Weight: parseWeight(ParamOf(entry, "q", "1")),
		})
	}

	if len(q) == 0 {
		return nil, ErrBadQuality
	}

	return q, nil
}

func parseWeight(str string) float64 {
	weight, err := strconv.ParseFloat(str, 64)
	if err != nil || weight < 0 || weight > 1 {
		return InvalidWeight
	}

	return weight
}

// Sorted returns a copy of the list ordered by weight, highest first. Tokens with equal
// weights keep their declaration order.
func (q Quality) Sorted() Quality {
	sorted := slices.Clone(q)
	slices.SortStableFunc(sorted, func(a, b QualityValue) int {
		switch {
		case a.Weight > b.Weight:
			return -1
		case a.Weight < b.Weight:
			return 1
		default:
			return 0
		}
	})

	return sorted
}

// Acceptable reports whether the token is allowed by the list, either explicitly or via
// the `*` wildcard. A zero weight explicitly forbids the token.
func (q Quality) Acceptable(token string) bool {
	wildcard := false

	for _, value := range q {
		if strcomp.EqualFold(value.Token, token) {
			return value.Weight != 0
		}

		if value.Token == "*" && value.Weight != 0 {
			wildcard = true
		}
	}

	return wildcard
}

// Tokens returns the tokens in the declaration order.
func (q Quality) Tokens() []string {
	tokens := make([]string, len(q))
	for i, value := range q {
		tokens[i] = value.Token
	}

	return tokens
}
