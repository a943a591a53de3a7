// Package negotiate picks the representation of a static resource best suiting the client.
// Both selectors are total: they never fail, falling back to the identity coding and the
// default locale respectively.
package negotiate

import (
	"strings"

	"github.com/httpy-web/httpy/http/coding"
	"github.com/httpy-web/httpy/http/headers"
	"github.com/indigo-web/utils/strcomp"
)

// DefaultLocale is served when none of the client's languages is offered.
const DefaultLocale = "en"

// preference is the fixed order compressed variants are tried in. Client-declared weights
// only decide whether a coding is acceptable at all.
var preference = [...]coding.Coding{coding.Brotli, coding.Gzip}

// SelectEncoding returns the most preferred coding which is both offered and accepted by the
// client. A nil acceptEncoding means the header is absent, so only identity is acceptable.
func SelectEncoding(acceptEncoding headers.Quality, offered coding.Set) coding.Coding {
	for _, c := range preference {
		if offered.Has(c) && acceptEncoding.Acceptable(c.Token()) {
			return c
		}
	}

	return coding.Identity
}

// SelectLocale walks the client's languages from the most to the least preferred and returns
// the first one offered. A language not offered as is may still match by its primary subtag,
// e.g. en-US matches en.
func SelectLocale(acceptLanguage headers.Quality, offered []string) string {
	if len(offered) == 0 {
		return DefaultLocale
	}

	for _, lang := range acceptLanguage.Sorted() {
		if lang.Weight == 0 || lang.Token == "*" {
			continue
		}

		if locale, found := lookup(offered, lang.Token); found {
			return locale
		}

		if primary, _, found := strings.Cut(lang.Token, "-"); found {
			if locale, found := lookup(offered, primary); found {
				return locale
			}
		}
	}

	return DefaultLocale
}

func lookup(offered []string, token string) (string, bool) {
	for _, locale := range offered {
		if strcomp.EqualFold(locale, token) {
			return locale, true
		}
	}

	return "", false
}
