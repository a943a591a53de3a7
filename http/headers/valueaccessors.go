package headers

import (
	"strings"

	"github.com/indigo-web/utils/strcomp"
)

// ValueOf returns a value until first semicolon is met. Even if the value after semicolon
// is not a parameter, it will anyway be counted as a parameter
func ValueOf(str string) string {
	value, _, _ := strings.Cut(str, ";")
	return value
}

// ParamOf looks for a parameter in a value, and if found, returns a parameter value.
// In case parameter is not found, the fallback is returned
func ParamOf(str, key, or string) string {
	_, params, found := strings.Cut(str, ";")

	for found {
		var param string
		param, params, found = strings.Cut(params, ";")

		name, value, ok := strings.Cut(param, "=")
		if ok && strcomp.EqualFold(strings.TrimSpace(name), key) {
			return strings.TrimSpace(value)
		}
	}

	return or
}
