package method

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMethod(t *testing.T) {
	t.Run("known", func(t *testing.T) {
		for _, method := range Known {
			require.Equal(t, method, Parse(method.String()))
		}
	})

	t.Run("unknown", func(t *testing.T) {
		for _, str := range []string{"", "get", "GETS", "PROPFIND", "Unknown", "Method(10)"} {
			require.Equal(t, Unknown, Parse(str), str)
		}
	})

	t.Run("max length", func(t *testing.T) {
		longest := 0
		for _, method := range Known {
			longest = max(longest, len(method.String()))
		}

		require.Equal(t, longest, MaxLength)
	})
}
