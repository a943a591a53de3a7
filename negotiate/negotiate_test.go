package negotiate

import (
	"testing"

	"github.com/httpy-web/httpy/http/coding"
	"github.com/httpy-web/httpy/http/headers"
	"github.com/stretchr/testify/require"
)

func quality(t *testing.T, value string) headers.Quality {
	q, err := headers.ParseQuality(value, 0)
	require.NoError(t, err)
	return q
}

func TestSelectEncoding(t *testing.T) {
	all := coding.NewSet(coding.Gzip, coding.Brotli)

	t.Run("nothing offered", func(t *testing.T) {
		for _, header := range []string{"br, gzip", "gzip", "*", "identity"} {
			require.Equal(t, coding.Identity, SelectEncoding(quality(t, header), 0))
		}
	})

	t.Run("absent header", func(t *testing.T) {
		require.Equal(t, coding.Identity, SelectEncoding(nil, all))
	})

	t.Run("brotli is preferred", func(t *testing.T) {
		require.Equal(t, coding.Brotli, SelectEncoding(quality(t, "br, gzip"), all))
		// weights don't affect the priority
		require.Equal(t, coding.Brotli, SelectEncoding(quality(t, "gzip;q=1, br;q=0.1"), all))
	})

	t.Run("only gzip accepted", func(t *testing.T) {
		require.Equal(t, coding.Gzip, SelectEncoding(quality(t, "gzip"), all))
		require.Equal(t, coding.Gzip, SelectEncoding(quality(t, "br;q=0, gzip"), all))
	})

	t.Run("only gzip offered", func(t *testing.T) {
		require.Equal(t, coding.Gzip, SelectEncoding(quality(t, "br, gzip"), coding.NewSet(coding.Gzip)))
	})

	t.Run("wildcard", func(t *testing.T) {
		require.Equal(t, coding.Brotli, SelectEncoding(quality(t, "*"), all))
		require.Equal(t, coding.Gzip, SelectEncoding(quality(t, "*, br;q=0"), all))
	})

	t.Run("idempotent", func(t *testing.T) {
		q := quality(t, "gzip, deflate, br")
		first := SelectEncoding(q, all)
		for range 10 {
			require.Equal(t, first, SelectEncoding(q, all))
		}
	})
}

func TestSelectLocale(t *testing.T) {
	offered := []string{"en", "ru", "de-AT"}

	t.Run("nothing offered", func(t *testing.T) {
		require.Equal(t, DefaultLocale, SelectLocale(quality(t, "ru"), nil))
	})

	t.Run("absent header", func(t *testing.T) {
		require.Equal(t, DefaultLocale, SelectLocale(nil, offered))
	})

	t.Run("declared priority", func(t *testing.T) {
		require.Equal(t, "ru", SelectLocale(quality(t, "ru, en"), offered))
		require.Equal(t, "en", SelectLocale(quality(t, "ru;q=0.5, en"), offered))
	})

	t.Run("case-insensitive", func(t *testing.T) {
		require.Equal(t, "de-AT", SelectLocale(quality(t, "de-at"), offered))
	})

	t.Run("primary subtag", func(t *testing.T) {
		require.Equal(t, "ru", SelectLocale(quality(t, "fr, ru-RU"), offered))
	})

	t.Run("fallback", func(t *testing.T) {
		require.Equal(t, DefaultLocale, SelectLocale(quality(t, "fr, ja;q=0.9"), offered))
		require.Equal(t, DefaultLocale, SelectLocale(quality(t, "ru;q=0"), offered))
	})
}
