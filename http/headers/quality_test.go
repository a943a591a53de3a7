package headers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseQuality(t *testing.T) {
	t.Run("defaults to 1", func(t *testing.T) {
		q, err := ParseQuality("gzip, br", 0)
		require.NoError(t, err)
		require.Equal(t, Quality{{"gzip", 1}, {"br", 1}}, q)
	})

	t.Run("weights", func(t *testing.T) {
		q, err := ParseQuality("en-US,en;q=0.9, ru;q=0.5", 0)
		require.NoError(t, err)
		require.Equal(t, Quality{{"en-US", 1}, {"en", 0.9}, {"ru", 0.5}}, q)
	})

	t.Run("invalid weight is a sentinel", func(t *testing.T) {
		q, err := ParseQuality("gzip;q=abc, br;q=2", 0)
		require.NoError(t, err)
		require.Equal(t, Quality{{"gzip", InvalidWeight}, {"br", InvalidWeight}}, q)
	})

	t.Run("empty entries are skipped", func(t *testing.T) {
		q, err := ParseQuality(" , gzip,, ", 0)
		require.NoError(t, err)
		require.Equal(t, []string{"gzip"}, q.Tokens())
	})

	t.Run("empty list", func(t *testing.T) {
		_, err := ParseQuality("  ", 0)
		require.ErrorIs(t, err, ErrBadQuality)
	})

	t.Run("too many tokens", func(t *testing.T) {
		_, err := ParseQuality(strings.Repeat("a,", 10), 5)
		require.ErrorIs(t, err, ErrBadQuality)
	})
}

func TestQuality(t *testing.T) {
	t.Run("sorted is stable", func(t *testing.T) {
		q, err := ParseQuality("fr;q=0.5, de, en;q=0.5, ru, xx;q=oops", 0)
		require.NoError(t, err)
		require.Equal(t, []string{"de", "ru", "fr", "en", "xx"}, q.Sorted().Tokens())
		// the original order is untouched
		require.Equal(t, []string{"fr", "de", "en", "ru", "xx"}, q.Tokens())
	})

	t.Run("acceptable", func(t *testing.T) {
		q, err := ParseQuality("gzip, br;q=0", 0)
		require.NoError(t, err)
		require.True(t, q.Acceptable("GZIP"))
		require.False(t, q.Acceptable("br"))
		require.False(t, q.Acceptable("zstd"))
	})

	t.Run("wildcard", func(t *testing.T) {
		q, err := ParseQuality("*, br;q=0", 0)
		require.NoError(t, err)
		require.True(t, q.Acceptable("gzip"))
		require.False(t, q.Acceptable("br"))
	})

	t.Run("nil list accepts nothing", func(t *testing.T) {
		var q Quality
		require.False(t, q.Acceptable("gzip"))
	})
}

func TestValueAccessors(t *testing.T) {
	t.Run("value of", func(t *testing.T) {
		require.Equal(t, "text/html", ValueOf("text/html;q=0.9"))
		require.Equal(t, "text/html", ValueOf("text/html"))
	})

	t.Run("param of", func(t *testing.T) {
		value := "hello;world=true; another=earth"
		require.Equal(t, "true", ParamOf(value, "world", ""))
		require.Equal(t, "earth", ParamOf(value, "another", ""))
		require.Equal(t, "none", ParamOf(value, "unknown", "none"))
	})
}

func TestParamOf(t *testing.T) {
	t.Run("spaces around", func(t *testing.T) {
		require.Equal(t, "0.8", ParamOf("gzip ; q = 0.8 ", "q", "1"))
		require.Equal(t, "0.5", ParamOf("en;Q=0.5", "q", "1"))
	})

	t.Run("malformed params", func(t *testing.T) {
		require.Equal(t, "1", ParamOf("br;;noequals", "q", "1"))
		require.Equal(t, "", ParamOf("br;q=", "q", "1"))
		require.Equal(t, "1", ParamOf("br", "q", "1"))
	})

	t.Run("used by quality", func(t *testing.T) {
		q, err := ParseQuality("ru;level=1;q=0.3, en", 0)
		require.NoError(t, err)
		require.Equal(t, Quality{{"ru", 0.3}, {"en", 1}}, q)
	})
}
