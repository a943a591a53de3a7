package coding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	s := NewSet(Gzip)
	require.True(t, s.Has(Gzip))
	require.False(t, s.Has(Brotli))
	require.False(t, s.Has(Identity))
	require.True(t, s.With(Brotli).Has(Brotli))
	require.False(t, Set(0).Has(Gzip))
}

func TestTokens(t *testing.T) {
	require.Equal(t, "br", Brotli.Token())
	require.Equal(t, "gzip", Gzip.Token())
	require.Empty(t, Identity.Token())
	require.Equal(t, ".gz", Gzip.Extension())
	require.Equal(t, "identity", Identity.String())
}

func TestParse(t *testing.T) {
	for token, want := range map[string]Coding{
		"gzip":     Gzip,
		" GZIP ":   Gzip,
		"br":       Brotli,
		"identity": Identity,
	} {
		c, ok := Parse(token)
		require.True(t, ok, token)
		require.Equal(t, want, c, token)
	}

	_, ok := Parse("deflate")
	require.False(t, ok)
}
