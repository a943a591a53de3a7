package method

import "testing"

func BenchmarkParse(b *testing.B) {
	tokens := []string{"GET", "POST", "OPTIONS", "BREW", "PROPFIND"}

	for _, token := range tokens {
		b.Run(token, func(b *testing.B) {
			b.SetBytes(int64(len(token)))

			for range b.N {
				_ = Parse(token)
			}
		})
	}
}
