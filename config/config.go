package config

import (
	"time"
)

type (
	URI struct {
		// MaxPathLength limits the distance between the method and the second space of the
		// request line. Anything longer is rejected as a malformed request line without
		// scanning further.
		MaxPathLength int
		// MaxQueryArgs is the maximal number of `&`-separated query arguments. The rest
		// is silently ignored.
		MaxQueryArgs int
	}

	Headers struct {
		// MaxNumber is the maximal number of header lines being looked at. Lines beyond the
		// limit are ignored.
		MaxNumber int
		// MaxQualityTokens limits the number of tokens in quality-valued headers (Accept,
		// Accept-Encoding, Accept-Language). Longer lists are treated as absent.
		MaxQualityTokens int
		// Default headers are headers to be included into every response implicitly, unless
		// explicitly overridden.
		Default map[string]string `test:"nullable"`
	}

	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket
		ReadBufferSize int
		// MaxRequestSize limits the accumulated request head. Exceeding it aborts the
		// connection before anything is decoded.
		MaxRequestSize int
		// PollInterval is the duration of a single receive attempt. After it elapses
		// without any data, a retry is consumed.
		PollInterval time.Duration
		// MaxRetries is the receive retry budget. PollInterval * MaxRetries effectively is
		// the timeout of receiving the request head.
		MaxRetries int
		// WriteTimeout bounds every single write into the socket.
		WriteTimeout time.Duration
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop. Defaults to 5 seconds.
		AcceptLoopInterruptPeriod time.Duration
		// MaxConns is the number of connections served simultaneously. Once reached, no
		// new connections are accepted until one of the active ones completes.
		MaxConns int
		// WriteBufferSize is the initial capacity of the response buffer.
		WriteBufferSize int
		// WriteHighWater is the backpressure checkpoint: as soon as the pending output
		// exceeds it, the buffer is flushed into the socket.
		WriteHighWater int
		// FileChunkSize is the size of a single read from files being sent.
		FileChunkSize int
	}
)

// Config holds settings used across various parts of httpy, mainly restrictions, limitations
// and pre-allocations.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	URI     URI
	Headers Headers
	NET     NET
}

// Default returns default config. Those are initially well-balanced, however maximal defaults
// are pretty permitting.
func Default() *Config {
	return &Config{
		URI: URI{
			MaxPathLength: 2 * 1024,
			MaxQueryArgs:  16,
		},
		Headers: Headers{
			MaxNumber:        64,
			MaxQualityTokens: 20, // that must be a way too advanced client
			Default: map[string]string{
				"Server": "httpy",
			},
		},
		NET: NET{
			ReadBufferSize: 4 * 1024,
			MaxRequestSize: 32 * 1024,
			PollInterval:   25 * time.Millisecond,
			// 25ms * 400 = 10s for the whole request head
			MaxRetries:                400,
			WriteTimeout:              30 * time.Second,
			AcceptLoopInterruptPeriod: 5 * time.Second,
			MaxConns:                  256,
			WriteBufferSize:           4 * 1024,
			WriteHighWater:            64 * 1024,
			FileChunkSize:             32 * 1024,
		},
	}
}
