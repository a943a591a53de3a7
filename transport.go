package httpy

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"time"

	"github.com/httpy-web/httpy/config"
	"github.com/httpy-web/httpy/internal/server/session"
	"github.com/httpy-web/httpy/router"
	"github.com/httpy-web/httpy/transport"
	"github.com/rs/zerolog"
)

var (
	ErrBadCertificate = errors.New("one or more passed certificates are empty")
	ErrNoCertificates = errors.New("no certificates were passed")
)

type spawnFunc func(cfg *config.Config, table *router.Table, logger zerolog.Logger) func(net.Conn)

// Transport is a listener kind the App may serve on.
type Transport struct {
	inner transport.Transport
	spawn spawnFunc
	// table overrides the one passed to App.Serve, if set
	table *router.Table
	error error
}

// TCP is the plain-text transport.
func TCP() Transport {
	return Transport{
		inner: transport.NewTCP(),
		spawn: func(cfg *config.Config, table *router.Table, logger zerolog.Logger) func(net.Conn) {
			return func(conn net.Conn) {
				session.Serve(conn, cfg, table, logger)
			}
		},
	}
}

// TLS loads the key pair from the files and returns HTTPS transport.
func TLS(cert, key string) Transport {
	c, err := tls.LoadX509KeyPair(cert, key)
	if err != nil {
		// there's no way to report it at this point. The App returns it instead
		// of binding the listener
		return Transport{error: err}
	}

	return HTTPS(c)
}

func HTTPS(certs ...tls.Certificate) Transport {
	switch {
	case len(certs) == 0:
		return Transport{error: ErrNoCertificates}
	case !noEmptyCerts(certs):
		return Transport{error: ErrBadCertificate}
	}

	return tlsTransport(&tls.Config{
		Certificates: certs,
	})
}

func tlsTransport(tlsConfig *tls.Config) Transport {
	return Transport{
		inner: transport.NewTLS(tlsConfig),
		spawn: func(cfg *config.Config, table *router.Table, logger zerolog.Logger) func(net.Conn) {
			// the handshake shares the budget with receiving the request head
			timeout := cfg.NET.PollInterval * time.Duration(cfg.NET.MaxRetries)

			return func(conn net.Conn) {
				tlsConn := conn.(*tls.Conn)
				ctx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()

				if err := tlsConn.HandshakeContext(ctx); err != nil {
					logger.Debug().
						Err(err).
						Stringer("remote", conn.RemoteAddr()).
						Msg("TLS handshake failed")
					return
				}

				version := tls.VersionName(tlsConn.ConnectionState().Version)
				session.Serve(conn, cfg, table, logger.With().Str("tls", version).Logger())
			}
		},
	}
}

// Cert loads the key pair. In case of an error an empty certificate is returned, which
// is reported on starting the application.
func Cert(cert, key string) tls.Certificate {
	c, _ := tls.LoadX509KeyPair(cert, key)
	return c
}

func noEmptyCerts(certs []tls.Certificate) bool {
	for _, c := range certs {
		if c.Certificate == nil {
			return false
		}
	}

	return true
}
