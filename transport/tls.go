package transport

import (
	"crypto/tls"
	"net"
)

type TLS struct {
	cfg *tls.Config
	TCP
}

// NewTLS returns a transport wrapping every accepted connection into TLS. The config
// must provide either Certificates or GetCertificate.
func NewTLS(cfg *tls.Config) *TLS {
	return &TLS{cfg: cfg, TCP: newTCP(nil)}
}

func (t *TLS) Bind(addr string) error {
	tcp, err := bindTCP(addr)
	if err != nil {
		return err
	}

	t.l = tlsAdapter{tcp, tls.NewListener(tcp, t.cfg)}

	return nil
}

type tlsAdapter struct {
	*net.TCPListener
	tls net.Listener
}

func (t tlsAdapter) Accept() (net.Conn, error) {
	return t.tls.Accept()
}
