// Package transport accepts connections and hands them over to a callback, limiting
// the number of connections being served simultaneously.
package transport

import (
	"net"

	"github.com/httpy-web/httpy/config"
)

type Transport interface {
	Bind(addr string) error
	// Addr returns the address the transport is bound to.
	Addr() net.Addr
	Listen(cfg config.NET, cb func(conn net.Conn)) error
	Stop()
	Close()
	Wait()
}
