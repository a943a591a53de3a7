package address

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DefaultHost is used when only the port is given, e.g. ":8080".
const DefaultHost = "0.0.0.0"

var ErrNoPort = errors.New("no port given")

type Address struct {
	Host string
	Port uint16
}

// Parse parses the address in the host:port form. The host may be omitted.
func Parse(addr string) (Address, error) {
	host, rawPort, err := net.SplitHostPort(addr)
	if err != nil {
		if !strings.Contains(addr, ":") {
			return Address{}, ErrNoPort
		}

		return Address{}, err
	}

	port, err := strconv.ParseUint(rawPort, 10, 16)
	if err != nil {
		return Address{}, fmt.Errorf("invalid port: %s", rawPort)
	}

	if len(host) == 0 {
		host = DefaultHost
	}

	return Address{Host: host, Port: uint16(port)}, nil
}

// SetPort returns a copy of the address with the port replaced.
func (a Address) SetPort(port uint16) Address {
	a.Port = port
	return a
}

func (a Address) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
}

// IsLocalhost reports whether the host is a loopback one.
func (a Address) IsLocalhost() bool {
	if strings.EqualFold(a.Host, "localhost") {
		return true
	}

	ip := net.ParseIP(a.Host)
	return ip != nil && ip.IsLoopback()
}
