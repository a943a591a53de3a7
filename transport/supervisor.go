package transport

import (
	"net"

	"github.com/httpy-web/httpy/config"
)

// Supervisor runs multiple transports at once. As soon as any of them fails, the rest
// are stopped as well.
type Supervisor struct {
	ts     []boundTransport
	stopch chan bool
	done   chan struct{}
}

func NewSupervisor() Supervisor {
	return Supervisor{
		stopch: make(chan bool),
		done:   make(chan struct{}),
	}
}

// Add binds the transport. On failure, all the transports bound before are closed.
func (s *Supervisor) Add(addr string, transport Transport, cb func(net.Conn)) error {
	err := transport.Bind(addr)
	if err != nil {
		s.close()
		return err
	}

	s.ts = append(s.ts, boundTransport{
		cb: cb,
		t:  transport,
	})

	return nil
}

// Addrs returns addresses of all the bound transports in the order they were added.
func (s *Supervisor) Addrs() []net.Addr {
	addrs := make([]net.Addr, len(s.ts))
	for i, t := range s.ts {
		addrs[i] = t.t.Addr()
	}

	return addrs
}

// Run blocks until either all transports are stopped or one of them fails, returning
// the error of the first failed.
func (s *Supervisor) Run(cfg config.NET) error {
	defer close(s.done)

	if len(s.ts) == 0 {
		return nil
	}

	errch := make(chan error)

	for _, t := range s.ts {
		go func(t boundTransport) {
			errch <- t.t.Listen(cfg, t.cb)
		}(t)
	}

	select {
	case err := <-errch:
		s.stop(true)
		drain(errch, len(s.ts)-1)

		return err
	case graceful := <-s.stopch:
		s.stop(graceful)
		drain(errch, len(s.ts))

		return nil
	}
}

// Stop stops accepting new connections and waits until the ones already accepted are
// served. Must be called only after Run.
func (s *Supervisor) Stop() {
	s.stopWith(true)
}

// Kill stops accepting new connections without waiting for the ones already accepted.
func (s *Supervisor) Kill() {
	s.stopWith(false)
}

func (s *Supervisor) stopWith(graceful bool) {
	select {
	case s.stopch <- graceful:
		<-s.done
	case <-s.done:
	}
}

func (s *Supervisor) stop(graceful bool) {
	for _, t := range s.ts {
		t.t.Stop()
	}

	// closing the listener interrupts pending Accept calls immediately
	s.close()

	if !graceful {
		return
	}

	for _, t := range s.ts {
		t.t.Wait()
	}
}

func (s *Supervisor) close() {
	for _, t := range s.ts {
		t.t.Close()
	}
}

type boundTransport struct {
	cb func(conn net.Conn)
	t  Transport
}

func drain(ch <-chan error, n int) {
	for range n {
		<-ch
	}
}
