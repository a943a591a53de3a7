// Package httpy is a small HTTP/1.1 server for static sites. Every connection serves
// exactly one request and is closed afterwards.
package httpy

import (
	"fmt"
	"net"

	"github.com/httpy-web/httpy/config"
	"github.com/httpy-web/httpy/internal/address"
	"github.com/httpy-web/httpy/pages"
	"github.com/httpy-web/httpy/router"
	"github.com/httpy-web/httpy/transport"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// App binds the listeners and runs them until stopped.
type App struct {
	addr      address.Address
	cfg       *config.Config
	logger    zerolog.Logger
	listeners []listener
	hooks     hooks
	addrs     []net.Addr
	stopch    chan bool
}

type listener struct {
	port      uint16
	transport Transport
}

// New returns a new App instance. The addr is in the host:port form, where the port is
// served in plain text.
func New(addr string) *App {
	appAddr, err := address.Parse(addr)
	if err != nil {
		panic(fmt.Errorf("httpy: bad addr: %w", err))
	}

	return &App{
		addr:   appAddr,
		cfg:    config.Default(),
		logger: log.Logger,
		stopch: make(chan bool, 1),
	}
}

// Tune replaces default config.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	return a
}

// Logger replaces the global zerolog logger.
func (a *App) Logger(logger zerolog.Logger) *App {
	a.logger = logger
	return a
}

// NotifyOnStart calls the callback when all the listeners are bound. Addrs are known by
// this moment.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback when all the listeners are down. In case of a graceful
// stop, all the clients are already served by this moment.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Listen adds a listener on the port. The transport defaults to TCP.
func (a *App) Listen(port uint16, transports ...Transport) *App {
	t := TCP()
	if len(transports) > 0 {
		t = transports[0]
	}

	a.listeners = append(a.listeners, listener{port: port, transport: t})
	return a
}

// HTTPS adds a TLS listener using the key pair from the files.
func (a *App) HTTPS(port uint16, cert, key string) *App {
	return a.Listen(port, TLS(cert, key))
}

// AutoHTTPS adds a TLS listener with certificates obtained via ACME. On localhost, a
// self-signed certificate is generated instead.
func (a *App) AutoHTTPS(port uint16, domains ...string) *App {
	if !a.addr.IsLocalhost() {
		return a.Listen(port, tlsTransport(autoTLSConfig(a.logger, domains...)))
	}

	cert, key, err := generateSelfSignedCert(cacheDir())
	if err != nil {
		a.logger.Warn().Err(err).Msg("AutoHTTPS: can't generate self-signed certificate, disabling TLS")
		return a
	}

	return a.HTTPS(port, cert, key)
}

// RedirectHTTP adds a plain-text listener permanently redirecting every request to the
// same path at the target, usually the HTTPS origin.
func (a *App) RedirectHTTP(port uint16, target string) *App {
	r := router.New()
	if err := r.Page("/*", pages.Redirect(target)); err != nil {
		panic(err)
	}

	t := TCP()
	t.table = router.NewTable(r)

	return a.Listen(port, t)
}

// Addrs returns addresses of all the listeners, the main one first. Empty until
// the App is started.
func (a *App) Addrs() []net.Addr {
	return a.addrs
}

// Serve binds all the listeners and serves them until the App is stopped or any of them
// fails. A nil table serves 404 to everything.
func (a *App) Serve(table *router.Table) error {
	if table == nil {
		table = router.NewTable(router.New())
	}

	listeners := append([]listener{{port: a.addr.Port, transport: TCP()}}, a.listeners...)
	sup := transport.NewSupervisor()

	for _, l := range listeners {
		if l.transport.error != nil {
			return l.transport.error
		}

		t := table
		if l.transport.table != nil {
			t = l.transport.table
		}

		addr := a.addr.SetPort(l.port).String()
		cb := l.transport.spawn(a.cfg, t, a.logger)
		if err := sup.Add(addr, l.transport.inner, cb); err != nil {
			return fmt.Errorf("bind %s: %w", addr, err)
		}
	}

	a.addrs = sup.Addrs()
	for _, addr := range a.addrs {
		a.logger.Info().Stringer("addr", addr).Msg("listening")
	}

	callIfNotNil(a.hooks.OnStart)
	err := a.run(&sup)
	a.logger.Info().Err(err).Msg("stopped")
	callIfNotNil(a.hooks.OnStop)

	return err
}

func (a *App) run(sup *transport.Supervisor) error {
	errch := make(chan error, 1)
	go func() {
		errch <- sup.Run(a.cfg.NET)
	}()

	select {
	case err := <-errch:
		return err
	case graceful := <-a.stopch:
		if graceful {
			sup.Stop()
		} else {
			sup.Kill()
		}

		return <-errch
	}
}

// GracefulStop stops accepting new connections and lets Serve return once the accepted
// ones are served.
//
// NOTE: the call isn't blocking.
func (a *App) GracefulStop() {
	a.requestStop(true)
}

// Stop stops accepting new connections and lets Serve return immediately, leaving the
// accepted connections to complete on their own.
//
// NOTE: the call isn't blocking.
func (a *App) Stop() {
	a.requestStop(false)
}

func (a *App) requestStop(graceful bool) {
	select {
	case a.stopch <- graceful:
	default:
		// another stop is already requested
	}
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
