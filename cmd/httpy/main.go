package main

import (
	"flag"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/httpy-web/httpy"
	"github.com/httpy-web/httpy/config"
	"github.com/httpy-web/httpy/fileman"
	"github.com/httpy-web/httpy/http/mime"
	"github.com/httpy-web/httpy/pages"
	"github.com/httpy-web/httpy/router"
	"github.com/rs/zerolog"
)

const notFoundPath = "/404"

var (
	addr       = flag.String("addr", ":8080", "address to serve plain HTTP on")
	www        = flag.String("www", "www", "directory containing pages")
	configPath = flag.String("config", "", "path to the JSON config file, defaults are used if omitted")
	httpsPort  = flag.Uint("https", 0, "port to serve HTTPS on, disabled if zero")
	cert       = flag.String("cert", "", "TLS certificate file. Certificates are obtained automatically if omitted")
	key        = flag.String("key", "", "TLS key file")
	redirect   = flag.Uint("redirect", 0, "port redirecting plain HTTP to HTTPS, disabled if zero")
	domains    = flag.String("domain", "", "the domain the HTTPS certificate is obtained for")
	debug      = flag.Bool("debug", false, "enable debug logs")
)

func main() {
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().
		Level(zerolog.InfoLevel)
	if *debug {
		logger = logger.Level(zerolog.DebugLevel)
	}

	cfg := config.Default()
	if len(*configPath) > 0 {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logger.Fatal().Err(err).Msg("failed to load the config")
		}
	}

	handlers := handlerRegistry()
	table := router.NewTable(router.New())
	build := func() (*router.Router, error) {
		return loadPages(*www, handlers, logger)
	}

	if err := table.Reload(build); err != nil {
		logger.Fatal().Err(err).Str("dir", *www).Msg("failed to load pages")
	}

	app := httpy.New(*addr).
		Tune(cfg).
		Logger(logger)

	if *httpsPort > 0 {
		port := uint16(*httpsPort)
		if len(*cert) > 0 {
			app.HTTPS(port, *cert, *key)
		} else if len(*domains) > 0 {
			app.AutoHTTPS(port, *domains)
		} else {
			app.AutoHTTPS(port)
		}

		if *redirect > 0 {
			app.RedirectHTTP(uint16(*redirect), httpsOrigin(port))
		}
	}

	go handleSignals(app, table, build, logger)

	if err := app.Serve(table); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

// handleSignals stops the app gracefully on SIGINT or SIGTERM and reloads pages on SIGHUP.
func handleSignals(app *httpy.App, table *router.Table, build func() (*router.Router, error), logger zerolog.Logger) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range signals {
		if sig == syscall.SIGHUP {
			if err := table.Reload(build); err != nil {
				logger.Error().Err(err).Msg("reload failed, keeping the previous pages")
			} else {
				logger.Info().Int("routes", table.Router().Len()).Msg("pages reloaded")
			}

			continue
		}

		logger.Info().Stringer("signal", sig).Msg("shutting down gracefully")
		app.GracefulStop()
		return
	}
}

func handlerRegistry() *pages.Registry {
	started := time.Now()

	return pages.NewRegistry().
		Register("random-data", pages.RandomData(1, 512*pages.MiB)).
		Register("info", pages.JSON(func() any {
			return map[string]any{
				"server":     "httpy",
				"go":         runtime.Version(),
				"uptime":     time.Since(started).Round(time.Second).String(),
				"goroutines": runtime.NumGoroutine(),
			}
		}))
}

func loadPages(dir string, handlers *pages.Registry, logger zerolog.Logger) (*router.Router, error) {
	loader := pages.Loader{
		Handlers: handlers,
		Files:    fileman.NewRegistry(),
		Router:   router.New(),
		Logger:   logger,
	}

	if err := loader.Load(dir); err != nil {
		return nil, err
	}

	notFound := router.NewPage("not found", pages.Text("<h1>404 Not Found</h1>", mime.HTML))
	if match, found := loader.Router.Resolve(notFoundPath); found {
		notFound = match.Resource
	}

	return loader.Router.NotFound(notFound), nil
}

func httpsOrigin(port uint16) string {
	host, _, err := net.SplitHostPort(*addr)
	if err != nil || len(host) == 0 {
		host = "localhost"
	}

	if port == 443 {
		return "https://" + host
	}

	return "https://" + net.JoinHostPort(host, strconv.Itoa(int(port)))
}
