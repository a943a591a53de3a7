package session

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/dchest/uniuri"
	"github.com/httpy-web/httpy/config"
	"github.com/httpy-web/httpy/http"
	"github.com/httpy-web/httpy/http/method"
	"github.com/httpy-web/httpy/http/status"
	"github.com/httpy-web/httpy/internal/transport/http1"
	"github.com/httpy-web/httpy/router"
	"github.com/rs/zerolog"
)

// IDLength is the length of connection ids used in logs.
const IDLength = 8

var (
	ErrRetriesExhausted = errors.New("client sent no complete request in time")
	ErrBodyPanicked     = errors.New("response body panicked")
)

type State uint8

const (
	Receiving State = iota
	Decoding
	Dispatching
	Sending
	Closed
	Errored
)

func (s State) String() string {
	switch s {
	case Receiving:
		return "receiving"
	case Decoding:
		return "decoding"
	case Dispatching:
		return "dispatching"
	case Sending:
		return "sending"
	case Closed:
		return "closed"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Session serves exactly one request over the connection and closes it. The session is
// exclusively owned by the goroutine running it.
type Session struct {
	id       string
	conn     net.Conn
	cfg      *config.Config
	table    *router.Table
	streamer *http1.Streamer
	logger   zerolog.Logger
	state    State
	err      error
	retries  int
	closed   bool
}

func New(conn net.Conn, cfg *config.Config, table *router.Table, logger zerolog.Logger) *Session {
	id := uniuri.NewLen(IDLength)

	return &Session{
		id:       id,
		conn:     conn,
		cfg:      cfg,
		table:    table,
		streamer: http1.NewStreamer(cfg),
		logger: logger.With().
			Str("conn", id).
			Stringer("remote", conn.RemoteAddr()).
			Logger(),
	}
}

// Serve runs a new session over the connection to the end.
func Serve(conn net.Conn, cfg *config.Config, table *router.Table, logger zerolog.Logger) {
	New(conn, cfg, table, logger).Run()
}

// ID returns the connection id.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state. Once Run returns, it's always Closed.
func (s *Session) State() State {
	return s.state
}

// Err returns the error that led the session into the Errored state, if any.
func (s *Session) Err() error {
	return s.err
}

// Retries returns the number of receive attempts that timed out.
func (s *Session) Retries() int {
	return s.retries
}

// Run drives the session through all its states. The connection is closed exactly once,
// no matter which path was taken.
func (s *Session) Run() {
	defer s.close()

	s.state = Receiving
	data, err := s.receive()
	switch {
	case errors.Is(err, status.ErrRequestEntityTooLarge):
		s.fail(err)
		s.logger.Warn().Int("limit", s.cfg.NET.MaxRequestSize).Msg("request is too large")
		s.send(s.placeholder(), http.Error(err))
		return
	case err != nil:
		// nobody to respond to
		s.fail(err)
		s.logger.Debug().Err(err).Int("retries", s.retries).Msg("client dropped")
		return
	}

	s.state = Decoding
	request, err := http1.Decode(data, s.cfg)
	if err != nil {
		s.fail(err)
		s.logger.Debug().Err(err).Msg("bad request")
		s.send(s.placeholder(), http.Error(err))
		return
	}

	request = request.WithRemote(s.conn.RemoteAddr())

	s.state = Dispatching
	response := s.dispatch(request)

	s.state = Sending
	s.send(request, response)
}

func (s *Session) receive() ([]byte, error) {
	buff := make([]byte, 0, s.cfg.NET.ReadBufferSize)
	chunk := make([]byte, s.cfg.NET.ReadBufferSize)
	// the budget is absolute, so clients trickling bytes can't hold the connection forever
	deadline := time.Now().Add(s.cfg.NET.PollInterval * time.Duration(s.cfg.NET.MaxRetries))

	for s.retries < s.cfg.NET.MaxRetries {
		now := time.Now()
		if !now.Before(deadline) {
			break
		}

		attempt := now.Add(s.cfg.NET.PollInterval)
		if attempt.After(deadline) {
			attempt = deadline
		}

		if err := s.conn.SetReadDeadline(attempt); err != nil {
			return nil, err
		}

		n, err := s.conn.Read(chunk)
		if n > 0 {
			// the terminator might have been split between two reads
			from := max(len(buff)-len(http1.HeadTerminator)+1, 0)
			buff = append(buff, chunk[:n]...)

			if len(buff) > s.cfg.NET.MaxRequestSize {
				return nil, status.ErrRequestEntityTooLarge
			}

			if bytes.Contains(buff[from:], []byte(http1.HeadTerminator)) {
				return buff, nil
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, os.ErrDeadlineExceeded):
			s.retries++
		default:
			return nil, err
		}
	}

	return nil, ErrRetriesExhausted
}

// dispatch produces the response for the request. Handler failures, including panics,
// result in 500 Internal Server Error without any details.
func (s *Session) dispatch(request *http.Request) (response *http.Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Str("path", request.Path()).
				Msg("handler panicked")
			response = http.Error(status.ErrInternalServerError)
		}
	}()

	r := s.table.Router()
	resource, trailing := r.NotFoundResource(), ""
	match, found := r.Resolve(request.Path())
	if found {
		resource, trailing = match.Resource, match.Trailing
	}

	response, err := resource.Serve(request.WithTrailing(trailing))
	if err != nil {
		return s.internalError(request, err)
	}

	if response == nil {
		response = http.NewResponse()
	}

	if !found {
		response.Code(status.NotFound)
	}

	return response
}

func (s *Session) internalError(request *http.Request, err error) *http.Response {
	s.logger.Error().Err(err).Str("path", request.Path()).Msg("handler failed")
	return http.Error(status.ErrInternalServerError)
}

func (s *Session) send(request *http.Request, response *http.Response) {
	defer func() {
		if err := response.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to close the response body")
		}
	}()

	defer func() {
		// lazy bodies run user code while being sent
		if r := recover(); r != nil {
			s.fail(fmt.Errorf("%w: %v", ErrBodyPanicked, r))
			s.logger.Error().
				Interface("panic", r).
				Str("path", request.Path()).
				Msg("response body panicked, abandoning")
		}
	}()

	start := time.Now()
	w := deadlineWriter{conn: s.conn, timeout: s.cfg.NET.WriteTimeout}
	result, err := s.streamer.Write(w, request, response)
	if err != nil {
		s.fail(err)
		s.logger.Debug().
			Err(err).
			Int64("sent", result.Header+result.Body).
			Msg("response abandoned")
		return
	}

	s.logger.Info().
		Stringer("method", request.Method()).
		Str("path", request.Path()).
		Uint16("status", uint16(response.StatusCode())).
		Int64("bytes", result.Body).
		Dur("took", time.Since(start)).
		Msg("served")
}

// deadlineWriter bounds every single write by the timeout, so slow but steady clients
// may receive bodies of any size.
type deadlineWriter struct {
	conn    net.Conn
	timeout time.Duration
}

func (d deadlineWriter) Write(b []byte) (int, error) {
	if err := d.conn.SetWriteDeadline(time.Now().Add(d.timeout)); err != nil {
		return 0, err
	}

	return d.conn.Write(b)
}

// placeholder is used to respond to requests which couldn't be decoded.
func (s *Session) placeholder() *http.Request {
	return http.NewRequest(http.Head{Method: method.GET, Path: "/"}, s.conn.RemoteAddr())
}

func (s *Session) fail(err error) {
	s.state = Errored
	s.err = err
}

func (s *Session) close() {
	if s.closed {
		return
	}

	s.closed = true
	if err := s.conn.Close(); err != nil {
		s.logger.Debug().Err(err).Msg("failed to close the connection")
	}

	s.state = Closed
}
