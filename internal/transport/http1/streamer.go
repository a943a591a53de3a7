package http1

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/httpy-web/httpy/config"
	"github.com/httpy-web/httpy/http"
	"github.com/httpy-web/httpy/http/coding"
	"github.com/httpy-web/httpy/http/method"
	"github.com/httpy-web/httpy/http/status"
	"github.com/rs/zerolog/log"
)

const (
	colonsp          = ": "
	crlf             = "\r\n"
	contentType      = "Content-Type: "
	contentEncoding  = "Content-Encoding: "
	contentLength    = "Content-Length: "
	connectionClose  = "Connection: close\r\n"
	minimalChunkSize = 16
)

// ErrBodyLength is returned when a body doesn't match its declared size. The response is
// broken by then, so the connection must be closed.
var ErrBodyLength = errors.New("body length doesn't match Content-Length")

// WriteResult reports how many bytes of the response were actually handed to the transport.
type WriteResult struct {
	Header, Body int64
}

// Streamer renders responses into the wire format and sends them. Output is accumulated
// in a pending buffer and flushed whenever it exceeds the high-water mark, so lazy bodies
// are sent in bounded portions. Every response is terminated by closing the connection.
//
// Streamer isn't safe for concurrent use. It is cheap enough to have one per connection.
type Streamer struct {
	buff []byte
	// fileBuff isn't allocated until needed in order to save memory in cases,
	// where no files are being sent
	fileBuff       []byte
	fileChunkSize  int
	highWater      int
	defaultHeaders []defaultHeader
}

func NewStreamer(cfg *config.Config) *Streamer {
	chunkSize := cfg.NET.FileChunkSize
	if chunkSize < minimalChunkSize {
		log.Warn().
			Int("configured", chunkSize).
			Int("minimal", minimalChunkSize).
			Msg("file chunk size is too small, falling back to the minimal one")

		chunkSize = minimalChunkSize
	}

	return &Streamer{
		buff:           make([]byte, 0, cfg.NET.WriteBufferSize),
		fileChunkSize:  chunkSize,
		highWater:      max(cfg.NET.WriteHighWater, 1),
		defaultHeaders: processDefaultHeaders(cfg.Headers.Default),
	}
}

// Write sends the response. Any transport error stops the writing immediately and is
// returned as is. The response body isn't closed, it's up to the caller.
func (s *Streamer) Write(w io.Writer, request *http.Request, response *http.Response) (WriteResult, error) {
	defer s.clear()

	s.renderHead(response)
	sink := &countingWriter{w: w, head: int64(len(s.buff))}

	if request.Method() == method.HEAD || response.Kind() == http.NoBody {
		// HEAD request responses must be similar to GET request responses, except
		// forced lack of body, even if Content-Length is specified
		err := s.flush(sink)
		return sink.result(), err
	}

	var err error

	switch response.Kind() {
	case http.BytesBody:
		err = s.writeBytes(sink, response.BytesBody())
	case http.StreamBody:
		err = s.writeStream(sink, response)
	case http.FileBody:
		err = s.writeFile(sink, response.FileBody())
	}

	if err == nil && response.Size() != http.UnknownSize && sink.result().Body != response.Size() {
		// the client would otherwise wait for the rest of the declared body
		err = fmt.Errorf("%w: declared %d, sent %d", ErrBodyLength, response.Size(), sink.result().Body)
	}

	return sink.result(), err
}

func (s *Streamer) renderHead(response *http.Response) {
	s.buff = append(s.buff, status.Line(response.StatusCode())...)

	for key, value := range response.Headers() {
		s.renderHeader(key, value)
	}

	for _, header := range s.defaultHeaders {
		if !response.HasHeader(header.Key) {
			s.buff = append(s.buff, header.Full...)
		}
	}

	s.renderKnownHeader(contentType, response.GetContentType())

	if enc := response.GetContentEncoding(); enc != coding.Identity {
		s.renderKnownHeader(contentEncoding, enc.Token())
	}

	if size := response.Size(); size != http.UnknownSize {
		s.buff = strconv.AppendInt(append(s.buff, contentLength...), size, 10)
		s.crlf()
	}

	s.buff = append(s.buff, connectionClose...)
	s.crlf()
}

func (s *Streamer) writeBytes(w io.Writer, body []byte) error {
	if len(s.buff)+len(body) <= s.highWater {
		s.buff = append(s.buff, body...)
		return s.flush(w)
	}

	if err := s.flush(w); err != nil {
		return err
	}

	_, err := w.Write(body)
	return err
}

func (s *Streamer) writeStream(w io.Writer, response *http.Response) error {
	size, total := response.Size(), int64(0)

	for chunk := range response.StreamBody() {
		total += int64(len(chunk))
		if size != http.UnknownSize && total > size {
			return fmt.Errorf("%w: declared %d, got at least %d", ErrBodyLength, size, total)
		}

		if err := s.append(w, chunk); err != nil {
			return err
		}
	}

	return s.flush(w)
}

func (s *Streamer) writeFile(w io.Writer, file io.Reader) error {
	if len(s.fileBuff) == 0 {
		s.fileBuff = make([]byte, s.fileChunkSize)
	}

	for {
		n, err := file.Read(s.fileBuff)
		if n > 0 {
			if err := s.append(w, s.fileBuff[:n]); err != nil {
				return err
			}
		}

		switch err {
		case nil:
		case io.EOF:
			return s.flush(w)
		default:
			return err
		}
	}
}

// append adds the data to the pending buffer, flushing it as soon as the high-water
// mark is exceeded.
func (s *Streamer) append(w io.Writer, data []byte) error {
	s.buff = append(s.buff, data...)
	if len(s.buff) > s.highWater {
		return s.flush(w)
	}

	return nil
}

func (s *Streamer) flush(w io.Writer) error {
	if len(s.buff) == 0 {
		return nil
	}

	_, err := w.Write(s.buff)
	s.buff = s.buff[:0]
	return err
}

func (s *Streamer) renderHeader(key, value string) {
	s.buff = append(s.buff, key...)
	s.buff = append(s.buff, colonsp...)
	s.buff = append(s.buff, value...)
	s.crlf()
}

func (s *Streamer) renderKnownHeader(key, value string) {
	s.buff = append(s.buff, key...)
	s.buff = append(s.buff, value...)
	s.crlf()
}

func (s *Streamer) crlf() {
	s.buff = append(s.buff, crlf...)
}

func (s *Streamer) clear() {
	s.buff = s.buff[:0]
}

type defaultHeader struct {
	Key  string
	Full string
}

func processDefaultHeaders(hdrs map[string]string) []defaultHeader {
	processed := make([]defaultHeader, 0, len(hdrs))

	for key, value := range hdrs {
		processed = append(processed, defaultHeader{
			Key:  key,
			Full: key + colonsp + value + crlf,
		})
	}

	return processed
}

// countingWriter splits the number of bytes written between the head and the body.
type countingWriter struct {
	w       io.Writer
	head    int64
	written int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.written += int64(n)
	return n, err
}

func (c *countingWriter) result() WriteResult {
	header := min(c.written, c.head)

	return WriteResult{
		Header: header,
		Body:   c.written - header,
	}
}
