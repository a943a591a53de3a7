package mime

import (
	"path/filepath"
	"strings"
)

type MIME = string

const (
	OctetStream MIME = "application/octet-stream"
	Plain       MIME = "text/plain"
	HTML        MIME = "text/html"
	CSS         MIME = "text/css"
	JS          MIME = "text/javascript"
	XML         MIME = "text/xml"
	JSON        MIME = "application/json"
	PDF         MIME = "application/pdf"
	WASM        MIME = "application/wasm"
	ZIP         MIME = "application/zip"
	GZIP        MIME = "application/gzip"
	AVIF        MIME = "image/avif"
	BMP         MIME = "image/bmp"
	GIF         MIME = "image/gif"
	JPEG        MIME = "image/jpeg"
	PNG         MIME = "image/png"
	SVG         MIME = "image/svg+xml"
	ICO         MIME = "image/x-icon"
	WEBP        MIME = "image/webp"
	MP3         MIME = "audio/mpeg"
	AAC         MIME = "audio/aac"
	WAV         MIME = "audio/wav"
	MIDI        MIME = "audio/midi"
	MP4         MIME = "video/mp4"
	MPEG        MIME = "video/mpeg"
	WEBM        MIME = "video/webm"
	MP2T        MIME = "video/mp2t"
	AVI         MIME = "video/x-msvideo"
)

// ByExtension returns the MIME of the file judging by its extension. Textual types
// are completed with the UTF-8 charset. Unknown extensions are served as octet streams.
func ByExtension(path string) MIME {
	mime, found := Extension[strings.ToLower(filepath.Ext(path))]
	if !found {
		return OctetStream
	}

	if charset, ok := DefaultCharset[mime]; ok {
		return WithCharset(mime, charset)
	}

	return mime
}
