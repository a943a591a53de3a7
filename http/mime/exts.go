package mime

var Extension = map[string]MIME{
	".htm":  HTML,
	".html": HTML,
	".css":  CSS,
	".js":   JS,
	".mjs":  JS,
	".txt":  Plain,
	".md":   Plain,
	".json": JSON,
	".xml":  XML,
	".pdf":  PDF,
	".wasm": WASM,
	".zip":  ZIP,
	".gz":   GZIP,
	".avif": AVIF,
	".bmp":  BMP,
	".gif":  GIF,
	".jpg":  JPEG,
	".jpeg": JPEG,
	".png":  PNG,
	".svg":  SVG,
	".ico":  ICO,
	".webp": WEBP,
	".mp3":  MP3,
	".aac":  AAC,
	".wav":  WAV,
	".mid":  MIDI,
	".midi": MIDI,
	".mp4":  MP4,
	".mpeg": MPEG,
	".webm": WEBM,
	".ts":   MP2T,
	".avi":  AVI,
}

// DefaultCharset defines charsets, used by default for MIMEs unless explicitly set.
var DefaultCharset = map[MIME]Charset{
	CSS:   UTF8,
	HTML:  UTF8,
	JS:    UTF8,
	XML:   UTF8,
	Plain: UTF8,
}
