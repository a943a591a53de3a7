package config

import (
	"fmt"
	"os"
	"time"

	json "github.com/json-iterator/go"
)

// file mirrors the on-disk layout. Every field is optional, absent ones keep their
// defaults.
type file struct {
	Socket struct {
		RecvSize        *int    `json:"socket_recv_size"`
		SendSize        *int    `json:"socket_send_size"`
		MaxRequestSize  *int    `json:"max_request_size"`
		PollInterval    *string `json:"poll_interval"`
		MaxRetries      *int    `json:"max_retries"`
		WriteTimeout    *string `json:"write_timeout"`
		WriteHighWater  *int    `json:"write_high_water"`
		FileChunkSize   *int    `json:"file_chunk_size"`
		AcceptInterrupt *string `json:"accept_interrupt"`
	} `json:"socket"`
	HTTP struct {
		MaxPathLength    *int              `json:"http_max_path_length"`
		MaxArgNumber     *int              `json:"http_max_arg_number"`
		MaxHeaderNumber  *int              `json:"http_max_header_number"`
		MaxQualityTokens *int              `json:"http_max_quality_tokens"`
		DefaultHeaders   map[string]string `json:"default_headers"`
	} `json:"http"`
	Threading struct {
		MaxNumber *int `json:"threading_max_number"`
	} `json:"threading"`
}

// Load reads a JSON config file and applies it on top of Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse applies the JSON document on top of Default().
func Parse(data []byte) (*Config, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := Default()
	setInt(&cfg.NET.ReadBufferSize, f.Socket.RecvSize)
	setInt(&cfg.NET.WriteBufferSize, f.Socket.SendSize)
	setInt(&cfg.NET.MaxRequestSize, f.Socket.MaxRequestSize)
	setInt(&cfg.NET.MaxRetries, f.Socket.MaxRetries)
	setInt(&cfg.NET.WriteHighWater, f.Socket.WriteHighWater)
	setInt(&cfg.NET.FileChunkSize, f.Socket.FileChunkSize)
	setInt(&cfg.NET.MaxConns, f.Threading.MaxNumber)
	setInt(&cfg.URI.MaxPathLength, f.HTTP.MaxPathLength)
	setInt(&cfg.URI.MaxQueryArgs, f.HTTP.MaxArgNumber)
	setInt(&cfg.Headers.MaxNumber, f.HTTP.MaxHeaderNumber)
	setInt(&cfg.Headers.MaxQualityTokens, f.HTTP.MaxQualityTokens)

	for key, value := range f.HTTP.DefaultHeaders {
		cfg.Headers.Default[key] = value
	}

	for _, d := range []struct {
		dst *time.Duration
		src *string
	}{
		{&cfg.NET.PollInterval, f.Socket.PollInterval},
		{&cfg.NET.WriteTimeout, f.Socket.WriteTimeout},
		{&cfg.NET.AcceptLoopInterruptPeriod, f.Socket.AcceptInterrupt},
	} {
		if err := setDuration(d.dst, d.src); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	return cfg, nil
}

func setInt(dst, src *int) {
	if src != nil && *src > 0 {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *string) error {
	if src == nil {
		return nil
	}

	d, err := time.ParseDuration(*src)
	if err != nil {
		return err
	}

	if d > 0 {
		*dst = d
	}

	return nil
}
