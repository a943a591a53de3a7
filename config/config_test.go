package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoZeroFields(t *testing.T) {
	cfg := Default()

	for _, field := range visit(newVar(*cfg), "Config", false) {
		assert.Fail(t, "zero-value field", field)
	}
}

func TestLoad(t *testing.T) {
	t.Run("overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
			"socket": {"socket_recv_size": 8192, "poll_interval": "10ms"},
			"http": {"http_max_arg_number": 4, "default_headers": {"X-Powered-By": "go"}},
			"threading": {"threading_max_number": 2}
		}`), 0600))

		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, 8192, cfg.NET.ReadBufferSize)
		require.Equal(t, 10*time.Millisecond, cfg.NET.PollInterval)
		require.Equal(t, 4, cfg.URI.MaxQueryArgs)
		require.Equal(t, 2, cfg.NET.MaxConns)
		require.Equal(t, "go", cfg.Headers.Default["X-Powered-By"])
		require.Equal(t, "httpy", cfg.Headers.Default["Server"])
		// untouched
		require.Equal(t, Default().NET.MaxRequestSize, cfg.NET.MaxRequestSize)
	})

	t.Run("bad duration", func(t *testing.T) {
		_, err := Parse([]byte(`{"socket": {"write_timeout": "forever"}}`))
		require.Error(t, err)
	})

	t.Run("bad json", func(t *testing.T) {
		_, err := Parse([]byte(`{"socket":`))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

type variable struct {
	Type  reflect.Type
	Value reflect.Value
}

func newVar(a any) variable {
	return variable{reflect.TypeOf(a), reflect.ValueOf(a)}
}

func visit(a variable, name string, nullable bool) (fields []string) {
	if a.Type.Kind() == reflect.Struct {
		for field := range a.Value.NumField() {
			v1 := variable{a.Type.Field(field).Type, a.Value.Field(field)}
			fieldname := a.Type.Field(field).Name
			isNullable := a.Type.Field(field).Tag.Get("test") == "nullable"
			fields = append(fields, visit(v1, name+"."+fieldname, isNullable)...)
		}

		return fields
	}

	if a.Value.IsZero() && !nullable {
		return []string{name}
	}

	return nil
}
