package pages

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/httpy-web/httpy/fileman"
	"github.com/httpy-web/httpy/http"
	"github.com/httpy-web/httpy/http/method"
	"github.com/httpy-web/httpy/http/mime"
	"github.com/httpy-web/httpy/http/status"
	"github.com/httpy-web/httpy/kv"
	"github.com/httpy-web/httpy/router"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, []byte(data), 0o644))
}

func newLoader() Loader {
	return Loader{
		Handlers: NewRegistry().Register("random", RandomData(1, MiB)),
		Files:    fileman.NewRegistry(),
		Router:   router.New(),
		Logger:   zerolog.Nop(),
	}
}

func getRequest(path string, query map[string]string) *http.Request {
	return http.NewRequest(http.Head{
		Method: method.GET,
		Path:   path,
		Query:  kv.NewFromMap(query),
	}, nil)
}

func TestLoader(t *testing.T) {
	t.Run("pages", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "index", ManifestName), `{
			"web_path": "/",
			"web_path_aliases": ["/index.html", "/home"],
			"filepath": "{prefix}/index.html",
			"locales": ["en", "ru"]
		}`)
		writeFile(t, filepath.Join(dir, "index", "en", "index.html"), "hello")
		writeFile(t, filepath.Join(dir, "index", "ru", "index.html"), "привет")
		writeFile(t, filepath.Join(dir, "api", ManifestName), `{
			"web_path": "/api/random",
			"handler": "random"
		}`)
		writeFile(t, filepath.Join(dir, "drafts", "page.html"), "not ready yet")
		writeFile(t, filepath.Join(dir, "README.md"), "not a page")

		loader := newLoader()
		require.NoError(t, loader.Load(dir))
		require.Equal(t, 4, loader.Router.Len())
		require.True(t, loader.Files.Exists("/"))

		root, found := loader.Router.Resolve("/")
		require.True(t, found)
		home, found := loader.Router.Resolve("/home")
		require.True(t, found)
		require.Same(t, root.Resource, home.Resource)
		require.Equal(t, []string{"en", "ru"}, root.Resource.Entry.Locales())

		api, found := loader.Router.Resolve("/api/random")
		require.True(t, found)
		require.NotNil(t, api.Resource.Handler)
	})

	t.Run("directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "static", ManifestName), `{
			"web_path": "/static/*",
			"web_path_aliases": ["/assets"],
			"filepath": "files"
		}`)
		writeFile(t, filepath.Join(dir, "static", "files", "css", "style.css"), "body {}")
		writeFile(t, filepath.Join(dir, "static", "files", "favicon.ico"), "icon")

		loader := newLoader()
		require.NoError(t, loader.Load(dir))
		require.Equal(t, 2, loader.Files.Len())
		require.Equal(t, 4, loader.Router.Len())
		require.True(t, loader.Files.Exists("/static/css/style.css"))

		style, found := loader.Router.Resolve("/static/css/style.css")
		require.True(t, found)
		alias, found := loader.Router.Resolve("/assets/css/style.css")
		require.True(t, found)
		require.Same(t, style.Resource, alias.Resource)

		resp, err := style.Resource.Serve(getRequest("/static/css/style.css", nil))
		require.NoError(t, err)
		defer resp.Close()
		require.Equal(t, http.FileBody, resp.Kind())
		require.Equal(t, int64(len("body {}")), resp.Size())

		_, found = loader.Router.Resolve("/static/missing.js")
		require.False(t, found)
	})

	t.Run("duplicate path", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"a", "b"} {
			writeFile(t, filepath.Join(dir, name, ManifestName), `{"web_path": "/", "filepath": "index.html"}`)
			writeFile(t, filepath.Join(dir, name, "index.html"), name)
		}

		require.ErrorIs(t, newLoader().Load(dir), ErrDuplicatePath)
	})

	t.Run("unknown handler", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "api", ManifestName), `{"web_path": "/api", "handler": "nope"}`)
		require.ErrorIs(t, newLoader().Load(dir), ErrUnknownHandler)
	})

	t.Run("broken manifest", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "page", ManifestName), `{"web_path": `)
		require.Error(t, newLoader().Load(dir))
	})

	t.Run("empty manifest", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "page", ManifestName), `{"web_path": "/page"}`)
		require.ErrorIs(t, newLoader().Load(dir), ErrEmptyManifest)
	})

	t.Run("missing file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "page", ManifestName), `{"web_path": "/page", "filepath": "page.html"}`)
		require.ErrorIs(t, newLoader().Load(dir), os.ErrNotExist)
	})

	t.Run("missing directory", func(t *testing.T) {
		require.ErrorIs(t, newLoader().Load(filepath.Join(t.TempDir(), "www")), os.ErrNotExist)
	})
}

func TestParseSize(t *testing.T) {
	for str, want := range map[string]int64{
		"0":      0,
		"512":    512,
		"16b":    16,
		"128kib": 128 * KiB,
		"16mib":  16 * MiB,
		"16MiB":  16 * MiB,
		"1gib":   GiB,
	} {
		size, err := ParseSize(str)
		require.NoError(t, err, str)
		require.Equal(t, want, size, str)
	}

	for _, str := range []string{"", "mib", "16mb", "-1", "1.5mib", "99999999999999999999gib", "9999999999gib"} {
		_, err := ParseSize(str)
		require.ErrorIs(t, err, ErrBadSize, str)
	}
}

func collect(t *testing.T, resp *http.Response) []byte {
	require.Equal(t, http.StreamBody, resp.Kind())
	var buff bytes.Buffer
	for chunk := range resp.StreamBody() {
		buff.Write(chunk)
	}

	return buff.Bytes()
}

func TestRandomData(t *testing.T) {
	handler := RandomData(1, MiB)

	t.Run("exact size", func(t *testing.T) {
		for _, size := range []string{"1", "65536", "100000", "1mib"} {
			resp, err := handler.OnRequest(getRequest("/", map[string]string{"size": size}))
			require.NoError(t, err)
			want, err := ParseSize(size)
			require.NoError(t, err)
			require.Equal(t, want, resp.Size())
			require.Len(t, collect(t, resp), int(want))
			require.Equal(t, mime.OctetStream, resp.GetContentType())
		}
	})

	t.Run("out of range", func(t *testing.T) {
		for _, size := range []string{"0", "2mib"} {
			resp, err := handler.OnRequest(getRequest("/", map[string]string{"size": size}))
			require.NoError(t, err)
			require.Equal(t, status.BadRequest, resp.StatusCode())
		}
	})

	t.Run("default size", func(t *testing.T) {
		resp, err := RandomData(1, 32*MiB).OnRequest(getRequest("/", nil))
		require.NoError(t, err)
		require.Equal(t, int64(16*MiB), resp.Size())
	})

	t.Run("malformed size", func(t *testing.T) {
		resp, err := handler.OnRequest(getRequest("/", map[string]string{"size": "lots"}))
		require.NoError(t, err)
		require.Equal(t, status.BadRequest, resp.StatusCode())
	})
}

func TestBuiltins(t *testing.T) {
	t.Run("redirect", func(t *testing.T) {
		resp, err := Redirect("https://localhost/").OnRequest(getRequest("/api/random", map[string]string{"size": "1kib"}))
		require.NoError(t, err)
		require.Equal(t, status.MovedPermanently, resp.StatusCode())

		var location string
		for key, value := range resp.Headers() {
			if key == "Location" {
				location = value
			}
		}
		require.Equal(t, "https://localhost/api/random?size=1kib", location)
	})

	t.Run("text", func(t *testing.T) {
		resp, err := Text("hello", mime.Plain).OnRequest(getRequest("/", nil))
		require.NoError(t, err)
		require.Equal(t, status.OK, resp.StatusCode())
		require.Equal(t, mime.Plain, resp.GetContentType())
		require.Equal(t, "hello", string(resp.BytesBody()))
	})

	t.Run("json", func(t *testing.T) {
		resp, err := JSON(func() any {
			return map[string]int{"pages": 2}
		}).OnRequest(getRequest("/", nil))
		require.NoError(t, err)
		require.Equal(t, mime.JSON, resp.GetContentType())
		require.JSONEq(t, `{"pages": 2}`, string(resp.BytesBody()))
	})
}
