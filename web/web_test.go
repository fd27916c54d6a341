package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInterface(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>hermes</html>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log('hi')"), 0o600))

	return dir
}

func get(t *testing.T, handler http.Handler, path string) (int, string) {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)

	return rec.Code, string(body)
}

func TestServer_ServesStaticFiles(t *testing.T) {
	dir := writeInterface(t)

	srv := NewServer(func(o *Options) { o.Directory = dir })
	handler, err := srv.Handler()
	require.NoError(t, err)

	code, body := get(t, handler, "/index.html")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "hermes")

	code, body = get(t, handler, "/app.js")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "console.log")
}

func TestServer_IndexFallback(t *testing.T) {
	dir := writeInterface(t)

	srv := NewServer(func(o *Options) { o.Directory = dir })
	handler, err := srv.Handler()
	require.NoError(t, err)

	code, body := get(t, handler, "/agents/market-analyst")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "hermes")
}

func TestServer_MissingDirectory(t *testing.T) {
	srv := NewServer(func(o *Options) {
		o.Directory = filepath.Join(t.TempDir(), "absent")
	})

	_, err := srv.Handler()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "web interface directory")
}

func TestServer_DirectoryIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	srv := NewServer(func(o *Options) { o.Directory = path })

	_, err := srv.Handler()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestNewServer_Defaults(t *testing.T) {
	srv := NewServer()

	assert.Equal(t, ":8000", srv.opts.Addr)
	assert.Equal(t, "web_interface", srv.opts.Directory)
}
