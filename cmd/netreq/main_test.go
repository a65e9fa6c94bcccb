// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogama/netreq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			_ = r.ParseForm()
			if r.PostForm.Get("password") == "secret" {
				_, _ = w.Write([]byte(`<r success="yes" info="ok"/>`))
			} else {
				_, _ = w.Write([]byte(`<r success="no" info="bad password"/>`))
			}
		case "/echo":
			_ = r.ParseForm()
			_, _ = w.Write([]byte(r.PostForm.Encode()))
		default:
			_, _ = w.Write([]byte("hello " + r.URL.Path))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func runArgs(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun(t *testing.T) {
	code, _, stderr := runArgs()
	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "Usage: netreq")

	code, _, _ = runArgs("help")
	assert.Equal(t, ExitSuccess, code)

	code, _, stderr = runArgs("bogus")
	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "Unknown command: bogus")
}

func TestGet(t *testing.T) {
	server := newTestServer(t)

	code, stdout, _ := runArgs("get", "-quiet", server.URL+"/a")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "hello /a", stdout)

	code, _, stderr := runArgs("get")
	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "at least one URL")

	code, _, _ = runArgs("get", "-quiet", "https://example.com")
	assert.Equal(t, ExitNotAllowed, code)

	code, _, stderr = runArgs("get", "-quiet", "http://127.0.0.1:1/")
	assert.Equal(t, ExitTransferFailed, code)
	assert.Contains(t, stderr, "Error: http://127.0.0.1:1/")
}

func TestPost(t *testing.T) {
	server := newTestServer(t)

	code, stdout, _ := runArgs("post", "-quiet", "-d", "a=1", "-d", "b=x y", server.URL+"/echo")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "a=1&b=x+y", stdout)

	code, _, _ = runArgs("post", "-quiet", server.URL+"/echo")
	assert.Equal(t, ExitInvalidArgs, code)

	code, _, _ = runArgs("post", "-quiet", "-d", "novalue", server.URL+"/echo")
	assert.Equal(t, ExitInvalidArgs, code)
}

func TestXML(t *testing.T) {
	server := newTestServer(t)

	code, stdout, _ := runArgs("xml", "-quiet", "-d", "password=secret", server.URL+"/login")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "ok\n", stdout)

	code, stdout, _ = runArgs("xml", "-quiet", "-d", "password=guess", server.URL+"/login")
	assert.Equal(t, ExitRejected, code)
	assert.Equal(t, "bad password\n", stdout)

	code, stdout, _ = runArgs("xml", "-quiet", "http://127.0.0.1:1/")
	assert.Equal(t, ExitTransferFailed, code)
	assert.Equal(t, netreq.ConnectivityMessage+"\n", stdout)
}

func TestDownload(t *testing.T) {
	server := newTestServer(t)
	dir := t.TempDir()

	code, stdout, stderr := runArgs("download", "-quiet", "-bucket", "file://"+dir, "-prefix", "out",
		server.URL+"/one.txt", server.URL+"/two.txt")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "-> out/one.txt (14 bytes)")

	b, err := os.ReadFile(filepath.Join(dir, "out", "two.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello /two.txt", string(b))

	code, _, _ = runArgs("download", "-quiet", server.URL+"/one.txt")
	assert.Equal(t, ExitInvalidArgs, code)

	code, _, _ = runArgs("download", "-quiet", "-bucket", "nosuchscheme://x", server.URL+"/one.txt")
	assert.Equal(t, ExitStorageError, code)
}

func TestObjectKey(t *testing.T) {
	cases := []struct {
		prefix, url, want string
	}{
		{"", "http://example.com/a/b.txt", "b.txt"},
		{"p", "http://example.com/a/b.txt", "p/b.txt"},
		{"", "http://example.com", "index"},
		{"", "http://example.com/", "index"},
	}
	for _, c := range cases {
		got, err := objectKey(c.prefix, c.url)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, c.url)
	}
}
