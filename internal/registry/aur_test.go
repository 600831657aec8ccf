package registry

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamcutter/midna/internal/config"
	"github.com/teamcutter/midna/internal/domain"
	"github.com/teamcutter/midna/internal/store"
)

func newTestRegistry(t *testing.T, srv *httptest.Server) (*AURRegistry, *store.Store) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.IndexURL = srv.URL + "/packages.gz"
	cfg.SearchURL = srv.URL + "/rpc/?v=5&type=search&arg="

	st := store.New(t.TempDir(), cfg.StoreName, cfg.IndexFile)
	require.NoError(t, st.EnsureRoot())

	return New(cfg, st), st
}

func TestDownloadIndexOverwrites(t *testing.T) {
	var body atomic.Value
	body.Store("pkgA\npkgB\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/packages.gz", r.URL.Path)
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Write([]byte(body.Load().(string)))
	}))
	defer srv.Close()

	reg, st := newTestRegistry(t, srv)
	require.NoError(t, os.WriteFile(st.IndexPath(), []byte("stale content that is much longer than the new body\n"), 0644))

	got, err := reg.DownloadIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pkgA\npkgB\n", string(got))

	onDisk, err := os.ReadFile(st.IndexPath())
	require.NoError(t, err)
	assert.Equal(t, "pkgA\npkgB\n", string(onDisk))

	body.Store("pkgC\n")
	_, err = reg.DownloadIndex(context.Background())
	require.NoError(t, err)

	onDisk, err = os.ReadFile(st.IndexPath())
	require.NoError(t, err)
	assert.Equal(t, "pkgC\n", string(onDisk))
}

func TestDownloadIndexWithProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pkgA\n"))
	}))
	defer srv.Close()

	reg, st := newTestRegistry(t, srv)
	var progress bytes.Buffer
	reg.WithProgress(&progress)

	_, err := reg.DownloadIndex(context.Background())
	require.NoError(t, err)

	onDisk, err := os.ReadFile(st.IndexPath())
	require.NoError(t, err)
	assert.Equal(t, "pkgA\n", string(onDisk))
}

func TestDownloadIndexBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	reg, st := newTestRegistry(t, srv)
	require.NoError(t, os.WriteFile(st.IndexPath(), []byte("old\n"), 0644))

	_, err := reg.DownloadIndex(context.Background())
	assert.ErrorIs(t, err, domain.ErrNetwork)

	onDisk, err := os.ReadFile(st.IndexPath())
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(onDisk), "failed update keeps the previous index")
}

func TestDownloadIndexTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	reg, _ := newTestRegistry(t, srv)
	srv.Close()

	_, err := reg.DownloadIndex(context.Background())
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "foo bar&baz", r.URL.Query().Get("arg"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"version":5,"type":"search","resultcount":1,"results":[{"Name":"foo","Version":"1.0-1","Description":"desc","NumVotes":3}]}`))
	}))
	defer srv.Close()

	reg, _ := newTestRegistry(t, srv)

	res, err := reg.Search(context.Background(), "foo bar&baz")
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "foo", res.Results[0].Name)
	assert.Equal(t, "1.0-1", res.Results[0].Version)
	assert.Equal(t, "desc", res.Results[0].Description)
	assert.Equal(t, 3, res.Results[0].NumVotes)
}

func TestSearchEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"version":5,"type":"search","resultcount":0,"results":[]}`))
	}))
	defer srv.Close()

	reg, _ := newTestRegistry(t, srv)

	res, err := reg.Search(context.Background(), "nonexistent-xyz")
	require.NoError(t, err)
	assert.Empty(t, res.Results)
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"invalid json", http.StatusOK, `{"results": [`, domain.ErrParse},
		{"bad status", http.StatusInternalServerError, ``, domain.ErrNetwork},
		{"rpc error", http.StatusOK, `{"version":5,"type":"error","resultcount":0,"results":[],"error":"Too many package results."}`, domain.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			reg, _ := newTestRegistry(t, srv)

			_, err := reg.Search(context.Background(), "x")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSearchAllKeepsOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arg := r.URL.Query().Get("arg")
		w.Write([]byte(`{"type":"search","resultcount":1,"results":[{"Name":"` + arg + `","Version":"1"}]}`))
	}))
	defer srv.Close()

	reg, _ := newTestRegistry(t, srv)

	queries := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	results, err := reg.SearchAll(context.Background(), queries)
	require.NoError(t, err)
	require.Len(t, results, len(queries))

	for i, q := range queries {
		assert.Equal(t, q, results[i].Results[0].Name)
	}
}

func TestSearchAllFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("arg") == "bad" {
			w.Write([]byte(`not json`))
			return
		}
		w.Write([]byte(`{"type":"search","results":[]}`))
	}))
	defer srv.Close()

	reg, _ := newTestRegistry(t, srv)

	_, err := reg.SearchAll(context.Background(), []string{"good", "bad"})
	assert.ErrorIs(t, err, domain.ErrParse)
	assert.Contains(t, err.Error(), `"bad"`)
}

func TestFindLocal(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	reg, st := newTestRegistry(t, srv)

	_, err := reg.FindLocal("yay")
	assert.ErrorIs(t, err, domain.ErrStorage)

	require.NoError(t, os.WriteFile(st.IndexPath(), []byte("# AUR package list\nyay\nyay-bin\r\nparu\n"), 0644))

	for name, want := range map[string]bool{"yay": true, "yay-bin": true, "paru": true, "ya": false, "pacman": false} {
		found, err := reg.FindLocal(name)
		require.NoError(t, err)
		assert.Equal(t, want, found, name)
	}
}

func TestFindLocalGzip(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	reg, st := newTestRegistry(t, srv)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(strings.Join([]string{"google-chrome", "spotify", "visual-studio-code-bin"}, "\n")))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(st.IndexPath(), buf.Bytes(), 0644))

	found, err := reg.FindLocal("spotify")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = reg.FindLocal("spot")
	require.NoError(t, err)
	assert.False(t, found)
}
