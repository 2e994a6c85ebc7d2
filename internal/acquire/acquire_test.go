// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-discovery/pkg/types"
)

const fakePDF = "%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n"

func TestClassify(t *testing.T) {
	tests := []struct {
		input    string
		wantType IdentifierType
		wantNorm string
	}{
		{"2301.07041", TypeArxiv, "2301.07041"},
		{"arXiv:2301.07041v2", TypeArxiv, "2301.07041v2"},
		{"  2301.0704  ", TypeArxiv, "2301.0704"},
		{"10.1145/1234567.1234568", TypeDOI, "10.1145/1234567.1234568"},
		{"doi:10.48550/arXiv.2301.07041", TypeDOI, "10.48550/arXiv.2301.07041"},
		{"https://example.org/papers/graph.pdf", TypeURL, "https://example.org/papers/graph.pdf"},
		{"paper.pdf", TypeUnknown, "paper.pdf"},
		{"./data/2301.07041.pdf", TypeUnknown, "./data/2301.07041.pdf"},
		{"ftp://example.org/a.pdf", TypeUnknown, "ftp://example.org/a.pdf"},
		{"", TypeUnknown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			gotType, gotNorm := Classify(tt.input)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantNorm, gotNorm)
		})
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "arxiv-2301.07041.pdf", Filename(TypeArxiv, "2301.07041"))
	assert.Equal(t, "doi-10.1145-123.456.pdf", Filename(TypeDOI, "10.1145/123.456"))
	assert.Equal(t, "graph.pdf", Filename(TypeURL, "https://example.org/papers/graph.pdf"))

	hashed := Filename(TypeURL, "https://example.org/")
	assert.True(t, strings.HasPrefix(hashed, "url-"), hashed)
	assert.Equal(t, hashed, Filename(TypeURL, "https://example.org/"))
}

func testConfig() types.SearchConfig {
	cfg := types.DefaultPipelineConfig().Search
	cfg.RetryDelay = 0
	return cfg
}

func TestFetchArxiv(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pdf/2301.07041", r.URL.Path)
		assert.Equal(t, "application/pdf", r.Header.Get("Accept"))
		assert.Equal(t, "research-discovery/0.1", r.Header.Get("User-Agent"))
		w.Write([]byte(fakePDF))
	}))
	defer srv.Close()

	old := arxivPDFBase
	arxivPDFBase = srv.URL + "/pdf/"
	defer func() { arxivPDFBase = old }()

	dir := t.TempDir()
	path, err := New(testConfig()).Fetch(context.Background(), "arXiv:2301.07041", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "arxiv-2301.07041.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fakePDF, string(data))
}

func TestFetchRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(fakePDF))
	}))
	defer srv.Close()

	_, err := New(testConfig()).Fetch(context.Background(), srv.URL+"/paper.pdf", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchRejectsNonPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>paywall</html>"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := New(testConfig()).Fetch(context.Background(), srv.URL+"/landing", dir)
	assert.ErrorIs(t, err, ErrNotPDF)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial file may remain")
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New(testConfig()).Fetch(context.Background(), srv.URL+"/missing.pdf", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestFetchDOIPrefersOpenAccess(t *testing.T) {
	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/works/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works/doi:10.1145/123.456", r.URL.Path)
		assert.Equal(t, "me@example.org", r.URL.Query().Get("mailto"))
		w.Write([]byte(`{"best_oa_location":{"pdf_url":"` + srvURL + `/oa/paper.pdf"}}`))
	})
	mux.HandleFunc("/oa/paper.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fakePDF))
	})
	mux.HandleFunc("/doi/", func(w http.ResponseWriter, r *http.Request) {
		t.Error("publisher resolver should not be used when an open-access copy exists")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	oldOA, oldDOI := openAlexAPIBase, doiBase
	openAlexAPIBase, doiBase = srv.URL+"/works/", srv.URL+"/doi/"
	defer func() { openAlexAPIBase, doiBase = oldOA, oldDOI }()

	cfg := testConfig()
	cfg.OpenAlexEmail = "me@example.org"
	path, err := New(cfg).Fetch(context.Background(), "10.1145/123.456", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "doi-10.1145-123.456.pdf", filepath.Base(path))
}

func TestFetchDOIFallsBackToResolver(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/works/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"best_oa_location":null}`))
	})
	mux.HandleFunc("/doi/10.1145/123.456", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fakePDF))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	oldOA, oldDOI := openAlexAPIBase, doiBase
	openAlexAPIBase, doiBase = srv.URL+"/works/", srv.URL+"/doi/"
	defer func() { openAlexAPIBase, doiBase = oldOA, oldDOI }()

	_, err := New(testConfig()).Fetch(context.Background(), "10.1145/123.456", t.TempDir())
	require.NoError(t, err)
}

func TestFetchUnknownIdentifier(t *testing.T) {
	_, err := New(testConfig()).Fetch(context.Background(), "not a paper", t.TempDir())
	assert.Error(t, err)
}
