// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads a paper PDF named by an arXiv ID, a DOI, or a
// URL so it can be analyzed like a local file.
package acquire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-discovery/internal/httputil"
	"github.com/pdiddy/research-discovery/pkg/types"
)

// ErrNotPDF is returned when the downloaded body is not a PDF document.
var ErrNotPDF = errors.New("downloaded file is not a PDF")

// maxPDFBytes bounds a single download.
const maxPDFBytes = 64 << 20

var pdfMagic = []byte("%PDF-")

// Fetcher downloads papers into a directory.
type Fetcher struct {
	client    *http.Client
	retry     httputil.Policy
	userAgent string
	mailto    string
	log       zerolog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

// New returns a Fetcher using the timeout, user agent, retry settings, and
// OpenAlex contact address from cfg.
func New(cfg types.SearchConfig, opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		retry: httputil.Policy{
			MaxAttempts: cfg.MaxAttempts,
			Delay:       cfg.RetryDelay,
		},
		userAgent: cfg.UserAgent,
		mailto:    cfg.OpenAlexEmail,
		log:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch downloads the paper named by identifier into dir and returns the
// written path. For a DOI the OpenAlex open-access PDF is preferred over
// the publisher landing page.
func (f *Fetcher) Fetch(ctx context.Context, identifier, dir string) (string, error) {
	idType, normalized := Classify(identifier)
	if idType == TypeUnknown {
		return "", fmt.Errorf("unrecognized paper identifier %q", identifier)
	}

	pdfURL := PDFURL(idType, normalized)
	if idType == TypeDOI {
		oaURL, err := f.resolveOpenAlex(ctx, normalized)
		switch {
		case err != nil:
			f.log.Warn().Err(err).Str("doi", normalized).Msg("open-access lookup failed")
		case oaURL != "":
			pdfURL = oaURL
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	dest := filepath.Join(dir, Filename(idType, normalized))

	f.log.Info().Str("type", idType.String()).Str("url", pdfURL).Msg("downloading paper")
	if err := f.download(ctx, pdfURL, dest); err != nil {
		return "", fmt.Errorf("downloading %s: %w", identifier, err)
	}
	return dest, nil
}

// download writes url to destPath through a temporary file so a failed
// transfer never leaves a partial PDF behind.
func (f *Fetcher) download(ctx context.Context, rawURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, f.client, req, f.retry)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".acquire-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	head := make([]byte, len(pdfMagic))
	n, _ := io.ReadFull(resp.Body, head)
	if !bytes.Equal(head[:n], pdfMagic) {
		tmp.Close()
		return ErrNotPDF
	}

	_, copyErr := io.Copy(tmp, io.LimitReader(io.MultiReader(bytes.NewReader(head), resp.Body), maxPDFBytes))
	closeErr := tmp.Close()
	if copyErr != nil {
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

type openAlexWork struct {
	BestOALocation *struct {
		PDFURL string `json:"pdf_url"`
	} `json:"best_oa_location"`
}

// resolveOpenAlex returns the open-access PDF URL for a DOI, or "" when
// OpenAlex knows none.
func (f *Fetcher) resolveOpenAlex(ctx context.Context, doi string) (string, error) {
	apiURL := openAlexAPIBase + "doi:" + doi
	if f.mailto != "" {
		apiURL += "?mailto=" + url.QueryEscape(f.mailto)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating OpenAlex request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := httputil.DoWithRetry(ctx, f.client, req, f.retry)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAlex returned HTTP %d", resp.StatusCode)
	}

	var work openAlexWork
	if err := json.NewDecoder(resp.Body).Decode(&work); err != nil {
		return "", fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	if work.BestOALocation == nil {
		return "", nil
	}
	return work.BestOALocation.PDFURL, nil
}
