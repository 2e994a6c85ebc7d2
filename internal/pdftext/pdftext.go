// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext extracts and cleans the plain text of an uploaded paper.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a PDF yields no text after cleaning, which is
// typical of scanned documents without a text layer.
var ErrNoText = errors.New("no extractable text in PDF")

// ExtractFile reads the PDF at path and returns its cleaned text.
func ExtractFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return Extract(content)
}

// Extract returns the cleaned text of an in-memory PDF. Pages are joined by
// a blank line.
func Extract(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	var buf strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extracting page %d: %w", i, err)
		}
		if text == "" {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n\n")
	}

	text := Clean(buf.String())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

var (
	multiSpace  = regexp.MustCompile(` +`)
	multiBlank  = regexp.MustCompile(`\n{3,}`)
	hyphenBreak = regexp.MustCompile(`([\p{L}\p{N}_]+)-\s*\n\s*([\p{L}\p{N}_]+)`)
	pageNumber  = regexp.MustCompile(`\n\d+\n`)
)

// Clean collapses runs of spaces, keeps at most one blank line, rejoins
// words hyphenated across line breaks, drops bare page-number lines, and
// trims the result.
func Clean(text string) string {
	text = multiSpace.ReplaceAllString(text, " ")
	text = multiBlank.ReplaceAllString(text, "\n\n")
	text = hyphenBreak.ReplaceAllString(text, "${1}${2}")
	text = pageNumber.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
