// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces", "deep    learning  models", "deep learning models"},
		{"blank lines", "para one\n\n\n\n\npara two", "para one\n\npara two"},
		{"hyphenated break", "represen-\ntation learning", "representation learning"},
		{"hyphen with spaces", "multi- \n  lingual", "multilingual"},
		{"page number", "end of page\n12\nstart of next", "end of page\nstart of next"},
		{"trim", "  \n text \n ", "text"},
		{"inline hyphen kept", "state-of-the-art", "state-of-the-art"},
		{"unicode hyphen join", "Schrö-\ndinger", "Schrödinger"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestExtractFileMissing(t *testing.T) {
	_, err := ExtractFile(filepath.Join(t.TempDir(), "absent.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtractNotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not a PDF"), 0o644))

	_, err := ExtractFile(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoText)
}
