// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// IdentifierType classifies a paper reference given on the command line.
type IdentifierType int

const (
	TypeUnknown IdentifierType = iota
	TypeArxiv
	TypeDOI
	TypeURL
)

func (t IdentifierType) String() string {
	switch t {
	case TypeArxiv:
		return "arxiv"
	case TypeDOI:
		return "doi"
	case TypeURL:
		return "url"
	default:
		return "unknown"
	}
}

// Declared as vars so tests can substitute httptest servers.
var (
	arxivPDFBase    = "https://arxiv.org/pdf/"
	doiBase         = "https://doi.org/"
	openAlexAPIBase = "https://api.openalex.org/works/"
)

// arxivPattern matches "2301.07041", "arXiv:2301.07041", "2301.07041v2".
var arxivPattern = regexp.MustCompile(`^(?i:arxiv:)?(\d{4}\.\d{4,5}(?:v\d+)?)$`)

// doiPattern matches "10.1145/1234567.1234568", optionally prefixed "doi:".
var doiPattern = regexp.MustCompile(`^(?i:doi:)?(10\.\d{4,9}/\S+)$`)

// Classify determines the identifier type and returns its normalized form.
func Classify(identifier string) (IdentifierType, string) {
	identifier = strings.TrimSpace(identifier)

	if m := arxivPattern.FindStringSubmatch(identifier); m != nil {
		return TypeArxiv, m[1]
	}
	if m := doiPattern.FindStringSubmatch(identifier); m != nil {
		return TypeDOI, m[1]
	}
	if u, err := url.Parse(identifier); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return TypeURL, identifier
	}
	return TypeUnknown, identifier
}

// IsRemote reports whether identifier names a paper that must be downloaded.
func IsRemote(identifier string) bool {
	t, _ := Classify(identifier)
	return t != TypeUnknown
}

// Filename returns a filesystem-safe PDF name for the identifier.
func Filename(idType IdentifierType, normalized string) string {
	var stem string
	switch idType {
	case TypeArxiv:
		stem = "arxiv-" + normalized
	case TypeDOI:
		stem = "doi-" + strings.NewReplacer("/", "-", ":", "-").Replace(normalized)
	case TypeURL:
		if u, err := url.Parse(normalized); err == nil {
			base := strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
			if base != "" && base != "." && base != "/" {
				stem = base
			}
		}
		if stem == "" {
			h := sha256.Sum256([]byte(normalized))
			stem = fmt.Sprintf("url-%x", h[:8])
		}
	default:
		stem = "paper"
	}
	return stem + ".pdf"
}

// PDFURL returns the direct download URL. DOIs go through the doi.org
// resolver; the HTTP client follows the redirect.
func PDFURL(idType IdentifierType, normalized string) string {
	switch idType {
	case TypeArxiv:
		return arxivPDFBase + normalized
	case TypeDOI:
		return doiBase + normalized
	case TypeURL:
		return normalized
	default:
		return ""
	}
}
