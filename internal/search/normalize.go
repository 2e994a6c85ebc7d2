// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/research-discovery/pkg/types"
)

// normalize drops records without a title or abstract, collapses
// whitespace, bounds abstract and author list lengths, and caps the result
// at limit records.
func normalize(records []types.PaperRecord, limit int, source string) []types.PaperRecord {
	out := make([]types.PaperRecord, 0, len(records))
	for _, r := range records {
		if limit > 0 && len(out) == limit {
			break
		}
		r.Title = collapseSpace(r.Title)
		r.Abstract = truncate(collapseSpace(r.Abstract), types.MaxAbstractLen)
		if r.Title == "" || r.Abstract == "" {
			continue
		}
		if len(r.Authors) > types.MaxAuthors {
			r.Authors = r.Authors[:types.MaxAuthors]
		}
		if r.Authors == nil {
			r.Authors = []string{}
		}
		if r.CitationCount < 0 {
			r.CitationCount = 0
		}
		if r.Source == "" {
			r.Source = source
		}
		out = append(out, r)
	}
	return out
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// ParseYear extracts a year from the leading four digits of a date-like
// string such as "2023-05-01T00:00:00Z". It returns nil when there are not
// four leading digits.
func ParseYear(s string) *int {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return nil
	}
	for i := range 4 {
		if s[i] < '0' || s[i] > '9' {
			return nil
		}
	}
	y, _ := strconv.Atoi(s[:4])
	return yearPtr(y)
}

// yearPtr converts a positive integer year to a pointer, nil otherwise.
func yearPtr(y int) *int {
	if y <= 0 {
		return nil
	}
	return &y
}
