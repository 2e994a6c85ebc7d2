// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package payload locates structured JSON embedded in free-form model output.
//
// Generative backends often wrap the JSON they were asked for in prose or
// Markdown fences. The locator takes the span from the first opening
// delimiter to the last closing one and decodes only that span. When no
// such span exists the whole text is decoded, so a bare payload still
// parses and a payload-free reply fails with a decode error.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoPayload is returned when the text is empty after trimming.
var ErrNoPayload = errors.New("no structured payload in response")

// ExtractObject returns the substring from the first '{' to the last '}'.
// ok is false when no such span exists.
func ExtractObject(text string) (string, bool) {
	return extractSpan(text, '{', '}')
}

// ExtractArray returns the substring from the first '[' to the last ']'.
// ok is false when no such span exists.
func ExtractArray(text string) (string, bool) {
	return extractSpan(text, '[', ']')
}

func extractSpan(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// DecodeObject decodes the embedded JSON object in text into v.
func DecodeObject(text string, v any) error {
	return decode(text, v, ExtractObject)
}

// DecodeArray decodes the embedded JSON array in text into v.
func DecodeArray(text string, v any) error {
	return decode(text, v, ExtractArray)
}

func decode(text string, v any, extract func(string) (string, bool)) error {
	if strings.TrimSpace(text) == "" {
		return ErrNoPayload
	}
	body := text
	if span, ok := extract(text); ok {
		body = span
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	return nil
}
