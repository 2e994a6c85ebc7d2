// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"prose around", "Here you go:\n{\"a\":1}\nHope this helps.", `{"a":1}`, true},
		{"markdown fence", "```json\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`, true},
		{"no braces", "nothing here", "", false},
		{"close before open", "} then {", "", false},
		{"only open", "{ unterminated", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractObject(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractArray(t *testing.T) {
	got, ok := ExtractArray("Ideas:\n[{\"title\":\"x\"}, {\"title\":\"y\"}]\nDone")
	require.True(t, ok)
	assert.Equal(t, `[{"title":"x"}, {"title":"y"}]`, got)

	_, ok = ExtractArray(`{"title":"x"}`)
	assert.False(t, ok)
}

func TestDecodeObject(t *testing.T) {
	var v struct {
		Score float64 `json:"novelty_score"`
		Gap   string  `json:"gap"`
	}
	err := DecodeObject("Assessment follows.\n{\"novelty_score\": 4, \"gap\": \"cross-lingual\"}", &v)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v.Score)
	assert.Equal(t, "cross-lingual", v.Gap)
}

func TestDecodeObjectErrors(t *testing.T) {
	var v map[string]any

	assert.ErrorIs(t, DecodeObject("   ", &v), ErrNoPayload)
	assert.Error(t, DecodeObject("no json at all", &v))
	assert.Error(t, DecodeObject(`{"a": 1,}`, &v))
	// Two separate objects span into invalid JSON.
	assert.Error(t, DecodeObject(`{"a":1} and {"b":2}`, &v))
}

func TestDecodeArray(t *testing.T) {
	var ideas []struct {
		Title string `json:"title"`
	}
	require.NoError(t, DecodeArray("```\n[{\"title\":\"A\"},{\"title\":\"B\"}]\n```", &ideas))
	require.Len(t, ideas, 2)
	assert.Equal(t, "B", ideas[1].Title)
}
