// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assess

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/research-discovery/pkg/types"
)

// Topic match maps the matched-topic ratio linearly from 1.5 (none) to 5.0 (all).
const (
	topicFloor = 1.5
	topicSpan  = 3.5

	// minKeywordLen is the length a topic word must exceed to count on its own.
	minKeywordLen = 3
)

// TopicMatch scores how well an idea's title and description cover the
// user's topics, rounded to one decimal place with ties to even. With no
// topics it returns the neutral score 3.
//
// A topic matches when the whole lower-cased phrase occurs in the idea
// text, or when any of its words longer than three characters does.
func TopicMatch(idea types.Idea, topics []string) float64 {
	if len(topics) == 0 {
		return types.NeutralScore
	}

	text := strings.ToLower(idea.Title + " " + idea.Description)
	matched := 0
	for _, topic := range topics {
		if topicMatches(text, strings.ToLower(strings.TrimSpace(topic))) {
			matched++
		}
	}

	ratio := float64(matched) / float64(len(topics))
	return math.RoundToEven((topicFloor+ratio*topicSpan)*10) / 10
}

func topicMatches(text, topic string) bool {
	if topic == "" {
		return false
	}
	if strings.Contains(text, topic) {
		return true
	}
	for _, word := range strings.Fields(topic) {
		if utf8.RuneCountInString(word) > minKeywordLen && strings.Contains(text, word) {
			return true
		}
	}
	return false
}
