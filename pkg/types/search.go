// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SearchStatus classifies how a literature search ended.
type SearchStatus string

const (
	// SearchOK means the backend answered and the records were parsed.
	SearchOK SearchStatus = "ok"
	// SearchExhausted means every attempt failed transiently.
	SearchExhausted SearchStatus = "exhausted"
	// SearchMalformed means the response could not be interpreted.
	SearchMalformed SearchStatus = "malformed"
	// SearchCancelled means the context ended before a result was obtained.
	SearchCancelled SearchStatus = "cancelled"
)

// SearchOutcome is the result of one adapter search. Papers is empty for
// every status other than SearchOK, and may be empty for SearchOK too.
type SearchOutcome struct {
	Papers   []PaperRecord `json:"papers" yaml:"papers"`
	Status   SearchStatus  `json:"status" yaml:"status"`
	Attempts int           `json:"attempts" yaml:"attempts"`
	Err      string        `json:"error,omitempty" yaml:"error,omitempty"`
}
