// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assess

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/research-discovery/internal/llm"
	"github.com/pdiddy/research-discovery/internal/payload"
	"github.com/pdiddy/research-discovery/pkg/types"
)

// NoveltyAssessor asks a generative backend how explored an idea is.
type NoveltyAssessor struct {
	gen  llm.Generator
	opts options
}

// NewNoveltyAssessor returns an assessor backed by gen.
func NewNoveltyAssessor(gen llm.Generator, opts ...Option) *NoveltyAssessor {
	return &NoveltyAssessor{gen: gen, opts: buildOptions(opts)}
}

type noveltyResponse struct {
	Explored     string `json:"explored"`
	Maturity     string `json:"maturity"`
	Gap          string `json:"gap"`
	NoveltyScore score  `json:"novelty_score"`
}

// Assess judges the idea against the first ten papers. It never fails; see
// the package documentation.
func (a *NoveltyAssessor) Assess(ctx context.Context, idea types.Idea, papers []types.PaperRecord) types.NoveltyAssessment {
	res, err := a.assess(ctx, idea, papers)
	switch {
	case errors.Is(err, errNoScore):
		a.opts.degraded("novelty", idea, err.Error())
		res.Status, res.Reason = types.StatusDegraded, err.Error()
	case err != nil:
		a.opts.degraded("novelty", idea, err.Error())
		return types.DefaultNovelty(err.Error())
	}
	return res
}

func (a *NoveltyAssessor) assess(ctx context.Context, idea types.Idea, papers []types.PaperRecord) (types.NoveltyAssessment, error) {
	prompt, err := renderNoveltyPrompt(idea, papers)
	if err != nil {
		return types.NoveltyAssessment{}, fmt.Errorf("rendering prompt: %w", err)
	}
	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return types.NoveltyAssessment{}, fmt.Errorf("generating: %w", err)
	}

	var resp noveltyResponse
	if err := payload.DecodeObject(text, &resp); err != nil {
		return types.NoveltyAssessment{}, err
	}
	res := types.NoveltyAssessment{
		Explored:     normalizeChoice(resp.Explored, types.ExploredYes, types.ExploredPartially, types.ExploredNo),
		Maturity:     normalizeChoice(resp.Maturity, types.MaturityUnexplored, types.MaturityEmerging, types.MaturityActive, types.MaturitySaturated),
		Gap:          resp.Gap,
		NoveltyScore: types.NeutralScore,
		Status:       types.StatusAssessed,
	}
	if !resp.NoveltyScore.set {
		return res, fmt.Errorf("response has no novelty_score: %w", errNoScore)
	}
	res.NoveltyScore = clamp(resp.NoveltyScore.value)
	return res, nil
}
