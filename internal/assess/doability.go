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

// Qualitative feasibility levels.
const (
	DataAvailable      = "Available"
	DataPartially      = "Partially"
	DataNeedToCollect  = "Need to Collect"
	MethodStandard     = "Standard"
	MethodModerate     = "Moderate"
	MethodNovel        = "Novel Methods Needed"
	Timeline3Months    = "3 months"
	Timeline6Months    = "6 months"
	Timeline1YearPlus  = "1 year+"
	ExpertiseUndergrad = "Undergraduate"
	ExpertiseMasters   = "Masters"
	ExpertisePhD       = "PhD level"
)

// DoabilityAssessor asks a generative backend how practical an idea is.
type DoabilityAssessor struct {
	gen  llm.Generator
	opts options
}

// NewDoabilityAssessor returns an assessor backed by gen.
func NewDoabilityAssessor(gen llm.Generator, opts ...Option) *DoabilityAssessor {
	return &DoabilityAssessor{gen: gen, opts: buildOptions(opts)}
}

type doabilityResponse struct {
	DataAvailability string `json:"data_availability"`
	Methodology      string `json:"methodology"`
	Timeline         string `json:"timeline"`
	ExpertiseLevel   string `json:"expertise_level"`
	DoabilityScore   score  `json:"doability_score"`
}

// Assess judges feasibility with the first three papers as context. It
// never fails; see the package documentation.
func (a *DoabilityAssessor) Assess(ctx context.Context, idea types.Idea, papers []types.PaperRecord) types.DoabilityAssessment {
	res, err := a.assess(ctx, idea, papers)
	switch {
	case errors.Is(err, errNoScore):
		a.opts.degraded("doability", idea, err.Error())
		res.Status, res.Reason = types.StatusDegraded, err.Error()
	case err != nil:
		a.opts.degraded("doability", idea, err.Error())
		return types.DefaultDoability(err.Error())
	}
	return res
}

func (a *DoabilityAssessor) assess(ctx context.Context, idea types.Idea, papers []types.PaperRecord) (types.DoabilityAssessment, error) {
	prompt, err := renderDoabilityPrompt(idea, papers)
	if err != nil {
		return types.DoabilityAssessment{}, fmt.Errorf("rendering prompt: %w", err)
	}
	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return types.DoabilityAssessment{}, fmt.Errorf("generating: %w", err)
	}

	var resp doabilityResponse
	if err := payload.DecodeObject(text, &resp); err != nil {
		return types.DoabilityAssessment{}, err
	}
	res := types.DoabilityAssessment{
		DataAvailability: normalizeChoice(resp.DataAvailability, DataAvailable, DataPartially, DataNeedToCollect),
		Methodology:      normalizeChoice(resp.Methodology, MethodStandard, MethodModerate, MethodNovel),
		Timeline:         normalizeChoice(resp.Timeline, Timeline3Months, Timeline6Months, Timeline1YearPlus),
		ExpertiseLevel:   normalizeChoice(resp.ExpertiseLevel, ExpertiseUndergrad, ExpertiseMasters, ExpertisePhD),
		DoabilityScore:   types.NeutralScore,
		Status:           types.StatusAssessed,
	}
	if !resp.DoabilityScore.set {
		return res, fmt.Errorf("response has no doability_score: %w", errNoScore)
	}

	a.opts.log.Debug().Str("idea", idea.Title).Float64("doability_score", resp.DoabilityScore.value).Msg("doability assessed")
	res.DoabilityScore = clamp(resp.DoabilityScore.value)
	return res, nil
}
