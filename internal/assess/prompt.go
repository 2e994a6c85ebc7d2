// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assess

import (
	"text/template"

	"github.com/pdiddy/research-discovery/pkg/types"
)

const (
	noveltyPaperLimit   = 10
	doabilityPaperLimit = 3
)

var promptFuncs = template.FuncMap{
	"inc":      func(i int) int { return i + 1 },
	"truncate": truncate,
}

var noveltyPromptTmpl = template.Must(template.New("novelty").Funcs(promptFuncs).Parse(`Assess the novelty of this research idea based on existing literature.

Research Idea:
Title: {{.Idea.Title}}
Description: {{.Idea.Description}}

Related Papers Found:
{{range $i, $p := .Papers}}{{if $i}}
{{end}}Title: {{$p.Title}}
Year: {{$p.YearString}}
Abstract: {{truncate $p.Abstract 300}}...
{{else}}No related papers were found.
{{end}}
Assess:
1. Has this specific idea been extensively explored? (Yes/Partially/No)
2. Research maturity level: Unexplored / Emerging / Active / Saturated
3. What specific gap or unexplored angle does this idea address?
4. Novelty score: Rate 1-5 (1=extensively explored, 5=highly novel). Ideas heavily covered by the papers above must receive a lower score.

Return ONLY valid JSON:
{
  "explored": "Yes/Partially/No",
  "maturity": "Unexplored/Emerging/Active/Saturated",
  "gap": "description of gap",
  "novelty_score": 1-5
}
`))

var doabilityPromptTmpl = template.Must(template.New("doability").Funcs(promptFuncs).Parse(`Assess the feasibility and doability of this research idea.

Research Idea:
Title: {{.Idea.Title}}
Description: {{.Idea.Description}}
{{if .Papers}}
Related Research Papers:
{{range $i, $p := .Papers}}{{inc $i}}. {{$p.Title}} ({{$p.YearString}})
{{end}}
Consider these papers when assessing methodology and resources.
{{end}}
Based on the idea and typical research resources, assess:
1. Data availability: Are datasets available or need to be collected? (Available/Partially/Need to Collect)
2. Methodology complexity: Can standard methods be used? (Standard/Moderate/Novel Methods Needed)
3. Estimated timeline: (3 months / 6 months / 1 year+)
4. Required expertise: (Undergraduate / Masters / PhD level)
5. Doability score: Rate 1-5 (1=very difficult, 5=highly doable)
   - Consider: data availability, methodology complexity, timeline, and expertise needed
   - Give VARIED scores (not all 3) - differentiate based on the specific challenges of THIS idea

Return ONLY valid JSON:
{
  "data_availability": "Available/Partially/Need to Collect",
  "methodology": "Standard/Moderate/Novel Methods Needed",
  "timeline": "3 months/6 months/1 year+",
  "expertise_level": "Undergraduate/Masters/PhD level",
  "doability_score": 1-5
}
`))

type promptData struct {
	Idea   types.Idea
	Papers []types.PaperRecord
}

func headPapers(papers []types.PaperRecord, n int) []types.PaperRecord {
	if len(papers) > n {
		return papers[:n]
	}
	return papers
}

func renderNoveltyPrompt(idea types.Idea, papers []types.PaperRecord) (string, error) {
	return render(noveltyPromptTmpl, promptData{Idea: idea, Papers: headPapers(papers, noveltyPaperLimit)})
}

func renderDoabilityPrompt(idea types.Idea, papers []types.PaperRecord) (string, error) {
	return render(doabilityPromptTmpl, promptData{Idea: idea, Papers: headPapers(papers, doabilityPaperLimit)})
}
