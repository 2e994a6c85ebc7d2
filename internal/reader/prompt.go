// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reader

import "text/template"

var extractPromptTmpl = template.Must(template.New("extract").Parse(`You are a research analyst. Analyze this research paper and extract key information.

Paper text:
{{.Text}}

Please extract and return the following in JSON format:
1. summary: A 3-4 sentence summary of the paper's key contributions
2. concepts: List of 10-15 key concepts, terms, or methodologies (as strings)
3. findings: List of 3-5 main findings or results (as strings)
4. limitations: List of limitations mentioned by authors (as strings)
5. datasets: List of datasets mentioned in the paper (as strings)
6. future_work: List of future work suggestions mentioned by authors (as strings)

Return ONLY valid JSON with these fields:
{
  "summary": "This paper presents...",
  "concepts": ["neural networks", "attention mechanism"],
  "findings": ["The model achieves..."],
  "limitations": ["Limited to..."],
  "datasets": ["ImageNet"],
  "future_work": ["Extending to..."]
}
`))

type ideasPromptData struct {
	Summary     string
	Concepts    string
	Findings    string
	Limitations string
	FutureWork  string
	Topics      string
}

var ideasPromptTmpl = template.Must(template.New("ideas").Parse(`You are a research advisor helping generate novel research ideas based on a paper.

Paper Summary: {{.Summary}}

Key Concepts: {{.Concepts}}

Main Findings: {{.Findings}}

Limitations: {{.Limitations}}

Future Work Suggested: {{.FutureWork}}

User's Research Interests: {{.Topics}}

Generate 8-10 follow-up research ideas that could extend this work. Each idea should:
- Build on the paper's contributions
- Address limitations or explore new directions
- Align with the user's topics of interest where possible
- Be specific and actionable

For each idea, provide:
1. title: A concise, descriptive title (5-10 words)
2. description: A 2-3 sentence description of the research idea
3. rationale: Why this is an interesting research direction (1-2 sentences)
4. topic_tags: List of relevant topics from the user's interests that match this idea

Return ONLY valid JSON as an array of ideas:
[
  {
    "title": "Applying Transformers to Time Series Forecasting",
    "description": "Extend the transformer architecture to multivariate time series prediction...",
    "rationale": "While transformers excel at sequence modeling...",
    "topic_tags": ["Machine Learning", "Time Series"]
  }
]
`))
