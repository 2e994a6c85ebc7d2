// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-discovery/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(types.StoreConfig{
		Path:      filepath.Join(dir, "db", "research.db"),
		UploadDir: filepath.Join(dir, "uploads"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// tick makes the store clock advance one second per call.
func tick(s *Store) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func writePDF(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func year(y int) *int { return &y }

func sampleRanking() types.RankingResult {
	syn := types.LiteratureSynthesis{
		Overview:  "Two lines of work.",
		KeyPapers: []types.KeyPaper{{PaperIndex: 1, Category: types.CategoryFoundational, Summary: "origin"}},
		Status:    types.StatusAssessed,
	}
	return types.RankingResult{
		TotalIdeasAnalyzed: 9,
		TopIdeas: []types.ScoredIdea{
			{
				Idea: types.Idea{Title: "Idea one", Description: "d1", Rationale: "r1", TopicTags: []string{"NLP"}},
				Papers: []types.PaperRecord{
					{Title: "P1", Abstract: "a1", Year: year(2021), Authors: []string{"Ada"}, CitationCount: 4, URL: "u1", Source: "arxiv"},
					{Title: "P2", Abstract: "a2", Authors: []string{}, URL: "u2", Source: "arxiv"},
				},
				Novelty:         types.NoveltyAssessment{NoveltyScore: 4, Explored: types.ExploredNo, Status: types.StatusAssessed},
				Doability:       types.DoabilityAssessment{DoabilityScore: 3, Status: types.StatusAssessed},
				TopicMatchScore: 5,
				CompositeScore:  3.9,
				Synthesis:       &syn,
			},
			{
				Idea:            types.Idea{Title: "Idea two", TopicTags: []string{}},
				Papers:          []types.PaperRecord{},
				Novelty:         types.DefaultNovelty("timeout"),
				Doability:       types.DefaultDoability("timeout"),
				TopicMatchScore: 1.5,
				CompositeScore:  2.55,
			},
		},
	}
}

// --- tests ---

func TestCreatePaperCopiesUpload(t *testing.T) {
	s := testStore(t)
	src := writePDF(t, "attention.pdf", "%PDF-1.4 body")

	p, err := s.CreatePaper(context.Background(), src)
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "attention.pdf", p.Filename)
	assert.Equal(t, int64(len("%PDF-1.4 body")), p.SizeBytes)
	data, err := os.ReadFile(p.Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(data))
	assert.Equal(t, p.ID+"_attention.pdf", filepath.Base(p.Path))

	got, err := s.GetPaper(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Filename, got.Filename)
	assert.True(t, p.UploadedAt.Equal(got.UploadedAt))
}

func TestCreatePaperMissingSource(t *testing.T) {
	s := testStore(t)
	_, err := s.CreatePaper(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}

func TestAnalysisLifecycle(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	p, err := s.CreatePaper(ctx, writePDF(t, "x.pdf", "x"))
	require.NoError(t, err)

	a, err := s.CreateAnalysis(ctx, p.ID, []string{"NLP", "efficiency"})
	require.NoError(t, err)
	assert.Equal(t, types.AnalysisUploaded, a.Status)
	assert.Equal(t, 10, a.Progress)

	for _, st := range []types.AnalysisStatus{types.AnalysisParsing, types.AnalysisReading, types.AnalysisSearching} {
		require.NoError(t, s.UpdateStatus(ctx, a.ID, st))
		got, err := s.GetAnalysis(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, st, got.Status)
		assert.Equal(t, st.Progress(), got.Progress)
	}

	reader := types.ReaderOutput{Summary: "s", Concepts: []string{"c"}, Ideas: []types.Idea{{Title: "i"}}}
	require.NoError(t, s.SaveReaderOutput(ctx, a.ID, reader))
	require.NoError(t, s.SaveRanking(ctx, a.ID, sampleRanking()))

	got, err := s.GetAnalysis(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AnalysisComplete, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, []string{"NLP", "efficiency"}, got.Topics)
	require.NotNil(t, got.CompletedAt)
	require.NotNil(t, got.Reader)
	assert.Equal(t, "s", got.Reader.Summary)
	require.NotNil(t, got.Ranking)
	assert.Equal(t, 9, got.Ranking.TotalIdeasAnalyzed)
}

func TestUpdateStatusRejectsError(t *testing.T) {
	s := testStore(t)
	assert.Error(t, s.UpdateStatus(context.Background(), "any", types.AnalysisError))
}

func TestMissingIDsAreNotFound(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	_, err := s.GetAnalysis(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetPaper(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetIdeas(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.UpdateStatus(ctx, "missing", types.AnalysisParsing), ErrNotFound)
	assert.ErrorIs(t, s.FailAnalysis(ctx, "missing", "boom"), ErrNotFound)
	assert.ErrorIs(t, s.SaveRanking(ctx, "missing", sampleRanking()), ErrNotFound)
}

func TestCreateAnalysisRequiresPaper(t *testing.T) {
	s := testStore(t)
	_, err := s.CreateAnalysis(context.Background(), "no-such-paper", []string{"x"})
	assert.Error(t, err, "foreign keys are enforced")
}

func TestFailAnalysisKeepsProgress(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	p, _ := s.CreatePaper(ctx, writePDF(t, "x.pdf", "x"))
	a, _ := s.CreateAnalysis(ctx, p.ID, []string{"t"})
	require.NoError(t, s.UpdateStatus(ctx, a.ID, types.AnalysisReading))

	require.NoError(t, s.FailAnalysis(ctx, a.ID, "no ideas generated"))

	got, err := s.GetAnalysis(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AnalysisError, got.Status)
	assert.Equal(t, 30, got.Progress)
	assert.Equal(t, "no ideas generated", got.Error)
	assert.Nil(t, got.CompletedAt)
}

func TestGetIdeasRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	p, _ := s.CreatePaper(ctx, writePDF(t, "x.pdf", "x"))
	a, _ := s.CreateAnalysis(ctx, p.ID, []string{"NLP"})
	require.NoError(t, s.SaveRanking(ctx, a.ID, sampleRanking()))

	ideas, err := s.GetIdeas(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, ideas, 2)

	first := ideas[0]
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, a.ID, first.AnalysisID)
	assert.Equal(t, "Idea one", first.Scored.Idea.Title)
	assert.Equal(t, []string{"NLP"}, first.Scored.Idea.TopicTags)
	assert.Equal(t, 3.9, first.Scored.CompositeScore)
	assert.Equal(t, 4.0, first.Scored.Novelty.NoveltyScore)
	assert.Equal(t, types.ExploredNo, first.Scored.Novelty.Explored)
	require.NotNil(t, first.Scored.Synthesis)
	assert.Equal(t, "Two lines of work.", first.Scored.Synthesis.Overview)

	require.Len(t, first.Scored.Papers, 2)
	assert.Equal(t, "P1", first.Scored.Papers[0].Title)
	require.NotNil(t, first.Scored.Papers[0].Year)
	assert.Equal(t, 2021, *first.Scored.Papers[0].Year)
	assert.Nil(t, first.Scored.Papers[1].Year)
	assert.Equal(t, []string{}, first.Scored.Papers[1].Authors)

	second := ideas[1]
	assert.Equal(t, 2, second.Rank)
	assert.Nil(t, second.Scored.Synthesis)
	assert.Equal(t, types.StatusDegraded, second.Scored.Novelty.Status)
	assert.Empty(t, second.Scored.Papers)
}

func TestSaveRankingReplacesEarlierIdeas(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	p, _ := s.CreatePaper(ctx, writePDF(t, "x.pdf", "x"))
	a, _ := s.CreateAnalysis(ctx, p.ID, []string{"NLP"})
	require.NoError(t, s.SaveRanking(ctx, a.ID, sampleRanking()))

	again := sampleRanking()
	again.TopIdeas = again.TopIdeas[1:]
	require.NoError(t, s.SaveRanking(ctx, a.ID, again))

	ideas, err := s.GetIdeas(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, "Idea two", ideas[0].Scored.Idea.Title)
	assert.Equal(t, 1, ideas[0].Rank)
}

func TestSaveRankingRejectsNonFiniteScore(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	p, _ := s.CreatePaper(ctx, writePDF(t, "x.pdf", "x"))
	a, _ := s.CreateAnalysis(ctx, p.ID, []string{"NLP"})
	require.NoError(t, s.UpdateStatus(ctx, a.ID, types.AnalysisSearching))

	bad := sampleRanking()
	bad.TopIdeas[0].Novelty.NoveltyScore = math.NaN()
	err := s.SaveRanking(ctx, a.ID, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshaling ranking")

	got, err := s.GetAnalysis(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AnalysisSearching, got.Status, "nothing is written")
	ideas, err := s.GetIdeas(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, ideas)
}

func TestMarshalColumn(t *testing.T) {
	got, err := marshalColumn("authors", []string{"Ada"})
	require.NoError(t, err)
	assert.Equal(t, `["Ada"]`, got)

	_, err = marshalColumn("novelty assessment", types.NoveltyAssessment{NoveltyScore: math.Inf(1)})
	assert.ErrorContains(t, err, "marshaling novelty assessment")
}

func TestListPapersAndAnalysesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	tick(s)

	older, _ := s.CreatePaper(ctx, writePDF(t, "older.pdf", "o"))
	newer, _ := s.CreatePaper(ctx, writePDF(t, "newer.pdf", "n"))
	a1, _ := s.CreateAnalysis(ctx, older.ID, []string{"a"})
	a2, _ := s.CreateAnalysis(ctx, older.ID, []string{"b"})

	papers, err := s.ListPapers(ctx)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, newer.ID, papers[0].ID)
	assert.Equal(t, 0, papers[0].AnalysisCount)
	assert.Equal(t, 2, papers[1].AnalysisCount)

	analyses, err := s.ListAnalyses(ctx, older.ID)
	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.Equal(t, a2.ID, analyses[0].ID)
	assert.Equal(t, a1.ID, analyses[1].ID)

	none, err := s.ListAnalyses(ctx, newer.ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	p, _ := s.CreatePaper(ctx, writePDF(t, "paper.pdf", "x"))
	a, _ := s.CreateAnalysis(ctx, p.ID, []string{"NLP"})
	require.NoError(t, s.SaveRanking(ctx, a.ID, sampleRanking()))

	var jsonBuf bytes.Buffer
	require.NoError(t, s.ExportJSON(ctx, a.ID, &jsonBuf))
	var fromJSON Export
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &fromJSON))
	assert.Equal(t, a.ID, fromJSON.Analysis.ID)
	require.NotNil(t, fromJSON.Paper)
	assert.Equal(t, "paper.pdf", fromJSON.Paper.Filename)
	assert.Len(t, fromJSON.Ideas, 2)

	var yamlBuf bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, a.ID, &yamlBuf))
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))
	assert.Contains(t, fromYAML, "analysis")
	assert.Contains(t, yamlBuf.String(), "title: Idea one")

	assert.ErrorIs(t, s.ExportYAML(ctx, "missing", &yamlBuf), ErrNotFound)
}
