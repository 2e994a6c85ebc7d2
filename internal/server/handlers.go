// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/research-discovery/pkg/types"
)

type statusResponse struct {
	JobID    string               `json:"job_id"`
	Status   types.AnalysisStatus `json:"status"`
	Progress int                  `json:"progress"`
	Error    *string              `json:"error"`
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := s.store.GetAnalysis(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "Job not found")
		return
	}
	resp := statusResponse{JobID: id, Status: a.Status, Progress: a.Progress}
	if a.Error != "" {
		resp.Error = &a.Error
	}
	writeJSON(w, http.StatusOK, resp)
}

type resultsResponse struct {
	JobID              string             `json:"job_id"`
	Filename           string             `json:"filename"`
	PaperSummary       string             `json:"paper_summary"`
	Concepts           []string           `json:"concepts"`
	Ideas              []types.ScoredIdea `json:"ideas"`
	TotalIdeasAnalyzed int                `json:"total_ideas_analyzed"`
}

func (s *Server) getResults(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := s.store.GetAnalysis(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "Job not found")
		return
	}
	if a.Status != types.AnalysisComplete {
		writeError(w, http.StatusConflict, "Analysis not complete")
		return
	}

	resp := resultsResponse{JobID: id, Concepts: []string{}, Ideas: []types.ScoredIdea{}}
	if p, err := s.store.GetPaper(r.Context(), a.PaperID); err == nil {
		resp.Filename = p.Filename
	}
	if a.Reader != nil {
		resp.PaperSummary = a.Reader.Summary
		if a.Reader.Concepts != nil {
			resp.Concepts = a.Reader.Concepts
		}
	}
	if a.Ranking != nil {
		if a.Ranking.TopIdeas != nil {
			resp.Ideas = a.Ranking.TopIdeas
		}
		resp.TotalIdeasAnalyzed = a.Ranking.TotalIdeasAnalyzed
	}
	writeJSON(w, http.StatusOK, resp)
}

type analysisResponse struct {
	Analysis types.Analysis       `json:"analysis"`
	Paper    *types.UploadedPaper `json:"paper"`
	Ideas    []types.RankedIdea   `json:"ideas"`
}

func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := s.store.GetAnalysis(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "Analysis not found")
		return
	}
	ideas, err := s.store.GetIdeas(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "Analysis not found")
		return
	}
	resp := analysisResponse{Analysis: a, Ideas: ideas}
	if p, err := s.store.GetPaper(r.Context(), a.PaperID); err == nil {
		resp.Paper = &p
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listPapers(w http.ResponseWriter, r *http.Request) {
	papers, err := s.store.ListPapers(r.Context())
	if err != nil {
		s.writeStoreError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"papers": papers, "total": len(papers)})
}

func (s *Server) listPaperAnalyses(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.store.GetPaper(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "Paper not found")
		return
	}
	analyses, err := s.store.ListAnalyses(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"paper": p, "analyses": analyses, "total": len(analyses)})
}
