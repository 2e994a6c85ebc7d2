// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-discovery/pkg/types"
)

// Export is the full record of one analysis: the paper it read, its stage
// outputs, and its ranked finalists.
type Export struct {
	Analysis types.Analysis       `json:"analysis" yaml:"analysis"`
	Paper    *types.UploadedPaper `json:"paper,omitempty" yaml:"paper,omitempty"`
	Ideas    []types.RankedIdea   `json:"ideas" yaml:"ideas"`
}

// LoadExport gathers everything stored for an analysis.
func (s *Store) LoadExport(ctx context.Context, analysisID string) (Export, error) {
	a, err := s.GetAnalysis(ctx, analysisID)
	if err != nil {
		return Export{}, err
	}
	ideas, err := s.GetIdeas(ctx, analysisID)
	if err != nil {
		return Export{}, err
	}
	exp := Export{Analysis: a, Ideas: ideas}
	if p, err := s.GetPaper(ctx, a.PaperID); err == nil {
		exp.Paper = &p
	}
	return exp, nil
}

// ExportYAML writes an analysis as YAML to w.
func (s *Store) ExportYAML(ctx context.Context, analysisID string, w io.Writer) error {
	exp, err := s.LoadExport(ctx, analysisID)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(exp); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes an analysis as indented JSON to w.
func (s *Store) ExportJSON(ctx context.Context, analysisID string, w io.Writer) error {
	exp, err := s.LoadExport(ctx, analysisID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exp); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}
