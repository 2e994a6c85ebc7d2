// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/research-discovery/pkg/types"
)

// CreateAnalysis registers a new analysis of paperID in the uploaded state.
func (s *Store) CreateAnalysis(ctx context.Context, paperID string, topics []string) (types.Analysis, error) {
	if topics == nil {
		topics = []string{}
	}
	a := types.Analysis{
		ID:        uuid.NewString(),
		PaperID:   paperID,
		Topics:    topics,
		Status:    types.AnalysisUploaded,
		Progress:  types.AnalysisUploaded.Progress(),
		CreatedAt: s.now().UTC(),
	}
	topicsJSON, err := marshalColumn("topics", a.Topics)
	if err != nil {
		return types.Analysis{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, paper_id, topics, status, progress, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.PaperID, topicsJSON, string(a.Status), a.Progress, a.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return types.Analysis{}, fmt.Errorf("inserting analysis: %w", err)
	}
	return a, nil
}

// UpdateStatus moves an analysis to status and sets the matching progress.
// Use FailAnalysis for the error state and SaveRanking for completion.
func (s *Store) UpdateStatus(ctx context.Context, id string, status types.AnalysisStatus) error {
	if status.Progress() < 0 {
		return fmt.Errorf("status %q has no fixed progress", status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET status = ?, progress = ? WHERE id = ?`,
		string(status), status.Progress(), id,
	)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	return requireRow(res, "analysis", id)
}

// SaveReaderOutput stores the reader stage result.
func (s *Store) SaveReaderOutput(ctx context.Context, id string, out types.ReaderOutput) error {
	data, err := marshalColumn("reader output", out)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE analyses SET reader_output = ? WHERE id = ?`, data, id)
	if err != nil {
		return fmt.Errorf("saving reader output: %w", err)
	}
	return requireRow(res, "analysis", id)
}

// FailAnalysis marks an analysis as failed with msg. Progress is left where
// the failing stage reached.
func (s *Store) FailAnalysis(ctx context.Context, id, msg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET status = ?, error = ? WHERE id = ?`,
		string(types.AnalysisError), msg, id,
	)
	if err != nil {
		return fmt.Errorf("failing analysis: %w", err)
	}
	return requireRow(res, "analysis", id)
}

// SaveRanking stores the ranking result, writes one idea row per finalist
// with ranks from 1 and one reference row per retained paper, and marks the
// analysis complete. It runs in a single transaction and replaces any
// finalists saved earlier for the analysis.
func (s *Store) SaveRanking(ctx context.Context, id string, result types.RankingResult) error {
	rankingJSON, err := marshalColumn("ranking", result)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	completed := s.now().UTC().Format(timeLayout)
	res, err := tx.ExecContext(ctx,
		`UPDATE analyses SET ranking = ?, status = ?, progress = ?, completed_at = ?, error = NULL WHERE id = ?`,
		rankingJSON, string(types.AnalysisComplete), types.AnalysisComplete.Progress(), completed, id,
	)
	if err != nil {
		return fmt.Errorf("saving ranking: %w", err)
	}
	if err := requireRow(res, "analysis", id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM ideas WHERE analysis_id = ?`, id); err != nil {
		return fmt.Errorf("deleting old ideas: %w", err)
	}

	ideaStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ideas (analysis_id, rank, title, description, rationale, topic_tags,
			novelty_score, doability_score, topic_match_score, composite_score,
			novelty_assessment, doability_assessment, literature_synthesis)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing idea insert: %w", err)
	}
	defer ideaStmt.Close()

	refStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO idea_references (idea_id, position, title, authors, year, abstract, url, citation_count, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing reference insert: %w", err)
	}
	defer refStmt.Close()

	for i, si := range result.TopIdeas {
		tagsJSON, err := marshalColumn("topic tags", si.Idea.TopicTags)
		if err != nil {
			return err
		}
		noveltyJSON, err := marshalColumn("novelty assessment", si.Novelty)
		if err != nil {
			return err
		}
		doabilityJSON, err := marshalColumn("doability assessment", si.Doability)
		if err != nil {
			return err
		}
		var synthesis sql.NullString
		if si.Synthesis != nil {
			data, err := marshalColumn("literature synthesis", si.Synthesis)
			if err != nil {
				return err
			}
			synthesis = sql.NullString{String: data, Valid: true}
		}

		r, err := ideaStmt.ExecContext(ctx,
			id, i+1, si.Idea.Title, si.Idea.Description, si.Idea.Rationale, tagsJSON,
			si.Novelty.NoveltyScore, si.Doability.DoabilityScore, si.TopicMatchScore, si.CompositeScore,
			noveltyJSON, doabilityJSON, synthesis,
		)
		if err != nil {
			return fmt.Errorf("inserting idea %d: %w", i+1, err)
		}
		ideaID, err := r.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading idea id: %w", err)
		}

		for j, p := range si.Papers {
			authorsJSON, err := marshalColumn("authors", p.Authors)
			if err != nil {
				return err
			}
			var year sql.NullInt64
			if p.Year != nil {
				year = sql.NullInt64{Int64: int64(*p.Year), Valid: true}
			}
			if _, err := refStmt.ExecContext(ctx,
				ideaID, j, p.Title, authorsJSON, year, p.Abstract, p.URL, p.CitationCount, p.Source,
			); err != nil {
				return fmt.Errorf("inserting reference for idea %d: %w", i+1, err)
			}
		}
	}

	return tx.Commit()
}

// marshalColumn encodes v for a JSON text column.
func marshalColumn(name string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshaling %s: %w", name, err)
	}
	return string(data), nil
}

const analysisColumns = `id, paper_id, topics, status, progress, error, reader_output, ranking, created_at, completed_at`

// GetAnalysis returns an analysis with its stored stage outputs.
func (s *Store) GetAnalysis(ctx context.Context, id string) (types.Analysis, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE id = ?`, id)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Analysis{}, fmt.Errorf("analysis %s: %w", id, ErrNotFound)
	}
	return a, err
}

// ListAnalyses returns the analyses of paperID, newest first.
func (s *Store) ListAnalyses(ctx context.Context, paperID string) ([]types.Analysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE paper_id = ? ORDER BY created_at DESC, rowid DESC`, paperID)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	analyses := []types.Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}

func scanAnalysis(sc scanner) (types.Analysis, error) {
	var (
		a                    types.Analysis
		topics, status       string
		errMsg, reader, rank sql.NullString
		created              string
		completed            sql.NullString
	)
	if err := sc.Scan(&a.ID, &a.PaperID, &topics, &status, &a.Progress, &errMsg, &reader, &rank, &created, &completed); err != nil {
		return types.Analysis{}, err
	}
	a.Status = types.AnalysisStatus(status)
	a.Error = errMsg.String

	if err := json.Unmarshal([]byte(topics), &a.Topics); err != nil {
		return types.Analysis{}, fmt.Errorf("decoding topics: %w", err)
	}
	if reader.Valid {
		a.Reader = &types.ReaderOutput{}
		if err := json.Unmarshal([]byte(reader.String), a.Reader); err != nil {
			return types.Analysis{}, fmt.Errorf("decoding reader output: %w", err)
		}
	}
	if rank.Valid {
		a.Ranking = &types.RankingResult{}
		if err := json.Unmarshal([]byte(rank.String), a.Ranking); err != nil {
			return types.Analysis{}, fmt.Errorf("decoding ranking: %w", err)
		}
	}

	var err error
	if a.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return types.Analysis{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if completed.Valid {
		t, err := time.Parse(timeLayout, completed.String)
		if err != nil {
			return types.Analysis{}, fmt.Errorf("parsing completed_at: %w", err)
		}
		a.CompletedAt = &t
	}
	return a, nil
}

// GetIdeas returns the stored finalists of an analysis ordered by rank,
// each with its references.
func (s *Store) GetIdeas(ctx context.Context, analysisID string) ([]types.RankedIdea, error) {
	if _, err := s.GetAnalysis(ctx, analysisID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, rank, title, description, rationale, topic_tags, topic_match_score, composite_score,
			novelty_assessment, doability_assessment, literature_synthesis
		 FROM ideas WHERE analysis_id = ? ORDER BY rank`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("querying ideas: %w", err)
	}
	defer rows.Close()

	ideas := []types.RankedIdea{}
	for rows.Next() {
		var (
			ri                 types.RankedIdea
			tags               string
			novelty, doability string
			synthesis          sql.NullString
		)
		si := &ri.Scored
		if err := rows.Scan(&ri.ID, &ri.Rank, &si.Idea.Title, &si.Idea.Description, &si.Idea.Rationale, &tags,
			&si.TopicMatchScore, &si.CompositeScore, &novelty, &doability, &synthesis); err != nil {
			return nil, fmt.Errorf("scanning idea: %w", err)
		}
		ri.AnalysisID = analysisID
		if err := decodeAll(
			jsonField{"topic_tags", tags, &si.Idea.TopicTags},
			jsonField{"novelty_assessment", novelty, &si.Novelty},
			jsonField{"doability_assessment", doability, &si.Doability},
		); err != nil {
			return nil, err
		}
		if synthesis.Valid {
			si.Synthesis = &types.LiteratureSynthesis{}
			if err := json.Unmarshal([]byte(synthesis.String), si.Synthesis); err != nil {
				return nil, fmt.Errorf("decoding literature_synthesis: %w", err)
			}
		}
		ideas = append(ideas, ri)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range ideas {
		refs, err := s.references(ctx, ideas[i].ID)
		if err != nil {
			return nil, err
		}
		ideas[i].Scored.Papers = refs
	}
	return ideas, nil
}

func (s *Store) references(ctx context.Context, ideaID int64) ([]types.PaperRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, authors, year, abstract, url, citation_count, source
		 FROM idea_references WHERE idea_id = ? ORDER BY position`, ideaID)
	if err != nil {
		return nil, fmt.Errorf("querying references: %w", err)
	}
	defer rows.Close()

	refs := []types.PaperRecord{}
	for rows.Next() {
		var (
			p       types.PaperRecord
			authors string
			year    sql.NullInt64
		)
		if err := rows.Scan(&p.Title, &authors, &year, &p.Abstract, &p.URL, &p.CitationCount, &p.Source); err != nil {
			return nil, fmt.Errorf("scanning reference: %w", err)
		}
		if err := json.Unmarshal([]byte(authors), &p.Authors); err != nil {
			return nil, fmt.Errorf("decoding authors: %w", err)
		}
		if year.Valid {
			y := int(year.Int64)
			p.Year = &y
		}
		refs = append(refs, p)
	}
	return refs, rows.Err()
}

type jsonField struct {
	name string
	data string
	dst  any
}

func decodeAll(fields ...jsonField) error {
	for _, f := range fields {
		if err := json.Unmarshal([]byte(f.data), f.dst); err != nil {
			return fmt.Errorf("decoding %s: %w", f.name, err)
		}
	}
	return nil
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
