// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists uploaded papers, their analyses, and the ranked
// finalists of each analysis in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-discovery/pkg/types"
)

// ErrNotFound is returned when a paper or analysis id does not exist.
var ErrNotFound = errors.New("not found")

const timeLayout = time.RFC3339Nano

// Store manages the SQLite database and the upload directory.
type Store struct {
	db        *sql.DB
	uploadDir string
	now       func() time.Time
}

// Open opens or creates the database at cfg.Path and the upload directory.
// It creates the schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, uploadDir: cfg.UploadDir, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			path TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			uploaded_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			paper_id TEXT NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			topics TEXT NOT NULL,
			status TEXT NOT NULL,
			progress INTEGER NOT NULL,
			error TEXT,
			reader_output TEXT,
			ranking TEXT,
			created_at TEXT NOT NULL,
			completed_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_paper_id ON analyses(paper_id)`,
		`CREATE TABLE IF NOT EXISTS ideas (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			analysis_id TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
			rank INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			rationale TEXT,
			topic_tags TEXT,
			novelty_score REAL,
			doability_score REAL,
			topic_match_score REAL,
			composite_score REAL,
			novelty_assessment TEXT,
			doability_assessment TEXT,
			literature_synthesis TEXT,
			UNIQUE(analysis_id, rank)
		)`,
		`CREATE TABLE IF NOT EXISTS idea_references (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			idea_id INTEGER NOT NULL REFERENCES ideas(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			authors TEXT,
			year INTEGER,
			abstract TEXT,
			url TEXT,
			citation_count INTEGER,
			source TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_idea_references_idea_id ON idea_references(idea_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// CreatePaper copies the PDF at srcPath into the upload directory and
// registers it under a new id.
func (s *Store) CreatePaper(ctx context.Context, srcPath string) (types.UploadedPaper, error) {
	id := uuid.NewString()
	filename := filepath.Base(srcPath)
	dst := filepath.Join(s.uploadDir, id+"_"+filename)

	size, err := copyFile(srcPath, dst)
	if err != nil {
		return types.UploadedPaper{}, fmt.Errorf("storing upload: %w", err)
	}

	p := types.UploadedPaper{
		ID:         id,
		Filename:   filename,
		Path:       dst,
		SizeBytes:  size,
		UploadedAt: s.now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO papers (id, filename, path, size_bytes, uploaded_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Filename, p.Path, p.SizeBytes, p.UploadedAt.Format(timeLayout),
	)
	if err != nil {
		os.Remove(dst)
		return types.UploadedPaper{}, fmt.Errorf("inserting paper: %w", err)
	}
	return p, nil
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// GetPaper returns a registered paper.
func (s *Store) GetPaper(ctx context.Context, id string) (types.UploadedPaper, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT p.id, p.filename, p.path, p.size_bytes, p.uploaded_at,
			(SELECT count(*) FROM analyses a WHERE a.paper_id = p.id)
		 FROM papers p WHERE p.id = ?`, id)
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.UploadedPaper{}, fmt.Errorf("paper %s: %w", id, ErrNotFound)
	}
	return p, err
}

// ListPapers returns every paper, newest first, with its analysis count.
func (s *Store) ListPapers(ctx context.Context) ([]types.UploadedPaper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.filename, p.path, p.size_bytes, p.uploaded_at,
			(SELECT count(*) FROM analyses a WHERE a.paper_id = p.id)
		 FROM papers p ORDER BY p.uploaded_at DESC, p.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	papers := []types.UploadedPaper{}
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(sc scanner) (types.UploadedPaper, error) {
	var (
		p        types.UploadedPaper
		uploaded string
	)
	if err := sc.Scan(&p.ID, &p.Filename, &p.Path, &p.SizeBytes, &uploaded, &p.AnalysisCount); err != nil {
		return types.UploadedPaper{}, err
	}
	t, err := time.Parse(timeLayout, uploaded)
	if err != nil {
		return types.UploadedPaper{}, fmt.Errorf("parsing uploaded_at: %w", err)
	}
	p.UploadedAt = t
	return p, nil
}
