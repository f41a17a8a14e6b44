// Package store persists the glossary and the history of correction runs in
// a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/entfix/internal/corrector"
	"github.com/valpere/entfix/internal/glossary"
	"github.com/valpere/entfix/internal/scorer"
)

// ErrNotFound is returned when an ID does not match any row.
var ErrNotFound = errors.New("store: not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	-- glossary rows keep insertion order through rowid
	CREATE TABLE IF NOT EXISTS glossary (
		id TEXT PRIMARY KEY,
		term TEXT NOT NULL,
		term_lang TEXT NOT NULL DEFAULT '',
		canonical_form TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(term, term_lang, canonical_form)
	);

	-- runs stores one row per orchestrated translate-correct-score run
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		service TEXT NOT NULL DEFAULT '',
		baseline TEXT NOT NULL,
		corrected TEXT NOT NULL,
		report TEXT NOT NULL,
		score_before REAL NOT NULL,
		score_after REAL NOT NULL,
		composite REAL NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_glossary_lang ON glossary(term_lang);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GlossaryRecord is a persisted glossary entry.
type GlossaryRecord struct {
	ID        string
	Entry     glossary.Entry
	CreatedAt time.Time
}

// AddGlossaryEntry stores e and returns its ID. Adding an exact duplicate is
// a no-op that returns the existing ID.
func (s *Store) AddGlossaryEntry(ctx context.Context, e glossary.Entry) (string, error) {
	e = normalizeEntry(e)
	if e.Term == "" || e.CanonicalForm == "" {
		return "", fmt.Errorf("%w: term and canonical form are required", glossary.ErrMalformed)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO glossary (id, term, term_lang, canonical_form) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), e.Term, e.TermLang, e.CanonicalForm); err != nil {
		return "", err
	}

	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM glossary WHERE term = ? AND term_lang = ? AND canonical_form = ?`,
		e.Term, e.TermLang, e.CanonicalForm).Scan(&id)
	return id, err
}

// ImportGlossary stores all entries in one transaction and returns how many
// were new.
func (s *Store) ImportGlossary(ctx context.Context, entries []glossary.Entry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO glossary (id, term, term_lang, canonical_form) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	added := 0
	for _, e := range entries {
		e = normalizeEntry(e)
		res, err := stmt.ExecContext(ctx, uuid.NewString(), e.Term, e.TermLang, e.CanonicalForm)
		if err != nil {
			return 0, fmt.Errorf("failed to insert %q: %w", e.Term, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// ListGlossary returns stored entries in insertion order. A non-empty lang
// keeps only entries tagged with exactly that language.
func (s *Store) ListGlossary(ctx context.Context, lang string) ([]GlossaryRecord, error) {
	query := `SELECT id, term, term_lang, canonical_form, created_at FROM glossary`
	var args []any
	if lang != "" {
		query += ` WHERE lower(term_lang) = lower(?)`
		args = append(args, lang)
	}
	query += ` ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []GlossaryRecord
	for rows.Next() {
		var r GlossaryRecord
		if err := rows.Scan(&r.ID, &r.Entry.Term, &r.Entry.TermLang, &r.Entry.CanonicalForm, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// LoadGlossary builds a glossary store from the database. A non-empty lang
// keeps entries tagged with that language plus untagged ones.
func (s *Store) LoadGlossary(ctx context.Context, lang string) (*glossary.Store, error) {
	records, err := s.ListGlossary(ctx, "")
	if err != nil {
		return nil, err
	}

	entries := make([]glossary.Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, r.Entry)
	}
	return glossary.FromEntries(entries).ForLanguage(lang), nil
}

// DeleteGlossaryEntry removes a glossary entry by ID.
func (s *Store) DeleteGlossaryEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM glossary WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: glossary entry %s", ErrNotFound, id)
	}
	return nil
}

// Run is one recorded pipeline run.
type Run struct {
	ID         string
	SourceText string
	SourceLang string
	TargetLang string
	Service    string
	Baseline   string
	Corrected  string
	Report     corrector.Report
	Metrics    scorer.Metrics
	CreatedAt  time.Time
}

// SaveRun stores r under a fresh ID, which is returned. A zero CreatedAt is
// set to the current time.
func (s *Store) SaveRun(ctx context.Context, r Run) (string, error) {
	report, err := json.Marshal(r.Report)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source_text, source_lang, target_lang, service, baseline, corrected, report, score_before, score_after, composite, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, normalizeText(r.SourceText), r.SourceLang, r.TargetLang, r.Service, r.Baseline, r.Corrected, string(report),
		r.Metrics.Before, r.Metrics.After, r.Metrics.Composite, r.CreatedAt)
	if err != nil {
		return "", err
	}
	return id, nil
}

const runColumns = `id, source_text, source_lang, target_lang, service, baseline, corrected, report, score_before, score_after, composite, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var report string
	if err := sc.Scan(&r.ID, &r.SourceText, &r.SourceLang, &r.TargetLang, &r.Service, &r.Baseline, &r.Corrected, &report,
		&r.Metrics.Before, &r.Metrics.After, &r.Metrics.Composite, &r.CreatedAt); err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(report), &r.Report); err != nil {
		return Run{}, fmt.Errorf("failed to decode report of run %s: %w", r.ID, err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns the run with the given ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ClearRuns removes all run history and returns the number of rows deleted.
func (s *Store) ClearRuns(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// normalizeText trims whitespace and applies Unicode NFC normalization so
// that equal text in different encodings is stored once.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

func normalizeEntry(e glossary.Entry) glossary.Entry {
	return glossary.Entry{
		Term:          normalizeText(e.Term),
		TermLang:      strings.TrimSpace(e.TermLang),
		CanonicalForm: normalizeText(e.CanonicalForm),
	}
}
