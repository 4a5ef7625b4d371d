package mysql

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	domain "github.com/bryanwahyu/petmoji/internal/domain/audit"
)

//go:embed migrations.sql
var migrations string

const selectColumns = `id, session_id, provider, model, prompt_version, status, error_kind, error_detail,
  emoji, comment, confidence, photo_mime, photo_bytes, photo_url, duration_ms, created_at`

const insertQuery = `
INSERT INTO petmoji_analyses
  (id, session_id, provider, model, prompt_version, status, error_kind, error_detail,
   emoji, comment, confidence, photo_mime, photo_bytes, photo_url, duration_ms, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  status=VALUES(status), error_kind=VALUES(error_kind), error_detail=VALUES(error_detail),
  emoji=VALUES(emoji), comment=VALUES(comment), confidence=VALUES(confidence),
  photo_url=VALUES(photo_url), duration_ms=VALUES(duration_ms);
`

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// EnsureSchema creates the analyses table when missing
func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, migrations)
	return err
}

// Save inserts an analysis record
func (r *AuditRepository) Save(ctx context.Context, a *domain.Record) error {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, insertQuery,
		string(a.ID), stringOrDash(a.SessionID), a.Provider, a.Model, a.PromptVersion,
		string(a.Status), a.ErrorKind, a.ErrorDetail, a.Emoji, a.Comment, nullFloat(a.Confidence),
		a.PhotoMIME, a.PhotoBytes, a.PhotoURL, a.DurationMS, createdAt.UTC(),
	)
	return err
}

// Paginate returns a page of analysis records ordered by created_at desc
func (r *AuditRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Record, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	q := `SELECT ` + selectColumns + `
FROM petmoji_analyses
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		a, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Get returns sql.ErrNoRows when the id is unknown
func (r *AuditRepository) Get(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	q := `SELECT ` + selectColumns + ` FROM petmoji_analyses WHERE id=? LIMIT 1;`
	return scanRecord(r.db.QueryRowContext(ctx, q, string(id)))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*domain.Record, error) {
	var (
		a          domain.Record
		id, status string
		confidence sql.NullFloat64
	)
	if err := s.Scan(&id, &a.SessionID, &a.Provider, &a.Model, &a.PromptVersion, &status,
		&a.ErrorKind, &a.ErrorDetail, &a.Emoji, &a.Comment, &confidence,
		&a.PhotoMIME, &a.PhotoBytes, &a.PhotoURL, &a.DurationMS, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.ID = domain.RecordID(id)
	a.Status = domain.Status(status)
	a.SessionID = dashToEmpty(a.SessionID)
	a.Confidence = floatPtr(confidence)
	return &a, nil
}
