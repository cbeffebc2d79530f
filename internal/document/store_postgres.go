package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"docgate/pkg/platform/sentinel"
)

// PostgresStore persists documents in PostgreSQL. The scoring result and
// admin review live in jsonb columns so each update stays a single-record
// write; concurrent scoring and review resolve by last write wins at the
// row level.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema for the documents table. Applied by deployments and the integration
// tests; the store itself never migrates implicitly.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
	id                  TEXT PRIMARY KEY,
	user_id             TEXT NOT NULL REFERENCES users (id),
	document_name       TEXT NOT NULL,
	document_type       TEXT NOT NULL,
	file_path           TEXT NOT NULL,
	file_size           BIGINT NOT NULL DEFAULT 0,
	mime_type           TEXT NOT NULL DEFAULT '',
	upload_date         TIMESTAMPTZ NOT NULL DEFAULT now(),
	verification_status TEXT NOT NULL DEFAULT 'pending',
	verification_result JSONB NOT NULL DEFAULT '{}',
	admin_review        JSONB NOT NULL DEFAULT '{}',
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS documents_user_id_idx ON documents (user_id);
`

// EnsureSchema creates the table when absent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure document schema: %w", err)
	}
	return nil
}

const docColumns = `id, user_id, document_name, document_type, file_path, file_size, mime_type, upload_date, verification_status, verification_result, admin_review, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, doc *Document) error {
	result, err := json.Marshal(doc.VerificationResult)
	if err != nil {
		return fmt.Errorf("marshal verification result: %w", err)
	}
	review, err := json.Marshal(doc.AdminReview)
	if err != nil {
		return fmt.Errorf("marshal admin review: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (`+docColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		doc.ID, doc.UserID, doc.DocumentName, doc.DocumentType,
		doc.FilePath, doc.FileSize, doc.MimeType, doc.UploadDate,
		doc.VerificationStatus, result, review, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+docColumns+` FROM documents WHERE id = $1`, id)
	return scanDocument(row)
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]*Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+docColumns+` FROM documents WHERE user_id = $1 ORDER BY upload_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents by user: %w", err)
	}
	return collectDocuments(rows)
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]*Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+docColumns+` FROM documents ORDER BY upload_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return collectDocuments(rows)
}

func (s *PostgresStore) UpdateVerification(ctx context.Context, id string, status VerificationStatus, result VerificationResult, updatedAt time.Time) (*Document, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal verification result: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE documents SET verification_status = $2, verification_result = $3, updated_at = $4
		WHERE id = $1
		RETURNING `+docColumns, id, status, payload, updatedAt)
	return scanDocument(row)
}

func (s *PostgresStore) ApplyReview(ctx context.Context, id string, status VerificationStatus, review AdminReview, updatedAt time.Time) (*Document, error) {
	payload, err := json.Marshal(review)
	if err != nil {
		return nil, fmt.Errorf("marshal admin review: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE documents SET verification_status = $2, admin_review = $3, updated_at = $4
		WHERE id = $1
		RETURNING `+docColumns, id, status, payload, updatedAt)
	return scanDocument(row)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var (
		d      Document
		result []byte
		review []byte
	)
	err := row.Scan(&d.ID, &d.UserID, &d.DocumentName, &d.DocumentType,
		&d.FilePath, &d.FileSize, &d.MimeType, &d.UploadDate,
		&d.VerificationStatus, &result, &review, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}
	if err := json.Unmarshal(result, &d.VerificationResult); err != nil {
		return nil, fmt.Errorf("unmarshal verification result: %w", err)
	}
	if err := json.Unmarshal(review, &d.AdminReview); err != nil {
		return nil, fmt.Errorf("unmarshal admin review: %w", err)
	}
	return &d, nil
}

func collectDocuments(rows *sql.Rows) ([]*Document, error) {
	defer rows.Close()
	var out []*Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}
