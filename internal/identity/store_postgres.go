package identity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"docgate/pkg/platform/sentinel"
)

// PostgresStore persists users in PostgreSQL. Result history is a jsonb
// column so appends stay single-record updates, matching the atomicity the
// services rely on.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema for the users and admins tables. Applied by deployments and the
// integration tests; the store itself never migrates implicitly.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id               TEXT PRIMARY KEY,
	first_name       TEXT NOT NULL,
	last_name        TEXT NOT NULL,
	email            TEXT NOT NULL,
	phone_number     TEXT NOT NULL DEFAULT '',
	phone_digits     TEXT NOT NULL DEFAULT '',
	organization     TEXT NOT NULL DEFAULT '',
	working_domain   TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'pending',
	rejection_reason TEXT NOT NULL DEFAULT '',
	results          JSONB NOT NULL DEFAULT '[]',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email));
CREATE UNIQUE INDEX IF NOT EXISTS users_phone_digits_key ON users (phone_digits) WHERE phone_digits <> '';

CREATE TABLE IF NOT EXISTS admins (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	name          TEXT NOT NULL DEFAULT 'Admin',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS admins_email_key ON admins (lower(email));
`

// EnsureSchema creates the tables when absent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure identity schema: %w", err)
	}
	return nil
}

const userColumns = `id, first_name, last_name, email, phone_number, organization, working_domain, status, rejection_reason, results, created_at`

func (s *PostgresStore) Create(ctx context.Context, user *User) error {
	results, err := json.Marshal(resultsOrEmpty(user.Results))
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, email, phone_number, phone_digits, organization, working_domain, status, rejection_reason, results, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		user.ID, user.FirstName, user.LastName, NormalizeEmail(user.Email),
		user.PhoneNumber, PhoneDigits(user.PhoneNumber),
		user.Organization, user.WorkingDomain,
		user.Status, user.RejectionReason, results, user.CreatedAt,
	)
	if err != nil {
		return translateUnique(err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = $1`, NormalizeEmail(email))
	return scanUser(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return collectUsers(rows)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE status = $1 ORDER BY created_at`, status)
	if err != nil {
		return nil, fmt.Errorf("list users by status: %w", err)
	}
	return collectUsers(rows)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status Status, rejectionReason string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET status = $2, rejection_reason = $3
		WHERE id = $1
		RETURNING `+userColumns, id, status, rejectionReason)
	return scanUser(row)
}

func (s *PostgresStore) AppendResult(ctx context.Context, id string, record ResultRecord) (*User, error) {
	entry, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal result record: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET results = results || $2::jsonb
		WHERE id = $1
		RETURNING `+userColumns, id, entry)
	return scanUser(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u       User
		results []byte
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PhoneNumber,
		&u.Organization, &u.WorkingDomain, &u.Status, &u.RejectionReason, &results, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if err := json.Unmarshal(results, &u.Results); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	return &u, nil
}

func collectUsers(rows *sql.Rows) ([]*User, error) {
	defer rows.Close()
	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

// translateUnique maps a 23505 to the sentinel for the violated constraint so
// the service can name the duplicated field.
func translateUnique(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		switch pqErr.Constraint {
		case "users_phone_digits_key":
			return sentinel.ErrDuplicatePhone
		default:
			return sentinel.ErrDuplicateEmail
		}
	}
	return fmt.Errorf("create user: %w", err)
}

func resultsOrEmpty(records []ResultRecord) []ResultRecord {
	if records == nil {
		return []ResultRecord{}
	}
	return records
}

// PostgresAdminStore persists direct admin accounts.
type PostgresAdminStore struct {
	db *sql.DB
}

func NewPostgresAdminStore(db *sql.DB) *PostgresAdminStore {
	return &PostgresAdminStore{db: db}
}

func (s *PostgresAdminStore) Create(ctx context.Context, admin *Admin) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (id, email, password_hash, name, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		admin.ID, NormalizeEmail(admin.Email), admin.PasswordHash, admin.Name, admin.CreatedAt)
	if err != nil {
		return translateUnique(err)
	}
	return nil
}

func (s *PostgresAdminStore) FindByEmail(ctx context.Context, email string) (*Admin, error) {
	var a Admin
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, created_at FROM admins WHERE lower(email) = $1`,
		NormalizeEmail(email)).
		Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &a, nil
}
