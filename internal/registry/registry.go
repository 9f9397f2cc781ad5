// Package registry holds enrolled members and the access log in an in-process
// SQLite database. The database is opened in memory; nothing outlives the process.
package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"aerogate/internal/crypto"
	"aerogate/internal/models"
)

const (
	dateLayout = "2006-01-02"
	tsLayout   = time.RFC3339Nano
)

var (
	// ErrDuplicatePassport is returned when a passport is enrolled twice.
	ErrDuplicatePassport = errors.New("passport already registered")
	// ErrNotFound is returned when a lookup matches nothing.
	ErrNotFound = errors.New("not found")
)

const schema = `
	CREATE TABLE IF NOT EXISTS members (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		passport TEXT NOT NULL UNIQUE,
		expiry TEXT NOT NULL,
		template BLOB NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS access_log (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		passport TEXT,
		status TEXT NOT NULL,
		confidence REAL NOT NULL,
		terminal TEXT NOT NULL,
		ts TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_access_log_status ON access_log(status);
`

// Registry implements member and access-log storage.
type Registry struct {
	db     *sql.DB
	sealer *crypto.Sealer
	log    *zap.Logger
}

// New opens an empty in-memory registry. Templates are sealed with sealer.
func New(sealer *crypto.Sealer, logger *zap.Logger) (*Registry, error) {
	if sealer == nil {
		return nil, errors.New("registry: nil sealer")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}
	return &Registry{db: db, sealer: sealer, log: logger.Named("registry")}, nil
}

// Close closes the database connection.
func (r *Registry) Close() error {
	return r.db.Close()
}

// CreateMember enrolls m. Passports are unique; a second enrollment fails
// with ErrDuplicatePassport.
func (r *Registry) CreateMember(ctx context.Context, m models.Member) (models.Member, error) {
	plain, err := json.Marshal(m.Template)
	if err != nil {
		return models.Member{}, fmt.Errorf("encode template: %w", err)
	}
	sealed, err := r.sealer.Seal(plain, []byte(m.Passport))
	if err != nil {
		return models.Member{}, fmt.Errorf("seal template: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO members (id, name, email, passport, expiry, template, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.Email, m.Passport, m.Expiry.Format(dateLayout), sealed, m.CreatedAt.UTC().Format(tsLayout))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Member{}, ErrDuplicatePassport
		}
		return models.Member{}, fmt.Errorf("insert member: %w", err)
	}

	r.log.Debug("member enrolled", zap.String("member_id", m.ID))
	return m, nil
}

// Members returns every enrolled member with its template unsealed, oldest first.
func (r *Registry) Members(ctx context.Context) ([]models.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, passport, expiry, template, created_at
		FROM members ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Member
	for rows.Next() {
		m, err := r.scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MemberByPassport looks a member up by passport number.
func (r *Registry) MemberByPassport(ctx context.Context, passport string) (models.Member, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, passport, expiry, template, created_at
		FROM members WHERE passport = ?
	`, passport)
	m, err := r.scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Member{}, ErrNotFound
	}
	return m, err
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Registry) scanMember(s scanner) (models.Member, error) {
	var (
		m                 models.Member
		email             sql.NullString
		expiry, createdAt string
		sealed            []byte
	)
	if err := s.Scan(&m.ID, &m.Name, &email, &m.Passport, &expiry, &sealed, &createdAt); err != nil {
		return models.Member{}, err
	}
	m.Email = email.String

	var err error
	if m.Expiry, err = time.Parse(dateLayout, expiry); err != nil {
		return models.Member{}, fmt.Errorf("member %s: bad expiry: %w", m.ID, err)
	}
	if m.CreatedAt, err = time.Parse(tsLayout, createdAt); err != nil {
		return models.Member{}, fmt.Errorf("member %s: bad created_at: %w", m.ID, err)
	}
	plain, err := r.sealer.Open(sealed, []byte(m.Passport))
	if err != nil {
		return models.Member{}, fmt.Errorf("member %s: open template: %w", m.ID, err)
	}
	if err := json.Unmarshal(plain, &m.Template); err != nil {
		return models.Member{}, fmt.Errorf("member %s: decode template: %w", m.ID, err)
	}
	return m, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
