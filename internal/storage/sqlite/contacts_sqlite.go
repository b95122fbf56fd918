// Package sqlite provides a contact store backed by an embedded SQLite database.
//
// Each SaveRequest runs in one SQL transaction, so a batch is either fully
// written or not written at all. Labeled values are stored as JSON columns.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/illmade-knight/contact-sync/pkg/contactstore"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ContactStore implements contactstore.Store on SQLite.
type ContactStore struct {
	conn               *sql.DB
	path               string
	defaultContainerID string
}

// Open creates or opens the database at path and initializes the schema.
//
// The caller MUST call Close() when done.
func Open(ctx context.Context, path string) (*ContactStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(5 * time.Minute)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", "PRAGMA foreign_keys=ON"} {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s := &ContactStore{conn: conn, path: path, defaultContainerID: contactstore.DefaultContainerID}
	if err := s.initSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *ContactStore) Close() error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.conn = nil
	return nil
}

func (s *ContactStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS access_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS containers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contacts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		container_id TEXT NOT NULL,
		given_name TEXT NOT NULL,
		family_name TEXT NOT NULL,
		emails TEXT NOT NULL,  -- JSON array
		phones TEXT NOT NULL,  -- JSON array
		urls TEXT NOT NULL,    -- JSON array
		created_at TEXT NOT NULL,
		FOREIGN KEY (container_id) REFERENCES containers(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_contacts_container ON contacts(container_id);
	`
	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := s.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO access_state (id, status) VALUES (1, ?)`, string(contactstore.AuthStatusNotDetermined)); err != nil {
		return fmt.Errorf("failed to seed authorization: %w", err)
	}
	if _, err := s.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO containers (id, name) VALUES (?, ?)`, s.defaultContainerID, "On My Device"); err != nil {
		return fmt.Errorf("failed to seed default container: %w", err)
	}
	return nil
}

// --- Authorization ---

func (s *ContactStore) AuthorizationStatus(ctx context.Context) (contactstore.AuthStatus, error) {
	var raw string
	if err := s.conn.QueryRowContext(ctx, `SELECT status FROM access_state WHERE id = 1`).Scan(&raw); err != nil {
		return "", fmt.Errorf("failed to read authorization: %w", err)
	}
	switch status := contactstore.AuthStatus(raw); status {
	case contactstore.AuthStatusNotDetermined, contactstore.AuthStatusRestricted,
		contactstore.AuthStatusDenied, contactstore.AuthStatusAuthorized:
		return status, nil
	default:
		return contactstore.AuthStatusUnknown, nil
	}
}

// RequestAccess grants access unless it was restricted, and records the answer.
func (s *ContactStore) RequestAccess(ctx context.Context) (bool, error) {
	status, err := s.AuthorizationStatus(ctx)
	if err != nil {
		return false, err
	}
	if status == contactstore.AuthStatusRestricted {
		return false, nil
	}
	if err := s.SetAuthorization(ctx, contactstore.AuthStatusAuthorized); err != nil {
		return false, err
	}
	return true, nil
}

// SetAuthorization overwrites the recorded authorization status.
func (s *ContactStore) SetAuthorization(ctx context.Context, status contactstore.AuthStatus) error {
	if _, err := s.conn.ExecContext(ctx, `UPDATE access_state SET status = ? WHERE id = 1`, string(status)); err != nil {
		return fmt.Errorf("failed to update authorization: %w", err)
	}
	return nil
}

// --- Containers ---

// AddContainer registers a container. Adding an existing ID is a no-op.
func (s *ContactStore) AddContainer(ctx context.Context, c contactstore.Container) error {
	if _, err := s.conn.ExecContext(ctx, `INSERT OR IGNORE INTO containers (id, name) VALUES (?, ?)`, c.ID, c.Name); err != nil {
		return fmt.Errorf("failed to add container %s: %w", c.ID, err)
	}
	return nil
}

func (s *ContactStore) Containers(ctx context.Context) ([]contactstore.Container, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, name FROM containers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query containers: %w", err)
	}
	defer rows.Close()

	var out []contactstore.Container
	for rows.Next() {
		var c contactstore.Container
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan container: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// --- Contacts ---

func (s *ContactStore) FetchContacts(ctx context.Context, containerID string, keys []contactstore.Key) ([]contactstore.Handle, error) {
	exists, err := containerExists(ctx, s.conn, containerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("container %s: %w", containerID, contactstore.ErrNotFound)
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, given_name, family_name, emails, phones, urls
		FROM contacts WHERE container_id = ? ORDER BY seq`, containerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	handles := make([]contactstore.Handle, 0)
	for rows.Next() {
		var (
			id                   string
			native               contactstore.NativeContact
			emails, phones, urls string
		)
		if err := rows.Scan(&id, &native.GivenName, &native.FamilyName, &emails, &phones, &urls); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		if err := unmarshalLabeled(emails, &native.Emails); err != nil {
			return nil, err
		}
		if err := unmarshalLabeled(phones, &native.Phones); err != nil {
			return nil, err
		}
		if err := unmarshalLabeled(urls, &native.URLs); err != nil {
			return nil, err
		}
		handles = append(handles, contactstore.Handle{
			ID:          id,
			ContainerID: containerID,
			Fields:      contactstore.Project(native, keys),
		})
	}
	return handles, rows.Err()
}

// Execute applies req in one transaction.
func (s *ContactStore) Execute(ctx context.Context, req *contactstore.SaveRequest) error {
	if req == nil || req.Len() == 0 {
		return contactstore.ErrEmptyRequest
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for i, op := range req.Operations() {
		switch op.Kind {
		case contactstore.OpAdd:
			if err := insertContact(ctx, tx, s.containerFor(op), op.Contact, now); err != nil {
				return fmt.Errorf("operation %d: %w", i, err)
			}
		case contactstore.OpDelete:
			res, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, op.Handle.ID)
			if err != nil {
				return fmt.Errorf("operation %d: failed to delete contact: %w", i, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("operation %d: %w", i, err)
			}
			if n == 0 {
				return fmt.Errorf("operation %d: contact %s: %w", i, op.Handle.ID, contactstore.ErrNotFound)
			}
		default:
			return fmt.Errorf("operation %d: unsupported kind %s", i, op.Kind)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *ContactStore) containerFor(op contactstore.Operation) string {
	if op.ContainerID == "" {
		return s.defaultContainerID
	}
	return op.ContainerID
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func containerExists(ctx context.Context, q queryer, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM containers WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up container %s: %w", id, err)
	}
	return true, nil
}

func insertContact(ctx context.Context, tx *sql.Tx, containerID string, c contactstore.NativeContact, createdAt string) error {
	exists, err := containerExists(ctx, tx, containerID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("container %s: %w", containerID, contactstore.ErrNotFound)
	}

	emails, err := marshalLabeled(c.Emails)
	if err != nil {
		return err
	}
	phones, err := marshalLabeled(c.Phones)
	if err != nil {
		return err
	}
	urls, err := marshalLabeled(c.URLs)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO contacts (id, container_id, given_name, family_name, emails, phones, urls, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), containerID, c.GivenName, c.FamilyName, emails, phones, urls, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

func marshalLabeled(values []contactstore.LabeledValue) (string, error) {
	if values == nil {
		values = []contactstore.LabeledValue{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to marshal labeled values: %w", err)
	}
	return string(b), nil
}

func unmarshalLabeled(raw string, dst *[]contactstore.LabeledValue) error {
	var values []contactstore.LabeledValue
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return fmt.Errorf("failed to unmarshal labeled values: %w", err)
	}
	if len(values) > 0 {
		*dst = values
	}
	return nil
}
