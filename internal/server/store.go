// Package server implements the timekeep backend: account management and
// whole-document storage keyed by user identity, served over HTTP with
// bearer-token auth.
package server

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"timekeep/internal/model"
)

// Store errors surfaced to handlers.
var (
	ErrEmailTaken   = errors.New("email is already registered")
	ErrUserNotFound = errors.New("user not found")
)

// UserRecord is an account row, password hash included. Handlers strip
// the hash before anything leaves the process.
type UserRecord struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// User converts the record to its public shape.
func (u UserRecord) User() model.User {
	return model.User{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Store wraps the SQLite database holding users and their documents.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore opens (or creates) the database at path and initializes the
// schema.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the database file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initializeSchema() error {
	for _, pragma := range PragmaStatements() {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %q: %w", pragma, err)
		}
	}
	for _, schema := range AllTableSchemas() {
		if _, err := s.db.Exec(schema); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	for _, index := range AllIndexes() {
		if _, err := s.db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return s.recordSchemaVersion()
}

func (s *Store) recordSchemaVersion() error {
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, ?)",
		SchemaVersion, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

// CreateUser inserts a new account. The caller supplies a bcrypt hash.
func (s *Store) CreateUser(name, email, passwordHash string) (UserRecord, error) {
	record := UserRecord{
		ID:           "u_" + uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	_, err := s.db.Exec(
		"INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		record.ID, record.Name, record.Email, record.PasswordHash, record.CreatedAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return UserRecord{}, ErrEmailTaken
		}
		return UserRecord{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return record, nil
}

// UserByEmail looks up an account for login.
func (s *Store) UserByEmail(email string) (UserRecord, error) {
	return s.scanUser("SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?", email)
}

// UserByID looks up an account by its identity.
func (s *Store) UserByID(id string) (UserRecord, error) {
	return s.scanUser("SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?", id)
}

func (s *Store) scanUser(query string, arg any) (UserRecord, error) {
	var record UserRecord
	var createdAt int64
	err := s.db.QueryRow(query, arg).Scan(
		&record.ID, &record.Name, &record.Email, &record.PasswordHash, &createdAt,
	)
	if err == sql.ErrNoRows {
		return UserRecord{}, ErrUserNotFound
	}
	if err != nil {
		return UserRecord{}, fmt.Errorf("failed to query user: %w", err)
	}
	record.CreatedAt = time.Unix(createdAt, 0)
	return record, nil
}

// UpdateUserName changes an account's display name.
func (s *Store) UpdateUserName(id, name string) error {
	return s.updateUserField("UPDATE users SET name = ? WHERE id = ?", name, id)
}

// UpdateUserPassword changes an account's password hash.
func (s *Store) UpdateUserPassword(id, passwordHash string) error {
	return s.updateUserField("UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
}

func (s *Store) updateUserField(query string, args ...any) error {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser removes an account; the document row goes with it via the
// foreign key cascade.
func (s *Store) DeleteUser(id string) error {
	res, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetDocument returns the raw document body for a user, or (nil, false)
// when the user has never stored one.
func (s *Store) GetDocument(userID string) ([]byte, bool, error) {
	var body string
	err := s.db.QueryRow("SELECT body FROM documents WHERE user_id = ?", userID).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query document: %w", err)
	}
	return []byte(body), true, nil
}

// PutDocument replaces (or creates) the user's document wholesale.
func (s *Store) PutDocument(userID string, body []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO documents (user_id, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		userID, string(body), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite surfaces constraint failures in the message.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
