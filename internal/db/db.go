package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"

	"notekeep/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type DB struct {
	conn *sql.DB
}

func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return db, nil
}

func (d *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (owner_id) REFERENCES accounts(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_owner ON notes(owner_id)`,
	}

	for _, q := range queries {
		if _, err := d.conn.Exec(q); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

// Accounts

func (d *DB) CreateAccount(fullName, email, passwordHash string) (*models.Account, error) {
	id := uuid.NewString()
	_, err := d.conn.Exec(`INSERT INTO accounts (id, full_name, email, password_hash) VALUES (?, ?, ?, ?)`,
		id, fullName, email, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return d.GetAccountByID(id)
}

func (d *DB) GetAccountByID(id string) (*models.Account, error) {
	var a models.Account
	err := d.conn.QueryRow(`SELECT id, full_name, email, password_hash, created_at FROM accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.FullName, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (d *DB) GetAccountByEmail(email string) (*models.Account, error) {
	var a models.Account
	err := d.conn.QueryRow(`SELECT id, full_name, email, password_hash, created_at FROM accounts WHERE email = ?`, email).
		Scan(&a.ID, &a.FullName, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Notes. Every lookup is keyed by (id, owner_id) so a note owned by a
// different account is indistinguishable from a missing one.

func (d *DB) CreateNote(ownerID, title, content string, tags []string) (*models.Note, error) {
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err = d.conn.Exec(`INSERT INTO notes (id, owner_id, title, content, tags) VALUES (?, ?, ?, ?, ?)`,
		id, ownerID, title, content, string(tagsJSON))
	if err != nil {
		return nil, err
	}
	return d.GetNote(id, ownerID)
}

func (d *DB) GetNote(id, ownerID string) (*models.Note, error) {
	row := d.conn.QueryRow(`SELECT id, owner_id, title, content, tags, is_pinned, created_at, updated_at
		FROM notes WHERE id = ? AND owner_id = ?`, id, ownerID)
	return scanNote(row)
}

func (d *DB) GetNotes(ownerID string) ([]models.Note, error) {
	rows, err := d.conn.Query(`SELECT id, owner_id, title, content, tags, is_pinned, created_at, updated_at
		FROM notes WHERE owner_id = ? ORDER BY is_pinned DESC, updated_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotes(rows)
}

func (d *DB) UpdateNote(id, ownerID string, patch models.NotePatch) (*models.Note, error) {
	note, err := d.GetNote(id, ownerID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		note.Title = *patch.Title
	}
	if patch.Content != nil {
		note.Content = *patch.Content
	}
	if patch.Tags != nil {
		note.Tags = *patch.Tags
	}
	if patch.IsPinned != nil {
		note.IsPinned = *patch.IsPinned
	}

	tagsJSON, err := json.Marshal(note.Tags)
	if err != nil {
		return nil, err
	}

	// CURRENT_TIMESTAMP here matches the insert default, so the column
	// stays in one format and sorts correctly.
	_, err = d.conn.Exec(`UPDATE notes SET title = ?, content = ?, tags = ?, is_pinned = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND owner_id = ?`,
		note.Title, note.Content, string(tagsJSON), note.IsPinned, id, ownerID)
	if err != nil {
		return nil, err
	}
	return d.GetNote(id, ownerID)
}

func (d *DB) SetNotePinned(id, ownerID string, pinned bool) (*models.Note, error) {
	return d.UpdateNote(id, ownerID, models.NotePatch{IsPinned: &pinned})
}

func (d *DB) DeleteNote(id, ownerID string) error {
	result, err := d.conn.Exec(`DELETE FROM notes WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchNotes returns the owner's notes whose title or content contains
// the query, case-insensitively.
func (d *DB) SearchNotes(ownerID, query string) ([]models.Note, error) {
	rows, err := d.conn.Query(`SELECT id, owner_id, title, content, tags, is_pinned, created_at, updated_at
		FROM notes
		WHERE owner_id = ? AND (instr(lower(title), lower(?)) > 0 OR instr(lower(content), lower(?)) > 0)
		ORDER BY is_pinned DESC, updated_at DESC`, ownerID, query, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotes(rows)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanNote(row scannable) (*models.Note, error) {
	var n models.Note
	var tagsJSON string
	err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &tagsJSON, &n.IsPinned, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return &n, nil
}

func collectNotes(rows *sql.Rows) ([]models.Note, error) {
	notes := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
