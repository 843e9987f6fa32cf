package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"panel-cli/internal/model"
)

// ErrCardNotFound reports an id that does not exist in storage.
var ErrCardNotFound = errors.New("card not found")

// NameExistsError rejects a duplicate card name on create/update.
type NameExistsError struct {
	Name string
}

func (e NameExistsError) Error() string {
	return fmt.Sprintf("card name %q already exists", e.Name)
}

// Storage is the sqlite-backed card store. Positions are 1-based and kept
// dense: delete re-packs, create appends at the tail.
type Storage struct {
	db *sql.DB
}

// OpenStorage opens (creating as needed) the card database at path.
// Use ":memory:" for tests.
func OpenStorage(ctx context.Context, path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Pragmas for local usage. WAL enables one writer + many readers;
	// busy_timeout helps avoid "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	schema := `
CREATE TABLE IF NOT EXISTS cards (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	icon        TEXT NOT NULL,
	url         TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	position    INTEGER NOT NULL,
	created_at  TEXT NOT NULL DEFAULT (datetime('now'))
);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error { return s.db.Close() }

// List returns cards ordered by position, optionally filtered by a
// case-insensitive substring match on name or description.
func (s *Storage) List(ctx context.Context, search string) ([]model.Card, error) {
	const base = `SELECT id, name, icon, url, description, position FROM cards`

	var rows *sql.Rows
	var err error
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		rows, err = s.db.QueryContext(ctx, base+` ORDER BY position`)
	} else {
		q := "%" + escapeLike(search) + "%"
		rows, err = s.db.QueryContext(ctx,
			base+` WHERE lower(name) LIKE ? ESCAPE '\' OR lower(description) LIKE ? ESCAPE '\' ORDER BY position`,
			q, q)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []model.Card
	for rows.Next() {
		var c model.Card
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.URL, &c.Description, &c.Order); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Get fetches one card by id.
func (s *Storage) Get(ctx context.Context, id string) (model.Card, error) {
	var c model.Card
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, icon, url, description, position FROM cards WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Icon, &c.URL, &c.Description, &c.Order)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Card{}, ErrCardNotFound
	}
	if err != nil {
		return model.Card{}, err
	}
	return c, nil
}

// Create appends a new card at the tail of the order.
func (s *Storage) Create(ctx context.Context, fields model.CardFields) (model.Card, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Card{}, err
	}
	defer tx.Rollback()

	exists, err := nameInUse(ctx, tx, fields.Name, "")
	if err != nil {
		return model.Card{}, err
	}
	if exists {
		return model.Card{}, NameExistsError{Name: fields.Name}
	}

	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) + 1 FROM cards`).Scan(&next); err != nil {
		return model.Card{}, err
	}

	c := model.Card{
		ID:          uuid.NewString(),
		Name:        fields.Name,
		Icon:        fields.Icon,
		URL:         fields.URL,
		Description: fields.Description,
		Order:       next,
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO cards (id, name, icon, url, description, position) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Icon, c.URL, c.Description, c.Order)
	if err != nil {
		return model.Card{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Card{}, err
	}
	return c, nil
}

// Update replaces the editable fields of a card.
func (s *Storage) Update(ctx context.Context, id string, fields model.CardFields) (model.Card, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Card{}, err
	}
	defer tx.Rollback()

	var position int
	err = tx.QueryRowContext(ctx, `SELECT position FROM cards WHERE id = ?`, id).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Card{}, ErrCardNotFound
	}
	if err != nil {
		return model.Card{}, err
	}

	exists, err := nameInUse(ctx, tx, fields.Name, id)
	if err != nil {
		return model.Card{}, err
	}
	if exists {
		return model.Card{}, NameExistsError{Name: fields.Name}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE cards SET name = ?, icon = ?, url = ?, description = ? WHERE id = ?`,
		fields.Name, fields.Icon, fields.URL, fields.Description, id)
	if err != nil {
		return model.Card{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Card{}, err
	}
	return model.Card{
		ID:          id,
		Name:        fields.Name,
		Icon:        fields.Icon,
		URL:         fields.URL,
		Description: fields.Description,
		Order:       position,
	}, nil
}

// Delete removes a card and re-packs positions to stay dense 1..N.
func (s *Storage) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrCardNotFound
	}

	if err := repack(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Reorder applies a full order map in one transaction. Every referenced
// id must exist; positions are re-packed afterwards so the result is
// dense even if the client sent gaps.
func (s *Storage) Reorder(ctx context.Context, orders []model.OrderEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, o := range orders {
		res, err := tx.ExecContext(ctx, `UPDATE cards SET position = ? WHERE id = ?`, o.Order, o.ID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrCardNotFound
		}
	}

	if err := repack(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func nameInUse(ctx context.Context, tx *sql.Tx, name, excludeID string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards WHERE lower(name) = lower(?) AND id != ?`,
		name, excludeID).Scan(&n)
	return n > 0, err
}

// repack rewrites positions as 1..N following the current order.
func repack(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM cards ORDER BY position, created_at, id`)
	if err != nil {
		return err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, `UPDATE cards SET position = ? WHERE id = ?`, i+1, id); err != nil {
			return err
		}
	}
	return nil
}
