// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"mediacatalog/internal/database"
	"mediacatalog/internal/models"
)

// seedTime is the created_at of seeded protected categories, so they always
// list first.
var seedTime = time.Unix(0, 0).UTC()

// RelationalStore keeps one row per record. Films and series have their own
// tables; items of standard categories live in category_items, joined to
// categories by foreign key with cascading delete. Views are ordered newest
// first by created_at, with the time-ordered row id as tiebreaker.
type RelationalStore struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

// NewRelationalStore returns a RelationalStore over an already migrated
// database. dialect is database.Postgres or database.SQLite. Queries are written with $N placeholders and rebound for SQLite.
func NewRelationalStore(db *sql.DB, dialect string) *RelationalStore {
	return &RelationalStore{db: db, dialect: dialect, now: time.Now}
}

// Name identifies the backend.
func (s *RelationalStore) Name() string { return "relational:" + s.dialect }

// Ping checks the database connection.
func (s *RelationalStore) Ping(ctx context.Context) error {
	return unavailable("ping", s.db.PingContext(ctx))
}

// q rebinds $N placeholders to ?N for SQLite.
func (s *RelationalStore) q(query string) string {
	if s.dialect == database.SQLite {
		return strings.ReplaceAll(query, "$", "?")
	}
	return query
}

// isUniqueViolation reports whether err is a unique or primary key
// constraint failure from either driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE")
		}
	}
	return false
}

// writeErr classifies a failed write.
func writeErr(op string, err error) error {
	if isUniqueViolation(err) {
		return ErrDuplicateRecord
	}
	return unavailable(op, err)
}

// scope is the table and optional parent filter behind a collection ref.
type scope struct {
	table      string
	categoryID string
}

func (sc scope) isCategory() bool { return sc.categoryID != "" }

func scopeOf(ref models.CollectionRef) (scope, error) {
	switch ref.Kind {
	case models.CollectionFilms:
		return scope{table: "films"}, nil
	case models.CollectionSeries:
		return scope{table: "series"}, nil
	case models.CollectionCategory:
		if ref.CategoryID == "" || models.IsProtected(ref.CategoryID) {
			return scope{}, ErrCategoryNotFound
		}
		return scope{table: "category_items", categoryID: ref.CategoryID}, nil
	}
	return scope{}, fmt.Errorf("unknown collection kind %q", ref.Kind)
}

// requireCategory returns ErrCategoryNotFound unless a standard category
// with the scope's id exists.
func (s *RelationalStore) requireCategory(ctx context.Context, sc scope) error {
	if !sc.isCategory() {
		return nil
	}
	var one int
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT 1 FROM categories WHERE id = $1 AND kind = 'standard'`),
		sc.categoryID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrCategoryNotFound
	}
	return unavailable("find category", err)
}

// Fetch returns the collection newest first. Handles carry row ids.
func (s *RelationalStore) Fetch(ctx context.Context, ref models.CollectionRef) ([]Entry, error) {
	sc, err := scopeOf(ref)
	if err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, sc); err != nil {
		return nil, err
	}

	query := `SELECT id, title, image, url, summary FROM ` + sc.table
	var args []any
	if sc.isCategory() {
		query += ` WHERE category_id = $1`
		args = append(args, sc.categoryID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, unavailable("list "+ref.String(), err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			id  uuid.UUID
			rec models.MediaRecord
		)
		if err := rows.Scan(&id, &rec.Title, &rec.Image, &rec.URL, &rec.Summary); err != nil {
			return nil, unavailable("scan "+ref.String(), err)
		}
		entries = append(entries, Entry{Handle: Handle{Index: len(entries), ID: id}, Record: rec})
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list "+ref.String(), err)
	}
	return entries, nil
}

// Append inserts rec as a new row and returns its id.
func (s *RelationalStore) Append(ctx context.Context, ref models.CollectionRef, rec models.MediaRecord) (Handle, error) {
	sc, err := scopeOf(ref)
	if err != nil {
		return Handle{}, err
	}
	if err := s.requireCategory(ctx, sc); err != nil {
		return Handle{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Handle{}, fmt.Errorf("generate id: %w", err)
	}

	if sc.isCategory() {
		_, err = s.db.ExecContext(ctx, s.q(`
			INSERT INTO category_items (id, category_id, title, image, url, summary, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`),
			id, sc.categoryID, rec.Title, rec.Image, rec.URL, rec.Summary, s.now().UTC(),
		)
	} else {
		_, err = s.db.ExecContext(ctx, s.q(`
			INSERT INTO `+sc.table+` (id, title, image, url, summary, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`),
			id, rec.Title, rec.Image, rec.URL, rec.Summary, s.now().UTC(),
		)
	}
	if err != nil {
		return Handle{}, unavailable("insert into "+ref.String(), err)
	}
	return Handle{ID: id}, nil
}

// Replace updates every field of the row addressed by h.ID. The row keeps
// its created_at and therefore its position. Titles are not unique per
// table, so an update may repeat another row's title.
func (s *RelationalStore) Replace(ctx context.Context, ref models.CollectionRef, h Handle, rec models.MediaRecord) error {
	sc, err := scopeOf(ref)
	if err != nil {
		return err
	}
	if h.ID == uuid.Nil {
		return ErrStaleHandle
	}

	query := `UPDATE ` + sc.table + ` SET title = $1, image = $2, url = $3, summary = $4 WHERE id = $5`
	args := []any{rec.Title, rec.Image, rec.URL, rec.Summary, h.ID}
	if sc.isCategory() {
		query += ` AND category_id = $6`
		args = append(args, sc.categoryID)
	}

	res, err := s.db.ExecContext(ctx, s.q(query), args...)
	if err != nil {
		return unavailable("update "+ref.String(), err)
	}
	return affectedOne(res, "update "+ref.String())
}

// Remove deletes the row addressed by h.ID.
func (s *RelationalStore) Remove(ctx context.Context, ref models.CollectionRef, h Handle) error {
	sc, err := scopeOf(ref)
	if err != nil {
		return err
	}
	if h.ID == uuid.Nil {
		return ErrStaleHandle
	}

	query := `DELETE FROM ` + sc.table + ` WHERE id = $1`
	args := []any{h.ID}
	if sc.isCategory() {
		query += ` AND category_id = $2`
		args = append(args, sc.categoryID)
	}

	res, err := s.db.ExecContext(ctx, s.q(query), args...)
	if err != nil {
		return unavailable("delete from "+ref.String(), err)
	}
	return affectedOne(res, "delete from "+ref.String())
}

// affectedOne maps a zero-row result to ErrStaleHandle.
func affectedOne(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable(op, err)
	}
	if n == 0 {
		return ErrStaleHandle
	}
	return nil
}

func (s *RelationalStore) listCategoryRows(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, icon, storage_key
		FROM categories
		ORDER BY created_at, id`)
	if err != nil {
		return nil, unavailable("list categories", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.StorageKey); err != nil {
			return nil, unavailable("scan category", err)
		}
		c.Kind = models.KindOf(c.ID)
		c.Items = []models.MediaRecord{}
		cats = append(cats, c)
	}
	return cats, unavailable("list categories", rows.Err())
}

// seedProtected inserts any missing protected category.
func (s *RelationalStore) seedProtected(ctx context.Context) error {
	for _, d := range models.DefaultCategories() {
		_, err := s.db.ExecContext(ctx, s.q(`
			INSERT INTO categories (id, name, icon, storage_key, kind, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING`),
			d.ID, d.Name, d.Icon, d.StorageKey, string(d.Kind), seedTime,
		)
		if err != nil {
			return unavailable("seed categories", err)
		}
	}
	return nil
}

// ListCategories returns categories in creation order with the items of
// standard categories attached, newest item first.
func (s *RelationalStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.listCategoryRows(ctx)
	if err != nil {
		return nil, err
	}
	if !hasProtected(cats) {
		if err := s.seedProtected(ctx); err != nil {
			return nil, err
		}
		if cats, err = s.listCategoryRows(ctx); err != nil {
			return nil, err
		}
	}

	byID := make(map[string]int, len(cats))
	for i, c := range cats {
		byID[c.ID] = i
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, title, image, url, summary
		FROM category_items
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, unavailable("list category items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			catID string
			rec   models.MediaRecord
		)
		if err := rows.Scan(&catID, &rec.Title, &rec.Image, &rec.URL, &rec.Summary); err != nil {
			return nil, unavailable("scan category item", err)
		}
		if i, ok := byID[catID]; ok {
			cats[i].Items = append(cats[i].Items, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list category items", err)
	}
	return cats, nil
}

// CreateCategory inserts a standard category. The primary key and the
// unique index on lower(name) reject duplicates.
func (s *RelationalStore) CreateCategory(ctx context.Context, c models.Category) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO categories (id, name, icon, storage_key, kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`),
		c.ID, c.Name, c.Icon, c.StorageKey, string(models.CategoryStandard), s.now().UTC(),
	)
	if err != nil {
		return writeErr("create category", err)
	}
	return nil
}

// DeleteCategory removes a standard category. Its items go with it through
// ON DELETE CASCADE.
func (s *RelationalStore) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		s.q(`DELETE FROM categories WHERE id = $1 AND kind = 'standard'`), id)
	if err != nil {
		return unavailable("delete category", err)
	}
	if err := affectedOne(res, "delete category"); err != nil {
		if errors.Is(err, ErrStaleHandle) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}
