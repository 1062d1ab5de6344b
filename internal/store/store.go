// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides the collection storage layer. Two implementations
// satisfy the same Store interface: BlobStore keeps every collection as one
// serialized value in a key-value backend, RelationalStore keeps one row per
// record in SQL tables.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"mediacatalog/internal/models"
)

// Handle addresses one record inside a collection. BlobStore handles carry
// the position; RelationalStore handles carry the row id. A handle is only
// meaningful for the view it was read from.
type Handle struct {
	Index int
	ID    uuid.UUID
}

// Entry is one record of a fetched view together with its handle.
type Entry struct {
	Handle Handle
	Record models.MediaRecord
}

// Store is the capability set every backend implements.
type Store interface {
	// Fetch returns the current ordered view of a collection.
	Fetch(ctx context.Context, ref models.CollectionRef) ([]Entry, error)

	// Append adds a record at the backend's natural end of the collection.
	Append(ctx context.Context, ref models.CollectionRef, rec models.MediaRecord) (Handle, error)

	// Replace overwrites the record addressed by h. Returns ErrStaleHandle if
	// h no longer addresses a record.
	Replace(ctx context.Context, ref models.CollectionRef, h Handle, rec models.MediaRecord) error

	// Remove deletes the record addressed by h. Returns ErrStaleHandle if h no
	// longer addresses a record.
	Remove(ctx context.Context, ref models.CollectionRef, h Handle) error

	// ListCategories returns every category, seeding the protected pair first
	// if any is missing. Items are populated for standard categories only.
	ListCategories(ctx context.Context) ([]models.Category, error)

	// CreateCategory persists a new standard category with no items.
	CreateCategory(ctx context.Context, c models.Category) error

	// DeleteCategory removes a standard category and all of its items.
	// Returns ErrCategoryNotFound if no such category exists.
	DeleteCategory(ctx context.Context, id string) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Name identifies the backend in logs and diagnostics.
	Name() string
}

var (
	// ErrDuplicateRecord is returned when the backend rejects a write because
	// of a uniqueness constraint.
	ErrDuplicateRecord = errors.New("duplicate record")

	// ErrCategoryNotFound is returned when a category ref or id names no
	// existing standard category.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrStaleHandle is returned when a handle no longer addresses a record,
	// typically because another request removed it after resolution.
	ErrStaleHandle = errors.New("record no longer exists")
)

// UnavailableError wraps a failure of the backend itself. The raw backend
// error text is kept for diagnosis.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// unavailable wraps err as an UnavailableError unless it is nil.
func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UnavailableError{Op: op, Err: err}
}

// hasProtected reports whether both protected ids are present in cats.
func hasProtected(cats []models.Category) bool {
	var films, series bool
	for _, c := range cats {
		switch c.ID {
		case models.FilmsCategoryID:
			films = true
		case models.SeriesCategoryID:
			series = true
		}
	}
	return films && series
}
