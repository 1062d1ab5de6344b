// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog implements the catalog operations on top of a store.Store:
// listing and position-addressed editing of films, series and category
// items, and category management. The service never inspects which backend
// it runs on.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mediacatalog/internal/models"
	"mediacatalog/internal/slug"
	"mediacatalog/internal/store"
	"mediacatalog/internal/validate"
)

// Service is the catalog orchestrator. It is safe for concurrent use as long
// as the underlying store is.
type Service struct {
	store    store.Store
	resolver *Resolver
}

// New returns a Service over s.
func New(s store.Store) *Service {
	return &Service{store: s, resolver: NewResolver(s)}
}

// CollectionFor returns the collection behind a category id. films and
// series address the top-level collections.
func (s *Service) CollectionFor(categoryID string) models.CollectionRef {
	return models.CategoryRef(categoryID)
}

// categoryMissing maps the store's unknown-category error.
func categoryMissing(err error) error {
	if errors.Is(err, store.ErrCategoryNotFound) {
		return &NotFoundError{Noun: "Category", Err: err}
	}
	return err
}

func ok(format string, args ...any) models.Result {
	return models.Result{Success: true, Message: fmt.Sprintf(format, args...)}
}

// List returns the records of ref in the backend's order.
func (s *Service) List(ctx context.Context, ref models.CollectionRef) ([]models.MediaRecord, error) {
	view, err := s.store.Fetch(ctx, ref)
	if err != nil {
		return nil, categoryMissing(err)
	}
	out := make([]models.MediaRecord, len(view))
	for i, e := range view {
		out[i] = e.Record
	}
	return out, nil
}

// Add validates in and appends it to ref. A record whose title exactly
// matches an existing one is rejected.
func (s *Service) Add(ctx context.Context, ref models.CollectionRef, in models.MediaInput) (models.Result, error) {
	rec, err := validate.Media(in)
	if err != nil {
		return models.Result{}, err
	}

	view, err := s.store.Fetch(ctx, ref)
	if err != nil {
		return models.Result{}, categoryMissing(err)
	}
	for _, e := range view {
		if e.Record.Title == rec.Title {
			return models.Result{}, &DuplicateTitleError{Noun: ref.Noun(), Title: rec.Title}
		}
	}

	if _, err := s.store.Append(ctx, ref, rec); err != nil {
		return models.Result{}, categoryMissing(err)
	}
	return ok("%s added successfully", ref.Noun()), nil
}

// resolve maps resolver failures to NotFoundError.
func (s *Service) resolve(ctx context.Context, ref models.CollectionRef, index int) (store.Handle, error) {
	h, err := s.resolver.Resolve(ctx, ref, index)
	if err != nil {
		var oor *IndexOutOfRangeError
		if errors.As(err, &oor) {
			return store.Handle{}, &NotFoundError{Noun: ref.Noun(), Err: err}
		}
		return store.Handle{}, categoryMissing(err)
	}
	return h, nil
}

// mutateErr maps errors from Replace and Remove.
func mutateErr(ref models.CollectionRef, err error) error {
	if errors.Is(err, store.ErrStaleHandle) {
		return &NotFoundError{Noun: ref.Noun(), Err: err}
	}
	return categoryMissing(err)
}

// UpdateAt replaces the record currently at index with in. No title
// uniqueness check is made against the other records.
func (s *Service) UpdateAt(ctx context.Context, ref models.CollectionRef, index int, in models.MediaInput) (models.Result, error) {
	rec, err := validate.Media(in)
	if err != nil {
		return models.Result{}, err
	}

	h, err := s.resolve(ctx, ref, index)
	if err != nil {
		return models.Result{}, err
	}
	if err := s.store.Replace(ctx, ref, h, rec); err != nil {
		return models.Result{}, mutateErr(ref, err)
	}
	return ok("%s updated successfully", ref.Noun()), nil
}

// RemoveAt deletes the record currently at index.
func (s *Service) RemoveAt(ctx context.Context, ref models.CollectionRef, index int) (models.Result, error) {
	h, err := s.resolve(ctx, ref, index)
	if err != nil {
		return models.Result{}, err
	}
	if err := s.store.Remove(ctx, ref, h); err != nil {
		return models.Result{}, mutateErr(ref, err)
	}
	return ok("%s removed successfully", ref.Noun()), nil
}

// ListCategories returns every category. The protected pair carries the
// current Films and Series collections as items.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cats {
		if cats[i].Kind != models.CategoryAliased {
			continue
		}
		items, err := s.List(ctx, models.CategoryRef(cats[i].ID))
		if err != nil {
			return nil, fmt.Errorf("load %s items: %w", cats[i].ID, err)
		}
		cats[i].Items = items
	}
	return cats, nil
}

// AddCategory validates in and creates a standard category whose id is the
// slug of its name.
func (s *Service) AddCategory(ctx context.Context, in models.CategoryInput) (models.Result, error) {
	in, err := validate.Category(in)
	if err != nil {
		return models.Result{}, err
	}

	id := slug.ID(in.Name)
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return models.Result{}, err
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, in.Name) || c.ID == id {
			return models.Result{}, &DuplicateCategoryError{Name: in.Name}
		}
	}

	err = s.store.CreateCategory(ctx, models.Category{
		ID:         id,
		Name:       in.Name,
		Icon:       in.Icon,
		StorageKey: models.StorageKeyFor(id),
		Kind:       models.CategoryStandard,
		Items:      []models.MediaRecord{},
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateRecord) {
			return models.Result{}, &DuplicateCategoryError{Name: in.Name}
		}
		return models.Result{}, err
	}

	slog.Info("category created", "id", id, "backend", s.store.Name())
	return ok("Category added successfully"), nil
}

// DeleteCategory removes a standard category and its items.
func (s *Service) DeleteCategory(ctx context.Context, id string) (models.Result, error) {
	if models.IsProtected(id) {
		return models.Result{}, &ProtectedCategoryError{ID: id}
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return models.Result{}, categoryMissing(err)
	}

	slog.Info("category deleted", "id", id, "backend", s.store.Name())
	return ok("Category deleted successfully"), nil
}

// Health pings the store.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Backend names the store in use.
func (s *Service) Backend() string {
	return s.store.Name()
}
