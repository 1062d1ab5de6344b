// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"mediacatalog/internal/models"
)

// Blob keys. Custom category items are stored inside the categories value.
const (
	filmsKey      = "films"
	seriesKey     = "series"
	categoriesKey = "categories"
)

// KV is the key-value backend a BlobStore persists to. Get returns a nil
// slice and no error when the key does not exist.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
}

// BlobStore keeps each collection as one JSON array under a single key.
// Every mutation re-reads the whole value, changes it in memory and writes it
// back. There is no compare-and-swap: two concurrent writers to the same key
// race and the last write wins for the whole collection.
type BlobStore struct {
	kv     KV
	prefix string
}

// NewBlobStore returns a BlobStore over kv. prefix is prepended to every key
// and may be empty.
func NewBlobStore(kv KV, prefix string) *BlobStore {
	return &BlobStore{kv: kv, prefix: prefix}
}

// Name identifies the backend.
func (s *BlobStore) Name() string { return "blob" }

// Ping checks the key-value backend.
func (s *BlobStore) Ping(ctx context.Context) error {
	return unavailable("ping", s.kv.Ping(ctx))
}

// blobRecord is the stored shape of a media record. Early series entries were
// written with "name" instead of "title".
type blobRecord struct {
	Title   string `json:"title"`
	Name    string `json:"name,omitempty"`
	Image   string `json:"image"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

type blobCategory struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Icon       string              `json:"icon"`
	StorageKey string              `json:"storageKey"`
	Kind       models.CategoryKind `json:"kind,omitempty"`
	Items      []blobRecord        `json:"items"`
}

func toRecords(in []blobRecord) []models.MediaRecord {
	out := make([]models.MediaRecord, 0, len(in))
	for _, r := range in {
		title := r.Title
		if title == "" {
			title = r.Name
		}
		out = append(out, models.MediaRecord{Title: title, Image: r.Image, URL: r.URL, Summary: r.Summary})
	}
	return out
}

func fromRecords(in []models.MediaRecord) []blobRecord {
	out := make([]blobRecord, 0, len(in))
	for _, r := range in {
		out = append(out, blobRecord{Title: r.Title, Image: r.Image, URL: r.URL, Summary: r.Summary})
	}
	return out
}

// readValue loads and decodes one key. A missing key and an undecodable value
// both yield the zero value; the latter is logged.
func readValue[T any](ctx context.Context, s *BlobStore, name string) (T, error) {
	var zero, v T
	raw, err := s.kv.Get(ctx, s.prefix+name)
	if err != nil {
		return zero, unavailable("get "+name, err)
	}
	if len(raw) == 0 {
		return zero, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		slog.Warn("blob value undecodable, treating as empty", "key", s.prefix+name, "error", err)
		return zero, nil
	}
	return v, nil
}

// write encodes v and stores it under one key.
func (s *BlobStore) write(ctx context.Context, name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return unavailable("set "+name, s.kv.Set(ctx, s.prefix+name, raw))
}

func (s *BlobStore) readCategories(ctx context.Context) ([]blobCategory, error) {
	return readValue[[]blobCategory](ctx, s, categoriesKey)
}

// blobCollection is one collection loaded for a read-modify-write cycle.
type blobCollection struct {
	records []models.MediaRecord
	save    func(ctx context.Context, records []models.MediaRecord) error
}

// open reads the collection behind ref and returns it with a save function
// that writes the whole containing value back. The protected categories are
// seeded first, so they exist before any collection read returns.
func (s *BlobStore) open(ctx context.Context, ref models.CollectionRef) (*blobCollection, error) {
	cats, err := s.loadSeeded(ctx)
	if err != nil {
		return nil, err
	}

	switch ref.Kind {
	case models.CollectionFilms, models.CollectionSeries:
		key := filmsKey
		if ref.Kind == models.CollectionSeries {
			key = seriesKey
		}
		stored, err := readValue[[]blobRecord](ctx, s, key)
		if err != nil {
			return nil, err
		}
		return &blobCollection{
			records: toRecords(stored),
			save: func(ctx context.Context, records []models.MediaRecord) error {
				return s.write(ctx, key, fromRecords(records))
			},
		}, nil

	case models.CollectionCategory:
		idx := -1
		for i, c := range cats {
			if c.ID == ref.CategoryID {
				idx = i
				break
			}
		}
		if idx == -1 || models.IsProtected(ref.CategoryID) {
			return nil, ErrCategoryNotFound
		}
		return &blobCollection{
			records: toRecords(cats[idx].Items),
			save: func(ctx context.Context, records []models.MediaRecord) error {
				cats[idx].Items = fromRecords(records)
				return s.write(ctx, categoriesKey, cats)
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown collection kind %q", ref.Kind)
}

// Fetch returns the collection in insertion order. Handles carry positions.
func (s *BlobStore) Fetch(ctx context.Context, ref models.CollectionRef) ([]Entry, error) {
	col, err := s.open(ctx, ref)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(col.records))
	for i, r := range col.records {
		entries[i] = Entry{Handle: Handle{Index: i}, Record: r}
	}
	return entries, nil
}

// Append re-reads the collection, pushes rec and writes the collection back.
func (s *BlobStore) Append(ctx context.Context, ref models.CollectionRef, rec models.MediaRecord) (Handle, error) {
	col, err := s.open(ctx, ref)
	if err != nil {
		return Handle{}, err
	}
	records := append(col.records, rec)
	if err := col.save(ctx, records); err != nil {
		return Handle{}, err
	}
	return Handle{Index: len(records) - 1}, nil
}

// Replace overwrites the record at h.Index in the freshly read collection.
func (s *BlobStore) Replace(ctx context.Context, ref models.CollectionRef, h Handle, rec models.MediaRecord) error {
	col, err := s.open(ctx, ref)
	if err != nil {
		return err
	}
	if h.Index < 0 || h.Index >= len(col.records) {
		return ErrStaleHandle
	}
	col.records[h.Index] = rec
	return col.save(ctx, col.records)
}

// Remove splices the record at h.Index out of the freshly read collection.
func (s *BlobStore) Remove(ctx context.Context, ref models.CollectionRef, h Handle) error {
	col, err := s.open(ctx, ref)
	if err != nil {
		return err
	}
	if h.Index < 0 || h.Index >= len(col.records) {
		return ErrStaleHandle
	}
	records := append(col.records[:h.Index], col.records[h.Index+1:]...)
	return col.save(ctx, records)
}

// seed puts any missing protected category in front of cats, in default
// order, and reports whether anything was added.
func seed(cats []blobCategory) ([]blobCategory, bool) {
	present := make(map[string]bool, len(cats))
	for _, c := range cats {
		present[c.ID] = true
	}
	var missing []blobCategory
	for _, d := range models.DefaultCategories() {
		if !present[d.ID] {
			missing = append(missing, blobCategory{
				ID: d.ID, Name: d.Name, Icon: d.Icon, StorageKey: d.StorageKey,
				Kind: d.Kind, Items: []blobRecord{},
			})
		}
	}
	if len(missing) == 0 {
		return cats, false
	}
	return append(missing, cats...), true
}

// loadSeeded reads the categories value and writes the protected pair back if
// it was missing.
func (s *BlobStore) loadSeeded(ctx context.Context) ([]blobCategory, error) {
	cats, err := s.readCategories(ctx)
	if err != nil {
		return nil, err
	}
	cats, changed := seed(cats)
	if changed {
		if err := s.write(ctx, categoriesKey, cats); err != nil {
			return nil, err
		}
		slog.Info("protected categories seeded", "backend", s.Name())
	}
	return cats, nil
}

// ListCategories returns the stored categories in insertion order. Aliased
// categories come back with an empty item list.
func (s *BlobStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.loadSeeded(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Category, 0, len(cats))
	for _, c := range cats {
		kind := models.KindOf(c.ID)
		items := []models.MediaRecord{}
		if kind == models.CategoryStandard {
			items = toRecords(c.Items)
		}
		out = append(out, models.Category{
			ID: c.ID, Name: c.Name, Icon: c.Icon, StorageKey: c.StorageKey,
			Kind: kind, Items: items,
		})
	}
	return out, nil
}

// CreateCategory appends c to the categories value. The id and the
// case-folded name must both be unused.
func (s *BlobStore) CreateCategory(ctx context.Context, c models.Category) error {
	cats, err := s.loadSeeded(ctx)
	if err != nil {
		return err
	}
	for _, existing := range cats {
		if existing.ID == c.ID || strings.EqualFold(existing.Name, c.Name) {
			return ErrDuplicateRecord
		}
	}
	cats = append(cats, blobCategory{
		ID: c.ID, Name: c.Name, Icon: c.Icon, StorageKey: c.StorageKey,
		Kind: models.CategoryStandard, Items: fromRecords(c.Items),
	})
	return s.write(ctx, categoriesKey, cats)
}

// DeleteCategory removes a standard category together with its items.
func (s *BlobStore) DeleteCategory(ctx context.Context, id string) error {
	if models.IsProtected(id) {
		return ErrCategoryNotFound
	}
	cats, err := s.loadSeeded(ctx)
	if err != nil {
		return err
	}
	for i, c := range cats {
		if c.ID == id {
			cats = append(cats[:i], cats[i+1:]...)
			return s.write(ctx, categoriesKey, cats)
		}
	}
	return ErrCategoryNotFound
}
