// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Reserved ids of the protected categories. Their items are the top-level
// Films and Series collections.
const (
	FilmsCategoryID  = "films"
	SeriesCategoryID = "series"
)

// CategoryKind tells whether a category owns its items or aliases one of the
// top-level collections.
type CategoryKind string

const (
	CategoryStandard CategoryKind = "standard"
	CategoryAliased  CategoryKind = "aliased"
)

// Category is a named, ordered list of media records shown as a row in the
// browsing UI. ID is derived from Name once at creation and never recomputed.
type Category struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Icon       string        `json:"icon"`
	StorageKey string        `json:"storageKey"`
	Kind       CategoryKind  `json:"kind"`
	Items      []MediaRecord `json:"items"`
}

// CategoryInput is a category payload as received from a client.
type CategoryInput struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// IsProtected reports whether id names one of the two categories that can
// never be deleted.
func IsProtected(id string) bool {
	return id == FilmsCategoryID || id == SeriesCategoryID
}

// KindOf returns the kind implied by a category id.
func KindOf(id string) CategoryKind {
	if IsProtected(id) {
		return CategoryAliased
	}
	return CategoryStandard
}

// StorageKeyFor returns the legacy browser storage key for a category id.
func StorageKeyFor(id string) string {
	return "streamflix_" + id
}

// DefaultCategories returns fresh copies of the protected pair, in the order
// they are seeded into an empty store.
func DefaultCategories() []Category {
	return []Category{
		{
			ID:         FilmsCategoryID,
			Name:       "Filmes",
			Icon:       "🎬",
			StorageKey: StorageKeyFor(FilmsCategoryID),
			Kind:       CategoryAliased,
			Items:      []MediaRecord{},
		},
		{
			ID:         SeriesCategoryID,
			Name:       "Séries",
			Icon:       "📺",
			StorageKey: StorageKeyFor(SeriesCategoryID),
			Kind:       CategoryAliased,
			Items:      []MediaRecord{},
		},
	}
}
