// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "fmt"

// CollectionKind identifies which family of collection a ref points at.
type CollectionKind string

const (
	CollectionFilms    CollectionKind = "films"
	CollectionSeries   CollectionKind = "series"
	CollectionCategory CollectionKind = "category"
)

// CollectionRef addresses one ordered collection: Films, Series, or the
// items of a single standard category.
type CollectionRef struct {
	Kind       CollectionKind
	CategoryID string // set only for CollectionCategory
}

var (
	FilmsRef  = CollectionRef{Kind: CollectionFilms}
	SeriesRef = CollectionRef{Kind: CollectionSeries}
)

// CategoryRef returns the collection behind a category id. The protected ids
// resolve to the top-level collections rather than to a third copy.
func CategoryRef(id string) CollectionRef {
	switch id {
	case FilmsCategoryID:
		return FilmsRef
	case SeriesCategoryID:
		return SeriesRef
	default:
		return CollectionRef{Kind: CollectionCategory, CategoryID: id}
	}
}

// Noun is the human-readable name of one record of this collection, used in
// response messages.
func (r CollectionRef) Noun() string {
	switch r.Kind {
	case CollectionFilms:
		return "Film"
	case CollectionSeries:
		return "Series"
	default:
		return "Item"
	}
}

func (r CollectionRef) String() string {
	if r.Kind == CollectionCategory {
		return fmt.Sprintf("category:%s", r.CategoryID)
	}
	return string(r.Kind)
}
