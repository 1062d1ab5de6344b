// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"

	"mediacatalog/internal/models"
	"mediacatalog/internal/store"
)

// ResolveIndex returns the handle of the record at index in view.
func ResolveIndex(view []store.Entry, index int) (store.Handle, error) {
	if index < 0 || index >= len(view) {
		return store.Handle{}, &IndexOutOfRangeError{Index: index, Len: len(view)}
	}
	return view[index].Handle, nil
}

// Resolver turns a client-supplied position into a store handle. Every call
// fetches the current view first; nothing is cached between calls. The
// position is a hint: another writer may still change the collection between
// Resolve and the mutation that uses its result.
type Resolver struct {
	store store.Store
}

// NewResolver returns a Resolver reading from s.
func NewResolver(s store.Store) *Resolver {
	return &Resolver{store: s}
}

// Resolve fetches ref and resolves index against it.
func (r *Resolver) Resolve(ctx context.Context, ref models.CollectionRef, index int) (store.Handle, error) {
	view, err := r.store.Fetch(ctx, ref)
	if err != nil {
		return store.Handle{}, err
	}
	return ResolveIndex(view, index)
}
