// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"fmt"
	"strings"
)

// DuplicateTitleError is returned by Add when the collection already holds a
// record with exactly the same title.
type DuplicateTitleError struct {
	Noun  string
	Title string
}

func (e *DuplicateTitleError) Error() string {
	return fmt.Sprintf("a %s with the title %q already exists", strings.ToLower(e.Noun), e.Title)
}

// DuplicateCategoryError is returned by AddCategory when the name (compared
// case-insensitively) or its derived id is already taken.
type DuplicateCategoryError struct {
	Name string
}

func (e *DuplicateCategoryError) Error() string {
	return fmt.Sprintf("a category named %q already exists", e.Name)
}

// NotFoundError reports a record or category that could not be addressed.
// Err carries the underlying cause, such as an IndexOutOfRangeError.
type NotFoundError struct {
	Noun string
	Err  error
}

func (e *NotFoundError) Error() string {
	return e.Noun + " not found"
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// ProtectedCategoryError is returned when deleting films or series.
type ProtectedCategoryError struct {
	ID string
}

func (e *ProtectedCategoryError) Error() string {
	return fmt.Sprintf("category %q is a default category and cannot be deleted", e.ID)
}

// IndexOutOfRangeError is returned by ResolveIndex.
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}
