// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package validate checks and normalizes client payloads before they reach a
// store. Nothing here performs I/O.
package validate

import (
	"fmt"
	"strings"

	"mediacatalog/internal/models"
)

// MissingFieldError reports the first required field that was empty after
// trimming.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Media trims every field of a media payload and requires title, image and
// url. Summary is optional and defaults to "".
func Media(in models.MediaInput) (models.MediaRecord, error) {
	rec := models.MediaRecord{
		Title:   strings.TrimSpace(in.Title),
		Image:   strings.TrimSpace(in.Image),
		URL:     strings.TrimSpace(in.URL),
		Summary: strings.TrimSpace(in.Summary),
	}

	switch {
	case rec.Title == "":
		return models.MediaRecord{}, &MissingFieldError{Field: "title"}
	case rec.Image == "":
		return models.MediaRecord{}, &MissingFieldError{Field: "image"}
	case rec.URL == "":
		return models.MediaRecord{}, &MissingFieldError{Field: "url"}
	}
	return rec, nil
}

// Category trims a category payload and requires name and icon.
func Category(in models.CategoryInput) (models.CategoryInput, error) {
	out := models.CategoryInput{
		Name: strings.TrimSpace(in.Name),
		Icon: strings.TrimSpace(in.Icon),
	}

	if out.Name == "" {
		return models.CategoryInput{}, &MissingFieldError{Field: "name"}
	}
	if out.Icon == "" {
		return models.CategoryInput{}, &MissingFieldError{Field: "icon"}
	}
	return out, nil
}
