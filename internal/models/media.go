// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures shared by the catalog store,
// service and HTTP layers.
package models

// MediaRecord is one entry of a collection: a film, a series or an item of a
// user-defined category. Title is unique within the owning collection.
type MediaRecord struct {
	Title   string `json:"title"`
	Image   string `json:"image"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

// MediaInput is a media payload as received from a client, before
// validation and trimming.
type MediaInput struct {
	Title   string `json:"title"`
	Image   string `json:"image"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

// Result is the body returned by every mutating operation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
