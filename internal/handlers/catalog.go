// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers of the catalog API. They
// decode requests, call the catalog service and translate its errors into
// status codes; no catalog rule lives here.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"mediacatalog/internal/catalog"
	"mediacatalog/internal/models"
	"mediacatalog/internal/store"
	"mediacatalog/internal/validate"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 2 << 20

// RefFunc picks the collection a request addresses.
type RefFunc func(r *http.Request) models.CollectionRef

// Fixed returns a RefFunc that always addresses ref.
func Fixed(ref models.CollectionRef) RefFunc {
	return func(*http.Request) models.CollectionRef { return ref }
}

// Catalog serves the films, series and categories endpoints.
type Catalog struct {
	svc *catalog.Service
	env string
}

// NewCatalog creates the catalog handler group.
func NewCatalog(svc *catalog.Service, env string) *Catalog {
	return &Catalog{svc: svc, env: env}
}

// CategoryItems addresses the items of the category named by the {id} path
// parameter. films and series resolve to the top-level collections.
func (h *Catalog) CategoryItems(r *http.Request) models.CollectionRef {
	return h.svc.CollectionFor(chi.URLParam(r, "id"))
}

// List answers the raw array of a collection.
func (h *Catalog) List(ref RefFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.svc.List(r.Context(), ref(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// Add appends the posted record.
func (h *Catalog) Add(ref RefFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.MediaInput
		if !decodeBody(w, r, &in) {
			return
		}
		res, err := h.svc.Add(r.Context(), ref(r), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// Update replaces the record at the requested index. The body is checked
// before the index, so a bad body answers 400 even when the index is bad too.
func (h *Catalog) Update(ref RefFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := ref(r)
		var in models.MediaInput
		if !decodeBody(w, r, &in) {
			return
		}
		index, ok := parseIndex(r)
		if !ok {
			if _, err := validate.Media(in); err != nil {
				writeError(w, r, err)
				return
			}
			writeError(w, r, &catalog.NotFoundError{Noun: target.Noun()})
			return
		}
		res, err := h.svc.UpdateAt(r.Context(), target, index, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// Remove deletes the record at the requested index.
func (h *Catalog) Remove(ref RefFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := ref(r)
		index, ok := parseIndex(r)
		if !ok {
			writeError(w, r, &catalog.NotFoundError{Noun: target.Noun()})
			return
		}
		res, err := h.svc.RemoveAt(r.Context(), target, index)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// ListCategories answers every category with its items.
func (h *Catalog) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// AddCategory creates a category from {name, icon}.
func (h *Catalog) AddCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if !decodeBody(w, r, &in) {
		return
	}
	res, err := h.svc.AddCategory(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeleteCategory removes the category given by the {id} path parameter or the
// id query parameter.
func (h *Catalog) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		id = r.URL.Query().Get("id")
	}
	res, err := h.svc.DeleteCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Debug reports the backend in use and whether it answers a ping.
func (h *Catalog) Debug(w http.ResponseWriter, r *http.Request) {
	status, pingErr := "connected", ""
	if err := h.svc.Health(r.Context()); err != nil {
		status, pingErr = "unreachable", err.Error()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Backend API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"environment": map[string]string{
			"app_env": h.env,
			"backend": h.svc.Backend(),
		},
		"database": map[string]string{
			"status": status,
			"error":  pingErr,
		},
	})
}

// parseIndex reads the position from the {index} path parameter, falling back
// to the index query parameter.
func parseIndex(r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "index")
	if raw == "" {
		raw = r.URL.Query().Get("index")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// decodeBody reads a JSON body into v. An empty body leaves v zero so that
// validation reports the missing fields. Returns false after writing an
// error response.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		writeJSON(w, http.StatusRequestEntityTooLarge, models.Result{Message: "request body too large"})
		return false
	}
	writeJSON(w, http.StatusBadRequest, models.Result{Message: "invalid JSON body"})
	return false
}

// writeError maps a service error to its status code.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		missing  *validate.MissingFieldError
		dupTitle *catalog.DuplicateTitleError
		dupCat   *catalog.DuplicateCategoryError
		prot     *catalog.ProtectedCategoryError
		notFound *catalog.NotFoundError
	)
	switch {
	case errors.As(err, &missing), errors.As(err, &dupTitle),
		errors.As(err, &dupCat), errors.As(err, &prot):
		writeJSON(w, http.StatusBadRequest, models.Result{Message: err.Error()})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, models.Result{Message: notFound.Error()})
	default:
		var unavail *store.UnavailableError
		if errors.As(err, &unavail) {
			slog.Error("store unavailable", "op", unavail.Op, "error", unavail.Err, "path", r.URL.Path)
		} else {
			slog.Error("request failed", "error", err, "path", r.URL.Path)
		}
		writeJSON(w, http.StatusInternalServerError, models.Result{Message: "server error", Error: err.Error()})
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, models.Result{Message: "route not found"})
}

// MethodNotAllowed answers a known route called with an unsupported method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
}
