// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/gridwatch/gridwatch/internal/models"
	"github.com/gridwatch/gridwatch/internal/provider"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 4 << 20

func entityKind(w http.ResponseWriter, r *http.Request) (provider.Kind, bool) {
	name := chi.URLParam(r, "entity")
	kind, ok := provider.KindFromEntity(name)
	if !ok {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "unknown entity: "+name)
	}
	return kind, ok
}

// parseQueryOptions translates request query parameters into provider
// filters. Unknown parameters are ignored.
func parseQueryOptions(r *http.Request) (provider.QueryOptions, error) {
	q := r.URL.Query()
	opts := provider.QueryOptions{
		Package:        q.Get("package"),
		ChannelID:      q.Get("channel"),
		InputID:        q.Get("input"),
		CanonicalGenre: q.Get("canonical_genre"),
		Sort:           q.Get("sort"),
		Selection:      q.Get("where"),
	}
	for _, arg := range q["where_arg"] {
		opts.SelectionArgs = append(opts.SelectionArgs, arg)
	}
	if cols := q.Get("columns"); cols != "" {
		for _, c := range strings.Split(cols, ",") {
			if c = strings.TrimSpace(c); c != "" {
				opts.Columns = append(opts.Columns, c)
			}
		}
	}

	var err error
	if opts.StartTime, err = millisParam(q.Get("start_time")); err != nil {
		return opts, err
	}
	if opts.EndTime, err = millisParam(q.Get("end_time")); err != nil {
		return opts, err
	}
	if (opts.StartTime == nil) != (opts.EndTime == nil) {
		return opts, fmt.Errorf("start_time and end_time must be supplied together")
	}
	if v := q.Get("browsable_only"); v != "" {
		if opts.BrowsableOnly, err = strconv.ParseBool(v); err != nil {
			return opts, fmt.Errorf("invalid browsable_only: %q", v)
		}
	}
	if v := q.Get("preview"); v != "" {
		preview, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid preview: %q", v)
		}
		opts.Preview = &preview
	}
	if v := q.Get("limit"); v != "" {
		if opts.Limit, err = strconv.Atoi(v); err != nil || opts.Limit < 0 {
			return opts, fmt.Errorf("invalid limit: %q", v)
		}
	}
	return opts, nil
}

func millisParam(v string) (*int64, error) {
	if v == "" {
		return nil, nil
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid millisecond timestamp: %q", v)
	}
	return &ms, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(into); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (rt *Router) handleQuery(w http.ResponseWriter, r *http.Request) {
	kind, ok := entityKind(w, r)
	if !ok {
		return
	}
	opts, err := parseQueryOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	rows, err := rt.provider.Query(r.Context(), kind, callerFrom(r), opts)
	if err != nil {
		writeProviderError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, rows)
}

func (rt *Router) handleGet(w http.ResponseWriter, r *http.Request) {
	kind, ok := entityKind(w, r)
	if !ok {
		return
	}
	opts, err := parseQueryOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	row, err := rt.provider.Get(r.Context(), kind, callerFrom(r), chi.URLParam(r, "id"), opts.Columns)
	if err != nil {
		writeProviderError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, row)
}

// handleInsert accepts either a single row object or an array of rows.
func (rt *Router) handleInsert(w http.ResponseWriter, r *http.Request) {
	kind, ok := entityKind(w, r)
	if !ok {
		return
	}

	var raw json.RawMessage
	if !decodeBody(w, r, &raw) {
		return
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var rows []map[string]any
		if err := json.Unmarshal(raw, &rows); err != nil {
			writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body: "+err.Error())
			return
		}
		ids, err := rt.provider.BulkInsert(r.Context(), kind, callerFrom(r), rows)
		if err != nil {
			writeProviderError(w, err)
			return
		}
		writeSuccess(w, http.StatusCreated, map[string]any{"ids": ids})
		return
	}

	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body: "+err.Error())
		return
	}
	id, err := rt.provider.Insert(r.Context(), kind, callerFrom(r), values)
	if err != nil {
		writeProviderError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"id": id})
}

func (rt *Router) handleUpdateOne(w http.ResponseWriter, r *http.Request) {
	rt.update(w, r, chi.URLParam(r, "id"))
}

func (rt *Router) handleUpdateMany(w http.ResponseWriter, r *http.Request) {
	rt.update(w, r, "")
}

func (rt *Router) update(w http.ResponseWriter, r *http.Request, id string) {
	kind, ok := entityKind(w, r)
	if !ok {
		return
	}
	opts, err := parseQueryOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	opts.ID = id

	var values map[string]any
	if !decodeBody(w, r, &values) {
		return
	}
	count, err := rt.provider.Update(r.Context(), kind, callerFrom(r), values, opts)
	if err != nil {
		writeProviderError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"updated": count})
}

func (rt *Router) handleDeleteOne(w http.ResponseWriter, r *http.Request) {
	rt.delete(w, r, chi.URLParam(r, "id"))
}

func (rt *Router) handleDeleteMany(w http.ResponseWriter, r *http.Request) {
	rt.delete(w, r, "")
}

func (rt *Router) delete(w http.ResponseWriter, r *http.Request, id string) {
	kind, ok := entityKind(w, r)
	if !ok {
		return
	}
	opts, err := parseQueryOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	opts.ID = id

	count, err := rt.provider.Delete(r.Context(), kind, callerFrom(r), opts)
	if err != nil {
		writeProviderError(w, err)
		return
	}
	if id != "" && count == 0 {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"deleted": count})
}

func (rt *Router) handleWatchEvent(w http.ResponseWriter, r *http.Request) {
	var event models.WatchEvent
	if !decodeBody(w, r, &event) {
		return
	}
	id, err := rt.provider.InsertWatchEvent(r.Context(), callerFrom(r), event)
	if err != nil {
		writeProviderError(w, err)
		return
	}
	if id == "" {
		// End events queue consolidation and create nothing.
		writeSuccess(w, http.StatusAccepted, nil)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"id": id})
}

func (rt *Router) handleListColumns(w http.ResponseWriter, r *http.Request) {
	kind, ok := entityKind(w, r)
	if !ok {
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"columns": rt.provider.Columns(kind)})
}

// addColumnRequest is the body of a column extension request.
type addColumnRequest struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Default  string `json:"default,omitempty"`
}

func (rt *Router) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	kind, ok := entityKind(w, r)
	if !ok {
		return
	}
	var req addColumnRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := rt.provider.AddColumn(r.Context(), callerFrom(r), kind, req.Name, req.DataType, req.Default); err != nil {
		writeProviderError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"columns": rt.provider.Columns(kind)})
}

func (rt *Router) handleListBlocked(w http.ResponseWriter, r *http.Request) {
	blocked, err := rt.provider.BlockedPackages(r.Context(), callerFrom(r))
	if err != nil {
		writeProviderError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, blocked)
}

type blockPackageRequest struct {
	Package string `json:"package_name"`
}

func (rt *Router) handleBlockPackage(w http.ResponseWriter, r *http.Request) {
	var req blockPackageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := rt.provider.BlockPackage(r.Context(), callerFrom(r), req.Package); err != nil {
		writeProviderError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, nil)
}

func (rt *Router) handleUnblockPackage(w http.ResponseWriter, r *http.Request) {
	if err := rt.provider.UnblockPackage(r.Context(), callerFrom(r), chi.URLParam(r, "package")); err != nil {
		writeProviderError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}
