// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

// Package api provides the HTTP surface on top of the provider. Every
// JSON endpoint uses one wrapper shape so clients handle success and
// error uniformly.
package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/gridwatch/gridwatch/internal/logging"
	"github.com/gridwatch/gridwatch/internal/provider"
)

// APIResponse is the wrapper for every JSON endpoint.
type APIResponse struct {
	// Success indicates whether the request was handled.
	Success bool `json:"success"`

	// Data carries the payload; null on error.
	Data any `json:"data,omitempty"`

	// Error carries error details; null on success.
	Error *APIError `json:"error,omitempty"`
}

// APIError is the machine-readable error body.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes for API responses.
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

func writeJSON(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, APIResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{Success: false, Error: &APIError{Code: code, Message: message}})
}

// writeProviderError maps provider sentinels onto HTTP statuses.
func writeProviderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, provider.ErrSecurity):
		writeError(w, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, provider.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, provider.ErrNotFound):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
	default:
		logging.Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
	}
}
