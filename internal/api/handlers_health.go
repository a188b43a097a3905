// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package api

import "net/http"

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := healthStatus{Status: "ok", Database: "ok"}
	code := http.StatusOK
	if err := rt.store.Ping(r.Context()); err != nil {
		status.Status = "degraded"
		status.Database = err.Error()
		code = http.StatusServiceUnavailable
	}
	writeSuccess(w, code, status)
}
