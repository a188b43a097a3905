// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gridwatch/gridwatch/internal/config"
	"github.com/gridwatch/gridwatch/internal/provider"
	"github.com/gridwatch/gridwatch/internal/store"
)

// callerHeader identifies the requesting package. Gridwatch is meant to
// sit behind a gateway that authenticates clients and stamps this
// header; the store itself only enforces capability scoping.
const callerHeader = "X-Package-Name"

type callerContextKey struct{}

// Router wires HTTP routes to the provider.
type Router struct {
	provider *provider.Provider
	store    *store.Store
	cfg      *config.ServerConfig
}

// NewRouter creates the API router.
func NewRouter(p *provider.Provider, st *store.Store, cfg *config.ServerConfig) *Router {
	return &Router{provider: p, store: st, cfg: cfg}
}

// Setup builds the route tree.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/api/v1/health", rt.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		if rt.cfg.RateLimit > 0 {
			r.Use(httprate.Limit(rt.cfg.RateLimit, time.Minute,
				httprate.WithKeyFuncs(callerRateKey)))
		}
		r.Use(requireCaller)

		r.Route("/{entity}", func(r chi.Router) {
			r.Get("/", rt.handleQuery)
			r.Post("/", rt.handleInsert)
			r.Put("/", rt.handleUpdateMany)
			r.Delete("/", rt.handleDeleteMany)

			r.Get("/columns", rt.handleListColumns)
			r.Post("/columns", rt.handleAddColumn)

			r.Get("/{id}", rt.handleGet)
			r.Put("/{id}", rt.handleUpdateOne)
			r.Delete("/{id}", rt.handleDeleteOne)
		})

		// The watch log takes events, not rows.
		r.Post("/watched-programs/events", rt.handleWatchEvent)

		r.Get("/channels/{id}/logo", rt.handleGetLogo)
		r.Put("/channels/{id}/logo", rt.handlePutLogo)
		r.Delete("/channels/{id}/logo", rt.handleDeleteLogo)

		r.Get("/blocked-packages", rt.handleListBlocked)
		r.Post("/blocked-packages", rt.handleBlockPackage)
		r.Delete("/blocked-packages/{package}", rt.handleUnblockPackage)
	})

	return r
}

// callerRateKey buckets the rate limiter by caller package, so one
// noisy client cannot starve others behind the same gateway address.
// Requests without the header fall back to the client IP.
func callerRateKey(r *http.Request) (string, error) {
	if pkg := r.Header.Get(callerHeader); pkg != "" {
		return pkg, nil
	}
	return httprate.KeyByIP(r)
}

// requireCaller rejects requests without a caller identity and stores
// it in the request context.
func requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pkg := r.Header.Get(callerHeader)
		if pkg == "" {
			writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "missing "+callerHeader+" header")
			return
		}
		ctx := context.WithValue(r.Context(), callerContextKey{}, provider.Caller{Package: pkg})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callerFrom(r *http.Request) provider.Caller {
	c, _ := r.Context().Value(callerContextKey{}).(provider.Caller)
	return c
}
