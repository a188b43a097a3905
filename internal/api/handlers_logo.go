// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package api

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/image/draw"
)

// maxLogoEdge is the longest edge a stored logo keeps. Uploads larger
// than this are scaled down; smaller ones are stored as-is.
const maxLogoEdge = 256

// maxLogoBytes caps logo uploads.
const maxLogoBytes = 8 << 20

func (rt *Router) handleGetLogo(w http.ResponseWriter, r *http.Request) {
	logo, err := rt.provider.ChannelLogo(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeProviderError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(logo)
}

func (rt *Router) handlePutLogo(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxLogoBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "failed to read logo body")
		return
	}
	logo, err := normalizeLogo(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	if err := rt.provider.SetChannelLogo(r.Context(), callerFrom(r), chi.URLParam(r, "id"), logo); err != nil {
		writeProviderError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}

func (rt *Router) handleDeleteLogo(w http.ResponseWriter, r *http.Request) {
	if err := rt.provider.DeleteChannelLogo(r.Context(), callerFrom(r), chi.URLParam(r, "id")); err != nil {
		writeProviderError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}

// normalizeLogo decodes an uploaded image, clamps it to maxLogoEdge,
// and re-encodes it as PNG so stored logos have one format.
func normalizeLogo(body []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > maxLogoEdge || height > maxLogoEdge {
		scale := float64(maxLogoEdge) / float64(max(width, height))
		width = max(1, int(float64(width)*scale))
		height = max(1, int(float64(height)*scale))
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var out bytes.Buffer
	if err := png.Encode(&out, src); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
