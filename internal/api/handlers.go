package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notelink/internal/apperr"
	"github.com/starford/notelink/internal/followsvc"
	"github.com/starford/notelink/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *followsvc.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *followsvc.Service) *Handler {
	return &Handler{svc: svc}
}

// notePath extracts the note path from the URL (everything after /api/links/).
// Supports encoded slashes from OpenAPI clients (e.g. topics%2Fnote.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Follow handles POST /api/follow.
//
//	@Summary		Follow a reference
//	@Tags			links
//	@Accept			json
//	@Produce		json
//	@Param			body	body		FollowRequest	true	"Reference to follow"
//	@Success		200		{object}	FollowResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/follow [post]
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req FollowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	res, err := h.svc.Follow(r.Context(), req.Ref, req.From)
	if err != nil {
		slog.Error("follow failed", slog.String("ref", req.Ref), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Classify handles GET /api/classify.
//
//	@Summary		Classify a reference without following it
//	@Tags			links
//	@Produce		json
//	@Param			ref	query		string	true	"Reference"
//	@Success		200	{object}	ClassifyResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/classify [get]
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("ref is required"))
		return
	}
	writeJSON(w, http.StatusOK, ClassifyResponse{Ref: ref, Kind: string(h.svc.Classify(ref))})
}

// Links handles GET /api/links/*.
//
//	@Summary		List the links of a note and where they lead
//	@Tags			links
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	LinksResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/links/{path} [get]
func (h *Handler) Links(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	reports, err := h.svc.Links(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("list links failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, LinksResponse{Note: path, Links: reports})
}

// History handles GET /api/history.
//
//	@Summary		List navigation history
//	@Tags			history
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum entries"
//	@Success		200		{object}	HistoryResponse
//	@Security		BearerAuth
//	@Router			/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.svc.History(limit)
	if err != nil {
		slog.Error("list history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Entries: entries, Active: h.svc.Active()})
}

// ClearHistory handles DELETE /api/history.
//
//	@Summary		Clear navigation history
//	@Tags			history
//	@Success		204
//	@Security		BearerAuth
//	@Router			/history [delete]
func (h *Handler) ClearHistory(w http.ResponseWriter, _ *http.Request) {
	if err := h.svc.ClearHistory(); err != nil {
		slog.Error("clear history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Back handles POST /api/back.
//
//	@Summary		Return to the previous document
//	@Tags			history
//	@Produce		json
//	@Success		200	{object}	DocumentResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/back [post]
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	path, err := h.svc.Back(r.Context())
	if err != nil {
		if errors.Is(err, apperr.ErrEmptyHistory) {
			writeJSON(w, http.StatusConflict, errorBody(apperr.ErrEmptyHistory.Error()))
			return
		}
		slog.Error("back failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{Path: path})
}

// Active handles GET /api/active.
//
//	@Summary		Get the active document
//	@Tags			history
//	@Produce		json
//	@Success		200	{object}	DocumentResponse
//	@Security		BearerAuth
//	@Router			/active [get]
func (h *Handler) Active(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, DocumentResponse{Path: h.svc.Active()})
}
