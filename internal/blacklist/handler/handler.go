// Package handler wires blacklist endpoints to the blacklist service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mintgate/internal/blacklist"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/httputil"
	"mintgate/pkg/requestcontext"
)

// Service defines the blacklist operations the handler needs.
type Service interface {
	Add(ctx context.Context, asset domain.AssetID, user domain.Identity, reason string) (blacklist.Entry, error)
	Remove(ctx context.Context, asset domain.AssetID, user domain.Identity) error
	Get(ctx context.Context, asset domain.AssetID, user domain.Identity) (blacklist.Entry, error)
}

// Handler serves the blacklist endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a blacklist handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterCommands mounts the state-changing endpoints.
func (h *Handler) RegisterCommands(r chi.Router) {
	r.Post("/instruments/{asset}/blacklist", h.HandleAdd)
	r.Delete("/instruments/{asset}/blacklist/{user}", h.HandleRemove)
}

// RegisterQueries mounts the read-only endpoints.
func (h *Handler) RegisterQueries(r chi.Router) {
	r.Get("/instruments/{asset}/blacklist/{user}", h.HandleGet)
}

// AddRequest is the body for POST /instruments/{asset}/blacklist.
type AddRequest struct {
	User   string `json:"user"`
	Reason string `json:"reason,omitempty"`
}

// EntryResponse is the JSON view of a blacklist entry.
type EntryResponse struct {
	Address   string    `json:"address"`
	Config    string    `json:"config"`
	User      string    `json:"user"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toEntryResponse(e blacklist.Entry) EntryResponse {
	return EntryResponse{
		Address:   e.Address.String(),
		Config:    e.Config.String(),
		User:      e.User.String(),
		Reason:    e.Reason,
		CreatedAt: e.CreatedAt,
	}
}

func assetParam(r *http.Request) (domain.AssetID, error) {
	asset, err := domain.ParseAssetID(chi.URLParam(r, "asset"))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid asset id")
	}
	return asset, nil
}

func userParam(r *http.Request) (domain.Identity, error) {
	user, err := domain.ParseIdentity(chi.URLParam(r, "user"))
	if err != nil {
		return domain.Identity{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid user identity")
	}
	return user, nil
}

// HandleAdd handles POST /instruments/{asset}/blacklist.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	asset, err := assetParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[AddRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := domain.ParseIdentity(req.User)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid user identity"))
		return
	}

	entry, err := h.service.Add(ctx, asset, user, req.Reason)
	if err != nil {
		httputil.LogAndWriteError(w, h.logger, requestcontext.RequestID(ctx), "blacklist add failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toEntryResponse(entry))
}

// HandleRemove handles DELETE /instruments/{asset}/blacklist/{user}.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	asset, err := assetParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := userParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Remove(ctx, asset, user); err != nil {
		httputil.LogAndWriteError(w, h.logger, requestcontext.RequestID(ctx), "blacklist remove failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGet handles GET /instruments/{asset}/blacklist/{user}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	asset, err := assetParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := userParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entry, err := h.service.Get(r.Context(), asset, user)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEntryResponse(entry))
}
