// Package handler wires minter endpoints to the minter service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mintgate/internal/minter"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/httputil"
	"mintgate/pkg/requestcontext"
)

// Service defines the minter operations the handler needs.
type Service interface {
	Grant(ctx context.Context, asset domain.AssetID, authority domain.Identity, quota uint64) (minter.Record, error)
	SetQuota(ctx context.Context, asset domain.AssetID, authority domain.Identity, quota uint64) (minter.Record, error)
	Revoke(ctx context.Context, asset domain.AssetID, authority domain.Identity) (minter.Record, error)
	Issue(ctx context.Context, asset domain.AssetID, dest domain.AccountID, amount uint64) (minter.Record, error)
	Redeem(ctx context.Context, asset domain.AssetID, source domain.AccountID, amount uint64) error
	Get(ctx context.Context, asset domain.AssetID, authority domain.Identity) (minter.Record, error)
	List(ctx context.Context, asset domain.AssetID) ([]minter.Record, error)
}

// Handler serves the minter endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a minter handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterCommands mounts the state-changing endpoints.
func (h *Handler) RegisterCommands(r chi.Router) {
	r.Post("/instruments/{asset}/minters", h.HandleGrant)
	r.Put("/instruments/{asset}/minters/{authority}/quota", h.HandleSetQuota)
	r.Delete("/instruments/{asset}/minters/{authority}", h.HandleRevoke)
	r.Post("/instruments/{asset}/issue", h.HandleIssue)
	r.Post("/instruments/{asset}/redeem", h.HandleRedeem)
}

// RegisterQueries mounts the read-only endpoints.
func (h *Handler) RegisterQueries(r chi.Router) {
	r.Get("/instruments/{asset}/minters", h.HandleList)
	r.Get("/instruments/{asset}/minters/{authority}", h.HandleGet)
}

// GrantRequest is the body for POST /instruments/{asset}/minters.
type GrantRequest struct {
	Authority string `json:"authority"`
	Quota     uint64 `json:"quota"`
}

// QuotaRequest is the body for the quota update endpoint.
type QuotaRequest struct {
	Quota uint64 `json:"quota"`
}

// AmountRequest is the body for issue and redeem.
type AmountRequest struct {
	Account string `json:"account"`
	Amount  uint64 `json:"amount"`
}

// RecordResponse is the JSON view of a minter record.
type RecordResponse struct {
	Address   string    `json:"address"`
	Config    string    `json:"config"`
	Authority string    `json:"authority"`
	Quota     uint64    `json:"quota"`
	Minted    uint64    `json:"minted"`
	Remaining uint64    `json:"remaining"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toRecordResponse(rec minter.Record) RecordResponse {
	return RecordResponse{
		Address:   rec.Address.String(),
		Config:    rec.Config.String(),
		Authority: rec.Authority.String(),
		Quota:     rec.Quota,
		Minted:    rec.Minted,
		Remaining: rec.Remaining(),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func assetParam(r *http.Request) (domain.AssetID, error) {
	asset, err := domain.ParseAssetID(chi.URLParam(r, "asset"))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid asset id")
	}
	return asset, nil
}

func authorityParam(r *http.Request) (domain.Identity, error) {
	authority, err := domain.ParseIdentity(chi.URLParam(r, "authority"))
	if err != nil {
		return domain.Identity{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid authority")
	}
	return authority, nil
}

// HandleGrant handles POST /instruments/{asset}/minters.
func (h *Handler) HandleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	asset, err := assetParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[GrantRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	authority, err := domain.ParseIdentity(req.Authority)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid authority"))
		return
	}

	rec, err := h.service.Grant(ctx, asset, authority, req.Quota)
	if err != nil {
		httputil.LogAndWriteError(w, h.logger, requestcontext.RequestID(ctx), "minter grant failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRecordResponse(rec))
}

// HandleSetQuota handles PUT /instruments/{asset}/minters/{authority}/quota.
func (h *Handler) HandleSetQuota(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	asset, err := assetParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	authority, err := authorityParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[QuotaRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rec, err := h.service.SetQuota(ctx, asset, authority, req.Quota)
	if err != nil {
		httputil.LogAndWriteError(w, h.logger, requestcontext.RequestID(ctx), "quota update failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(rec))
}

// HandleRevoke handles DELETE /instruments/{asset}/minters/{authority}.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	asset, err := assetParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	authority, err := authorityParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rec, err := h.service.Revoke(ctx, asset, authority)
	if err != nil {
		httputil.LogAndWriteError(w, h.logger, requestcontext.RequestID(ctx), "minter revoke failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(rec))
}

// HandleIssue handles POST /instruments/{asset}/issue.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	asset, err := assetParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[AmountRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	dest, err := domain.ParseAccountID(req.Account)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidAccount, "invalid account id"))
		return
	}

	rec, err := h.service.Issue(ctx, asset, dest, req.Amount)
	if err != nil {
		httputil.LogAndWriteError(w, h.logger, requestcontext.RequestID(ctx), "issuance failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(rec))
}

// HandleRedeem handles POST /instruments/{asset}/redeem.
func (h *Handler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	asset, err := assetParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[AmountRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	source, err := domain.ParseAccountID(req.Account)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidAccount, "invalid account id"))
		return
	}

	if err := h.service.Redeem(ctx, asset, source, req.Amount); err != nil {
		httputil.LogAndWriteError(w, h.logger, requestcontext.RequestID(ctx), "redemption failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGet handles GET /instruments/{asset}/minters/{authority}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	asset, err := assetParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	authority, err := authorityParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rec, err := h.service.Get(r.Context(), asset, authority)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(rec))
}

// HandleList handles GET /instruments/{asset}/minters.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	asset, err := assetParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	recs, err := h.service.List(r.Context(), asset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]RecordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRecordResponse(rec))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
