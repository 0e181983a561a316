// Package handler wires instrument endpoints to the instrument service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mintgate/internal/instrument"
	"mintgate/internal/instrument/service"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/httputil"
	"mintgate/pkg/requestcontext"
)

// Service defines the instrument operations the handler needs.
type Service interface {
	Initialize(ctx context.Context, params service.InitializeParams) (instrument.Config, error)
	Get(ctx context.Context, asset domain.AssetID) (instrument.Config, error)
	SetPaused(ctx context.Context, asset domain.AssetID, paused bool) (instrument.Config, error)
	UpdateRoles(ctx context.Context, asset domain.AssetID, update service.RoleUpdate) (instrument.Config, error)
	TransferAuthority(ctx context.Context, asset domain.AssetID, newMaster domain.Identity) (instrument.Config, error)
	Freeze(ctx context.Context, asset domain.AssetID, account domain.AccountID) error
	Thaw(ctx context.Context, asset domain.AssetID, account domain.AccountID) error
	Seize(ctx context.Context, asset domain.AssetID, source, dest domain.AccountID, amount uint64) error
}

// Handler serves the instrument endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an instrument handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterCommands mounts the state-changing endpoints. The router guards
// these with signature authentication.
func (h *Handler) RegisterCommands(r chi.Router) {
	r.Post("/instruments", h.HandleInitialize)
	r.Post("/instruments/{asset}/pause", h.HandlePause)
	r.Post("/instruments/{asset}/unpause", h.HandleUnpause)
	r.Put("/instruments/{asset}/roles", h.HandleUpdateRoles)
	r.Put("/instruments/{asset}/authority", h.HandleTransferAuthority)
	r.Post("/instruments/{asset}/freeze", h.HandleFreeze)
	r.Post("/instruments/{asset}/thaw", h.HandleThaw)
	r.Post("/instruments/{asset}/seize", h.HandleSeize)
}

// RegisterQueries mounts the read-only endpoints.
func (h *Handler) RegisterQueries(r chi.Router) {
	r.Get("/instruments/{asset}", h.HandleGet)
}

func assetParam(r *http.Request) (domain.AssetID, error) {
	asset, err := domain.ParseAssetID(chi.URLParam(r, "asset"))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid asset id")
	}
	return asset, nil
}

// HandleInitialize handles POST /instruments.
func (h *Handler) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, err := httputil.Decode[InitializeRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	asset, err := domain.ParseAssetID(req.Asset)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid asset id"))
		return
	}
	params := service.InitializeParams{
		Asset:         asset,
		Name:          req.Name,
		Symbol:        req.Symbol,
		URI:           req.URI,
		Decimals:      req.Decimals,
		EnableSeize:   req.EnableSeize,
		EnableHook:    req.EnableHook,
		DefaultFrozen: req.DefaultFrozen,
	}
	if params.Blacklister, err = parseOptionalIdentity("blacklister", req.Blacklister); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if params.Pauser, err = parseOptionalIdentity("pauser", req.Pauser); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if params.Seizer, err = parseOptionalIdentity("seizer", req.Seizer); err != nil {
		httputil.WriteError(w, err)
		return
	}

	cfg, err := h.service.Initialize(ctx, params)
	if err != nil {
		httputil.LogAndWriteError(w, h.logger, requestID, "instrument initialization failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toConfigResponse(cfg))
}

// HandleGet handles GET /instruments/{asset}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	asset, err := assetParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cfg, err := h.service.Get(r.Context(), asset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConfigResponse(cfg))
}

// HandlePause handles POST /instruments/{asset}/pause.
func (h *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	h.setPaused(w, r, true)
}

// HandleUnpause handles POST /instruments/{asset}/unpause.
func (h *Handler) HandleUnpause(w http.ResponseWriter, r *http.Request) {
	h.setPaused(w, r, false)
}

func (h *Handler) setPaused(w http.ResponseWriter, r *http.Request, paused bool) {
	ctx := r.Context()
	asset, err := assetParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cfg, err := h.service.SetPaused(ctx, asset, paused)
	if err != nil {
		httputil.LogAndWriteError(w, h.logger, requestcontext.RequestID(ctx), "pause update failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConfigResponse(cfg))
}

// HandleUpdateRoles handles PUT /instruments/{asset}/roles.
func (h *Handler) HandleUpdateRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	asset, err := assetParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[RolesRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var update service.RoleUpdate
	if update.Blacklister, err = parseOptionalIdentityPtr("blacklister", req.Blacklister); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if update.Pauser, err = parseOptionalIdentityPtr("pauser", req.Pauser); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if update.Seizer, err = parseOptionalIdentityPtr("seizer", req.Seizer); err != nil {
		httputil.WriteError(w, err)
		return
	}

	cfg, err := h.service.UpdateRoles(ctx, asset, update)
	if err != nil {
		httputil.LogAndWriteError(w, h.logger, requestcontext.RequestID(ctx), "role update failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConfigResponse(cfg))
}

// HandleTransferAuthority handles PUT /instruments/{asset}/authority.
func (h *Handler) HandleTransferAuthority(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	asset, err := assetParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[AuthorityRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	newMaster, err := domain.ParseIdentity(req.NewAuthority)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid new_authority"))
		return
	}

	cfg, err := h.service.TransferAuthority(ctx, asset, newMaster)
	if err != nil {
		httputil.LogAndWriteError(w, h.logger, requestcontext.RequestID(ctx), "authority transfer failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConfigResponse(cfg))
}

// HandleFreeze handles POST /instruments/{asset}/freeze.
func (h *Handler) HandleFreeze(w http.ResponseWriter, r *http.Request) {
	h.accountOp(w, r, h.service.Freeze, "freeze failed")
}

// HandleThaw handles POST /instruments/{asset}/thaw.
func (h *Handler) HandleThaw(w http.ResponseWriter, r *http.Request) {
	h.accountOp(w, r, h.service.Thaw, "thaw failed")
}

func (h *Handler) accountOp(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, domain.AssetID, domain.AccountID) error,
	failMsg string,
) {
	ctx := r.Context()
	asset, err := assetParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[AccountRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	account, err := domain.ParseAccountID(req.Account)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidAccount, "invalid account id"))
		return
	}

	if err := op(ctx, asset, account); err != nil {
		httputil.LogAndWriteError(w, h.logger, requestcontext.RequestID(ctx), failMsg, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSeize handles POST /instruments/{asset}/seize.
func (h *Handler) HandleSeize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	asset, err := assetParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[SeizeRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	source, err := domain.ParseAccountID(req.Source)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidAccount, "invalid source account"))
		return
	}
	dest, err := domain.ParseAccountID(req.Dest)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidAccount, "invalid dest account"))
		return
	}

	if err := h.service.Seize(ctx, asset, source, dest, req.Amount); err != nil {
		httputil.LogAndWriteError(w, h.logger, requestcontext.RequestID(ctx), "seize failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseOptionalIdentityPtr(field string, value *string) (*domain.Identity, error) {
	if value == nil {
		return nil, nil
	}
	id, err := domain.ParseIdentity(*value)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+field)
	}
	return &id, nil
}
