// Package handler wires hook administration and the ledger-facing transfer
// validation endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mintgate/internal/hook"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/httputil"
	"mintgate/pkg/requestcontext"
)

// Service defines the hook operations the handler needs.
type Service interface {
	Initialize(ctx context.Context, asset domain.AssetID) (hook.Config, error)
	Get(ctx context.Context, asset domain.AssetID) (hook.Config, error)
	SetPaused(ctx context.Context, asset domain.AssetID, paused bool) (hook.Config, error)
	UpdateAuthority(ctx context.Context, asset domain.AssetID, newAuthority domain.Identity) (hook.Config, error)
	Execute(ctx context.Context, transfer hook.Transfer) error
}

// Handler serves the hook endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a hook handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterCommands mounts the state-changing admin endpoints.
func (h *Handler) RegisterCommands(r chi.Router) {
	r.Post("/hooks", h.HandleInitialize)
	r.Post("/hooks/{asset}/pause", h.HandlePause)
	r.Post("/hooks/{asset}/unpause", h.HandleUnpause)
	r.Put("/hooks/{asset}/authority", h.HandleUpdateAuthority)
}

// RegisterQueries mounts the read-only endpoints.
func (h *Handler) RegisterQueries(r chi.Router) {
	r.Get("/hooks/{asset}", h.HandleGet)
}

// RegisterExecute mounts the ledger-facing validation endpoint. It carries no
// operator authentication; the ledger calls it service-to-service.
func (h *Handler) RegisterExecute(r chi.Router) {
	r.Post("/hook/execute", h.HandleExecute)
}

// InitializeRequest is the body for POST /hooks.
type InitializeRequest struct {
	Asset string `json:"asset"`
}

// AuthorityRequest is the body for PUT /hooks/{asset}/authority.
type AuthorityRequest struct {
	NewAuthority string `json:"new_authority"`
}

// PartyRequest is one side of a transfer in an execute request.
type PartyRequest struct {
	Account string `json:"account"`
	Owner   string `json:"owner"`
}

// ExecuteRequest is the body for POST /hook/execute.
type ExecuteRequest struct {
	Asset  string       `json:"asset"`
	Source PartyRequest `json:"source"`
	Dest   PartyRequest `json:"dest"`
	Amount uint64       `json:"amount"`
}

// ConfigResponse is the JSON view of a hook configuration.
type ConfigResponse struct {
	Address   string    `json:"address"`
	Asset     string    `json:"asset"`
	Program   string    `json:"program"`
	Authority string    `json:"authority"`
	Paused    bool      `json:"paused"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExecuteResponse reports an accepted transfer.
type ExecuteResponse struct {
	Allowed bool `json:"allowed"`
}

func toConfigResponse(cfg hook.Config) ConfigResponse {
	return ConfigResponse{
		Address:   cfg.Address.String(),
		Asset:     cfg.Asset.String(),
		Program:   cfg.Program.String(),
		Authority: cfg.Authority.String(),
		Paused:    cfg.Paused,
		CreatedAt: cfg.CreatedAt,
		UpdatedAt: cfg.UpdatedAt,
	}
}

func assetParam(r *http.Request) (domain.AssetID, error) {
	asset, err := domain.ParseAssetID(chi.URLParam(r, "asset"))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid asset id")
	}
	return asset, nil
}

// HandleInitialize handles POST /hooks.
func (h *Handler) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
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

	cfg, err := h.service.Initialize(ctx, asset)
	if err != nil {
		httputil.LogAndWriteError(w, h.logger, requestcontext.RequestID(ctx), "hook initialization failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toConfigResponse(cfg))
}

// HandleGet handles GET /hooks/{asset}.
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

// HandlePause handles POST /hooks/{asset}/pause.
func (h *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	h.setPaused(w, r, true)
}

// HandleUnpause handles POST /hooks/{asset}/unpause.
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
		httputil.LogAndWriteError(w, h.logger, requestcontext.RequestID(ctx), "hook pause update failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConfigResponse(cfg))
}

// HandleUpdateAuthority handles PUT /hooks/{asset}/authority.
func (h *Handler) HandleUpdateAuthority(w http.ResponseWriter, r *http.Request) {
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
	newAuthority, err := domain.ParseIdentity(req.NewAuthority)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid new_authority"))
		return
	}

	cfg, err := h.service.UpdateAuthority(ctx, asset, newAuthority)
	if err != nil {
		httputil.LogAndWriteError(w, h.logger, requestcontext.RequestID(ctx), "hook authority update failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConfigResponse(cfg))
}

// HandleExecute handles POST /hook/execute. Accepted transfers return 200;
// rejected transfers return the mapped error status so the ledger can
// distinguish policy rejections from service failures.
func (h *Handler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.Decode[ExecuteRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	transfer, err := parseTransfer(req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Execute(ctx, transfer); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ExecuteResponse{Allowed: true})
}

func parseTransfer(req ExecuteRequest) (hook.Transfer, error) {
	asset, err := domain.ParseAssetID(req.Asset)
	if err != nil {
		return hook.Transfer{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid asset id")
	}
	source, err := parseParty("source", req.Source)
	if err != nil {
		return hook.Transfer{}, err
	}
	dest, err := parseParty("dest", req.Dest)
	if err != nil {
		return hook.Transfer{}, err
	}
	return hook.Transfer{
		Asset:  asset,
		Source: source,
		Dest:   dest,
		Amount: req.Amount,
	}, nil
}

func parseParty(side string, req PartyRequest) (hook.Party, error) {
	account, err := domain.ParseAccountID(req.Account)
	if err != nil {
		return hook.Party{}, dErrors.Wrap(err, dErrors.CodeInvalidAccount, "invalid "+side+" account")
	}
	owner, err := domain.ParseIdentity(req.Owner)
	if err != nil {
		return hook.Party{}, dErrors.Wrap(err, dErrors.CodeInvalidAccount, "invalid "+side+" owner")
	}
	return hook.Party{Account: account, Owner: owner}, nil
}
