// Package service orchestrates instrument lifecycle operations: creation,
// pause state, role management and the enforcement actions that reach the
// ledger (freeze, thaw, seize).
package service

import (
	"context"
	"errors"
	"log/slog"

	"mintgate/internal/addressing"
	"mintgate/internal/instrument"
	"mintgate/internal/ledger"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/audit"
	"mintgate/pkg/platform/sentinel"
	"mintgate/pkg/platform/tx"
	"mintgate/pkg/requestcontext"
)

// Service implements instrument operations.
type Service struct {
	store  instrument.Store
	ledger ledger.Ledger
	runner tx.Runner
	logger *slog.Logger
	audit  audit.Publisher
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAuditPublisher sets the compliance audit publisher. Operations fail
// when the publisher does.
func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) {
		s.audit = p
	}
}

// New creates the instrument service.
func New(store instrument.Store, ldg ledger.Ledger, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		store:  store,
		ledger: ldg,
		runner: runner,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitializeParams carries the inputs for creating an instrument.
// Role identities left zero default to the master authority.
type InitializeParams struct {
	Asset         domain.AssetID
	Name          string
	Symbol        string
	URI           string
	Decimals      uint8
	EnableSeize   bool
	EnableHook    bool
	DefaultFrozen bool
	Blacklister   domain.Identity
	Pauser        domain.Identity
	Seizer        domain.Identity
}

// Initialize creates the configuration for an asset. The authenticated caller
// becomes the master authority.
func (s *Service) Initialize(ctx context.Context, params InitializeParams) (instrument.Config, error) {
	actor := requestcontext.Identity(ctx)
	if actor.IsNil() {
		return instrument.Config{}, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if err := validateMetadata(params.Name, params.Symbol, params.URI); err != nil {
		return instrument.Config{}, err
	}
	if params.Asset.IsNil() {
		return instrument.Config{}, dErrors.New(dErrors.CodeInvalidInput, "asset id is required")
	}

	address, err := addressing.ConfigAddress(params.Asset)
	if err != nil {
		return instrument.Config{}, err
	}

	now := requestcontext.Now(ctx)
	cfg := instrument.Config{
		Address:         address,
		Asset:           params.Asset,
		MasterAuthority: actor,
		Blacklister:     orDefault(params.Blacklister, actor),
		Pauser:          orDefault(params.Pauser, actor),
		Seizer:          orDefault(params.Seizer, actor),
		Name:            params.Name,
		Symbol:          params.Symbol,
		URI:             params.URI,
		Decimals:        params.Decimals,
		EnableSeize:     params.EnableSeize,
		EnableHook:      params.EnableHook,
		DefaultFrozen:   params.DefaultFrozen,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.runner.Do(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, cfg); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "instrument already initialized for this asset")
			}
			return err
		}
		return s.emit(ctx, audit.Event{
			Action: string(audit.EventInstrumentInitialized),
			Asset:  cfg.Asset,
			Actor:  actor,
		})
	})
	if err != nil {
		return instrument.Config{}, err
	}

	s.logger.InfoContext(ctx, "instrument initialized",
		"asset", cfg.Asset,
		"address", cfg.Address,
	)
	return cfg, nil
}

// Get returns the configuration for an asset.
func (s *Service) Get(ctx context.Context, asset domain.AssetID) (instrument.Config, error) {
	address, err := addressing.ConfigAddress(asset)
	if err != nil {
		return instrument.Config{}, err
	}
	cfg, err := s.store.Get(ctx, address)
	if errors.Is(err, sentinel.ErrNotFound) {
		return instrument.Config{}, dErrors.New(dErrors.CodeNotFound, "instrument not found")
	}
	return cfg, err
}

// SetPaused sets the instrument pause flag. Only the pauser may call it;
// setting the current value is an idempotent success.
func (s *Service) SetPaused(ctx context.Context, asset domain.AssetID, paused bool) (instrument.Config, error) {
	actor := requestcontext.Identity(ctx)
	var updated instrument.Config
	err := s.runner.Do(ctx, func(ctx context.Context) error {
		cfg, err := s.Get(ctx, asset)
		if err != nil {
			return err
		}
		if err := instrument.Authorize(cfg, instrument.RolePauser, actor); err != nil {
			return err
		}
		if cfg.Paused == paused {
			updated = cfg
			return nil
		}

		cfg.Paused = paused
		cfg.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Update(ctx, cfg); err != nil {
			return err
		}
		updated = cfg

		action := audit.EventInstrumentPaused
		if !paused {
			action = audit.EventInstrumentUnpaused
		}
		return s.emit(ctx, audit.Event{
			Action: string(action),
			Asset:  asset,
			Actor:  actor,
		})
	})
	if err != nil {
		return instrument.Config{}, err
	}
	return updated, nil
}

// RoleUpdate carries optional new role holders; nil leaves a role unchanged.
type RoleUpdate struct {
	Blacklister *domain.Identity
	Pauser      *domain.Identity
	Seizer      *domain.Identity
}

// UpdateRoles reassigns delegated roles. Master authority only.
func (s *Service) UpdateRoles(ctx context.Context, asset domain.AssetID, update RoleUpdate) (instrument.Config, error) {
	actor := requestcontext.Identity(ctx)
	var updated instrument.Config
	err := s.runner.Do(ctx, func(ctx context.Context) error {
		cfg, err := s.Get(ctx, asset)
		if err != nil {
			return err
		}
		if err := instrument.Authorize(cfg, instrument.RoleMaster, actor); err != nil {
			return err
		}

		if update.Blacklister != nil {
			cfg.Blacklister = *update.Blacklister
		}
		if update.Pauser != nil {
			cfg.Pauser = *update.Pauser
		}
		if update.Seizer != nil {
			cfg.Seizer = *update.Seizer
		}
		cfg.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Update(ctx, cfg); err != nil {
			return err
		}
		updated = cfg

		return s.emit(ctx, audit.Event{
			Action: string(audit.EventRolesUpdated),
			Asset:  asset,
			Actor:  actor,
		})
	})
	if err != nil {
		return instrument.Config{}, err
	}
	return updated, nil
}

// TransferAuthority hands the master authority to a new identity.
func (s *Service) TransferAuthority(ctx context.Context, asset domain.AssetID, newMaster domain.Identity) (instrument.Config, error) {
	actor := requestcontext.Identity(ctx)
	if newMaster.IsNil() {
		return instrument.Config{}, dErrors.New(dErrors.CodeInvalidInput, "new master authority is required")
	}
	var updated instrument.Config
	err := s.runner.Do(ctx, func(ctx context.Context) error {
		cfg, err := s.Get(ctx, asset)
		if err != nil {
			return err
		}
		if err := instrument.Authorize(cfg, instrument.RoleMaster, actor); err != nil {
			return err
		}

		cfg.MasterAuthority = newMaster
		cfg.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Update(ctx, cfg); err != nil {
			return err
		}
		updated = cfg

		return s.emit(ctx, audit.Event{
			Action:  string(audit.EventAuthorityTransferred),
			Asset:   asset,
			Actor:   actor,
			Subject: newMaster.String(),
		})
	})
	if err != nil {
		return instrument.Config{}, err
	}
	return updated, nil
}

// Freeze freezes a ledger account. The ledger owns frozen state; this is a
// pass-through that works even while the instrument is paused.
func (s *Service) Freeze(ctx context.Context, asset domain.AssetID, account domain.AccountID) error {
	return s.freezeOp(ctx, asset, account, true)
}

// Thaw clears a ledger account's frozen state.
func (s *Service) Thaw(ctx context.Context, asset domain.AssetID, account domain.AccountID) error {
	return s.freezeOp(ctx, asset, account, false)
}

func (s *Service) freezeOp(ctx context.Context, asset domain.AssetID, account domain.AccountID, freeze bool) error {
	actor := requestcontext.Identity(ctx)
	if account.IsNil() {
		return dErrors.New(dErrors.CodeInvalidAccount, "account id is required")
	}
	return s.runner.Do(ctx, func(ctx context.Context) error {
		cfg, err := s.Get(ctx, asset)
		if err != nil {
			return err
		}

		action := audit.EventAccountFrozen
		if !freeze {
			action = audit.EventAccountThawed
		}
		if err := s.emit(ctx, audit.Event{
			Action:  string(action),
			Asset:   cfg.Asset,
			Actor:   actor,
			Subject: account.String(),
		}); err != nil {
			return err
		}

		if freeze {
			return s.ledger.Freeze(ctx, cfg.Asset, account)
		}
		return s.ledger.Thaw(ctx, cfg.Asset, account)
	})
}

// Seize moves tokens from source to destination under the permanent delegate
// authority. Requires the seizer role and the seize feature flag.
func (s *Service) Seize(ctx context.Context, asset domain.AssetID, source, dest domain.AccountID, amount uint64) error {
	actor := requestcontext.Identity(ctx)
	if amount == 0 {
		return dErrors.New(dErrors.CodeInvalidAmount, "seize amount must be positive")
	}
	if source.IsNil() || dest.IsNil() {
		return dErrors.New(dErrors.CodeInvalidAccount, "source and destination accounts are required")
	}
	return s.runner.Do(ctx, func(ctx context.Context) error {
		cfg, err := s.Get(ctx, asset)
		if err != nil {
			return err
		}
		if err := instrument.Authorize(cfg, instrument.RoleSeizer, actor); err != nil {
			return err
		}
		if !cfg.EnableSeize {
			return dErrors.New(dErrors.CodePermanentDelegateNotEnabled, "seizure is not enabled for this instrument")
		}

		// The audit record commits only if the ledger transfer succeeds.
		if err := s.emit(ctx, audit.Event{
			Action:  string(audit.EventTokensSeized),
			Asset:   cfg.Asset,
			Actor:   actor,
			Subject: source.String(),
			Amount:  amount,
		}); err != nil {
			return err
		}
		return s.ledger.TransferWithAuthority(ctx, cfg.Asset, source, dest, amount, cfg.Decimals)
	})
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.audit == nil {
		return nil
	}
	event.RequestID = requestcontext.RequestID(ctx)
	event.Timestamp = requestcontext.Now(ctx)
	return s.audit.Emit(ctx, event)
}

func validateMetadata(name, symbol, uri string) error {
	if name == "" || len(name) > instrument.MaxNameLen {
		return dErrors.Newf(dErrors.CodeInvalidAccount, "name must be 1-%d characters", instrument.MaxNameLen)
	}
	if symbol == "" || len(symbol) > instrument.MaxSymbolLen {
		return dErrors.Newf(dErrors.CodeInvalidAccount, "symbol must be 1-%d characters", instrument.MaxSymbolLen)
	}
	if len(uri) > instrument.MaxURILen {
		return dErrors.Newf(dErrors.CodeInvalidAccount, "uri must be at most %d characters", instrument.MaxURILen)
	}
	return nil
}

func orDefault(id, fallback domain.Identity) domain.Identity {
	if id.IsNil() {
		return fallback
	}
	return id
}
