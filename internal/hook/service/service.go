// Package service orchestrates hook administration and the synchronous
// transfer validation gate.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mintgate/internal/addressing"
	"mintgate/internal/hook"
	"mintgate/internal/hook/metrics"
	"mintgate/internal/instrument"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/audit"
	"mintgate/pkg/platform/sentinel"
	"mintgate/pkg/platform/tx"
	"mintgate/pkg/requestcontext"
)

// Instruments is the slice of the instrument module this service needs.
type Instruments interface {
	Get(ctx context.Context, asset domain.AssetID) (instrument.Config, error)
}

// Blacklist answers existence probes for a config and user.
type Blacklist interface {
	Probe(ctx context.Context, config domain.Address, user domain.Identity) (bool, error)
}

// Service implements hook operations.
type Service struct {
	store       hook.Store
	instruments Instruments
	blacklist   Blacklist
	runner      tx.Runner
	logger      *slog.Logger
	audit       audit.Publisher
	security    audit.Publisher
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAuditPublisher sets the fail-closed publisher for hook admin events.
func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) {
		s.audit = p
	}
}

// WithSecurityPublisher sets the fail-open publisher for transfer rejections.
func WithSecurityPublisher(p audit.Publisher) Option {
	return func(s *Service) {
		s.security = p
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates the hook service.
func New(store hook.Store, instruments Instruments, bl Blacklist, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		store:       store,
		instruments: instruments,
		blacklist:   bl,
		runner:      runner,
		logger:      slog.Default(),
		tracer:      otel.Tracer("mintgate/hook"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize creates the hook configuration for an asset. Only the
// instrument's master authority may attach a hook, and only when the
// instrument was created with the hook feature enabled.
func (s *Service) Initialize(ctx context.Context, asset domain.AssetID) (hook.Config, error) {
	actor := requestcontext.Identity(ctx)
	var created hook.Config
	err := s.runner.Do(ctx, func(ctx context.Context) error {
		instrCfg, err := s.instruments.Get(ctx, asset)
		if err != nil {
			return err
		}
		if err := instrument.Authorize(instrCfg, instrument.RoleMaster, actor); err != nil {
			return err
		}
		if !instrCfg.EnableHook {
			return dErrors.New(dErrors.CodeComplianceNotEnabled, "transfer compliance is not enabled for this instrument")
		}

		address, err := addressing.HookAddress(asset)
		if err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		cfg := hook.Config{
			Address:   address,
			Asset:     asset,
			Program:   addressing.IssuanceProgram(),
			Authority: actor,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.Create(ctx, cfg); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "hook already initialized for this asset")
			}
			return err
		}
		created = cfg

		return s.emit(ctx, audit.Event{
			Action: string(audit.EventHookInitialized),
			Asset:  asset,
			Actor:  actor,
		})
	})
	if err != nil {
		return hook.Config{}, err
	}
	return created, nil
}

// Get returns the hook configuration for an asset.
func (s *Service) Get(ctx context.Context, asset domain.AssetID) (hook.Config, error) {
	address, err := addressing.HookAddress(asset)
	if err != nil {
		return hook.Config{}, err
	}
	cfg, err := s.store.Get(ctx, address)
	if errors.Is(err, sentinel.ErrNotFound) {
		return hook.Config{}, dErrors.New(dErrors.CodeNotFound, "hook not found")
	}
	return cfg, err
}

// SetPaused sets the hook pause flag. Hook authority only.
func (s *Service) SetPaused(ctx context.Context, asset domain.AssetID, paused bool) (hook.Config, error) {
	actor := requestcontext.Identity(ctx)
	var updated hook.Config
	err := s.runner.Do(ctx, func(ctx context.Context) error {
		cfg, err := s.Get(ctx, asset)
		if err != nil {
			return err
		}
		if cfg.Authority != actor || actor.IsNil() {
			return dErrors.New(dErrors.CodeUnauthorized, "identity does not hold the hook authority")
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

		action := audit.EventHookPaused
		if !paused {
			action = audit.EventHookUnpaused
		}
		return s.emit(ctx, audit.Event{
			Action: string(action),
			Asset:  asset,
			Actor:  actor,
		})
	})
	if err != nil {
		return hook.Config{}, err
	}
	return updated, nil
}

// UpdateAuthority hands the hook authority to a new identity.
func (s *Service) UpdateAuthority(ctx context.Context, asset domain.AssetID, newAuthority domain.Identity) (hook.Config, error) {
	actor := requestcontext.Identity(ctx)
	if newAuthority.IsNil() {
		return hook.Config{}, dErrors.New(dErrors.CodeInvalidInput, "new authority is required")
	}
	var updated hook.Config
	err := s.runner.Do(ctx, func(ctx context.Context) error {
		cfg, err := s.Get(ctx, asset)
		if err != nil {
			return err
		}
		if cfg.Authority != actor || actor.IsNil() {
			return dErrors.New(dErrors.CodeUnauthorized, "identity does not hold the hook authority")
		}

		cfg.Authority = newAuthority
		cfg.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Update(ctx, cfg); err != nil {
			return err
		}
		updated = cfg

		return s.emit(ctx, audit.Event{
			Action:  string(audit.EventHookAuthorityUpdated),
			Asset:   asset,
			Actor:   actor,
			Subject: newAuthority.String(),
		})
	})
	if err != nil {
		return hook.Config{}, err
	}
	return updated, nil
}

// Execute validates one transfer. A nil return accepts it; any error rejects
// it. Checks run in a fixed order so a transfer that trips several gates
// always reports the same one: hook pause, instrument pause, sender
// blacklist, recipient blacklist.
func (s *Service) Execute(ctx context.Context, transfer hook.Transfer) error {
	ctx, span := s.tracer.Start(ctx, "hook.Execute",
		trace.WithAttributes(
			attribute.String("asset", transfer.Asset.String()),
			attribute.Int64("amount", int64(transfer.Amount)),
		),
	)
	defer span.End()
	start := time.Now()

	err := s.validate(ctx, transfer)

	outcome := "accepted"
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
		span.SetAttributes(attribute.String("rejection", outcome))
		s.reportRejection(ctx, transfer, err)
	}
	if s.metrics != nil {
		s.metrics.RecordDecision(outcome)
		s.metrics.ObserveDuration(time.Since(start).Seconds())
	}
	return err
}

func (s *Service) validate(ctx context.Context, transfer hook.Transfer) error {
	if transfer.Amount == 0 {
		return dErrors.New(dErrors.CodeInvalidAmount, "transfer amount must be positive")
	}
	if transfer.Source.Owner.IsNil() || transfer.Dest.Owner.IsNil() {
		return dErrors.New(dErrors.CodeInvalidAccount, "transfer parties require owner identities")
	}

	hookCfg, err := s.Get(ctx, transfer.Asset)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return dErrors.New(dErrors.CodeInvalidAccount, "no hook is configured for this asset")
		}
		return err
	}
	if hookCfg.Paused {
		return dErrors.New(dErrors.CodeTransferPaused, "transfers are paused")
	}

	instrCfg, err := s.instruments.Get(ctx, transfer.Asset)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return dErrors.New(dErrors.CodeInvalidAccount, "no instrument is configured for this asset")
		}
		return err
	}
	if instrCfg.Paused {
		return dErrors.New(dErrors.CodeTokenPaused, "instrument is paused")
	}

	listed, err := s.blacklist.Probe(ctx, instrCfg.Address, transfer.Source.Owner)
	if err != nil {
		return err
	}
	if listed {
		return dErrors.New(dErrors.CodeSenderBlacklisted, "sender is blacklisted")
	}

	listed, err = s.blacklist.Probe(ctx, instrCfg.Address, transfer.Dest.Owner)
	if err != nil {
		return err
	}
	if listed {
		return dErrors.New(dErrors.CodeRecipientBlacklisted, "recipient is blacklisted")
	}
	return nil
}

// reportRejection emits a fail-open security event. Rejections must never be
// blocked on audit delivery; the transfer is already refused.
func (s *Service) reportRejection(ctx context.Context, transfer hook.Transfer, cause error) {
	if s.security == nil {
		return
	}
	_ = s.security.Emit(ctx, audit.Event{
		Action:    string(audit.EventTransferRejected),
		Asset:     transfer.Asset,
		Actor:     transfer.Source.Owner,
		Subject:   transfer.Dest.Owner.String(),
		Decision:  "rejected",
		Reason:    string(dErrors.CodeOf(cause)),
		Amount:    transfer.Amount,
		RequestID: requestcontext.RequestID(ctx),
		Timestamp: requestcontext.Now(ctx),
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
