// Package service orchestrates minter management and the issuance and
// redemption flows that touch the ledger.
package service

import (
	"context"
	"errors"
	"log/slog"

	"mintgate/internal/addressing"
	"mintgate/internal/instrument"
	"mintgate/internal/ledger"
	"mintgate/internal/minter"
	"mintgate/internal/platform/metrics"
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

// Service implements minter operations.
type Service struct {
	store       minter.Store
	instruments Instruments
	ledger      ledger.Ledger
	runner      tx.Runner
	logger      *slog.Logger
	audit       audit.Publisher
	metrics     *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAuditPublisher sets the compliance audit publisher.
func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) {
		s.audit = p
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates the minter service.
func New(store minter.Store, instruments Instruments, ldg ledger.Ledger, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		store:       store,
		instruments: instruments,
		ledger:      ldg,
		runner:      runner,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Grant creates a minter record for an authority. Master authority only.
func (s *Service) Grant(ctx context.Context, asset domain.AssetID, authority domain.Identity, quota uint64) (minter.Record, error) {
	actor := requestcontext.Identity(ctx)
	if authority.IsNil() {
		return minter.Record{}, dErrors.New(dErrors.CodeInvalidInput, "minter authority is required")
	}

	var created minter.Record
	err := s.runner.Do(ctx, func(ctx context.Context) error {
		cfg, err := s.instruments.Get(ctx, asset)
		if err != nil {
			return err
		}
		if err := instrument.Authorize(cfg, instrument.RoleMaster, actor); err != nil {
			return err
		}

		address, err := addressing.MinterAddress(cfg.Address, authority)
		if err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		rec := minter.Record{
			Address:   address,
			Config:    cfg.Address,
			Authority: authority,
			Quota:     quota,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.Create(ctx, rec); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "minter already exists for this authority")
			}
			return err
		}
		created = rec

		return s.emit(ctx, audit.Event{
			Action:  string(audit.EventMinterGranted),
			Asset:   asset,
			Actor:   actor,
			Subject: authority.String(),
			Amount:  quota,
		})
	})
	if err != nil {
		return minter.Record{}, err
	}
	return created, nil
}

// SetQuota replaces a minter's quota. Master authority only. The new quota is
// not validated against the minted total: a quota below it simply blocks
// further issuance until raised again.
func (s *Service) SetQuota(ctx context.Context, asset domain.AssetID, authority domain.Identity, quota uint64) (minter.Record, error) {
	return s.updateRecord(ctx, asset, authority, audit.EventMinterQuotaUpdated, func(rec *minter.Record) {
		rec.Quota = quota
	})
}

// Revoke zeroes a minter's quota. The record and its minted total survive so
// past issuance stays attributable.
func (s *Service) Revoke(ctx context.Context, asset domain.AssetID, authority domain.Identity) (minter.Record, error) {
	return s.updateRecord(ctx, asset, authority, audit.EventMinterRevoked, func(rec *minter.Record) {
		rec.Quota = 0
	})
}

func (s *Service) updateRecord(
	ctx context.Context,
	asset domain.AssetID,
	authority domain.Identity,
	action audit.AuditEvent,
	mutate func(*minter.Record),
) (minter.Record, error) {
	actor := requestcontext.Identity(ctx)
	var updated minter.Record
	err := s.runner.Do(ctx, func(ctx context.Context) error {
		cfg, err := s.instruments.Get(ctx, asset)
		if err != nil {
			return err
		}
		if err := instrument.Authorize(cfg, instrument.RoleMaster, actor); err != nil {
			return err
		}

		address, err := addressing.MinterAddress(cfg.Address, authority)
		if err != nil {
			return err
		}
		rec, err := s.store.Get(ctx, address)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "minter not found")
		}
		if err != nil {
			return err
		}

		mutate(&rec)
		rec.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Update(ctx, rec); err != nil {
			return err
		}
		updated = rec

		return s.emit(ctx, audit.Event{
			Action:  string(action),
			Asset:   asset,
			Actor:   actor,
			Subject: authority.String(),
			Amount:  rec.Quota,
		})
	})
	if err != nil {
		return minter.Record{}, err
	}
	return updated, nil
}

// Issue mints tokens to a destination account, counting the amount against
// the caller's quota. The quota check, the ledger mint and the minted-total
// update commit or fail as one unit.
func (s *Service) Issue(ctx context.Context, asset domain.AssetID, dest domain.AccountID, amount uint64) (minter.Record, error) {
	actor := requestcontext.Identity(ctx)
	if amount == 0 {
		return minter.Record{}, s.rejectIssue(dErrors.New(dErrors.CodeInvalidAmount, "issue amount must be positive"))
	}
	if dest.IsNil() {
		return minter.Record{}, s.rejectIssue(dErrors.New(dErrors.CodeInvalidAccount, "destination account is required"))
	}

	var updated minter.Record
	err := s.runner.Do(ctx, func(ctx context.Context) error {
		cfg, err := s.instruments.Get(ctx, asset)
		if err != nil {
			return err
		}
		if cfg.Paused {
			return dErrors.New(dErrors.CodeTokenPaused, "instrument is paused")
		}

		address, err := addressing.MinterAddress(cfg.Address, actor)
		if err != nil {
			return err
		}
		rec, err := s.store.Get(ctx, address)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnauthorized, "caller is not a minter for this instrument")
		}
		if err != nil {
			return err
		}

		// Overflow-safe: compare against the remaining headroom instead of
		// computing minted+amount.
		if amount > rec.Remaining() {
			return dErrors.Newf(dErrors.CodeQuotaExceeded,
				"amount %d exceeds remaining quota %d", amount, rec.Remaining())
		}

		if err := s.emit(ctx, audit.Event{
			Action:  string(audit.EventTokensIssued),
			Asset:   asset,
			Actor:   actor,
			Subject: dest.String(),
			Amount:  amount,
		}); err != nil {
			return err
		}

		if err := s.ledger.Mint(ctx, asset, dest, amount, cfg.Decimals); err != nil {
			return err
		}

		rec.Minted += amount
		rec.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Update(ctx, rec); err != nil {
			return err
		}
		updated = rec
		return nil
	})
	if err != nil {
		return minter.Record{}, s.rejectIssue(err)
	}

	if s.metrics != nil {
		s.metrics.IncTokensIssued()
	}
	s.logger.InfoContext(ctx, "tokens issued",
		"asset", asset,
		"amount", amount,
		"minted", updated.Minted,
		"quota", updated.Quota,
	)
	return updated, nil
}

// Redeem burns tokens from a source account. Redemption needs a minter record
// but never affects the quota: redeemed tokens do not restore headroom.
func (s *Service) Redeem(ctx context.Context, asset domain.AssetID, source domain.AccountID, amount uint64) error {
	actor := requestcontext.Identity(ctx)
	if amount == 0 {
		return dErrors.New(dErrors.CodeInvalidAmount, "redeem amount must be positive")
	}
	if source.IsNil() {
		return dErrors.New(dErrors.CodeInvalidAccount, "source account is required")
	}

	err := s.runner.Do(ctx, func(ctx context.Context) error {
		cfg, err := s.instruments.Get(ctx, asset)
		if err != nil {
			return err
		}
		if cfg.Paused {
			return dErrors.New(dErrors.CodeTokenPaused, "instrument is paused")
		}

		address, err := addressing.MinterAddress(cfg.Address, actor)
		if err != nil {
			return err
		}
		if _, err := s.store.Get(ctx, address); errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnauthorized, "caller is not a minter for this instrument")
		} else if err != nil {
			return err
		}

		if err := s.emit(ctx, audit.Event{
			Action:  string(audit.EventTokensRedeemed),
			Asset:   asset,
			Actor:   actor,
			Subject: source.String(),
			Amount:  amount,
		}); err != nil {
			return err
		}
		return s.ledger.Burn(ctx, asset, source, amount, cfg.Decimals)
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncTokensRedeemed()
	}
	return nil
}

// Get returns the minter record for an authority.
func (s *Service) Get(ctx context.Context, asset domain.AssetID, authority domain.Identity) (minter.Record, error) {
	cfg, err := s.instruments.Get(ctx, asset)
	if err != nil {
		return minter.Record{}, err
	}
	address, err := addressing.MinterAddress(cfg.Address, authority)
	if err != nil {
		return minter.Record{}, err
	}
	rec, err := s.store.Get(ctx, address)
	if errors.Is(err, sentinel.ErrNotFound) {
		return minter.Record{}, dErrors.New(dErrors.CodeNotFound, "minter not found")
	}
	return rec, err
}

// List returns all minter records for an instrument.
func (s *Service) List(ctx context.Context, asset domain.AssetID) ([]minter.Record, error) {
	cfg, err := s.instruments.Get(ctx, asset)
	if err != nil {
		return nil, err
	}
	return s.store.ListByConfig(ctx, cfg.Address)
}

func (s *Service) rejectIssue(err error) error {
	if s.metrics != nil {
		s.metrics.IncIssuanceRejected(string(dErrors.CodeOf(err)))
	}
	return err
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.audit == nil {
		return nil
	}
	event.RequestID = requestcontext.RequestID(ctx)
	event.Timestamp = requestcontext.Now(ctx)
	return s.audit.Emit(ctx, event)
}
