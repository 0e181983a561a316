// Package service orchestrates blacklist management and the existence probe
// used by the transfer hook.
package service

import (
	"context"
	"errors"
	"log/slog"

	"mintgate/internal/addressing"
	"mintgate/internal/blacklist"
	"mintgate/internal/blacklist/cache"
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

// Service implements blacklist operations.
type Service struct {
	store       blacklist.Store
	instruments Instruments
	runner      tx.Runner
	cache       *cache.Cache
	logger      *slog.Logger
	audit       audit.Publisher
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

// WithCache sets the existence cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// New creates the blacklist service.
func New(store blacklist.Store, instruments Instruments, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		store:       store,
		instruments: instruments,
		runner:      runner,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add blacklists an identity under an instrument. Blacklister role only, and
// only when the instrument enforces transfer compliance.
func (s *Service) Add(ctx context.Context, asset domain.AssetID, user domain.Identity, reason string) (blacklist.Entry, error) {
	actor := requestcontext.Identity(ctx)
	if user.IsNil() {
		return blacklist.Entry{}, dErrors.New(dErrors.CodeInvalidInput, "user identity is required")
	}
	if len(reason) > blacklist.MaxReasonLen {
		return blacklist.Entry{}, dErrors.Newf(dErrors.CodeInvalidAccount,
			"reason must be at most %d characters", blacklist.MaxReasonLen)
	}

	var created blacklist.Entry
	err := s.runner.Do(ctx, func(ctx context.Context) error {
		cfg, err := s.instruments.Get(ctx, asset)
		if err != nil {
			return err
		}
		if err := instrument.Authorize(cfg, instrument.RoleBlacklister, actor); err != nil {
			return err
		}
		if !cfg.EnableHook {
			return dErrors.New(dErrors.CodeComplianceNotEnabled, "transfer compliance is not enabled for this instrument")
		}

		address, err := addressing.BlacklistAddress(cfg.Address, user)
		if err != nil {
			return err
		}
		entry := blacklist.Entry{
			Address:   address,
			Config:    cfg.Address,
			User:      user,
			Reason:    reason,
			CreatedAt: requestcontext.Now(ctx),
		}
		if err := s.store.Create(ctx, entry); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeAlreadyBlacklisted, "identity is already blacklisted")
			}
			return err
		}
		created = entry

		return s.emit(ctx, audit.Event{
			Action:  string(audit.EventBlacklistAdded),
			Asset:   asset,
			Actor:   actor,
			Subject: user.String(),
			Reason:  reason,
		})
	})
	if err != nil {
		return blacklist.Entry{}, err
	}

	s.cache.Forget(ctx, created.Address)
	return created, nil
}

// Remove clears a blacklist entry.
func (s *Service) Remove(ctx context.Context, asset domain.AssetID, user domain.Identity) error {
	actor := requestcontext.Identity(ctx)
	var address domain.Address
	err := s.runner.Do(ctx, func(ctx context.Context) error {
		cfg, err := s.instruments.Get(ctx, asset)
		if err != nil {
			return err
		}
		if err := instrument.Authorize(cfg, instrument.RoleBlacklister, actor); err != nil {
			return err
		}
		if !cfg.EnableHook {
			return dErrors.New(dErrors.CodeComplianceNotEnabled, "transfer compliance is not enabled for this instrument")
		}

		if address, err = addressing.BlacklistAddress(cfg.Address, user); err != nil {
			return err
		}
		if err := s.store.Delete(ctx, address); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotBlacklisted, "identity is not blacklisted")
			}
			return err
		}

		return s.emit(ctx, audit.Event{
			Action:  string(audit.EventBlacklistRemoved),
			Asset:   asset,
			Actor:   actor,
			Subject: user.String(),
		})
	})
	if err != nil {
		return err
	}

	s.cache.Forget(ctx, address)
	return nil
}

// Get returns the blacklist entry for an identity.
func (s *Service) Get(ctx context.Context, asset domain.AssetID, user domain.Identity) (blacklist.Entry, error) {
	cfg, err := s.instruments.Get(ctx, asset)
	if err != nil {
		return blacklist.Entry{}, err
	}
	address, err := addressing.BlacklistAddress(cfg.Address, user)
	if err != nil {
		return blacklist.Entry{}, err
	}
	entry, err := s.store.Find(ctx, address)
	if errors.Is(err, sentinel.ErrNotFound) {
		return blacklist.Entry{}, dErrors.New(dErrors.CodeNotBlacklisted, "identity is not blacklisted")
	}
	return entry, err
}

// Probe answers the hot-path existence question for a config and user. The
// cache is consulted first; the store is authoritative and its answer is
// written through.
func (s *Service) Probe(ctx context.Context, config domain.Address, user domain.Identity) (bool, error) {
	address, err := addressing.BlacklistAddress(config, user)
	if err != nil {
		return false, err
	}
	if listed, known := s.cache.Probe(ctx, address); known {
		return listed, nil
	}
	listed, err := s.store.Exists(ctx, address)
	if err != nil {
		return false, err
	}
	s.cache.Store(ctx, address, listed)
	return listed, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.audit == nil {
		return nil
	}
	event.RequestID = requestcontext.RequestID(ctx)
	event.Timestamp = requestcontext.Now(ctx)
	return s.audit.Emit(ctx, event)
}
