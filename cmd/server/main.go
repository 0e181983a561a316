// Command server runs the mintgate control plane: instrument configuration,
// minter quota management, blacklist administration, and the transfer
// validation hook, over a single HTTP surface.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"mintgate/internal/blacklist"
	"mintgate/internal/blacklist/cache"
	blacklisthandler "mintgate/internal/blacklist/handler"
	blacklistsvc "mintgate/internal/blacklist/service"
	blacklistmem "mintgate/internal/blacklist/store/memory"
	blacklistpg "mintgate/internal/blacklist/store/postgres"
	"mintgate/internal/hook"
	hookhandler "mintgate/internal/hook/handler"
	hookmetrics "mintgate/internal/hook/metrics"
	hooksvc "mintgate/internal/hook/service"
	hookmem "mintgate/internal/hook/store/memory"
	hookpg "mintgate/internal/hook/store/postgres"
	"mintgate/internal/instrument"
	instrumenthandler "mintgate/internal/instrument/handler"
	instrumentsvc "mintgate/internal/instrument/service"
	instrumentmem "mintgate/internal/instrument/store/memory"
	instrumentpg "mintgate/internal/instrument/store/postgres"
	"mintgate/internal/ledger"
	"mintgate/internal/minter"
	minterhandler "mintgate/internal/minter/handler"
	mintersvc "mintgate/internal/minter/service"
	mintermem "mintgate/internal/minter/store/memory"
	minterpg "mintgate/internal/minter/store/postgres"
	"mintgate/internal/platform/config"
	"mintgate/internal/platform/httpserver"
	"mintgate/internal/platform/logger"
	"mintgate/internal/platform/metrics"
	"mintgate/internal/platform/redis"
	httptransport "mintgate/internal/transport/http"
	"mintgate/pkg/platform/audit"
	"mintgate/pkg/platform/audit/publishers/compliance"
	"mintgate/pkg/platform/audit/publishers/security"
	auditmem "mintgate/pkg/platform/audit/store/memory"
	auditpg "mintgate/pkg/platform/audit/store/postgres"
	"mintgate/pkg/platform/audit/worker"
	"mintgate/pkg/platform/tx"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// stores groups the per-module persistence implementations so run can swap
// the whole set between PostgreSQL and in-memory backends.
type stores struct {
	instruments instrument.Store
	minters     minter.Store
	blacklist   blacklist.Store
	hooks       hook.Store
	audit       audit.Store
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		db     *sql.DB
		runner tx.Runner = tx.Passthrough()
		st     stores
		checks []httptransport.HealthCheck
	)
	if cfg.Postgres.DSN != "" {
		var err error
		db, err = openPostgres(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer db.Close()

		runner = tx.NewDB(db)
		st = stores{
			instruments: instrumentpg.New(db),
			minters:     minterpg.New(db),
			blacklist:   blacklistpg.New(db),
			hooks:       hookpg.New(db),
			audit:       auditpg.New(db),
		}
		checks = append(checks, httptransport.HealthCheck{Name: "postgres", Check: db.PingContext})
		log.Info("using postgres stores")
	} else {
		st = stores{
			instruments: instrumentmem.New(),
			minters:     mintermem.New(),
			blacklist:   blacklistmem.New(),
			hooks:       hookmem.New(),
			audit:       auditmem.New(),
		}
		log.Warn("no postgres DSN configured, using in-memory stores")
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	var blacklistCache *cache.Cache
	if redisClient != nil {
		defer redisClient.Close()
		blacklistCache = cache.New(redisClient, cfg.Redis.ExistenceTTL, log)
		checks = append(checks, httptransport.HealthCheck{Name: "redis", Check: redisClient.Health})
		log.Info("blacklist existence cache enabled", "ttl", cfg.Redis.ExistenceTTL)
	}

	var ldg ledger.Ledger
	if cfg.Ledger.BaseURL != "" {
		ldg = ledger.NewHTTPClient(cfg.Ledger, log)
	} else {
		ldg = ledger.NewMemory()
		log.Warn("no ledger URL configured, using in-memory ledger")
	}

	compliancePub := compliance.New(st.audit,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics()),
	)
	securityPub := security.New(st.audit, security.WithLogger(log))
	defer securityPub.Close()

	issuanceMetrics := metrics.New()
	instruments := instrumentsvc.New(st.instruments, ldg, runner,
		instrumentsvc.WithLogger(log),
		instrumentsvc.WithAuditPublisher(compliancePub),
	)
	minters := mintersvc.New(st.minters, instruments, ldg, runner,
		mintersvc.WithLogger(log),
		mintersvc.WithAuditPublisher(compliancePub),
		mintersvc.WithMetrics(issuanceMetrics),
	)
	blacklistService := blacklistsvc.New(st.blacklist, instruments, runner,
		blacklistsvc.WithLogger(log),
		blacklistsvc.WithAuditPublisher(compliancePub),
		blacklistsvc.WithCache(blacklistCache),
	)
	hooks := hooksvc.New(st.hooks, instruments, blacklistService, runner,
		hooksvc.WithLogger(log),
		hooksvc.WithAuditPublisher(compliancePub),
		hooksvc.WithSecurityPublisher(securityPub),
		hooksvc.WithMetrics(hookmetrics.New()),
	)

	router := httptransport.NewRouter(cfg.Auth, log, httptransport.Handlers{
		Instruments: instrumenthandler.New(instruments, log),
		Minters:     minterhandler.New(minters, log),
		Blacklist:   blacklisthandler.New(blacklistService, log),
		Hooks:       hookhandler.New(hooks, log),
	}, checks...)
	srv := httpserver.New(cfg.Server.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	if len(cfg.Kafka.Brokers) > 0 {
		if db == nil {
			return errors.New("audit streaming requires a postgres outbox, set MINTGATE_POSTGRES_DSN")
		}
		kafkaClient, err := kgo.NewClient(kgo.SeedBrokers(cfg.Kafka.Brokers...))
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer kafkaClient.Close()
		if err := worker.EnsureTopics(ctx, kafkaClient); err != nil {
			return fmt.Errorf("ensure audit topics: %w", err)
		}
		outbox := worker.New(db, kafkaClient, log)
		g.Go(func() error {
			return outbox.Run(ctx)
		})
		log.Info("audit outbox worker started", "brokers", cfg.Kafka.Brokers)
	}

	g.Go(func() error {
		log.Info("starting mintgate", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
