package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	cataloggateway "refurb/internal/catalog/gateway"
	cataloghandler "refurb/internal/catalog/handler"
	catalogmetrics "refurb/internal/catalog/metrics"
	catalogports "refurb/internal/catalog/ports"
	catalog "refurb/internal/catalog/service"
	customerhandler "refurb/internal/customer/handler"
	customermetrics "refurb/internal/customer/metrics"
	customer "refurb/internal/customer/service"
	customerstore "refurb/internal/customer/store"
	"refurb/internal/dashboard"
	dashboardhandler "refurb/internal/dashboard/handler"
	httpapi "refurb/internal/http"
	"refurb/internal/notification"
	notificationhandler "refurb/internal/notification/handler"
	notificationmetrics "refurb/internal/notification/metrics"
	"refurb/internal/platform/config"
	"refurb/internal/platform/httpserver"
	"refurb/internal/platform/logger"
	redisclient "refurb/internal/platform/redis"
	settlementgateway "refurb/internal/settlement/gateway"
	settlementhandler "refurb/internal/settlement/handler"
	settlementmetrics "refurb/internal/settlement/metrics"
	settlement "refurb/internal/settlement/service"
	staffhandler "refurb/internal/staff/handler"
	staffmetrics "refurb/internal/staff/metrics"
	"refurb/internal/staff/secrets"
	staff "refurb/internal/staff/service"
	staffstore "refurb/internal/staff/store"
	"refurb/pkg/platform/audit"
	"refurb/pkg/platform/audit/publisher"
	kafkaaudit "refurb/pkg/platform/audit/publishers/kafka"
	auditmemory "refurb/pkg/platform/audit/store/memory"
)

// main wires the admin console and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

type modules struct {
	catalog   *catalog.Service
	ledger    *settlement.Service
	registry  *staff.Service
	customers *customer.Service
	dashboard *dashboard.Service
	products  catalogports.Gateway
	audit     *publisher.Publisher
	center    *notification.Center
	closers   []func()
	healthy   map[string]httpapi.HealthCheck
}

func (m *modules) close() {
	for i := len(m.closers) - 1; i >= 0; i-- {
		m.closers[i]()
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer m.close()

	router := httpapi.NewRouter(httpapi.Config{
		AdminToken:     cfg.Server.AdminToken,
		MetricsEnabled: cfg.Server.MetricsEnabled,
		HealthChecks:   m.healthy,
	}, log,
		cataloghandler.New(m.catalog, log),
		settlementhandler.New(m.ledger, log),
		staffhandler.New(m.registry, log),
		customerhandler.New(m.customers, log),
		dashboardhandler.New(m.dashboard, m.audit, log),
		notificationhandler.New(m.center),
	)
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting refurb admin", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func build(ctx context.Context, cfg config.Config, log *slog.Logger) (*modules, error) {
	m := &modules{healthy: make(map[string]httpapi.HealthCheck)}
	ok := false
	defer func() {
		if !ok {
			m.close()
		}
	}()

	var (
		cm *catalogmetrics.Metrics
		sm *settlementmetrics.Metrics
		tm *staffmetrics.Metrics
		um *customermetrics.Metrics
		nm *notificationmetrics.Metrics
	)
	if cfg.Server.MetricsEnabled {
		cm, sm, tm, nm = catalogmetrics.New(), settlementmetrics.New(), staffmetrics.New(), notificationmetrics.New()
		um = customermetrics.New()
	}

	m.center = notification.New(notification.WithLogger(log), notification.WithMetrics(nm))
	m.closers = append(m.closers, m.center.Clear)

	auditStore, err := buildAuditStore(ctx, cfg.Kafka, log, m)
	if err != nil {
		return nil, err
	}
	m.audit = publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(cfg.Kafka.AuditBuffer),
		publisher.WithLogger(log),
	)
	m.closers = append(m.closers, m.audit.Close)

	m.products, err = buildProductGateway(ctx, cfg, log, m)
	if err != nil {
		return nil, err
	}
	m.catalog, err = catalog.New(m.products, m.center,
		catalog.WithLogger(log),
		catalog.WithAuditPublisher(m.audit),
		catalog.WithMetrics(cm),
		catalog.WithSearchDebounce(cfg.Catalog.SearchDebounce),
		catalog.WithPageLimit(cfg.Catalog.PageLimit),
	)
	if err != nil {
		return nil, err
	}
	m.closers = append(m.closers, m.catalog.Close)

	payouts := settlementgateway.NewSimulated(settlementGatewayOptions(cfg.Gateway)...)
	m.ledger, err = settlement.New(payouts, m.center,
		settlement.WithLogger(log),
		settlement.WithAuditPublisher(m.audit),
		settlement.WithMetrics(sm),
		settlement.WithSettlementDelay(cfg.Settlement.Delay),
	)
	if err != nil {
		return nil, err
	}
	m.closers = append(m.closers, m.ledger.Close)

	accounts := staffstore.NewInMemory()
	if cfg.Gateway.Seed {
		if err := staffstore.SeedDemoStaff(ctx, accounts, secrets.NewHasher(0)); err != nil {
			return nil, fmt.Errorf("seed staff: %w", err)
		}
	}
	m.registry, err = staff.New(accounts, m.center,
		staff.WithLogger(log),
		staff.WithAuditPublisher(m.audit),
		staff.WithMetrics(tm),
	)
	if err != nil {
		return nil, err
	}

	users := customerstore.NewInMemory()
	if cfg.Gateway.Seed {
		if err := customerstore.SeedDemoCustomers(ctx, users); err != nil {
			return nil, fmt.Errorf("seed customers: %w", err)
		}
	}
	m.customers, err = customer.New(users, m.center,
		customer.WithLogger(log),
		customer.WithAuditPublisher(m.audit),
		customer.WithMetrics(um),
	)
	if err != nil {
		return nil, err
	}

	m.dashboard, err = dashboard.New(m.products, m.ledger, m.registry, log)
	if err != nil {
		return nil, err
	}
	ok = true
	return m, nil
}

// buildAuditStore keeps events in memory and, when brokers are configured,
// ships them to Kafka first.
func buildAuditStore(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger, m *modules) (audit.Store, error) {
	local := auditmemory.NewInMemoryStore()
	if len(cfg.Brokers) == 0 {
		return local, nil
	}
	client, err := kafkaaudit.NewClient(cfg.Brokers)
	if err != nil {
		return nil, err
	}
	m.closers = append(m.closers, client.Close)
	if err := kafkaaudit.EnsureTopics(ctx, client, cfg.TopicPrefix, 1, 1); err != nil {
		return nil, err
	}
	m.healthy["kafka"] = func(ctx context.Context) error { return client.Ping(ctx) }
	log.Info("audit events shipped to kafka", "brokers", cfg.Brokers, "topic_prefix", cfg.TopicPrefix)
	return kafkaaudit.NewStore(client, cfg.TopicPrefix, local)
}

// buildProductGateway wraps the marketplace backend in the Redis listing
// cache when a Redis URL is set.
func buildProductGateway(ctx context.Context, cfg config.Config, log *slog.Logger, m *modules) (catalogports.Gateway, error) {
	backend := cataloggateway.NewSimulated(catalogGatewayOptions(cfg.Gateway)...)
	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rdb == nil {
		return backend, nil
	}
	m.closers = append(m.closers, func() { _ = rdb.Close() })
	m.healthy["redis"] = rdb.Health
	log.Info("listing cache enabled", "ttl", cfg.Redis.ListingTTL)
	return cataloggateway.NewCached(backend, rdb.Client,
		cataloggateway.WithCacheTTL(cfg.Redis.ListingTTL),
		cataloggateway.WithCacheLogger(log),
	)
}

func catalogGatewayOptions(cfg config.GatewayConfig) []cataloggateway.SimulatedOption {
	opts := []cataloggateway.SimulatedOption{
		cataloggateway.WithLatency(cfg.FastLatency, cfg.NormalLatency),
		cataloggateway.WithFailureRate(cfg.FailureRate, uint64(time.Now().UnixNano())),
	}
	if cfg.Seed {
		opts = append(opts, cataloggateway.WithSeedData())
	}
	return opts
}

func settlementGatewayOptions(cfg config.GatewayConfig) []settlementgateway.SimulatedOption {
	opts := []settlementgateway.SimulatedOption{
		settlementgateway.WithLatency(cfg.FastLatency, cfg.NormalLatency),
		settlementgateway.WithFailureRate(cfg.FailureRate, uint64(time.Now().UnixNano())),
	}
	if cfg.Seed {
		opts = append(opts, settlementgateway.WithSeedData())
	}
	return opts
}
