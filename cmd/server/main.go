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

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"remitguard/internal/audit"
	audithandler "remitguard/internal/audit/handler"
	"remitguard/internal/decision"
	decisionadapters "remitguard/internal/decision/adapters"
	decisionhandler "remitguard/internal/decision/handler"
	decisionmetrics "remitguard/internal/decision/metrics"
	decisionstore "remitguard/internal/decision/store"
	httpapi "remitguard/internal/http"
	jwttoken "remitguard/internal/jwt_token"
	"remitguard/internal/lists"
	listshandler "remitguard/internal/lists/handler"
	listsstore "remitguard/internal/lists/store"
	"remitguard/internal/platform/config"
	"remitguard/internal/platform/httpserver"
	"remitguard/internal/platform/kafka"
	"remitguard/internal/platform/logger"
	"remitguard/internal/platform/metrics"
	"remitguard/internal/platform/postgres"
	redisclient "remitguard/internal/platform/redis"
)

// main wires dependencies, serves HTTP and shuts everything down on SIGINT
// or SIGTERM. Business logic lives in the internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

type storage struct {
	decisions decision.Store
	audit     audit.Store
	lists     listsstore.Store
	tx        decision.StoreTx
	closers   []func() error
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.Server.DefaultSecret {
		log.Warn("JWT_SECRET not set, using development default; do not run like this in production")
	}

	policy, err := buildPolicy(cfg.Policy)
	if err != nil {
		return fmt.Errorf("policy: %w", err)
	}

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	reg := prometheus.NewRegistry()
	httpMetrics := metrics.New(reg)
	decMetrics := decisionmetrics.New(reg)

	signingKey, err := jwttoken.DeriveSigningKey(cfg.Server.JWTSecret)
	if err != nil {
		return fmt.Errorf("derive signing key: %w", err)
	}
	signer := decisionadapters.NewTokenAdapter(jwttoken.NewJWTService(signingKey))

	listService, err := lists.New(st.lists, lists.WithLogger(log))
	if err != nil {
		return err
	}
	auditService := audit.NewService(st.audit)

	sink, closeSink, err := buildEventSink(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer closeSink()
	publisher := audit.NewPublisher(audit.WithPublisherLogger(log))

	engine := decision.NewEngine(
		decision.DefaultRules(policy, listService),
		decision.WithRuleTimeout(cfg.Server.RuleTimeout),
		decision.WithEngineMetrics(decMetrics),
	)
	decisionService, err := decision.New(engine, st.tx, st.decisions, auditService, signer,
		decision.WithLogger(log),
		decision.WithMetrics(decMetrics),
		decision.WithEvents(publisher),
	)
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:     log,
		Metrics:    httpMetrics,
		AdminToken: cfg.Server.AdminToken,
		Decisions:  decisionhandler.New(decisionService, log),
		Lists:      listshandler.New(listService, log),
		Audit:      audithandler.New(auditService, log),
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := audit.NewWorker(sink, publisher.Inbox(), log,
			audit.WithDrainTimeout(cfg.Server.ShutdownTimeout),
		).Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		log.Info("starting remitguard", "addr", cfg.Server.Addr, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildPolicy(pc config.PolicyConfig) (decision.Policy, error) {
	policy := decision.DefaultPolicy()
	policy.WhitelistRequired = pc.WhitelistRequired

	var err error
	if policy.WhitelistNonListedAction, err = decision.ParseListAction(pc.WhitelistNonListedAction); err != nil {
		return decision.Policy{}, err
	}
	if policy.ThresholdAction, err = decision.ParseListAction(pc.ThresholdAction); err != nil {
		return decision.Policy{}, err
	}
	if pc.ThresholdByCurrency != nil {
		policy.ThresholdByCurrency = pc.ThresholdByCurrency
	}
	if len(pc.HighRiskCountries) > 0 {
		policy.HighRiskCountries = pc.HighRiskCountries
	}
	return policy, policy.Validate()
}

func openStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (*storage, error) {
	st := &storage{}

	if cfg.Server.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory storage")
		st.decisions = decisionstore.NewInMemoryStore()
		st.audit = audit.NewInMemoryStore()
		st.lists = listsstore.NewInMemoryStore()
		st.tx = decision.NewInMemoryTx(st.decisions, st.audit)
	} else {
		db, err := postgres.Open(ctx, postgres.Config{URL: cfg.Server.DatabaseURL})
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, db.Close)
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		usePostgres(st, db)
	}

	if cfg.Redis.URL != "" {
		client, err := redisclient.New(cfg.Redis)
		if err != nil {
			st.close()
			return nil, err
		}
		st.closers = append(st.closers, client.Close)
		st.lists = listsstore.NewCachedStore(st.lists, client.Client,
			listsstore.WithCacheTTL(cfg.Redis.CacheTTL),
			listsstore.WithCacheLogger(log),
		)
		log.Info("list membership cache enabled")
	}
	return st, nil
}

func usePostgres(st *storage, db *sql.DB) {
	st.decisions = decisionstore.NewPostgres(db)
	st.audit = audit.NewPostgres(db)
	st.lists = listsstore.NewPostgres(db)
	st.tx = newDecisionPostgresTx(db, decision.TxStores{Decisions: st.decisions, Audit: st.audit})
}

func (s *storage) close() {
	for _, c := range s.closers {
		_ = c()
	}
}

func buildEventSink(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (audit.Sink, func(), error) {
	if len(cfg.Brokers) == 0 {
		return audit.NewLogSink(log), func() {}, nil
	}
	producer, err := kafka.NewProducer(ctx, kafka.Config{
		Brokers:           cfg.Brokers,
		Topic:             cfg.Topic,
		Partitions:        3,
		ReplicationFactor: 1,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	log.Info("publishing decision events to kafka", "topic", cfg.Topic)
	return audit.NewKafkaSink(producer), producer.Close, nil
}
