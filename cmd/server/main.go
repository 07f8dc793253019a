package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"tracking-analytics/backend/internal/analytics"
	"tracking-analytics/backend/internal/analytics/cache"
	"tracking-analytics/backend/internal/config"
	"tracking-analytics/backend/internal/db"
	"tracking-analytics/backend/internal/ingest"
	"tracking-analytics/backend/internal/ingest/botpolicy"
	"tracking-analytics/backend/internal/security"
	"tracking-analytics/backend/internal/seed"
	"tracking-analytics/backend/internal/server"
	"tracking-analytics/backend/internal/server/interceptors"
	"tracking-analytics/backend/internal/telemetry"
	telemetryotel "tracking-analytics/backend/internal/telemetry/otel"
	"tracking-analytics/backend/internal/telemetry/producer"
	"tracking-analytics/backend/internal/tracking/domain"
	"tracking-analytics/backend/internal/tracking/repository"
)

// store is what the server needs from a tracking repository.
type store interface {
	ingest.Store
	analytics.TraceStore
	seed.Store
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Options{
		Endpoint:    cfg.OTelEndpoint,
		ServiceName: cfg.OTelServiceName,
		Environment: cfg.Env,
		Insecure:    cfg.OTelInsecure,
	})
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	repo, conn := openStore(ctx, cfg)
	if conn != nil {
		defer conn.Close()
	}

	var bots *botpolicy.Evaluator
	if cfg.BotPolicyFile != "" {
		bots, err = botpolicy.Load(ctx, cfg.BotPolicyFile)
	} else {
		bots, err = botpolicy.NewDefault(ctx)
	}
	if err != nil {
		log.Fatalf("bot policy: %v", err)
	}

	resultCache, closeCache := openCache(ctx, cfg)
	defer closeCache()

	kafkaProducer, err := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.TraceKafkaTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	emitters := []telemetry.EventEmitter{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
		log.Printf("events: publishing to kafka topic %s", cfg.TraceKafkaTopic)
	}
	emitter := telemetry.Fanout(emitters...)

	deps := server.Deps{
		Hits: ingest.NewService(repo, bots, emitter, cfg.ContinuationWindowDuration()),
		Stats: analytics.NewService(repo, resultCache, analytics.Config{
			Location:  cfg.Location(),
			WeekStart: cfg.WeekStartDay(),
		}),
		Location:            cfg.Location(),
		HealthPinger:        repo,
		HealthPolicyChecker: bots,
	}
	if !cfg.IsProduction() {
		deps.Seeder = seed.New(repo, nil)
	}

	var validator interceptors.AccessValidator
	if tokens := tokenProvider(cfg); tokens != nil {
		validator = tokens
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.AuthUnary(validator, server.PublicMethods()),
			interceptors.AccessLogUnary(nil, server.PublicMethods()),
			interceptors.TelemetryUnary(emitter, server.TelemetrySkipMethods()),
		),
	)
	server.RegisterServices(s, deps)

	metricsSrv := startMetrics(cfg.MetricsAddr)

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := s.Serve(lis); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down gRPC server...")
	s.GracefulStop()
	log.Println("gRPC server stopped")

	// let in-flight async emits finish before the exporters go away
	time.Sleep(telemetry.ShutdownDrainDuration)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("metrics: shutdown: %v", err)
		}
	}
	if err := kafkaProducer.Close(); err != nil {
		log.Printf("kafka: close: %v", err)
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel: shutdown: %v", err)
	}
}

// openStore connects to Postgres, or falls back to an in-memory store with a demo tracking when
// DATABASE_URL is empty (config rejects that in production).
func openStore(ctx context.Context, cfg *config.Config) (store, *sql.DB) {
	if cfg.DatabaseURL == "" {
		log.Println("store: DATABASE_URL not set, using in-memory store (data is lost on restart)")
		mem := repository.NewMemoryRepository()
		demo := &domain.Tracking{ID: "demo", WorkspaceID: "dev-workspace", Name: "Demo site", CreatedAt: time.Now().UTC()}
		if err := mem.CreateTracking(ctx, demo); err != nil {
			log.Fatalf("store: %v", err)
		}
		log.Printf("store: created tracking %q in workspace %q", demo.ID, demo.WorkspaceID)
		return mem, nil
	}
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	return repository.NewPostgresRepository(conn), conn
}

// openCache returns the stats cache over Redis when REDIS_URL is set, else over an in-process LRU.
func openCache(ctx context.Context, cfg *config.Config) (*cache.ResultCache, func()) {
	ttl := cfg.CacheTTL()
	if cfg.RedisURL == "" {
		return cache.New(cache.NewMemoryBackend(cfg.StatsCacheSize), ttl), func() {}
	}
	backend, err := cache.NewRedisBackendFromURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := backend.Ping(pingCtx); err != nil {
		// cache errors fall through to direct computation, so an unreachable redis is not fatal
		log.Printf("redis: ping failed, stats will be computed uncached until it recovers: %v", err)
	}
	return cache.New(backend, ttl), func() {
		if err := backend.Close(); err != nil {
			log.Printf("redis: close: %v", err)
		}
	}
}

// tokenProvider builds the access-token validator. Without keys every protected RPC is rejected.
func tokenProvider(cfg *config.Config) *security.TokenProvider {
	signer, pub, err := security.LoadKeyPair(cfg.JWTPrivateKey, cfg.JWTPublicKey)
	if err != nil {
		if cfg.IsProduction() {
			log.Fatalf("jwt keys: %v", err)
		}
		log.Printf("jwt keys: %v; stats RPCs will reject every call", err)
		return nil
	}
	return security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
}

func startMetrics(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Printf("metrics server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics: %v", err)
		}
	}()
	return srv
}
