// Package main initializes and starts the GolfClub Auctions web server,
// setting up configuration, logging, storage, sessions, events, services,
// handlers and graceful shutdown.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/GolfClubAuctions/internal/config"
	"github.com/atinyakov/GolfClubAuctions/internal/db"
	"github.com/atinyakov/GolfClubAuctions/internal/events"
	"github.com/atinyakov/GolfClubAuctions/internal/logger"
	"github.com/atinyakov/GolfClubAuctions/internal/mailer"
	"github.com/atinyakov/GolfClubAuctions/internal/metrics"
	"github.com/atinyakov/GolfClubAuctions/internal/render"
	"github.com/atinyakov/GolfClubAuctions/internal/repository"
	"github.com/atinyakov/GolfClubAuctions/internal/repository/mongodb"
	"github.com/atinyakov/GolfClubAuctions/internal/server/handler/http"
	"github.com/atinyakov/GolfClubAuctions/internal/service"
	"github.com/atinyakov/GolfClubAuctions/internal/tracer"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options := config.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, options, zapLogger); err != nil {
		zapLogger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, options *config.Options, zapLogger *zap.Logger) error {
	shutdownTracer, err := tracer.Init(ctx, options.OTLPEndpoint, "golfclub-auctions")
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(sctx); err != nil {
			zapLogger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	// Users and contact messages always live in PostgreSQL.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer postgresDB.Close()

	db.StartMessageJanitor(ctx, postgresDB, options.JanitorInterval, options.MessageRetention, zapLogger)

	health := map[string]http.HealthCheck{
		"postgres": postgresDB.PingContext,
	}

	var listingRepo service.ListingRepository
	switch options.StorageDriver {
	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, options.MongoURI, 10*time.Second)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		mdb := client.Database(options.MongoDatabase)
		if err := mongodb.EnsureIndexes(ctx, mdb); err != nil {
			return err
		}
		listingRepo = mongodb.NewListingRepository(mdb)
		health["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
	default:
		listingRepo = repository.NewPostgresListingRepository(postgresDB)
	}

	rdb, err := repository.NewRedisClient(ctx, options.RedisAddr, options.RedisPassword, options.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()
	health["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }

	var publisher events.Publisher = events.Nop{}
	if options.NATSURL != "" {
		nc, err := events.Connect(options.NATSURL, zapLogger)
		if err != nil {
			return err
		}
		publisher = nc
		zapLogger.Info("publishing events to nats", zap.String("url", options.NATSURL))
	}
	defer publisher.Close()

	var mail service.Mailer = mailer.Nop{}
	if options.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(options.SMTPHost, options.SMTPPort, options.SMTPUsername, options.SMTPPassword, options.SMTPFrom)
	}

	m := metrics.New()

	listingService := service.NewListingService(listingRepo, publisher, m, zapLogger)
	filterEngine := service.NewFilterEngine(listingService, m)
	authService := service.NewAuthService(
		repository.NewPostgresAuthRepository(postgresDB),
		repository.NewRedisSessionStore(rdb),
		[]byte(options.JWTSecret),
		options.SessionTTL,
		publisher, m, zapLogger,
	)
	contactService := service.NewContactService(
		listingService,
		repository.NewPostgresMessageRepository(postgresDB),
		mail, publisher, zapLogger,
	)

	renderer, err := render.New()
	if err != nil {
		return err
	}

	router := http.NewRouter(http.Handlers{
		Pages: &http.PageHandler{
			Filter:   filterEngine,
			Listings: listingService,
			Contact:  contactService,
			Renderer: renderer,
			Log:      zapLogger,
		},
		Auth: &http.AuthHandler{
			AuthService:   authService,
			Log:           zapLogger,
			SecureCookies: options.SecureCookies,
		},
		API:      &http.APIHandler{Filter: filterEngine, Listings: listingService},
		Resolver: authService,
		Metrics:  m,
		Health:   health,
	}, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("starting HTTP server",
			zap.String("addr", options.Port),
			zap.String("storage", options.StorageDriver),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	zapLogger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
