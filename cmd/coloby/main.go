package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/coloby/coloby/internal/config"
	"github.com/coloby/coloby/internal/domain"
	"github.com/coloby/coloby/internal/infra/blob"
	"github.com/coloby/coloby/internal/infra/database"
	"github.com/coloby/coloby/internal/infra/repository"
	"github.com/coloby/coloby/internal/present/rest"
	"github.com/coloby/coloby/internal/present/rest/middleware"
	"github.com/coloby/coloby/internal/service"
	"github.com/coloby/coloby/internal/usecase"
)

func setupTrace(ctx context.Context, conf config.Config) func(context.Context) error {
	exp, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(conf.Server.TraceEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		slog.Error("failed to create trace exporter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	res, _ := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName("coloby"),
		semconv.ServiceVersion(conf.NodeInfo.Version),
	))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return tp.Shutdown
}

func main() {
	configPath := flag.String("config", "/etc/coloby/config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	if conf.Server.EnableTrace {
		shutdown := setupTrace(ctx, conf)
		defer func() {
			c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(c); err != nil {
				slog.Error("failed to shutdown tracer", slog.String("error", err.Error()))
			}
		}()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	blobs, err := blob.New(blob.Config{
		Endpoint:  conf.Server.BlobEndpoint,
		AccessKey: conf.Server.BlobAccessKey,
		SecretKey: conf.Server.BlobSecretKey,
		UseSSL:    conf.Server.BlobUseSSL,
		Bucket:    conf.Server.BlobBucket,
	})
	if err != nil {
		slog.Error("failed to create blob store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := blobs.EnsureBucket(ctx); err != nil {
		slog.Error("failed to ensure blob bucket", slog.String("error", err.Error()))
		os.Exit(1)
	}

	domainConf := domain.Config{
		FQDN:      conf.NodeInfo.FQDN,
		Version:   conf.NodeInfo.Version,
		JWTSecret: conf.NodeInfo.JWTSecret,
	}

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db, mc)
	versionRepo := repository.NewVersionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	signal := service.NewSignalService(rdb)
	presence := service.NewPresenceService(rdb)
	auth := service.NewAuthService(domainConf, userRepo)

	roomUC := usecase.NewRoomUsecase(roomRepo, userRepo)
	versionUC := usecase.NewVersionUsecase(versionRepo, roomRepo, blobs)
	messageUC := usecase.NewMessageUsecase(messageRepo, roomRepo, signal)
	notificationUC := usecase.NewNotificationUsecase(notificationRepo, messageRepo, roomRepo, userRepo, signal)

	handler := rest.NewHandler(domainConf, roomUC, versionUC, messageUC, notificationUC, signal, presence)
	authMiddleware := middleware.NewAuthMiddleware(auth, domainConf)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("coloby"))
	}
	e.Use(authMiddleware.IdentifyIdentity)

	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}
