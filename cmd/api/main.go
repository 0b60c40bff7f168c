package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/pharmadist-core/internal/application/assembly"
	"github.com/jhoicas/pharmadist-core/internal/application/ports"
	"github.com/jhoicas/pharmadist-core/internal/application/sequence"
	"github.com/jhoicas/pharmadist-core/internal/domain/repository"
	"github.com/jhoicas/pharmadist-core/internal/infrastructure/lock"
	"github.com/jhoicas/pharmadist-core/internal/infrastructure/memory"
	"github.com/jhoicas/pharmadist-core/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/pharmadist-core/internal/interfaces/http"
	"github.com/jhoicas/pharmadist-core/pkg/config"
	"github.com/jhoicas/pharmadist-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner ports.TxRunner
		docRepo  repository.DocumentRepository
		reg      ports.Registries
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		store := memory.New()
		seedDemo(store)
		txRunner, docRepo, reg = store, store, store.Registries()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
		docRepo = postgres.NewDocumentRepository(pool)
		reg = postgres.NewRegistryRepository(pool).Registries()
	}

	// Candado Redis opcional sobre el alcance de numeración; sin Redis basta el bloqueo de fila.
	locker := sequence.NoopLocker()
	if cfg.Redis.Enabled() {
		rdb, err := lock.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, time.Duration(cfg.Redis.LockTTLSec)*time.Second, log)
	}

	alloc := sequence.NewAllocator(txRunner, locker, log)
	documents := assembly.NewService(txRunner, docRepo, reg, alloc, assembly.Config{
		MaxAncestorHops: cfg.Lineage.MaxAncestorHops,
	}, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Pharmadist Core API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Documents: documents,
		JWTSecret: cfg.JWT.Secret,
		Logger:    log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
