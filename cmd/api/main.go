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

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/stock-ledger/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("backend", cfg.Ledger.Backend).
		Bool("selesai_terminal", cfg.Ledger.SelesaiTerminal).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	deps := ledger.Deps{
		Policy:     inventory.Policy{SelesaiTerminal: cfg.Ledger.SelesaiTerminal},
		WindowDays: cfg.Ledger.ForecastWindowDays,
		Log:        log.Zerolog(),
	}

	switch cfg.Ledger.Backend {
	case config.BackendMemory:
		store := memory.NewStore()
		deps.TxRunner = store
		deps.LedgerRepo = store.LedgerRepository()
		deps.SkuRepo = store.SkuRepository()
		deps.DocRepo = store.DocumentRepository()
		log.Warn().Msg("backend en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		deps.TxRunner = postgres.NewTxRunner(pool)
		deps.LedgerRepo = postgres.NewLedgerRepository(pool)
		deps.SkuRepo = postgres.NewSkuRepository(pool)
		deps.DocRepo = postgres.NewDocumentRepository(pool)
	}

	rdb, err := infraredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	if rdb != nil {
		defer rdb.Close()
		deps.Locker = infraredis.NewLocker(rdb, cfg.Ledger.LockTTL, log.Component("redislock"))
		deps.Cache = infraredis.NewCache(rdb, cfg.Ledger.ProjectionTTL)
		log.Info().Str("addr", cfg.Redis.Address).Msg("redis conectado: lock distribuido y cache de proyecciones")
	}

	svc := ledger.NewServices(deps)

	refresher := ledger.NewAlertRefresher(svc.Projections, cfg.Ledger.AlertRefresh, log.Component("alerts"))
	go refresher.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	if cfg.HTTP.DocsEnabled {
		// Swagger UI: http://localhost:<port>/docs
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "backend": cfg.Ledger.Backend})
	})

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: API sin autenticación")
	}
	httpRouter.Router(app, httpRouter.RouterDeps{
		Validation:  svc.Validation,
		Projections: svc.Projections,
		Procurement: svc.Procurement,
		Documents:   svc.Documents,
		Skus:        svc.Skus,
		JWTSecret:   cfg.JWT.Secret,
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
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
