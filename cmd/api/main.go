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
	"github.com/gofiber/fiber/v2/middleware/requestid"

	_ "github.com/jhoicas/Inventario-lotes/docs"
	"github.com/jhoicas/Inventario-lotes/internal/application/auth"
	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/application/ports"
	"github.com/jhoicas/Inventario-lotes/internal/application/retry"
	"github.com/jhoicas/Inventario-lotes/internal/application/sales"
	"github.com/jhoicas/Inventario-lotes/internal/application/usecase"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Inventario-lotes/internal/infrastructure/pdf"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Inventario-lotes/internal/infrastructure/redis"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/Inventario-lotes/internal/interfaces/http"
	"github.com/jhoicas/Inventario-lotes/pkg/config"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// @title                       Inventario Lotes API
// @version                     1.0
// @description                 API de inventario por lotes: plantillas con fórmula de volumen, lotes en tránsito y en bodega, ventas y stock disponible.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Persistencia: PostgreSQL, o el store en memoria con APP_ENV=local.
	var (
		tx    ports.TxRunner
		repos repository.Repos
		users repository.UserRepository
	)
	if cfg.App.Env == "local" {
		store := memory.NewStore()
		tx, repos, users = store, store.Repos(), store.Users()
		log.Warn().Msg("usando almacenamiento en memoria; los datos se pierden al reiniciar")
	} else {
		if cfg.DB.AutoMigrate {
			if err := migrateUp(cfg.DB, log); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		tx = postgres.NewTxRunner(pool, cfg.Lock.Timeout)
		repos = postgres.NewRepos(pool)
		users = postgres.NewUserRepository(pool)
	}

	// Serialización por lote: Redis si está configurado, si no locks del proceso.
	var locker ports.LotLocker
	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = infraredis.NewLotLocker(rdb, cfg.Lock.Timeout, log)
	} else {
		locker = memory.NewLotLocker(cfg.Lock.Timeout)
	}

	policy := retry.Policy{
		Attempts:   cfg.Lock.RetryAttempts,
		Backoff:    cfg.Lock.RetryBackoff,
		MaxBackoff: 20 * cfg.Lock.RetryBackoff,
	}

	authUC := auth.NewAuthUseCase(users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if cfg.Admin.Email != "" {
		created, err := authUC.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Fatal().Err(err).Msg("crear administrador inicial")
		}
		if created {
			log.Info().Str("email", cfg.Admin.Email).Msg("administrador inicial creado")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Lotes API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserUC:      usecase.NewUserUseCase(users),
		TemplateUC:  usecase.NewTemplateUseCase(repos.Templates),
		WarehouseUC: usecase.NewWarehouseUseCase(repos.Warehouses),
		ShipmentUC:  inventory.NewShipmentUseCase(tx, repos, policy, log),
		StockUC:     inventory.NewStockUseCase(tx, repos, locker, xlsx.NewStockExporter(), policy, log),
		SaleUC:      sales.NewSaleUseCase(tx, repos, locker, policy, log),
		SalePDF:     sales.NewPDFUseCase(repos, infrapdf.NewMarotoPDFGenerator()),
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func migrateUp(cfg config.DBConfig, log *logger.Logger) error {
	m, err := postgres.NewMigrator(cfg.ConnectionString(), log)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
