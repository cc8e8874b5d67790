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

	"github.com/jhoicas/taller-inventario/internal/application/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
	infrakafka "github.com/jhoicas/taller-inventario/internal/infrastructure/kafka"
	"github.com/jhoicas/taller-inventario/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/taller-inventario/internal/infrastructure/pdf"
	"github.com/jhoicas/taller-inventario/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/taller-inventario/internal/interfaces/http"
	"github.com/jhoicas/taller-inventario/pkg/config"
	"github.com/jhoicas/taller-inventario/pkg/logger"
	"github.com/jhoicas/taller-inventario/pkg/telemetry"
)

// stores puertos de persistencia según STORE_DRIVER.
type stores struct {
	txRunner     inventory.TxRunner
	stock        repository.StockEventRepository
	supply       repository.SupplyEventRepository
	reservations repository.ReservationRepository
	lines        repository.DemandLineRepository
	thresholds   repository.ThresholdRepository
	parts        repository.PartRepository
	close        func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.App.Env,
		Insecure:    cfg.App.Env != "production",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configurar telemetría")
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer st.close()

	// Notificaciones de transferencia: sin brokers quedan deshabilitadas.
	var notifier inventory.TransferNotifier = inventory.NoopNotifier{}
	if cfg.Kafka.Enabled() {
		kafkaNotifier := infrakafka.NewTransferNotifier(infrakafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.TransferTopic))
		defer func() {
			if err := kafkaNotifier.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar productor Kafka")
			}
		}()
		notifier = kafkaNotifier
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.TransferTopic).Msg("notificaciones de transferencia habilitadas")
	}

	stockUC := inventory.NewStockLedgerUseCase(st.stock, st.parts, log.Component("stock"))
	supplyUC := inventory.NewSupplyLedgerUseCase(st.supply, st.parts, log.Component("supply"))
	engine := inventory.NewReservationEngine(
		st.txRunner, st.stock, st.reservations, st.lines, st.parts, notifier, log.Component("reservations"),
	)
	procurementUC := inventory.NewProcurementUseCase(
		st.stock, st.supply, st.reservations, st.lines, st.thresholds, st.parts,
		infrapdf.NewMarotoPDFGenerator(cfg.App.Name),
		inventory.ProcurementSettings{
			DelayedSupplyDays: cfg.Procurement.DelayedSupplyDays,
			DefaultPageSize:   cfg.Procurement.DefaultPageSize,
			MaxPageSize:       cfg.Procurement.MaxPageSize,
		},
		log.Component("procurement"),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		Immutable:    true,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Taller Inventario API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Stock:        stockUC,
		Supply:       supplyUC,
		Reservations: engine,
		Procurement:  procurementUC,
		Lines:        inventory.NewDemandLineHooks(engine, log.Component("lines")),
		JWTSecret:    cfg.JWT.Secret,
		JWTIssuer:    cfg.JWT.Issuer,
		ServiceName:  cfg.App.Name,
		Log:          log.Component("http"),
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
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de telemetría")
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		store := memory.NewStore()
		if cfg.Store.SeedFile != "" {
			if err := store.LoadSeedFile(cfg.Store.SeedFile); err != nil {
				return nil, err
			}
		}
		return &stores{
			txRunner:     memory.NewTxRunner(store),
			stock:        memory.NewStockEventRepository(store),
			supply:       memory.NewSupplyEventRepository(store),
			reservations: memory.NewReservationRepository(store),
			lines:        memory.NewDemandLineRepository(store),
			thresholds:   memory.NewThresholdRepository(store),
			parts:        memory.NewPartRepository(store),
			close:        func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &stores{
		txRunner:     postgres.NewTxRunner(pool),
		stock:        postgres.NewStockEventRepository(pool),
		supply:       postgres.NewSupplyEventRepository(pool),
		reservations: postgres.NewReservationRepository(pool),
		lines:        postgres.NewDemandLineRepository(pool),
		thresholds:   postgres.NewThresholdRepository(pool),
		parts:        postgres.NewPartRepository(pool),
		close:        pool.Close,
	}, nil
}
