// Package bootstrap arma el grafo de dependencias a partir de la configuración.
// Lo comparten la API (cmd/api) y la CLI (cmd/hubctl).
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/hub-inventory/internal/application/auth"
	"github.com/jhoicas/hub-inventory/internal/application/importer"
	"github.com/jhoicas/hub-inventory/internal/application/inventory"
	"github.com/jhoicas/hub-inventory/internal/application/reporting"
	"github.com/jhoicas/hub-inventory/internal/application/usecase"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
	"github.com/jhoicas/hub-inventory/internal/infrastructure/cache"
	"github.com/jhoicas/hub-inventory/internal/infrastructure/events"
	"github.com/jhoicas/hub-inventory/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/hub-inventory/internal/infrastructure/pdf"
	"github.com/jhoicas/hub-inventory/internal/infrastructure/postgres"
	"github.com/jhoicas/hub-inventory/pkg/config"
	"github.com/jhoicas/hub-inventory/pkg/logger"
)

// Repos repositorios de un driver concreto detrás de los puertos del dominio.
type Repos struct {
	Hubs      repository.HubRepository
	SKUs      repository.SKURepository
	HubSKUs   repository.HubSKURepository
	Stock     repository.StockQueryRepository
	Ledger    repository.LedgerQueryRepository
	Shipments repository.ShipmentRepository
	Users     repository.UserRepository
	TxRunner  inventory.TxRunner
}

// Container casos de uso listos para la capa de entrada.
type Container struct {
	Config *config.Config
	Log    *logger.Logger
	Repos  Repos

	AuthUC          *auth.AuthUseCase
	HubUC           *usecase.HubUseCase
	SKUUC           *usecase.SKUUseCase
	ShipmentUC      *usecase.ShipmentUseCase
	AdjustStock     *inventory.AdjustStockUseCase
	ReceiveShipment *inventory.ReceiveShipmentUseCase
	Importer        *importer.SKUImporter
	Reports         *reporting.ReportUseCase
	Dashboard       *reporting.DashboardUseCase
	// Events publica los cambios de stock; NopPublisher sin Kafka.
	Events events.Publisher

	closers []func() error
}

// Option ajusta la construcción (tests).
type Option func(*options)

type options struct {
	bcryptCost int
	cache      reporting.Cache
}

// WithBcryptCost baja el costo de bcrypt en tests.
func WithBcryptCost(cost int) Option { return func(o *options) { o.bcryptCost = cost } }

// WithCache reemplaza la caché del dashboard.
func WithCache(c reporting.Cache) Option { return func(o *options) { o.cache = c } }

// New construye el contenedor según cfg.DB.Driver. Kafka y Redis son opcionales.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, opts ...Option) (*Container, error) {
	if log == nil {
		log = logger.Nop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{Config: cfg, Log: log}

	switch cfg.DB.Driver {
	case config.DriverMemory:
		r := memory.NewRepositories(memory.NewStore(), cfg.DB.LockTimeout())
		c.Repos = Repos{
			Hubs: r.Hubs, SKUs: r.SKUs, HubSKUs: r.HubSKUs, Stock: r.Stock, Ledger: r.Ledger,
			Shipments: r.Shipments, Users: r.Users, TxRunner: r.Transactor,
		}
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		c.closers = append(c.closers, func() error { pool.Close(); return nil })
		if cfg.DB.Migrate {
			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				pool.Close()
				return nil, fmt.Errorf("migraciones: %w", err)
			}
			for _, name := range applied {
				log.Info().Str("migration", name).Msg("migración aplicada")
			}
		}
		r := postgres.NewRepositories(pool, cfg.DB.LockTimeout())
		c.Repos = Repos{
			Hubs: r.Hubs, SKUs: r.SKUs, HubSKUs: r.HubSKUs, Stock: r.Stock, Ledger: r.Ledger,
			Shipments: r.Shipments, Users: r.Users, TxRunner: r.Transactor,
		}
	default:
		return nil, fmt.Errorf("DB_DRIVER desconocido %q", cfg.DB.Driver)
	}

	// Observers post-commit: invalidación del dashboard y publicación en Kafka
	dashCache := o.cache
	if dashCache == nil {
		dashCache = cache.New(cfg.Redis, log)
	}
	if rc, ok := dashCache.(*cache.RedisCache); ok {
		c.closers = append(c.closers, rc.Close)
	}
	c.Dashboard = reporting.NewDashboardUseCase(
		c.Repos.Stock, c.Repos.Ledger, c.Repos.Hubs,
		dashCache, cfg.Redis.DashboardTTL(), cfg.Inventory.LowStockThreshold, log,
	)
	c.Events = events.NopPublisher{}
	if cfg.Kafka.Enabled() {
		pub, err := events.NewKafkaPublisher(cfg.Kafka, log)
		if err != nil {
			// sin broker se sigue operando; los eventos se pierden
			log.Error().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("Kafka no disponible, eventos de stock desactivados")
		} else {
			c.Events = pub
			log.Info().Str("topic", cfg.Kafka.StockTopic).Msg("publicación de eventos de stock activa")
		}
	}
	c.closers = append(c.closers, c.Events.Close)
	observers := []inventory.StockObserver{c.Dashboard, c.Events}

	c.AuthUC = auth.NewAuthUseCase(c.Repos.Users, c.Repos.Hubs, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if o.bcryptCost > 0 {
		c.AuthUC.WithBcryptCost(o.bcryptCost)
	}
	c.HubUC = usecase.NewHubUseCase(c.Repos.Hubs)
	c.SKUUC = usecase.NewSKUUseCase(c.Repos.SKUs, c.Repos.Hubs, c.Repos.HubSKUs)
	c.ShipmentUC = usecase.NewShipmentUseCase(c.Repos.Shipments, c.Repos.Hubs, c.Repos.SKUs)
	c.AdjustStock = inventory.NewAdjustStockUseCase(c.Repos.TxRunner, c.Repos.Hubs, c.Repos.SKUs, log, observers...)
	c.ReceiveShipment = inventory.NewReceiveShipmentUseCase(c.Repos.TxRunner, c.AdjustStock)
	c.Importer = importer.NewSKUImporter(c.Repos.SKUs, c.Repos.Hubs, c.Repos.HubSKUs)
	c.Reports = reporting.NewReportUseCase(
		c.Repos.Stock, c.Repos.Ledger, c.Repos.Hubs,
		infrapdf.NewMarotoStockSheetGenerator(), cfg.Inventory.LogsPageLimit,
	)
	return c, nil
}

// Close libera pool, clientes Redis y productor Kafka.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
