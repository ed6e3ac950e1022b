package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/hub-inventory/pkg/config"
)

// Límites del pool. Cada ajuste de stock ocupa una conexión solo mientras dura su transacción.
const (
	poolMaxConns        = 25
	poolMinConns        = 2
	poolMaxConnLifetime = time.Hour
	poolMaxConnIdle     = 30 * time.Minute
	poolHealthCheck     = time.Minute
	pingTimeout         = 5 * time.Second
)

// NewPool crea el pool de conexiones a partir de DATABASE_URL o de DB_HOST, DB_PORT, etc.
// Falla si la base no responde al ping.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolConfig.MaxConns = poolMaxConns
	poolConfig.MinConns = poolMinConns
	poolConfig.MaxConnLifetime = poolMaxConnLifetime
	poolConfig.MaxConnIdleTime = poolMaxConnIdle
	poolConfig.HealthCheckPeriod = poolHealthCheck

	// created_at del ledger se compara entre hubs: todas las sesiones en UTC
	poolConfig.ConnConfig.RuntimeParams["timezone"] = "UTC"
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "hub-inventory"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB %s: %w", redactedHost(cfg), err)
	}
	return pool, nil
}

// redactedHost identifica la base en los errores sin exponer credenciales.
func redactedHost(cfg config.DBConfig) string {
	if cfg.DatabaseURL != "" {
		return "(DATABASE_URL)"
	}
	return fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
}
