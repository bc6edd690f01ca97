package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beachesmls/marketreport/pkg/metrics"
	"github.com/beachesmls/marketreport/pkg/retry"
	"github.com/beachesmls/marketreport/pkg/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Client wraps a PostgreSQL connection pool. The market report workload is
// read-only apart from index maintenance, so the helpers cover queries and
// plain statements.
type Client struct {
	Logger         *zap.Logger
	Pool           *pgxpool.Pool
	AcquireTimeout time.Duration
	QueryTimeout   time.Duration
	Retry          retry.Config
}

// PoolConfig defines connection pool settings for a specific component
type PoolConfig struct {
	MinConns        int32
	MaxConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	AcquireTimeout  time.Duration
	QueryTimeout    time.Duration
	Component       string // For logging/debugging
}

// New initializes and returns a new PostgreSQL client using POSTGRES_URL.
// The initial connection is retried with backoff so the service can start
// before the database does.
func New(ctx context.Context, logger *zap.Logger, poolConfig ...*PoolConfig) (client Client, err error) {
	connCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbURL := utils.Env("POSTGRES_URL", "postgres://localhost:5432/postgres")

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return Client{}, fmt.Errorf("failed to parse POSTGRES_URL: %w", err)
	}

	var poolConf PoolConfig
	if len(poolConfig) > 0 && poolConfig[0] != nil {
		poolConf = *poolConfig[0]
	} else {
		poolConf = *GetPoolConfigForComponent("unknown")
	}

	config.MinConns = poolConf.MinConns
	config.MaxConns = poolConf.MaxConns
	config.MaxConnLifetime = poolConf.ConnMaxLifetime
	config.MaxConnIdleTime = poolConf.ConnMaxIdleTime
	config.ConnConfig.RuntimeParams["application_name"] = "marketreport-" + poolConf.Component

	client.Logger = logger
	client.AcquireTimeout = poolConf.AcquireTimeout
	client.QueryTimeout = poolConf.QueryTimeout
	client.Retry = retry.FromEnv("POSTGRES_QUERY", retry.QueryConfig())
	client.Retry.OnRetry = func(op string, _ int, _ error) {
		metrics.StoreRetries.WithLabelValues(op).Inc()
	}

	retryErr := retry.WithBackoff(connCtx, retry.DefaultConfig(), logger, "postgres_connection", func() error {
		pool, openErr := pgxpool.NewWithConfig(connCtx, config)
		if openErr != nil {
			return fmt.Errorf("failed to create postgres connection pool: %w", openErr)
		}

		if pingErr := pool.Ping(connCtx); pingErr != nil {
			pool.Close()
			return fmt.Errorf("failed to ping postgres: %w", pingErr)
		}

		client.Pool = pool
		logger.Info("PostgreSQL connection pool configured",
			zap.String("database", config.ConnConfig.Database),
			zap.String("component", poolConf.Component),
			zap.Int32("min_conns", poolConf.MinConns),
			zap.Int32("max_conns", poolConf.MaxConns),
			zap.Duration("acquire_timeout", poolConf.AcquireTimeout),
			zap.Duration("query_timeout", poolConf.QueryTimeout),
		)
		return nil
	})
	if retryErr != nil {
		return Client{}, retryErr
	}

	return client, nil
}

// QueryFunc runs query on a pooled connection and calls scan once per row.
//
// Acquiring the connection is bounded by AcquireTimeout, so an exhausted pool
// comes back as a *StoreError instead of blocking the request forever. Only
// failures before the first row is delivered are retried.
func (c *Client) QueryFunc(ctx context.Context, op string, query string, args []any, scan func(pgx.Rows) error) error {
	if c.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.QueryTimeout)
		defer cancel()
	}

	var (
		conn *pgxpool.Conn
		rows pgx.Rows
	)
	err := retry.WithBackoffIf(ctx, c.Retry, c.Logger, op, Retryable, func() error {
		var err error
		conn, err = c.acquire(ctx, op)
		if err != nil {
			return err
		}
		rows, err = conn.Query(ctx, query, args...)
		if err != nil {
			conn.Release()
			conn = nil
			return Classify(op, err)
		}
		return nil
	})
	if err != nil {
		return unwrapRetry(op, err)
	}
	defer conn.Release()
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return Classify(op, err)
		}
	}
	return Classify(op, rows.Err())
}

// QueryOne runs a query expected to return at most one row. It reports false
// when there was no row.
func (c *Client) QueryOne(ctx context.Context, op string, query string, args []any, scan func(pgx.Row) error) (bool, error) {
	found := false
	err := c.QueryFunc(ctx, op, query, args, func(rows pgx.Rows) error {
		if found {
			return nil
		}
		found = true
		return scan(rows)
	})
	return found, err
}

// Exec executes a statement without returning any rows
func (c *Client) Exec(ctx context.Context, op string, query string, args ...any) error {
	conn, err := c.acquire(ctx, op)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, query, args...)
	return Classify(op, err)
}

// Ping checks that a connection can be acquired and used.
func (c *Client) Ping(ctx context.Context) error {
	if c.Pool == nil {
		return &StoreError{Kind: KindConnection, Op: "ping", Err: errors.New("pool not initialized")}
	}
	return Classify("ping", c.Pool.Ping(ctx))
}

// Close closes the connection pool
func (c *Client) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

func (c *Client) acquire(ctx context.Context, op string) (*pgxpool.Conn, error) {
	if c.Pool == nil {
		return nil, &StoreError{Kind: KindConnection, Op: op, Err: errors.New("pool not initialized")}
	}

	acquireCtx := ctx
	if c.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, c.AcquireTimeout)
		defer cancel()
	}

	conn, err := c.Pool.Acquire(acquireCtx)
	if err != nil {
		// The caller's own deadline is not pool exhaustion.
		if ctx.Err() != nil {
			return nil, Classify(op, ctx.Err())
		}
		if errors.Is(err, context.DeadlineExceeded) {
			stat := c.Pool.Stat()
			return nil, &StoreError{
				Kind: KindPool,
				Op:   op,
				Err:  fmt.Errorf("no connection available within %s (%d/%d in use)", c.AcquireTimeout, stat.AcquiredConns(), stat.MaxConns()),
			}
		}
		return nil, Classify(op, err)
	}
	return conn, nil
}

// unwrapRetry keeps the *StoreError reachable after retry wrapping so
// callers see a single failure kind.
func unwrapRetry(op string, err error) error {
	var se *StoreError
	if errors.As(err, &se) {
		return se
	}
	return Classify(op, err)
}

// GetPoolConfigForComponent returns pool settings for each binary, with
// environment overrides applied.
func GetPoolConfigForComponent(component string) *PoolConfig {
	var minConns, maxConns int
	switch component {
	case "query":
		minConns = 2
		maxConns = 20
	case "cli":
		minConns = 1
		maxConns = 4
	default:
		minConns = 2
		maxConns = 10
	}

	return &PoolConfig{
		MinConns:        int32(utils.EnvInt("POSTGRES_MIN_CONNS", minConns)),
		MaxConns:        int32(utils.EnvInt("POSTGRES_MAX_CONNS", maxConns)),
		ConnMaxLifetime: utils.EnvDuration("POSTGRES_CONN_MAX_LIFETIME", time.Hour),
		ConnMaxIdleTime: utils.EnvDuration("POSTGRES_CONN_MAX_IDLE_TIME", 30*time.Minute),
		AcquireTimeout:  utils.EnvDuration("POSTGRES_ACQUIRE_TIMEOUT", 5*time.Second),
		QueryTimeout:    utils.EnvDuration("POSTGRES_QUERY_TIMEOUT", 30*time.Second),
		Component:       component,
	}
}
