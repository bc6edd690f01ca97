// Package listings builds and runs every query against the MLS listing
// store. The raw table is append-only, one row per observed change, so all
// reads go through the latest-snapshot CTE defined in resolver.go.
package listings

import (
	"context"
	"strings"

	"github.com/beachesmls/marketreport/pkg/db/postgres"
	"github.com/beachesmls/marketreport/pkg/utils"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	DefaultListingsTable     = "mls.beaches_residential"
	DefaultDevelopmentsTable = "waterfrontdata.development_data"
)

// Tables names the two source tables, optionally schema-qualified.
type Tables struct {
	Listings     string
	Developments string
}

// TablesFromEnv reads MLS_LISTINGS_TABLE and MLS_DEVELOPMENTS_TABLE.
func TablesFromEnv() Tables {
	return Tables{
		Listings:     utils.Env("MLS_LISTINGS_TABLE", DefaultListingsTable),
		Developments: utils.Env("MLS_DEVELOPMENTS_TABLE", DefaultDevelopmentsTable),
	}
}

func (t Tables) withDefaults() Tables {
	if t.Listings == "" {
		t.Listings = DefaultListingsTable
	}
	if t.Developments == "" {
		t.Developments = DefaultDevelopmentsTable
	}
	return t
}

// ident quotes a possibly schema-qualified table name.
func ident(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

func splitTable(name string) (schema, table string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "public", name
}

// DB runs listing queries over a shared pool.
type DB struct {
	*postgres.Client
	Tables Tables
	Logger *zap.Logger
}

// New opens a pool for component and returns a DB over tables.
func New(ctx context.Context, logger *zap.Logger, component string, tables Tables) (*DB, error) {
	client, err := postgres.New(ctx, logger, postgres.GetPoolConfigForComponent(component))
	if err != nil {
		return nil, err
	}
	return NewWithClient(&client, tables, logger), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *postgres.Client, tables Tables, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{
		Client: client,
		Tables: tables.withDefaults(),
		Logger: logger.With(zap.String("component", "listings_db")),
	}
}

func (db *DB) listingsTable() string {
	return ident(db.Tables.Listings)
}

func (db *DB) developmentsTable() string {
	return ident(db.Tables.Developments)
}
