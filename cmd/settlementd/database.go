package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/settlement/internal/config"
	"github.com/MarkoPoloResearchLab/settlement/internal/store/gormstore"
	"github.com/MarkoPoloResearchLab/settlement/internal/store/memstore"
	"github.com/MarkoPoloResearchLab/settlement/internal/store/mongostore"
	"github.com/MarkoPoloResearchLab/settlement/internal/store/pgstore"
	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"

	mongoConnectTimeout = 10 * time.Second
)

// openStore connects the configured store and prepares its schema.
func openStore(ctx context.Context, cfg config.Config) (settlement.Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		return memstore.New(), func() error { return nil }, nil
	case config.StoreDriverPgx:
		return openPgxStore(ctx, cfg.DatabaseURL)
	case config.StoreDriverMongo:
		return openMongoStore(ctx, cfg.DatabaseURL, cfg.MongoDatabase)
	case config.StoreDriverGorm:
		return openGormStore(ctx, cfg.DatabaseURL)
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func openGormStore(ctx context.Context, dsn string) (settlement.Store, func() error, error) {
	db, cleanup, _, err := openDatabase(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("database open: %w", err)
	}
	if err := gormstore.Migrate(db); err != nil {
		_ = cleanup()
		return nil, nil, fmt.Errorf("auto migrate: %w", err)
	}
	return gormstore.New(db), cleanup, nil
}

func openPgxStore(ctx context.Context, dsn string) (settlement.Store, func() error, error) {
	if driver, _, err := resolveDriver(dsn); err != nil || driver != driverPostgres {
		return nil, nil, fmt.Errorf("pgx store requires a postgres url")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("pgx pool: %w", err)
	}
	store := pgstore.New(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, func() error { pool.Close(); return nil }, nil
}

func openMongoStore(ctx context.Context, uri string, database string) (settlement.Store, func() error, error) {
	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri).SetRetryWrites(true))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	disconnect := func() error {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
		defer disconnectCancel()
		return client.Disconnect(disconnectCtx)
	}
	store := mongostore.New(client.Database(database))
	if err := store.EnsureIndexes(connectCtx); err != nil {
		_ = disconnect()
		return nil, nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return store, disconnect, nil
}

func openDatabase(ctx context.Context, dsn string) (*gorm.DB, func() error, string, error) {
	driver, sqlitePath, err := resolveDriver(dsn)
	if err != nil {
		return nil, nil, "", err
	}

	var db *gorm.DB
	gormConfig := &gorm.Config{}
	switch driver {
	case driverPostgres:
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	case driverSQLite:
		db, err = gorm.Open(sqlite.Open(sqlitePath), gormConfig)
	default:
		return nil, nil, "", fmt.Errorf("unsupported database scheme %q", driver)
	}
	if err != nil {
		return nil, nil, "", err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, "", err
	}
	cleanup := func() error { return sqlDB.Close() }
	return db.WithContext(ctx), cleanup, driver, nil
}

func resolveDriver(dsn string) (string, string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return driverPostgres, "", nil
	}
	if strings.HasPrefix(dsn, "sqlite://") {
		parsed, err := url.Parse(dsn)
		if err != nil {
			return "", "", fmt.Errorf("parse sqlite url: %w", err)
		}
		path := parsed.Path
		if path == "" {
			path = parsed.Host
		}
		if path == "" || path == "/" {
			path = "settlement.db"
		}
		sqlitePath, err := normalizeSQLitePath(path)
		return driverSQLite, sqlitePath, err
	}
	if strings.Contains(dsn, "://") {
		return "", "", fmt.Errorf("unsupported database url %q", dsn)
	}
	// Anything else is a direct sqlite path.
	sqlitePath, err := normalizeSQLitePath(dsn)
	return driverSQLite, sqlitePath, err
}

func normalizeSQLitePath(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}
	if strings.HasPrefix(path, "/") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", err
		}
		return path, nil
	}
	relative := filepath.Join(".", path)
	if err := os.MkdirAll(filepath.Dir(relative), 0o755); err != nil {
		return "", err
	}
	return relative, nil
}
