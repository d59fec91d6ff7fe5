// Package integration runs the services against a real PostgreSQL started with testcontainers.
package integration

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/erp/stockflow/internal/infrastructure/config"
	"github.com/erp/stockflow/internal/infrastructure/migration"
	"github.com/erp/stockflow/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	testDBName     = "stockflow_test"
	testDBUser     = "postgres"
	testDBPassword = "admin123"
)

var (
	// Shared container for all tests in the package
	sharedContainer   *tcpostgres.PostgresContainer
	sharedContainerMu sync.Mutex
)

// TestDB is a migrated postgres database
type TestDB struct {
	DB       *gorm.DB
	Database *persistence.Database
	Config   config.DatabaseConfig
	t        *testing.T
}

// NewTestDB starts (or reuses) the postgres container, applies the migrations
// and truncates every table so each test starts empty.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container := startContainer(t, ctx)
	host, err := container.Host(ctx)
	require.NoError(t, err, "Failed to get container host")
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err, "Failed to get mapped port")

	cfg := config.DatabaseConfig{
		Driver:          persistence.DriverPostgres,
		Host:            host,
		Port:            port.Int(),
		User:            testDBUser,
		Password:        testDBPassword,
		DBName:          testDBName,
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
	}

	gormLogger := gormlogger.Default.LogMode(gormlogger.Silent)
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Info)
	}
	db, err := persistence.NewDatabase(&cfg, persistence.WithLogger(gormLogger))
	require.NoError(t, err, "Failed to connect to database")
	require.NoError(t, migration.Prepare(db, &cfg, zap.NewNop()), "Failed to run migrations")

	tdb := &TestDB{DB: db.DB, Database: db, Config: cfg, t: t}
	tdb.CleanTables()
	t.Cleanup(func() { _ = db.Close() })
	return tdb
}

func startContainer(t *testing.T, ctx context.Context) *tcpostgres.PostgresContainer {
	t.Helper()

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()
	if sharedContainer != nil {
		return sharedContainer
	}

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(testDBName),
		tcpostgres.WithUsername(testDBUser),
		tcpostgres.WithPassword(testDBPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	sharedContainer = container
	return container
}

// CleanTables truncates every table except the migration history
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'
		AND tablename != 'schema_migrations'
	`).Scan(&tables).Error
	require.NoError(tdb.t, err, "Failed to get table names")

	for _, table := range tables {
		require.NoError(tdb.t, tdb.DB.Exec("TRUNCATE TABLE "+table+" CASCADE").Error, "Failed to truncate %s", table)
	}
}

// CleanupSharedContainer terminates the shared container. Called from TestMain.
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
	}
}
