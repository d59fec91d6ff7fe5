package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test in an empty directory so no config.toml or .env is picked up
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		chdirTemp(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "stockflow", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "stockflow", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "memory", cfg.Idempotency.Backend)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
		assert.Equal(t, 30*time.Second, cfg.Production.LockTTL)
		assert.False(t, cfg.Production.LockEnabled)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("ERP_DATABASE_DRIVER", "sqlite")
		t.Setenv("ERP_DATABASE_PATH", ":memory:")
		t.Setenv("ERP_PRODUCTION_LOCK_ENABLED", "true")
		t.Setenv("ERP_IDEMPOTENCY_BACKEND", "redis")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, ":memory:", cfg.Database.Path)
		assert.True(t, cfg.Production.LockEnabled)
		assert.Equal(t, "redis", cfg.Idempotency.Backend)
	})

	t.Run("reads config.toml", func(t *testing.T) {
		dir := chdirTemp(t)
		content := "[app]\nport = \"9090\"\n\n[production]\nlock_ttl = \"45s\"\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, 45*time.Second, cfg.Production.LockTTL)
	})

	t.Run("loads .env without overriding the environment", func(t *testing.T) {
		dir := chdirTemp(t)
		content := "ERP_APP_PORT=7070\nERP_DATABASE_DBNAME=fromdotenv\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
		t.Setenv("ERP_DATABASE_DBNAME", "fromenv")
		t.Cleanup(func() { _ = os.Unsetenv("ERP_APP_PORT") })

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "7070", cfg.App.Port)
		assert.Equal(t, "fromenv", cfg.Database.DBName)
	})

	t.Run("rejects an unknown database driver", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("ERP_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, valid().validate())
	})

	t.Run("idle connections cannot exceed open connections", func(t *testing.T) {
		cfg := valid()
		cfg.Database.MaxIdleConns = 50
		assert.Error(t, cfg.validate())
	})

	t.Run("unknown idempotency backend", func(t *testing.T) {
		cfg := valid()
		cfg.Idempotency.Backend = "memcached"
		assert.Error(t, cfg.validate())
	})

	t.Run("lock ttl below one second", func(t *testing.T) {
		cfg := valid()
		cfg.Production.LockTTL = 100 * time.Millisecond
		assert.Error(t, cfg.validate())
	})

	t.Run("production requires postgres with ssl and a password", func(t *testing.T) {
		cfg := valid()
		cfg.App.Env = "production"
		assert.Error(t, cfg.validate())

		cfg.Database.Password = "secret"
		assert.Error(t, cfg.validate(), "sslmode disable is rejected")

		cfg.Database.SSLMode = "require"
		assert.NoError(t, cfg.validate())

		cfg.Database.Driver = "sqlite"
		assert.Error(t, cfg.validate())
	})

	t.Run("sampling ratio out of range", func(t *testing.T) {
		cfg := valid()
		cfg.Telemetry.SamplingRatio = 1.5
		assert.Error(t, cfg.validate())
	})
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "erp", Password: "secret", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://erp:secret@db:5433/stock?sslmode=disable", d.DSN())

	d.Password = "p@ss"
	assert.Contains(t, d.DSN(), "erp:p%40ss@db:5433")
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.RedisAddr())
}
