//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"tutorlink/cmd/bootstrap"
	"tutorlink/cmd/bootstrap/components"
	"tutorlink/internal/infra/db"
	"tutorlink/internal/pkg/config"
	"tutorlink/tests/common/dbtest"

	"github.com/docker/go-connections/nat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

const (
	pgUser     = "test"
	pgPassword = "testpass"
	pgPort     = "5432/tcp"
	schemaFile = "migrations/001_initial_schema.sql"
)

var (
	containerOnce sync.Once
	container     testcontainers.Container
)

// postgresContainer starts one throwaway server per test process.
func postgresContainer(t *testing.T) (host string, port nat.Port) {
	containerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		var err error
		container, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "postgres:17",
				ExposedPorts: []string{pgPort},
				Env: map[string]string{
					"POSTGRES_USER":     pgUser,
					"POSTGRES_PASSWORD": pgPassword,
					"POSTGRES_DB":       "postgres",
				},
				Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw"},
				Cmd:   []string{"postgres", "-c", "fsync=off", "-c", "max_connections=200"},
				WaitingFor: wait.ForSQL(pgPort, "pgx", func(host string, port nat.Port) string {
					return adminDSN(host, port)
				}).WithStartupTimeout(time.Minute),
				Labels: map[string]string{"purpose": "tutorlink-e2e"},
			},
			Started: true,
		})
		require.NoError(t, err, "start postgres container")

		t.Cleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := container.Terminate(ctx); err != nil {
				slog.Warn("failed to terminate postgres container", "error", err)
			}
		})
	})
	require.NotNil(t, container, "postgres container unavailable")

	ctx := context.Background()
	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err = container.MappedPort(ctx, pgPort)
	require.NoError(t, err)
	return host, port
}

func adminDSN(host string, port nat.Port) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable", pgUser, pgPassword, host, port.Port())
}

// createDatabase makes a fresh database with the schema and reference data
// applied, and drops it when the test ends.
func createDatabase(t *testing.T, host string, port nat.Port) (*pgxpool.Pool, config.DBConfig) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, adminDSN(host, port))
	require.NoError(t, err, "admin connection")
	defer admin.Close()

	name := "e2e_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = admin.Exec(ctx, "CREATE DATABASE "+name)
	require.NoError(t, err, "create database")

	cfg := config.DBConfig{
		Host:     host,
		Port:     port.Port(),
		User:     pgUser,
		Password: pgPassword,
		DBName:   name,
		SSLMode:  "disable",
		TimeZone: "UTC",
		MaxConns: 20,
	}
	pool, _, err := db.Connect(cfg)
	require.NoError(t, err, "connect to test database")

	t.Cleanup(func() {
		pool.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		admin, err := pgxpool.New(ctx, adminDSN(host, port))
		if err != nil {
			slog.Warn("failed to connect for cleanup", "database", name, "error", err)
			return
		}
		defer admin.Close()
		if _, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+name+" WITH (FORCE)"); err != nil {
			slog.Warn("failed to drop test database", "database", name, "error", err)
		}
	})

	schema, err := os.ReadFile(filepath.Join(repoRoot(t), schemaFile))
	require.NoError(t, err, "read schema")
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err, "apply schema")
	require.NoError(t, dbtest.SeedReferenceData(pool), "seed reference data")

	return pool, cfg
}

// repoRoot walks up from the package directory to the directory holding go.mod.
func repoRoot(t *testing.T) string {
	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "go.mod not found above the test package")
		dir = parent
	}
}

// buildE2EApp wires the production modules around the test pool and config.
func buildE2EApp(t *testing.T, pool *pgxpool.Pool, dbConfig config.DBConfig) (*gin.Engine, config.Config) {
	var (
		router *gin.Engine
		cfg    config.Config
	)

	app := fx.New(
		fx.Module("testdb", fx.Provide(
			func() *pgxpool.Pool { return pool },
			func() db.DBTX { return pool },
		)),
		fx.Module("testconfig",
			fx.Provide(func() config.Config {
				c := config.NewTestConfig()
				c.DB = dbConfig
				return c
			}),
			bootstrap.SubConfigs,
		),
		fx.Provide(func() *gin.Engine { return gin.New() }),
		bootstrap.LoggerModule,
		bootstrap.JWTModule,
		bootstrap.IntegrationsModule,
		components.RepositoryModule,
		bootstrap.SchedulerModule,
		components.UseCaseModule,
		components.HandlerModule,
		fx.Populate(&router, &cfg),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx), "start application")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			slog.Warn("failed to stop fx app", "error", err)
		}
	})
	return router, cfg
}

// SharedSuite gives each e2e suite its own database behind the full router.
// Every subtest starts from an empty schema.
type SharedSuite struct {
	suite.Suite
	Router *gin.Engine
	DB     *pgxpool.Pool
	Config config.Config
}

func (s *SharedSuite) SetupSuite() {
	t := s.T()
	gin.SetMode(gin.TestMode)

	host, port := postgresContainer(t)
	pool, dbConfig := createDatabase(t, host, port)
	s.DB = pool
	s.Router, s.Config = buildE2EApp(t, pool, dbConfig)
	require.NotNil(t, s.Router, "router setup failed")
}

func (s *SharedSuite) SetupSubTest() {
	require.NoError(s.T(), dbtest.ResetDB(s.DB), "reset database")
}
