package helper

import (
	"context"
	"log"
	"net/url"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDatabaseImage    = "pgvector/pgvector:pg17"
	testDatabaseName     = "database"
	testDatabaseUser     = "user"
	testDatabasePassword = "password"
)

// MustStartPostgresContainer starts a pgvector enabled Postgres container
// and returns its terminate function and mapped port.
func MustStartPostgresContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(
		ctx,
		testDatabaseImage,
		postgres.WithDatabase(testDatabaseName),
		postgres.WithUsername(testDatabaseUser),
		postgres.WithPassword(testDatabasePassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, "", NewError("start postgres container", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return pgContainer.Terminate, "", NewError("connection string", err)
	}

	u, err := url.Parse(connStr)
	if err != nil {
		return pgContainer.Terminate, "", NewError("parse connection string", err)
	}

	return pgContainer.Terminate, u.Port(), nil
}

// RunWithPostgres runs the tests of a package against a fresh Postgres container.
// The mapped port is written to port before the first test starts. The returned
// exit code is non-zero when the container fails to start or to terminate.
func RunWithPostgres(m *testing.M, port *string) int {
	teardown, p, err := MustStartPostgresContainer()
	if err != nil {
		log.Printf("error starting postgres container: %v", err)
		if teardown != nil {
			_ = teardown(context.Background())
		}
		return 1
	}
	*port = p

	code := m.Run()

	if err := teardown(context.Background()); err != nil {
		log.Printf("error tearing down postgres container: %v", err)
		if code == 0 {
			code = 1
		}
	}
	return code
}

// SetTestDatabaseConfigEnvs points the database configuration at the test container.
func SetTestDatabaseConfigEnvs(t *testing.T, port string) {
	t.Setenv("EVENTER_DB_HOST", "localhost")
	t.Setenv("EVENTER_DB_PORT", port)
	t.Setenv("EVENTER_DB_DATABASE", testDatabaseName)
	t.Setenv("EVENTER_DB_USERNAME", testDatabaseUser)
	t.Setenv("EVENTER_DB_PASSWORD", testDatabasePassword)
	t.Setenv("EVENTER_DB_SCHEMA", "public")
	t.Setenv("EVENTER_DB_SSLMODE", "disable")
}
