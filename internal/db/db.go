package db

import (
	"context"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const PG_UNIQUE_CONSTRAINT_ERR_CODE = "23505"

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func IsUniqueViolation(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == PG_UNIQUE_CONSTRAINT_ERR_CODE && pgErr.ConstraintName == constraintName
}

func newMigrate(migrationsPath string, connString string) (*migrate.Migrate, error) {
	return migrate.New("file://"+migrationsPath, connString)
}

// MigrateUp applies all pending migrations. It is a no-op when the schema is
// already up to date.
func MigrateUp(migrationsPath string, connString string) error {
	m, err := newMigrate(migrationsPath, connString)
	if err != nil {
		return err
	}
	defer m.Close()
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func MigrateDown(migrationsPath string, connString string) error {
	m, err := newMigrate(migrationsPath, connString)
	if err != nil {
		return err
	}
	defer m.Close()
	err = m.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
