package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/EgorLis/infdot-upload/internal/domain"
)

// ---- Postgres репозиторий (pgxpool) + golang-migrate ----

// dbPool: то, что нам нужно от *pgxpool.Pool (и от pgxmock в тестах)
type dbPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

type PGRepo struct {
	logger zerolog.Logger
	pool   dbPool
	schema string
}

var (
	_ domain.UsersRepo       = (*PGRepo)(nil)
	_ domain.ProjectsRepo    = (*PGRepo)(nil)
	_ domain.AttachmentsRepo = (*PGRepo)(nil)
	_ domain.Pinger          = (*PGRepo)(nil)
)

func NewPGRepo(ctx context.Context, logger zerolog.Logger, dsn, schema string) (*PGRepo, error) {
	// Запускаем golang-migrate используя pgx/stdlib
	if err := runMigrations(dsn, schema, logger); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	logger.Info().Msg("initializing pgxpool...")
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	logger.Info().Msg("pgxpool initialized")

	return newWithPool(pool, schema, logger), nil
}

func newWithPool(pool dbPool, schema string, logger zerolog.Logger) *PGRepo {
	return &PGRepo{pool: pool, schema: schema, logger: logger}
}

func (r *PGRepo) Close() {
	r.logger.Info().Msg("closing pgxpool...")
	r.pool.Close()
	r.logger.Info().Msg("pgxpool closed")
}

// ---- Миграции через golang-migrate ----

//go:embed migrations/*.sql
var EmbeddedMigrations embed.FS

func runMigrations(dsn, schema string, logger zerolog.Logger) error {
	// Отдельный *sql.DB через pgx stdlib, не из pgxpool
	sqldb, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("sql.Open pgx: %w", err)
	}
	defer sqldb.Close()

	// схема берётся из search_path в DSN, её нужно создать до миграций
	if _, err := sqldb.Exec("CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{schema}.Sanitize()); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	driver, err := postgres.WithInstance(sqldb, &postgres.Config{SchemaName: schema})
	if err != nil {
		return fmt.Errorf("postgres driver: %w", err)
	}

	src, err := iofs.New(EmbeddedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate.New: %w", err)
	}
	defer m.Close()

	logger.Info().Str("schema", schema).Msg("applying migrations...")
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info().Msg("no new migrations to apply")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info().Msg("migrations applied successfully")
	return nil
}

// ---- Хелперы ----

func (r *PGRepo) qb() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// table: имя таблицы с префиксом схемы
func (r *PGRepo) table(name string) string {
	if r.schema == "" {
		return name
	}
	return r.schema + "." + name
}

func (r *PGRepo) logSQL(op, sqlStr string, args []any) {
	r.logger.Debug().Str("op", op).Str("sql", sqlStr).Int("args", len(args)).Msg("sql")
}

// notFound переводит pgx.ErrNoRows в domain.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (r *PGRepo) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		r.logger.Warn().Err(err).Msg("ping failed")
		return err
	}
	return nil
}
