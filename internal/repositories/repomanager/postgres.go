package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/migrations"
	"github.com/dmitrijs2005/recipekeeper/internal/repositories/accounts"
	"github.com/dmitrijs2005/recipekeeper/internal/repositories/submissions"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresRepositoryManager struct {
	db          *sql.DB
	accounts    *accounts.PostgresRepository
	submissions *submissions.PostgresRepository
}

func (m *PostgresRepositoryManager) Accounts() accounts.Repository {
	return m.accounts
}

func (m *PostgresRepositoryManager) Submissions() submissions.Repository {
	return m.submissions
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}

// Seams for tests.
var (
	openPostgres = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	runPostgresMigrations = migrations.RunPostgres
)

func NewPostgresRepositoryManager(ctx context.Context, dsn string) (*PostgresRepositoryManager, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres backend requires a database dsn")
	}

	db, err := openPostgres(dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := runPostgresMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &PostgresRepositoryManager{
		db:          db,
		accounts:    accounts.NewPostgresRepository(db),
		submissions: submissions.NewPostgresRepository(db),
	}, nil
}
