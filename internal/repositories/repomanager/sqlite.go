package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/recipekeeper/internal/filex"
	"github.com/dmitrijs2005/recipekeeper/internal/migrations"
	"github.com/dmitrijs2005/recipekeeper/internal/repositories/accounts"
	"github.com/dmitrijs2005/recipekeeper/internal/repositories/submissions"

	_ "modernc.org/sqlite"
)

// SQLiteFileName is the database file inside the data directory.
const SQLiteFileName = "recipekeeper.db"

type SQLiteRepositoryManager struct {
	db          *sql.DB
	accounts    *accounts.SQLiteRepository
	submissions *submissions.SQLiteRepository
}

func (m *SQLiteRepositoryManager) Accounts() accounts.Repository {
	return m.accounts
}

func (m *SQLiteRepositoryManager) Submissions() submissions.Repository {
	return m.submissions
}

func (m *SQLiteRepositoryManager) Close() error {
	return m.db.Close()
}

func sqliteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=foreign_keys(1)"
}

// NewSQLiteRepositoryManager opens (or creates) the database in dataDir.
// A single connection serializes writers.
func NewSQLiteRepositoryManager(ctx context.Context, dataDir string) (*SQLiteRepositoryManager, error) {
	dir, err := filex.EnsureDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	db, err := sql.Open("sqlite", sqliteDSN(filepath.Join(dir, SQLiteFileName)))
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrations.RunSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &SQLiteRepositoryManager{
		db:          db,
		accounts:    accounts.NewSQLiteRepository(db),
		submissions: submissions.NewSQLiteRepository(db),
	}, nil
}
