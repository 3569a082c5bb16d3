// Package repomanager selects and opens the storage backend that holds
// accounts and submissions.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/repositories/accounts"
	"github.com/dmitrijs2005/recipekeeper/internal/repositories/submissions"
)

// Supported backends.
const (
	BackendSQLite   = "sqlite"
	BackendLedger   = "ledger"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type RepositoryManager interface {
	Accounts() accounts.Repository
	Submissions() submissions.Repository
	Close() error
}

type Options struct {
	Backend string
	// DataDir holds the SQLite database or the JSON ledger.
	DataDir string
	// DSN is the PostgreSQL connection string.
	DSN string
}

// New opens the backend named by opts.Backend, creating and migrating it as
// needed.
func New(ctx context.Context, opts Options) (RepositoryManager, error) {
	var (
		m   RepositoryManager
		err error
	)

	switch opts.Backend {
	case BackendSQLite, "":
		m, err = NewSQLiteRepositoryManager(ctx, opts.DataDir)
	case BackendLedger:
		m, err = NewLedgerRepositoryManager(opts.DataDir)
	case BackendPostgres:
		m, err = NewPostgresRepositoryManager(ctx, opts.DSN)
	case BackendMemory:
		m = NewInMemoryRepositoryManager()
	default:
		err = fmt.Errorf("unknown storage backend %q", opts.Backend)
	}

	if err != nil {
		return nil, err
	}
	return m, nil
}
