package repomanager

import (
	"path/filepath"

	"github.com/dmitrijs2005/recipekeeper/internal/repositories/accounts"
	"github.com/dmitrijs2005/recipekeeper/internal/repositories/ledger"
	"github.com/dmitrijs2005/recipekeeper/internal/repositories/submissions"
)

type LedgerRepositoryManager struct {
	store *ledger.Store
}

func (m *LedgerRepositoryManager) Accounts() accounts.Repository {
	return m.store.Accounts()
}

func (m *LedgerRepositoryManager) Submissions() submissions.Repository {
	return m.store.Submissions()
}

func (m *LedgerRepositoryManager) Close() error {
	return nil
}

func NewLedgerRepositoryManager(dataDir string) (*LedgerRepositoryManager, error) {
	store, err := ledger.Open(filepath.Join(dataDir, ledger.FileName))
	if err != nil {
		return nil, err
	}
	return &LedgerRepositoryManager{store: store}, nil
}
