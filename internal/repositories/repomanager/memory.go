package repomanager

import (
	"github.com/dmitrijs2005/recipekeeper/internal/repositories/accounts"
	"github.com/dmitrijs2005/recipekeeper/internal/repositories/submissions"
)

// InMemoryRepositoryManager is the non-durable demo backend. Each manager
// owns its own state.
type InMemoryRepositoryManager struct {
	accounts    *accounts.MemoryRepository
	submissions *submissions.MemoryRepository
}

func (m *InMemoryRepositoryManager) Accounts() accounts.Repository {
	return m.accounts
}

func (m *InMemoryRepositoryManager) Submissions() submissions.Repository {
	return m.submissions
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		accounts:    accounts.NewMemoryRepository(),
		submissions: submissions.NewMemoryRepository(),
	}
}
