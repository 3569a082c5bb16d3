package ledger

import (
	"context"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/models"
)

type AccountRepository struct {
	store *Store
}

func (r *AccountRepository) Create(ctx context.Context, acc *models.Account) error {
	return r.store.update(ctx, func(doc *document) error {
		if _, ok := doc.Accounts[acc.Username]; ok {
			return common.ErrorUsernameTaken
		}
		doc.Accounts[acc.Username] = *acc
		return nil
	})
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	var out *models.Account
	err := r.store.view(ctx, func(doc *document) error {
		acc, ok := doc.Accounts[username]
		if !ok {
			return common.ErrorNotFound
		}
		out = &acc
		return nil
	})
	return out, err
}
