// Package accounts persists registered accounts.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/recipekeeper/internal/models"
)

// Repository stores accounts keyed by username.
//
// Create fails with common.ErrorUsernameTaken when the username exists and
// leaves the stored account untouched. GetByUsername returns
// common.ErrorNotFound for unknown usernames.
type Repository interface {
	Create(ctx context.Context, acc *models.Account) error
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
}
