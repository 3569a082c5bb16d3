// Package submissions persists recipe submissions. Records are append-only:
// there is no update or delete.
package submissions

import (
	"context"

	"github.com/dmitrijs2005/recipekeeper/internal/models"
)

// Repository is an append-only submission ledger.
type Repository interface {
	// Append stores s as a single atomic entry and sets s.Seq. It fails
	// with common.ErrorAttachmentInUse when any attachment ref is already
	// referenced, in which case nothing is stored.
	Append(ctx context.Context, s *models.Submission) error
	// List returns every submission, newest first.
	List(ctx context.Context) ([]*models.Submission, error)
	// Get returns common.ErrorNotFound for unknown ids.
	Get(ctx context.Context, id string) (*models.Submission, error)
}
