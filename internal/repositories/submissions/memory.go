package submissions

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/models"
)

// MemoryRepository keeps submissions in process memory. Contents are lost
// on exit.
type MemoryRepository struct {
	mu      sync.RWMutex
	subs    []*models.Submission
	byID    map[string]*models.Submission
	refs    map[string]struct{}
	lastSeq int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID: make(map[string]*models.Submission),
		refs: make(map[string]struct{}),
	}
}

func (r *MemoryRepository) Append(ctx context.Context, s *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[s.ID]; ok {
		return fmt.Errorf("duplicate submission id %s", s.ID)
	}
	if err := CheckRefs(s, r.refs); err != nil {
		return err
	}

	r.lastSeq++
	s.Seq = r.lastSeq

	stored := s.Clone()
	r.subs = append(r.subs, stored)
	r.byID[stored.ID] = stored
	for _, a := range stored.Attachments.All() {
		r.refs[a.Ref] = struct{}{}
	}
	return nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.Submission, error) {
	r.mu.RLock()
	out := make([]*models.Submission, 0, len(r.subs))
	for _, s := range r.subs {
		out = append(out, s.Clone())
	}
	r.mu.RUnlock()

	models.SortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s.Clone(), nil
}

// CheckRefs reports common.ErrorAttachmentInUse when an attachment of s is
// already in used, or appears twice within s.
func CheckRefs(s *models.Submission, used map[string]struct{}) error {
	seen := make(map[string]struct{})
	for _, a := range s.Attachments.All() {
		if _, ok := used[a.Ref]; ok {
			return fmt.Errorf("%w: %s", common.ErrorAttachmentInUse, a.Ref)
		}
		if _, ok := seen[a.Ref]; ok {
			return fmt.Errorf("%w: %s", common.ErrorAttachmentInUse, a.Ref)
		}
		seen[a.Ref] = struct{}{}
	}
	return nil
}
