package ledger

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/models"
	"github.com/dmitrijs2005/recipekeeper/internal/repositories/submissions"
)

type SubmissionRepository struct {
	store *Store
}

func (r *SubmissionRepository) Append(ctx context.Context, s *models.Submission) error {
	var seq int64
	err := r.store.update(ctx, func(doc *document) error {
		used := make(map[string]struct{})
		for _, existing := range doc.Submissions {
			if existing.ID == s.ID {
				return fmt.Errorf("duplicate submission id %s", s.ID)
			}
			for _, a := range existing.Attachments.All() {
				used[a.Ref] = struct{}{}
			}
		}
		if err := submissions.CheckRefs(s, used); err != nil {
			return err
		}

		doc.LastSeq++
		seq = doc.LastSeq
		stored := s.Clone()
		stored.Seq = seq
		doc.Submissions = append(doc.Submissions, stored)
		return nil
	})
	if err != nil {
		return err
	}

	s.Seq = seq
	return nil
}

func (r *SubmissionRepository) List(ctx context.Context) ([]*models.Submission, error) {
	var out []*models.Submission
	err := r.store.view(ctx, func(doc *document) error {
		out = doc.Submissions
		return nil
	})
	if err != nil {
		return nil, err
	}

	models.SortNewestFirst(out)
	return out, nil
}

func (r *SubmissionRepository) Get(ctx context.Context, id string) (*models.Submission, error) {
	var out *models.Submission
	err := r.store.view(ctx, func(doc *document) error {
		for _, s := range doc.Submissions {
			if s.ID == id {
				out = s
				return nil
			}
		}
		return common.ErrorNotFound
	})
	return out, err
}
