package submissions

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/models"
)

// insertAttachments writes the attachment rows of s. query must take
// (submission_id, kind, position, ref, content_type, original_name, size) and
// skip rows whose ref already exists.
func insertAttachments(ctx context.Context, tx dbx.DBTX, query string, s *models.Submission) error {
	for _, group := range [][]models.Attachment{s.Attachments.Images, s.Attachments.Videos, s.Attachments.Audios} {
		for pos, a := range group {
			res, err := tx.ExecContext(ctx, query, s.ID, string(a.Kind), pos, a.Ref, a.ContentType, a.OriginalName, a.Size)
			if err != nil {
				return fmt.Errorf("db error: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if n == 0 {
				return fmt.Errorf("%w: %s", common.ErrorAttachmentInUse, a.Ref)
			}
		}
	}
	return nil
}

// loadAttachments fills the attachments of the submissions in byID. Rows
// must come back ordered by position within each kind.
func loadAttachments(ctx context.Context, tx dbx.DBTX, query string, args []any, byID map[string]*models.Submission) error {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error selecting attachments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   string
			kind string
			pos  int
			a    models.Attachment
		)
		if err := rows.Scan(&id, &kind, &pos, &a.Ref, &a.ContentType, &a.OriginalName, &a.Size); err != nil {
			return fmt.Errorf("error scanning attachment: %w", err)
		}
		s, ok := byID[id]
		if !ok {
			continue
		}
		a.Kind = models.MediaKind(kind)
		if err := s.Attachments.Add(a); err != nil {
			return fmt.Errorf("submission %s: %w", id, err)
		}
	}

	return rows.Err()
}

func indexByID(subs []*models.Submission) map[string]*models.Submission {
	byID := make(map[string]*models.Submission, len(subs))
	for _, s := range subs {
		byID[s.ID] = s
	}
	return byID
}
