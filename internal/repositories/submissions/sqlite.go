package submissions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/models"
)

const (
	sqliteInsertSubmission = `INSERT INTO submissions
		(id, recipe_name, region, food_type, ingredients, steps, submitted_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	sqliteInsertAttachment = `INSERT INTO attachments
		(submission_id, kind, position, ref, content_type, original_name, size)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ref) DO NOTHING`

	sqliteSelectSubmissions = `SELECT seq, id, recipe_name, region, food_type, ingredients, steps, submitted_by, created_at
		FROM submissions`

	sqliteSelectAttachments = `SELECT submission_id, kind, position, ref, content_type, original_name, size
		FROM attachments`
)

// SQLiteRepository stores submissions in an embedded SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, s *models.Submission) error {
	var seq int64
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, sqliteInsertSubmission,
			s.ID, s.RecipeName, s.Region, s.FoodType, s.Ingredients, s.Steps, s.SubmittedBy, s.CreatedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if seq, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return insertAttachments(ctx, tx, sqliteInsertAttachment, s)
	})
	if err != nil {
		return err
	}

	s.Seq = seq
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.Submission, error) {
	var out []*models.Submission
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		subs, err := r.selectSubmissions(ctx, tx, sqliteSelectSubmissions+` ORDER BY created_at DESC, seq DESC`)
		if err != nil {
			return err
		}
		query := sqliteSelectAttachments + ` ORDER BY submission_id, kind, position`
		if err := loadAttachments(ctx, tx, query, nil, indexByID(subs)); err != nil {
			return err
		}
		out = subs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Submission, error) {
	var out *models.Submission
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		subs, err := r.selectSubmissions(ctx, tx, sqliteSelectSubmissions+` WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if len(subs) == 0 {
			return common.ErrorNotFound
		}
		query := sqliteSelectAttachments + ` WHERE submission_id = ? ORDER BY kind, position`
		if err := loadAttachments(ctx, tx, query, []any{id}, indexByID(subs)); err != nil {
			return err
		}
		out = subs[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLiteRepository) selectSubmissions(ctx context.Context, tx dbx.DBTX, query string, args ...any) ([]*models.Submission, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error selecting submissions: %w", err)
	}
	defer rows.Close()

	subs := make([]*models.Submission, 0)
	for rows.Next() {
		s := &models.Submission{}
		var created int64
		if err := rows.Scan(&s.Seq, &s.ID, &s.RecipeName, &s.Region, &s.FoodType,
			&s.Ingredients, &s.Steps, &s.SubmittedBy, &created); err != nil {
			return nil, fmt.Errorf("error scanning submission: %w", err)
		}
		s.CreatedAt = time.Unix(0, created).UTC()
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}

	return subs, nil
}
