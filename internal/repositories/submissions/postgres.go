package submissions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/models"
)

const (
	pgInsertSubmission = `INSERT INTO submissions
		 (id, recipe_name, region, food_type, ingredients, steps, submitted_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING seq`

	pgInsertAttachment = `INSERT INTO attachments
		 (submission_id, kind, position, ref, content_type, original_name, size)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (ref) DO NOTHING`

	pgSelectSubmissions = `SELECT seq, id, recipe_name, region, food_type, ingredients, steps, submitted_by, created_at
		 FROM submissions`

	pgSelectAttachments = `SELECT submission_id, kind, position, ref, content_type, original_name, size
		 FROM attachments`
)

// PostgresRepository stores submissions in a shared PostgreSQL database.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, s *models.Submission) error {
	var seq int64
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		err := tx.QueryRowContext(ctx, pgInsertSubmission,
			s.ID, s.RecipeName, s.Region, s.FoodType, s.Ingredients, s.Steps, s.SubmittedBy, s.CreatedAt).Scan(&seq)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return insertAttachments(ctx, tx, pgInsertAttachment, s)
	})
	if err != nil {
		return err
	}

	s.Seq = seq
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Submission, error) {
	var out []*models.Submission
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err := dbx.WithTx(ctx, r.db, opts, func(ctx context.Context, tx dbx.DBTX) error {
		subs, err := r.selectSubmissions(ctx, tx, pgSelectSubmissions+` ORDER BY created_at DESC, seq DESC`)
		if err != nil {
			return err
		}
		query := pgSelectAttachments + ` ORDER BY submission_id, kind, position`
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

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Submission, error) {
	var out *models.Submission
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err := dbx.WithTx(ctx, r.db, opts, func(ctx context.Context, tx dbx.DBTX) error {
		subs, err := r.selectSubmissions(ctx, tx, pgSelectSubmissions+` WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if len(subs) == 0 {
			return common.ErrorNotFound
		}
		query := pgSelectAttachments + ` WHERE submission_id = $1 ORDER BY kind, position`
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

func (r *PostgresRepository) selectSubmissions(ctx context.Context, tx dbx.DBTX, query string, args ...any) ([]*models.Submission, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error selecting submissions: %w", err)
	}
	defer rows.Close()

	subs := make([]*models.Submission, 0)
	for rows.Next() {
		s := &models.Submission{}
		if err := rows.Scan(&s.Seq, &s.ID, &s.RecipeName, &s.Region, &s.FoodType,
			&s.Ingredients, &s.Steps, &s.SubmittedBy, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning submission: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}

	return subs, nil
}
