package submissions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pgInsertSubmissionQ = `(?s)^INSERT\s+INTO\s+submissions\s*\(id,.*created_at\)\s*VALUES\s*\(\$1,.*\$8\)\s*RETURNING\s+seq$`
	pgInsertAttachmentQ = `(?s)^INSERT\s+INTO\s+attachments.*ON\s+CONFLICT\s*\(ref\)\s*DO\s+NOTHING$`
	pgListQ             = `(?s)^SELECT\s+seq,\s*id,.*FROM\s+submissions\s+ORDER\s+BY\s+created_at\s+DESC,\s*seq\s+DESC$`
	pgListAttachmentsQ  = `(?s)^SELECT\s+submission_id,.*FROM\s+attachments\s+ORDER\s+BY\s+submission_id,\s*kind,\s*position$`
	pgGetQ              = `(?s)^SELECT\s+seq,\s*id,.*FROM\s+submissions\s+WHERE\s+id\s*=\s*\$1$`
	pgGetAttachmentsQ   = `(?s)^SELECT\s+submission_id,.*FROM\s+attachments\s+WHERE\s+submission_id\s*=\s*\$1\s+ORDER\s+BY\s+kind,\s*position$`
)

var submissionCols = []string{"seq", "id", "recipe_name", "region", "food_type", "ingredients", "steps", "submitted_by", "created_at"}
var attachmentCols = []string{"submission_id", "kind", "position", "ref", "content_type", "original_name", "size"}

func newPGWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

func TestPostgresAppend_Success(t *testing.T) {
	repo, mock, _ := newPGWithMock(t)
	s := newSubmission("s-1", baseTime, "images/a.jpg")

	mock.ExpectBegin()
	mock.ExpectQuery(pgInsertSubmissionQ).
		WithArgs("s-1", s.RecipeName, s.Region, s.FoodType, s.Ingredients, s.Steps, s.SubmittedBy, baseTime).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(12)))
	mock.ExpectExec(pgInsertAttachmentQ).
		WithArgs("s-1", "images", 0, "images/a.jpg", "image/jpeg", "", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Append(context.Background(), s))
	assert.Equal(t, int64(12), s.Seq)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAppend_RefInUseRollsBack(t *testing.T) {
	repo, mock, _ := newPGWithMock(t)
	s := newSubmission("s-1", baseTime, "images/a.jpg")

	mock.ExpectBegin()
	mock.ExpectQuery(pgInsertSubmissionQ).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(12)))
	mock.ExpectExec(pgInsertAttachmentQ).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Append(context.Background(), s)
	assert.ErrorIs(t, err, common.ErrorAttachmentInUse)
	assert.Zero(t, s.Seq)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAppend_InsertError(t *testing.T) {
	repo, mock, _ := newPGWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(pgInsertSubmissionQ).WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	err := repo.Append(context.Background(), newSubmission("s-1", baseTime))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db down")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresList(t *testing.T) {
	repo, mock, _ := newPGWithMock(t)
	later := baseTime.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(pgListQ).WillReturnRows(sqlmock.NewRows(submissionCols).
		AddRow(int64(2), "b", "B", "r", models.FoodSweet, "", "", "ravi", later).
		AddRow(int64(1), "a", "A", "r", models.FoodLunch, "i", "s", models.AnonymousUser, baseTime))
	mock.ExpectQuery(pgListAttachmentsQ).WillReturnRows(sqlmock.NewRows(attachmentCols).
		AddRow("a", "images", 0, "images/1.jpg", "image/jpeg", "one.jpg", int64(10)).
		AddRow("a", "images", 1, "images/2.jpg", "image/jpeg", "two.jpg", int64(11)).
		AddRow("b", "videos", 0, "videos/1.mp4", "video/mp4", "", int64(99)))
	mock.ExpectCommit()

	subs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "b", subs[0].ID)
	assert.Equal(t, "ravi", subs[0].SubmittedBy)
	require.Len(t, subs[0].Attachments.Videos, 1)
	assert.Equal(t, models.MediaVideo, subs[0].Attachments.Videos[0].Kind)
	assert.Equal(t, "a", subs[1].ID)
	require.Len(t, subs[1].Attachments.Images, 2)
	assert.Equal(t, "images/2.jpg", subs[1].Attachments.Images[1].Ref)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGet_NotFound(t *testing.T) {
	repo, mock, _ := newPGWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(pgGetQ).WithArgs("ghost").WillReturnRows(sqlmock.NewRows(submissionCols))
	mock.ExpectRollback()

	_, err := repo.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGet_Found(t *testing.T) {
	repo, mock, _ := newPGWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(pgGetQ).WithArgs("a").WillReturnRows(sqlmock.NewRows(submissionCols).
		AddRow(int64(1), "a", "A", "r", models.FoodLunch, "i", "s", "ravi", baseTime))
	mock.ExpectQuery(pgGetAttachmentsQ).WithArgs("a").WillReturnRows(sqlmock.NewRows(attachmentCols).
		AddRow("a", "audios", 0, "audios/1.mp3", "audio/mpeg", "", int64(5)))
	mock.ExpectCommit()

	got, err := repo.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "A", got.RecipeName)
	require.Len(t, got.Attachments.Audios, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
