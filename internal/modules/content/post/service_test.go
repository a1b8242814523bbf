package post

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/velora-shop/core/internal/models"
	"github.com/velora-shop/core/internal/pkg/errs"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func postRow(id, authorID, status string, publishedAt *time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "slug", "content", "status", "author_id", "published_at"}).
		AddRow(id, "A Title", "a-title", "some longer content here", status, authorID, publishedAt)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := NewService(nil, nil, "blog-images")
	ctx := context.Background()

	var vErr *errs.ValidationError

	_, err := svc.Create(ctx, "u1", &CreatePostDTO{Title: "", Content: "long enough content"}, nil)
	assert.ErrorAs(t, err, &vErr)

	longTitle := make([]byte, 101)
	for i := range longTitle {
		longTitle[i] = 'a'
	}
	_, err = svc.Create(ctx, "u1", &CreatePostDTO{Title: string(longTitle), Content: "long enough content"}, nil)
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.Create(ctx, "u1", &CreatePostDTO{Title: "ok", Content: "short"}, nil)
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.Create(ctx, "u1", &CreatePostDTO{Title: "ok", Content: "long enough content", Status: "archived"}, nil)
	assert.ErrorAs(t, err, &vErr)
}

func TestLengthLimitsCountRunes(t *testing.T) {
	// multi-byte text at the limit is valid, one rune over is not
	assert.NoError(t, validateTitle(strings.Repeat("é", maxTitleLen)))
	assert.Error(t, validateTitle(strings.Repeat("é", maxTitleLen+1)))

	assert.NoError(t, validateExcerpt(strings.Repeat("日", maxExcerptLen)))
	assert.Error(t, validateExcerpt(strings.Repeat("日", maxExcerptLen+1)))

	// 10 runes, 20 bytes
	assert.NoError(t, validateContent("содержание"))
}

func TestUpdateForbiddenForNonAuthor(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil, "blog-images")

	mock.ExpectQuery("SELECT (.+) FROM `posts`").
		WillReturnRows(postRow("p1", "author-1", models.PostStatusDraft, nil))

	title := "New Title"
	_, err := svc.Update(context.Background(), "p1", "someone-else", models.RoleUser,
		&UpdatePostDTO{Title: &title}, nil)

	var fErr *errs.ForbiddenError
	assert.ErrorAs(t, err, &fErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePublishSetsTimestampOnce(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil, "blog-images")

	mock.ExpectQuery("SELECT (.+) FROM `posts`").
		WillReturnRows(postRow("p1", "author-1", models.PostStatusDraft, nil))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `posts`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	status := "published"
	p, err := svc.Update(context.Background(), "p1", "author-1", models.RoleUser,
		&UpdatePostDTO{Status: &status}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPublished, p.Status)
	assert.NotNil(t, p.PublishedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRevertToDraftKeepsPublishedAt(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil, "blog-images")

	published := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM `posts`").
		WillReturnRows(postRow("p1", "author-1", models.PostStatusPublished, &published))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `posts`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	status := "draft"
	p, err := svc.Update(context.Background(), "p1", "author-1", models.RoleAdmin,
		&UpdatePostDTO{Status: &status}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusDraft, p.Status)
	require.NotNil(t, p.PublishedAt)
	assert.True(t, p.PublishedAt.Equal(published))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCommentValidation(t *testing.T) {
	svc := NewService(nil, nil, "blog-images")
	var vErr *errs.ValidationError

	_, err := svc.AddComment("p1", "u1", "   ")
	assert.ErrorAs(t, err, &vErr)

	long := make([]byte, 501)
	for i := range long {
		long[i] = 'x'
	}
	_, err = svc.AddComment("p1", "u1", string(long))
	assert.ErrorAs(t, err, &vErr)
}

func TestAddCommentPersists(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil, "blog-images")

	mock.ExpectQuery("SELECT (.+) FROM `posts`").
		WillReturnRows(postRow("p1", "author-1", models.PostStatusPublished, nil))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `comments`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	cm, err := svc.AddComment("p1", "u1", "nice post")
	require.NoError(t, err)
	assert.Equal(t, "p1", cm.PostID)
	assert.Equal(t, "u1", cm.UserID)
	assert.NotEmpty(t, cm.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLikeCreatesThenRemoves(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil, "blog-images")

	// first toggle: no existing like, insert one
	mock.ExpectQuery("SELECT (.+) FROM `posts`").
		WillReturnRows(postRow("p1", "author-1", models.PostStatusPublished, nil))
	mock.ExpectQuery("SELECT (.+) FROM `post_likes`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "user_id"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `post_likes`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `post_likes`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	likes, isLiked, err := svc.ToggleLike("p1", "u1")
	require.NoError(t, err)
	assert.True(t, isLiked)
	assert.Equal(t, int64(1), likes)

	// second toggle: existing like is hard-deleted, state restored
	mock.ExpectQuery("SELECT (.+) FROM `posts`").
		WillReturnRows(postRow("p1", "author-1", models.PostStatusPublished, nil))
	mock.ExpectQuery("SELECT (.+) FROM `post_likes`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "user_id"}).AddRow("l1", "p1", "u1"))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `post_likes`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `post_likes`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	likes, isLiked, err = svc.ToggleLike("p1", "u1")
	require.NoError(t, err)
	assert.False(t, isLiked)
	assert.Equal(t, int64(0), likes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLikeMissingPost(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil, "blog-images")

	mock.ExpectQuery("SELECT (.+) FROM `posts`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := svc.ToggleLike("missing", "u1")
	var nfErr *errs.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}
