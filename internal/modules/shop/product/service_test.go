package product

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

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

func productRow(id string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "slug", "description", "price", "status"}).
		AddRow(id, "Widget", "widget", "a fine widget indeed", 19.99, "active")
}

func strPtr(s string) *string { return &s }

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := NewService(nil, nil, "product-images")
	ctx := context.Background()
	price := 10.0
	negative := -1.0

	var vErr *errs.ValidationError

	_, err := svc.Create(ctx, &CreateProductDTO{Name: "", Description: "a fine widget", Price: &price}, nil)
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.Create(ctx, &CreateProductDTO{Name: "Widget", Description: "short", Price: &price}, nil)
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.Create(ctx, &CreateProductDTO{Name: "Widget", Description: "a fine widget", Price: nil}, nil)
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.Create(ctx, &CreateProductDTO{Name: "Widget", Description: "a fine widget", Price: &negative}, nil)
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.Create(ctx, &CreateProductDTO{
		Name: "Widget", Description: "a fine widget", Price: &price, Attributes: "{not json",
	}, nil)
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.Create(ctx, &CreateProductDTO{
		Name: "Widget", Description: "a fine widget", Price: &price, Status: "retired",
	}, nil)
	assert.ErrorAs(t, err, &vErr)
}

func TestLengthLimitsCountRunes(t *testing.T) {
	assert.NoError(t, validateName(strings.Repeat("ü", maxNameLen)))
	assert.Error(t, validateName(strings.Repeat("ü", maxNameLen+1)))

	// 10 runes, 30 bytes
	assert.NoError(t, validateDescription(strings.Repeat("描", minDescriptionLen)))
	assert.Error(t, validateDescription(strings.Repeat("描", maxDescriptionLen+1)))

	assert.NoError(t, validateMetaTitle(strings.Repeat("é", maxMetaTitle)))
	assert.Error(t, validateMetaTitle(strings.Repeat("é", maxMetaTitle+1)))

	assert.NoError(t, validateMetaDescription(strings.Repeat("é", maxMetaDesc)))
	assert.Error(t, validateMetaDescription(strings.Repeat("é", maxMetaDesc+1)))
}

func TestAddReviewValidatesRating(t *testing.T) {
	svc := NewService(nil, nil, "product-images")
	var vErr *errs.ValidationError

	for _, rating := range []int{0, -1, 6} {
		_, err := svc.AddReview("prod-1", nil, &ReviewDTO{Rating: rating})
		assert.ErrorAs(t, err, &vErr, "rating %d", rating)
	}
}

func TestAddReviewRejectsSecondReviewFromSameUser(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil, "product-images")

	mock.ExpectQuery("SELECT (.+) FROM `products`").WillReturnRows(productRow("prod-1"))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `reviews`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err := svc.AddReview("prod-1", strPtr("u1"), &ReviewDTO{Rating: 5, Comment: "great"})
	var dErr *errs.DuplicateError
	assert.ErrorAs(t, err, &dErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddReviewRecomputesAggregatesInTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil, "product-images")

	mock.ExpectQuery("SELECT (.+) FROM `products`").WillReturnRows(productRow("prod-1"))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `reviews`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `reviews`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS count, COALESCE\\(AVG\\(rating\\), 0\\) AS avg FROM `reviews`").
		WillReturnRows(sqlmock.NewRows([]string{"count", "avg"}).AddRow(3, 4.3333333))
	mock.ExpectExec("UPDATE `products`").
		WithArgs(4.3, int64(3), sqlmock.AnyArg(), "prod-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	review, err := svc.AddReview("prod-1", strPtr("u1"), &ReviewDTO{Rating: 5, Comment: "great"})
	require.NoError(t, err)
	assert.Equal(t, "prod-1", review.ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddReviewAnonymousSkipsDuplicateCheck(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil, "product-images")

	mock.ExpectQuery("SELECT (.+) FROM `products`").WillReturnRows(productRow("prod-1"))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `reviews`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS count").
		WillReturnRows(sqlmock.NewRows([]string{"count", "avg"}).AddRow(1, 4.0))
	mock.ExpectExec("UPDATE `products`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	review, err := svc.AddReview("prod-1", nil, &ReviewDTO{Rating: 4})
	require.NoError(t, err)
	assert.Nil(t, review.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddReviewMissingProduct(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil, "product-images")

	mock.ExpectQuery("SELECT (.+) FROM `products`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.AddReview("missing", nil, &ReviewDTO{Rating: 3})
	var nfErr *errs.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestDeleteImageNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil, "product-images")

	mock.ExpectQuery("SELECT (.+) FROM `products`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "images"}).
			AddRow("prod-1", "Widget", "widget", `[{"id":"img-1","url":"https://s.test/product-images/a.png"}]`))

	_, err := svc.DeleteImage(context.Background(), "prod-1", "img-does-not-exist")
	var nfErr *errs.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestParseAttributes(t *testing.T) {
	attrs, err := parseAttributes(`[{"name":"color","value":"red"}]`)
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.Equal(t, "color", attrs[0].Name)

	attrs, err = parseAttributes("")
	require.NoError(t, err)
	assert.Nil(t, attrs)

	_, err = parseAttributes("{oops")
	assert.Error(t, err)
}

func TestSplitTags(t *testing.T) {
	got := splitTags([]string{"go, web", " api ", ""})
	assert.Equal(t, []string{"go", "web", "api"}, got)
}
