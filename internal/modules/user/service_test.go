package user

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/velora-shop/core/internal/models"
	"github.com/velora-shop/core/internal/pkg/errs"
	"github.com/velora-shop/core/internal/pkg/jwt"
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

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewService(db, jwt.New("test-secret", time.Hour)), mock
}

func TestRegisterValidatesUsername(t *testing.T) {
	svc := NewService(nil, nil)
	var vErr *errs.ValidationError

	for _, name := range []string{"", "ab", "has space", "way-too-punctuated!"} {
		_, _, err := svc.Register(&RegisterDTO{Username: name, Email: "a@b.test", Password: "secret123"})
		assert.ErrorAs(t, err, &vErr, "username %q", name)
	}
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	u, token, err := svc.Register(&RegisterDTO{Username: "founder", Email: "Founder@Shop.Test", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "founder@shop.test", u.Email)
	assert.NotEmpty(t, token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterLaterUsersGetUserRole(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	u, _, err := svc.Register(&RegisterDTO{Username: "shopper", Email: "s@shop.test", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := svc.Register(&RegisterDTO{Username: "founder", Email: "f@shop.test", Password: "secret123"})
	var dErr *errs.DuplicateError
	assert.ErrorAs(t, err, &dErr)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, mock := newTestService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "role"}).
			AddRow("u1", "founder", string(hash), models.RoleAdmin))

	_, _, err = svc.Login(&LoginDTO{Login: "founder", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := svc.Login(&LoginDTO{Login: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginSignsToken(t *testing.T) {
	svc, mock := newTestService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "role"}).
			AddRow("u1", "founder", string(hash), models.RoleAdmin))

	u, token, err := svc.Login(&LoginDTO{Login: "founder", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	claims, err := jwt.New("test-secret", time.Hour).Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}
