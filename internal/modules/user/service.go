package user

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/velora-shop/core/internal/models"
	"github.com/velora-shop/core/internal/pkg/errs"
	"github.com/velora-shop/core/internal/pkg/jwt"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

// ErrInvalidCredentials is returned by Login for a bad username or password.
var ErrInvalidCredentials = errors.New("invalid username or password")

type Service struct {
	db     *gorm.DB
	signer *jwt.Signer
}

func NewService(db *gorm.DB, signer *jwt.Signer) *Service {
	return &Service{db: db, signer: signer}
}

// Register creates an account. The first account becomes the admin.
func (s *Service) Register(dto *RegisterDTO) (*models.UserModel, string, error) {
	username := strings.TrimSpace(dto.Username)
	if !usernameRe.MatchString(username) {
		return nil, "", errs.Validation("username", "must be 3-30 characters of letters, digits or underscore")
	}
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	var count int64
	if err := s.db.Model(&models.UserModel{}).
		Where("username = ? OR email = ?", username, email).Count(&count).Error; err != nil {
		return nil, "", err
	}
	if count > 0 {
		return nil, "", errs.Duplicate("user", "username or email already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	var total int64
	if err := s.db.Model(&models.UserModel{}).Count(&total).Error; err != nil {
		return nil, "", err
	}
	role := models.RoleUser
	if total == 0 {
		role = models.RoleAdmin
	}

	u := models.UserModel{
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := s.db.Create(&u).Error; err != nil {
		return nil, "", err
	}

	token, err := s.signer.Sign(u.ID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return &u, token, nil
}

// Login authenticates by username or email.
func (s *Service) Login(dto *LoginDTO) (*models.UserModel, string, error) {
	login := strings.TrimSpace(dto.Login)

	var u models.UserModel
	err := s.db.Where("username = ? OR email = ?", login, strings.ToLower(login)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(dto.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.signer.Sign(u.ID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return &u, token, nil
}

// GetByID fetches a user by id.
func (s *Service) GetByID(id string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("user")
		}
		return nil, err
	}
	return &u, nil
}
