package models

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// UserModel represents a registered account. The first registered account
// becomes the admin.
type UserModel struct {
	Base
	Username string `json:"username" gorm:"uniqueIndex;not null;size:30"`
	Email    string `json:"email"    gorm:"uniqueIndex;not null;size:254"`
	Password string `json:"-"        gorm:"not null"`
	Role     string `json:"role"     gorm:"not null;default:user;size:16"`
}

func (UserModel) TableName() string { return "users" }

// IsAdmin reports whether the user holds the admin role.
func (u UserModel) IsAdmin() bool { return u.Role == RoleAdmin }
