package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"devconnect/domain"
	"devconnect/infrastructure"
)

type AuthService struct {
	db     *gorm.DB
	tokens *infrastructure.TokenManager
	hasher *infrastructure.PasswordHasher
}

func NewAuthService(db *gorm.DB, tokens *infrastructure.TokenManager, hasher *infrastructure.PasswordHasher) *AuthService {
	return &AuthService{db: db, tokens: tokens, hasher: hasher}
}

type RegisterInput struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// Session is what a successful register or login hands back.
type Session struct {
	AccessToken string
	User        *domain.User
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	u := domain.User{
		Name:      strings.TrimSpace(in.Name),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     normalizeEmail(in.Email),
	}
	if u.Name == "" {
		u.Name = u.DisplayName()
	}
	if u.Name == "" || u.Email == "" || in.Password == "" || strings.TrimSpace(in.Role) == "" {
		return nil, domain.Invalid("all fields are required")
	}
	if !strings.Contains(u.Email, "@") {
		return nil, domain.Invalid("a valid email is required")
	}
	if len(in.Password) < domain.MinPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	u.Role = role
	u.SplitName()

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, domain.Internal("failed to hash password", err)
	}
	u.PasswordHash = hash

	db := s.db.WithContext(ctx)
	var existing int64
	if err := db.Model(&domain.User{}).Where("email = ?", u.Email).Count(&existing).Error; err != nil {
		return nil, storageError("register", "database error", err)
	}
	if existing > 0 {
		return nil, domain.ErrEmailTaken
	}
	if err := db.Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrEmailTaken
		}
		return nil, storageError("register", "database error", err)
	}

	infrastructure.C("auth").WithField("user_id", u.ID).Info("user registered")
	return s.session(&u)
}

// Login fails with the same error for an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Invalid("email and password are required")
	}

	var u domain.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		s.hasher.Verify("", password)
		return nil, domain.ErrInvalidCredentials
	case err != nil:
		return nil, storageError("login", "database error", err)
	}

	if !s.hasher.Verify(storedHash(&u), password) {
		return nil, domain.ErrInvalidCredentials
	}
	return s.session(&u)
}

// storedHash reads the password hash through the sensitive representation. Nothing
// else in the service layer looks at the hash.
func storedHash(u *domain.User) string {
	hash, _ := u.ToMap(domain.WithSensitive())["password_hash"].(string)
	return hash
}

func (s *AuthService) session(u *domain.User) (*Session, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, domain.Internal("failed to issue token", err)
	}
	return &Session{AccessToken: token, User: u}, nil
}

// Verify returns the user id carried by a raw token.
func (s *AuthService) Verify(token string) (uint, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return 0, domain.ErrInvalidToken
	}
	return id, nil
}

// Authenticate resolves the bearer token on r to a stored user. The user is always
// re-read so deleted accounts stop authenticating immediately.
func (s *AuthService) Authenticate(r *http.Request) (*domain.User, error) {
	id, err := s.tokens.FromRequest(r)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	return loadUser(r.Context(), s.db, id)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if current == "" || next == "" {
		return domain.Invalid("current_password and new_password are required")
	}
	if len(next) < domain.MinPasswordLength {
		return domain.ErrPasswordTooShort
	}

	u, err := loadUser(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(storedHash(u), current) {
		return domain.ErrWrongPassword
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return domain.Internal("failed to hash password", err)
	}
	if err := s.db.WithContext(ctx).Model(u).Update("password_hash", hash).Error; err != nil {
		return storageError("change password", "database error", err)
	}
	infrastructure.C("auth").WithField("user_id", u.ID).Info("password changed")
	return nil
}
