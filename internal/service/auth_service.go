package service

import (
	"context"
	"regexp"

	"kotoba-tutor/internal/auth"
	"kotoba-tutor/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const bcryptCost = 12

type AuthService struct {
	userRepo domain.UserRepository
	secret   []byte
}

func NewAuthService(userRepo domain.UserRepository, secret []byte) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		secret:   secret,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password, name, nativeLanguage string) (*domain.User, error) {
	if !emailRegex.MatchString(email) || len(email) > 255 {
		return nil, domain.ErrInvalidInput
	}
	if len(password) < 8 || len(password) > 100 {
		return nil, domain.ErrInvalidInput
	}
	if name == "" || len(name) > 100 {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:          email,
		PasswordHash:   string(hashedPassword),
		Name:           name,
		NativeLanguage: nativeLanguage,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and issues a signed session token. A missing
// user and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(
		[]byte(user.PasswordHash), []byte(password),
	); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := auth.IssueToken(user.ID, s.secret, auth.TokenTTL)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
