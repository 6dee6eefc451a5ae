package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/storefront-insights/internal/domain"
	"github.com/ErlanBelekov/storefront-insights/internal/metrics"
	"github.com/ErlanBelekov/storefront-insights/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultJWTTTL = 24 * time.Hour

// dummyHash is compared against when the email is unknown so that both
// failure paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("storefront-insights-dummy"), bcrypt.DefaultCost)

type AuthUsecase struct {
	users  repository.UserRepository
	jwtKey []byte
	jwtTTL time.Duration
}

func NewAuthUsecase(users repository.UserRepository, jwtKey []byte) *AuthUsecase {
	return &AuthUsecase{
		users:  users,
		jwtKey: jwtKey,
		jwtTTL: defaultJWTTTL,
	}
}

type LoginResult struct {
	User  *domain.User
	Token string
}

// Login checks the credentials against the stored bcrypt hash and returns a
// signed JWT for the user. Unknown email and wrong password both yield
// domain.ErrUnauthorized.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			metrics.LoginAttemptsTotal.WithLabelValues("unknown_email").Inc()
			return nil, domain.ErrUnauthorized
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("bad_password").Inc()
		return nil, domain.ErrUnauthorized
	}

	token, err := u.issueToken(user)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return &LoginResult{User: user, Token: token}, nil
}

func (u *AuthUsecase) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Email,
		"email":    user.Email,
		"iat":      now.Unix(),
		"exp":      now.Add(u.jwtTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(u.jwtKey)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// HashPassword returns the bcrypt hash stored in the credential store.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}
