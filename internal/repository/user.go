package repository

import (
	"context"

	"github.com/ErlanBelekov/storefront-insights/internal/domain"
)

// UserRepository is the credential store contract. The gateway only reads it.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}
