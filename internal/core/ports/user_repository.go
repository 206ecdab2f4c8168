package ports

import (
	"context"

	"github.com/dailymood/mood-tracker/internal/core/domain"
)

// UserRepository defines persistence for registered accounts.
type UserRepository interface {
	// FindByEmail looks up a user by normalized email. Returns domain.ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create stores a new user and returns it with ID set.
	// Returns domain.ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
