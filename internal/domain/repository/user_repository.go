package repository

import (
	"context"

	"github.com/oksasatya/project-tracker/internal/domain/entity"
)

// UserRepository is the credential store.
// Create fails with an apperror Conflict when the email is taken; lookups
// fail with NotFound when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
