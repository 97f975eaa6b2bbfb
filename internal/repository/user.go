package repository

import (
	"context"

	"gifstore/internal/model"
)

// UserRepository stores accounts. Emails are unique.
type UserRepository interface {
	// Create returns ErrConflict when the email is taken.
	Create(ctx context.Context, user *model.User) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	UpdateFullname(ctx context.Context, id, fullname string) error
	UpdatePassword(ctx context.Context, id string, hash []byte) error
}
