package repository

import (
	"context"

	"gifstore/internal/model"
)

// TagRepository is the tag catalog plus the item-tag association table.
type TagRepository interface {
	// FindByTitle matches the title exactly (case-sensitive).
	FindByTitle(ctx context.Context, title string) (*model.Tag, error)
	FindByID(ctx context.Context, id string) (*model.Tag, error)

	// Create returns ErrConflict when the title already exists.
	Create(ctx context.Context, tag *model.Tag) (*model.Tag, error)

	// Associate returns ErrConflict when the pair already exists and
	// ErrNotFound when either side is missing.
	Associate(ctx context.Context, itemID, tagID string) error

	// Dissociate returns ErrNotFound when the pair is not associated.
	Dissociate(ctx context.Context, itemID, tagID string) error
}
