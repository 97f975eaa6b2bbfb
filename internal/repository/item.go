package repository

import (
	"context"

	"gifstore/internal/model"
)

// ItemRepository defines data access for items using SQL queries only.
// No business logic here; access checks belong to the service layer.
type ItemRepository interface {
	// Create inserts a new item. The stored row is always private regardless of item.IsPublic.
	Create(ctx context.Context, item *model.Item) (*model.Item, error)

	FindByID(ctx context.Context, id string) (*model.Item, error)

	// FindByPhysicalName matches the physical name case-insensitively.
	FindByPhysicalName(ctx context.Context, name string) (*model.Item, error)

	// FindViewByID returns the item with its owner summary and tag titles.
	FindViewByID(ctx context.Context, id string) (*model.ItemView, error)

	// ListByOwner pages through an owner's items, newest first.
	ListByOwner(ctx context.Context, ownerID string, pq PageQuery) (*PageResult[model.ItemView], error)

	// Search pages through an owner's items whose display name or any tag
	// title contains keyword, ignoring case. Same ordering as ListByOwner.
	Search(ctx context.Context, ownerID, keyword string, pq PageQuery) (*PageResult[model.ItemView], error)

	UpdateDisplayName(ctx context.Context, id, displayName string) error
	SetVisibility(ctx context.Context, id string, public bool) error

	// Delete removes the item and its tag associations. Tags themselves stay.
	Delete(ctx context.Context, id string) error
}
