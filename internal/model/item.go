package model

import "time"

// Item is a stored GIF owned by exactly one user.
// PhysicalName is the blob key; it is generated once and never changes.
type Item struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"displayName"`
	PhysicalName string    `json:"physicalName"`
	IsPublic     bool      `json:"isPublic"`
	OwnerID      string    `json:"ownerId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ItemView is the read model returned to callers: the raw item plus its
// owner summary and tag titles.
type ItemView struct {
	ID           string      `json:"id"`
	DisplayName  string      `json:"displayName"`
	PhysicalName string      `json:"physicalName"`
	IsPublic     bool        `json:"isPublic"`
	CreatedAt    time.Time   `json:"createdAt"`
	User         UserSummary `json:"user"`
	Tags         []string    `json:"tags"`
}

// NewItemView builds a view from a raw item. A nil tags slice is
// normalized to empty so it serializes as [].
func NewItemView(item Item, owner UserSummary, tags []string) ItemView {
	if tags == nil {
		tags = []string{}
	}
	return ItemView{
		ID:           item.ID,
		DisplayName:  item.DisplayName,
		PhysicalName: item.PhysicalName,
		IsPublic:     item.IsPublic,
		CreatedAt:    item.CreatedAt,
		User:         owner,
		Tags:         tags,
	}
}
