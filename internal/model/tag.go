package model

// Tag is a shared, globally unique (case-sensitive) title.
type Tag struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ItemTag links an item to a tag. The pair is unique.
type ItemTag struct {
	ItemID string `json:"itemId"`
	TagID  string `json:"tagId"`
}
