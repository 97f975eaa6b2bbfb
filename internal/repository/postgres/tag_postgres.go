package postgres

import (
	"context"
	"database/sql"

	"gifstore/internal/model"
	"gifstore/internal/repository"
)

// TagPostgres is a PostgreSQL implementation of repository.TagRepository.
// Title and pair uniqueness are enforced by the schema, not here.
type TagPostgres struct {
	db *sql.DB
}

// NewTagPostgres creates a new TagPostgres repository.
func NewTagPostgres(db *sql.DB) *TagPostgres {
	return &TagPostgres{db: db}
}

var _ repository.TagRepository = (*TagPostgres)(nil)

func scanTag(row *sql.Row) (*model.Tag, error) {
	var t model.Tag
	if err := row.Scan(&t.ID, &t.Title); err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// FindByTitle matches title exactly.
func (r *TagPostgres) FindByTitle(ctx context.Context, title string) (*model.Tag, error) {
	const q = `SELECT id, title FROM tags WHERE title = $1`
	return scanTag(r.db.QueryRowContext(ctx, q, title))
}

func (r *TagPostgres) FindByID(ctx context.Context, id string) (*model.Tag, error) {
	const q = `SELECT id, title FROM tags WHERE id = $1`
	return scanTag(r.db.QueryRowContext(ctx, q, id))
}

// Create inserts a tag; a duplicate title surfaces as repository.ErrConflict.
func (r *TagPostgres) Create(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	const q = `INSERT INTO tags (id, title) VALUES ($1, $2) RETURNING id, title`
	return scanTag(r.db.QueryRowContext(ctx, q, tag.ID, tag.Title))
}

// Associate links an item and a tag.
func (r *TagPostgres) Associate(ctx context.Context, itemID, tagID string) error {
	const q = `INSERT INTO item_tags (item_id, tag_id) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, q, itemID, tagID)
	return translate(err)
}

// Dissociate removes the link. The tag row is kept.
func (r *TagPostgres) Dissociate(ctx context.Context, itemID, tagID string) error {
	const q = `DELETE FROM item_tags WHERE item_id = $1 AND tag_id = $2`
	return expectOne(r.db.ExecContext(ctx, q, itemID, tagID))
}
