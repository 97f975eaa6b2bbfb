package postgres

import (
	"context"
	"database/sql"

	"gifstore/internal/model"
	"gifstore/internal/repository"
)

// ItemPostgres is a PostgreSQL implementation of repository.ItemRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ItemPostgres struct {
	db *sql.DB
}

// NewItemPostgres creates a new ItemPostgres repository.
func NewItemPostgres(db *sql.DB) *ItemPostgres {
	return &ItemPostgres{db: db}
}

var _ repository.ItemRepository = (*ItemPostgres)(nil)

const itemColumns = `id, display_name, physical_name, is_public, owner_id, created_at`

// viewSelect joins the owner and aggregates tag titles into a JSON array.
const viewSelect = `
		SELECT i.id, i.display_name, i.physical_name, i.is_public, i.created_at,
		       u.id, u.fullname, u.email,
		       COALESCE((
		           SELECT json_agg(t.title ORDER BY t.title)
		           FROM item_tags it
		           JOIN tags t ON t.id = it.tag_id
		           WHERE it.item_id = i.id
		       ), '[]')::text
		FROM items i
		JOIN users u ON u.id = i.owner_id
`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	var it model.Item
	if err := s.Scan(
		&it.ID,
		&it.DisplayName,
		&it.PhysicalName,
		&it.IsPublic,
		&it.OwnerID,
		&it.CreatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &it, nil
}

func scanView(s scanner) (*model.ItemView, error) {
	var (
		v    model.ItemView
		tags string
	)
	if err := s.Scan(
		&v.ID,
		&v.DisplayName,
		&v.PhysicalName,
		&v.IsPublic,
		&v.CreatedAt,
		&v.User.ID,
		&v.User.Fullname,
		&v.User.Email,
		&tags,
	); err != nil {
		return nil, translate(err)
	}
	titles, err := decodeTitles(tags)
	if err != nil {
		return nil, err
	}
	v.Tags = titles
	return &v, nil
}

// Create inserts a new item row and returns the stored record.
func (r *ItemPostgres) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
	const q = `
		INSERT INTO items (id, display_name, physical_name, is_public, owner_id, created_at)
		VALUES ($1, $2, $3, FALSE, $4, $5)
		RETURNING ` + itemColumns
	row := r.db.QueryRowContext(ctx, q,
		item.ID,
		item.DisplayName,
		item.PhysicalName,
		item.OwnerID,
		item.CreatedAt,
	)
	return scanItem(row)
}

// FindByID fetches a single item by its ID.
func (r *ItemPostgres) FindByID(ctx context.Context, id string) (*model.Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	return scanItem(r.db.QueryRowContext(ctx, q, id))
}

// FindByPhysicalName fetches an item by its blob key, ignoring case.
func (r *ItemPostgres) FindByPhysicalName(ctx context.Context, name string) (*model.Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM items WHERE lower(physical_name) = lower($1)`
	return scanItem(r.db.QueryRowContext(ctx, q, name))
}

// FindViewByID fetches the read model for one item.
func (r *ItemPostgres) FindViewByID(ctx context.Context, id string) (*model.ItemView, error) {
	const q = viewSelect + `WHERE i.id = $1`
	return scanView(r.db.QueryRowContext(ctx, q, id))
}

// ListByOwner returns an owner's items using LIMIT/OFFSET pagination and a total count.
func (r *ItemPostgres) ListByOwner(ctx context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.ItemView], error) {
	const qCount = `SELECT COUNT(*) FROM items WHERE owner_id = $1`
	const qList = viewSelect + `
		WHERE i.owner_id = $1
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT $2 OFFSET $3
	`
	return r.page(ctx, pq, qCount, qList, ownerID)
}

// Search matches keyword against display names and tag titles within one owner's items.
func (r *ItemPostgres) Search(ctx context.Context, ownerID, keyword string, pq repository.PageQuery) (*repository.PageResult[model.ItemView], error) {
	const filter = `
		WHERE i.owner_id = $1
		AND (
		    i.display_name ILIKE $2 ESCAPE '\'
		    OR EXISTS (
		        SELECT 1 FROM item_tags st
		        JOIN tags tt ON tt.id = st.tag_id
		        WHERE st.item_id = i.id AND tt.title ILIKE $2 ESCAPE '\'
		    )
		)
	`
	const qCount = `SELECT COUNT(*) FROM items i` + filter
	const qList = viewSelect + filter + `
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT $3 OFFSET $4
	`
	return r.page(ctx, pq, qCount, qList, ownerID, containsPattern(keyword))
}

// page runs a count query and, when a limit is given, the matching list query,
// both inside one read-only snapshot so the total agrees with the rows.
// The list query takes the filter args followed by limit and offset.
func (r *ItemPostgres) page(ctx context.Context, pq repository.PageQuery, qCount, qList string, args ...any) (*repository.PageResult[model.ItemView], error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var total int
	if err := tx.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	items := make([]model.ItemView, 0)
	if pq.Limit <= 0 || pq.Offset >= total {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return &repository.PageResult[model.ItemView]{Items: items, Total: total}, nil
	}

	rows, err := tx.QueryContext(ctx, qList, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.ItemView]{
		Items: items,
		Total: total,
	}, nil
}

// UpdateDisplayName renames an item.
func (r *ItemPostgres) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	const q = `UPDATE items SET display_name = $2 WHERE id = $1`
	return expectOne(r.db.ExecContext(ctx, q, id, displayName))
}

// SetVisibility flips the public flag.
func (r *ItemPostgres) SetVisibility(ctx context.Context, id string, public bool) error {
	const q = `UPDATE items SET is_public = $2 WHERE id = $1`
	return expectOne(r.db.ExecContext(ctx, q, id, public))
}

// Delete removes an item. item_tags rows go with it through ON DELETE CASCADE.
func (r *ItemPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM items WHERE id = $1`
	return expectOne(r.db.ExecContext(ctx, q, id))
}
