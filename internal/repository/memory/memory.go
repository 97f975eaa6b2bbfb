// Package memory is an in-process implementation of the repository
// interfaces. It enforces the same uniqueness rules as the SQL schema and is
// used for DB_DRIVER=memory and in tests.
package memory

import (
	"sort"
	"strings"
	"sync"

	"gifstore/internal/model"
	"gifstore/internal/repository"
)

type pair struct {
	itemID string
	tagID  string
}

// DB holds every table behind one lock so views see a consistent snapshot.
type DB struct {
	mu       sync.RWMutex
	users    map[string]model.User
	items    map[string]model.Item
	tags     map[string]model.Tag
	itemTags map[pair]struct{}
}

// New returns an empty database.
func New() *DB {
	return &DB{
		users:    make(map[string]model.User),
		items:    make(map[string]model.Item),
		tags:     make(map[string]model.Tag),
		itemTags: make(map[pair]struct{}),
	}
}

// Items returns the item repository view of db.
func (db *DB) Items() *ItemStore { return &ItemStore{db: db} }

// Tags returns the tag repository view of db.
func (db *DB) Tags() *TagStore { return &TagStore{db: db} }

// Users returns the user repository view of db.
func (db *DB) Users() *UserStore { return &UserStore{db: db} }

// view must be called with at least a read lock held.
func (db *DB) view(it model.Item) model.ItemView {
	var owner model.UserSummary
	if u, ok := db.users[it.OwnerID]; ok {
		owner = u.Summary()
	}
	titles := make([]string, 0)
	for p := range db.itemTags {
		if p.itemID == it.ID {
			titles = append(titles, db.tags[p.tagID].Title)
		}
	}
	sort.Strings(titles)
	return model.NewItemView(it, owner, titles)
}

// page applies newest-first ordering and limit/offset to matching items.
// It must be called with at least a read lock held.
func (db *DB) page(match func(model.Item) bool, pq repository.PageQuery) *repository.PageResult[model.ItemView] {
	matched := make([]model.Item, 0)
	for _, it := range db.items {
		if match(it) {
			matched = append(matched, it)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	res := &repository.PageResult[model.ItemView]{Items: make([]model.ItemView, 0), Total: len(matched)}
	if pq.Limit <= 0 || pq.Offset >= len(matched) {
		return res
	}
	offset := max(pq.Offset, 0)
	end := min(offset+pq.Limit, len(matched))
	for _, it := range matched[offset:end] {
		res.Items = append(res.Items, db.view(it))
	}
	return res
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
