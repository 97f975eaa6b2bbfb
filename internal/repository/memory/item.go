package memory

import (
	"context"
	"strings"

	"gifstore/internal/model"
	"gifstore/internal/repository"
)

// ItemStore implements repository.ItemRepository.
type ItemStore struct {
	db *DB
}

var _ repository.ItemRepository = (*ItemStore)(nil)

func (s *ItemStore) Create(_ context.Context, item *model.Item) (*model.Item, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.items[item.ID]; ok {
		return nil, repository.ErrConflict
	}
	if _, ok := s.db.users[item.OwnerID]; !ok {
		return nil, repository.ErrNotFound
	}
	for _, it := range s.db.items {
		if strings.EqualFold(it.PhysicalName, item.PhysicalName) {
			return nil, repository.ErrConflict
		}
	}
	stored := *item
	stored.IsPublic = false
	s.db.items[stored.ID] = stored
	return &stored, nil
}

func (s *ItemStore) FindByID(_ context.Context, id string) (*model.Item, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	it, ok := s.db.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &it, nil
}

func (s *ItemStore) FindByPhysicalName(_ context.Context, name string) (*model.Item, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, it := range s.db.items {
		if strings.EqualFold(it.PhysicalName, name) {
			return &it, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *ItemStore) FindViewByID(_ context.Context, id string) (*model.ItemView, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	it, ok := s.db.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	v := s.db.view(it)
	return &v, nil
}

func (s *ItemStore) ListByOwner(_ context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.ItemView], error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return s.db.page(func(it model.Item) bool { return it.OwnerID == ownerID }, pq), nil
}

func (s *ItemStore) Search(_ context.Context, ownerID, keyword string, pq repository.PageQuery) (*repository.PageResult[model.ItemView], error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return s.db.page(func(it model.Item) bool {
		if it.OwnerID != ownerID {
			return false
		}
		if containsFold(it.DisplayName, keyword) {
			return true
		}
		for p := range s.db.itemTags {
			if p.itemID == it.ID && containsFold(s.db.tags[p.tagID].Title, keyword) {
				return true
			}
		}
		return false
	}, pq), nil
}

func (s *ItemStore) UpdateDisplayName(_ context.Context, id, displayName string) error {
	return s.update(id, func(it *model.Item) { it.DisplayName = displayName })
}

func (s *ItemStore) SetVisibility(_ context.Context, id string, public bool) error {
	return s.update(id, func(it *model.Item) { it.IsPublic = public })
}

func (s *ItemStore) update(id string, fn func(*model.Item)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	it, ok := s.db.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&it)
	s.db.items[it.ID] = it
	return nil
}

func (s *ItemStore) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.items, id)
	for p := range s.db.itemTags {
		if p.itemID == id {
			delete(s.db.itemTags, p)
		}
	}
	return nil
}
