package memory

import (
	"context"

	"gifstore/internal/model"
	"gifstore/internal/repository"
)

// TagStore implements repository.TagRepository.
type TagStore struct {
	db *DB
}

var _ repository.TagRepository = (*TagStore)(nil)

func (s *TagStore) FindByTitle(_ context.Context, title string) (*model.Tag, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, t := range s.db.tags {
		if t.Title == title {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *TagStore) FindByID(_ context.Context, id string) (*model.Tag, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	t, ok := s.db.tags[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s *TagStore) Create(_ context.Context, tag *model.Tag) (*model.Tag, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.tags[tag.ID]; ok {
		return nil, repository.ErrConflict
	}
	for _, t := range s.db.tags {
		if t.Title == tag.Title {
			return nil, repository.ErrConflict
		}
	}
	stored := *tag
	s.db.tags[stored.ID] = stored
	return &stored, nil
}

func (s *TagStore) Associate(_ context.Context, itemID, tagID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	it, ok := s.db.items[itemID]
	if !ok {
		return repository.ErrNotFound
	}
	tg, ok := s.db.tags[tagID]
	if !ok {
		return repository.ErrNotFound
	}
	// Keys come from the stored records, never from caller-owned strings.
	p := pair{itemID: it.ID, tagID: tg.ID}
	if _, ok := s.db.itemTags[p]; ok {
		return repository.ErrConflict
	}
	s.db.itemTags[p] = struct{}{}
	return nil
}

func (s *TagStore) Dissociate(_ context.Context, itemID, tagID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p := pair{itemID: itemID, tagID: tagID}
	if _, ok := s.db.itemTags[p]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.itemTags, p)
	return nil
}
