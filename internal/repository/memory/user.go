package memory

import (
	"context"
	"strings"

	"gifstore/internal/model"
	"gifstore/internal/repository"
)

// UserStore implements repository.UserRepository.
type UserStore struct {
	db *DB
}

var _ repository.UserRepository = (*UserStore)(nil)

func (s *UserStore) Create(_ context.Context, user *model.User) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[user.ID]; ok {
		return nil, repository.ErrConflict
	}
	for _, u := range s.db.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, repository.ErrConflict
		}
	}
	stored := *user
	s.db.users[stored.ID] = stored
	return &stored, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, u := range s.db.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *UserStore) FindByID(_ context.Context, id string) (*model.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) UpdateFullname(_ context.Context, id, fullname string) error {
	return s.update(id, func(u *model.User) { u.Fullname = fullname })
}

func (s *UserStore) UpdatePassword(_ context.Context, id string, hash []byte) error {
	return s.update(id, func(u *model.User) { u.PasswordHash = hash })
}

func (s *UserStore) update(id string, fn func(*model.User)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	s.db.users[u.ID] = u
	return nil
}
