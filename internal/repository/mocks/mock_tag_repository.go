package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gifstore/internal/model"
)

type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) FindByTitle(ctx context.Context, title string) (*model.Tag, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tag), args.Error(1)
}

func (m *MockTagRepository) FindByID(ctx context.Context, id string) (*model.Tag, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tag), args.Error(1)
}

func (m *MockTagRepository) Create(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	args := m.Called(ctx, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tag), args.Error(1)
}

func (m *MockTagRepository) Associate(ctx context.Context, itemID, tagID string) error {
	args := m.Called(ctx, itemID, tagID)
	return args.Error(0)
}

func (m *MockTagRepository) Dissociate(ctx context.Context, itemID, tagID string) error {
	args := m.Called(ctx, itemID, tagID)
	return args.Error(0)
}
