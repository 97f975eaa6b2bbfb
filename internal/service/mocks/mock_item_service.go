package mocks

import (
	"context"
	"io"

	"gifstore/internal/access"
	"gifstore/internal/model"
	"gifstore/internal/service"
	"gifstore/internal/storage"
	"github.com/stretchr/testify/mock"
)

type MockItemService struct {
	mock.Mock
}

func (m *MockItemService) Get(ctx context.Context, requester *access.Identity, id string) (*model.ItemView, error) {
	args := m.Called(ctx, requester, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ItemView), args.Error(1)
}

func (m *MockItemService) List(ctx context.Context, requester *access.Identity, page int) (*service.ItemPage, error) {
	args := m.Called(ctx, requester, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ItemPage), args.Error(1)
}

func (m *MockItemService) Search(ctx context.Context, requester *access.Identity, keyword string, page int) (*service.ItemPage, error) {
	args := m.Called(ctx, requester, keyword, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ItemPage), args.Error(1)
}

func (m *MockItemService) Rename(ctx context.Context, requester *access.Identity, id, displayName string) (*model.ItemView, error) {
	args := m.Called(ctx, requester, id, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ItemView), args.Error(1)
}

func (m *MockItemService) SetVisibility(ctx context.Context, requester *access.Identity, id string, public bool) (*model.ItemView, error) {
	args := m.Called(ctx, requester, id, public)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ItemView), args.Error(1)
}

func (m *MockItemService) Delete(ctx context.Context, requester *access.Identity, id string) error {
	args := m.Called(ctx, requester, id)
	return args.Error(0)
}

func (m *MockItemService) Tag(ctx context.Context, requester *access.Identity, id, title string) (string, error) {
	args := m.Called(ctx, requester, id, title)
	return args.String(0), args.Error(1)
}

func (m *MockItemService) Untag(ctx context.Context, requester *access.Identity, id, title string) (string, error) {
	args := m.Called(ctx, requester, id, title)
	return args.String(0), args.Error(1)
}

func (m *MockItemService) Upload(ctx context.Context, requester *access.Identity, in service.UploadInput) (*model.ItemView, error) {
	args := m.Called(ctx, requester, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ItemView), args.Error(1)
}

func (m *MockItemService) OpenFile(ctx context.Context, requester *access.Identity, filename string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, requester, filename)
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.ObjectInfo), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}
