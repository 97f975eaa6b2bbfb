package mocks

import (
	"context"

	"gifstore/internal/access"
	"gifstore/internal/model"
	"gifstore/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, in service.RegisterInput) (*model.UserSummary, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserSummary), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*service.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockUserService) UpdateFullname(ctx context.Context, requester *access.Identity, fullname string) (*service.Session, error) {
	args := m.Called(ctx, requester, fullname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockUserService) UpdatePassword(ctx context.Context, requester *access.Identity, password string) error {
	args := m.Called(ctx, requester, password)
	return args.Error(0)
}
