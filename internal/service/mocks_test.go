package service

import (
	"context"
	"sync"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) Login(ctx context.Context, req entity.LoginRequest) (*entity.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuthResponse), args.Error(1)
}

func (m *MockAuthAPI) Register(ctx context.Context, req entity.RegisterRequest) (*entity.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuthResponse), args.Error(1)
}

func (m *MockAuthAPI) Logout(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockAuthAPI) Profile(ctx context.Context) (*entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockAuthAPI) UpdateProfile(ctx context.Context, update entity.ProfileUpdate) (*entity.ProfileResponse, error) {
	args := m.Called(ctx, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProfileResponse), args.Error(1)
}

func (m *MockAuthAPI) Verify(ctx context.Context) (*entity.TokenVerification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TokenVerification), args.Error(1)
}

type MockListingAPI struct {
	mock.Mock
}

func (m *MockListingAPI) List(ctx context.Context, limit, offset int) ([]entity.ListingPreview, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ListingPreview), args.Error(1)
}

func (m *MockListingAPI) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingAPI) Get(ctx context.Context, id string) (*entity.ListingDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ListingDetail), args.Error(1)
}

func (m *MockListingAPI) AddReview(ctx context.Context, id string, review entity.AddReviewRequest) (*entity.StatusResponse, error) {
	args := m.Called(ctx, id, review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.StatusResponse), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event string, payload interface{}) error {
	args := m.Called(ctx, event, payload)
	return args.Error(0)
}

type fakeIdentity struct {
	mu   sync.Mutex
	user *entity.User
}

func (f *fakeIdentity) CurrentUser() *entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}
