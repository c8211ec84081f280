package test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"minera/internal/models"
	"minera/internal/service"
)

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) ValidateToken(ctx context.Context, token string) (*models.Profile, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockTokenService) GetOrCreateToken(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) RegenerateToken(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type MockAdService struct {
	mock.Mock
}

func (m *MockAdService) UpsertAd(ctx context.Context, token string, payload service.AdPayload) (*service.UpsertAdOutcome, error) {
	args := m.Called(ctx, token, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UpsertAdOutcome), args.Error(1)
}

func (m *MockAdService) ListAds(ctx context.Context, userID string, filters models.AdFilters) ([]models.Ad, int, error) {
	args := m.Called(ctx, userID, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Ad), args.Int(1), args.Error(2)
}

func (m *MockAdService) Stats(ctx context.Context, userID string) (*models.AdStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdStats), args.Error(1)
}

func (m *MockAdService) ToggleFavorite(ctx context.Context, userID, libraryID string) (bool, error) {
	args := m.Called(ctx, userID, libraryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdService) DeleteAd(ctx context.Context, userID string, adID int64) error {
	args := m.Called(ctx, userID, adID)
	return args.Error(0)
}

func (m *MockAdService) PageSize() int {
	args := m.Called()
	return args.Int(0)
}

type MockDownloadService struct {
	mock.Mock
}

func (m *MockDownloadService) Download(ctx context.Context, mediaURL, filename string) (*service.MediaPayload, error) {
	args := m.Called(ctx, mediaURL, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MediaPayload), args.Error(1)
}
