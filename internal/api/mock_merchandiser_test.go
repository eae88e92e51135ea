package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storefront-merchandising-service/internal/countdown"
	"storefront-merchandising-service/internal/domain"
	"storefront-merchandising-service/internal/service"
)

// MockMerchandiser is a mock implementation of Merchandiser
type MockMerchandiser struct {
	mock.Mock
}

func (m *MockMerchandiser) Homepage(ctx context.Context, viewerID string) (*service.Homepage, error) {
	args := m.Called(ctx, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Homepage), args.Error(1)
}

func (m *MockMerchandiser) Section(ctx context.Context, name, viewerID string) (*service.SectionResult, error) {
	args := m.Called(ctx, name, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SectionResult), args.Error(1)
}

func (m *MockMerchandiser) RecentlyViewed(ctx context.Context, viewerID string) ([]domain.Product, error) {
	args := m.Called(ctx, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockMerchandiser) RecordView(ctx context.Context, viewerID string, productID int64) ([]domain.Product, error) {
	args := m.Called(ctx, viewerID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockMerchandiser) ActiveCountdown(ctx context.Context) (countdown.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(countdown.Snapshot), args.Error(1)
}

func (m *MockMerchandiser) WatchCountdown(ctx context.Context, emit func(countdown.Snapshot)) error {
	args := m.Called(ctx, emit)
	return args.Error(0)
}

var _ Merchandiser = (*MockMerchandiser)(nil)
var _ Merchandiser = (*service.Service)(nil)
