package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/customeros/recipestack/internal/enum"
)

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishFanoutEvent(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) error {
	args := m.Called(ctx, entityId, entityType, message)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// NewAcceptingPublisher returns a publisher mock that accepts every event.
func NewAcceptingPublisher() *MockEventPublisher {
	publisher := &MockEventPublisher{}
	publisher.On("PublishFanoutEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	publisher.On("Close").Return(nil)
	return publisher
}
