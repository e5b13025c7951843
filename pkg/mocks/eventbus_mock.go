package mocks

import (
	"context"

	"github.com/dukex/formreport/pkg/eventbus"
	"github.com/dukex/formreport/pkg/events"
	"github.com/stretchr/testify/mock"
)

// MockEventBus is a mock implementation of eventbus.EventBus interface.
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, key string, event eventbus.Event) error {
	args := m.Called(ctx, key, event)

	return args.Error(0)
}

func (m *MockEventBus) Handle(eventType events.EventType, handler eventbus.EventHandler) error {
	args := m.Called(eventType, handler)

	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()

	return args.Error(0)
}

func (m *MockEventBus) GenerateID() string {
	args := m.Called()

	return args.String(0)
}

// PublishedOfType returns the events of eventType passed to Publish, in call order.
func (m *MockEventBus) PublishedOfType(eventType events.EventType) []eventbus.Event {
	published := make([]eventbus.Event, 0)

	for _, call := range m.Calls {
		if call.Method != "Publish" {
			continue
		}

		event, ok := call.Arguments.Get(2).(eventbus.Event)
		if ok && event.GetType() == eventType {
			published = append(published, event)
		}
	}

	return published
}
