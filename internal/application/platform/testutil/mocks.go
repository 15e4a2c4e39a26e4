// Package testutil provides mock implementations for testing the platform
// application layer.
package testutil

import (
	"context"
	"sync"

	"guildpass/internal/domain/platform"
	"guildpass/internal/domain/shared/events"
)

// MockPlatformRepository is an in-memory platform.Repository.
type MockPlatformRepository struct {
	mu       sync.RWMutex
	byCoupon map[string]*platform.PendingPlatformSubscription
	nextID   uint

	CreateError error
	GetError    error
	UpdateError error
	UpdateCalls int
}

func NewMockPlatformRepository() *MockPlatformRepository {
	return &MockPlatformRepository{byCoupon: make(map[string]*platform.PendingPlatformSubscription)}
}

func (m *MockPlatformRepository) Create(ctx context.Context, p *platform.PendingPlatformSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateError != nil {
		return m.CreateError
	}
	if p.ID() == 0 {
		m.nextID++
		if err := p.SetID(m.nextID); err != nil {
			return err
		}
	}
	m.byCoupon[p.CouponCode()] = p
	return nil
}

func (m *MockPlatformRepository) GetByCouponCode(ctx context.Context, couponCode string) (*platform.PendingPlatformSubscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetError != nil {
		return nil, m.GetError
	}
	p, ok := m.byCoupon[couponCode]
	if !ok {
		return nil, platform.ErrCouponNotFound
	}
	return p, nil
}

func (m *MockPlatformRepository) GetByCustomerEmail(ctx context.Context, customerEmail string) ([]*platform.PendingPlatformSubscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetError != nil {
		return nil, m.GetError
	}
	var out []*platform.PendingPlatformSubscription
	for _, p := range m.byCoupon {
		if p.CustomerEmail() == customerEmail {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockPlatformRepository) Update(ctx context.Context, p *platform.PendingPlatformSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.UpdateCalls++
	m.byCoupon[p.CouponCode()] = p
	return nil
}

// MockEventPublisher records published events.
type MockEventPublisher struct {
	mu        sync.Mutex
	Published []events.DomainEvent

	PublishError error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(event events.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PublishError != nil {
		return m.PublishError
	}
	m.Published = append(m.Published, event)
	return nil
}

func (m *MockEventPublisher) PublishAll(evts []events.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PublishError != nil {
		return m.PublishError
	}
	m.Published = append(m.Published, evts...)
	return nil
}
