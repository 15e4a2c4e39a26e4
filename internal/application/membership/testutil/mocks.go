// Package testutil provides mock implementations for testing the membership
// application layer.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"guildpass/internal/domain/linking"
	"guildpass/internal/domain/mapping"
	"guildpass/internal/domain/member"
	"guildpass/internal/shared/logger"
)

// MockLinkingTokenRepository is an in-memory linking.Repository.
type MockLinkingTokenRepository struct {
	mu      sync.RWMutex
	byToken map[string]*linking.AccountLinkingToken
	nextID  uint

	CreateError error
	GetError    error
	UpdateError error
}

func NewMockLinkingTokenRepository() *MockLinkingTokenRepository {
	return &MockLinkingTokenRepository{byToken: make(map[string]*linking.AccountLinkingToken)}
}

func (m *MockLinkingTokenRepository) Create(ctx context.Context, token *linking.AccountLinkingToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateError != nil {
		return m.CreateError
	}

	if token.ID() == 0 {
		m.nextID++
		if err := token.SetID(m.nextID); err != nil {
			return err
		}
	}
	m.byToken[token.Token()] = token
	return nil
}

func (m *MockLinkingTokenRepository) GetByToken(ctx context.Context, token string) (*linking.AccountLinkingToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetError != nil {
		return nil, m.GetError
	}

	rec, ok := m.byToken[token]
	if !ok {
		return nil, linking.ErrTokenNotFound
	}
	return rec, nil
}

// Update mimics the production version check: the stored version must be
// exactly one behind the incoming value.
func (m *MockLinkingTokenRepository) Update(ctx context.Context, token *linking.AccountLinkingToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateError != nil {
		return m.UpdateError
	}

	stored, ok := m.byToken[token.Token()]
	if !ok {
		return linking.ErrTokenNotFound
	}
	if stored.Version() != token.Version()-1 {
		return linking.ErrConcurrentModification
	}
	m.byToken[token.Token()] = token
	return nil
}

// MockMemberRepository is an in-memory member.Repository.
type MockMemberRepository struct {
	mu      sync.RWMutex
	byID    map[uint]*member.Member
	nextID  uint

	CreateError error
	GetError    error
	ListError   error
	UpdateError error

	UpdateCalls int
}

func NewMockMemberRepository() *MockMemberRepository {
	return &MockMemberRepository{byID: make(map[uint]*member.Member)}
}

func (m *MockMemberRepository) Create(ctx context.Context, mem *member.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateError != nil {
		return m.CreateError
	}

	if mem.ID() == 0 {
		m.nextID++
		if err := mem.SetID(m.nextID); err != nil {
			return err
		}
	}
	m.byID[mem.ID()] = mem
	return nil
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id uint) (*member.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetError != nil {
		return nil, m.GetError
	}

	mem, ok := m.byID[id]
	if !ok {
		return nil, member.ErrMemberNotFound
	}
	return mem, nil
}

func (m *MockMemberRepository) GetByTenantAndEmail(ctx context.Context, tenantID, customerEmail string) (*member.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetError != nil {
		return nil, m.GetError
	}

	for _, mem := range m.byID {
		if mem.TenantID() == tenantID && mem.CustomerEmail() == customerEmail {
			return mem, nil
		}
	}
	return nil, member.ErrMemberNotFound
}

func (m *MockMemberRepository) ListLinked(ctx context.Context) ([]*member.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ListError != nil {
		return nil, m.ListError
	}

	var linked []*member.Member
	for _, mem := range m.byID {
		if mem.IsLinked() {
			linked = append(linked, mem)
		}
	}
	return linked, nil
}

func (m *MockMemberRepository) Update(ctx context.Context, mem *member.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls++
	if m.UpdateError != nil {
		return m.UpdateError
	}

	m.byID[mem.ID()] = mem
	return nil
}

// AddMember seeds a member with an assigned ID.
func (m *MockMemberRepository) AddMember(mem *member.Member) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mem.ID() == 0 {
		m.nextID++
		_ = mem.SetID(m.nextID)
	}
	m.byID[mem.ID()] = mem
}

// MockMappingRepository is an in-memory mapping.Repository.
type MockMappingRepository struct {
	mu       sync.RWMutex
	byTenant map[string][]*mapping.TenantPriceToRoleMapping

	ListError error
}

func NewMockMappingRepository() *MockMappingRepository {
	return &MockMappingRepository{byTenant: make(map[string][]*mapping.TenantPriceToRoleMapping)}
}

func (m *MockMappingRepository) AddMapping(row *mapping.TenantPriceToRoleMapping) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byTenant[row.TenantID()] = append(m.byTenant[row.TenantID()], row)
}

func (m *MockMappingRepository) GetByTenantAndGuild(ctx context.Context, tenantID, guildID string) (*mapping.TenantPriceToRoleMapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, row := range m.byTenant[tenantID] {
		if row.GuildID() == guildID {
			return row, nil
		}
	}
	return nil, mapping.ErrMappingNotFound
}

func (m *MockMappingRepository) ListByTenant(ctx context.Context, tenantID string) ([]*mapping.TenantPriceToRoleMapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.byTenant[tenantID], nil
}

func (m *MockMappingRepository) Save(ctx context.Context, row *mapping.TenantPriceToRoleMapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.byTenant[row.TenantID()]
	for i, existing := range rows {
		if existing.GuildID() == row.GuildID() {
			rows[i] = row
			return nil
		}
	}
	m.byTenant[row.TenantID()] = append(rows, row)
	return nil
}

// MockPaymentLookup is a canned PaymentSubscriptionsLookup.
type MockPaymentLookup struct {
	mu       sync.RWMutex
	byEmail  map[string][]member.Subscription
	failFor  map[string]bool

	LookupError error
	Calls       int
}

func NewMockPaymentLookup() *MockPaymentLookup {
	return &MockPaymentLookup{
		byEmail: make(map[string][]member.Subscription),
		failFor: make(map[string]bool),
	}
}

// FailFor makes lookups for the given email fail.
func (m *MockPaymentLookup) FailFor(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFor[email] = true
}

func (m *MockPaymentLookup) SetSubscriptions(email string, subs []member.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[email] = subs
}

func (m *MockPaymentLookup) GetActiveSubscriptions(ctx context.Context, customerEmail string) ([]member.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	if m.LookupError != nil {
		return nil, m.LookupError
	}
	if m.failFor[customerEmail] {
		return nil, fmt.Errorf("lookup failed for %s", customerEmail)
	}
	return m.byEmail[customerEmail], nil
}

// GuildCall records one guild-membership-provider invocation.
type GuildCall struct {
	GuildID string
	UserID  string
	RoleIDs []string
}

// MockGuildProvider records every call and supports per-guild error
// injection.
type MockGuildProvider struct {
	mu sync.Mutex

	AddCalls    []GuildCall
	GrantCalls  []GuildCall
	RevokeCalls []GuildCall

	AddErrors    map[string]error
	GrantErrors  map[string]error
	RevokeErrors map[string]error

	// AlreadyMember marks guilds where AddUserToGuild returns wasAdded=false.
	AlreadyMember map[string]bool
}

func NewMockGuildProvider() *MockGuildProvider {
	return &MockGuildProvider{
		AddErrors:     make(map[string]error),
		GrantErrors:   make(map[string]error),
		RevokeErrors:  make(map[string]error),
		AlreadyMember: make(map[string]bool),
	}
}

func (m *MockGuildProvider) AddUserToGuild(ctx context.Context, guildID, userID, userAccessToken string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AddCalls = append(m.AddCalls, GuildCall{GuildID: guildID, UserID: userID})
	if err := m.AddErrors[guildID]; err != nil {
		return false, err
	}
	return !m.AlreadyMember[guildID], nil
}

func (m *MockGuildProvider) GrantRoles(ctx context.Context, guildID, userID string, roleIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GrantCalls = append(m.GrantCalls, GuildCall{GuildID: guildID, UserID: userID, RoleIDs: roleIDs})
	return m.GrantErrors[guildID]
}

func (m *MockGuildProvider) RevokeRoles(ctx context.Context, guildID, userID string, roleIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RevokeCalls = append(m.RevokeCalls, GuildCall{GuildID: guildID, UserID: userID, RoleIDs: roleIDs})
	return m.RevokeErrors[guildID]
}

// TotalCalls returns the number of guild-provider invocations of any kind.
func (m *MockGuildProvider) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.AddCalls) + len(m.GrantCalls) + len(m.RevokeCalls)
}

// MockLinkingNotifier records linking emails.
type MockLinkingNotifier struct {
	mu        sync.Mutex
	SentTo    []string
	SentURLs  []string
	SendError error
}

func NewMockLinkingNotifier() *MockLinkingNotifier {
	return &MockLinkingNotifier{}
}

func (m *MockLinkingNotifier) SendLinkingEmail(ctx context.Context, customerEmail, linkURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendError != nil {
		return m.SendError
	}
	m.SentTo = append(m.SentTo, customerEmail)
	m.SentURLs = append(m.SentURLs, linkURL)
	return nil
}

// MockLogger is a no-op logger.Interface.
type MockLogger struct{}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (l *MockLogger) Debugw(msg string, keysAndValues ...any) {}
func (l *MockLogger) Infow(msg string, keysAndValues ...any)  {}
func (l *MockLogger) Warnw(msg string, keysAndValues ...any)  {}
func (l *MockLogger) Errorw(msg string, keysAndValues ...any) {}
func (l *MockLogger) Fatalw(msg string, keysAndValues ...any) {}

func (l *MockLogger) With(args ...any) logger.Interface {
	return l
}

func (l *MockLogger) Named(name string) logger.Interface {
	return l
}
