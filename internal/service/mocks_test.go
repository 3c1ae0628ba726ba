package service

import (
	"context"
	"sort"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sinuca-magalhaes/caixa/internal/auth"
	"github.com/sinuca-magalhaes/caixa/internal/domain"
	"github.com/sinuca-magalhaes/caixa/internal/repository"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	users     map[string]*domain.User
	nextID    int64
	createErr error
	getErr    error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[string]*domain.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.users[user.Username]; exists {
		return domain.ErrUserAlreadyExists
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.Username] = user
	return nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, exists := m.users[username]; exists {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	items := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		items = append(items, u)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return &repository.ListResult[domain.User]{Items: items, Total: int64(len(items)), Limit: opts.Limit}, nil
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	txs       map[int64]*domain.Transaction
	nextID    int64
	lastLimit int
	listErr   error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		txs:    make(map[int64]*domain.Transaction),
		nextID: 1,
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	tx.ID = m.nextID
	m.nextID++
	m.txs[tx.ID] = tx
	return nil
}

func (m *MockTransactionRepository) List(ctx context.Context, ownerID int64, filter repository.TransactionFilter) ([]*domain.Transaction, error) {
	m.lastLimit = filter.Limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*domain.Transaction
	for _, tx := range m.txs {
		if tx.OwnerID == ownerID && inPeriod(filter.Period, tx.CreatedAt) {
			result = append(result, tx)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// inPeriod applies the same bounds the SQL repositories use.
func inPeriod(p domain.Period, t time.Time) bool {
	if start, ok := p.Start(); ok && t.Before(start) {
		return false
	}
	if end, ok := p.End(); ok && !t.Before(end) {
		return false
	}
	return true
}

func (m *MockTransactionRepository) Delete(ctx context.Context, ownerID, id int64) error {
	tx, exists := m.txs[id]
	if !exists || tx.OwnerID != ownerID {
		return domain.ErrTransactionNotFound
	}
	delete(m.txs, id)
	return nil
}

// MockTokenProvider is a testify mock of TokenProvider.
type MockTokenProvider struct {
	mock.Mock
}

func (m *MockTokenProvider) Issue(subject string) (*auth.Token, error) {
	args := m.Called(subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Token), args.Error(1)
}

func (m *MockTokenProvider) Validate(token string) (*auth.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

// MockArchive is a testify mock of storage.Archive.
type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Put(ctx context.Context, key string, body []byte) error {
	return m.Called(ctx, key, body).Error(0)
}

func (m *MockArchive) Enabled() bool {
	return m.Called().Bool(0)
}
