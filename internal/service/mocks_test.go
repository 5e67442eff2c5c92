package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/repository"
)

var errStoreDown = errors.New("connection refused")

func adminSession(id string) *auth.Session {
	return &auth.Session{AccountID: id, Username: "admin-" + id, Role: domain.RoleAdmin}
}

func userSession(id string) *auth.Session {
	return &auth.Session{AccountID: id, Username: "user-" + id, Role: domain.RoleUser}
}

// syncDispatch makes background notifications run inline.
func syncDispatch(d *dispatcher) {
	d.run = func(fn func()) { fn() }
}

// =============================================================================
// MockAccountRepository
// =============================================================================

type MockAccountRepository struct {
	mu        sync.Mutex
	accounts  map[string]*domain.Account
	createErr error
	getErr    error
	deleteErr error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[string]*domain.Account)}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, a := range m.accounts {
		if a.Username == account.Username {
			return domain.ErrDuplicateUsername
		}
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, a := range m.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockAccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		result = append(result, a)
	}
	return result, nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.accounts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m *MockAccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// =============================================================================
// MockProjectRepository
// =============================================================================

type MockProjectRepository struct {
	mu              sync.Mutex
	projects        map[string]*domain.Project
	listErr         error
	updateErr       error
	searchCalls     int
	searchLimit     int
	categoriesCalls int
}

func NewMockProjectRepository() *MockProjectRepository {
	return &MockProjectRepository{projects: make(map[string]*domain.Project)}
}

// Add stores a copy of p.
func (m *MockProjectRepository) Add(p *domain.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.projects[p.ID] = &cp
}

func (m *MockProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	m.Add(p)
	return nil
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.projects[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockProjectRepository) matching(filter domain.ProjectFilter) []*domain.Project {
	var result []*domain.Project
	for _, p := range m.projects {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.FeaturedOnly && !p.Featured {
			continue
		}
		if filter.OwnerID != "" && p.OwnerID != filter.OwnerID {
			continue
		}
		if filter.ExcludeID != "" && p.ID == filter.ExcludeID {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if !filter.NewestFirst && result[i].Featured != result[j].Featured {
			return result[i].Featured
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (m *MockProjectRepository) List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	result := m.matching(filter)
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m *MockProjectRepository) Search(ctx context.Context, query string, limit int) ([]*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	m.searchLimit = limit

	q := strings.ToLower(query)
	var result []*domain.Project
	for _, p := range m.matching(domain.ProjectFilter{Status: domain.StatusActive}) {
		haystack := strings.ToLower(p.Title + " " + p.Description + " " + p.Technologies + " " + p.Category)
		if strings.Contains(haystack, q) {
			result = append(result, p)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockProjectRepository) Categories(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categoriesCalls++
	seen := map[string]bool{}
	var result []string
	for _, p := range m.projects {
		if p.Status == domain.StatusActive && !seen[p.Category] {
			seen[p.Category] = true
			result = append(result, p.Category)
		}
	}
	sort.Strings(result)
	return result, nil
}

func (m *MockProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.projects[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *MockProjectRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *MockProjectRepository) Count(ctx context.Context, filter domain.ProjectFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(filter))), nil
}

// =============================================================================
// MockMessageRepository
// =============================================================================

type MockMessageRepository struct {
	mu        sync.Mutex
	messages  map[string]*domain.ContactMessage
	createErr error
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{messages: make(map[string]*domain.ContactMessage)}
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *msg
	m.messages[msg.ID] = &cp
	return nil
}

func (m *MockMessageRepository) GetByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[id]; ok {
		cp := *msg
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockMessageRepository) List(ctx context.Context, limit int) ([]*domain.ContactMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.ContactMessage, 0, len(m.messages))
	for _, msg := range m.messages {
		cp := *msg
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockMessageRepository) SetRead(ctx context.Context, id string, isRead bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return repository.ErrNotFound
	}
	msg.IsRead = isRead
	return nil
}

func (m *MockMessageRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.messages[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.messages, id)
	return nil
}

func (m *MockMessageRepository) Count(ctx context.Context) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var unread int64
	for _, msg := range m.messages {
		if !msg.IsRead {
			unread++
		}
	}
	return int64(len(m.messages)), unread, nil
}

// =============================================================================
// MockSettingRepository
// =============================================================================

type MockSettingRepository struct {
	mu        sync.Mutex
	settings  map[string]*domain.SiteSetting
	listCalls int
}

func NewMockSettingRepository() *MockSettingRepository {
	return &MockSettingRepository{settings: make(map[string]*domain.SiteSetting)}
}

func (m *MockSettingRepository) Get(ctx context.Context, key string) (*domain.SiteSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.settings[key]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockSettingRepository) List(ctx context.Context) ([]*domain.SiteSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	result := make([]*domain.SiteSetting, 0, len(m.settings))
	for _, s := range m.settings {
		cp := *s
		result = append(result, &cp)
	}
	return result, nil
}

func (m *MockSettingRepository) Upsert(ctx context.Context, key, value string) (*domain.SiteSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &domain.SiteSetting{Key: key, Value: value}
	m.settings[key] = s
	cp := *s
	return &cp, nil
}

func (m *MockSettingRepository) UpsertMany(ctx context.Context, values map[string]string) error {
	for k, v := range values {
		if _, err := m.Upsert(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// MockSaleRepository
// =============================================================================

type MockSaleRepository struct {
	mu    sync.Mutex
	sales []*domain.Sale
}

func (m *MockSaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales = append(m.sales, sale)
	return nil
}

func (m *MockSaleRepository) Earnings(ctx context.Context, sellerID string) (*domain.Earnings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &domain.Earnings{}
	for _, s := range m.sales {
		if sellerID == "" || s.SellerID == sellerID {
			e.Total += s.Amount
			e.SaleCount++
		}
	}
	return e, nil
}

// =============================================================================
// Notifier and storage fakes
// =============================================================================

type fakeNotifier struct {
	mu       sync.Mutex
	contacts []*domain.ContactMessage
	requests []*domain.CustomProjectRequest
	err      error
}

func (f *fakeNotifier) ContactReceived(ctx context.Context, msg *domain.ContactMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacts = append(f.contacts, msg)
	return f.err
}

func (f *fakeNotifier) CustomProjectRequested(ctx context.Context, req *domain.CustomProjectRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.err
}

type fakeBackend struct {
	objects map[string][]byte
	puts    int
	putErr  error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{objects: map[string][]byte{}}
}

func (f *fakeBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.puts++
	f.objects[key] = data
	return nil
}

func (f *fakeBackend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("missing")
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (f *fakeBackend) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeBackend) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeBackend) URL(key string) string {
	return "/uploads/" + key
}
