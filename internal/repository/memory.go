package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pinvent/internal/auth"
	"pinvent/internal/model"
)

// MemoryStore keeps users, reset tokens and products in process memory.
// It backs STORE_DRIVER=memory and the service tests.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]model.User
	tokens   map[uuid.UUID]model.ResetToken // keyed by user id
	products map[uuid.UUID]model.Product
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uuid.UUID]model.User),
		tokens:   make(map[uuid.UUID]model.ResetToken),
		products: make(map[uuid.UUID]model.Product),
		now:      time.Now,
	}
}

// Users returns the store as a credential store.
func (m *MemoryStore) Users(hasher auth.PasswordHasher) UserRepository {
	return &memoryUsers{store: m, creds: newCredentials(hasher)}
}

// ResetTokens returns the store as a reset token store.
func (m *MemoryStore) ResetTokens() ResetTokenRepository {
	return &memoryResetTokens{store: m}
}

// Products returns the store as a product store.
func (m *MemoryStore) Products() ProductRepository {
	return &memoryProducts{store: m}
}

type memoryUsers struct {
	store *MemoryStore
	creds credentials
}

func (r *memoryUsers) Create(_ context.Context, name, email, password string) (*model.User, error) {
	user := &model.User{Name: name, Email: email}
	user.SetPassword(password)
	if err := r.creds.prepare(user, true); err != nil {
		return nil, err
	}

	m := r.store
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.emailTakenLocked(user.Email, uuid.Nil) {
		return nil, duplicateEmail()
	}
	now := m.now()
	user.ID = uuid.New()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = *user
	return user, nil
}

func (r *memoryUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	m := r.store
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *memoryUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	email = model.NormalizeEmail(email)
	m := r.store
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUsers) Save(_ context.Context, user *model.User) error {
	if err := r.creds.prepare(user, false); err != nil {
		return err
	}

	m := r.store
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	if m.emailTakenLocked(user.Email, user.ID) {
		return duplicateEmail()
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = m.now()
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) emailTakenLocked(email string, except uuid.UUID) bool {
	for id, user := range m.users {
		if id != except && user.Email == email {
			return true
		}
	}
	return false
}

type memoryResetTokens struct {
	store *MemoryStore
}

func (r *memoryResetTokens) Replace(_ context.Context, token *model.ResetToken) error {
	m := r.store
	m.mu.Lock()
	defer m.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = m.now()
	}
	m.tokens[token.UserID] = *token
	return nil
}

func (r *memoryResetTokens) FindValid(_ context.Context, tokenHash string, now time.Time) (*model.ResetToken, error) {
	m := r.store
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, token := range m.tokens {
		if token.TokenHash == tokenHash && !token.Expired(now) {
			t := token
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryResetTokens) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	m := r.store
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tokens, userID)
	return nil
}

type memoryProducts struct {
	store *MemoryStore
}

func (r *memoryProducts) Create(_ context.Context, product *model.Product) error {
	m := r.store
	m.mu.Lock()
	defer m.mu.Unlock()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := m.now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	m.products[product.ID] = *product
	return nil
}

func (r *memoryProducts) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	m := r.store
	m.mu.RLock()
	defer m.mu.RUnlock()

	product, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

func (r *memoryProducts) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Product, error) {
	m := r.store
	m.mu.RLock()
	defer m.mu.RUnlock()

	products := make([]model.Product, 0)
	for _, p := range m.products {
		if p.UserID == userID {
			products = append(products, p)
		}
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (r *memoryProducts) Update(_ context.Context, product *model.Product) error {
	m := r.store
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.products[product.ID]
	if !ok {
		return ErrNotFound
	}
	product.UserID = existing.UserID
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = m.now()
	m.products[product.ID] = *product
	return nil
}

func (r *memoryProducts) Delete(_ context.Context, id uuid.UUID) error {
	m := r.store
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}
