package auth

import (
	"context"
	"sort"
	"sync"
)

var _ Store = (*MemStore)(nil)

// MemStore is an in-memory Store with indexed lookups by id, email and key
// hash. It backs development setups and tests; the uniqueness invariants
// match the Postgres schema.
type MemStore struct {
	mu           sync.RWMutex
	users        map[string]*User
	usersByEmail map[string]string
	keys         map[string]*APIKey
	keysByHash   map[string]string
}

// NewMemStore constructs an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		users:        make(map[string]*User),
		usersByEmail: make(map[string]string),
		keys:         make(map[string]*APIKey),
		keysByHash:   make(map[string]string),
	}
}

func (m *MemStore) Users(ctx context.Context) UserStore     { return (*memUserStore)(m) }
func (m *MemStore) APIKeys(ctx context.Context) APIKeyStore { return (*memKeyStore)(m) }

type memUserStore MemStore

func (s *memUserStore) Create(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.usersByEmail[u.Email]; taken {
		return ErrAlreadyExists
	}
	cp := *u
	s.users[u.ID] = &cp
	s.usersByEmail[u.Email] = u.ID
	return nil
}

func (s *memUserStore) Find(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

type memKeyStore MemStore

func (s *memKeyStore) Create(ctx context.Context, k *APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.keysByHash[k.KeyHash]; taken {
		return ErrAlreadyExists
	}
	cp := *k
	s.keys[k.ID] = &cp
	s.keysByHash[k.KeyHash] = k.ID
	return nil
}

func (s *memKeyStore) FindByHash(ctx context.Context, hash string) (*APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.keysByHash[hash]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.keys[id]
	return &cp, nil
}

func (s *memKeyStore) ListByOwner(ctx context.Context, ownerID string) ([]*APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*APIKey
	for _, k := range s.keys {
		if k.OwnerID == ownerID {
			cp := *k
			out = append(out, &cp)
		}
	}
	// Newest first, matching the Postgres store.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *memKeyStore) Update(ctx context.Context, id string, patch APIKeyPatch) (*APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Revoked != nil {
		// Revocation is monotonic; an update never clears it.
		if *patch.Revoked {
			k.Revoked = true
		}
	}
	if patch.LastUsedAt != nil {
		t := *patch.LastUsedAt
		k.LastUsedAt = &t
	}
	cp := *k
	return &cp, nil
}
