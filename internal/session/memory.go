package session

import (
	"context"
	"sync"

	"github.com/mreynaud/go-storefront/internal/entity"
)

type memoryStore struct {
	mu        sync.Mutex
	carts     map[string]entity.Cart
	users     map[string]string
	checkouts map[string]PendingCheckout
}

// NewMemoryStore creates an in-process session Store, used by tests and
// local development without Redis. Entries never expire.
func NewMemoryStore() Store {
	return &memoryStore{
		carts:     make(map[string]entity.Cart),
		users:     make(map[string]string),
		checkouts: make(map[string]PendingCheckout),
	}
}

func (s *memoryStore) Cart(ctx context.Context, sid string) (entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[sid]
	out := make(entity.Cart, len(cart))
	copy(out, cart)
	return out, nil
}

func (s *memoryStore) SetCart(ctx context.Context, sid string, cart entity.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make(entity.Cart, len(cart))
	copy(stored, cart)
	s.carts[sid] = stored
	return nil
}

func (s *memoryStore) ClearCart(ctx context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sid)
	return nil
}

func (s *memoryStore) UserID(ctx context.Context, sid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.users[sid], nil
}

func (s *memoryStore) BindUser(ctx context.Context, sid, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[sid] = userID
	return nil
}

func (s *memoryStore) UnbindUser(ctx context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, sid)
	return nil
}

func (s *memoryStore) StashCheckout(ctx context.Context, sid, token string, pc PendingCheckout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkouts[sid+":"+token] = pc
	return nil
}

func (s *memoryStore) TakeCheckout(ctx context.Context, sid, token string) (*PendingCheckout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sid + ":" + token
	pc, ok := s.checkouts[key]
	if !ok {
		return nil, entity.ErrNotFound
	}
	delete(s.checkouts, key)
	return &pc, nil
}
