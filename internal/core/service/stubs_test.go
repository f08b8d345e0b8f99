package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/userhub/identity-api/internal/core/domain"
)

var errStoreDown = errors.New("store down")

type stubStore struct {
	mu    sync.Mutex
	byID  map[string]*domain.Identity
	err   error
	saves int
	sets  int
}

func newStubStore(identities ...*domain.Identity) *stubStore {
	s := &stubStore{byID: make(map[string]*domain.Identity)}
	for _, i := range identities {
		s.byID[i.ID] = cloneIdentity(i)
	}
	return s
}

func cloneIdentity(i *domain.Identity) *domain.Identity {
	if i == nil {
		return nil
	}
	clone := *i
	return &clone
}

func (s *stubStore) find(match func(*domain.Identity) bool) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, i := range s.byID {
		if match(i) {
			return cloneIdentity(i), nil
		}
	}
	return nil, nil
}

func (s *stubStore) FindByUsername(_ context.Context, username string) (*domain.Identity, error) {
	return s.find(func(i *domain.Identity) bool { return i.Username == username })
}

func (s *stubStore) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	return s.find(func(i *domain.Identity) bool { return i.Email == email })
}

func (s *stubStore) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	return s.find(func(i *domain.Identity) bool { return i.ID == id })
}

func (s *stubStore) FindByCountry(_ context.Context, country domain.Country) ([]*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []*domain.Identity
	for _, i := range s.sorted() {
		if i.Country.Name == country.Name {
			out = append(out, cloneIdentity(i))
		}
	}
	return out, nil
}

func (s *stubStore) FindAllPaged(_ context.Context, page, size int) ([]*domain.Identity, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, 0, s.err
	}
	all := s.sorted()
	start := page * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	out := make([]*domain.Identity, 0, end-start)
	for _, i := range all[start:end] {
		out = append(out, cloneIdentity(i))
	}
	return out, int64(len(all)), nil
}

func (s *stubStore) sorted() []*domain.Identity {
	all := make([]*domain.Identity, 0, len(s.byID))
	for _, i := range s.byID {
		all = append(all, i)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].Username < all[b].Username })
	return all
}

func (s *stubStore) Create(_ context.Context, identity *domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, i := range s.byID {
		if i.Username == identity.Username || i.Email == identity.Email {
			return domain.ErrAlreadyExists
		}
	}
	s.byID[identity.ID] = cloneIdentity(identity)
	return nil
}

func (s *stubStore) Save(_ context.Context, identity *domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	stored, ok := s.byID[identity.ID]
	if !ok {
		return domain.ErrNotFound
	}
	s.saves++
	stored.Email = identity.Email
	stored.PasswordHash = identity.PasswordHash
	stored.FirstName = identity.FirstName
	stored.LastName = identity.LastName
	stored.Birthdate = identity.Birthdate
	stored.Country = identity.Country
	stored.UpdatedAt = identity.UpdatedAt
	return nil
}

func (s *stubStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	i, ok := s.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.sets++
	i.Active = active
	return nil
}

func (s *stubStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *stubStore) get(username string) *domain.Identity {
	i, _ := s.FindByUsername(context.Background(), username)
	return i
}

func (s *stubStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves + s.sets
}

// plainHasher stores "hashed:" + plaintext so tests stay fast and readable.
type plainHasher struct {
	hashErr  error
	verifies int
}

func (h *plainHasher) Hash(p string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + p, nil
}

func (h *plainHasher) Verify(p, hash string) bool {
	h.verifies++
	return hash != "" && strings.TrimPrefix(hash, "hashed:") == p && strings.HasPrefix(hash, "hashed:")
}

type stubCatalog struct{}

func (stubCatalog) FindByName(name string) (domain.Country, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "greece":
		return domain.Country{Name: "Greece", ISO: "GR"}, true
	case "spain":
		return domain.Country{Name: "Spain", ISO: "ES"}, true
	default:
		return domain.Country{}, false
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.LifecycleEvent
}

func (r *recordingSink) Enqueue(e domain.LifecycleEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
