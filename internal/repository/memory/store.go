// Package memory implements the repository contracts over a mutex-guarded map.
// It backs the test suites and local runs without Postgres; the conditional
// update keeps the same compare-and-swap semantics as the SQL variant.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bkaratas/account-service/internal/models"
	repo "github.com/bkaratas/account-service/internal/repository"
)

type Store struct {
	mu       sync.Mutex
	users    map[string]models.User
	byEmail  map[string]string
	accounts map[string]models.Account
}

func NewStore() *Store {
	return &Store{
		users:    map[string]models.User{},
		byEmail:  map[string]string{},
		accounts: map[string]models.Account{},
	}
}

func (s *Store) Users() repo.Users       { return (*usersView)(s) }
func (s *Store) Accounts() repo.Accounts { return &accountsView{s: s} }

// ---------------- users ----------------

type usersView Store

func (v *usersView) Create(_ context.Context, email, hash, role string) (models.User, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	u := models.User{ID: uuid.NewString(), Email: email, PasswordHash: hash, Role: role, CreatedAt: now, UpdatedAt: now}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	return u, nil
}

func (v *usersView) GetByID(_ context.Context, id string) (models.User, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, repo.ErrNoRows
	}
	return u, nil
}

func (v *usersView) GetByEmail(_ context.Context, email string) (models.User, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return models.User{}, repo.ErrNoRows
	}
	return s.users[id], nil
}

func (v *usersView) List(_ context.Context) ([]models.User, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

// ---------------- accounts ----------------

// accountsView serves reads and autocommitted writes. Inside WithTx the store
// lock is held for the whole scope and writes are buffered in staged until
// commit, so a unit of work is all-or-nothing and fully isolated — the same
// contract the Postgres transaction gives.
type accountsView struct {
	s      *Store
	inTx   bool
	staged map[string]models.Account
}

func (v *accountsView) Create(_ context.Context, a models.Account) (models.Account, error) {
	v.lock()
	defer v.unlock()
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	v.put(a)
	return a, nil
}

func (v *accountsView) GetByID(_ context.Context, id string) (models.Account, error) {
	v.lock()
	defer v.unlock()
	a, ok := v.lookup(id)
	if !ok {
		return models.Account{}, repo.ErrNoRows
	}
	return a, nil
}

func (v *accountsView) GetForOwner(ctx context.Context, id, ownerID string) (models.Account, error) {
	a, err := v.GetByID(ctx, id)
	if err != nil {
		return models.Account{}, err
	}
	if a.OwnerID != ownerID {
		return models.Account{}, repo.ErrNoRows
	}
	return a, nil
}

func (v *accountsView) ListByOwner(_ context.Context, ownerID string) ([]models.Account, error) {
	v.lock()
	defer v.unlock()
	var out []models.Account
	for _, a := range v.s.accounts {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (v *accountsView) ApplyDelta(_ context.Context, id string, expected int64, delta decimal.Decimal) (int64, error) {
	v.lock()
	defer v.unlock()
	a, ok := v.lookup(id)
	if !ok || a.Version != expected {
		return 0, nil
	}
	a.Balance = a.Balance.Add(delta)
	a.Version++
	a.UpdatedAt = time.Now()
	v.put(a)
	return 1, nil
}

func (v *accountsView) WithTx(_ context.Context, fn func(repo.Accounts) error) error {
	if v.inTx {
		return fn(v)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	tx := &accountsView{s: v.s, inTx: true, staged: map[string]models.Account{}}
	if err := fn(tx); err != nil {
		return err // staged writes are discarded
	}
	for id, a := range tx.staged {
		v.s.accounts[id] = a
	}
	return nil
}

func (v *accountsView) lock() {
	if !v.inTx {
		v.s.mu.Lock()
	}
}

func (v *accountsView) unlock() {
	if !v.inTx {
		v.s.mu.Unlock()
	}
}

func (v *accountsView) lookup(id string) (models.Account, bool) {
	if v.staged != nil {
		if a, ok := v.staged[id]; ok {
			return a, true
		}
	}
	a, ok := v.s.accounts[id]
	return a, ok
}

func (v *accountsView) put(a models.Account) {
	if v.staged != nil {
		v.staged[a.ID] = a
	} else {
		v.s.accounts[a.ID] = a
	}
}
