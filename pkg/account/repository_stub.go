package account

import (
	"context"
	"sync"
)

// RepositoryStub is an in-memory Repository for tests.
type RepositoryStub struct {
	mu       sync.Mutex
	accounts map[string]Account
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{accounts: make(map[string]Account)}
}

func (r *RepositoryStub) StoreAccount(_ context.Context, account Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.Id] = account
	return nil
}

func (r *RepositoryStub) GetAccountByEmail(_ context.Context, email string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return Account{}, ErrAccountNotFound
}

func (r *RepositoryStub) GetAccount(_ context.Context, accountId string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[accountId]; ok {
		return a, nil
	}
	return Account{}, ErrAccountNotFound
}
