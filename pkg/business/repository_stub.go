package business

import (
	"context"
	"sync"
)

// RepositoryStub is an in-memory Repository used by tests.
type RepositoryStub struct {
	mu        sync.RWMutex
	companies map[string]Company // companyId -> company
	owners    map[string]string  // companyId -> ownerId
	order     []string
	// OwnerNames lets tests control the joined owner display name.
	OwnerNames map[string]string
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		companies:  make(map[string]Company),
		owners:     make(map[string]string),
		OwnerNames: make(map[string]string),
	}
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return fn(r)
}

func (r *RepositoryStub) StoreCompany(ctx context.Context, ownerId string, company Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	company.OwnerName = r.OwnerNames[ownerId]
	r.companies[company.Id] = company
	r.owners[company.Id] = ownerId
	r.order = append(r.order, company.Id)
	return nil
}

func (r *RepositoryStub) GetCompany(ctx context.Context, ownerId string, companyId string) (Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.companies[companyId]
	if !ok || r.owners[companyId] != ownerId {
		return Company{}, ErrCompanyNotFound
	}
	return c, nil
}

func (r *RepositoryStub) ListCompanies(ctx context.Context, ownerId string) ([]Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Company, 0, len(r.order))
	for _, id := range r.order {
		if r.owners[id] == ownerId {
			result = append(result, r.companies[id])
		}
	}
	return result, nil
}

func (r *RepositoryStub) UpdateCompany(ctx context.Context, ownerId string, company Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[company.Id]; !ok || r.owners[company.Id] != ownerId {
		return ErrCompanyNotFound
	}
	company.OwnerName = r.OwnerNames[ownerId]
	r.companies[company.Id] = company
	return nil
}

func (r *RepositoryStub) DeleteCompany(ctx context.Context, ownerId string, companyId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[companyId]; !ok || r.owners[companyId] != ownerId {
		return ErrCompanyNotFound
	}
	delete(r.companies, companyId)
	delete(r.owners, companyId)
	for i, id := range r.order {
		if id == companyId {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
