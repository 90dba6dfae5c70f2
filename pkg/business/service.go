package business

import (
	"context"
	"fmt"

	"github.com/bizmate/bizmate/internal/auth"
	"github.com/bizmate/bizmate/internal/event_bus"
	"github.com/bizmate/bizmate/pkg/csvimport"
	"github.com/google/uuid"
)

type Service interface {
	CreateCompany(ctx context.Context, company Company) (Company, error)
	CreateCompanyForOwner(ctx context.Context, ownerId string, company Company) (Company, error)
	GetCompany(ctx context.Context, companyId string) (Company, error)
	ListCompanies(ctx context.Context) ([]Company, error)
	ListCompaniesForOwner(ctx context.Context, ownerId string) ([]Company, error)
	UpdateCompany(ctx context.Context, company Company) (Company, error)
	DeleteCompany(ctx context.Context, companyId string) error
	BusinessContext(ctx context.Context, businessId string) (Context, error)
	ImportEmployees(ctx context.Context, companyId string, csvText string, onboarding bool) (ImportSummary, error)
}

// ImportSummary reports what a CSV import actually did, so partial imports
// are diagnosable instead of silent.
type ImportSummary struct {
	Imported int
	Skipped  int
	Columns  []string
}

type ServiceImpl struct {
	repo Repository
	bus  *event_bus.EventBus
}

func NewService(repo Repository, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, bus: bus}
}

func (s *ServiceImpl) CreateCompany(ctx context.Context, company Company) (Company, error) {
	ownerId, err := auth.CurrentAccountId(ctx)
	if err != nil {
		return Company{}, fmt.Errorf("failed to get current account: %w", err)
	}
	return s.CreateCompanyForOwner(ctx, ownerId, company)
}

// CreateCompanyForOwner is used both by the authenticated CRUD path and by
// registration, where no principal is in the context yet.
func (s *ServiceImpl) CreateCompanyForOwner(ctx context.Context, ownerId string, company Company) (Company, error) {
	company.Id = uuid.NewString()
	assignIds(&company)

	if err := s.repo.StoreCompany(ctx, ownerId, company); err != nil {
		return Company{}, fmt.Errorf("failed to store company: %w", err)
	}

	_ = s.bus.Publish(event_bus.NewEvent(ctx, event_bus.CompanyCreated, company.Id))
	return company, nil
}

func (s *ServiceImpl) GetCompany(ctx context.Context, companyId string) (Company, error) {
	ownerId, err := auth.CurrentAccountId(ctx)
	if err != nil {
		return Company{}, fmt.Errorf("failed to get current account: %w", err)
	}
	return s.repo.GetCompany(ctx, ownerId, companyId)
}

func (s *ServiceImpl) ListCompanies(ctx context.Context) ([]Company, error) {
	ownerId, err := auth.CurrentAccountId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current account: %w", err)
	}
	return s.repo.ListCompanies(ctx, ownerId)
}

// ListCompaniesForOwner is the unauthenticated variant used during login,
// before any principal is in the context.
func (s *ServiceImpl) ListCompaniesForOwner(ctx context.Context, ownerId string) ([]Company, error) {
	return s.repo.ListCompanies(ctx, ownerId)
}

func (s *ServiceImpl) UpdateCompany(ctx context.Context, company Company) (Company, error) {
	ownerId, err := auth.CurrentAccountId(ctx)
	if err != nil {
		return Company{}, fmt.Errorf("failed to get current account: %w", err)
	}
	assignIds(&company)

	if err := s.repo.UpdateCompany(ctx, ownerId, company); err != nil {
		return Company{}, err
	}

	_ = s.bus.Publish(event_bus.NewEvent(ctx, event_bus.CompanyUpdated, company.Id))
	return company, nil
}

func (s *ServiceImpl) DeleteCompany(ctx context.Context, companyId string) error {
	ownerId, err := auth.CurrentAccountId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current account: %w", err)
	}
	if err := s.repo.DeleteCompany(ctx, ownerId, companyId); err != nil {
		return err
	}
	_ = s.bus.Publish(event_bus.NewEvent(ctx, event_bus.CompanyDeleted, companyId))
	return nil
}

// BusinessContext returns the assistant-facing snapshot of one business. The
// caller is responsible for checking that businessId matches the token claim.
func (s *ServiceImpl) BusinessContext(ctx context.Context, businessId string) (Context, error) {
	ownerId, err := auth.CurrentAccountId(ctx)
	if err != nil {
		return Context{}, fmt.Errorf("failed to get current account: %w", err)
	}
	company, err := s.repo.GetCompany(ctx, ownerId, businessId)
	if err != nil {
		return Context{}, err
	}

	employees := make([]ContextEmployee, 0, len(company.Employees))
	for _, e := range company.Employees {
		employees = append(employees, ContextEmployee{
			Name:     e.FullName,
			Email:    e.Email,
			Position: e.Position,
		})
	}

	return Context{
		BusinessId:   company.Id,
		BusinessName: company.Name,
		Area:         company.Industry,
		OwnerName:    company.OwnerName,
		Profit:       company.Profit,
		Employees:    employees,
	}, nil
}

// ImportEmployees parses employee CSV and attaches the rows to the company.
// Onboarding imports replace the whole employee list and include phone
// numbers; company-card imports append and ignore phones.
func (s *ServiceImpl) ImportEmployees(ctx context.Context, companyId string, csvText string, onboarding bool) (ImportSummary, error) {
	ownerId, err := auth.CurrentAccountId(ctx)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("failed to get current account: %w", err)
	}

	columns := csvimport.CompanyColumns
	if onboarding {
		columns = csvimport.OnboardingColumns
	}
	parsed := csvimport.Parse(csvText, columns)

	imported := make([]Employee, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		imported = append(imported, Employee{
			Id:       uuid.NewString(),
			FullName: row.FullName,
			Phone:    row.Phone,
			Email:    row.Email,
			Position: row.Position,
		})
	}

	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		company, err := repo.GetCompany(ctx, ownerId, companyId)
		if err != nil {
			return err
		}
		if onboarding {
			company.Employees = imported
		} else {
			company.Employees = append(company.Employees, imported...)
		}
		return repo.UpdateCompany(ctx, ownerId, company)
	})
	if err != nil {
		return ImportSummary{}, err
	}

	summary := ImportSummary{
		Imported: len(imported),
		Skipped:  parsed.Skipped,
		Columns:  parsed.Columns,
	}
	_ = s.bus.Publish(event_bus.NewEvent(ctx, event_bus.EmployeesImported, event_bus.ImportStats{
		Imported: summary.Imported,
		Skipped:  summary.Skipped,
	}))
	return summary, nil
}

func assignIds(company *Company) {
	for i := range company.Employees {
		if company.Employees[i].Id == "" {
			company.Employees[i].Id = uuid.NewString()
		}
	}
	for i := range company.Vacations {
		if company.Vacations[i].Id == "" {
			company.Vacations[i].Id = uuid.NewString()
		}
	}
}
