package business

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	StoreCompany(ctx context.Context, ownerId string, company Company) error
	GetCompany(ctx context.Context, ownerId string, companyId string) (Company, error)
	ListCompanies(ctx context.Context, ownerId string) ([]Company, error)
	UpdateCompany(ctx context.Context, ownerId string, company Company) error
	DeleteCompany(ctx context.Context, ownerId string, companyId string) error
}

type RepositoryImpl struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db, tx: nil}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *RepositoryImpl) getQueryer() interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback will be a no-op if the transaction was already committed
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &RepositoryImpl{db: r.db, tx: tx}
	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) StoreCompany(ctx context.Context, ownerId string, company Company) error {
	query := `INSERT INTO business (id, owner_id, name, industry, tax_id, description, profit)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.getQueryer().ExecContext(ctx, query,
		company.Id, ownerId, company.Name, company.Industry, company.TaxId, company.Description, company.Profit)
	if err != nil {
		err := fmt.Errorf("could not insert business: %w", err)
		log.Error(err)
		return err
	}

	if err := r.insertEmployees(ctx, company.Id, company.Employees); err != nil {
		return err
	}
	return r.insertVacations(ctx, company.Id, company.Vacations)
}

func (r *RepositoryImpl) GetCompany(ctx context.Context, ownerId string, companyId string) (Company, error) {
	query := `SELECT b.id, b.name, b.industry, b.tax_id, b.description, b.profit, a.full_name
	          FROM business b
	          JOIN account a ON a.id = b.owner_id
	          WHERE b.id = $1 AND b.owner_id = $2`

	var c Company
	err := r.getQueryer().QueryRowContext(ctx, query, companyId, ownerId).
		Scan(&c.Id, &c.Name, &c.Industry, &c.TaxId, &c.Description, &c.Profit, &c.OwnerName)
	if errors.Is(err, sql.ErrNoRows) {
		return Company{}, ErrCompanyNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not query business: %w", err)
		log.Error(err)
		return Company{}, err
	}

	if c.Employees, err = r.employeesOf(ctx, c.Id); err != nil {
		return Company{}, err
	}
	if c.Vacations, err = r.vacationsOf(ctx, c.Id); err != nil {
		return Company{}, err
	}
	return c, nil
}

func (r *RepositoryImpl) ListCompanies(ctx context.Context, ownerId string) ([]Company, error) {
	query := `SELECT b.id, b.name, b.industry, b.tax_id, b.description, b.profit, a.full_name
	          FROM business b
	          JOIN account a ON a.id = b.owner_id
	          WHERE b.owner_id = $1
	          ORDER BY b.name, b.id`

	rows, err := r.getQueryer().QueryContext(ctx, query, ownerId)
	if err != nil {
		err := fmt.Errorf("could not query businesses: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	companies := make([]Company, 0, 4)
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.Id, &c.Name, &c.Industry, &c.TaxId, &c.Description, &c.Profit, &c.OwnerName); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range companies {
		if companies[i].Employees, err = r.employeesOf(ctx, companies[i].Id); err != nil {
			return nil, err
		}
		if companies[i].Vacations, err = r.vacationsOf(ctx, companies[i].Id); err != nil {
			return nil, err
		}
	}
	return companies, nil
}

// UpdateCompany replaces the company row and its employee and vacation sets
// wholesale, matching the save-the-whole-form update model.
func (r *RepositoryImpl) UpdateCompany(ctx context.Context, ownerId string, company Company) error {
	query := `UPDATE business SET name = $1, industry = $2, tax_id = $3, description = $4, profit = $5
	          WHERE id = $6 AND owner_id = $7`
	res, err := r.getQueryer().ExecContext(ctx, query,
		company.Name, company.Industry, company.TaxId, company.Description, company.Profit, company.Id, ownerId)
	if err != nil {
		err := fmt.Errorf("could not update business: %w", err)
		log.Error(err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCompanyNotFound
	}

	if _, err := r.getQueryer().ExecContext(ctx, `DELETE FROM employee WHERE business_id = $1`, company.Id); err != nil {
		return fmt.Errorf("could not clear employees: %w", err)
	}
	if _, err := r.getQueryer().ExecContext(ctx, `DELETE FROM vacation WHERE business_id = $1`, company.Id); err != nil {
		return fmt.Errorf("could not clear vacations: %w", err)
	}
	if err := r.insertEmployees(ctx, company.Id, company.Employees); err != nil {
		return err
	}
	return r.insertVacations(ctx, company.Id, company.Vacations)
}

func (r *RepositoryImpl) DeleteCompany(ctx context.Context, ownerId string, companyId string) error {
	// Employees and vacations go with it (FK cascade).
	res, err := r.getQueryer().ExecContext(ctx,
		`DELETE FROM business WHERE id = $1 AND owner_id = $2`, companyId, ownerId)
	if err != nil {
		err := fmt.Errorf("could not delete business: %w", err)
		log.Error(err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func (r *RepositoryImpl) insertEmployees(ctx context.Context, companyId string, employees []Employee) error {
	for i, e := range employees {
		_, err := r.getQueryer().ExecContext(ctx,
			`INSERT INTO employee (id, business_id, full_name, email, phone, position, ordinal)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.Id, companyId, e.FullName, e.Email, e.Phone, e.Position, i)
		if err != nil {
			err := fmt.Errorf("could not insert employee: %w", err)
			log.Error(err)
			return err
		}
	}
	return nil
}

func (r *RepositoryImpl) insertVacations(ctx context.Context, companyId string, vacations []Vacation) error {
	for i, v := range vacations {
		_, err := r.getQueryer().ExecContext(ctx,
			`INSERT INTO vacation (id, business_id, employee_name, start_date, end_date, ordinal)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			v.Id, companyId, v.EmployeeName, v.StartDate, v.EndDate, i)
		if err != nil {
			err := fmt.Errorf("could not insert vacation: %w", err)
			log.Error(err)
			return err
		}
	}
	return nil
}

func (r *RepositoryImpl) employeesOf(ctx context.Context, companyId string) ([]Employee, error) {
	rows, err := r.getQueryer().QueryContext(ctx,
		`SELECT id, full_name, email, phone, position FROM employee WHERE business_id = $1 ORDER BY ordinal`, companyId)
	if err != nil {
		err := fmt.Errorf("could not query employees: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	employees := make([]Employee, 0, 8)
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.Id, &e.FullName, &e.Email, &e.Phone, &e.Position); err != nil {
			return nil, fmt.Errorf("could not scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *RepositoryImpl) vacationsOf(ctx context.Context, companyId string) ([]Vacation, error) {
	rows, err := r.getQueryer().QueryContext(ctx,
		`SELECT id, employee_name, start_date, end_date FROM vacation WHERE business_id = $1 ORDER BY ordinal`, companyId)
	if err != nil {
		err := fmt.Errorf("could not query vacations: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	vacations := make([]Vacation, 0, 4)
	for rows.Next() {
		var v Vacation
		if err := rows.Scan(&v.Id, &v.EmployeeName, &v.StartDate, &v.EndDate); err != nil {
			return nil, fmt.Errorf("could not scan vacation: %w", err)
		}
		vacations = append(vacations, v)
	}
	return vacations, rows.Err()
}
