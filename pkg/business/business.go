package business

import "errors"

var ErrCompanyNotFound = errors.New("company not found")

// Company is the aggregate root: it owns its employees and vacations, and
// deleting a company discards both.
type Company struct {
	Id          string
	Name        string
	Industry    string
	TaxId       string
	Description string
	Profit      string
	OwnerName   string
	Employees   []Employee
	Vacations   []Vacation
}

type Employee struct {
	Id       string
	FullName string
	Email    string
	Phone    string
	Position string
}

// Vacation is a date-only range for a named employee. EmployeeName is free
// text, deliberately not a foreign key to an Employee record.
type Vacation struct {
	Id           string
	EmployeeName string
	StartDate    string // YYYY-MM-DD
	EndDate      string // YYYY-MM-DD
}

// Context is the business snapshot handed to the AI assistant and returned by
// the business-context endpoint.
type Context struct {
	BusinessId   string
	BusinessName string
	Area         string
	OwnerName    string
	Profit       string
	Employees    []ContextEmployee
}

type ContextEmployee struct {
	Name     string
	Email    string
	Position string
}
