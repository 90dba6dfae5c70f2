package business

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bizmate/bizmate/internal/auth"
	"github.com/bizmate/bizmate/internal/rest"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service     Service
	csvRenderer *CsvEmployeeRenderer
}

func NewHandler(service Service, csvRenderer *CsvEmployeeRenderer) *Handler {
	return &Handler{service: service, csvRenderer: csvRenderer}
}

type CompanyDTO struct {
	Id          string        `json:"id"`
	Name        string        `json:"name"`
	Industry    string        `json:"industry"`
	TaxId       string        `json:"taxId"`
	Description string        `json:"description"`
	Profit      string        `json:"profit"`
	Employees   []EmployeeDTO `json:"employees"`
	Vacations   []VacationDTO `json:"vacations"`
}

type EmployeeDTO struct {
	Id       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Position string `json:"position"`
}

type VacationDTO struct {
	Id           string `json:"id"`
	EmployeeName string `json:"employeeName"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
}

type BusinessContextDTO struct {
	BusinessId   string               `json:"businessId"`
	BusinessName string               `json:"businessName"`
	Area         string               `json:"area"`
	OwnerName    string               `json:"ownerName"`
	Profit       string               `json:"profit"`
	Employees    []ContextEmployeeDTO `json:"employees"`
}

type ContextEmployeeDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Position string `json:"position"`
}

type ImportSummaryDTO struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Columns  []string `json:"columns"`
}

func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.ListCompanies(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]CompanyDTO, 0, len(companies))
	for _, c := range companies {
		dtos = append(dtos, companyToDTO(c))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var dto CompanyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	if dto.Name == "" || dto.Industry == "" || dto.TaxId == "" {
		rest.WriteError(w, http.StatusBadRequest, "Company name, industry and taxId are required", "")
		return
	}

	created, err := h.service.CreateCompany(r.Context(), dtoToCompany(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, companyToDTO(created))
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	companyId := mux.Vars(r)["companyId"]
	company, err := h.service.GetCompany(r.Context(), companyId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, companyToDTO(company))
}

func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	var dto CompanyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	dto.Id = mux.Vars(r)["companyId"]

	updated, err := h.service.UpdateCompany(r.Context(), dtoToCompany(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, companyToDTO(updated))
}

func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	companyId := mux.Vars(r)["companyId"]
	if err := h.service.DeleteCompany(r.Context(), companyId); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BusinessContext serves GET /api/business/{businessId}. The path id must
// match the businessId claim of the caller's token.
func (h *Handler) BusinessContext(w http.ResponseWriter, r *http.Request) {
	businessId := mux.Vars(r)["businessId"]

	claimed, err := auth.CurrentBusinessId(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "Authentication required", "")
		return
	}
	if claimed == "" || claimed != businessId {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	bizCtx, err := h.service.BusinessContext(r.Context(), businessId)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	employees := make([]ContextEmployeeDTO, 0, len(bizCtx.Employees))
	for _, e := range bizCtx.Employees {
		employees = append(employees, ContextEmployeeDTO(e))
	}
	rest.WriteJSON(w, http.StatusOK, BusinessContextDTO{
		BusinessId:   bizCtx.BusinessId,
		BusinessName: bizCtx.BusinessName,
		Area:         bizCtx.Area,
		OwnerName:    bizCtx.OwnerName,
		Profit:       bizCtx.Profit,
		Employees:    employees,
	})
}

// ImportEmployees accepts a raw CSV body. ?mode=onboarding switches to the
// replace-all, phone-included vocabulary.
func (h *Handler) ImportEmployees(w http.ResponseWriter, r *http.Request) {
	companyId := mux.Vars(r)["companyId"]
	onboarding := r.URL.Query().Get("mode") == "onboarding"

	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		rest.WriteError(w, http.StatusBadRequest, "CSV body is required", "")
		return
	}

	summary, err := h.service.ImportEmployees(r.Context(), companyId, string(body), onboarding)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	log.Debugf("Imported %d employees into company %s (%d rows skipped)", summary.Imported, companyId, summary.Skipped)
	rest.WriteJSON(w, http.StatusOK, ImportSummaryDTO(summary))
}

func (h *Handler) ExportEmployees(w http.ResponseWriter, r *http.Request) {
	companyId := mux.Vars(r)["companyId"]
	company, err := h.service.GetCompany(r.Context(), companyId)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	csv, err := h.csvRenderer.RenderEmployees(company)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="employees.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(csv)); err != nil {
		log.Errorf("failed to write CSV response: %v", err)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrNoPrincipal):
		rest.WriteError(w, http.StatusUnauthorized, "Authentication required", "")
	case errors.Is(err, ErrCompanyNotFound):
		rest.WriteError(w, http.StatusNotFound, "Company not found", "")
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func companyToDTO(c Company) CompanyDTO {
	employees := make([]EmployeeDTO, 0, len(c.Employees))
	for _, e := range c.Employees {
		employees = append(employees, EmployeeDTO(e))
	}
	vacations := make([]VacationDTO, 0, len(c.Vacations))
	for _, v := range c.Vacations {
		vacations = append(vacations, VacationDTO(v))
	}
	return CompanyDTO{
		Id:          c.Id,
		Name:        c.Name,
		Industry:    c.Industry,
		TaxId:       c.TaxId,
		Description: c.Description,
		Profit:      c.Profit,
		Employees:   employees,
		Vacations:   vacations,
	}
}

func dtoToCompany(dto CompanyDTO) Company {
	employees := make([]Employee, 0, len(dto.Employees))
	for _, e := range dto.Employees {
		employees = append(employees, Employee(e))
	}
	vacations := make([]Vacation, 0, len(dto.Vacations))
	for _, v := range dto.Vacations {
		vacations = append(vacations, Vacation(v))
	}
	return Company{
		Id:          dto.Id,
		Name:        dto.Name,
		Industry:    dto.Industry,
		TaxId:       dto.TaxId,
		Description: dto.Description,
		Profit:      dto.Profit,
		Employees:   employees,
		Vacations:   vacations,
	}
}
