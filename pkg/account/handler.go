package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bizmate/bizmate/internal/rest"
	"github.com/bizmate/bizmate/pkg/business"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type RegisterCompanyDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Company  struct {
		Name        string `json:"name"`
		Industry    string `json:"industry"`
		TaxId       string `json:"taxId"`
		Description string `json:"description"`
		Profit      string `json:"profit"`
	} `json:"company"`
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResultDTO struct {
	Token      string `json:"token"`
	AccountId  string `json:"accountId"`
	BusinessId string `json:"businessId"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
}

// RegisterCompany serves POST /api/auth/register-company. Account and company
// are created together; the returned token is already scoped to both.
func (h *Handler) RegisterCompany(w http.ResponseWriter, r *http.Request) {
	var dto RegisterCompanyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	if dto.Email == "" || dto.Password == "" {
		rest.WriteError(w, http.StatusBadRequest, "Email and password are required", "")
		return
	}
	if dto.Company.Name == "" || dto.Company.Industry == "" || dto.Company.TaxId == "" {
		rest.WriteError(w, http.StatusBadRequest, "Company name, industry and taxId are required", "")
		return
	}

	result, err := h.service.RegisterCompany(r.Context(), Registration{
		Email:    dto.Email,
		Password: dto.Password,
		FullName: dto.FullName,
		Company: business.Company{
			Name:        dto.Company.Name,
			Industry:    dto.Company.Industry,
			TaxId:       dto.Company.TaxId,
			Description: dto.Company.Description,
			Profit:      dto.Company.Profit,
		},
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			rest.WriteError(w, http.StatusConflict, "An account with this email already exists", "")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, AuthResultDTO(result))
}

// Login serves POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	if dto.Email == "" || dto.Password == "" {
		rest.WriteError(w, http.StatusBadRequest, "Email and password are required", "")
		return
	}

	result, err := h.service.Login(r.Context(), dto.Email, dto.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			rest.WriteError(w, http.StatusUnauthorized, "Invalid email or password", "")
			return
		}
		if errors.Is(err, ErrNoBusiness) {
			rest.WriteError(w, http.StatusNotFound, "No business registered for this account", "")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, AuthResultDTO(result))
}
