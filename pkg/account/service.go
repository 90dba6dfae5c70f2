package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bizmate/bizmate/internal/auth"
	"github.com/bizmate/bizmate/internal/event_bus"
	"github.com/bizmate/bizmate/internal/utils"
	"github.com/bizmate/bizmate/pkg/business"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Registration bundles the owner's credentials with the company created
// alongside the account. Registering always creates both.
type Registration struct {
	Email    string
	Password string
	FullName string
	Company  business.Company
}

type Service interface {
	RegisterCompany(ctx context.Context, reg Registration) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
}

type ServiceImpl struct {
	repo       Repository
	businesses business.Service
	tokens     *auth.TokenService
	clock      utils.Clock
	bus        *event_bus.EventBus
}

func NewService(repo Repository, businesses business.Service, tokens *auth.TokenService, clock utils.Clock, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, businesses: businesses, tokens: tokens, clock: clock, bus: bus}
}

// RegisterCompany creates the owner account and its company in one step and
// returns a token scoped to both.
func (s *ServiceImpl) RegisterCompany(ctx context.Context, reg Registration) (AuthResult, error) {
	email := normalizeEmail(reg.Email)

	if _, err := s.repo.GetAccountByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return AuthResult{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	acc := Account{
		Id:           uuid.NewString(),
		Email:        email,
		FullName:     reg.FullName,
		PasswordHash: string(hash),
	}
	if err := s.repo.StoreAccount(ctx, acc); err != nil {
		return AuthResult{}, err
	}

	company, err := s.businesses.CreateCompanyForOwner(ctx, acc.Id, reg.Company)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to create company for new account: %w", err)
	}

	token, err := s.tokens.Issue(acc.Id, acc.Email, company.Id, s.clock.Now())
	if err != nil {
		return AuthResult{}, err
	}

	_ = s.bus.Publish(event_bus.NewEvent(ctx, event_bus.AccountRegistered, acc.Id))
	return AuthResult{
		Token:      token,
		AccountId:  acc.Id,
		BusinessId: company.Id,
		Email:      acc.Email,
		FullName:   acc.FullName,
	}, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password both come back as ErrInvalidCredentials.
func (s *ServiceImpl) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = normalizeEmail(email)

	acc, err := s.repo.GetAccountByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		s.loginFailed(ctx, email)
		return AuthResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		s.loginFailed(ctx, email)
		return AuthResult{}, ErrInvalidCredentials
	}

	companies, err := s.businesses.ListCompaniesForOwner(ctx, acc.Id)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to resolve business for account: %w", err)
	}
	if len(companies) == 0 {
		return AuthResult{}, ErrNoBusiness
	}
	businessId := companies[0].Id

	token, err := s.tokens.Issue(acc.Id, acc.Email, businessId, s.clock.Now())
	if err != nil {
		return AuthResult{}, err
	}

	_ = s.bus.Publish(event_bus.NewEvent(ctx, event_bus.AccountLoggedIn, acc.Id))
	return AuthResult{
		Token:      token,
		AccountId:  acc.Id,
		BusinessId: businessId,
		Email:      acc.Email,
		FullName:   acc.FullName,
	}, nil
}

func (s *ServiceImpl) loginFailed(ctx context.Context, email string) {
	log.Warnf("Failed login attempt for %s", email)
	_ = s.bus.Publish(event_bus.NewEvent(ctx, event_bus.AccountLoginFailure, email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
