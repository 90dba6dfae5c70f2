package account

import (
	"context"
	"testing"
	"time"

	"github.com/bizmate/bizmate/internal/auth"
	"github.com/bizmate/bizmate/internal/config"
	"github.com/bizmate/bizmate/internal/event_bus"
	"github.com/bizmate/bizmate/internal/utils"
	"github.com/bizmate/bizmate/pkg/business"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jwtConfig = config.Jwt{Secret: "test-secret", ExpirationSeconds: 3600}

func newTestService(t *testing.T) (*ServiceImpl, *auth.TokenService, *business.ServiceImpl) {
	t.Helper()
	bus := event_bus.NewEventBus()
	businessService := business.NewService(business.NewRepositoryStub(), bus)
	tokens := auth.NewTokenService(jwtConfig)
	// Token verification checks expiry against the wall clock, so the fixed
	// test time has to be the present.
	clock := &utils.MockClock{FixedNow: time.Now()}
	service := NewService(NewRepositoryStub(), businessService, tokens, clock, bus)
	return service, tokens, businessService
}

func registration() Registration {
	return Registration{
		Email:    "owner@example.com",
		Password: "s3cret-pass",
		FullName: "Jan Kowalski",
		Company: business.Company{
			Name:     "Acme",
			Industry: "Retail",
			TaxId:    "1234567890",
		},
	}
}

func TestServiceImpl_RegisterCompany(t *testing.T) {
	t.Run("creates account and company and returns a scoped token", func(t *testing.T) {
		service, tokens, _ := newTestService(t)

		result, err := service.RegisterCompany(context.Background(), registration())

		require.NoError(t, err)
		assert.NotEmpty(t, result.AccountId)
		assert.NotEmpty(t, result.BusinessId)
		assert.Equal(t, "owner@example.com", result.Email)

		claims, err := tokens.Parse(result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.AccountId, claims.UserId)
		assert.Equal(t, result.BusinessId, claims.BusinessId)
		assert.Equal(t, "owner@example.com", claims.Subject)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		service, _, _ := newTestService(t)
		_, err := service.RegisterCompany(context.Background(), registration())
		require.NoError(t, err)

		reg := registration()
		reg.Email = "Owner@Example.com" // same address, different case
		_, err = service.RegisterCompany(context.Background(), reg)

		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("password is not stored in clear text", func(t *testing.T) {
		service, _, _ := newTestService(t)

		result, err := service.RegisterCompany(context.Background(), registration())
		require.NoError(t, err)

		stored, err := service.repo.GetAccount(context.Background(), result.AccountId)
		require.NoError(t, err)
		assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
		assert.NotEmpty(t, stored.PasswordHash)
	})
}

func TestServiceImpl_Login(t *testing.T) {
	t.Run("valid credentials return a token usable for the business context", func(t *testing.T) {
		service, tokens, businessService := newTestService(t)
		registered, err := service.RegisterCompany(context.Background(), registration())
		require.NoError(t, err)

		result, err := service.Login(context.Background(), "owner@example.com", "s3cret-pass")

		require.NoError(t, err)
		claims, err := tokens.Parse(result.Token)
		require.NoError(t, err)
		assert.Equal(t, registered.BusinessId, claims.BusinessId)

		// The token claims grant access to exactly the registered business.
		ctx := auth.WithClaims(context.Background(), claims)
		bizCtx, err := businessService.BusinessContext(ctx, claims.BusinessId)
		require.NoError(t, err)
		assert.Equal(t, "Acme", bizCtx.BusinessName)
	})

	t.Run("wrong password and unknown email fail identically", func(t *testing.T) {
		service, _, _ := newTestService(t)
		_, err := service.RegisterCompany(context.Background(), registration())
		require.NoError(t, err)

		_, wrongPass := service.Login(context.Background(), "owner@example.com", "wrong")
		_, unknown := service.Login(context.Background(), "nobody@example.com", "s3cret-pass")

		assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
		assert.ErrorIs(t, unknown, ErrInvalidCredentials)
		assert.Equal(t, wrongPass.Error(), unknown.Error())
	})

	t.Run("email comparison ignores case and whitespace", func(t *testing.T) {
		service, _, _ := newTestService(t)
		_, err := service.RegisterCompany(context.Background(), registration())
		require.NoError(t, err)

		_, err = service.Login(context.Background(), "  Owner@Example.COM ", "s3cret-pass")

		assert.NoError(t, err)
	})
}
