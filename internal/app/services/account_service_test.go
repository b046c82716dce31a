package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
)

func createAccount(t *testing.T, svc *Services, email string, role models.Role) *models.Account {
	t.Helper()
	account, err := svc.Accounts.Create(context.Background(), CreateAccountInput{
		Email:    email,
		Role:     role,
		Password: "correct horse",
	})
	require.NoError(t, err)
	return account
}

func TestAccountService_Create(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	account, err := svc.Accounts.Create(ctx, CreateAccountInput{Email: " Ada@Example.com ", Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", account.Email)
	assert.True(t, account.MustChangePassword)
	require.NotNil(t, account.TempPassword)
	assert.NotEqual(t, *account.TempPassword, account.Password)

	_, err = svc.Accounts.Create(ctx, CreateAccountInput{Email: "ada@example.com", Role: models.RoleStaff, Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	tests := []struct {
		name string
		in   CreateAccountInput
	}{
		{name: "bad email", in: CreateAccountInput{Email: "not-an-email", Role: models.RoleStaff}},
		{name: "bad role", in: CreateAccountInput{Email: "x@example.com", Role: "JANITOR"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Accounts.Create(ctx, tt.in)
			assert.True(t, apperrors.IsValidation(err))
		})
	}

	_, err = svc.Accounts.Create(ctx, CreateAccountInput{Email: "y@example.com", Role: models.RoleStaff, EntityID: strPtr("missing")})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAccountService_Login(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	account := createAccount(t, svc, "grace@example.com", models.RoleStaff)

	result, err := svc.Accounts.Login(ctx, "GRACE@example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, account.ID, result.Account.ID)
	assert.NotNil(t, result.Account.LastLogin)

	_, err = svc.Accounts.Login(ctx, "grace@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Accounts.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAccountService_FindOrCreateEntityForAccount(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		role models.Role
		want models.EntityType
	}{
		{role: models.RoleStudent, want: models.EntityTypeStudent},
		{role: models.RoleParent, want: models.EntityTypeParent},
		{role: models.RoleStaff, want: models.EntityTypeStaff},
		{role: models.RoleAdmin, want: models.EntityTypeStaff},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			account := createAccount(t, svc, string(tt.role)+"@example.com", tt.role)

			entity, created, err := svc.Accounts.FindOrCreateEntityForAccount(ctx, account.ID, "")
			require.NoError(t, err)
			assert.True(t, created)
			assert.Equal(t, tt.want, entity.Type)

			again, created, err := svc.Accounts.FindOrCreateEntityForAccount(ctx, account.ID, "")
			require.NoError(t, err)
			assert.False(t, created)
			assert.Equal(t, entity.ID, again.ID)
		})
	}
}

func TestAccountService_FindOrCreateEntityConcurrently(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	account := createAccount(t, svc, "race@example.com", models.RoleStudent)

	var wg sync.WaitGroup
	ids := make([]string, 6)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entity, _, err := svc.Accounts.FindOrCreateEntityForAccount(ctx, account.ID, "")
			if assert.NoError(t, err) {
				ids[i] = entity.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	total, err := svc.Entities.Count(ctx, repositories.EntityFilter{Type: models.EntityTypeStudent})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestAccountService_BindAccountToEntity(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	account := createAccount(t, svc, "bind@example.com", models.RoleParent)
	parent := createEntity(t, svc, models.EntityTypeParent, "")

	bound, err := svc.Accounts.BindAccountToEntity(ctx, account.ID, parent.ID)
	require.NoError(t, err)
	require.NotNil(t, bound.EntityID)
	assert.Equal(t, parent.ID, *bound.EntityID)

	entity, created, err := svc.Accounts.FindOrCreateEntityForAccount(ctx, account.ID, "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, parent.ID, entity.ID)

	// Deleting the entity unbinds the account
	require.NoError(t, svc.Entities.Delete(ctx, parent.ID))
	reloaded, err := svc.Accounts.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.EntityID)

	_, err = svc.Accounts.BindAccountToEntity(ctx, account.ID, "missing")
	assert.True(t, apperrors.IsNotFound(err))
}
