package inmem

import (
	"context"
	"strings"
	"time"

	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

type accountRepository struct {
	db *DB
}

// NewAccountRepository creates an in-memory account repository
func NewAccountRepository(db *DB) repositories.AccountRepository {
	return &accountRepository{db: db}
}

func copyAccount(a *models.Account) *models.Account {
	c := *a
	return &c
}

func (repo *accountRepository) Create(_ context.Context, account *models.Account) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	email := strings.ToLower(account.Email)
	for _, existing := range repo.db.accounts {
		if existing.Email == email {
			return apperrors.ErrEmailAlreadyInUse
		}
	}
	if account.EntityID != nil {
		if _, ok := repo.db.entities[*account.EntityID]; !ok {
			return apperrors.NewNotFoundError("entity not found")
		}
	}

	stored := copyAccount(account)
	stored.Email = email
	repo.db.accounts[stored.ID] = stored
	return nil
}

func (repo *accountRepository) GetByID(_ context.Context, id string) (*models.Account, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if account, ok := repo.db.accounts[id]; ok {
		return copyAccount(account), nil
	}
	return nil, apperrors.NewNotFoundError("account " + id + " not found")
}

func (repo *accountRepository) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	email = strings.ToLower(email)
	for _, account := range repo.db.accounts {
		if account.Email == email {
			return copyAccount(account), nil
		}
	}
	return nil, apperrors.NewNotFoundError("account " + email + " not found")
}

func (repo *accountRepository) bind(accountID, entityID string, onlyIfUnset bool) (bool, error) {
	account, ok := repo.db.accounts[accountID]
	if !ok {
		return false, apperrors.NewNotFoundError("account " + accountID + " not found")
	}
	if _, ok := repo.db.entities[entityID]; !ok {
		return false, apperrors.NewNotFoundError("entity " + entityID + " not found")
	}
	if onlyIfUnset && account.EntityID != nil {
		return false, nil
	}
	id := entityID
	account.EntityID = &id
	account.UpdatedAt = helpers.NowUTC()
	return true, nil
}

func (repo *accountRepository) SetEntity(_ context.Context, accountID, entityID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	_, err := repo.bind(accountID, entityID, false)
	return err
}

func (repo *accountRepository) BindEntityIfUnset(_ context.Context, accountID, entityID string) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	return repo.bind(accountID, entityID, true)
}

func (repo *accountRepository) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	account, ok := repo.db.accounts[id]
	if !ok {
		return apperrors.NewNotFoundError("account " + id + " not found")
	}
	account.LastLogin = &at
	return nil
}
