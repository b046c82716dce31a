package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/dberrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// accountsEmailConstraint is the default name PostgreSQL gives the UNIQUE email column
const accountsEmailConstraint = "accounts_email_key"

var accountColumns = []string{
	"id", "email", "password", "role", "is_active", "must_change_password", "temp_password",
	"last_login", "entity_id", "created_at", "updated_at",
}

type accountRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(database *db.PostgresDB) AccountRepository {
	return &accountRepository{
		db: database,
		sb: psql,
	}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	account := &models.Account{}
	var role string
	if err := row.Scan(
		&account.ID, &account.Email, &account.Password, &role, &account.IsActive, &account.MustChangePassword,
		&account.TempPassword, &account.LastLogin, &account.EntityID, &account.CreatedAt, &account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	account.Role = models.Role(role)
	return account, nil
}

// Create inserts a new account; a taken email is a conflict
func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	sql, args, err := r.sb.Insert(tableAccounts).
		Columns(accountColumns...).
		Values(account.ID, strings.ToLower(account.Email), account.Password, string(account.Role), account.IsActive,
			account.MustChangePassword, account.TempPassword, account.LastLogin, account.EntityID,
			account.CreatedAt, account.UpdatedAt).
		ToSql()
	if err != nil {
		return dberrors.Infrastructure(err, "build create account query")
	}

	if _, err := r.db.Pool.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, accountsEmailConstraint) {
			return apperrors.ErrEmailAlreadyInUse
		}
		if dberrors.IsUniqueViolation(err) {
			return apperrors.NewConflictError("account " + account.ID + " already exists")
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("entity not found")
		}
		return dberrors.Infrastructure(err, "create account")
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "account "+id)
}

// GetByEmail retrieves an account by email, case-insensitively
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"email": strings.ToLower(email)}, "account "+email)
}

func (r *accountRepository) getOne(ctx context.Context, where squirrel.Eq, what string) (*models.Account, error) {
	sql, args, err := r.sb.Select(accountColumns...).
		From(tableAccounts).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, dberrors.Infrastructure(err, "build get account query")
	}

	account, err := scanAccount(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewNotFoundError(what + " not found")
		}
		return nil, dberrors.Infrastructure(err, "get "+what)
	}
	return account, nil
}

// SetEntity binds an account to an entity, replacing any previous binding
func (r *accountRepository) SetEntity(ctx context.Context, accountID, entityID string) error {
	sql, args, err := r.sb.Update(tableAccounts).
		Set("entity_id", entityID).
		Set("updated_at", helpers.NowUTC()).
		Where(squirrel.Eq{"id": accountID}).
		ToSql()
	if err != nil {
		return dberrors.Infrastructure(err, "build bind account query")
	}

	cmdTag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("entity " + entityID + " not found")
		}
		return dberrors.Infrastructure(err, "bind account")
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account " + accountID + " not found")
	}
	return nil
}

// BindEntityIfUnset binds the account only while its entity_id is still null
func (r *accountRepository) BindEntityIfUnset(ctx context.Context, accountID, entityID string) (bool, error) {
	sql, args, err := r.sb.Update(tableAccounts).
		Set("entity_id", entityID).
		Set("updated_at", helpers.NowUTC()).
		Where(squirrel.Eq{"id": accountID, "entity_id": nil}).
		ToSql()
	if err != nil {
		return false, dberrors.Infrastructure(err, "build conditional bind query")
	}

	cmdTag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return false, apperrors.NewNotFoundError("entity " + entityID + " not found")
		}
		return false, dberrors.Infrastructure(err, "conditional bind account")
	}
	return cmdTag.RowsAffected() == 1, nil
}

// UpdateLastLogin records a successful login
func (r *accountRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	sql, args, err := r.sb.Update(tableAccounts).
		Set("last_login", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return dberrors.Infrastructure(err, "build update last login query")
	}

	if _, err := r.db.Pool.Exec(ctx, sql, args...); err != nil {
		return dberrors.Infrastructure(err, "update last login")
	}
	return nil
}
