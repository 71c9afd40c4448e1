package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/scriptkeeper/internal/common"
	"github.com/dmitrijs2005/scriptkeeper/internal/dbx"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (login, password_hash)
         VALUES ($1, $2)
		 RETURNING id, money_balance, token_version
		 `

	err := r.db.QueryRowContext(ctx, query, user.Login, user.PasswordHash).
		Scan(&user.ID, &user.MoneyBalance, &user.TokenVersion)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("user %q: %w", user.Login, common.ErrConflict)
		}
		return nil, dbx.Wrap(err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query :=
		`SELECT id, login, password_hash, money_balance, token_version FROM users
		 WHERE id = $1
		 `

	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query :=
		`SELECT id, login, password_hash, money_balance, token_version FROM users
		 WHERE login = $1
		 `

	return r.getOne(ctx, query, login)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Login, &user.PasswordHash, &user.MoneyBalance, &user.TokenVersion)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbx.Wrap(err)
	}

	return user, nil
}

// IncrementTokenVersion bumps token_version in a single statement, which
// invalidates every token issued before the call.
func (r *PostgresRepository) IncrementTokenVersion(ctx context.Context, id int64) (int64, error) {
	query :=
		`UPDATE users SET token_version = token_version + 1
		 WHERE id = $1
		 RETURNING token_version
		 `

	var version int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&version)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, dbx.Wrap(err)
	}

	return version, nil
}

// AddMoney credits amount atomically and returns the new balance.
func (r *PostgresRepository) AddMoney(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	query :=
		`UPDATE users SET money_balance = money_balance + $1
		 WHERE id = $2
		 RETURNING money_balance
		 `

	var balance decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, amount, id).Scan(&balance)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, common.ErrorNotFound
		}
		return decimal.Zero, dbx.Wrap(err)
	}

	return balance, nil
}
