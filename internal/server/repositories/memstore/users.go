package memstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/scriptkeeper/internal/common"
	"github.com/dmitrijs2005/scriptkeeper/internal/dbx"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
	"github.com/shopspring/decimal"
)

var errNegativeBalance = errors.New("money_balance must not be negative")

type UserRepository struct {
	h *Handle
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.h.write(ctx, func(t *tables) error {
		if _, ok := t.logins[user.Login]; ok {
			return fmt.Errorf("user %q: %w", user.Login, common.ErrConflict)
		}
		t.nextUser++
		user.ID = t.nextUser
		user.MoneyBalance = decimal.Zero
		user.TokenVersion = 0
		t.users[user.ID] = *user
		t.logins[user.Login] = user.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := r.h.read(ctx, func(t *tables) error {
		var ok bool
		if u, ok = t.users[id]; !ok {
			return common.ErrorNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	err := r.h.read(ctx, func(t *tables) error {
		id, ok := t.logins[login]
		if !ok {
			return common.ErrorNotFound
		}
		u = t.users[id]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) IncrementTokenVersion(ctx context.Context, id int64) (int64, error) {
	var version int64
	err := r.h.write(ctx, func(t *tables) error {
		u, ok := t.users[id]
		if !ok {
			return common.ErrorNotFound
		}
		u.TokenVersion++
		t.users[id] = u
		version = u.TokenVersion
		return nil
	})
	return version, err
}

func (r *UserRepository) AddMoney(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	balance := decimal.Zero
	err := r.h.write(ctx, func(t *tables) error {
		u, ok := t.users[id]
		if !ok {
			return common.ErrorNotFound
		}
		next := u.MoneyBalance.Add(amount)
		if next.IsNegative() {
			return dbx.Wrap(errNegativeBalance)
		}
		u.MoneyBalance = next
		t.users[id] = u
		balance = next
		return nil
	})
	return balance, err
}
