package users

import (
	"context"

	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
	"github.com/shopspring/decimal"
)

// Repository is the user store. Lookups that match nothing return
// common.ErrorNotFound; a duplicate login on Create returns common.ErrConflict.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	IncrementTokenVersion(ctx context.Context, id int64) (int64, error)
	AddMoney(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error)
}
