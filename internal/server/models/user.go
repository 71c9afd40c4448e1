package models

import "github.com/shopspring/decimal"

// User is an account row. PasswordHash never leaves the server; the JSON
// view of a user is built by the HTTP layer.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	MoneyBalance decimal.Decimal
	TokenVersion int64
}
