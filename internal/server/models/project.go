package models

// Project is a named container of scripts owned by exactly one user.
type Project struct {
	ID      int64
	Name    string
	OwnerID int64
}
