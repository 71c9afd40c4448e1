package repomanager

import (
	"context"

	"github.com/dmitrijs2005/scriptkeeper/internal/dbx"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/repositories/projects"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/repositories/scripts"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/repositories/users"
)

// RepositoryManager owns the storage connection and vends repositories
// bound to either the shared connection (Conn) or a transaction handle
// passed to the WithTx callback.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Conn() dbx.DBTX
	WithTx(ctx context.Context, fn dbx.TxFunc) error
	Users(db dbx.DBTX) users.Repository
	Projects(db dbx.DBTX) projects.Repository
	Scripts(db dbx.DBTX) scripts.Repository
	Ping(ctx context.Context) error
	Close() error
}
