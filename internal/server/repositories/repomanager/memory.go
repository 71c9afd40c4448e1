package repomanager

import (
	"context"

	"github.com/dmitrijs2005/scriptkeeper/internal/dbx"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/repositories/memstore"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/repositories/projects"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/repositories/scripts"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps everything in process memory. Data does
// not survive a restart.
type InMemoryRepositoryManager struct {
	store *memstore.Store
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{store: memstore.New()}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Conn() dbx.DBTX {
	return m.store.Conn()
}

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn dbx.TxFunc) error {
	return m.store.WithTx(ctx, fn)
}

func (m *InMemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return m.handle(db).Users()
}

func (m *InMemoryRepositoryManager) Projects(db dbx.DBTX) projects.Repository {
	return m.handle(db).Projects()
}

func (m *InMemoryRepositoryManager) Scripts(db dbx.DBTX) scripts.Repository {
	return m.handle(db).Scripts()
}

func (m *InMemoryRepositoryManager) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}

// handle falls back to the shared connection for foreign handles.
func (m *InMemoryRepositoryManager) handle(db dbx.DBTX) *memstore.Handle {
	if h, ok := db.(*memstore.Handle); ok {
		return h
	}
	return m.store.Conn()
}
