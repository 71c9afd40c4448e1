// Package memstore is an in-process implementation of the user, project
// and script repositories. It backs the "memory" storage mode and the
// service and HTTP tests.
//
// Writers are serialized. A transaction holds the writer lock for its whole
// duration and works on a private copy of all tables, which replaces the
// live tables only on commit. Readers outside the transaction never see
// its writes before that, and an aborted transaction leaves no trace.
package memstore

import (
	"context"
	"database/sql"
	"errors"
	"maps"
	"sync"

	"github.com/dmitrijs2005/scriptkeeper/internal/dbx"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
)

var errNoSQL = errors.New("memstore: handle does not execute SQL")

type tables struct {
	users    map[int64]models.User
	logins   map[string]int64
	projects map[int64]models.Project
	scripts  map[int64]models.Script

	nextUser, nextProject, nextScript int64
}

func (t *tables) clone() *tables {
	c := *t
	c.users = maps.Clone(t.users)
	c.logins = maps.Clone(t.logins)
	c.projects = maps.Clone(t.projects)
	c.scripts = maps.Clone(t.scripts)
	return &c
}

type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	t    *tables
}

func New() *Store {
	return &Store{t: &tables{
		users:    make(map[int64]models.User),
		logins:   make(map[string]int64),
		projects: make(map[int64]models.Project),
		scripts:  make(map[int64]models.Script),
	}}
}

// Conn returns a non-transactional handle.
func (s *Store) Conn() *Handle {
	return &Handle{s: s}
}

// WithTx runs fn inside a transaction. The transaction rolls back when fn
// fails, panics, or ctx is done by the time fn returns.
func (s *Store) WithTx(ctx context.Context, fn dbx.TxFunc) (err error) {
	if err := ctx.Err(); err != nil {
		return dbx.Wrap(err)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.t.clone()
	s.mu.RUnlock()

	// a panic or an error drops work
	if err = fn(ctx, &Handle{s: s, work: work}); err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return dbx.Wrap(err)
	}

	s.mu.Lock()
	s.t = work
	s.mu.Unlock()
	return nil
}

// Handle satisfies dbx.DBTX so it can travel through the same code paths
// as *sql.DB and *sql.Tx. Its SQL methods always fail; the repositories
// returned by Users, Projects and Scripts work on the maps directly.
// A transactional handle carries its private tables in work.
type Handle struct {
	s    *Store
	work *tables
	mu   sync.Mutex
}

func (h *Handle) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errNoSQL
}

func (h *Handle) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errNoSQL
}

// QueryRowContext always returns nil.
func (h *Handle) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func (h *Handle) Users() *UserRepository       { return &UserRepository{h: h} }
func (h *Handle) Projects() *ProjectRepository { return &ProjectRepository{h: h} }
func (h *Handle) Scripts() *ScriptRepository   { return &ScriptRepository{h: h} }

// write applies fn. Outside a transaction it works on a copy, so a failing
// fn leaves the live tables untouched.
func (h *Handle) write(ctx context.Context, fn func(t *tables) error) error {
	if err := ctx.Err(); err != nil {
		return dbx.Wrap(err)
	}
	if h.work != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
		return fn(h.work)
	}

	h.s.txMu.Lock()
	defer h.s.txMu.Unlock()

	h.s.mu.RLock()
	next := h.s.t.clone()
	h.s.mu.RUnlock()

	if err := fn(next); err != nil {
		return err
	}
	h.s.mu.Lock()
	h.s.t = next
	h.s.mu.Unlock()
	return nil
}

func (h *Handle) read(ctx context.Context, fn func(t *tables) error) error {
	if err := ctx.Err(); err != nil {
		return dbx.Wrap(err)
	}
	if h.work != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
		return fn(h.work)
	}
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	return fn(h.s.t)
}
