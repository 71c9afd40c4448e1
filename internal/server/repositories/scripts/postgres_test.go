package scripts

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/scriptkeeper/internal/common"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

const (
	insertQ = `(?s)^INSERT\s+INTO\s+scripts\s*\(path,\s*source_code,\s*parent_project_id\)\s*SELECT\s+\$1,\s*\$2,\s*p\.id\s+FROM\s+projects\s+p\s+WHERE\s+p\.id\s*=\s*\$3\s+AND\s+p\.owner_id\s*=\s*\$4\s+RETURNING\s+id\s*$`
	listQ   = `(?s)^SELECT\s+s\.id,.*FROM\s+scripts\s+s\s+JOIN\s+projects\s+p\s+ON\s+p\.id\s*=\s*s\.parent_project_id\s+WHERE\s+p\.id\s*=\s*\$1\s+AND\s+p\.owner_id\s*=\s*\$2\s+ORDER\s+BY\s+s\.id\s*$`
	getQ    = `(?s)^SELECT\s+s\.id,.*FROM\s+scripts\s+s\s+JOIN\s+projects\s+p.*WHERE\s+s\.id\s*=\s*\$1\s+AND\s+p\.id\s*=\s*\$2\s+AND\s+p\.owner_id\s*=\s*\$3\s*$`
	updateQ = `(?s)^UPDATE\s+scripts\s+s\s+SET\s+path\s*=\s*\$1,\s*source_code\s*=\s*\$2\s+FROM\s+projects\s+p\s+WHERE.*p\.owner_id\s*=\s*\$5\s+RETURNING.*$`
	deleteQ = `(?s)^DELETE\s+FROM\s+scripts\s+s\s+USING\s+projects\s+p\s+WHERE.*p\.owner_id\s*=\s*\$3\s*$`
)

var cols = []string{"id", "path", "source_code", "parent_project_id"}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).WithArgs("main.py", "print(1)", int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectQuery(insertQ).WithArgs("main.py", "print(1)", int64(5), int64(2)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(insertQ).WithArgs("main.py", "print(1)", int64(5), int64(1)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	s, err := repo.Create(context.Background(), &models.Script{Path: "main.py", SourceCode: "print(1)", ParentProjectID: 5}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(9), s.ID)

	_, err = repo.Create(context.Background(), &models.Script{Path: "main.py", SourceCode: "print(1)", ParentProjectID: 5}, 2)
	require.ErrorIs(t, err, common.ErrorNotFound, "foreign project must look missing")

	_, err = repo.Create(context.Background(), &models.Script{Path: "main.py", SourceCode: "print(1)", ParentProjectID: 5}, 1)
	require.ErrorIs(t, err, common.ErrConflict)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByProject(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(listQ).WithArgs(int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), "a.py", "x", int64(5)))
	mock.ExpectQuery(listQ).WithArgs(int64(5), int64(1)).
		WillReturnError(errors.New("db down"))

	got, err := repo.ListByProject(context.Background(), 5, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.py", got[0].Path)

	_, err = repo.ListByProject(context.Background(), 5, 1)
	require.ErrorIs(t, err, common.ErrStorage)
}

func TestGetOwned(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(getQ).WithArgs(int64(9), int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(9), "a.py", "x", int64(5)))
	mock.ExpectQuery(getQ).WithArgs(int64(9), int64(5), int64(2)).
		WillReturnError(sql.ErrNoRows)

	s, err := repo.GetOwned(context.Background(), 9, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, &models.Script{ID: 9, Path: "a.py", SourceCode: "x", ParentProjectID: 5}, s)

	_, err = repo.GetOwned(context.Background(), 9, 5, 2)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	in := &models.Script{ID: 9, Path: "b.py", SourceCode: "y", ParentProjectID: 5}
	mock.ExpectQuery(updateQ).WithArgs("b.py", "y", int64(9), int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(9), "b.py", "y", int64(5)))
	mock.ExpectQuery(updateQ).WithArgs("b.py", "y", int64(9), int64(5), int64(2)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(updateQ).WithArgs("b.py", "y", int64(9), int64(5), int64(1)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	s, err := repo.Update(context.Background(), in, 1)
	require.NoError(t, err)
	assert.Equal(t, "y", s.SourceCode)

	_, err = repo.Update(context.Background(), in, 2)
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.Update(context.Background(), in, 1)
	require.ErrorIs(t, err, common.ErrConflict)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(deleteQ).WithArgs(int64(9), int64(5), int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteQ).WithArgs(int64(9), int64(5), int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(deleteQ).WithArgs(int64(9), int64(5), int64(1)).WillReturnError(errors.New("boom"))

	require.NoError(t, repo.Delete(context.Background(), 9, 5, 1))
	require.ErrorIs(t, repo.Delete(context.Background(), 9, 5, 2), common.ErrorNotFound)
	require.ErrorIs(t, repo.Delete(context.Background(), 9, 5, 1), common.ErrStorage)
}
