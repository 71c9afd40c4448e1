package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/scriptkeeper/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS balances (id INTEGER PRIMARY KEY, amount INTEGER NOT NULL);`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO balances(id, amount) VALUES (1, 0);`)
	require.NoError(t, err)
	return db
}

func amount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT amount FROM balances WHERE id = 1`).Scan(&n))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `UPDATE balances SET amount = amount + 5 WHERE id = 1`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 5, amount(t, db), "must commit on success")
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `UPDATE balances SET amount = amount + 5 WHERE id = 1`)
		require.NoError(t, e)
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, 0, amount(t, db), "must rollback when fn returns error")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, amount(t, db), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `UPDATE balances SET amount = amount + 5 WHERE id = 1`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.Error(t, err, "begin should fail when DB is closed")
}

func TestWithTx_CommitErrorIsStorageError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cause := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(cause)

	err = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.ErrorIs(t, err, common.ErrStorage)
	require.ErrorIs(t, err, cause)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_BeginErrorIsStorageError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	called := false
	err = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, common.ErrStorage)
	require.False(t, called)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_FnErrorIsNotWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	mock.ExpectRollback()

	err = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return common.ErrSelfActionRequired
	})
	require.ErrorIs(t, err, common.ErrSelfActionRequired)
	require.NotErrorIs(t, err, common.ErrStorage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "unique", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "wrapped unique", err: fmt.Errorf("db error: %w", &pgconn.PgError{Code: "23505"}), want: true},
		{name: "fk", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "plain", err: errors.New("x"), want: false},
		{name: "nil", err: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	require.True(t, IsForeignKeyViolation(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23503"})))
	require.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
}

func TestWrap(t *testing.T) {
	require.NoError(t, Wrap(nil))

	cause := errors.New("conn refused")
	err := Wrap(cause)
	require.ErrorIs(t, err, common.ErrStorage)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "db error: conn refused", err.Error())

	pg := &pgconn.PgError{Code: "23505"}
	require.True(t, IsUniqueViolation(Wrap(pg)))
}
