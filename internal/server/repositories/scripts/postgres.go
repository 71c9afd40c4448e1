package scripts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/scriptkeeper/internal/common"
	"github.com/dmitrijs2005/scriptkeeper/internal/dbx"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts script under its parent project only if ownerID owns it.
// Otherwise nothing is written and common.ErrorNotFound is returned.
func (r *PostgresRepository) Create(ctx context.Context, script *models.Script, ownerID int64) (*models.Script, error) {
	query :=
		`INSERT INTO scripts (path, source_code, parent_project_id)
		 SELECT $1, $2, p.id FROM projects p
		 WHERE p.id = $3 AND p.owner_id = $4
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, script.Path, script.SourceCode, script.ParentProjectID, ownerID).
		Scan(&script.ID)
	if err != nil {
		return nil, translate(err, script.Path)
	}

	return script, nil
}

func (r *PostgresRepository) ListByProject(ctx context.Context, projectID, ownerID int64) ([]*models.Script, error) {
	query :=
		`SELECT s.id, s.path, s.source_code, s.parent_project_id
		 FROM scripts s JOIN projects p ON p.id = s.parent_project_id
		 WHERE p.id = $1 AND p.owner_id = $2
		 ORDER BY s.id
		 `

	rows, err := r.db.QueryContext(ctx, query, projectID, ownerID)
	if err != nil {
		return nil, dbx.Wrap(err)
	}
	defer rows.Close()

	result := make([]*models.Script, 0)
	for rows.Next() {
		s := &models.Script{}
		if err := rows.Scan(&s.ID, &s.Path, &s.SourceCode, &s.ParentProjectID); err != nil {
			return nil, dbx.Wrap(err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Wrap(err)
	}

	return result, nil
}

func (r *PostgresRepository) GetOwned(ctx context.Context, id, projectID, ownerID int64) (*models.Script, error) {
	query :=
		`SELECT s.id, s.path, s.source_code, s.parent_project_id
		 FROM scripts s JOIN projects p ON p.id = s.parent_project_id
		 WHERE s.id = $1 AND p.id = $2 AND p.owner_id = $3
		 `

	s := &models.Script{}
	err := r.db.QueryRowContext(ctx, query, id, projectID, ownerID).
		Scan(&s.ID, &s.Path, &s.SourceCode, &s.ParentProjectID)
	if err != nil {
		return nil, translate(err, "")
	}

	return s, nil
}

func (r *PostgresRepository) Update(ctx context.Context, script *models.Script, ownerID int64) (*models.Script, error) {
	query :=
		`UPDATE scripts s SET path = $1, source_code = $2
		 FROM projects p
		 WHERE s.id = $3 AND s.parent_project_id = $4
		   AND p.id = s.parent_project_id AND p.owner_id = $5
		 RETURNING s.id, s.path, s.source_code, s.parent_project_id
		 `

	s := &models.Script{}
	err := r.db.QueryRowContext(ctx, query, script.Path, script.SourceCode, script.ID, script.ParentProjectID, ownerID).
		Scan(&s.ID, &s.Path, &s.SourceCode, &s.ParentProjectID)
	if err != nil {
		return nil, translate(err, script.Path)
	}

	return s, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, projectID, ownerID int64) error {
	query :=
		`DELETE FROM scripts s
		 USING projects p
		 WHERE s.id = $1 AND s.parent_project_id = $2
		   AND p.id = s.parent_project_id AND p.owner_id = $3
		 `

	res, err := r.db.ExecContext(ctx, query, id, projectID, ownerID)
	if err != nil {
		return dbx.Wrap(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return dbx.Wrap(err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func translate(err error, path string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case dbx.IsUniqueViolation(err):
		return fmt.Errorf("script %q: %w", path, common.ErrConflict)
	default:
		return dbx.Wrap(err)
	}
}
