package projects

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

func (r *PostgresRepository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	query :=
		`INSERT INTO projects (name, owner_id)
		 VALUES ($1, $2)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, project.Name, project.OwnerID).Scan(&project.ID)
	if err != nil {
		return nil, translate(err, project.Name)
	}

	return project, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Project, error) {
	query :=
		`SELECT id, name, owner_id FROM projects
		 WHERE owner_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, dbx.Wrap(err)
	}
	defer rows.Close()

	result := make([]*models.Project, 0)
	for rows.Next() {
		p := &models.Project{}
		if err := rows.Scan(&p.ID, &p.Name, &p.OwnerID); err != nil {
			return nil, dbx.Wrap(err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Wrap(err)
	}

	return result, nil
}

func (r *PostgresRepository) GetOwned(ctx context.Context, id, ownerID int64) (*models.Project, error) {
	query :=
		`SELECT id, name, owner_id FROM projects
		 WHERE id = $1 AND owner_id = $2
		 `

	p := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(&p.ID, &p.Name, &p.OwnerID)
	if err != nil {
		return nil, translate(err, "")
	}

	return p, nil
}

// Update renames project. project.OwnerID is part of the predicate.
func (r *PostgresRepository) Update(ctx context.Context, project *models.Project) (*models.Project, error) {
	query :=
		`UPDATE projects SET name = $1
		 WHERE id = $2 AND owner_id = $3
		 RETURNING id, name, owner_id
		 `

	p := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, project.Name, project.ID, project.OwnerID).
		Scan(&p.ID, &p.Name, &p.OwnerID)
	if err != nil {
		return nil, translate(err, project.Name)
	}

	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID int64) error {
	query :=
		`DELETE FROM projects
		 WHERE id = $1 AND owner_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
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

func translate(err error, name string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case dbx.IsForeignKeyViolation(err):
		// owner row is gone
		return common.ErrorNotFound
	case dbx.IsUniqueViolation(err):
		return fmt.Errorf("project %q: %w", name, common.ErrConflict)
	default:
		return dbx.Wrap(err)
	}
}
