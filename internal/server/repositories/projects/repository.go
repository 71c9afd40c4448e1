package projects

import (
	"context"

	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
)

// Repository stores projects. Every method except Create is scoped to an
// owner: a project owned by someone else behaves exactly like a missing one
// and yields common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Project, error)
	GetOwned(ctx context.Context, id, ownerID int64) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) (*models.Project, error)
	Delete(ctx context.Context, id, ownerID int64) error
}
