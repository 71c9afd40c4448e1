package scripts

import (
	"context"

	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
)

// Repository stores scripts. Ownership is checked through the parent
// project, so every method takes the requesting owner's id.
type Repository interface {
	Create(ctx context.Context, script *models.Script, ownerID int64) (*models.Script, error)
	ListByProject(ctx context.Context, projectID, ownerID int64) ([]*models.Script, error)
	GetOwned(ctx context.Context, id, projectID, ownerID int64) (*models.Script, error)
	Update(ctx context.Context, script *models.Script, ownerID int64) (*models.Script, error)
	Delete(ctx context.Context, id, projectID, ownerID int64) error
}
