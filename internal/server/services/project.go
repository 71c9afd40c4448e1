package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/repositories/repomanager"
)

// ProjectService implements owner-scoped project CRUD. A project owned by
// someone else is reported exactly like a missing one.
type ProjectService struct {
	repomanager repomanager.RepositoryManager
}

func NewProjectService(m repomanager.RepositoryManager) *ProjectService {
	return &ProjectService{repomanager: m}
}

func (s *ProjectService) Create(ctx context.Context, owner *models.User, name string) (*models.Project, error) {
	repo := s.repomanager.Projects(s.repomanager.Conn())
	p, err := repo.Create(ctx, &models.Project{Name: name, OwnerID: owner.ID})
	if err != nil {
		return nil, fmt.Errorf("error creating project: %w", err)
	}
	return p, nil
}

func (s *ProjectService) List(ctx context.Context, owner *models.User) ([]*models.Project, error) {
	return s.repomanager.Projects(s.repomanager.Conn()).ListByOwner(ctx, owner.ID)
}

func (s *ProjectService) Get(ctx context.Context, owner *models.User, id int64) (*models.Project, error) {
	return s.repomanager.Projects(s.repomanager.Conn()).GetOwned(ctx, id, owner.ID)
}

func (s *ProjectService) Update(ctx context.Context, owner *models.User, id int64, name string) (*models.Project, error) {
	repo := s.repomanager.Projects(s.repomanager.Conn())
	p, err := repo.Update(ctx, &models.Project{ID: id, Name: name, OwnerID: owner.ID})
	if err != nil {
		return nil, fmt.Errorf("error updating project: %w", err)
	}
	return p, nil
}

// Delete removes the project together with its scripts.
func (s *ProjectService) Delete(ctx context.Context, owner *models.User, id int64) error {
	return s.repomanager.Projects(s.repomanager.Conn()).Delete(ctx, id, owner.ID)
}
