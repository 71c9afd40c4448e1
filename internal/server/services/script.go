package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/scriptkeeper/internal/dbx"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/repositories/repomanager"
)

// ScriptService implements script CRUD below a project. Ownership is
// always checked through the parent project.
type ScriptService struct {
	repomanager repomanager.RepositoryManager
}

func NewScriptService(m repomanager.RepositoryManager) *ScriptService {
	return &ScriptService{repomanager: m}
}

// Create adds a script to projectID. A project the owner does not have
// yields common.ErrorNotFound and nothing is written.
func (s *ScriptService) Create(ctx context.Context, owner *models.User, projectID int64, path, source string) (*models.Script, error) {
	repo := s.repomanager.Scripts(s.repomanager.Conn())
	sc, err := repo.Create(ctx, &models.Script{Path: path, SourceCode: source, ParentProjectID: projectID}, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("error creating script: %w", err)
	}
	return sc, nil
}

// List returns the project's scripts. An unknown or foreign project is
// common.ErrorNotFound rather than an empty list.
func (s *ScriptService) List(ctx context.Context, owner *models.User, projectID int64) ([]*models.Script, error) {
	var result []*models.Script
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Projects(tx).GetOwned(ctx, projectID, owner.ID); err != nil {
			return err
		}
		var err error
		result, err = s.repomanager.Scripts(tx).ListByProject(ctx, projectID, owner.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ScriptService) Get(ctx context.Context, owner *models.User, projectID, id int64) (*models.Script, error) {
	return s.repomanager.Scripts(s.repomanager.Conn()).GetOwned(ctx, id, projectID, owner.ID)
}

func (s *ScriptService) Update(ctx context.Context, owner *models.User, projectID, id int64, path, source string) (*models.Script, error) {
	repo := s.repomanager.Scripts(s.repomanager.Conn())
	sc, err := repo.Update(ctx, &models.Script{ID: id, Path: path, SourceCode: source, ParentProjectID: projectID}, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("error updating script: %w", err)
	}
	return sc, nil
}

func (s *ScriptService) Delete(ctx context.Context, owner *models.User, projectID, id int64) error {
	return s.repomanager.Scripts(s.repomanager.Conn()).Delete(ctx, id, projectID, owner.ID)
}
