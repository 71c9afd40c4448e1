package memstore

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/scriptkeeper/internal/common"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
)

type ProjectRepository struct {
	h *Handle
}

func nameTaken(t *tables, ownerID int64, name string, except int64) bool {
	for id, p := range t.projects {
		if id != except && p.OwnerID == ownerID && p.Name == name {
			return true
		}
	}
	return false
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	err := r.h.write(ctx, func(t *tables) error {
		if _, ok := t.users[project.OwnerID]; !ok {
			return common.ErrorNotFound
		}
		if nameTaken(t, project.OwnerID, project.Name, 0) {
			return fmt.Errorf("project %q: %w", project.Name, common.ErrConflict)
		}
		t.nextProject++
		project.ID = t.nextProject
		t.projects[project.ID] = *project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Project, error) {
	result := make([]*models.Project, 0)
	err := r.h.read(ctx, func(t *tables) error {
		for _, p := range t.projects {
			if p.OwnerID == ownerID {
				result = append(result, &p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(result, func(a, b *models.Project) int { return int(a.ID - b.ID) })
	return result, nil
}

func (r *ProjectRepository) GetOwned(ctx context.Context, id, ownerID int64) (*models.Project, error) {
	var p models.Project
	err := r.h.read(ctx, func(t *tables) error {
		var ok bool
		p, ok = t.projects[id]
		if !ok || p.OwnerID != ownerID {
			return common.ErrorNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) (*models.Project, error) {
	var p models.Project
	err := r.h.write(ctx, func(t *tables) error {
		var ok bool
		p, ok = t.projects[project.ID]
		if !ok || p.OwnerID != project.OwnerID {
			return common.ErrorNotFound
		}
		if nameTaken(t, p.OwnerID, project.Name, p.ID) {
			return fmt.Errorf("project %q: %w", project.Name, common.ErrConflict)
		}
		p.Name = project.Name
		t.projects[p.ID] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes the project and, like the foreign key cascade, its scripts.
func (r *ProjectRepository) Delete(ctx context.Context, id, ownerID int64) error {
	return r.h.write(ctx, func(t *tables) error {
		p, ok := t.projects[id]
		if !ok || p.OwnerID != ownerID {
			return common.ErrorNotFound
		}
		delete(t.projects, id)
		for sid, s := range t.scripts {
			if s.ParentProjectID == id {
				delete(t.scripts, sid)
			}
		}
		return nil
	})
}
