package memstore

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/scriptkeeper/internal/common"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
)

type ScriptRepository struct {
	h *Handle
}

func ownsProject(t *tables, projectID, ownerID int64) bool {
	p, ok := t.projects[projectID]
	return ok && p.OwnerID == ownerID
}

func pathTaken(t *tables, projectID int64, path string, except int64) bool {
	for id, s := range t.scripts {
		if id != except && s.ParentProjectID == projectID && s.Path == path {
			return true
		}
	}
	return false
}

func (r *ScriptRepository) Create(ctx context.Context, script *models.Script, ownerID int64) (*models.Script, error) {
	err := r.h.write(ctx, func(t *tables) error {
		if !ownsProject(t, script.ParentProjectID, ownerID) {
			return common.ErrorNotFound
		}
		if pathTaken(t, script.ParentProjectID, script.Path, 0) {
			return fmt.Errorf("script %q: %w", script.Path, common.ErrConflict)
		}
		t.nextScript++
		script.ID = t.nextScript
		t.scripts[script.ID] = *script
		return nil
	})
	if err != nil {
		return nil, err
	}
	return script, nil
}

func (r *ScriptRepository) ListByProject(ctx context.Context, projectID, ownerID int64) ([]*models.Script, error) {
	result := make([]*models.Script, 0)
	err := r.h.read(ctx, func(t *tables) error {
		if !ownsProject(t, projectID, ownerID) {
			return nil
		}
		for _, s := range t.scripts {
			if s.ParentProjectID == projectID {
				result = append(result, &s)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(result, func(a, b *models.Script) int { return int(a.ID - b.ID) })
	return result, nil
}

func (r *ScriptRepository) GetOwned(ctx context.Context, id, projectID, ownerID int64) (*models.Script, error) {
	var s models.Script
	err := r.h.read(ctx, func(t *tables) error {
		var ok bool
		s, ok = t.scripts[id]
		if !ok || s.ParentProjectID != projectID || !ownsProject(t, projectID, ownerID) {
			return common.ErrorNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ScriptRepository) Update(ctx context.Context, script *models.Script, ownerID int64) (*models.Script, error) {
	var s models.Script
	err := r.h.write(ctx, func(t *tables) error {
		var ok bool
		s, ok = t.scripts[script.ID]
		if !ok || s.ParentProjectID != script.ParentProjectID || !ownsProject(t, s.ParentProjectID, ownerID) {
			return common.ErrorNotFound
		}
		if pathTaken(t, s.ParentProjectID, script.Path, s.ID) {
			return fmt.Errorf("script %q: %w", script.Path, common.ErrConflict)
		}
		s.Path = script.Path
		s.SourceCode = script.SourceCode
		t.scripts[s.ID] = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ScriptRepository) Delete(ctx context.Context, id, projectID, ownerID int64) error {
	return r.h.write(ctx, func(t *tables) error {
		s, ok := t.scripts[id]
		if !ok || s.ParentProjectID != projectID || !ownsProject(t, projectID, ownerID) {
			return common.ErrorNotFound
		}
		delete(t.scripts, id)
		return nil
	})
}
