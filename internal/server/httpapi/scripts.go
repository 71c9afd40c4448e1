package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/scriptkeeper/internal/common"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
)

type scriptRequest struct {
	Path       string `json:"path" validate:"required,max=255"`
	SourceCode string `json:"source_code"`
}

type scriptResponse struct {
	ID              int64  `json:"id"`
	Path            string `json:"path"`
	SourceCode      string `json:"source_code"`
	ParentProjectID int64  `json:"parent_project_id"`
}

func newScriptResponse(sc *models.Script) scriptResponse {
	return scriptResponse{ID: sc.ID, Path: sc.Path, SourceCode: sc.SourceCode, ParentProjectID: sc.ParentProjectID}
}

// scriptIDs extracts the project id and, when withScript is set, the
// script id from the route.
func scriptIDs(r *http.Request, withScript bool) (projectID, scriptID int64, err error) {
	if projectID, err = pathID(r, "id"); err != nil {
		return 0, 0, err
	}
	if withScript {
		if scriptID, err = pathID(r, "sid"); err != nil {
			return 0, 0, err
		}
	}
	return projectID, scriptID, nil
}

func (s *Server) handleCreateScript(w http.ResponseWriter, r *http.Request) {
	projectID, _, err := scriptIDs(r, false)
	if err != nil {
		s.writeError(w, r, err, subjectScript)
		return
	}

	var req scriptRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err, subjectScript)
		return
	}

	sc, err := s.scripts.Create(r.Context(), currentUser(r), projectID, req.Path, req.SourceCode)
	if err != nil {
		subj := subjectScript
		if errors.Is(err, common.ErrorNotFound) {
			// the only thing that can be missing on create is the project
			subj = subjectProject
		}
		s.writeError(w, r, err, subj)
		return
	}
	writeJSON(w, http.StatusOK, newScriptResponse(sc))
}

func (s *Server) handleListScripts(w http.ResponseWriter, r *http.Request) {
	projectID, _, err := scriptIDs(r, false)
	if err != nil {
		s.writeError(w, r, err, subjectProject)
		return
	}

	list, err := s.scripts.List(r.Context(), currentUser(r), projectID)
	if err != nil {
		s.writeError(w, r, err, subjectProject)
		return
	}

	resp := make([]scriptResponse, 0, len(list))
	for _, sc := range list {
		resp = append(resp, newScriptResponse(sc))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetScript(w http.ResponseWriter, r *http.Request) {
	projectID, id, err := scriptIDs(r, true)
	if err != nil {
		s.writeError(w, r, err, subjectScript)
		return
	}

	sc, err := s.scripts.Get(r.Context(), currentUser(r), projectID, id)
	if err != nil {
		s.writeError(w, r, err, subjectScript)
		return
	}
	writeJSON(w, http.StatusOK, newScriptResponse(sc))
}

func (s *Server) handleUpdateScript(w http.ResponseWriter, r *http.Request) {
	projectID, id, err := scriptIDs(r, true)
	if err != nil {
		s.writeError(w, r, err, subjectScript)
		return
	}

	var req scriptRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err, subjectScript)
		return
	}

	sc, err := s.scripts.Update(r.Context(), currentUser(r), projectID, id, req.Path, req.SourceCode)
	if err != nil {
		s.writeError(w, r, err, subjectScript)
		return
	}
	writeJSON(w, http.StatusOK, newScriptResponse(sc))
}

func (s *Server) handleDeleteScript(w http.ResponseWriter, r *http.Request) {
	projectID, id, err := scriptIDs(r, true)
	if err != nil {
		s.writeError(w, r, err, subjectScript)
		return
	}

	if err := s.scripts.Delete(r.Context(), currentUser(r), projectID, id); err != nil {
		s.writeError(w, r, err, subjectScript)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
