package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
)

type projectRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type projectResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"owner_id"`
}

func newProjectResponse(p *models.Project) projectResponse {
	return projectResponse{ID: p.ID, Name: p.Name, OwnerID: p.OwnerID}
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err, subjectProject)
		return
	}

	p, err := s.projects.Create(r.Context(), currentUser(r), req.Name)
	if err != nil {
		s.writeError(w, r, err, subjectProject)
		return
	}
	writeJSON(w, http.StatusOK, newProjectResponse(p))
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.projects.List(r.Context(), currentUser(r))
	if err != nil {
		s.writeError(w, r, err, subjectProject)
		return
	}

	resp := make([]projectResponse, 0, len(list))
	for _, p := range list {
		resp = append(resp, newProjectResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err, subjectProject)
		return
	}

	p, err := s.projects.Get(r.Context(), currentUser(r), id)
	if err != nil {
		s.writeError(w, r, err, subjectProject)
		return
	}
	writeJSON(w, http.StatusOK, newProjectResponse(p))
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err, subjectProject)
		return
	}

	var req projectRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err, subjectProject)
		return
	}

	p, err := s.projects.Update(r.Context(), currentUser(r), id, req.Name)
	if err != nil {
		s.writeError(w, r, err, subjectProject)
		return
	}
	writeJSON(w, http.StatusOK, newProjectResponse(p))
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err, subjectProject)
		return
	}

	if err := s.projects.Delete(r.Context(), currentUser(r), id); err != nil {
		s.writeError(w, r, err, subjectProject)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
