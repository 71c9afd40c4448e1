package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/scriptkeeper/internal/common"
)

// maxBodyBytes caps request bodies. Script sources are the largest payload.
const maxBodyBytes = 1 << 20

type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

// subject names the resource a handler works on. It decides the wording of
// 404 and 409 responses.
type subject string

const (
	subjectUser    subject = "User"
	subjectProject subject = "Project"
	subjectScript  subject = "Script"
)

var conflictField = map[subject]string{
	subjectUser:    "login",
	subjectProject: "name",
	subjectScript:  "path",
}

// authErrors lists the authentication failures with their response detail.
var authErrors = []struct {
	err    error
	detail string
}{
	{common.ErrUnauthenticated, "Not authenticated"},
	{common.ErrInvalidCredentials, "Invalid login or password"},
	{common.ErrInvalidToken, "Invalid token"},
	{common.ErrTokenExpired, "Token expired"},
	{common.ErrInvalidTokenType, "Invalid token type"},
	{common.ErrTokenRevoked, "Token revoked"},
	{common.ErrUserNotFound, "User not found"},
}

// authFailure reports whether err is an authentication failure, with the
// sentinel message used as log reason and the response detail.
func authFailure(err error) (reason, detail string, ok bool) {
	for _, e := range authErrors {
		if errors.Is(err, e.err) {
			return e.err.Error(), e.detail, true
		}
	}
	return "", "", false
}

// writeError maps a service error to a status code and a {"detail"} body.
// Unknown errors are logged and reported as 500 without leaking internals.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, subj subject) {
	ctx := r.Context()

	if reason, detail, ok := authFailure(err); ok {
		s.logger.Warn(ctx, "authentication failed", "reason", reason, "path", r.URL.Path)
		w.Header().Set("WWW-Authenticate", common.BearerScheme)
		writeDetail(w, http.StatusUnauthorized, detail)
		return
	}

	switch {
	case errors.Is(err, common.ErrValidation):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrSelfActionRequired):
		writeDetail(w, http.StatusForbidden, "This action can only be performed on your own account")
	case errors.Is(err, common.ErrorNotFound):
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("%s not found", subj))
	case errors.Is(err, common.ErrConflict):
		writeDetail(w, http.StatusConflict, fmt.Sprintf("%s with this %s already exists", subj, conflictField[subj]))
	case errors.Is(err, common.ErrStorage):
		s.logger.Error(ctx, "storage failure", "error", err.Error(), "path", r.URL.Path)
		writeDetail(w, http.StatusInternalServerError, "Database error occurred")
	default:
		s.logger.Error(ctx, "request failed", "error", err.Error(), "path", r.URL.Path)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeBody reads a JSON body into dst and validates it. Any failure is
// wrapped in common.ErrValidation.
func (s *Server) decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body", common.ErrValidation)
	}
	return validateStruct(dst)
}
