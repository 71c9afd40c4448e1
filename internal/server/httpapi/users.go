package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/scriptkeeper/internal/common"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/auth"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type credentialsRequest struct {
	Login    string `json:"login" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=255"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type verifyRequest struct {
	Token string `json:"token" validate:"required"`
}

type addMoneyRequest struct {
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

type userResponse struct {
	ID           int64           `json:"id"`
	Login        string          `json:"login"`
	MoneyBalance decimal.Decimal `json:"money_balance"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Login: u.Login, MoneyBalance: u.MoneyBalance}
}

type verifyResponse struct {
	Detail    string         `json:"detail"`
	UserID    int64          `json:"user_id"`
	TokenType auth.TokenType `json:"token_type"`
}

type addMoneyResponse struct {
	Detail       string          `json:"detail"`
	MoneyBalance decimal.Decimal `json:"money_balance"`
}

// pathID parses a numeric route variable. The router already restricts
// it to digits, so only overflow can fail here.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", common.ErrValidation, name)
	}
	return id, nil
}

// currentUser returns the user placed in the context by authenticate.
func currentUser(r *http.Request) *models.User {
	u, _ := auth.UserFromContext(r.Context())
	return u
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err, subjectUser)
		return
	}

	user, err := s.users.Register(r.Context(), req.Login, req.Password)
	if err != nil {
		s.writeError(w, r, err, subjectUser)
		return
	}
	s.logger.Info(r.Context(), "user registered", "user_id", user.ID)
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err, subjectUser)
		return
	}

	pair, err := s.users.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		s.writeError(w, r, err, subjectUser)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err, subjectUser)
		return
	}

	pair, err := s.users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err, subjectUser)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err, subjectUser)
		return
	}

	user, typ, err := s.users.Verify(r.Context(), req.Token)
	if err != nil {
		s.writeError(w, r, err, subjectUser)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{Detail: "Token is valid", UserID: user.ID, TokenType: typ})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newUserResponse(currentUser(r)))
}

func (s *Server) handleRevokeTokens(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err, subjectUser)
		return
	}

	if err := s.users.RevokeTokens(r.Context(), currentUser(r), id); err != nil {
		s.writeError(w, r, err, subjectUser)
		return
	}
	s.logger.Info(r.Context(), "tokens revoked", "user_id", id)
	writeDetail(w, http.StatusOK, "Tokens revoked")
}

func (s *Server) handleAddMoney(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err, subjectUser)
		return
	}

	// ownership is checked before the body so that a foreign id is 403
	// whatever the payload
	if err := auth.RequireSelf(currentUser(r), id); err != nil {
		s.writeError(w, r, err, subjectUser)
		return
	}

	var req addMoneyRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err, subjectUser)
		return
	}

	balance, err := s.users.AddMoney(r.Context(), currentUser(r), id, *req.Amount)
	if err != nil {
		s.writeError(w, r, err, subjectUser)
		return
	}
	writeJSON(w, http.StatusOK, addMoneyResponse{Detail: "Money added", MoneyBalance: balance})
}
