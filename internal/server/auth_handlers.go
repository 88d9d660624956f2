package server

import (
	"net/http"

	"todo-api/internal/models"
	"todo-api/internal/validation"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := s.decode(w, r, validation.RegisterUser, &req); err != nil {
		fail(w, r, err, nil)
		return
	}

	user, err := s.auth.Register(r.Context(), req)
	if err != nil {
		fail(w, r, err, errMessages{http.StatusConflict: "email already registered"})
		return
	}
	writeJSON(w, http.StatusCreated, user.Public())
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := s.decode(w, r, validation.SignIn, &req); err != nil {
		fail(w, r, err, nil)
		return
	}

	pair, err := s.auth.SignIn(r.Context(), req)
	if err != nil {
		fail(w, r, err, errMessages{http.StatusUnauthorized: "invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := s.decode(w, r, validation.RefreshToken, &req); err != nil {
		fail(w, r, err, nil)
		return
	}

	pair, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		fail(w, r, err, errMessages{http.StatusUnauthorized: "invalid or expired refresh token"})
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r).Public())
}
