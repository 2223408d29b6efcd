// Package server implements the card service the flip CLI talks to:
// account registration, token sign-in, and per-user card CRUD.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"tableflip.dev/flip/pkg/card"
)

// Server bundles the router, storage and token settings.
type Server struct {
	cfg     *Config
	log     zerolog.Logger
	storage *Storage
}

// New builds a Server on top of an open Storage.
func New(cfg *Config, log zerolog.Logger, storage *Storage) *Server {
	return &Server{cfg: cfg, log: log, storage: storage}
}

// Router wires up all routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)

	r.HandleFunc("/v1/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/v1/login", s.handleLogin).Methods(http.MethodPost)

	cards := r.PathPrefix("/v1/cards").Subrouter()
	cards.Use(s.requireUser)
	cards.HandleFunc("", s.handleListCards).Methods(http.MethodGet)
	cards.HandleFunc("", s.handleCreateCard).Methods(http.MethodPost)
	cards.HandleFunc("/{id}", s.handleUpdateCard).Methods(http.MethodPut)
	cards.HandleFunc("/{id}", s.handleDeleteCard).Methods(http.MethodDelete)

	r.Use(s.logRequests)
	return r
}

// ListenAndServe runs the service until the listener fails.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.cfg.Addr).Str("data", s.cfg.DataDir).Msg("card service listening")
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		s.writeError(w, http.StatusBadRequest, "username and password required")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "hash password")
		return
	}
	acct, err := s.storage.Register(req.Username, string(hash))
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			s.writeError(w, http.StatusConflict, "user already exists")
			return
		}
		s.log.Error().Err(err).Msg("register")
		s.writeError(w, http.StatusInternalServerError, "register")
		return
	}
	s.log.Info().Str("user", acct.Name).Msg("registered")
	s.writeJSON(w, http.StatusCreated, userResponse{ID: acct.ID, Name: acct.Name})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	acct, err := s.storage.Lookup(req.Username)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.Hash), []byte(req.Password)) != nil {
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := s.issueToken(acct)
	if err != nil {
		s.log.Error().Err(err).Msg("issue token")
		s.writeError(w, http.StatusInternalServerError, "issue token")
		return
	}
	s.writeJSON(w, http.StatusOK, loginResponse{
		Token: token,
		User:  userResponse{ID: acct.ID, Name: acct.Name},
	})
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	cards, err := s.storage.ListCards(r.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Str("user", userID).Msg("list cards")
		s.writeError(w, http.StatusInternalServerError, "list cards")
		return
	}
	s.writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	var draft card.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !draft.Valid() {
		s.writeError(w, http.StatusBadRequest, "front and back required")
		return
	}
	c, err := s.storage.CreateCard(userID, draft)
	if err != nil {
		s.log.Error().Err(err).Str("user", userID).Msg("create card")
		s.writeError(w, http.StatusInternalServerError, "create card")
		return
	}
	s.writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	cardID := mux.Vars(r)["id"]
	var draft card.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !draft.Valid() {
		s.writeError(w, http.StatusBadRequest, "front and back required")
		return
	}
	if err := s.storage.UpdateCard(userID, cardID, draft); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "card not found")
			return
		}
		s.log.Error().Err(err).Str("user", userID).Str("card", cardID).Msg("update card")
		s.writeError(w, http.StatusInternalServerError, "update card")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	cardID := mux.Vars(r)["id"]
	if err := s.storage.DeleteCard(userID, cardID); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "card not found")
			return
		}
		s.log.Error().Err(err).Str("user", userID).Str("card", cardID).Msg("delete card")
		s.writeError(w, http.StatusInternalServerError, "delete card")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
