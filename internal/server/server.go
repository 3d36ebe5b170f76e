package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"timekeep/internal/model"
	"timekeep/internal/utils"
)

// maxDocumentBytes bounds uploaded documents. Well beyond any realistic
// personal dataset.
const maxDocumentBytes = 4 << 20

// Server wires the HTTP routes onto the store.
type Server struct {
	store  *Store
	secret []byte
}

// NewServer creates a server. The secret signs bearer tokens.
func NewServer(store *Store, secret []byte) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret is required")
	}
	return &Server{store: store, secret: secret}, nil
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("PATCH /auth/name", s.requireAuth(s.handleUpdateName))
	mux.HandleFunc("PATCH /auth/password", s.requireAuth(s.handleUpdatePassword))
	mux.HandleFunc("DELETE /auth/account", s.requireAuth(s.handleDeleteAccount))
	mux.HandleFunc("GET /data/full", s.requireAuth(s.handleGetData))
	mux.HandleFunc("POST /data/full", s.requireAuth(s.handlePutData))
	return mux
}

type authedHandler func(w http.ResponseWriter, r *http.Request, userID string)

// requireAuth extracts and verifies the bearer token before dispatching.
func (s *Server) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "malformed Authorization header")
			return
		}

		userID, err := VerifyToken(s.secret, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "token is invalid or expired")
			return
		}
		next(w, r, userID)
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		writeServerError(w, err)
		return
	}

	record, err := s.store.CreateUser(req.Name, req.Email, hash)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "this email is already registered")
			return
		}
		writeServerError(w, err)
		return
	}

	// New accounts start with a default-shaped document.
	body, _ := json.Marshal(model.DefaultDocument())
	if err := s.store.PutDocument(record.ID, body); err != nil {
		writeServerError(w, err)
		return
	}

	s.writeSession(w, record)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := s.store.UserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			writeError(w, http.StatusBadRequest, "account does not exist")
			return
		}
		writeServerError(w, err)
		return
	}

	if !CheckPassword(record.PasswordHash, req.Password) {
		writeError(w, http.StatusBadRequest, "wrong password")
		return
	}

	s.writeSession(w, record)
}

func (s *Server) writeSession(w http.ResponseWriter, record UserRecord) {
	token, err := MintToken(s.secret, record.ID)
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: record.User(), Token: token})
}

func (s *Server) handleUpdateName(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := s.store.UpdateUserName(userID, req.Name); err != nil {
		s.writeStoreError(w, err)
		return
	}

	record, err := s.store.UserByID(userID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": record.User()})
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		writeServerError(w, err)
		return
	}
	if err := s.store.UpdateUserPassword(userID, hash); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.store.DeleteUser(userID); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request, userID string) {
	body, ok, err := s.store.GetDocument(userID)
	if err != nil {
		writeServerError(w, err)
		return
	}
	if !ok {
		body, _ = json.Marshal(model.DefaultDocument())
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handlePutData(w http.ResponseWriter, r *http.Request, userID string) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(body) > maxDocumentBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "document too large")
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "document must be valid JSON")
		return
	}

	if err := s.store.PutDocument(userID, body); err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeServerError(w, err)
}

func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.Errorf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeServerError(w http.ResponseWriter, err error) {
	utils.Errorf("internal error: %v", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
