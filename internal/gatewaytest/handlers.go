package gatewaytest

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/keyconsole/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	username, hash := s.username, s.passwordHash
	s.mu.Unlock()

	if req.Username != username || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{Token: s.IssueToken()})
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var summary models.DashboardSummary
	for _, k := range s.keys {
		summary.TotalAPIKeys++
		summary.TotalRequests += k.TotalRequests
		summary.TotalTokens += k.TotalInputTokens + k.TotalOutputTokens
		if k.IsActive {
			summary.ActiveKeys++
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) listKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.APIKeyList{APIKeys: s.Keys()})
}

func (s *Server) createKey(w http.ResponseWriter, r *http.Request) {
	var req models.CreateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.KeyName = strings.TrimSpace(req.KeyName)
	if req.KeyName == "" {
		writeError(w, http.StatusBadRequest, "key_name is required")
		return
	}

	generated := req.APIKey == ""
	secret := req.APIKey
	if generated {
		secret = generateSecret()
	}

	s.mu.Lock()
	for _, k := range s.keys {
		if k.KeyName == req.KeyName {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "key name already exists")
			return
		}
	}
	key := models.APIKey{
		ID:        uuid.NewString(),
		KeyName:   req.KeyName,
		APIKey:    secret,
		IsActive:  true,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	s.keys = append(s.keys, key)
	s.mu.Unlock()

	// The secret is only echoed back when the server chose it.
	if !generated {
		key.APIKey = ""
	}
	writeJSON(w, http.StatusCreated, key)
}

func (s *Server) getKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.keys {
		if k.ID == id {
			writeJSON(w, http.StatusOK, k)
			return
		}
	}
	writeError(w, http.StatusNotFound, "api key not found")
}

func (s *Server) updateKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.KeyName = strings.TrimSpace(req.KeyName)
	if req.KeyName == "" {
		writeError(w, http.StatusBadRequest, "key_name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.keys {
		if s.keys[i].ID == id {
			s.keys[i].KeyName = req.KeyName
			s.keys[i].IsActive = req.IsActive
			writeJSON(w, http.StatusOK, s.keys[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "api key not found")
}

func (s *Server) deleteKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.keys {
		if s.keys[i].ID == id {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "api key not found")
}
