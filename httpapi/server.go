// Package httpapi exposes the REST surface consumed alongside the socket:
// account endpoints, conversation listing, message history, and the
// notification feed.
package httpapi

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"connectrix/auth"
	"connectrix/contract"
	"connectrix/domain"
	"connectrix/errors"
	"connectrix/repositories"
	"connectrix/services"
)

type Server struct {
	log                *slog.Logger
	chats              contract.IChatReader
	accounts           services.IAccountService
	notifications      repositories.INotificationRepository
	limitMessages      int
	notificationWindow int
	// devMode switches error bodies from generic to detailed.
	devMode bool
}

func NewServer(log *slog.Logger, chats contract.IChatReader,
	accounts services.IAccountService, notifications repositories.INotificationRepository,
	limitMessages, notificationWindow int, devMode bool) *Server {
	return &Server{
		log:                log,
		chats:              chats,
		accounts:           accounts,
		notifications:      notifications,
		limitMessages:      limitMessages,
		notificationWindow: notificationWindow,
		devMode:            devMode,
	}
}

// Register mounts the API routes on the given mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/users/google", s.handleUpsertUser)
	mux.HandleFunc("POST /api/users/local", s.handleRegister)
	mux.HandleFunc("POST /api/users/login", s.handleLogin)
	mux.HandleFunc("GET /api/chats/{userId}", s.handleListChats)
	mux.HandleFunc("GET /api/messages/{chatId}", s.handleListMessages)
	mux.HandleFunc("GET /api/notifications/{userId}", s.handleListNotifications)
}

func (s *Server) handleUpsertUser(w http.ResponseWriter, r *http.Request) {
	var req auth.UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed body", err)
		return
	}

	user, token, err := s.accounts.Upsert(req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "upsert failed", err)
		return
	}
	s.writeSession(w, user, token)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed body", err)
		return
	}

	user, token, err := s.accounts.Register(req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "registration failed", err)
		return
	}
	s.writeSession(w, user, token)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed body", err)
		return
	}

	user, token, err := s.accounts.Login(req)
	if stderrors.Is(err, errors.ErrInvalidCredentials) {
		s.writeError(w, http.StatusUnauthorized, "invalid credentials", err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "login failed", err)
		return
	}
	s.writeSession(w, user, token)
}

func (s *Server) writeSession(w http.ResponseWriter, user domain.User, token string) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"token": token,
	})
}

// handleListChats serves the conversation list, owner-or-admin only.
func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authorize(w, r)
	if !ok {
		return
	}

	userID := r.PathValue("userId")
	if claims.UserID != userID && claims.Role != domain.RoleAdmin {
		s.writeError(w, http.StatusForbidden, "forbidden", nil)
		return
	}

	conversations, err := s.chats.Conversations(userID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "listing failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"chats": conversations})
}

// handleListMessages serves message history in chronological order,
// participant-or-admin only, capped by the limit query parameter.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authorize(w, r)
	if !ok {
		return
	}

	chatID := r.PathValue("chatId")
	conversation, err := s.chats.Conversation(chatID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "conversation not found", err)
		return
	}
	if !conversation.HasParticipant(claims.UserID) && claims.Role != domain.RoleAdmin {
		s.writeError(w, http.StatusForbidden, "forbidden", nil)
		return
	}

	limit := s.limitMessages
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	messages, err := s.chats.Messages(chatID, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "listing failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// handleListNotifications serves the recipient's newest notifications,
// capped at the configured window, owner-or-admin only. The unread count
// mirrors the badge derivation: message-type notifications are excluded.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authorize(w, r)
	if !ok {
		return
	}

	userID := r.PathValue("userId")
	if claims.UserID != userID && claims.Role != domain.RoleAdmin {
		s.writeError(w, http.StatusForbidden, "forbidden", nil)
		return
	}

	list, err := s.notifications.ListForRecipient(userID, s.notificationWindow)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "listing failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"notifications": list,
		"unreadCount":   repositories.UnreadCount(list),
	})
}

// authorize extracts and validates the bearer token. Authentication
// failures are never silently ignored at the HTTP boundary.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) (*auth.CustomClaims, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		s.writeError(w, http.StatusUnauthorized, "missing token", errors.ErrNotAuthenticated)
		return nil, false
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "invalid token", err)
		return nil, false
	}
	return claims, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("Response encode failed", "error", err)
	}
}

// writeError keeps production bodies generic; detail only leaks in dev.
func (s *Server) writeError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		s.log.Warn("Request failed", "status", status, "message", message, "error", err)
		if s.devMode {
			message = message + ": " + err.Error()
		}
	}
	s.writeJSON(w, status, map[string]string{"error": message})
}
