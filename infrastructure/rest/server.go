// Package rest exposes the HTTP read and account surface: registration,
// login, participant listing, conversation history, full-text search and
// asset upload. The realtime path lives in infrastructure/ws.
package rest

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"chat-relay/auth"
	apperrors "chat-relay/errors"
	"chat-relay/services"
	"chat-relay/storage"

	"github.com/gorilla/mux"
)

type Server struct {
	log    *slog.Logger
	chat   services.IChatService
	users  services.IAuthService
	assets *storage.AssetStore
}

func NewServer(log *slog.Logger, chat services.IChatService, users services.IAuthService,
	assets *storage.AssetStore) *Server {
	return &Server{log: log, chat: chat, users: users, assets: assets}
}

// Router builds the HTTP routing table. The write-heavy realtime handler is
// mounted by the caller so both surfaces share one listener.
func (s *Server) Router(assetDir string) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/login", s.handleLogin).Methods(http.MethodPost)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(s.authenticate)
	protected.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	protected.HandleFunc("/messages", s.handleHistory).Methods(http.MethodGet)
	protected.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	protected.HandleFunc("/assets", s.handleUpload).Methods(http.MethodPost)

	r.PathPrefix("/assets/").Handler(
		http.StripPrefix("/assets/", http.FileServer(http.Dir(assetDir))))

	return r
}

// authenticate rejects requests without a valid bearer token. The claims are
// validated, not consumed: handlers address participants by the query ids.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		if _, err := auth.ValidateToken(raw); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	token, err := s.users.Register(req.Email, req.Password)
	switch {
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, apperrors.ErrInvalidPassword):
		writeError(w, http.StatusBadRequest, "password too weak")
	case err != nil:
		s.log.Error("Registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
	default:
		writeJSON(w, http.StatusCreated, tokenResponse{Token: string(token)})
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	token, err := s.users.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: string(token)})
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	users, err := s.users.ListUsers()
	if err != nil {
		s.log.Error("User listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "listing failed")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type historyResponse struct {
	Messages []messageResponse `json:"messages"`
	Cursor   *string           `json:"cursor,omitempty"`
}

type messageResponse struct {
	ID            string `json:"id"`
	SenderID      string `json:"senderId"`
	ReceiverID    string `json:"receiverId"`
	Content       string `json:"content"`
	AttachmentURL string `json:"attachmentUrl,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

// handleHistory pages backwards through a conversation. The participant ids
// can be supplied in either order.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	a, b := r.URL.Query().Get("a"), r.URL.Query().Get("b")
	if a == "" || b == "" {
		writeError(w, http.StatusBadRequest, "both participant ids are required")
		return
	}

	var cursor *string
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		cursor = &raw
	}

	messages, next, err := s.chat.History(a, b, cursor)
	if err != nil {
		s.log.Error("History query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}

	resp := historyResponse{Messages: make([]messageResponse, 0, len(messages)), Cursor: next}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, messageResponse{
			ID:            m.ID.String(),
			SenderID:      m.SenderID,
			ReceiverID:    m.ReceiverID,
			Content:       m.Content,
			AttachmentURL: m.AttachmentURL,
			CreatedAt:     m.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	a, b := r.URL.Query().Get("a"), r.URL.Query().Get("b")
	query := r.URL.Query().Get("q")
	if a == "" || b == "" || query == "" {
		writeError(w, http.StatusBadRequest, "participant ids and query are required")
		return
	}

	hits, err := s.chat.Search(r.Context(), a, b, query)
	if err != nil {
		s.log.Error("Search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, hits)
}

type uploadResponse struct {
	URL  string `json:"url"`
	Mime string `json:"mime"`
	Size int64  `json:"size"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Cap the body before buffering it, an oversized upload must not be
	// read into memory just to be rejected.
	r.Body = http.MaxBytesReader(w, r.Body, s.assets.MaxSize())
	blob, err := io.ReadAll(r.Body)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "body exceeds upload limit")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	asset, err := s.assets.Save(blob)
	if errors.Is(err, apperrors.ErrUnsupportedAsset) {
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}
	if err != nil {
		s.log.Error("Asset upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{URL: asset.URL, Mime: asset.Mime, Size: asset.Size})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
