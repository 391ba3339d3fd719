package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/snapquiz/backend/internal/models"
)

// JWTSecret is the HMAC signing key for API tokens.
// This is a server-side secret; it never leaves the backend.
var JWTSecret = []byte("snapquiz-staging-signing-key-2026")

// Handler exposes the auth service over HTTP. Each endpoint runs one state
// machine operation and maps the terminal state to a status code.
type Handler struct {
	service *Service
	store   AccountStore
}

func NewHandler(service *Service, store AccountStore) *Handler {
	return &Handler{service: service, store: store}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(req.Username)

	st := h.service.Register(r.Context(), req)
	if st.Phase != PhaseSuccess {
		writeAuthError(w, st.Err)
		return
	}

	token, err := generateToken(st.User.UID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	writeJSON(w, http.StatusCreated, models.AuthResponse{Token: token, User: st.User})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Email and password are required"})
		return
	}

	st := h.service.Login(r.Context(), req)
	if st.Phase != PhaseSuccess {
		writeAuthError(w, st.Err)
		return
	}

	token, err := generateToken(st.User.UID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{Token: token, User: st.User})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	st := h.service.Logout(r.Context())
	if st.Phase == PhaseError {
		writeAuthError(w, st.Err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	uid := r.Context().Value("user_id").(string)

	rec, err := h.store.GetUser(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
		return
	}

	writeJSON(w, http.StatusOK, recordToUser(rec))
}

func writeAuthError(w http.ResponseWriter, authErr *Error) {
	if authErr == nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch authErr.Kind {
	case KindEmailInUse, KindUsernameTaken:
		status = http.StatusConflict
	case KindInvalidCredentials, KindNotLoggedIn:
		status = http.StatusUnauthorized
	case KindUserDataNotFound:
		status = http.StatusNotFound
	case KindWeakPassword, KindValidation:
		status = http.StatusBadRequest
	case KindNetwork:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, models.ErrorResponse{Error: authErr.UserMessage()})
}

func generateToken(uid string) (string, error) {
	claims := jwt.MapClaims{
		"uid": uid,
		"exp": time.Now().Add(72 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
