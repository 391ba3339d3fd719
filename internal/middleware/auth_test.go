package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/snapquiz/backend/internal/auth"
)

func signToken(t *testing.T, claims jwt.MapClaims, key []byte) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func callWithAuth(header string) (*httptest.ResponseRecorder, string) {
	var gotUID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := r.Context().Value("user_id").(string); ok {
			gotUID = uid
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quiz", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	AuthMiddleware(next).ServeHTTP(rr, req)
	return rr, gotUID
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"uid": "uid-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, auth.JWTSecret)

	rr, uid := callWithAuth("Bearer " + token)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if uid != "uid-42" {
		t.Errorf("expected uid in context, got %q", uid)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rr, _ := callWithAuth("")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	rr, _ := callWithAuth("Token abcdef")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_WrongKey(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"uid": "uid-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, []byte("some-other-key"))

	rr, _ := callWithAuth("Bearer " + token)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"uid": "uid-42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}, auth.JWTSecret)

	rr, _ := callWithAuth("Bearer " + token)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
