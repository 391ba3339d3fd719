package models

// AuthUser is the authenticated account as exposed to clients. APIKey is the
// user-supplied generation credential stored alongside the account record.
type AuthUser struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	APIKey   string `json:"apiKey"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	APIKey   string `json:"apiKey"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
