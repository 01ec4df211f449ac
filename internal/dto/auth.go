package dto

// LoginRequest captures credential input.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionUser is the signed-in operator returned by login and /auth/me.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// LoginResponse contains the session user and the issued token.
type LoginResponse struct {
	User        SessionUser `json:"user"`
	AccessToken string      `json:"access_token"`
}
