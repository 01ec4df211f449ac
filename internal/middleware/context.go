package middleware

// Context keys used to store authentication metadata.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyUserName  = "user_name"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"
)

// SessionCookie carries the session token issued at login.
const SessionCookie = "auth-token"
