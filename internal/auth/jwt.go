package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"
)

// Token issuer and audience.
const (
	Issuer   = "whatsapp-validator"
	Audience = "whatsapp-validator-users"
)

// DefaultTokenTTL is the session lifetime when none is configured.
const DefaultTokenTTL = 8 * time.Hour

// Claims defines the payload encoded for authenticated users.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// JWTManager handles issuing and verifying HMAC signed tokens.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager constructs a manager with the given secret and token lifetime.
func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of issued tokens.
func (m *JWTManager) TTL() time.Duration {
	return m.ttl
}

// GenerateToken creates a session token for the provided subject.
func (m *JWTManager) GenerateToken(subject, email, name, role string) (string, error) {
	if len(m.secret) == 0 {
		return "", eris.New("jwt secret must not be empty")
	}

	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: email,
		Name:  name,
		Role:  role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", eris.Wrap(err, "sign token")
	}

	return signed, nil
}

// ParseToken verifies signature, issuer, audience and expiry.
func (m *JWTManager) ParseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, eris.New("invalid token claims")
	}

	return claims, nil
}
