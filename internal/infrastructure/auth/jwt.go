package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingSubject   = errors.New("missing sub in claims")
)

// Claims are the bearer token claims that identify the caller
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// Session converts the claims to a session for requestID
func (c *Claims) Session(requestID string) shared.Session {
	return shared.Session{ActorID: c.Subject, ActorName: c.Name, RequestID: requestID}
}

// SessionTokens decodes bearer tokens into sessions. Tokens are issued by
// the identity provider in front of the console; Issue exists for local
// tooling and tests.
type SessionTokens struct {
	secret []byte
	issuer string
}

// NewSessionTokens creates a decoder. With an empty secret the signature is
// not checked.
func NewSessionTokens(cfg config.SessionConfig) *SessionTokens {
	return &SessionTokens{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer}
}

// Verifies reports whether signatures are checked
func (s *SessionTokens) Verifies() bool {
	return len(s.secret) > 0
}

// Issue signs an HS256 token for actorID
func (s *SessionTokens) Issue(actorID, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name: name,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse validates tokenString and returns its claims
func (s *SessionTokens) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	parser := jwt.NewParser(opts...)

	var err error
	if s.Verifies() {
		_, err = parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
			return s.secret, nil
		})
	} else {
		_, _, err = parser.ParseUnverified(tokenString, claims)
		if err == nil {
			err = jwt.NewValidator(opts...).Validate(claims)
		}
	}
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}
