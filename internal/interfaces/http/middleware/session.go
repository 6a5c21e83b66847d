package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/infrastructure/auth"
	"github.com/tbeauty/backend/internal/infrastructure/logger"
	"github.com/tbeauty/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Session context keys and headers
const (
	SessionKey     = "session"
	ActorKey       = "actor"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
	UserIDHeader   = "X-User-ID"
	UserNameHeader = "X-User-Name"
)

// SessionConfig holds configuration for the session middleware
type SessionConfig struct {
	Tokens *auth.SessionTokens
	// RequireToken rejects requests without a bearer token
	RequireToken bool
	// SkipPaths never require a token
	SkipPaths []string
	Logger    *zap.Logger
}

// Session builds the caller's shared.Session from a bearer token, falling back
// to the X-User-ID and X-User-Name headers when no token is sent and none is
// required. An invalid token is always rejected.
func Session(cfg SessionConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		requestID := GetRequestID(c)
		sess := shared.Session{RequestID: requestID}

		header := c.GetHeader(AuthHeaderKey)
		switch {
		case header != "":
			token := strings.TrimPrefix(header, BearerPrefix)
			if token == header || token == "" {
				abortUnauthorized(c, "Invalid authorization header format")
				return
			}
			claims, err := cfg.Tokens.Parse(token)
			if err != nil {
				cfg.Logger.Warn("bearer token rejected",
					zap.String("request_id", requestID),
					zap.String("path", c.Request.URL.Path),
					zap.Error(err))
				abortUnauthorized(c, "Invalid or expired token")
				return
			}
			sess = claims.Session(requestID)
		case cfg.RequireToken && !skipped(skip, c.Request.URL.Path):
			abortUnauthorized(c, "Authentication required")
			return
		default:
			sess.ActorID = c.GetHeader(UserIDHeader)
			sess.ActorName = c.GetHeader(UserNameHeader)
		}

		c.Set(SessionKey, sess)
		c.Set(ActorKey, sess.Actor())
		c.Request = c.Request.WithContext(logger.WithActor(c.Request.Context(), sess.Actor()))
		c.Next()
	}
}

// GetSession returns the session set by Session, or an anonymous session
func GetSession(c *gin.Context) shared.Session {
	if v, ok := c.Get(SessionKey); ok {
		if sess, ok := v.(shared.Session); ok {
			return sess
		}
	}
	return shared.Session{RequestID: GetRequestID(c)}
}

func skipped(skip map[string]struct{}, path string) bool {
	_, ok := skip[path]
	return ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeUnauthorized, message, GetRequestID(c)))
}
