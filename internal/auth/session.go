package auth

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// Session is the authenticated caller of a single request.
type Session struct {
	UserID    int
	Email     string
	Role      string
	Status    string
	TokenID   string
	ExpiresAt time.Time
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

func GetSession(c *gin.Context) (Session, bool) {
	if c.Request == nil {
		return Session{}, false
	}
	return SessionFrom(c.Request.Context())
}

func GetUserID(c *gin.Context) (int, bool) {
	s, ok := GetSession(c)
	if !ok {
		return 0, false
	}
	return s.UserID, true
}

func sessionFromClaims(claims *JWTClaims) Session {
	s := Session{
		UserID:  claims.UserID,
		Email:   claims.Email,
		Role:    claims.Role,
		Status:  claims.Status,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s
}
