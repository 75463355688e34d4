package auth

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/kevin-vien/web-mobile-tranning/internal/models"
)

const (
	SessionName = "gosess"

	sessionUserID = "user_id"
	sessionRole   = "role"
	sessionEmail  = "email"
	identityKey   = "identity"
)

// Identity is the authenticated caller as seen by handlers.
type Identity struct {
	UserID uint
	Role   models.Role
	Email  string
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// RequireAuth accepts "Authorization: Bearer <jwt>" and falls back to the
// session cookie set at login. A bearer header that fails to verify is
// rejected outright.
func RequireAuth(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				abortUnauthorized(c, "Unauthorized")
				return
			}
			claims, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				abortUnauthorized(c, "Invalid token")
				return
			}
			c.Set(identityKey, Identity{UserID: claims.UserID, Role: claims.Role, Email: claims.Email})
			c.Next()
			return
		}

		sess := sessions.Default(c)
		userID, ok := sess.Get(sessionUserID).(uint)
		if !ok || userID == 0 {
			abortUnauthorized(c, "Unauthorized")
			return
		}
		role, _ := sess.Get(sessionRole).(string)
		email, _ := sess.Get(sessionEmail).(string)

		c.Set(identityKey, Identity{UserID: userID, Role: models.Role(role), Email: email})
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok || !id.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "Forbidden"})
			return
		}
		c.Next()
	}
}

func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// StartSession remembers user in the cookie session.
func StartSession(c *gin.Context, user models.User) error {
	sess := sessions.Default(c)
	sess.Set(sessionUserID, user.ID)
	sess.Set(sessionRole, string(user.Role))
	sess.Set(sessionEmail, user.Email)
	return sess.Save()
}

func EndSession(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	return sess.Save()
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": message})
}
