package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"quill/models"
	"quill/services"

	"github.com/gin-gonic/gin"
)

const (
	userKey    = "user"
	sessionKey = "session"
	LoginPath  = "/account/login/"
)

// LoadUser resolves the session cookie, or a Bearer token, into the current
// user. It never rejects a request; guards below do that.
func LoadUser(sessions *services.SessionService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cookieName)
		if token == "" {
			c.Next()
			return
		}

		session, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, services.ErrInvalidSession) {
				slog.Error("failed to resolve session", "error", err)
			}
			c.Next()
			return
		}

		c.Set(userKey, session.User)
		c.Set(sessionKey, session)
		c.Set("user_id", session.UserID)
		c.Next()
	}
}

func sessionToken(c *gin.Context, cookieName string) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

// CurrentUser is nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func CurrentSession(c *gin.Context) *models.Session {
	if v, ok := c.Get(sessionKey); ok {
		if session, ok := v.(*models.Session); ok {
			return session
		}
	}
	return nil
}

// LoginURL is the login page with next pointing back at path.
func LoginURL(path string) string {
	return LoginPath + "?next=" + url.QueryEscape(path)
}

// RedirectToLogin answers 302 to the login page, carrying the flash message
// in the body for API clients.
func RedirectToLogin(c *gin.Context, message string) {
	loc := LoginURL(c.Request.URL.RequestURI())
	c.Header("Location", loc)
	c.AbortWithStatusJSON(http.StatusFound, gin.H{
		"message":  message,
		"level":    "error",
		"redirect": loc,
	})
}

// LoginRequired redirects anonymous requests to the login page.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			RedirectToLogin(c, "Please log in to see this page.")
			return
		}
		c.Next()
	}
}

// PermissionRequired rejects users lacking codename before the handler runs.
func PermissionRequired(codename string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentUser(c).HasPerm(codename) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "You do not have permission to perform this action.",
				"level":   "error",
			})
			return
		}
		c.Next()
	}
}

// StaffRequired guards the back office.
func StaffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required.", "level": "error"})
			return
		}
		if !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Staff access required.", "level": "error"})
			return
		}
		c.Next()
	}
}
