package auth

import (
	"net/http"
	"time"

	"landlordhq/internal/database"
	"landlordhq/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	// AuthCookieName is the name of the cookie that stores the JWT
	AuthCookieName = "landlordhq_token"
)

// SetAuthCookie issues a token for the user and stores it in an HttpOnly cookie
func SetAuthCookie(c *gin.Context, user *models.User) error {
	token, err := GenerateToken(user.ID, user.Email, user.TokenVersion)
	if err != nil {
		return err
	}

	secure := gin.Mode() != gin.DebugMode
	c.SetCookie(
		AuthCookieName,
		token,
		int((24 * time.Hour).Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly for security
	)
	return nil
}

// ClearAuthCookie removes the auth cookie
func ClearAuthCookie(c *gin.Context) {
	c.SetCookie(AuthCookieName, "", -1, "/", "", false, true)
}

// AuthMiddleware validates the token cookie and loads the requesting user
// into the context. Handlers downstream read the owning-user identity from
// the context and thread it into every engine call; nothing below this layer
// consults ambient session state.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(AuthCookieName)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		claims, err := ValidateToken(tokenString)
		if err != nil {
			ClearAuthCookie(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			c.Abort()
			return
		}

		db := database.GetDB()
		var user models.User
		if err := db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
			ClearAuthCookie(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account not found"})
			c.Abort()
			return
		}

		// A bumped token version means the user logged out everywhere
		if !user.IsActive || user.TokenVersion != claims.TokenVersion {
			ClearAuthCookie(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session revoked"})
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("email", user.Email)
		c.Next()
	}
}

// GetUserID returns the authenticated user's ID from the context, with a
// second return of false when the request is unauthenticated
func GetUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	userID, ok := value.(uint)
	return userID, ok
}
