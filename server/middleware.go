package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tmwangi/kitabu/internal/model"
)

type sessionRow struct {
	Token     string `db:"token"`
	UserID    string `db:"user_id"`
	ExpiresAt string `db:"expires_at"`
	CreatedAt string `db:"created_at"`
}

// authMiddleware checks for a valid session token
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if auth == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authorization required"})
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
		}

		var row sessionRow
		err := s.db.Get(&row, s.db.Rebind("SELECT * FROM sessions WHERE token = ?"), token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}

		expires, err := time.Parse(time.RFC3339, row.ExpiresAt)
		if err != nil || time.Now().After(expires) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "token expired"})
		}

		c.Set("token", token)
		c.Set("user_id", row.UserID)
		return next(c)
	}
}

// adminMiddleware requires the admin role; runs after authMiddleware
func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := c.Get("user_id").(string)

		var role string
		err := s.db.Get(&role, s.db.Rebind("SELECT role FROM users WHERE id = ?"), userID)
		if err != nil || role != model.RoleAdmin {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "admin access required"})
		}

		return next(c)
	}
}
