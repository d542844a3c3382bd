package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/tmwangi/kitabu/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// handleRegister creates an account. The first account on an empty
// database gets the admin role so a fresh dev install is manageable.
func (s *Server) handleRegister(c echo.Context) error {
	var req model.RegisterPayload
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.Logger().Error("bcrypt error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	role := model.RoleStudent
	var count int
	if err := s.db.Get(&count, "SELECT COUNT(*) FROM users"); err == nil && count == 0 {
		role = model.RoleAdmin
	}

	_, err = s.db.Exec(s.db.Rebind(`
		INSERT INTO users (id, first_name, last_name, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		uuid.NewString(), req.FirstName, req.LastName, req.Email, string(hash), role,
		time.Now().UTC().Format(time.RFC3339),
	)

	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return c.JSON(http.StatusConflict, map[string]string{"error": "email already registered"})
		}
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	c.Logger().Infof("User registered: %s", req.Email)

	return c.JSON(http.StatusOK, model.RegisterResult{Success: true})
}

// handleLogin checks credentials and opens a session
func (s *Server) handleLogin(c echo.Context) error {
	var req model.Credentials
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	var row userRow
	err := s.db.Get(&row, s.db.Rebind("SELECT * FROM users WHERE email = ?"), req.Email)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	token, err := s.createSession(row.ID)
	if err != nil {
		c.Logger().Error("session error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	c.Logger().Infof("User logged in: %s", req.Email)

	return c.JSON(http.StatusOK, model.AuthResult{Token: token, User: row.toUser()})
}

// handleLogout deletes the presented session
func (s *Server) handleLogout(c echo.Context) error {
	token := c.Get("token").(string)
	if _, err := s.db.Exec(s.db.Rebind("DELETE FROM sessions WHERE token = ?"), token); err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// handleMe returns the profile for the presented session
func (s *Server) handleMe(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var row userRow
	err := s.db.Get(&row, s.db.Rebind("SELECT * FROM users WHERE id = ?"), userID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, row.toUser())
}

// createSession opens a 30-day session for a user
func (s *Server) createSession(userID string) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	now := time.Now().UTC()
	_, err := s.db.Exec(s.db.Rebind(`
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`),
		token, userID,
		now.Add(30*24*time.Hour).Format(time.RFC3339),
		now.Format(time.RFC3339),
	)

	return token, err
}

type userRow struct {
	ID           string `db:"id"`
	FirstName    string `db:"first_name"`
	LastName     string `db:"last_name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"`
	CreatedAt    string `db:"created_at"`
}

func (r userRow) toUser() model.User {
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return model.User{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Role:      r.Role,
		CreatedAt: created,
	}
}
