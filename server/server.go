package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/tmwangi/kitabu/internal/logger"
	_ "modernc.org/sqlite"
)

// Server is the dev backend: auth, course catalog, enrollments
type Server struct {
	db   *sqlx.DB
	echo *echo.Echo
}

// New creates a server. dbURL selects the store: a postgres URL uses
// lib/pq, anything else is treated as a sqlite path, and empty falls back
// to ~/.kitabu/kitabu-server.db.
func New(dbURL string) (*Server, error) {
	db, err := openDB(dbURL)
	if err != nil {
		return nil, err
	}

	s := &Server{db: db}

	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s.setupEcho()

	return s, nil
}

func openDB(dbURL string) (*sqlx.DB, error) {
	driver := "sqlite"
	if strings.HasPrefix(dbURL, "postgres://") || strings.HasPrefix(dbURL, "postgresql://") {
		driver = "postgres"
	}

	if driver == "sqlite" {
		if dbURL == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			dbURL = filepath.Join(home, ".kitabu", "kitabu-server.db")
		}
		if dbURL != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dbURL), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	// Custom logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			logger.Info("HTTP Request",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("duration", time.Since(start).String()))

			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	// Public auth endpoints
	e.POST("/register", s.handleRegister)
	e.POST("/login", s.handleLogin)

	// Catalog is browsable without a session
	e.GET("/courses", s.handleListCourses)
	e.GET("/courses/:id", s.handleGetCourse)

	// Session-protected endpoints
	auth := e.Group("/auth")
	auth.Use(s.authMiddleware)
	auth.POST("/logout", s.handleLogout)
	auth.GET("/me", s.handleMe)

	enrollments := e.Group("/enrollments")
	enrollments.Use(s.authMiddleware)
	enrollments.POST("", s.handleEnroll)
	enrollments.GET("", s.handleListEnrollments)

	// Admin course CRUD
	admin := e.Group("/courses")
	admin.Use(s.authMiddleware, s.adminMiddleware)
	admin.POST("", s.handleCreateCourse)
	admin.PUT("/:id", s.handleUpdateCourse)
	admin.DELETE("/:id", s.handleDeleteCourse)
	admin.PATCH("/:id/students", s.handleUpdateStudentCount)

	s.echo = e
}

// Close closes the database connection
func (s *Server) Close() error {
	return s.db.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
