package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/tmwangi/kitabu/internal/model"
)

// courseTimeFormat pads fractional seconds to a fixed width so lexical
// order on the TEXT column matches chronological order (RFC3339Nano drops
// trailing zeros, which breaks ORDER BY at the boundary)
const courseTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

type courseRow struct {
	ID          string  `db:"id"`
	Title       string  `db:"title"`
	Description string  `db:"description"`
	Instructor  string  `db:"instructor"`
	Category    string  `db:"category"`
	Students    int     `db:"students"`
	Duration    float64 `db:"duration"`
	Price       float64 `db:"price"`
	Rating      float64 `db:"rating"`
	CreatedAt   string  `db:"created_at"`
	UpdatedAt   string  `db:"updated_at"`
}

func (r courseRow) toCourse() model.Course {
	return model.Course{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Instructor:  r.Instructor,
		Category:    r.Category,
		Students:    r.Students,
		Duration:    r.Duration,
		Price:       r.Price,
		Rating:      r.Rating,
	}
}

// handleListCourses returns the whole catalog in insertion order
func (s *Server) handleListCourses(c echo.Context) error {
	var rows []courseRow
	if err := s.db.Select(&rows, "SELECT * FROM courses ORDER BY created_at, id"); err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	courses := make([]model.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.toCourse())
	}
	return c.JSON(http.StatusOK, courses)
}

// handleGetCourse returns a single course
func (s *Server) handleGetCourse(c echo.Context) error {
	var row courseRow
	err := s.db.Get(&row, s.db.Rebind("SELECT * FROM courses WHERE id = ?"), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "course not found"})
	}
	return c.JSON(http.StatusOK, row.toCourse())
}

// handleCreateCourse adds a catalog entry
func (s *Server) handleCreateCourse(c echo.Context) error {
	var req model.CoursePayload
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	id := uuid.NewString()
	now := time.Now().UTC().Format(courseTimeFormat)
	_, err := s.db.Exec(s.db.Rebind(`
		INSERT INTO courses (id, title, description, instructor, category, students, duration, price, rating, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?)`),
		id, req.Title, req.Description, req.Instructor, req.Category,
		req.Duration, req.Price, req.Rating, now, now,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return s.respondWithCourse(c, http.StatusCreated, id)
}

// handleUpdateCourse replaces a catalog entry's editable fields
func (s *Server) handleUpdateCourse(c echo.Context) error {
	var req model.CoursePayload
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	id := c.Param("id")
	res, err := s.db.Exec(s.db.Rebind(`
		UPDATE courses
		SET title = ?, description = ?, instructor = ?, category = ?, duration = ?, price = ?, rating = ?, updated_at = ?
		WHERE id = ?`),
		req.Title, req.Description, req.Instructor, req.Category,
		req.Duration, req.Price, req.Rating,
		time.Now().UTC().Format(courseTimeFormat), id,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "course not found"})
	}

	return s.respondWithCourse(c, http.StatusOK, id)
}

// handleDeleteCourse removes a catalog entry and its enrollments
func (s *Server) handleDeleteCourse(c echo.Context) error {
	id := c.Param("id")

	if _, err := s.db.Exec(s.db.Rebind("DELETE FROM enrollments WHERE course_id = ?"), id); err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	res, err := s.db.Exec(s.db.Rebind("DELETE FROM courses WHERE id = ?"), id)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "course not found"})
	}

	return c.NoContent(http.StatusNoContent)
}

// handleUpdateStudentCount sets the enrolled-student metric directly
func (s *Server) handleUpdateStudentCount(c echo.Context) error {
	var req struct {
		Students int `json:"students"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Students < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "students must not be negative"})
	}

	id := c.Param("id")
	res, err := s.db.Exec(s.db.Rebind("UPDATE courses SET students = ?, updated_at = ? WHERE id = ?"),
		req.Students, time.Now().UTC().Format(courseTimeFormat), id)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "course not found"})
	}

	return s.respondWithCourse(c, http.StatusOK, id)
}

// handleEnroll enrolls the calling user in a course and bumps its
// student count
func (s *Server) handleEnroll(c echo.Context) error {
	var req model.EnrollRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	// The session, not the request body, decides who enrolls
	userID := c.Get("user_id").(string)

	var course courseRow
	if err := s.db.Get(&course, s.db.Rebind("SELECT * FROM courses WHERE id = ?"), req.CourseID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "course not found"})
	}

	id := uuid.NewString()
	_, err := s.db.Exec(s.db.Rebind(`
		INSERT INTO enrollments (id, user_id, course_id, progress, created_at)
		VALUES (?, ?, ?, 0, ?)`),
		id, userID, req.CourseID, time.Now().UTC().Format(courseTimeFormat),
	)
	if err != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "already enrolled"})
	}

	_, _ = s.db.Exec(s.db.Rebind("UPDATE courses SET students = students + 1 WHERE id = ?"), req.CourseID)
	course.Students++

	return c.JSON(http.StatusCreated, model.Enrollment{
		ID:     id,
		Course: course.toCourse(),
	})
}

// handleListEnrollments lists the calling user's enrollments with the
// course expanded
func (s *Server) handleListEnrollments(c echo.Context) error {
	userID := c.Get("user_id").(string)
	if q := c.QueryParam("userId"); q != "" && q != userID {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "cannot list another user's enrollments"})
	}

	type enrollmentRow struct {
		ID         string  `db:"id"`
		Progress   float64 `db:"progress"`
		CourseID   string  `db:"course_id"`
		Title      string  `db:"title"`
		Instructor string  `db:"instructor"`
		Category   string  `db:"category"`
		Students   int     `db:"students"`
		Duration   float64 `db:"duration"`
		Price      float64 `db:"price"`
		Rating     float64 `db:"rating"`
	}

	var rows []enrollmentRow
	err := s.db.Select(&rows, s.db.Rebind(`
		SELECT e.id, e.progress,
		       c.id AS course_id, c.title, c.instructor, c.category,
		       c.students, c.duration, c.price, c.rating
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = ?
		ORDER BY e.created_at`), userID)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	enrollments := make([]model.Enrollment, 0, len(rows))
	for _, r := range rows {
		enrollments = append(enrollments, model.Enrollment{
			ID: r.ID,
			Course: model.Course{
				ID:         r.CourseID,
				Title:      r.Title,
				Instructor: r.Instructor,
				Category:   r.Category,
				Students:   r.Students,
				Duration:   r.Duration,
				Price:      r.Price,
				Rating:     r.Rating,
			},
			Progress: r.Progress,
		})
	}
	return c.JSON(http.StatusOK, enrollments)
}

func (s *Server) respondWithCourse(c echo.Context, status int, id string) error {
	var row courseRow
	if err := s.db.Get(&row, s.db.Rebind("SELECT * FROM courses WHERE id = ?"), id); err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	return c.JSON(status, row.toCourse())
}
