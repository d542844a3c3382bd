package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/tmwangi/kitabu/internal/api"
	"github.com/tmwangi/kitabu/internal/logger"
	"github.com/tmwangi/kitabu/internal/model"
	"github.com/tmwangi/kitabu/internal/query"
	"github.com/tmwangi/kitabu/internal/session"
)

// Pane represents which pane is focused
type Pane int

const (
	PaneFilters Pane = iota
	PaneCourses
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeLogin
	ModeDetail
	ModeHelp
)

// filterField indexes the sidebar rows
type filterField int

const (
	fieldStudents filterField = iota
	fieldDuration
	fieldPrice
	fieldRating
	fieldCount
)

// Model is the main TUI model: the catalog page plus login and detail
// overlays. It owns one session store and one query engine; everything it
// renders is derived from those two.
type Model struct {
	session *session.Store
	gateway *api.CourseAPI
	engine  *query.Engine

	// UI state
	width        int
	height       int
	pane         Pane
	mode         Mode
	filterCursor filterField
	courseCursor int

	// Search input
	input textinput.Model

	// Login inputs
	emailInput    textinput.Model
	passwordInput textinput.Model
	loginFocus    int // 0 = email, 1 = password
	loginBusy     bool
	loginError    string

	// Detail overlay
	detail *model.Course

	loadError string
	message   string
}

// NewModel creates the TUI model. Bootstrap and catalog load run as
// commands from Init so the first frame renders immediately.
func NewModel(sess *session.Store, gateway *api.CourseAPI) Model {
	logger.Info("Initializing TUI model")

	ti := textinput.New()
	ti.Placeholder = "Search courses..."
	ti.CharLimit = 128
	ti.Width = 40

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 128
	email.Width = 36

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 128
	password.Width = 36
	password.EchoMode = textinput.EchoPassword

	return Model{
		session:       sess,
		gateway:       gateway,
		engine:        query.New(gateway),
		pane:          PaneCourses,
		mode:          ModeNormal,
		input:         ti,
		emailInput:    email,
		passwordInput: password,
	}
}

// selectedCourse returns the course under the cursor
func (m *Model) selectedCourse() *model.Course {
	courses := m.engine.Courses()
	if m.courseCursor < len(courses) {
		c := courses[m.courseCursor]
		return &c
	}
	return nil
}

// clampCourseCursor keeps the cursor inside the (possibly shrunken) result
func (m *Model) clampCourseCursor() {
	n := len(m.engine.Courses())
	if m.courseCursor >= n {
		m.courseCursor = n - 1
	}
	if m.courseCursor < 0 {
		m.courseCursor = 0
	}
}
