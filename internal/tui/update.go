package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tmwangi/kitabu/internal/model"
	"github.com/tmwangi/kitabu/internal/query"
)

// bootstrapMsg is sent when the session store resolved its initial state
type bootstrapMsg struct{}

// coursesLoadedMsg is sent when the catalog fetch finished
type coursesLoadedMsg struct {
	err error
}

// queryChangedMsg is sent when a debounce settles or filters change
type queryChangedMsg struct{}

// loginResultMsg is sent when a login attempt finished
type loginResultMsg struct {
	user model.User
	err  error
}

// logoutMsg is sent when logout finished
type logoutMsg struct {
	err error
}

// enrollResultMsg is sent when an enrollment attempt finished
type enrollResultMsg struct {
	enrollment model.Enrollment
	err        error
}

// detailMsg is sent when a course detail fetch finished
type detailMsg struct {
	course model.Course
	err    error
}

// Init kicks off bootstrap and the catalog load
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.bootstrapCmd(), m.loadCoursesCmd(), m.waitForQueryChange())
}

func (m Model) bootstrapCmd() tea.Cmd {
	return func() tea.Msg {
		m.session.Bootstrap(context.Background())
		return bootstrapMsg{}
	}
}

func (m Model) loadCoursesCmd() tea.Cmd {
	return func() tea.Msg {
		return coursesLoadedMsg{err: m.engine.Load(context.Background())}
	}
}

// waitForQueryChange listens for debounce/filter recomputation signals
func (m Model) waitForQueryChange() tea.Cmd {
	return func() tea.Msg {
		<-m.engine.Changed()
		return queryChangedMsg{}
	}
}

func (m Model) loginCmd(creds model.Credentials) tea.Cmd {
	return func() tea.Msg {
		user, err := m.session.Login(context.Background(), creds)
		return loginResultMsg{user: user, err: err}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		return logoutMsg{err: m.session.Logout(context.Background())}
	}
}

func (m Model) enrollCmd(courseID string) tea.Cmd {
	return func() tea.Msg {
		user, ok := m.session.User()
		if !ok {
			return enrollResultMsg{err: fmt.Errorf("not logged in")}
		}
		enr, err := m.gateway.EnrollInCourse(context.Background(), model.EnrollRequest{
			UserID:   user.ID,
			CourseID: courseID,
		})
		return enrollResultMsg{enrollment: enr, err: err}
	}
}

func (m Model) detailCmd(courseID string) tea.Cmd {
	return func() tea.Msg {
		course, err := m.gateway.GetCourseByID(context.Background(), courseID)
		return detailMsg{course: course, err: err}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case bootstrapMsg:
		if user, ok := m.session.User(); ok {
			m.message = "Welcome back, " + user.FirstName
		}
		return m, nil

	case coursesLoadedMsg:
		if msg.err != nil {
			m.loadError = msg.err.Error()
			return m, nil
		}
		m.loadError = ""
		m.clampCourseCursor()
		return m, nil

	case queryChangedMsg:
		m.clampCourseCursor()
		return m, m.waitForQueryChange()

	case loginResultMsg:
		m.loginBusy = false
		if msg.err != nil {
			m.loginError = msg.err.Error()
			return m, nil
		}
		m.mode = ModeNormal
		m.loginError = ""
		m.emailInput.SetValue("")
		m.passwordInput.SetValue("")
		m.message = "Logged in as " + msg.user.FullName()
		return m, nil

	case logoutMsg:
		// Local state is cleared either way; a remote failure is only
		// worth a note
		if msg.err != nil {
			m.message = "Logged out (server call failed)"
		} else {
			m.message = "Logged out"
		}
		return m, nil

	case enrollResultMsg:
		if msg.err != nil {
			m.message = "Enroll failed: " + msg.err.Error()
			return m, nil
		}
		m.message = "Enrolled in " + msg.enrollment.Course.Title
		// The student count changed server-side; reload the catalog
		return m, m.loadCoursesCmd()

	case detailMsg:
		if msg.err != nil {
			m.message = msg.err.Error()
			m.mode = ModeNormal
			return m, nil
		}
		course := msg.course
		m.detail = &course
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeSearch:
			return m.updateSearch(msg)
		case ModeLogin:
			return m.updateLogin(msg)
		case ModeDetail:
			return m.updateDetail(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.engine.Close()
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		if m.pane == PaneFilters {
			m.pane = PaneCourses
		} else {
			m.pane = PaneFilters
		}

	case key.Matches(msg, keys.Up):
		m.handleUp()

	case key.Matches(msg, keys.Down):
		m.handleDown()

	case key.Matches(msg, keys.Left):
		if m.pane == PaneFilters {
			m.cycleFilter(-1)
		}

	case key.Matches(msg, keys.Right):
		if m.pane == PaneFilters {
			m.cycleFilter(1)
		}

	case key.Matches(msg, keys.Enter):
		if m.pane == PaneFilters {
			m.cycleFilter(1)
		} else if c := m.selectedCourse(); c != nil {
			m.mode = ModeDetail
			m.detail = nil
			return m, m.detailCmd(c.ID)
		}

	case key.Matches(msg, keys.Search):
		m.mode = ModeSearch
		m.input.SetValue(m.engine.Search())
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Enroll):
		return m.startEnroll()

	case key.Matches(msg, keys.Reset):
		m.engine.ResetFilters()
		m.message = "Filters reset"

	case key.Matches(msg, keys.Refresh):
		m.message = "Reloading catalog..."
		return m, m.loadCoursesCmd()

	case key.Matches(msg, keys.Login):
		if !m.session.IsAuthenticated() {
			return m.startLogin("")
		}

	case key.Matches(msg, keys.Logout):
		if m.session.IsAuthenticated() {
			return m, m.logoutCmd()
		}

	case key.Matches(msg, keys.Escape):
		if m.engine.Search() != "" {
			m.engine.SetSearch("")
			m.message = "Search cleared"
		}

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

func (m *Model) handleUp() {
	if m.pane == PaneFilters {
		if m.filterCursor > 0 {
			m.filterCursor--
		}
	} else if m.courseCursor > 0 {
		m.courseCursor--
	}
}

func (m *Model) handleDown() {
	if m.pane == PaneFilters {
		if m.filterCursor < fieldCount-1 {
			m.filterCursor++
		}
	} else if m.courseCursor < len(m.engine.Courses())-1 {
		m.courseCursor++
	}
}

// cycleFilter steps the focused filter field through its buckets, leaving
// the other three untouched
func (m *Model) cycleFilter(delta int) {
	field := m.filterCursor
	m.engine.UpdateFilters(func(f query.Filters) query.Filters {
		switch field {
		case fieldStudents:
			f.Students = cycleBucket(f.Students, delta, query.StudentsGt10000)
		case fieldDuration:
			f.Duration = cycleBucket(f.Duration, delta, query.DurationGt20)
		case fieldPrice:
			f.Price = cycleBucket(f.Price, delta, query.PriceGt200)
		case fieldRating:
			f.Rating = cycleBucket(f.Rating, delta, query.RatingGte45)
		}
		return f
	})
}

// cycleBucket wraps around [0, last]
func cycleBucket[T ~int](b T, delta int, last T) T {
	n := int(last) + 1
	return T(((int(b)+delta)%n + n) % n)
}

func (m Model) startEnroll() (tea.Model, tea.Cmd) {
	c := m.selectedCourse()
	if c == nil {
		return m, nil
	}
	if !m.session.IsAuthenticated() {
		return m.startLogin("Log in to enroll")
	}
	m.message = "Enrolling..."
	return m, m.enrollCmd(c.ID)
}

func (m Model) startLogin(note string) (tea.Model, tea.Cmd) {
	m.mode = ModeLogin
	m.loginError = note
	m.loginFocus = 0
	m.emailInput.Focus()
	m.passwordInput.Blur()
	return m, textinput.Blink
}

// updateSearch handles keys in search mode; every keystroke reaches the
// engine, which debounces on its own
func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		m.engine.SetSearch("")
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.engine.SetSearch(m.input.Value())
	return m, cmd
}

// updateLogin handles keys in the login overlay
func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.emailInput.Blur()
		m.passwordInput.Blur()
		return m, nil

	case key.Matches(msg, keys.Tab):
		m.loginFocus = 1 - m.loginFocus
		if m.loginFocus == 0 {
			m.emailInput.Focus()
			m.passwordInput.Blur()
		} else {
			m.passwordInput.Focus()
			m.emailInput.Blur()
		}
		return m, textinput.Blink

	case key.Matches(msg, keys.Enter):
		if m.loginBusy {
			return m, nil
		}
		creds := model.Credentials{
			Email:    m.emailInput.Value(),
			Password: m.passwordInput.Value(),
		}
		if err := creds.Validate(); err != nil {
			m.loginError = "Enter a valid email and password"
			return m, nil
		}
		m.loginBusy = true
		m.loginError = ""
		return m, m.loginCmd(creds)
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

// updateDetail handles keys in the course detail overlay
func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Enroll):
		if m.detail != nil {
			if !m.session.IsAuthenticated() {
				return m.startLogin("Log in to enroll")
			}
			m.mode = ModeNormal
			m.message = "Enrolling..."
			return m, m.enrollCmd(m.detail.ID)
		}
	case key.Matches(msg, keys.Escape), key.Matches(msg, keys.Enter), key.Matches(msg, keys.Quit):
		m.mode = ModeNormal
		m.detail = nil
	}
	return m, nil
}
