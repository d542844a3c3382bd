package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tmwangi/kitabu/internal/session"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sidebar := m.renderSidebar()
	courseList := m.renderCourseList()
	statusBar := m.renderStatusBar()

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, courseList)

	switch m.mode {
	case ModeLogin:
		mainContent = m.overlay(m.renderLoginModal())
	case ModeDetail:
		mainContent = m.overlay(m.renderDetailModal())
	case ModeHelp:
		mainContent = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, statusBar)
}

func (m Model) overlay(modal string) string {
	return lipgloss.Place(
		m.width, m.height-2,
		lipgloss.Center, lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
	)
}

func (m Model) renderSidebar() string {
	sidebarWidth := 26
	var s string

	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("Kitabu") + "\n"
	s += HelpStyle.Render(m.sessionLine()) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render("─────────────────────") + "\n\n"

	s += HelpStyle.Render("Filters") + "\n"

	f := m.engine.Filters()
	rows := []struct {
		field filterField
		name  string
		value string
	}{
		{fieldStudents, "Students", f.Students.String()},
		{fieldDuration, "Duration", f.Duration.String()},
		{fieldPrice, "Price", f.Price.String()},
		{fieldRating, "Rating", f.Rating.String()},
	}

	for _, row := range rows {
		cursor := "  "
		style := FilterItemStyle
		if row.field == m.filterCursor && m.pane == PaneFilters {
			cursor = "❯ "
			style = FilterItemSelectedStyle
		}

		value := row.value
		if value != "any" {
			value = lipgloss.NewStyle().Foreground(Primary).Render(value)
		}
		s += style.Render(fmt.Sprintf("%s%-9s %s", cursor, row.name, value)) + "\n"
	}

	s += "\n" + lipgloss.NewStyle().Foreground(Border).Render("─────────────────────") + "\n"
	s += HelpStyle.Render("←/→ cycle  r reset")

	return SidebarStyle.Width(sidebarWidth).Height(m.height - 2).Render(s)
}

func (m Model) renderCourseList() string {
	width := m.width - 28
	var s string

	courses := m.engine.Courses()

	// Header with search line
	header := fmt.Sprintf("Courses (%d of %d)", len(courses), m.engine.Len())
	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(header) + "\n"

	if m.mode == ModeSearch {
		s += "/" + m.input.View() + "\n"
		s += m.renderSuggestions()
	} else if q := m.engine.Search(); q != "" {
		s += HelpStyle.Render("/"+q) + "\n"
	}
	s += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", max(0, width-4))) + "\n\n"

	if m.loadError != "" {
		s += ErrorStyle.Render("Failed to load catalog: "+m.loadError) + "\n"
		s += HelpStyle.Render("Press R to retry.")
		return CourseListStyle.Width(width).Height(m.height - 2).Render(s)
	}

	if len(courses) == 0 {
		if m.engine.Len() == 0 {
			s += HelpStyle.Render("  Catalog is empty.")
		} else {
			s += HelpStyle.Render("  No courses match. Press r to reset filters.")
		}
	}

	for i, c := range courses {
		cursor := "  "
		style := CourseItemStyle
		if i == m.courseCursor && m.pane == PaneCourses {
			cursor = "❯ "
			style = CourseItemSelectedStyle
		}

		title := truncate(c.Title, max(10, width-42))
		line := fmt.Sprintf("%s%-*s", cursor, max(10, width-42)+1, title)

		meta := fmt.Sprintf("%6d👥 %5s %7s ", c.Students, formatHours(c.Duration), formatPrice(c.Price))
		rating := RatingStyle.Render(fmt.Sprintf("%.1f★", c.Rating))

		s += style.Render(line) + HelpStyle.Render(meta) + rating + "\n"
	}

	return CourseListStyle.Width(width).Height(m.height - 2).Render(s)
}

// renderSuggestions shows typeahead entries for the debounced query
func (m Model) renderSuggestions() string {
	suggestions := m.engine.Suggestions()
	if len(suggestions) == 0 {
		return ""
	}
	var s string
	for _, sug := range suggestions {
		s += SuggestionStyle.Render("  ▸ "+sug.Value) + "\n"
	}
	return s
}

func (m Model) renderStatusBar() string {
	if m.mode == ModeSearch {
		return StatusBarStyle.Width(m.width).Render("typing search — Enter:done  Esc:clear")
	}

	help := "/:search  tab:filters  enter:detail  e:enroll  r:reset  R:reload  ?:help  q:quit"
	if m.session.IsAuthenticated() {
		help += "  L:logout"
	} else {
		help += "  i:login"
	}
	if m.message != "" {
		help = m.message
	}
	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) sessionLine() string {
	switch m.session.State() {
	case session.StateBootstrapping:
		return "signing in..."
	case session.StateAuthenticated:
		user, _ := m.session.User()
		return user.FullName()
	default:
		return "browsing anonymously"
	}
}

func (m Model) renderLoginModal() string {
	content := lipgloss.NewStyle().Bold(true).Render("Log in") + "\n\n"
	content += m.emailInput.View() + "\n"
	content += m.passwordInput.View() + "\n\n"
	if m.loginBusy {
		content += HelpStyle.Render("Signing in...") + "\n"
	} else if m.loginError != "" {
		content += ErrorStyle.Render(m.loginError) + "\n"
	}
	content += HelpStyle.Render("Tab:switch  Enter:submit  Esc:cancel")
	return ModalStyle.Render(content)
}

func (m Model) renderDetailModal() string {
	modalWidth := 60

	if m.detail == nil {
		return ModalStyle.Width(modalWidth).Render("Loading course...")
	}
	c := *m.detail

	content := lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(c.Title) + "\n"
	if c.Instructor != "" {
		content += HelpStyle.Render("by "+c.Instructor) + "\n"
	}
	content += "\n"
	if c.Description != "" {
		content += wrap(c.Description, modalWidth-6) + "\n\n"
	}

	content += fmt.Sprintf("Students  %d\n", c.Students)
	content += fmt.Sprintf("Duration  %s\n", formatHours(c.Duration))
	content += fmt.Sprintf("Price     %s\n", formatPrice(c.Price))
	content += fmt.Sprintf("Rating    %.1f★\n", c.Rating)
	if c.Category != "" {
		content += fmt.Sprintf("Category  %s\n", c.Category)
	}

	content += "\n" + HelpStyle.Render("e:enroll  Esc:close")
	return ModalStyle.Width(modalWidth).Render(content)
}

func (m Model) renderHelp() string {
	help := `
╭──── Keyboard Shortcuts ────╮
│                            │
│  Navigation                │
│  ──────────                │
│  j/↓    Move down          │
│  k/↑    Move up            │
│  Tab    Switch pane        │
│                            │
│  Catalog                   │
│  ───────                   │
│  /       Search titles     │
│  ←/→     Cycle filter      │
│  r       Reset filters     │
│  R       Reload catalog    │
│  Enter   Course detail     │
│  e       Enroll            │
│                            │
│  Session                   │
│  ───────                   │
│  i       Log in            │
│  L       Log out           │
│                            │
│  ?       Toggle help       │
│  q       Quit              │
│                            │
╰────────────────────────────╯

      Press any key to close
`
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, help)
}

func formatPrice(v float64) string {
	if v == 0 {
		return FreeStyle.Render("free")
	}
	return fmt.Sprintf("$%.0f", v)
}

func formatHours(v float64) string {
	return fmt.Sprintf("%gh", v)
}
