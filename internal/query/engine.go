package query

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tmwangi/kitabu/internal/logger"
	"github.com/tmwangi/kitabu/internal/model"
)

// DebounceWindow is how long search input must be quiet before the
// debounced query (and everything derived from it) updates.
const DebounceWindow = 300 * time.Millisecond

// MaxSuggestions caps the typeahead suggestion list
const MaxSuggestions = 8

// CourseLister fetches the full catalog
type CourseLister interface {
	GetCourses(ctx context.Context) ([]model.Course, error)
}

// Suggestion is a typeahead entry
type Suggestion struct {
	Value string `json:"value"`
}

// Engine owns the in-memory course catalog and turns free-text search plus
// four bucket filters into a ready-to-render course list. Search text is
// debounced; filter changes recompute immediately. Each Engine instance
// owns its own cache — screens that need independent result sets create
// independent engines.
type Engine struct {
	gateway CourseLister

	mu       sync.Mutex
	cache    []model.Course
	search   string // raw text, updated on every keystroke
	q        string // debounced: normalize(search) after the quiet window
	filter   Filters
	filtered []model.Course

	window  time.Duration
	timer   *time.Timer
	changed chan struct{}
}

// New creates an engine with an empty cache. Call Load before reading
// results.
func New(gateway CourseLister) *Engine {
	return &Engine{
		gateway: gateway,
		window:  DebounceWindow,
		changed: make(chan struct{}, 1),
	}
}

// Load fetches the catalog once and resets the result to the full set.
// Errors are returned to the caller; the cache stays empty and every
// derived value resolves to an empty list.
func (e *Engine) Load(ctx context.Context) error {
	courses, err := e.gateway.GetCourses(ctx)
	if err != nil {
		logger.Error("Course load failed", logger.F("error", err))
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = courses
	e.recompute()
	logger.Debug("Courses loaded", logger.F("count", len(courses)))
	return nil
}

// SetSearch records the raw text immediately and restarts the debounce
// timer. Only the last call within a quiet window ever reaches the
// debounced query; earlier pending callbacks are cancelled.
func (e *Engine) SetSearch(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.search = text
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.window, e.settleSearch)
}

func (e *Engine) settleSearch() {
	e.mu.Lock()
	q := strings.ToLower(strings.TrimSpace(e.search))
	if q == e.q {
		e.mu.Unlock()
		return
	}
	e.q = q
	e.recompute()
	e.mu.Unlock()

	e.notify()
}

// SetFilters replaces the whole filter state and recomputes synchronously
func (e *Engine) SetFilters(next Filters) {
	e.mu.Lock()
	e.filter = next
	e.recompute()
	e.mu.Unlock()

	e.notify()
}

// UpdateFilters applies fn to the current state, so one field can change
// without clobbering the other three
func (e *Engine) UpdateFilters(fn func(Filters) Filters) {
	e.mu.Lock()
	e.filter = fn(e.filter)
	e.recompute()
	e.mu.Unlock()

	e.notify()
}

// ResetFilters clears all four fields back to "any"
func (e *Engine) ResetFilters() {
	e.SetFilters(Filters{})
}

// Search returns the raw search text as last typed
func (e *Engine) Search() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.search
}

// Query returns the debounced, normalized search text
func (e *Engine) Query() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.q
}

// Filters returns the current filter state
func (e *Engine) Filters() Filters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter
}

// Courses returns the current filtered result in catalog order
func (e *Engine) Courses() []model.Course {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Course, len(e.filtered))
	copy(out, e.filtered)
	return out
}

// Len returns the size of the unfiltered catalog
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cache)
}

// Suggestions derives typeahead entries from the debounced query
func (e *Engine) Suggestions() []Suggestion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Suggest(e.cache, e.q)
}

// Changed signals whenever a debounce settles or filters change. The
// channel is buffered and never blocks; coalesced signals are fine since
// readers re-derive everything from the engine anyway.
func (e *Engine) Changed() <-chan struct{} {
	return e.changed
}

// Close cancels any pending debounce callback
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) notify() {
	select {
	case e.changed <- struct{}{}:
	default:
	}
}

// recompute rebuilds the filtered result; callers hold e.mu
func (e *Engine) recompute() {
	e.filtered = Apply(e.cache, e.q, e.filter)
}

// Apply filters courses by a normalized query (lowercase substring match on
// the title, empty means no text constraint) and the bucket filters,
// preserving input order.
func Apply(courses []model.Course, q string, f Filters) []model.Course {
	out := make([]model.Course, 0, len(courses))
	for _, c := range courses {
		if q != "" && !strings.Contains(strings.ToLower(c.Title), q) {
			continue
		}
		if !f.Match(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Suggest returns up to MaxSuggestions titles containing the normalized
// query, in input order. An empty query yields no suggestions.
func Suggest(courses []model.Course, q string) []Suggestion {
	if q == "" {
		return nil
	}
	var out []Suggestion
	for _, c := range courses {
		if strings.Contains(strings.ToLower(c.Title), q) {
			out = append(out, Suggestion{Value: c.Title})
			if len(out) == MaxSuggestions {
				break
			}
		}
	}
	return out
}
