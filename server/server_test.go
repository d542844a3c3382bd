package server

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmwangi/kitabu/internal/api"
	"github.com/tmwangi/kitabu/internal/model"
)

type memTokens struct {
	token      string
	clearCalls int
}

func (m *memTokens) Token() string { return m.token }
func (m *memTokens) Clear() error {
	m.token = ""
	m.clearCalls++
	return nil
}

type testClient struct {
	tokens  *memTokens
	auth    *api.AuthAPI
	courses *api.CourseAPI
}

func newTestServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()

	srv, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})
	return ts, srv
}

func newTestClient(baseURL string) *testClient {
	tokens := &memTokens{}
	client := api.NewClient(baseURL, tokens)
	return &testClient{
		tokens:  tokens,
		auth:    api.NewAuthAPI(client),
		courses: api.NewCourseAPI(client),
	}
}

func register(t *testing.T, c *testClient, first, email string) {
	t.Helper()
	res, err := c.auth.Register(context.Background(), model.RegisterPayload{
		FirstName: first, LastName: "Tester", Email: email,
		Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	require.True(t, res.Success)
}

func login(t *testing.T, c *testClient, email string) model.User {
	t.Helper()
	res, err := c.auth.Login(context.Background(), model.Credentials{Email: email, Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	c.tokens.token = res.Token
	return res.User
}

func TestFirstRegisteredUserIsAdmin(t *testing.T) {
	ts, _ := newTestServer(t)

	admin := newTestClient(ts.URL)
	register(t, admin, "Amina", "admin@example.com")
	user := login(t, admin, "admin@example.com")
	assert.Equal(t, model.RoleAdmin, user.Role)

	student := newTestClient(ts.URL)
	register(t, student, "Ben", "student@example.com")
	user = login(t, student, "student@example.com")
	assert.Equal(t, model.RoleStudent, user.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts, _ := newTestServer(t)

	c := newTestClient(ts.URL)
	register(t, c, "Amina", "dup@example.com")

	_, err := c.auth.Register(context.Background(), model.RegisterPayload{
		FirstName: "Other", LastName: "Tester", Email: "dup@example.com",
		Password: "secret1", ConfirmPassword: "secret1",
	})
	require.Error(t, err)
	assert.EqualError(t, err, "email already registered")
}

func TestRegisterValidation(t *testing.T) {
	ts, _ := newTestServer(t)
	c := newTestClient(ts.URL)

	_, err := c.auth.Register(context.Background(), model.RegisterPayload{
		FirstName: "Amina", LastName: "T", Email: "a@b.c",
		Password: "secret1", ConfirmPassword: "different",
	})
	assert.Error(t, err, "mismatched confirmation is rejected")

	_, err = c.auth.Register(context.Background(), model.RegisterPayload{
		FirstName: "Amina", LastName: "T", Email: "not-an-email",
		Password: "secret1", ConfirmPassword: "secret1",
	})
	assert.Error(t, err)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	ts, _ := newTestServer(t)

	c := newTestClient(ts.URL)
	register(t, c, "Amina", "amina@example.com")

	_, err := c.auth.Login(context.Background(), model.Credentials{
		Email: "amina@example.com", Password: "wrong",
	})
	require.Error(t, err)
	assert.EqualError(t, err, "invalid credentials")

	_, err = c.auth.Login(context.Background(), model.Credentials{
		Email: "nobody@example.com", Password: "secret1",
	})
	assert.EqualError(t, err, "invalid credentials")
}

func TestProfileRequiresToken(t *testing.T) {
	ts, _ := newTestServer(t)
	c := newTestClient(ts.URL)

	_, err := c.auth.GetProfile(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
}

func TestLogoutInvalidatesSession(t *testing.T) {
	ts, _ := newTestServer(t)

	c := newTestClient(ts.URL)
	register(t, c, "Amina", "amina@example.com")
	login(t, c, "amina@example.com")
	token := c.tokens.token

	_, err := c.auth.GetProfile(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.auth.Logout(context.Background()))

	// The old token is dead server-side; the 401 also clears it client-side
	c.tokens.token = token
	_, err = c.auth.GetProfile(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Empty(t, c.tokens.token)
	assert.Equal(t, 1, c.tokens.clearCalls)
}

func TestCourseCRUD(t *testing.T) {
	ts, _ := newTestServer(t)
	ctx := context.Background()

	admin := newTestClient(ts.URL)
	register(t, admin, "Amina", "admin@example.com")
	login(t, admin, "admin@example.com")

	created, err := admin.courses.CreateCourse(ctx, model.CoursePayload{
		Title: "Go Basics", Instructor: "Jane", Category: "programming",
		Duration: 8, Price: 49.99, Rating: 4.5,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Zero(t, created.Students, "new courses start with no students")

	got, err := admin.courses.GetCourseByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", got.Title)

	updated, err := admin.courses.UpdateCourse(ctx, created.ID, model.CoursePayload{
		Title: "Go Basics v2", Instructor: "Jane", Category: "programming",
		Duration: 10, Price: 59.99, Rating: 4.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "Go Basics v2", updated.Title)
	assert.Equal(t, 10.0, updated.Duration)

	patched, err := admin.courses.UpdateStudentCount(ctx, created.ID, 1200)
	require.NoError(t, err)
	assert.Equal(t, 1200, patched.Students)

	require.NoError(t, admin.courses.DeleteCourse(ctx, created.ID))
	_, err = admin.courses.GetCourseByID(ctx, created.ID)
	assert.Error(t, err)
}

func TestCourseCRUDRequiresAdmin(t *testing.T) {
	ts, _ := newTestServer(t)
	ctx := context.Background()

	admin := newTestClient(ts.URL)
	register(t, admin, "Amina", "admin@example.com")

	student := newTestClient(ts.URL)
	register(t, student, "Ben", "student@example.com")
	login(t, student, "student@example.com")

	_, err := student.courses.CreateCourse(ctx, model.CoursePayload{Title: "Nope"})
	require.Error(t, err)
	assert.EqualError(t, err, "admin access required")
}

func TestCatalogIsPublic(t *testing.T) {
	ts, _ := newTestServer(t)
	ctx := context.Background()

	admin := newTestClient(ts.URL)
	register(t, admin, "Amina", "admin@example.com")
	login(t, admin, "admin@example.com")

	_, err := admin.courses.CreateCourse(ctx, model.CoursePayload{Title: "First"})
	require.NoError(t, err)
	_, err = admin.courses.CreateCourse(ctx, model.CoursePayload{Title: "Second"})
	require.NoError(t, err)

	anon := newTestClient(ts.URL)
	courses, err := anon.courses.GetCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "First", courses[0].Title, "catalog keeps insertion order")
	assert.Equal(t, "Second", courses[1].Title)
}

func TestEnrollmentFlow(t *testing.T) {
	ts, _ := newTestServer(t)
	ctx := context.Background()

	admin := newTestClient(ts.URL)
	register(t, admin, "Amina", "admin@example.com")
	login(t, admin, "admin@example.com")

	course, err := admin.courses.CreateCourse(ctx, model.CoursePayload{Title: "Go Basics", Price: 49.99})
	require.NoError(t, err)

	student := newTestClient(ts.URL)
	register(t, student, "Ben", "student@example.com")
	user := login(t, student, "student@example.com")

	enr, err := student.courses.EnrollInCourse(ctx, model.EnrollRequest{CourseID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, course.ID, enr.Course.ID)
	assert.Equal(t, 1, enr.Course.Students, "enrolling bumps the student count")
	assert.Zero(t, enr.Progress)

	// Enrolling twice in the same course is rejected
	_, err = student.courses.EnrollInCourse(ctx, model.EnrollRequest{CourseID: course.ID})
	require.Error(t, err)
	assert.EqualError(t, err, "already enrolled")

	enrolled, err := student.courses.GetEnrolledCourses(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Equal(t, "Go Basics", enrolled[0].Course.Title)

	// Another user's enrollments are off limits
	_, err = student.courses.GetEnrolledCourses(ctx, "someone-else")
	require.Error(t, err)
	assert.EqualError(t, err, "cannot list another user's enrollments")
}

func TestEnrollRequiresSession(t *testing.T) {
	ts, _ := newTestServer(t)

	anon := newTestClient(ts.URL)
	_, err := anon.courses.EnrollInCourse(context.Background(), model.EnrollRequest{CourseID: "c1"})
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
}

func TestEnrollUnknownCourse(t *testing.T) {
	ts, _ := newTestServer(t)

	c := newTestClient(ts.URL)
	register(t, c, "Amina", "amina@example.com")
	login(t, c, "amina@example.com")

	_, err := c.courses.EnrollInCourse(context.Background(), model.EnrollRequest{CourseID: "missing"})
	require.Error(t, err)
	assert.EqualError(t, err, "course not found")
}

func TestCourseTimestampsSortLexically(t *testing.T) {
	// created_at is a TEXT column ordered lexically, so the format must be
	// fixed width. RFC3339Nano drops trailing fractional zeros: .1Z would
	// sort after .15Z as a string despite being earlier.
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	earlier := base.Add(100 * time.Millisecond)
	later := base.Add(150 * time.Millisecond)

	a := earlier.Format(courseTimeFormat)
	b := later.Format(courseTimeFormat)
	assert.Less(t, a, b)
	assert.Len(t, a, len(b))

	nanoA := earlier.Format(time.RFC3339Nano)
	nanoB := later.Format(time.RFC3339Nano)
	assert.Greater(t, nanoA, nanoB, "the format this replaces misorders these")
}

func TestDeleteCourseRemovesEnrollments(t *testing.T) {
	ts, srv := newTestServer(t)
	ctx := context.Background()

	admin := newTestClient(ts.URL)
	register(t, admin, "Amina", "admin@example.com")
	login(t, admin, "admin@example.com")

	course, err := admin.courses.CreateCourse(ctx, model.CoursePayload{Title: "Doomed"})
	require.NoError(t, err)
	_, err = admin.courses.EnrollInCourse(ctx, model.EnrollRequest{CourseID: course.ID})
	require.NoError(t, err)

	require.NoError(t, admin.courses.DeleteCourse(ctx, course.ID))

	var count int
	require.NoError(t, srv.db.Get(&count, "SELECT COUNT(*) FROM enrollments"))
	assert.Zero(t, count)
}
