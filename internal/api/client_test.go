package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestBearerTokenInjection(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(model.User{ID: "u1"})
	}))
	defer srv.Close()

	tokens := &memTokens{token: "tok-abc"}
	auth := NewAuthAPI(NewClient(srv.URL, tokens))

	_, err := auth.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	courses := NewCourseAPI(NewClient(srv.URL, &memTokens{}))

	_, err := courses.GetCourses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestServerErrorMessageExtracted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"already enrolled"}`))
	}))
	defer srv.Close()

	courses := NewCourseAPI(NewClient(srv.URL, nil))

	_, err := courses.EnrollInCourse(context.Background(), model.EnrollRequest{CourseID: "c1"})
	require.Error(t, err)
	assert.EqualError(t, err, "already enrolled")

	apiErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestErrorWithoutBodyFallsBackToStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	courses := NewCourseAPI(NewClient(srv.URL, nil))

	_, err := courses.GetCourses(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestUnauthorizedClearsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	}))
	defer srv.Close()

	tokens := &memTokens{token: "stale"}
	auth := NewAuthAPI(NewClient(srv.URL, tokens))

	_, err := auth.GetProfile(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 1, tokens.clearCalls)
	assert.Empty(t, tokens.token)
}

func TestLoginRequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var creds model.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "amina@example.com", creds.Email)

		_ = json.NewEncoder(w).Encode(model.AuthResult{
			Token: "fresh",
			User:  model.User{ID: "u1", Email: creds.Email},
		})
	}))
	defer srv.Close()

	auth := NewAuthAPI(NewClient(srv.URL, nil))

	res, err := auth.Login(context.Background(), model.Credentials{
		Email:    "amina@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", res.Token)
	assert.Equal(t, "u1", res.User.ID)
}

func TestCourseGatewayPaths(t *testing.T) {
	type call struct{ method, path string }
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.RequestURI()})
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	courses := NewCourseAPI(NewClient(srv.URL, nil))
	ctx := context.Background()

	_, _ = courses.GetCourseByID(ctx, "c1")
	_, _ = courses.GetEnrolledCourses(ctx, "u1")
	_, _ = courses.UpdateCourse(ctx, "c1", model.CoursePayload{Title: "T"})
	_, _ = courses.UpdateStudentCount(ctx, "c1", 42)
	require.NoError(t, courses.DeleteCourse(ctx, "c1"))

	assert.Equal(t, []call{
		{http.MethodGet, "/courses/c1"},
		{http.MethodGet, "/enrollments?userId=u1"},
		{http.MethodPut, "/courses/c1"},
		{http.MethodPatch, "/courses/c1/students"},
		{http.MethodDelete, "/courses/c1"},
	}, calls)
}

func TestStudentCountBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]int{"students": 1200}, body)
		_, _ = w.Write([]byte(`{"students":1200}`))
	}))
	defer srv.Close()

	courses := NewCourseAPI(NewClient(srv.URL, nil))

	course, err := courses.UpdateStudentCount(context.Background(), "c1", 1200)
	require.NoError(t, err)
	assert.Equal(t, 1200, course.Students)
}

func TestEmptyBaseURLDefaults(t *testing.T) {
	c := NewClient("", nil)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}
