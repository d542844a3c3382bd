package api

import (
	"context"
	"fmt"

	"github.com/tmwangi/kitabu/internal/model"
)

// CourseAPI is the remote course gateway
type CourseAPI struct {
	client *Client
}

// NewCourseAPI creates the course gateway on a shared client
func NewCourseAPI(client *Client) *CourseAPI {
	return &CourseAPI{client: client}
}

// GetCourses fetches the full catalog; there is no pagination
func (a *CourseAPI) GetCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	if err := a.client.get(ctx, "/courses", &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// GetCourseByID fetches a single course
func (a *CourseAPI) GetCourseByID(ctx context.Context, id string) (model.Course, error) {
	var course model.Course
	if err := a.client.get(ctx, "/courses/"+id, &course); err != nil {
		return model.Course{}, err
	}
	return course, nil
}

// EnrollInCourse enrolls a user in a course
func (a *CourseAPI) EnrollInCourse(ctx context.Context, req model.EnrollRequest) (model.Enrollment, error) {
	var enr model.Enrollment
	if err := a.client.post(ctx, "/enrollments", req, &enr); err != nil {
		return model.Enrollment{}, err
	}
	return enr, nil
}

// GetEnrolledCourses lists a user's enrollments with progress
func (a *CourseAPI) GetEnrolledCourses(ctx context.Context, userID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	if err := a.client.get(ctx, "/enrollments?userId="+userID, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// CreateCourse adds a catalog entry (admin)
func (a *CourseAPI) CreateCourse(ctx context.Context, payload model.CoursePayload) (model.Course, error) {
	var course model.Course
	if err := a.client.post(ctx, "/courses", payload, &course); err != nil {
		return model.Course{}, err
	}
	return course, nil
}

// UpdateCourse replaces a catalog entry (admin)
func (a *CourseAPI) UpdateCourse(ctx context.Context, id string, payload model.CoursePayload) (model.Course, error) {
	var course model.Course
	if err := a.client.put(ctx, "/courses/"+id, payload, &course); err != nil {
		return model.Course{}, err
	}
	return course, nil
}

// DeleteCourse removes a catalog entry (admin)
func (a *CourseAPI) DeleteCourse(ctx context.Context, id string) error {
	return a.client.delete(ctx, "/courses/"+id)
}

// UpdateStudentCount sets the enrolled-student metric (admin)
func (a *CourseAPI) UpdateStudentCount(ctx context.Context, id string, students int) (model.Course, error) {
	var course model.Course
	body := map[string]int{"students": students}
	if err := a.client.patch(ctx, fmt.Sprintf("/courses/%s/students", id), body, &course); err != nil {
		return model.Course{}, err
	}
	return course, nil
}
