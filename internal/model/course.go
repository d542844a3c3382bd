package model

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Course is a catalog entry. Numeric metrics may be absent in the backend
// payload; the zero value stands in for "not set" everywhere they are read.
type Course struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Instructor  string  `json:"instructor,omitempty"`
	Category    string  `json:"category,omitempty"`
	Students    int     `json:"students"`
	Duration    float64 `json:"duration"` // hours
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
}

// CoursePayload is the create/update request body for admin CRUD
type CoursePayload struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description,omitempty"`
	Instructor  string  `json:"instructor,omitempty"`
	Category    string  `json:"category,omitempty"`
	Duration    float64 `json:"duration" validate:"gte=0"`
	Price       float64 `json:"price" validate:"gte=0"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=5"`
}

// Validate checks the payload against the field rules
func (p CoursePayload) Validate() error {
	return validate.Struct(p)
}

// EnrollRequest links a user to a course
type EnrollRequest struct {
	UserID   string `json:"userId"`
	CourseID string `json:"courseId"`
}

// Enrollment is an enrolled course with the student's progress
type Enrollment struct {
	ID       string  `json:"id,omitempty"`
	Course   Course  `json:"course"`
	Progress float64 `json:"progress"` // 0..100
}
