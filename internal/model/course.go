package model

import "time"

// Course represents a taught subject with an assigned teacher.
type Course struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Credits   int       `json:"credits"`
	TeacherID *int64    `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CourseRequest is the payload for creating or updating a course.
type CourseRequest struct {
	Code      string `json:"code" binding:"required,min=2,max=20"`
	Name      string `json:"name" binding:"required,min=2,max=100"`
	Credits   int    `json:"credits" binding:"required,min=1,max=20"`
	TeacherID *int64 `json:"teacher_id"`
}
