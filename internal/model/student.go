package model

import "time"

// Student is the school profile attached to a student account.
type Student struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	StudentNo string    `json:"student_no"`
	FullName  string    `json:"full_name"`
	ClassID   int64     `json:"class_id"`
	ClassName string    `json:"class_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentRequest is the payload for creating or updating a student profile.
type StudentRequest struct {
	UserID    int64  `json:"user_id" binding:"required"`
	StudentNo string `json:"student_no" binding:"required,min=4,max=20"`
	FullName  string `json:"full_name" binding:"required,min=2,max=100"`
	ClassID   int64  `json:"class_id" binding:"required"`
}
