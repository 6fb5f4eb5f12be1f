package model

import "time"

// Class represents a school class group.
type Class struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	GradeLevel    int       `json:"grade_level"`
	HeadTeacherID *int64    `json:"head_teacher_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ClassRequest is the payload for creating or updating a class.
type ClassRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=100"`
	GradeLevel    int    `json:"grade_level" binding:"required,min=1,max=12"`
	HeadTeacherID *int64 `json:"head_teacher_id"`
}
