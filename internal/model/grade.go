package model

import "time"

// Grade is one recorded score for a student in a course and semester.
// Re-recording the same (student, course, semester) corrects the score.
type Grade struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"student_id"`
	CourseID   int64     `json:"course_id"`
	Semester   string    `json:"semester"`
	Score      float64   `json:"score"`
	GradedBy   int64     `json:"graded_by"`
	CourseName string    `json:"course_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GradeRequest is the payload for recording or correcting a grade.
type GradeRequest struct {
	StudentID int64   `json:"student_id" binding:"required"`
	CourseID  int64   `json:"course_id" binding:"required"`
	Semester  string  `json:"semester" binding:"required,min=4,max=20"`
	Score     float64 `json:"score" binding:"min=0,max=100"`
}

// CourseStats aggregates scores for one course and semester.
type CourseStats struct {
	CourseID int64   `json:"course_id"`
	Semester string  `json:"semester"`
	Count    int     `json:"count"`
	Average  float64 `json:"average"`
	Max      float64 `json:"max"`
	Min      float64 `json:"min"`
}

// StudentAverage is one row of a class grade summary.
type StudentAverage struct {
	StudentID int64   `json:"student_id"`
	FullName  string  `json:"full_name"`
	StudentNo string  `json:"student_no"`
	Count     int     `json:"count"`
	Average   float64 `json:"average"`
}
