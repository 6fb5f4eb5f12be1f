package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classware/classman-backend/internal/model"
)

// GradeRepository handles grade data access and aggregate reports.
type GradeRepository struct {
	pool *pgxpool.Pool
}

// NewGradeRepository creates a new GradeRepository.
func NewGradeRepository(pool *pgxpool.Pool) *GradeRepository {
	return &GradeRepository{pool: pool}
}

// Upsert records a score, overwriting a previous one for the same
// (student, course, semester).
func (r *GradeRepository) Upsert(ctx context.Context, g *model.Grade) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO grades (student_id, course_id, semester, score, graded_by)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (student_id, course_id, semester)
		 DO UPDATE SET score = EXCLUDED.score, graded_by = EXCLUDED.graded_by, updated_at = CURRENT_TIMESTAMP
		 RETURNING id, created_at, updated_at`,
		g.StudentID, g.CourseID, g.Semester, g.Score, g.GradedBy,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
}

// ListByStudent retrieves a student's transcript, joined with course names.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID int64) ([]model.Grade, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT g.id, g.student_id, g.course_id, g.semester, g.score, g.graded_by, c.name, g.created_at, g.updated_at
		 FROM grades g JOIN courses c ON g.course_id = c.id
		 WHERE g.student_id = $1
		 ORDER BY g.semester, c.code`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectGrades(rows)
}

// ListByCourse retrieves all grades of one course and semester.
func (r *GradeRepository) ListByCourse(ctx context.Context, courseID int64, semester string) ([]model.Grade, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT g.id, g.student_id, g.course_id, g.semester, g.score, g.graded_by, c.name, g.created_at, g.updated_at
		 FROM grades g JOIN courses c ON g.course_id = c.id
		 WHERE g.course_id = $1 AND g.semester = $2
		 ORDER BY g.student_id`, courseID, semester,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectGrades(rows)
}

func collectGrades(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]model.Grade, error) {
	var grades []model.Grade
	for rows.Next() {
		var g model.Grade
		if err := rows.Scan(&g.ID, &g.StudentID, &g.CourseID, &g.Semester, &g.Score, &g.GradedBy, &g.CourseName, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		grades = append(grades, g)
	}
	return grades, rows.Err()
}

// CourseStats aggregates one course's scores for a semester.
func (r *GradeRepository) CourseStats(ctx context.Context, courseID int64, semester string) (*model.CourseStats, error) {
	s := &model.CourseStats{CourseID: courseID, Semester: semester}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(score), 0), COALESCE(MAX(score), 0), COALESCE(MIN(score), 0)
		 FROM grades WHERE course_id = $1 AND semester = $2`, courseID, semester,
	).Scan(&s.Count, &s.Average, &s.Max, &s.Min)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ClassSummary computes per-student averages for a class and semester.
func (r *GradeRepository) ClassSummary(ctx context.Context, classID int64, semester string) ([]model.StudentAverage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.full_name, s.student_no, COUNT(g.id), COALESCE(AVG(g.score), 0)
		 FROM students s
		 LEFT JOIN grades g ON g.student_id = s.id AND g.semester = $2
		 WHERE s.class_id = $1
		 GROUP BY s.id, s.full_name, s.student_no
		 ORDER BY s.student_no`, classID, semester,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summary []model.StudentAverage
	for rows.Next() {
		var a model.StudentAverage
		if err := rows.Scan(&a.StudentID, &a.FullName, &a.StudentNo, &a.Count, &a.Average); err != nil {
			return nil, err
		}
		summary = append(summary, a)
	}
	return summary, rows.Err()
}
