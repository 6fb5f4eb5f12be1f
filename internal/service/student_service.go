package service

import (
	"context"

	"github.com/classware/classman-backend/internal/model"
	"github.com/classware/classman-backend/internal/repository"
)

// StudentService handles student profile business logic.
type StudentService struct {
	studentRepo *repository.StudentRepository
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo *repository.StudentRepository) *StudentService {
	return &StudentService{studentRepo: studentRepo}
}

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// GetByUserID retrieves the student profile attached to an account.
func (s *StudentService) GetByUserID(ctx context.Context, userID int64) (*model.Student, error) {
	return s.studentRepo.GetByUserID(ctx, userID)
}

// List retrieves a page of students.
func (s *StudentService) List(ctx context.Context, limit, offset int) ([]model.Student, int, error) {
	return s.studentRepo.List(ctx, limit, offset)
}

// ListByClass retrieves all students of one class.
func (s *StudentService) ListByClass(ctx context.Context, classID int64) ([]model.Student, error) {
	return s.studentRepo.ListByClass(ctx, classID)
}

// Create creates a new student profile.
func (s *StudentService) Create(ctx context.Context, student *model.Student) error {
	return s.studentRepo.Create(ctx, student)
}

// Update modifies an existing student profile.
func (s *StudentService) Update(ctx context.Context, student *model.Student) error {
	return s.studentRepo.Update(ctx, student)
}
