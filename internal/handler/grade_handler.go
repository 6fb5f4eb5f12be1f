package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/classware/classman-backend/internal/middleware"
	"github.com/classware/classman-backend/internal/model"
	"github.com/classware/classman-backend/internal/response"
	"github.com/classware/classman-backend/internal/service"
	"github.com/classware/classman-backend/internal/validator"
)

// GradeHandler handles grade recording, transcripts, and reports.
type GradeHandler struct {
	gradeService   *service.GradeService
	studentService *service.StudentService
}

// NewGradeHandler creates a new GradeHandler.
func NewGradeHandler(gradeService *service.GradeService, studentService *service.StudentService) *GradeHandler {
	return &GradeHandler{gradeService: gradeService, studentService: studentService}
}

// RecordGrade godoc
// POST /api/v1/grades
// Records a score, or corrects it when the (student, course, semester) row
// already exists.
func (h *GradeHandler) RecordGrade(c *gin.Context) {
	var req model.GradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	identity := middleware.GetIdentity(c)
	if !identity.Authenticated() {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	grade := &model.Grade{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Semester:  req.Semester,
		Score:     req.Score,
		GradedBy:  identity.User.ID,
	}

	if err := h.gradeService.Record(c.Request.Context(), grade); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			// Unknown student or course
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"grade": grade})
}

// MyTranscript godoc
// GET /api/v1/me/grades
// Returns the authenticated student's own transcript. No permission grant is
// needed to read one's own grades; a caller without a student profile gets
// 404.
func (h *GradeHandler) MyTranscript(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if !identity.Authenticated() {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	student, err := h.studentService.GetByUserID(c.Request.Context(), identity.User.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	grades, err := h.gradeService.StudentTranscript(c.Request.Context(), student.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student, "grades": grades})
}

// StudentTranscript godoc
// GET /api/v1/students/:id/grades
// Returns any student's transcript, for staff holding view_grades.
func (h *GradeHandler) StudentTranscript(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if _, err := h.studentService.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	grades, err := h.gradeService.StudentTranscript(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"grades": grades})
}

// CourseGrades godoc
// GET /api/v1/courses/:id/grades?semester=2026-1
func (h *GradeHandler) CourseGrades(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	semester := c.Query("semester")
	if semester == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"semester": "semester query parameter is required"})
		return
	}

	grades, err := h.gradeService.CourseGrades(c.Request.Context(), id, semester)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"grades": grades})
}

// CourseStats godoc
// GET /api/v1/courses/:id/stats?semester=2026-1
// Aggregate report, served from the short-lived Redis cache when fresh.
func (h *GradeHandler) CourseStats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	semester := c.Query("semester")
	if semester == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"semester": "semester query parameter is required"})
		return
	}

	stats, err := h.gradeService.CourseStats(c.Request.Context(), id, semester)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// ClassSummary godoc
// GET /api/v1/classes/:id/summary?semester=2026-1
// Per-student averages for one class.
func (h *GradeHandler) ClassSummary(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	semester := c.Query("semester")
	if semester == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"semester": "semester query parameter is required"})
		return
	}

	summary, err := h.gradeService.ClassSummary(c.Request.Context(), id, semester)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

// ExportCourseGrades godoc
// GET /api/v1/courses/:id/grades/export?semester=2026-1
// Streams one course's grades as CSV. Gated on holding both view_grades and
// export_grades.
func (h *GradeHandler) ExportCourseGrades(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	semester := c.Query("semester")
	if semester == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"semester": "semester query parameter is required"})
		return
	}

	grades, err := h.gradeService.CourseGrades(c.Request.Context(), id, semester)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="course_%d_%s_grades.csv"`, id, semester))

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"student_id", "course_id", "course_name", "semester", "score", "graded_by"})
	for _, g := range grades {
		_ = w.Write([]string{
			strconv.FormatInt(g.StudentID, 10),
			strconv.FormatInt(g.CourseID, 10),
			g.CourseName,
			g.Semester,
			strconv.FormatFloat(g.Score, 'f', 2, 64),
			strconv.FormatInt(g.GradedBy, 10),
		})
	}
	w.Flush()
}
