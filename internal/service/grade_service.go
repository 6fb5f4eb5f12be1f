package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classware/classman-backend/internal/config"
	"github.com/classware/classman-backend/internal/model"
)

// GradeStore is the grade persistence the service needs. Implemented by
// repository.GradeRepository.
type GradeStore interface {
	Upsert(ctx context.Context, g *model.Grade) error
	ListByStudent(ctx context.Context, studentID int64) ([]model.Grade, error)
	ListByCourse(ctx context.Context, courseID int64, semester string) ([]model.Grade, error)
	CourseStats(ctx context.Context, courseID int64, semester string) (*model.CourseStats, error)
	ClassSummary(ctx context.Context, classID int64, semester string) ([]model.StudentAverage, error)
}

// GradeService handles grade recording and reporting. Aggregate reports are
// cached briefly in Redis; grade rows and anything the authorization core
// reads are not.
type GradeService struct {
	gradeRepo GradeStore
	rdb       *redis.Client
	ttl       time.Duration
	log       zerolog.Logger
}

// NewGradeService creates a new GradeService.
func NewGradeService(gradeRepo GradeStore, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *GradeService {
	return &GradeService{
		gradeRepo: gradeRepo,
		rdb:       rdb,
		ttl:       cfg.ReportCacheTTL,
		log:       log.With().Str("component", "grade_service").Logger(),
	}
}

// Record stores or corrects a grade and drops the affected report caches.
func (s *GradeService) Record(ctx context.Context, g *model.Grade) error {
	if err := s.gradeRepo.Upsert(ctx, g); err != nil {
		return err
	}

	// Cache invalidation is best-effort: the TTL bounds staleness anyway.
	if err := s.rdb.Del(ctx, config.CacheKey.CourseStatsKey(g.CourseID, g.Semester)).Err(); err != nil {
		s.log.Debug().Err(err).Msg("drop course stats cache")
	}
	return nil
}

// StudentTranscript retrieves all grades of one student.
func (s *GradeService) StudentTranscript(ctx context.Context, studentID int64) ([]model.Grade, error) {
	return s.gradeRepo.ListByStudent(ctx, studentID)
}

// CourseGrades retrieves all grades of one course and semester.
func (s *GradeService) CourseGrades(ctx context.Context, courseID int64, semester string) ([]model.Grade, error) {
	return s.gradeRepo.ListByCourse(ctx, courseID, semester)
}

// CourseStats aggregates one course's scores, served from cache when fresh.
func (s *GradeService) CourseStats(ctx context.Context, courseID int64, semester string) (*model.CourseStats, error) {
	key := config.CacheKey.CourseStatsKey(courseID, semester)

	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		stats := &model.CourseStats{}
		if err := json.Unmarshal([]byte(cached), stats); err == nil {
			return stats, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Debug().Err(err).Msg("report cache read failed, falling through")
	}

	stats, err := s.gradeRepo.CourseStats(ctx, courseID, semester)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := s.rdb.Set(ctx, key, payload, s.ttl).Err(); err != nil {
			s.log.Debug().Err(err).Msg("report cache write failed")
		}
	}
	return stats, nil
}

// ClassSummary computes per-student averages for a class and semester,
// served from cache when fresh. Recording a grade does not invalidate this
// key (the student's class is not known at that point); the TTL bounds the
// staleness instead.
func (s *GradeService) ClassSummary(ctx context.Context, classID int64, semester string) ([]model.StudentAverage, error) {
	key := config.CacheKey.ClassSummaryKey(classID, semester)

	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		var summary []model.StudentAverage
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			return summary, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Debug().Err(err).Msg("report cache read failed, falling through")
	}

	summary, err := s.gradeRepo.ClassSummary(ctx, classID, semester)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(summary); err == nil {
		if err := s.rdb.Set(ctx, key, payload, s.ttl).Err(); err != nil {
			s.log.Debug().Err(err).Msg("report cache write failed")
		}
	}
	return summary, nil
}
