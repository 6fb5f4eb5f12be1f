package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classware/classman-backend/internal/config"
	"github.com/classware/classman-backend/internal/model"
	"github.com/classware/classman-backend/internal/service"
)

type stubGradeStore struct {
	upserts          []model.Grade
	courseStatsCalls int
	summaryCalls     int
}

func (s *stubGradeStore) Upsert(ctx context.Context, g *model.Grade) error {
	s.upserts = append(s.upserts, *g)
	return nil
}

func (s *stubGradeStore) ListByStudent(ctx context.Context, studentID int64) ([]model.Grade, error) {
	return nil, nil
}

func (s *stubGradeStore) ListByCourse(ctx context.Context, courseID int64, semester string) ([]model.Grade, error) {
	return nil, nil
}

func (s *stubGradeStore) CourseStats(ctx context.Context, courseID int64, semester string) (*model.CourseStats, error) {
	s.courseStatsCalls++
	return &model.CourseStats{CourseID: courseID, Semester: semester, Count: 3, Average: 82.5, Max: 95, Min: 70}, nil
}

func (s *stubGradeStore) ClassSummary(ctx context.Context, classID int64, semester string) ([]model.StudentAverage, error) {
	s.summaryCalls++
	return []model.StudentAverage{
		{StudentID: 1, FullName: "Tiara Rahma", StudentNo: "S-001", Count: 2, Average: 88},
		{StudentID: 2, FullName: "Bagus Wicaksono", StudentNo: "S-002", Count: 2, Average: 77.5},
	}, nil
}

func newGradeService(t *testing.T) (*service.GradeService, *stubGradeStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := &stubGradeStore{}
	cfg := &config.Config{ReportCacheTTL: time.Minute}
	return service.NewGradeService(store, rdb, cfg, zerolog.Nop()), store, mr
}

func TestCourseStatsServedFromCache(t *testing.T) {
	svc, store, _ := newGradeService(t)
	ctx := context.Background()

	first, err := svc.CourseStats(ctx, 4, "2026-1")
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	second, err := svc.CourseStats(ctx, 4, "2026-1")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}

	if store.courseStatsCalls != 1 {
		t.Fatalf("store reads = %d, want 1", store.courseStatsCalls)
	}
	if *first != *second {
		t.Fatalf("cached stats %+v differ from fresh %+v", second, first)
	}
}

func TestClassSummaryServedFromCache(t *testing.T) {
	svc, store, _ := newGradeService(t)
	ctx := context.Background()

	if _, err := svc.ClassSummary(ctx, 9, "2026-1"); err != nil {
		t.Fatalf("first read: %v", err)
	}
	summary, err := svc.ClassSummary(ctx, 9, "2026-1")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}

	if store.summaryCalls != 1 {
		t.Fatalf("store reads = %d, want 1", store.summaryCalls)
	}
	if len(summary) != 2 || summary[0].Average != 88 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// Each class and semester caches under its own key.
	if _, err := svc.ClassSummary(ctx, 9, "2026-2"); err != nil {
		t.Fatalf("other semester: %v", err)
	}
	if store.summaryCalls != 2 {
		t.Fatalf("store reads = %d, want 2", store.summaryCalls)
	}
}

func TestClassSummaryExpiresWithTTL(t *testing.T) {
	svc, store, mr := newGradeService(t)
	ctx := context.Background()

	if _, err := svc.ClassSummary(ctx, 9, "2026-1"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := svc.ClassSummary(ctx, 9, "2026-1"); err != nil {
		t.Fatalf("read after expiry: %v", err)
	}
	if store.summaryCalls != 2 {
		t.Fatalf("store reads = %d, want 2", store.summaryCalls)
	}
}

func TestRecordInvalidatesCourseStats(t *testing.T) {
	svc, store, _ := newGradeService(t)
	ctx := context.Background()

	if _, err := svc.CourseStats(ctx, 4, "2026-1"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	grade := &model.Grade{StudentID: 1, CourseID: 4, Semester: "2026-1", Score: 91, GradedBy: 7}
	if err := svc.Record(ctx, grade); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(store.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(store.upserts))
	}

	if _, err := svc.CourseStats(ctx, 4, "2026-1"); err != nil {
		t.Fatalf("read after record: %v", err)
	}
	if store.courseStatsCalls != 2 {
		t.Fatalf("store reads = %d, want 2 (cache should have been dropped)", store.courseStatsCalls)
	}
}

func TestReportsSurviveRedisOutage(t *testing.T) {
	svc, store, mr := newGradeService(t)
	ctx := context.Background()

	mr.Close()

	if _, err := svc.CourseStats(ctx, 4, "2026-1"); err != nil {
		t.Fatalf("course stats without cache: %v", err)
	}
	if _, err := svc.ClassSummary(ctx, 9, "2026-1"); err != nil {
		t.Fatalf("class summary without cache: %v", err)
	}
	if store.courseStatsCalls != 1 || store.summaryCalls != 1 {
		t.Fatalf("store reads = %d/%d, want 1/1", store.courseStatsCalls, store.summaryCalls)
	}
}
