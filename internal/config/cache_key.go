package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CourseStatsKey returns the cache key for a course's grade statistics.
func (r *CacheKeyStruct) CourseStatsKey(courseID int64, semester string) string {
	return fmt.Sprintf("report:course:%d:%s:stats", courseID, semester)
}

// ClassSummaryKey returns the cache key for a class's grade summary.
func (r *CacheKeyStruct) ClassSummaryKey(classID int64, semester string) string {
	return fmt.Sprintf("report:class:%d:%s:summary", classID, semester)
}

var CacheKey = NewCacheKeyStruct()
