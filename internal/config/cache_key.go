package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// DailyStatsKey returns the cache key for a day's attendance statistics.
// date is in YYYY-MM-DD form.
func (r *CacheKeyStruct) DailyStatsKey(date string) string {
	return fmt.Sprintf("stats:daily:%s", date)
}

// DailyStatsPattern matches every cached daily statistics entry.
// Used by the cache invalidator when the affected date is unknown.
func (r *CacheKeyStruct) DailyStatsPattern() string {
	return "stats:daily:*"
}

var CacheKey = NewCacheKeyStruct()
