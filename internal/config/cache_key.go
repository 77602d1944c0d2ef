package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserLoginKey returns the cache key for a user's login session (single device).
func (r *CacheKeyStruct) UserLoginKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// SessionStartKey returns the cache key for an assessment session's start time.
func (r *CacheKeyStruct) SessionStartKey(sessionID string) string {
	return fmt.Sprintf("assessment:%s:started_at", sessionID)
}

// SessionDurationKey returns the cache key for an assessment session's time budget.
func (r *CacheKeyStruct) SessionDurationKey(sessionID string) string {
	return fmt.Sprintf("assessment:%s:duration", sessionID)
}

// SessionViolationsKey returns the cache key for a session's live violation count.
func (r *CacheKeyStruct) SessionViolationsKey(sessionID string) string {
	return fmt.Sprintf("assessment:%s:violations", sessionID)
}

// UserActiveSessionKey returns the cache key for a user's currently active session.
func (r *CacheKeyStruct) UserActiveSessionKey(userID int) string {
	return fmt.Sprintf("user:%d:active_session", userID)
}

// ProctorChannel returns the Redis Pub/Sub channel name for a session's
// live proctoring feed.
func (r *CacheKeyStruct) ProctorChannel(sessionID string) string {
	return fmt.Sprintf("assessment:%s:proctor", sessionID)
}

var CacheKey = NewCacheKeyStruct()
