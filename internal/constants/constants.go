package constants

import "time"

// Context keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUser      = "user"
	ContextKeyRequestID = "request_id"
	ContextKeyTask      = "task"
	ContextKeyTeam      = "team"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength   = 6
	DefaultJWTExpiry    = 30 * 24 * time.Hour
	BearerPrefix        = "Bearer "
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	HeaderRetryAfter    = "Retry-After"
)

// Progress bounds for project tasks
const (
	MinProgress = 0
	MaxProgress = 100
)

// AI
const (
	MaxAISuggestedWorkPackages = 20
)
