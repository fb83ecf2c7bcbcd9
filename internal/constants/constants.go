package constants

import "time"

// Context keys set by the authentication middleware
const (
	ContextKeyUserID    = "user_id"
	ContextKeyPrincipal = "principal"
	ContextKeyRequestID = "request_id"
)

// Session
const (
	SessionCookieName = "agency_session"
	SessionKeyToken   = "token"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 100
)

const MinPasswordLength = 6

// Capacity report
const (
	FullCapacityTasks  = 5
	DeadlineHorizonDay = 14
)

// Analytics
const (
	AnalyticsTopN          = 10
	RevenueTrendMonths     = 6
	UpcomingDeadlineWindow = 7 * 24 * time.Hour
)

const MaxAIGeneratedTasks = 20

const SlowRequestThreshold = 200 * time.Millisecond
