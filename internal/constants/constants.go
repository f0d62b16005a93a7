package constants

// Session and context keys
const (
	SessionCookieName   = "scrum_session"
	ContextKeyUserID    = "user_id"
	ContextKeyRequestID = "request_id"
	ContextKeyProject   = "project"
	ContextKeyRole      = "project_role"
)

// Request header carrying the request ID
const HeaderRequestID = "X-Request-ID"

// Validation limits
const (
	MinPasswordLength = 6
	MinUsernameLength = 3
	MaxUsernameLength = 50
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// MaxAIGeneratedStories caps the number of user story suggestions returned per request
const MaxAIGeneratedStories = 20
