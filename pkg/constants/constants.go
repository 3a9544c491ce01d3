package constants

import "time"

// Bot API endpoint defaults
const (
	// DefaultAPIURL is the public ICQ Bot API base URL
	DefaultAPIURL = "https://api.icq.net/bot/v1"
	// DefaultParseMode is the text formatting mode applied when a call does not set one
	DefaultParseMode = "HTML"
	// APITokenParam is the query parameter carrying the bot token
	APITokenParam = "token"
	// RequestIDHeader is the header used to correlate client logs with a request
	RequestIDHeader = "X-Request-Id"
)

// Event polling
const (
	// InitialEventID is the cursor value a fresh event source starts from
	InitialEventID int64 = 1
	// DefaultPollTime is how long the server may hold an events/get request open
	DefaultPollTime = 30 * time.Second
	// MinPollTime is the smallest poll time accepted by configuration
	MinPollTime = 1 * time.Second
	// MaxPollTime is the largest poll time accepted by configuration
	MaxPollTime = 5 * time.Minute
	// HTTPTimeoutMargin is added to the poll time to derive the events/get deadline
	HTTPTimeoutMargin = 10 * time.Second
	// DefaultRequestTimeout bounds every other Bot API call
	DefaultRequestTimeout = 30 * time.Second
	// DefaultRetryDelay is the runner's wait after a failed fetch
	DefaultRetryDelay = 1 * time.Second
	// MaxRetryDelay is the largest retry delay accepted by configuration
	MaxRetryDelay = 1 * time.Minute
)

// Message limits
const (
	// MaxMessageLength is the longest text the API accepts in one message
	MaxMessageLength = 10000
	// MaxLoggedTextLength caps message text written into log fields
	MaxLoggedTextLength = 120
	// ReplyTimeout bounds a single reply sent from a handler
	ReplyTimeout = 15 * time.Second
)

// Token masking
const (
	// MinTokenLengthForMasking is the minimum token length to apply masking
	MinTokenLengthForMasking = 10
	// TokenMaskPrefixLength is the length of prefix to show before masking
	TokenMaskPrefixLength = 7
	// TokenMaskSuffixLength is the length of suffix to show after masking
	TokenMaskSuffixLength = 4
)

// Logging defaults
const (
	// DefaultLogLevel is used when the config does not set a level
	DefaultLogLevel = "info"
	// DefaultLogMaxSize is the default maximum log file size in MB
	DefaultLogMaxSize = 100
	// DefaultLogMaxBackups is the default number of rotated files kept
	DefaultLogMaxBackups = 5
	// DefaultLogMaxAge is the default maximum number of days to retain old logs
	DefaultLogMaxAge = 30
)

// Keychain
const (
	// KeychainService is the service name bot tokens are stored under
	KeychainService = "icqbot"
)
