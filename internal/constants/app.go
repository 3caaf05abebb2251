package constants

import (
	"time"
)

// Simulated latencies. These are the defaults; internal/config can override them.
const (
	// LoginLatency - delay before the demo session becomes signed in (800ms)
	LoginLatency = 800 * time.Millisecond

	// NavigationLatency - delay before a folder switch is considered settled (400ms)
	NavigationLatency = 400 * time.Millisecond

	// UploadLatency - delay before a simulated upload completes (1.5s)
	UploadLatency = 1500 * time.Millisecond

	// UploadProgressSteps - number of progress ticks published across UploadLatency
	UploadProgressSteps = 10
)

// Folder navigation
const (
	// RootFolderID - id of the root folder; always the first history entry
	RootFolderID = "root"

	// RootFolderName - display name of the root folder
	RootFolderName = "My Drive"
)

// Settings store
const (
	// SettingsKey - namespaced key holding the connection record
	SettingsKey = "orbit_config"

	// RedisKeyPrefix - prefix applied to settings keys in the redis backend
	RedisKeyPrefix = "orbit:settings:"

	// SettingsFileName - default file name for the file-backed settings store
	SettingsFileName = "settings.json"
)

// Uploads
const (
	// FallbackMimeType - type used when the descriptor does not declare one
	FallbackMimeType = "application/octet-stream"

	// UploadPolicyReject - a second upload while one is in flight fails with ErrUploadBusy
	UploadPolicyReject = "reject"

	// UploadPolicyQueue - a second upload waits for the slot (FIFO)
	UploadPolicyQueue = "queue"

	// DateLayout - layout of modified dates (date portion only)
	DateLayout = "2006-01-02"
)

// Demo identity
const (
	DemoUserName  = "Demo User"
	DemoUserEmail = "demo@orbit.app"

	// LiveUnavailableAdvisory - shown when live credentials are set but no backend can serve them
	LiveUnavailableAdvisory = "Live connection requires a hosted environment with authorized origins. Loading Demo Mode for preview."
)

// Event System
const (
	// EventBusDefaultBuffer - default buffer size for event channels (1000)
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - maximum buffer size for high-throughput scenarios (5000)
	EventBusMaxBuffer = 5000
)

// Remote storage
const (
	// APIContextTimeout - default timeout for remote storage calls (30 seconds)
	APIContextTimeout = 30 * time.Second

	// MaxListKeys - page size requested from object stores when listing a folder
	MaxListKeys = 1000

	// MaxPaginationPages - maximum pages to fetch before stopping (prevents infinite loops)
	MaxPaginationPages = 100
)

// HTTP Client Timeouts
const (
	// HTTPIdleConnTimeout - how long to keep idle connections open (90 seconds)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for TLS handshake (60 seconds)
	HTTPTLSHandshakeTimeout = 60 * time.Second

	// HTTPExpectContinueTimeout - timeout for 100-continue response (1 second)
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPRetryMax - retries performed by the retrying HTTP client
	HTTPRetryMax = 4

	// HTTPRetryWaitMin / HTTPRetryWaitMax bound the backoff between retries
	HTTPRetryWaitMin = 500 * time.Millisecond
	HTTPRetryWaitMax = 10 * time.Second
)

// Logging
const (
	// LogTimeFormat - timestamp layout for console log output
	LogTimeFormat = "15:04:05"

	// LogFileMaxSizeMB / LogFileMaxBackups / LogFileMaxAgeDays configure rotation
	LogFileMaxSizeMB  = 10
	LogFileMaxBackups = 5
	LogFileMaxAgeDays = 30
)
