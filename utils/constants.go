package utils

import "time"

// ContextKey is the type for request-scoped context values.
type ContextKey string

// Request context keys set by the HTTP layer and read by flows and logs.
const (
	RequestIDKey  ContextKey = "request_id"
	IPAddressKey  ContextKey = "ip_address"
	UserAgentKey  ContextKey = "user_agent"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Resolver constants
const (
	// DefaultResolveLimit bounds mentor resolution when the caller sends
	// no limit. Historically an "effectively unbounded" sentinel rather
	// than a real cap.
	DefaultResolveLimit = 100000

	// DefaultGatewayTimeout bounds a single backend gateway call.
	DefaultGatewayTimeout = 30 * time.Second
)

// HTTP constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
