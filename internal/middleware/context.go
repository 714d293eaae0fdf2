package middleware

// Context keys used to store request metadata.
const (
	ContextKeyUsername  = "username"
	ContextKeyRequestID = "request_id"
)
