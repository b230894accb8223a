package globals

// Context keys
type ContextKey string

const (
	RequestIDKey ContextKey = "requestId"
	UsernameKey  ContextKey = "username"
	RoleKey      ContextKey = "role"
)
