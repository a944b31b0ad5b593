package utils

// ErrorResponse is the JSON error envelope returned by all handlers. Message
// is operator-facing; Error carries the underlying cause.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
