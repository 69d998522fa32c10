package models

// Result is the uniform outcome shape every mutating admin action returns.
// Expected failures (authorization, not-found, transaction exhaustion) are
// reported here rather than as errors.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Failure builds a failed Result
func Failure(message string) Result {
	return Result{Success: false, Message: message}
}

// Ok builds a successful Result
func Ok(message string) Result {
	return Result{Success: true, Message: message}
}
