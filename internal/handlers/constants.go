package handlers

// Common error message constants shared across handlers
const (
	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgUnauthorized       = "Unauthorized"
)

// Audit action constants
const (
	AuditActionRegister    = "user.register"
	AuditActionLogin       = "user.login"
	AuditActionLoginFailed = "user.login.failed"
)
