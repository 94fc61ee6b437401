// Package apierror provides the error envelope for every 4xx/5xx response.
// Storage and driver errors never reach clients through it.
package apierror

// Machine-readable codes for clients that branch on the failure kind.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeNotFound          = "NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeStorage           = "STORAGE_ERROR"
)

// APIError is the canonical error envelope.
type APIError struct {
	Detail    string `json:"detail"`
	Code      string `json:"code,omitempty"`
	Available *int   `json:"available,omitempty"`
	Requested *int   `json:"requested,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

func WithCode(code, msg string) *APIError {
	return &APIError{Detail: msg, Code: code}
}

// InsufficientStock carries the shortfall so the caller can render it.
func InsufficientStock(msg string, available, requested int) *APIError {
	return &APIError{Detail: msg, Code: CodeInsufficientStock, Available: &available, Requested: &requested}
}

// ValidationError wraps per-field failures.
type ValidationError struct {
	Detail string            `json:"detail"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation failed", Code: CodeInvalidRequest, Fields: fields}
}
