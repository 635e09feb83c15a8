// Package errors defines the domain error taxonomy shared across services
// and mapped to HTTP statuses at the handler layer.
package errors

// DomainError is a stable, client-safe error with a machine-readable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}
