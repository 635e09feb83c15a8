package errors

var (
	ErrInvalidCredentials = &DomainError{
		Code:    "INVALID_CREDENTIALS",
		Message: "invalid credentials",
	}
	ErrDuplicateUser = &DomainError{
		Code:    "DUPLICATE_USER",
		Message: "user already exists",
	}
	ErrNotStaff = &DomainError{
		Code:    "NOT_STAFF",
		Message: "admin access denied",
	}
	ErrUnauthenticated = &DomainError{
		Code:    "UNAUTHENTICATED",
		Message: "invalid or expired token",
	}
)
