package token

import "errors"

// Validation and rotation outcomes. Callers must branch on these; the
// handler layer collapses them to a single client-facing 401 so token
// failures cannot be used as an oracle.
var (
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenMalformed   = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrAlreadyRotated   = errors.New("refresh token already rotated")
	ErrLineageNotFound  = errors.New("refresh token lineage unknown")
)
