package externalApi

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("error not found")

// ApiError is a non-success answer of an upstream endpoint. Code and Message are kept verbatim.
type ApiError struct {
	Path    string
	Code    string
	Message string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("api error [%s] %s: %s", e.Code, e.Path, e.Message)
}

// AuthError is returned when the token endpoint refuses to issue a credential.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: status %d: %s", e.StatusCode, e.Message)
}
