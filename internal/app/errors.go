package app

import (
	"errors"
	"fmt"
)

// ErrBadCredentials is returned by Login on any username/password mismatch.
// The login form is re-shown without detail, so one sentinel covers both
// unknown user and wrong password.
var ErrBadCredentials = errors.New("bad credentials")

// ErrEntityNotFound is returned when an entity id does not exist in its
// category list.
var ErrEntityNotFound = errors.New("entity not found")

type DomainError struct {
	Status  int
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}
