package serving

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/zefrenchwan/docfilters.git/nodes"
	"github.com/zefrenchwan/docfilters.git/storage"
)

// ServiceHttpError is a custom error with an http code to return
type ServiceHttpError struct {
	httpCode int
	message  string
}

// Error to implement error interface
func (e ServiceHttpError) Error() string {
	return e.message
}

// HttpCode returns http code for response
func (e ServiceHttpError) HttpCode() int {
	return e.httpCode
}

// BuildApiErrorFromStorageError maps database errors to http errors.
// Errors with no postgresql code are internal errors.
func BuildApiErrorFromStorageError(sourceError error) error {
	if sourceError == nil {
		return sourceError
	} else if _, ok := sourceError.(ServiceHttpError); ok {
		return sourceError
	}

	switch code := storage.FindCodeInPSQLException(sourceError); {
	case code == storage.AUTH_CODE:
		return NewServiceUnauthorizedError(strings.TrimSpace(sourceError.Error()))
	case code == "" && !errors.Is(sourceError, pgx.ErrNoRows):
		return NewServiceInternalServerError(strings.TrimSpace(sourceError.Error()))
	default:
		return BuildApiErrorFromDocumentError(storage.AsDocumentError(sourceError))
	}
}

// BuildApiErrorFromDocumentError maps document errors to http errors
func BuildApiErrorFromDocumentError(sourceError error) error {
	if sourceError == nil {
		return sourceError
	} else if _, ok := sourceError.(ServiceHttpError); ok {
		return sourceError
	}

	message := strings.Trim(sourceError.Error(), " ")

	switch {
	case errors.Is(sourceError, nodes.ErrNotFound):
		return NewServiceNotFoundError(message)
	case errors.Is(sourceError, nodes.ErrInvalid), errors.Is(sourceError, nodes.ErrIncompatibleCategories):
		return NewServiceUnprocessableEntityError(message)
	case errors.Is(sourceError, nodes.ErrCollision), errors.Is(sourceError, nodes.ErrAlreadyAttached):
		return NewServiceConflictError(message)
	case errors.Is(sourceError, nodes.ErrReadOnly), errors.Is(sourceError, nodes.ErrHostRejected):
		return NewServiceForbiddenError(message)
	default:
		return NewServiceInternalServerError(message)
	}
}

// newServiceError returns an error with code and message
func newServiceError(httpCode int, message string) ServiceHttpError {
	return ServiceHttpError{httpCode: httpCode, message: message}
}

// NewServiceHttpClientError returns a 400 error with a specific message
func NewServiceHttpClientError(message string) ServiceHttpError {
	return newServiceError(http.StatusBadRequest, message)
}

// NewServiceUnauthorizedError returns a new 401 (unauthorized) error
func NewServiceUnauthorizedError(message string) ServiceHttpError {
	return newServiceError(http.StatusUnauthorized, message)
}

// NewServiceForbiddenError returns a new 403 (forbidden) error
func NewServiceForbiddenError(message string) ServiceHttpError {
	return newServiceError(http.StatusForbidden, message)
}

// NewServiceConflictError returns a new 409 (conflict) error
func NewServiceConflictError(message string) ServiceHttpError {
	return newServiceError(http.StatusConflict, message)
}

// NewServiceUnprocessableEntityError returns a 422 error (unprocessable)
func NewServiceUnprocessableEntityError(message string) ServiceHttpError {
	return newServiceError(http.StatusUnprocessableEntity, message)
}

// NewServiceNotFoundError returns a 404 error with a specific message
func NewServiceNotFoundError(message string) ServiceHttpError {
	return newServiceError(http.StatusNotFound, message)
}

// NewServiceInternalServerError returns a 500 error with a specific message
func NewServiceInternalServerError(message string) ServiceHttpError {
	return newServiceError(http.StatusInternalServerError, message)
}
