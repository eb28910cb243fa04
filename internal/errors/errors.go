package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Problem type URIs written into the "type" member of error responses
const (
	TypeValidation  = "/errors/validation"
	TypeNotFound    = "/errors/not-found"
	TypeForbidden   = "/errors/forbidden"
	TypeRateLimit   = "/errors/rate-limit"
	TypeInternal    = "/errors/internal"
	TypeMethod      = "/errors/method-not-allowed"
	TypeTimeout     = "/errors/timeout"
)

// Problem types for failures of the lead data and its outputs
const (
	TypeColumnMissing  = "/errors/data/column-missing"
	TypeDataCorrupted  = "/errors/data/corrupted"
	TypeExportFailed   = "/errors/export/failed"
	TypeConfigInvalid  = "/errors/config/invalid"
	TypeStorageFailure = "/errors/storage"
)

// problemKind is how one ErrorType surfaces over HTTP
type problemKind struct {
	status  int
	typeURI string
}

var problemKinds = map[ErrorType]problemKind{
	ErrTypeNotFound:   {http.StatusNotFound, TypeNotFound},
	ErrTypeValidation: {http.StatusBadRequest, TypeValidation},
	ErrTypePermission: {http.StatusForbidden, TypeForbidden},
	ErrTypeColumn:     {http.StatusUnprocessableEntity, TypeColumnMissing},
	ErrTypeParsing:    {http.StatusUnprocessableEntity, TypeDataCorrupted},
	ErrTypeConfig:     {http.StatusInternalServerError, TypeConfigInvalid},
	ErrTypeExport:     {http.StatusInternalServerError, TypeExportFailed},
	ErrTypeStorage:    {http.StatusInternalServerError, TypeStorageFailure},
}

var (
	internalKind = problemKind{http.StatusInternalServerError, TypeInternal}
	timeoutKind  = problemKind{http.StatusGatewayTimeout, TypeTimeout}
)

// kindOf classifies err. Cancelled and timed out contexts win over any
// AppError wrapping them.
func kindOf(err error) problemKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return timeoutKind
	}
	if kind, ok := problemKinds[TypeOf(err)]; ok {
		return kind
	}
	return internalKind
}

// HTTPStatus returns the response status err maps to
func HTTPStatus(err error) int {
	return kindOf(err).status
}

// NewFieldError reports one malformed request field, such as a query
// parameter that does not parse
func NewFieldError(field, message string) *AppError {
	return NewAppValidationError(fmt.Sprintf("%s: %s", field, message)).WithContext("field", field)
}
