package graph

import (
	"errors"

	"github.com/book-catalog/backend/internal/auth"
	"github.com/book-catalog/backend/internal/services"
	"go.uber.org/zap"
)

const (
	CodeNotFound        = "NOT_FOUND"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// apiError carries a client-safe message and a machine-readable code into the GraphQL error extensions.
type apiError struct {
	message string
	code    string
}

func (e *apiError) Error() string { return e.message }

func (e *apiError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

func (r *Resolver) mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		return &apiError{message: err.Error(), code: CodeNotFound}
	case errors.Is(err, services.ErrInvalidInput):
		return &apiError{message: err.Error(), code: CodeBadUserInput}
	case errors.Is(err, auth.ErrUnauthenticated):
		return &apiError{message: "unauthenticated", code: CodeUnauthenticated}
	}

	r.log.Error("resolver failed", zap.String("operation", op), zap.Error(err))
	msg := "internal server error"
	if r.exposeErrors {
		msg = err.Error()
	}
	return &apiError{message: msg, code: CodeInternal}
}
