package usecase

import (
	"errors"
	"fmt"
	"net/http"

	repo "rewards/internal/repository"

	pkgerrors "github.com/pkg/errors"
)

// handlerがそのままレスポンスにする
// causeはログ用でレスポンスには出さない
type HTTPError struct {
	Status  int
	Code    string
	Message string
	cause   error
}

func (e *HTTPError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%d %s: %s: %v", e.Status, e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.cause }

// Codeが同じなら同じエラー扱い
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	return ok && t.Code == e.Code
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{Status: status, Code: codeFor(status), Message: message}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

var (
	ErrUnauthorized          = &HTTPError{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "unauthorized"}
	ErrAccessDenied          = &HTTPError{Status: http.StatusForbidden, Code: "ACCESS_DENIED", Message: "access denied"}
	ErrNotFound              = &HTTPError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "not found"}
	ErrValidation            = &HTTPError{Status: http.StatusBadRequest, Code: "VALIDATION_FAILURE", Message: "invalid request"}
	ErrDuplicateRelationship = &HTTPError{Status: http.StatusConflict, Code: "DUPLICATE_RELATIONSHIP", Message: "already applied"}
	ErrInvalidTransition     = &HTTPError{Status: http.StatusConflict, Code: "INVALID_TRANSITION", Message: "invalid transition"}
	ErrConflict              = &HTTPError{Status: http.StatusConflict, Code: "CONFLICT", Message: "conflict"}
	ErrCartEmpty             = &HTTPError{Status: http.StatusBadRequest, Code: "CART_EMPTY", Message: "cart empty"}
	ErrCartChanged           = &HTTPError{Status: http.StatusConflict, Code: "CART_CHANGED", Message: "cart changed"}
	ErrOracleUnavailable     = &HTTPError{Status: http.StatusServiceUnavailable, Code: "ORACLE_UNAVAILABLE", Message: "pricing unavailable"}
	ErrInternal              = &HTTPError{Status: http.StatusInternalServerError, Code: "INTERNAL", Message: "db error"}
)

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrValidation.Code
	case http.StatusUnauthorized:
		return ErrUnauthorized.Code
	case http.StatusForbidden:
		return ErrAccessDenied.Code
	case http.StatusNotFound:
		return ErrNotFound.Code
	case http.StatusConflict:
		return ErrConflict.Code
	}
	return ErrInternal.Code
}

// 入力エラー（メッセージはフィールド名）
func validationError(field string) error {
	return &HTTPError{Status: ErrValidation.Status, Code: ErrValidation.Code, Message: "invalid " + field}
}

func withCause(base *HTTPError, cause error, msg string) error {
	e := *base
	e.cause = pkgerrors.WithMessage(cause, msg)
	return &e
}

// 500（原因はログに残す）
func internalError(err error, msg string) error {
	return withCause(ErrInternal, pkgerrors.WithStack(err), msg)
}

// repository.ErrNotFoundは404、それ以外は500
func repoError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	// tx内で既にHTTPErrorにしたものはそのまま
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return internalError(err, msg)
}
