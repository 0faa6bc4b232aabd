package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is позволяет сравнивать через errors.Is с предобъявленными ошибками:
// совпадение по коду и сообщению.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidState, ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeConflict
}

// HTTPStatusFor возвращает HTTP статус ошибки, для прочих ошибок — 500.
func HTTPStatusFor(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

var (
	ErrProblemNotFound     = New(ErrCodeNotFound, "проблема не найдена")
	ErrReportNotFound      = New(ErrCodeNotFound, "отчёт не найден")
	ErrListNotFound        = New(ErrCodeNotFound, "список проблем не найден")
	ErrUserNotFound        = New(ErrCodeNotFound, "пользователь не найден")
	ErrListClosed          = New(ErrCodeInvalidState, "список закрыт, отчёты не принимаются")
	ErrReportFinalized     = New(ErrCodeInvalidState, "отчёт уже рассмотрен")
	ErrUnknownAdmin        = New(ErrCodeForbidden, "голосовать могут только известные администраторы")
	ErrForbidden           = New(ErrCodeForbidden, "недостаточно прав")
	ErrUnauthorized        = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrActAlreadyRecorded  = New(ErrCodeConflict, "акт по этой задаче уже сформирован")
	ErrInvalidDecision     = New(ErrCodeBadRequest, "недопустимое решение по отчёту")
)
