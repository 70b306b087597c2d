package internal

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeAccountInactive     ErrorCode = "ACCOUNT_INACTIVE"
	ErrCodeInvalidToken        ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired        ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInvalidRefreshToken ErrorCode = "INVALID_REFRESH_TOKEN"
	ErrCodeDuplicateUser       ErrorCode = "DUPLICATE_USER"
	ErrCodeUserNotFound        ErrorCode = "USER_NOT_FOUND"

	ErrCodeRoleNotFound ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeRoleInUse    ErrorCode = "ROLE_IN_USE"
	ErrCodeRoleExists   ErrorCode = "ROLE_EXISTS"

	ErrCodeEvaluationNotFound ErrorCode = "EVALUATION_NOT_FOUND"
	ErrCodeEvidenceNotFound   ErrorCode = "EVIDENCE_NOT_FOUND"
	ErrCodeInvalidStatus      ErrorCode = "INVALID_STATUS"
	ErrCodeAlreadyCompleted   ErrorCode = "ALREADY_COMPLETED"
	ErrCodeOutOfScope         ErrorCode = "OUT_OF_SCOPE"

	ErrCodeCourseNotFound ErrorCode = "COURSE_NOT_FOUND"

	ErrCodeReportNotFound        ErrorCode = "REPORT_NOT_FOUND"
	ErrCodeUnsupportedReportType ErrorCode = "UNSUPPORTED_REPORT_TYPE"
	ErrCodeUnsupportedFormat     ErrorCode = "UNSUPPORTED_EXPORT_FORMAT"
)

// AppError is the boundary error every handler translates service failures
// into. StatusCode drives the HTTP response; Message is the only thing the
// caller ever sees.
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrInvalidCredentials  = NewUnauthorizedError("invalid credentials", ErrCodeInvalidCredentials)
	ErrAccountInactive     = NewForbiddenError("account is inactive", ErrCodeAccountInactive)
	ErrInvalidToken        = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired        = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
	ErrInvalidRefreshToken = NewUnauthorizedError("invalid refresh token", ErrCodeInvalidRefreshToken)
	ErrDuplicateUser       = NewConflictError("username or email already exists", ErrCodeDuplicateUser)
	ErrUserNotFound        = NewNotFoundError("user not found", ErrCodeUserNotFound)

	ErrRoleNotFound = NewNotFoundError("role not found", ErrCodeRoleNotFound)
	ErrRoleInUse    = NewConflictError("role is still assigned to users", ErrCodeRoleInUse)
	ErrRoleExists   = NewConflictError("role name already exists", ErrCodeRoleExists)

	ErrEvaluationNotFound = NewNotFoundError("evaluation not found", ErrCodeEvaluationNotFound)
	ErrEvidenceNotFound   = NewNotFoundError("evidence not found", ErrCodeEvidenceNotFound)
	ErrInvalidStatus      = NewValidationError("invalid status for this operation", ErrCodeInvalidStatus)
	ErrAlreadyCompleted   = NewConflictError("evaluation is already completed", ErrCodeAlreadyCompleted)
	ErrOutOfScope         = NewForbiddenError("target user is outside your managed team", ErrCodeOutOfScope)
	ErrForbidden          = NewForbiddenError("insufficient permissions", "FORBIDDEN")

	ErrCourseNotFound = NewNotFoundError("course not assigned to user", ErrCodeCourseNotFound)

	ErrReportNotFound        = NewNotFoundError("report not found", ErrCodeReportNotFound)
	ErrUnsupportedReportType = NewValidationError("unsupported report type", ErrCodeUnsupportedReportType)
	ErrUnsupportedFormat     = NewValidationError("unsupported export format", ErrCodeUnsupportedFormat)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}
