package errors

import "errors"

// Kind is the closed set of failure classes the API can produce. Every
// error crossing a handler boundary carries one so the response writer
// can map it without inspecting ad hoc fields.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidID
	KindDuplicate
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf classifies an arbitrary error. Unrecognized errors are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Validation(message string) *Error   { return New(KindValidation, message) }
func InvalidID(message string) *Error    { return New(KindInvalidID, message) }
func Duplicate(message string) *Error    { return New(KindDuplicate, message) }
func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }

var (
	ErrUserNotFound     = NotFound("User not found")
	ErrTodoNotFound     = NotFound("Todo not found")
	ErrEmailTaken       = Conflict("Email is already registered")
	ErrTitleTaken       = Conflict("Title already exists")
	ErrDuplicateField   = Duplicate("Resource already exists")
	ErrPasswordMismatch = Unauthorized("Password not matched")
	ErrUnauthorized     = Unauthorized("Authentication required")
	ErrForbidden        = Forbidden("Access forbidden")
	ErrTokenInvalid     = Unauthorized("Invalid token")
	ErrTokenExpired     = Unauthorized("Token expired")
	ErrInternalServer   = New(KindInternal, "Internal Server Error")
	ErrBadRequest       = Validation("Invalid request data")
)
