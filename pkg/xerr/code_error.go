package xerr

import "fmt"

// CodeError 自定义错误结构
type CodeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (e *CodeError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

// Is 按错误码与文案比较，便于 errors.Is 匹配预定义错误
func (e *CodeError) Is(target error) bool {
	t, ok := target.(*CodeError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Message: msg}
}

const (
	OK                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrSuccess     = New(OK, "Success")
	ErrServerError = New(InternalServerError, "internal server error, please contact support")
	ErrParam       = New(BadRequest, "invalid parameters")

	ErrTenantNotFound  = New(NotFound, "tenant not found")
	ErrSessionNotFound = New(NotFound, "session not found")
	ErrEndUserNotFound = New(NotFound, "end user not found")
	ErrEmptyContent    = New(BadRequest, "content is empty")
	ErrEmptyMessage    = New(BadRequest, "message is empty")
	ErrEmptySender     = New(BadRequest, "sender id is empty")
	ErrOriginForbidden = New(Forbidden, "origin not allowed")
)
