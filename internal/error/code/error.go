package code

import "errors"

// Error 携带错误码的业务错误。服务层返回它，调用方按错误码分类处理，
// 而不是比较错误字符串。
type Error struct {
	Code    int
	Message string
}

// Error 实现error接口
func (e *Error) Error() string {
	return e.Message
}

// NewError 根据错误码创建业务错误，消息取自错误码映射
func NewError(code int) *Error {
	return &Error{
		Code:    code,
		Message: GetMessage(code),
	}
}

// NewErrorWithMessage 根据错误码创建业务错误并覆盖默认消息
func NewErrorWithMessage(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// IsErr 判断err是否为指定错误码的业务错误
func IsErr(err error, code int) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf 提取err的错误码，非业务错误一律归为ErrUnknown
func CodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}
