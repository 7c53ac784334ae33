package response

import "fmt"

// AppError 接口层错误：业务码、i18n 键、本地化消息与原始错误
type AppError struct {
	Code    int
	Key     string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%d %s] %s", e.Code, e.Key, e.Message)
	}
	return fmt.Sprintf("[%d %s] %s: %v", e.Code, e.Key, e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IsServerError 是否为服务端错误（5xx）
func (e *AppError) IsServerError() bool {
	return e != nil && e.Code >= CodeInternal
}

// NewAppError 由 i18n 键与已翻译消息构造错误
func NewAppError(code int, key, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Key:     key,
		Message: message,
		Err:     err,
	}
}
