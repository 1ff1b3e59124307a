package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound 引用的 Family 或 Person 不存在；直接返回调用方，不重试
var ErrNotFound = errors.New("not found")

// ErrValidation 用于 errors.Is 判断任意 ValidationError
var ErrValidation = errors.New("validation failed")

// ValidationError 可由用户修正的输入错误（必须在任何写入之前返回）
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError 构造 ValidationError
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf 包装 ErrNotFound
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}
