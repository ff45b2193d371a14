package service

import (
	"errors"
	"fmt"
)

// 错误分级：校验失败 / 前置条件不满足 / 目标不存在。
// 所有失败都同步上报给调用方，状态不发生任何修改
var (
	ErrValidation          = errors.New("validation rejected")
	ErrPreconditionFailed  = errors.New("precondition failed")
	ErrNotFound            = errors.New("not found")
	ErrConfirmationMissing = errors.New("confirmation required")
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func preconditionf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPreconditionFailed, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
