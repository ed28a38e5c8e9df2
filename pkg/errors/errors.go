package errors

import (
	"errors"
	"fmt"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrRequestFailed 网络或 HTTP 层失败（未拿到合法响应信封）
var ErrRequestFailed = errors.New("请求失败")

// AppError 业务层失败：响应信封 code != 200
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("业务错误 %d: %s", e.Code, e.Message)
}

// AsAppError 提取 AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
