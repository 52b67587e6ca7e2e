package errors

import "errors"

// ErrStatusConflict 条件更新未命中：记录状态已被其他 worker 或请求修改
var ErrStatusConflict = errors.New("记录状态已变更，请刷新后重试")
