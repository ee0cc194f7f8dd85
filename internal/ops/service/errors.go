package service

import (
	"errors"
	"fmt"
	"strings"
)

// 警告码
const (
	WarnQtyDecrease   = "qty_decrease"   // 收货数量回退，撤销了此前的收货动作
	WarnQtyMismatch   = "qty_mismatch"   // 收货数量与下单数量不一致
	WarnUnlinksWiring = "unlinks_wiring" // 迁移房间会解除全部点位关联
)

// Warning 一条需用户确认的校验警告
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WarningError 非致命校验警告。
// 调用方确认后携带 confirmed 重试即可绕过，绝不静默自动处理。
type WarningError struct {
	Warnings []Warning
}

func (e *WarningError) Error() string {
	codes := make([]string, 0, len(e.Warnings))
	for _, w := range e.Warnings {
		codes = append(codes, w.Code)
	}
	return fmt.Sprintf("confirmation required: %s", strings.Join(codes, ","))
}

// InvalidOperationError 非法操作，直接拒绝且无副作用
type InvalidOperationError struct {
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return e.Reason
}

// ConflictError 幂等冲突：同一 action_id 重放时携带了不同参数
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// AsWarning 提取警告错误
func AsWarning(err error) (*WarningError, bool) {
	var w *WarningError
	ok := errors.As(err, &w)
	return w, ok
}
