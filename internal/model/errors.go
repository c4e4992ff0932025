package model

import "errors"

// 可预期的业务错误，调用方通过 errors.Is 区分
var (
	// ErrCodeNotFound 激活码不存在（含已被删除的码）
	ErrCodeNotFound = errors.New("activation code not found")
	// ErrCodeInactive 激活码存在但已被停用
	ErrCodeInactive = errors.New("activation code disabled")
	// ErrGloballyDisabled 全局开关已关闭所有分析器
	ErrGloballyDisabled = errors.New("analyzers globally disabled")
	// ErrGenerationConflict 重试次数内未能生成唯一激活码
	ErrGenerationConflict = errors.New("could not generate unique code")
	// ErrReportNotFound 报告不存在或已过期，两种情况对调用方不可区分
	ErrReportNotFound = errors.New("report not found or expired")
)
