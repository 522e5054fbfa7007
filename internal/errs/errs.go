package errs

import (
	"errors"
	"fmt"
)

// Kind 错误类别
// 调用方根据类别决定如何反应：Conflict 可在状态可安全重推导时重试，
// InvalidState/AccessDenied 不应重试
type Kind int

const (
	// KindInternal 内部错误（基础设施故障等）
	KindInternal Kind = iota
	// KindNotFound 引用的用户/帖子/关系不存在
	KindNotFound
	// KindInvalidState 当前状态下不允许该操作
	KindInvalidState
	// KindConflict 唯一约束竞争导致的重复创建
	KindConflict
	// KindAccessDenied 调用者无权执行该操作
	KindAccessDenied
	// KindInvalidArgument 输入结构非法或为空
	KindInvalidArgument
)

// String 类别名称
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindInvalidState:
		return "InvalidState"
	case KindConflict:
		return "Conflict"
	case KindAccessDenied:
		return "AccessDenied"
	case KindInvalidArgument:
		return "InvalidArgument"
	default:
		return "Internal"
	}
}

// Error 带类别的业务错误
type Error struct {
	Kind    Kind   // 错误类别
	Message string // 面向调用方的描述
	Err     error  // 被包装的底层错误
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New 创建指定类别的错误
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap 包装底层错误
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NotFound 资源不存在
func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

// InvalidState 状态机拒绝该操作
func InvalidState(format string, args ...interface{}) *Error {
	return New(KindInvalidState, fmt.Sprintf(format, args...))
}

// Conflict 唯一约束冲突
func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

// AccessDenied 权限不足
func AccessDenied(format string, args ...interface{}) *Error {
	return New(KindAccessDenied, fmt.Sprintf(format, args...))
}

// InvalidArgument 输入非法
func InvalidArgument(format string, args ...interface{}) *Error {
	return New(KindInvalidArgument, fmt.Sprintf(format, args...))
}

// Internal 内部错误
func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf 提取错误类别；非业务错误一律视为 Internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is 判断错误是否属于指定类别
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
