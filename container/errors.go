package container

import (
	"errors"
	"fmt"
	"reflect"
)

// 错误哨兵。所有容器错误都可以用 errors.Is 与这些哨兵匹配。
var (
	// ErrConfiguration 配置错误：非法注册、构造参数注入容器本身、
	// 向非根作用域设置未命中回调等。对当前调用是致命的，不会重试。
	ErrConfiguration = errors.New("ioc: invalid configuration")

	// ErrMaxDepth 解析深度超过上限，视为疑似循环依赖信号。
	ErrMaxDepth = errors.New("ioc: max resolution depth exceeded")

	// ErrNotRegistered 默认未命中回调在没有绑定、没有祖先绑定、
	// 也没有兜底值时返回的错误。
	ErrNotRegistered = errors.New("ioc: type not registered")

	// ErrDisposed 作用域已释放，不可再注册或解析。
	ErrDisposed = errors.New("ioc: container disposed")
)

// NotRegisteredError 带类型与名称上下文的未注册错误。
type NotRegisteredError struct {
	Type reflect.Type
	Name string
}

// Error 实现 error 接口。
func (e *NotRegisteredError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("ioc: type %v not registered", e.Type)
	}
	return fmt.Sprintf("ioc: type %v (name=%s) not registered", e.Type, e.Name)
}

// Unwrap 使 errors.Is(err, ErrNotRegistered) 成立。
func (e *NotRegisteredError) Unwrap() error { return ErrNotRegistered }

// DepthError 带请求上下文的深度超限错误。
// 深度护栏是个上界而不是图检查：深于上限的非循环依赖图与真正的循环
// 无法区分，二者都会得到此错误。
type DepthError struct {
	Type  reflect.Type
	Depth int
	Max   int
}

// Error 实现 error 接口。
func (e *DepthError) Error() string {
	return fmt.Sprintf("ioc: resolving %v at depth %d exceeded max depth %d (probable circular dependency)",
		e.Type, e.Depth, e.Max)
}

// Unwrap 使 errors.Is(err, ErrMaxDepth) 成立。
func (e *DepthError) Unwrap() error { return ErrMaxDepth }

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConfiguration}, args...)...)
}
