package container

import (
	"fmt"
	"reflect"
)

// Request 描述一次进行中的解析。
// 每次调用新建，不共享、不缓存。
type Request struct {
	// Type 请求的类型（必填）。
	Type reflect.Type

	// Name 可选名称，比较时大小写不敏感。
	Name string

	// Depth 当前递归深度。入口处为 0，每向上委托一层父作用域
	// 或向下解析一个参数加一。
	Depth int

	// Fallback 兜底值。所有作用域都未命中且未命中回调不接管时返回该值。
	Fallback any

	// root 指向本次解析链的入口 Request，用于绑定构造的同链重入判定。
	root *Request
}

// child 派生一个深度加一的子请求，解析链归属不变。
func (r *Request) child(typ reflect.Type, name string, fallback any) *Request {
	return &Request{Type: typ, Name: name, Depth: r.Depth + 1, Fallback: fallback, root: r.root}
}

// String 返回请求的可读表示，用于错误与日志。
func (r *Request) String() string {
	if r.Name == "" {
		return fmt.Sprintf("Request(%v, depth=%d)", r.Type, r.Depth)
	}
	return fmt.Sprintf("Request(%v, name=%s, depth=%d)", r.Type, r.Name, r.Depth)
}
