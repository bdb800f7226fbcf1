package container

import "reflect"

// TypeOf 返回类型 T 的 reflect.Type（泛型辅助函数）。
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Push 泛型注册：T 为接口时作为契约类型，否则作为具体类型。
//
// 示例：
//
//	container.Push[*Engine](c)                              // 具体类型，惰性构造
//	container.Push[*Engine](c, container.WithInstance(e))   // 现成实例
//	container.Push[IEngine](c, container.Use[*V8Engine]())  // 契约 → 实现
//	container.Push[IEngine](c, container.Use[*V6Engine](), container.WithName("v6"))
func Push[T any](c *Container, opts ...BindOption) error {
	t := TypeOf[T]()
	lead := Of(t)
	if t.Kind() == reflect.Interface {
		lead = For(t)
	}
	return c.Push(append([]BindOption{lead}, opts...)...)
}

// Use 指定契约的实现类型（泛型版 Of）。
func Use[T any]() BindOption {
	return Of(TypeOf[T]())
}

// Get 泛型解析。
func Get[T any](c *Container, opts ...ResolveOption) (T, error) {
	var zero T
	val, err := c.Get(TypeOf[T](), opts...)
	if err != nil {
		return zero, err
	}
	if val == nil {
		return zero, nil
	}
	typed, ok := val.(T)
	if !ok {
		return zero, configErrorf("resolved value is %T, expected %v", val, TypeOf[T]())
	}
	return typed, nil
}

// MustGet 泛型解析，失败时 panic。
func MustGet[T any](c *Container, opts ...ResolveOption) T {
	val, err := Get[T](c, opts...)
	if err != nil {
		panic(err)
	}
	return val
}

// Has 泛型存在性探测。
func Has[T any](c *Container, opts ...ResolveOption) bool {
	return c.Has(TypeOf[T](), opts...)
}

// New 泛型临时构造，总是返回新构造的实例。
func New[T any](c *Container) (T, error) {
	var zero T
	val, err := c.New(TypeOf[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := val.(T)
	if !ok {
		return zero, configErrorf("constructed value is %T, expected %v", val, TypeOf[T]())
	}
	return typed, nil
}
