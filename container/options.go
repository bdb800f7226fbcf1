package container

import "reflect"

// Param 构造参数或被调参数的注入元数据，按位置与函数入参对应。
// Go 的反射拿不到参数名与语言级默认值，命名与兜底只能来自这里的配置。
type Param struct {
	// Name 覆盖名称，用于命名绑定的消歧。
	Name string

	// Default 覆盖兜底值，所有作用域都未命中时使用。
	Default any
}

// bindConfig 收集一次 Push 的全部注册信息。
type bindConfig struct {
	contract    reflect.Type
	concrete    reflect.Type
	name        string
	instance    any
	hasInstance bool
	ctors       []*constructor
}

// BindOption 配置一次 Push 注册。
type BindOption func(*bindConfig)

// For 以类型令牌声明契约（接口）类型。
func For(contract reflect.Type) BindOption {
	return func(b *bindConfig) {
		b.contract = contract
	}
}

// Of 以类型令牌声明具体类型。
func Of(concrete reflect.Type) BindOption {
	return func(b *bindConfig) {
		b.concrete = concrete
	}
}

// WithName 设置绑定名称，比较时大小写不敏感。
func WithName(name string) BindOption {
	return func(b *bindConfig) {
		b.name = name
	}
}

// WithInstance 注册现成实例。
// 未显式声明具体类型时，以实例的动态类型作为具体类型。
func WithInstance(v any) BindOption {
	return func(b *bindConfig) {
		b.instance = v
		b.hasInstance = true
	}
}

// WithConstructor 追加一个构造函数候选。
// 第一个返回值必须可赋值给绑定的具体类型，最后一个返回值可以是 error。
func WithConstructor(fn any) BindOption {
	return func(b *bindConfig) {
		b.ctors = append(b.ctors, &constructor{raw: fn})
	}
}

// WithPreferredConstructor 追加构造函数候选并标记为优先，
// 选择时无视参数个数直接胜出。
func WithPreferredConstructor(fn any) BindOption {
	return func(b *bindConfig) {
		b.ctors = append(b.ctors, &constructor{raw: fn, preferred: true})
	}
}

// WithParams 为最近一次追加的构造函数配置按位置对应的参数元数据。
func WithParams(params ...Param) BindOption {
	return func(b *bindConfig) {
		if n := len(b.ctors); n > 0 {
			b.ctors[n-1].params = params
		}
	}
}

// ResolveOption 配置一次 Get/Has 请求。
type ResolveOption func(*Request)

// Named 请求指定名称的绑定，大小写不敏感。
func Named(name string) ResolveOption {
	return func(r *Request) {
		r.Name = name
	}
}

// WithFallback 设置未命中时的兜底值。
func WithFallback(v any) ResolveOption {
	return func(r *Request) {
		r.Fallback = v
	}
}

// ContainerOption 配置根作用域。
type ContainerOption func(*Container)

// WithMaxDepth 设置最大解析深度（默认 DefaultMaxDepth），
// 子作用域创建时继承。
func WithMaxDepth(n int) ContainerOption {
	return func(c *Container) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithNotFoundHandler 设置根作用域的未命中回调。
func WithNotFoundHandler(h NotFoundHandler) ContainerOption {
	return func(c *Container) {
		c.notFound = h
	}
}
