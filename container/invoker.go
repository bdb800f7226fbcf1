package container

import (
	"fmt"
	"reflect"
)

// invokeConfig 收集一次 Invoke 的调用配置。
type invokeConfig struct {
	params []Param
}

// InvokeOption 配置一次 Invoke 调用。
type InvokeOption func(*invokeConfig)

// InvokeParams 为被调函数配置按位置对应的参数元数据。
func InvokeParams(params ...Param) InvokeOption {
	return func(cfg *invokeConfig) {
		cfg.params = params
	}
}

// Invoke 解析 fn 的全部参数并调用之。
//
// 每个参数作为深度 0 的独立请求解析，不串接任何外层解析的深度；
// 名称与兜底的优先级与构造参数一致。方法值已绑定接收者，可直接传入。
// 类型为 *Container 的参数注入当前作用域本身。
//
// 返回第一个返回值；若最后一个返回值是非 nil 的 error，则返回该错误。
func (c *Container) Invoke(fn any, opts ...InvokeOption) (any, error) {
	if c.disposed.Load() {
		return nil, ErrDisposed
	}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, configErrorf("Invoke target must be a function, got %T", fn)
	}

	cfg := &invokeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	meta := c.meta.funcOf(v.Type())
	args := make([]reflect.Value, len(meta.in))

	for i, paramType := range meta.in {
		if paramType == containerType {
			args[i] = reflect.ValueOf(c)
			continue
		}

		var name string
		var fallback any
		if i < len(cfg.params) {
			name = cfg.params[i].Name
			fallback = cfg.params[i].Default
		}

		req := &Request{Type: paramType, Name: name, Fallback: fallback}
		req.root = req

		val, err := c.resolve(req)
		if err != nil {
			return nil, fmt.Errorf("ioc: argument %d (%v): %w", i, paramType, err)
		}
		if args[i], err = argValue(val, paramType); err != nil {
			return nil, err
		}
	}

	results := v.Call(args)

	if meta.errLast && len(results) > 0 {
		if errv := results[len(results)-1]; !errv.IsNil() {
			return nil, errv.Interface().(error)
		}
	}
	if len(results) == 0 || (meta.errLast && len(results) == 1) {
		return nil, nil
	}
	return results[0].Interface(), nil
}
