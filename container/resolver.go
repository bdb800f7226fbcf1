package container

import (
	"fmt"
	"reflect"
	"strings"
)

var (
	containerType = reflect.TypeOf((*Container)(nil))
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
)

// ContainerReady 构造完成通知能力。
// 实例在构造与属性注入全部完成后会收到恰好一次 ContainerReady 调用，
// 这是它"已被完整装配"的唯一通知。
type ContainerReady interface {
	ContainerReady()
}

// resolve 递归解析器。
// 顺序：深度护栏 → 契约/具体匹配 → 父链委托 → 兜底值 → 未命中回调。
func (c *Container) resolve(req *Request) (any, error) {
	if c.disposed.Load() {
		return nil, ErrDisposed
	}
	if req.Depth > c.maxDepth {
		return nil, &DepthError{Type: req.Type, Depth: req.Depth, Max: c.maxDepth}
	}

	if req.Type.Kind() == reflect.Interface {
		// 契约请求：命中后以绑定的具体类型重新请求，同名，深度加一
		if b := c.matchContract(req); b != nil {
			if b.concrete == nil {
				return nil, configErrorf("binding for contract %v has no concrete type", req.Type)
			}
			return c.resolve(req.child(b.concrete, req.Name, req.Fallback))
		}
	} else {
		if b := c.matchConcrete(req); b != nil {
			return c.realize(b, req)
		}
	}

	// 本地未命中：向上委托。父查找不改动子作用域的绑定。
	if c.parent != nil {
		return c.parent.resolve(req.child(req.Type, req.Name, req.Fallback))
	}

	// 已到根：兜底值优先，其次未命中回调
	if req.Fallback != nil {
		return req.Fallback, nil
	}
	c.mu.RLock()
	handler := c.notFound
	c.mu.RUnlock()
	if handler != nil {
		return handler(req)
	}
	return nil, &NotRegisteredError{Type: req.Type, Name: req.Name}
}

// matchContract 按契约类型过滤本地绑定并套用命名决胜。
func (c *Container) matchContract(req *Request) *Binding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var candidates []*Binding
	for _, b := range c.bindings {
		if b.contract == req.Type {
			candidates = append(candidates, b)
		}
	}
	return pick(candidates, req.Name)
}

// matchConcrete 按具体类型过滤本地绑定并套用命名决胜。
func (c *Container) matchConcrete(req *Request) *Binding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var candidates []*Binding
	for _, b := range c.bindings {
		if b.concrete == req.Type {
			candidates = append(candidates, b)
		}
	}
	return pick(candidates, req.Name)
}

// pick 多候选决胜：唯一候选直接取用；多候选先按名称匹配
// （大小写不敏感，空名请求同样按空名匹配），名称无从区分时取先注册者。
func pick(candidates []*Binding, name string) *Binding {
	switch len(candidates) {
	case 0:
		return nil
	case 1:
		return candidates[0]
	}
	for _, b := range candidates {
		if strings.EqualFold(b.name, name) {
			return b
		}
	}
	return candidates[0]
}

// realize 返回绑定的实例，缺席时构造并写回缓存。
// "检查实例、缺席则构造、写回缓存"整个序列由绑定级锁加 inflight 信号
// 保证跨 goroutine 至多构造一次；同一解析链的重入（即循环依赖）
// 不等待信号而继续构造，由深度护栏终止。
//
// 注意：循环依赖本身是配置错误。单条解析链内由深度护栏报错；
// 若两个 goroutine 各自从环的两端同时发起构造，则会在对方的 inflight
// 信号上互相等待。不要注册循环依赖的绑定。
func (c *Container) realize(b *Binding, req *Request) (any, error) {
	b.mu.Lock()
	if b.built {
		inst := b.instance
		b.mu.Unlock()
		return inst, nil
	}
	if b.inflight != nil {
		if b.owner == req.root {
			ctor := b.selectConstructor()
			b.mu.Unlock()
			// 重入构造不写缓存，循环会在深度护栏处失败
			return c.construct(b, ctor, req)
		}
		done := b.inflight
		b.mu.Unlock()
		<-done
		return c.realize(b, req)
	}
	done := make(chan struct{})
	b.inflight = done
	b.owner = req.root
	ctor := b.selectConstructor()
	b.mu.Unlock()

	inst, err := c.construct(b, ctor, req)

	b.mu.Lock()
	if err == nil {
		b.instance = inst
		b.built = true
	}
	b.inflight = nil
	b.owner = nil
	b.mu.Unlock()
	close(done)

	return inst, err
}

// construct 构造一个实例：调用选中的构造函数（无候选时走零参反射构造），
// 注入标记属性，最后发出 ContainerReady 通知。
func (c *Container) construct(b *Binding, ctor *constructor, req *Request) (any, error) {
	var inst any
	var err error
	if ctor != nil {
		inst, err = c.callConstructor(ctor, req)
	} else {
		inst, err = constructZero(b.concrete)
	}
	if err != nil {
		return nil, err
	}

	if err := c.injectProperties(inst, req); err != nil {
		return nil, err
	}

	if ready, ok := inst.(ContainerReady); ok {
		ready.ContainerReady()
	}
	return inst, nil
}

// callConstructor 按声明顺序解析参数并调用构造函数。
// 名称优先级：请求名 > 配置名；兜底优先级：请求兜底 > 配置兜底。
// 类型为 *Container 的参数直接拒绝：构造注入容器本身是引用持有反模式。
func (c *Container) callConstructor(ctor *constructor, req *Request) (any, error) {
	meta := c.meta.funcOf(ctor.fnType)
	args := make([]reflect.Value, len(meta.in))

	for i, paramType := range meta.in {
		if paramType == containerType {
			return nil, configErrorf("constructor %v parameter %d injects the container itself", ctor.fnType, i)
		}

		name := req.Name
		fallback := req.Fallback
		if i < len(ctor.params) {
			if name == "" {
				name = ctor.params[i].Name
			}
			if fallback == nil {
				fallback = ctor.params[i].Default
			}
		}

		val, err := c.resolve(req.child(paramType, name, fallback))
		if err != nil {
			return nil, fmt.Errorf("ioc: constructor argument %d (%v): %w", i, paramType, err)
		}
		if args[i], err = argValue(val, paramType); err != nil {
			return nil, err
		}
	}

	results := ctor.fn.Call(args)
	if meta.errLast && meta.numOut > 1 {
		if errv := results[len(results)-1]; !errv.IsNil() {
			return nil, errv.Interface().(error)
		}
	}
	return results[0].Interface(), nil
}

// constructZero 零参反射构造：具体类型为 *T 时返回新分配的 *T，
// 结构体值类型返回其零值，其余类型返回零值。
func constructZero(t reflect.Type) (any, error) {
	if t == nil {
		return nil, configErrorf("binding has no concrete type to construct")
	}
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		return reflect.New(t.Elem()).Interface(), nil
	}
	return reflect.Zero(t).Interface(), nil
}

// injectProperties 为实例上所有标记 inject 的字段赋值。
// 字段类型为 *Container 时直接注入当前解析作用域（自引用注入，不做查找）；
// 其余字段解析时深度加一，名称优先级：请求名 > 标签名 > 字段声明名，
// 兜底优先级：请求兜底 > 标签 default 字面量。
// 只有指针实例的字段可被设置，值类型实例没有可注入的属性。
func (c *Container) injectProperties(inst any, req *Request) error {
	if inst == nil {
		return nil
	}
	v := reflect.ValueOf(inst)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil
	}

	fields := c.meta.fieldsOf(v.Type())
	if len(fields) == 0 {
		return nil
	}

	elem := v.Elem()
	for _, f := range fields {
		target := elem.Field(f.index)

		if f.typ == containerType {
			target.Set(reflect.ValueOf(c))
			continue
		}

		name := req.Name
		if name == "" {
			name = f.name
		}
		if name == "" {
			name = f.field
		}
		fallback := req.Fallback
		if fallback == nil && f.hasDefault {
			def, err := convertLiteral(f.defaultLit, f.typ)
			if err != nil {
				return err
			}
			fallback = def
		}

		val, err := c.resolve(req.child(f.typ, name, fallback))
		if err != nil {
			return fmt.Errorf("ioc: property %s (%v): %w", f.field, f.typ, err)
		}
		av, err := argValue(val, f.typ)
		if err != nil {
			return err
		}
		target.Set(av)
	}
	return nil
}

// argValue 将解析结果转换为可赋值给目标类型的 reflect.Value。
func argValue(val any, t reflect.Type) (reflect.Value, error) {
	if val == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(val)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if v.Type().ConvertibleTo(t) {
		return v.Convert(t), nil
	}
	return reflect.Value{}, configErrorf("value of type %T is not assignable to %v", val, t)
}
