// Package container 实现层级化的依赖解析引擎。
//
// 一个 Container 是解析层级中的一个作用域节点：持有有序的绑定表、
// 指向父作用域的非拥有引用以及它所拥有的子作用域。调用方通过 Push
// 注册能力，通过 Get 请求实例；本地未命中时沿父链向上委托，构造出的
// 实例在注册它的作用域内缓存至作用域释放。
package container

import (
	"io"
	"reflect"
	"sync"
	"sync/atomic"
)

// DefaultMaxDepth 默认最大解析深度。
const DefaultMaxDepth = 20

// NotFoundHandler 未命中回调：接收最终未被满足的请求，
// 返回替代实例或错误。只允许设置在根作用域上。
type NotFoundHandler func(*Request) (any, error)

// Container 解析层级中的一个作用域。
// 同一 Container 可被多个 goroutine 并发注册与解析；
// 绑定表的读写由作用域级读写锁保护，构造的至多一次语义见 resolver。
type Container struct {
	mu       sync.RWMutex
	bindings []*Binding
	parent   *Container   // 非拥有引用，仅用于向上查找委托
	children []*Container // 拥有子作用域，负责其释放
	maxDepth int
	notFound NotFoundHandler
	disposed atomic.Bool
	meta     *metadataCache // 整棵作用域树共享
}

// NewContainer 创建根作用域。
func NewContainer(opts ...ContainerOption) *Container {
	c := &Container{
		maxDepth: DefaultMaxDepth,
		meta:     newMetadataCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateContainer 创建子作用域并挂到当前作用域的子表中，
// maxDepth 与元数据缓存继承自父。已释放的作用域不可再派生子作用域。
func (c *Container) CreateContainer() *Container {
	if c.disposed.Load() {
		panic("ioc: CreateContainer called on a disposed container")
	}

	child := &Container{
		parent:   c,
		maxDepth: c.maxDepth,
		meta:     c.meta,
	}

	c.mu.Lock()
	c.children = append(c.children, child)
	c.mu.Unlock()
	return child
}

// Parent 返回父作用域，根作用域返回 nil。
func (c *Container) Parent() *Container { return c.parent }

// SetNotFoundHandler 设置未命中回调。
// 查找总是向上委托到根，非根作用域上的回调永远不会被一致地触发，
// 因此设置在非根作用域上是配置错误。
func (c *Container) SetNotFoundHandler(h NotFoundHandler) error {
	if c.parent != nil {
		return configErrorf("not-found handler can only be set on the root container")
	}
	c.mu.Lock()
	c.notFound = h
	c.mu.Unlock()
	return nil
}

// Push 注册一条绑定。
//
// 选项给出 {契约类型, 具体类型, 实例, 名称, 构造函数} 的组合：
//   - 契约类型必须是接口，具体类型必须不是接口，两者至少给出一个；
//   - 同时给出时具体类型必须实现契约；
//   - 等价三元组（契约、具体、名称，名称大小写不敏感）已存在时
//     覆盖其实例槽与构造候选（重注册，不是累积），注册位次保持不变；
//     否则按注册顺序追加新绑定。
//
// 未给出实例的绑定推迟到第一次 Get 时构造。
func (c *Container) Push(opts ...BindOption) error {
	if c.disposed.Load() {
		return ErrDisposed
	}

	cfg := &bindConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.hasInstance {
		if cfg.instance == nil {
			return configErrorf("instance must not be nil")
		}
		if cfg.concrete == nil {
			cfg.concrete = reflect.TypeOf(cfg.instance)
		}
	}

	// 具体类型缺席时从首个构造函数的返回值推断
	if cfg.concrete == nil && len(cfg.ctors) > 0 {
		if t := reflect.TypeOf(cfg.ctors[0].raw); t != nil && t.Kind() == reflect.Func && t.NumOut() > 0 {
			cfg.concrete = t.Out(0)
		}
	}

	if cfg.contract == nil && cfg.concrete == nil {
		return configErrorf("a contract or a concrete type is required")
	}
	if cfg.contract != nil && cfg.contract.Kind() != reflect.Interface {
		return configErrorf("contract type %v is not an interface", cfg.contract)
	}
	if cfg.concrete != nil && cfg.concrete.Kind() == reflect.Interface {
		return configErrorf("concrete type %v must not be an interface", cfg.concrete)
	}
	if cfg.contract != nil && cfg.concrete != nil && !cfg.concrete.Implements(cfg.contract) {
		return configErrorf("concrete type %v does not implement contract %v", cfg.concrete, cfg.contract)
	}

	for _, ct := range cfg.ctors {
		v := reflect.ValueOf(ct.raw)
		if v.Kind() != reflect.Func {
			return configErrorf("constructor for %v must be a function, got %T", cfg.concrete, ct.raw)
		}
		t := v.Type()
		if t.NumOut() == 0 {
			return configErrorf("constructor for %v must return a value", cfg.concrete)
		}
		if cfg.concrete != nil && !t.Out(0).AssignableTo(cfg.concrete) {
			return configErrorf("constructor return type %v is not assignable to %v", t.Out(0), cfg.concrete)
		}
		if len(ct.params) > t.NumIn() {
			return configErrorf("constructor for %v has %d inputs but %d params configured",
				cfg.concrete, t.NumIn(), len(ct.params))
		}
		ct.fn = v
		ct.fnType = t
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.bindings {
		if existing.equivalent(cfg.contract, cfg.concrete, cfg.name) {
			existing.mu.Lock()
			existing.instance = cfg.instance
			existing.built = cfg.hasInstance
			existing.ctors = cfg.ctors
			existing.mu.Unlock()
			return nil
		}
	}

	b := &Binding{
		contract: cfg.contract,
		concrete: cfg.concrete,
		name:     cfg.name,
		ctors:    cfg.ctors,
	}
	if cfg.hasInstance {
		b.instance = cfg.instance
		b.built = true
	}
	c.bindings = append(c.bindings, b)
	return nil
}

// Get 以类型令牌解析一个实例。
// 请求被包装为深度 0 的 Request 后交给递归解析器。
func (c *Container) Get(typ reflect.Type, opts ...ResolveOption) (any, error) {
	if typ == nil {
		return nil, configErrorf("resolution requires a type, got nil")
	}
	req := &Request{Type: typ}
	for _, opt := range opts {
		opt(req)
	}
	req.root = req
	return c.resolve(req)
}

// Has 报告本地或任一祖先作用域中是否存在匹配的绑定。
// 不触发构造，无副作用。
func (c *Container) Has(typ reflect.Type, opts ...ResolveOption) bool {
	if typ == nil || c.disposed.Load() {
		return false
	}
	req := &Request{Type: typ}
	for _, opt := range opts {
		opt(req)
	}
	for s := c; s != nil; s = s.parent {
		if typ.Kind() == reflect.Interface {
			if s.matchContract(req) != nil {
				return true
			}
		} else if s.matchConcrete(req) != nil {
			return true
		}
	}
	return false
}

// New 临时构造：等价的无名绑定已存在时只清除其缓存实例，
// 已注册的构造候选原样保留；不存在时注册一个全新的无名、无实例绑定。
// 随后立即解析，因此 New 总是得到新构造的实例。接口类型无法构造。
func (c *Container) New(typ reflect.Type) (any, error) {
	if typ == nil || typ.Kind() == reflect.Interface {
		return nil, configErrorf("cannot construct contract type %v without an implementation", typ)
	}

	c.mu.RLock()
	var target *Binding
	for _, b := range c.bindings {
		if b.equivalent(nil, typ, "") {
			target = b
			break
		}
	}
	c.mu.RUnlock()

	if target == nil {
		if err := c.Push(Of(typ)); err != nil {
			return nil, err
		}
	} else {
		target.mu.Lock()
		target.instance = nil
		target.built = false
		target.mu.Unlock()
	}
	return c.Get(typ)
}

// Dispose 释放作用域：先深度优先释放全部子作用域，再对本地实现了
// io.Closer 的实例调用 Close，然后从父作用域的子表中摘除自身，
// 最后清空绑定表。释放是终态，重复释放为无操作，
// 释放后的解析与注册返回 ErrDisposed。
func (c *Container) Dispose() {
	if !c.disposed.CompareAndSwap(false, true) {
		return
	}

	c.mu.Lock()
	children := c.children
	c.children = nil
	bindings := c.bindings
	c.mu.Unlock()

	for _, child := range children {
		child.Dispose()
	}

	for _, b := range bindings {
		b.mu.Lock()
		inst := b.instance
		b.instance = nil
		b.built = false
		b.mu.Unlock()
		if closer, ok := inst.(io.Closer); ok {
			_ = closer.Close()
		}
	}

	if c.parent != nil {
		c.parent.removeChild(c)
	}

	c.mu.Lock()
	c.bindings = nil
	c.mu.Unlock()
}

func (c *Container) removeChild(child *Container) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, ch := range c.children {
		if ch == child {
			c.children = append(c.children[:i], c.children[i+1:]...)
			return
		}
	}
}
