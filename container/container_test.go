package container_test

import (
	"errors"
	"testing"

	"github.com/gocrud/ioc/container"
)

// ---------------- 测试类型 ----------------

type Engine struct {
	Cylinders int
}

type IEngine interface {
	Ignite() string
}

type V8Engine struct{}

func (e *V8Engine) Ignite() string { return "v8" }

type V6Engine struct{}

func (e *V6Engine) Ignite() string { return "v6" }

type DieselEngine struct{}

func (e *DieselEngine) Ignite() string { return "diesel" }

func TestPushAndGetConcrete(t *testing.T) {
	c := container.NewContainer()

	if err := container.Push[*Engine](c); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	first, err := container.Get[*Engine](c)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if first == nil {
		t.Fatal("Get returned nil instance")
	}

	// 重复 Get 返回同一缓存实例（引用稳定，不重建）
	second, err := container.Get[*Engine](c)
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if first != second {
		t.Error("expected the same cached instance on repeated Get")
	}
}

func TestRePushReplacesInstance(t *testing.T) {
	c := container.NewContainer()

	container.Push[*Engine](c)
	first, _ := container.Get[*Engine](c)

	// 等价三元组重注册：实例槽被覆盖
	fresh := &Engine{Cylinders: 8}
	if err := container.Push[*Engine](c, container.WithInstance(fresh)); err != nil {
		t.Fatalf("re-push failed: %v", err)
	}

	got, err := container.Get[*Engine](c)
	if err != nil {
		t.Fatalf("Get after re-push failed: %v", err)
	}
	if got != fresh {
		t.Error("expected re-pushed instance to replace the cached one")
	}
	if got == first {
		t.Error("expected a different instance after re-push")
	}
}

func TestContractResolution(t *testing.T) {
	c := container.NewContainer()

	container.Push[IEngine](c, container.Use[*V8Engine]())
	container.Push[IEngine](c, container.Use[*V6Engine](), container.WithName("v6"))

	// 无名请求：空名绑定按名称匹配胜出
	engine, err := container.Get[IEngine](c)
	if err != nil {
		t.Fatalf("Get IEngine failed: %v", err)
	}
	if engine.Ignite() != "v8" {
		t.Errorf("expected v8, got %s", engine.Ignite())
	}

	// 命名请求，大小写不敏感
	named, err := container.Get[IEngine](c, container.Named("V6"))
	if err != nil {
		t.Fatalf("Get IEngine(v6) failed: %v", err)
	}
	if named.Ignite() != "v6" {
		t.Errorf("expected v6, got %s", named.Ignite())
	}
}

func TestTieBreakFirstRegisteredWins(t *testing.T) {
	c := container.NewContainer()

	// 两个候选都无法按名称区分：取先注册者
	container.Push[IEngine](c, container.Use[*V8Engine](), container.WithName("alpha"))
	container.Push[IEngine](c, container.Use[*V6Engine](), container.WithName("beta"))

	engine, err := container.Get[IEngine](c)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if engine.Ignite() != "v8" {
		t.Errorf("expected first-registered binding to win, got %s", engine.Ignite())
	}
}

func TestSingleCandidateIgnoresName(t *testing.T) {
	c := container.NewContainer()
	container.Push[IEngine](c, container.Use[*DieselEngine]())

	// 唯一候选直接取用，名称不参与
	engine, err := container.Get[IEngine](c, container.Named("whatever"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if engine.Ignite() != "diesel" {
		t.Errorf("expected diesel, got %s", engine.Ignite())
	}
}

func TestPushValidation(t *testing.T) {
	c := container.NewContainer()

	// 契约必须是接口
	err := c.Push(container.For(container.TypeOf[*Engine]()), container.Of(container.TypeOf[*Engine]()))
	if !errors.Is(err, container.ErrConfiguration) {
		t.Errorf("expected configuration error for non-interface contract, got %v", err)
	}

	// 具体类型不能是接口
	err = c.Push(container.Of(container.TypeOf[IEngine]()))
	if !errors.Is(err, container.ErrConfiguration) {
		t.Errorf("expected configuration error for interface concrete type, got %v", err)
	}

	// 具体类型必须实现契约
	err = container.Push[IEngine](c, container.Use[*Engine]())
	if !errors.Is(err, container.ErrConfiguration) {
		t.Errorf("expected configuration error for non-implementing concrete, got %v", err)
	}

	// 契约与具体至少给出一个
	err = c.Push(container.WithName("empty"))
	if !errors.Is(err, container.ErrConfiguration) {
		t.Errorf("expected configuration error for empty binding, got %v", err)
	}
}

func TestNotRegistered(t *testing.T) {
	c := container.NewContainer()

	_, err := container.Get[*Engine](c)
	if !errors.Is(err, container.ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}

	var nre *container.NotRegisteredError
	if !errors.As(err, &nre) {
		t.Fatal("expected a *NotRegisteredError")
	}
	if nre.Type != container.TypeOf[*Engine]() {
		t.Errorf("error should carry the requested type, got %v", nre.Type)
	}
}

func TestFallback(t *testing.T) {
	c := container.NewContainer()

	spare := &Engine{Cylinders: 4}
	got, err := container.Get[*Engine](c, container.WithFallback(spare))
	if err != nil {
		t.Fatalf("Get with fallback failed: %v", err)
	}
	if got != spare {
		t.Error("expected the fallback instance")
	}

	// 有绑定时兜底值不生效
	container.Push[*Engine](c)
	got, err = container.Get[*Engine](c, container.WithFallback(spare))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == spare {
		t.Error("fallback must not shadow a registered binding")
	}
}

func TestNotFoundHandler(t *testing.T) {
	c := container.NewContainer()

	substitute := &Engine{Cylinders: 6}
	err := c.SetNotFoundHandler(func(req *container.Request) (any, error) {
		if req.Type == container.TypeOf[*Engine]() {
			return substitute, nil
		}
		return nil, &container.NotRegisteredError{Type: req.Type, Name: req.Name}
	})
	if err != nil {
		t.Fatalf("SetNotFoundHandler failed: %v", err)
	}

	got, err := container.Get[*Engine](c)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != substitute {
		t.Error("expected the handler-substituted instance")
	}

	// 未命中回调只能设置在根作用域上
	child := c.CreateContainer()
	err = child.SetNotFoundHandler(func(req *container.Request) (any, error) { return nil, nil })
	if !errors.Is(err, container.ErrConfiguration) {
		t.Errorf("expected configuration error on non-root handler, got %v", err)
	}
}

func TestHas(t *testing.T) {
	c := container.NewContainer()

	if container.Has[*Engine](c) {
		t.Error("Has should be false before registration")
	}

	container.Push[*Engine](c)
	if !container.Has[*Engine](c) {
		t.Error("Has should be true after registration")
	}

	// Has 不触发构造
	container.Push[IEngine](c, container.Use[*V8Engine](), container.WithName("v8"))
	if !container.Has[IEngine](c, container.Named("V8")) {
		t.Error("Has should match names case-insensitively")
	}
}

func TestNew(t *testing.T) {
	c := container.NewContainer()

	container.Push[*Engine](c)
	cached, _ := container.Get[*Engine](c)

	fresh, err := container.New[*Engine](c)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if fresh == cached {
		t.Error("New must construct a fresh instance")
	}

	again, err := container.New[*Engine](c)
	if err != nil {
		t.Fatalf("second New failed: %v", err)
	}
	if again == fresh {
		t.Error("every New call must construct anew")
	}

	// 接口没有实现，无法临时构造
	if _, err := container.New[IEngine](c); !errors.Is(err, container.ErrConfiguration) {
		t.Errorf("expected configuration error for New on interface, got %v", err)
	}
}

func TestNewKeepsRegisteredConstructor(t *testing.T) {
	c := container.NewContainer()

	container.Push[*Engine](c, container.WithConstructor(func() *Engine {
		return &Engine{Cylinders: 8}
	}))

	cached, err := container.Get[*Engine](c)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if cached.Cylinders != 8 {
		t.Fatalf("constructor not used: Cylinders=%d", cached.Cylinders)
	}

	fresh, err := container.New[*Engine](c)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if fresh == cached {
		t.Error("New must construct a fresh instance")
	}
	if fresh.Cylinders != 8 {
		t.Errorf("New must build through the registered constructor, got Cylinders=%d", fresh.Cylinders)
	}

	// 构造候选在 New 之后仍然在位
	again, err := container.Get[*Engine](c)
	if err != nil {
		t.Fatalf("Get after New failed: %v", err)
	}
	if again.Cylinders != 8 {
		t.Errorf("registered constructor lost after New, got Cylinders=%d", again.Cylinders)
	}
}

func TestNilTypeRequests(t *testing.T) {
	c := container.NewContainer()

	if _, err := c.Get(nil); !errors.Is(err, container.ErrConfiguration) {
		t.Errorf("expected configuration error for Get(nil), got %v", err)
	}
	if c.Has(nil) {
		t.Error("Has(nil) must report false")
	}
	if _, err := c.New(nil); !errors.Is(err, container.ErrConfiguration) {
		t.Errorf("expected configuration error for New(nil), got %v", err)
	}
}
