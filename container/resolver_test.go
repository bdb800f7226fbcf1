package container_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gocrud/ioc/container"
)

// ---------------- 构造函数选择 ----------------

type Gearbox struct {
	Ratio int
	From  string
}

func TestConstructorMostParamsWins(t *testing.T) {
	c := container.NewContainer()

	container.Push[int](c, container.WithInstance(7))
	container.Push[*Gearbox](c,
		container.WithConstructor(func() *Gearbox { return &Gearbox{From: "zero"} }),
		container.WithConstructor(func(ratio int) *Gearbox { return &Gearbox{Ratio: ratio, From: "one"} }),
	)

	gb, err := container.Get[*Gearbox](c)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if gb.From != "one" {
		t.Errorf("expected the constructor with the most parameters, got %q", gb.From)
	}
	if gb.Ratio != 7 {
		t.Errorf("expected injected ratio 7, got %d", gb.Ratio)
	}
}

func TestPreferredConstructorWins(t *testing.T) {
	c := container.NewContainer()

	container.Push[int](c, container.WithInstance(7))
	container.Push[*Gearbox](c,
		container.WithConstructor(func(ratio int) *Gearbox { return &Gearbox{Ratio: ratio, From: "arity"} }),
		container.WithPreferredConstructor(func() *Gearbox { return &Gearbox{From: "preferred"} }),
	)

	gb, err := container.Get[*Gearbox](c)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if gb.From != "preferred" {
		t.Errorf("preferred constructor must win regardless of arity, got %q", gb.From)
	}
}

func TestConstructorErrorPropagates(t *testing.T) {
	c := container.NewContainer()

	boom := errors.New("boom")
	container.Push[*Gearbox](c, container.WithConstructor(func() (*Gearbox, error) {
		return nil, boom
	}))

	if _, err := container.Get[*Gearbox](c); !errors.Is(err, boom) {
		t.Errorf("expected constructor error to propagate, got %v", err)
	}
}

// ---------------- 参数元数据 ----------------

type Conn struct {
	Addr string
}

func TestParamNameAndDefault(t *testing.T) {
	c := container.NewContainer()

	container.Push[string](c, container.WithInstance("10.0.0.1"), container.WithName("primary"))
	container.Push[string](c, container.WithInstance("10.0.0.2"), container.WithName("replica"))

	container.Push[*Conn](c,
		container.WithConstructor(func(addr string) *Conn { return &Conn{Addr: addr} }),
		container.WithParams(container.Param{Name: "replica"}),
	)

	conn, err := container.Get[*Conn](c)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if conn.Addr != "10.0.0.2" {
		t.Errorf("expected the configured param name to pick the replica, got %s", conn.Addr)
	}

	// 请求名优先于配置名（重注册清掉缓存实例后再取）
	container.Push[*Conn](c,
		container.WithConstructor(func(addr string) *Conn { return &Conn{Addr: addr} }),
		container.WithParams(container.Param{Name: "replica"}),
	)
	conn3, err := container.Get[*Conn](c, container.Named("primary"))
	if err != nil {
		t.Fatalf("Get with request name failed: %v", err)
	}
	if conn3.Addr != "10.0.0.1" {
		t.Errorf("request name must override the configured name, got %s", conn3.Addr)
	}
}

func TestParamDefaultFallback(t *testing.T) {
	c := container.NewContainer()

	container.Push[*Conn](c,
		container.WithConstructor(func(addr string) *Conn { return &Conn{Addr: addr} }),
		container.WithParams(container.Param{Default: "127.0.0.1"}),
	)

	conn, err := container.Get[*Conn](c)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if conn.Addr != "127.0.0.1" {
		t.Errorf("expected the configured default, got %s", conn.Addr)
	}
}

func TestContainerConstructorParamRejected(t *testing.T) {
	c := container.NewContainer()

	type holder struct{ c *container.Container }
	container.Push[*holder](c, container.WithConstructor(func(cc *container.Container) *holder {
		return &holder{c: cc}
	}))

	// 即使参数本可被满足，构造注入容器也必须失败
	if _, err := container.Get[*holder](c); !errors.Is(err, container.ErrConfiguration) {
		t.Errorf("expected configuration error for container-typed parameter, got %v", err)
	}
}

// ---------------- 属性注入 ----------------

type Wheel struct {
	Size int
}

type Chassis struct {
	Wheel *Wheel               `inject:""`
	Port  int                  `inject:",default=5432"`
	Scope *container.Container `inject:""`

	plain string // 无标签字段不参与注入
}

func TestPropertyInjection(t *testing.T) {
	c := container.NewContainer()

	container.Push[*Wheel](c)
	container.Push[*Chassis](c)

	ch, err := container.Get[*Chassis](c)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ch.Wheel == nil {
		t.Error("expected the tagged property to be injected")
	}
	if ch.Port != 5432 {
		t.Errorf("expected the default literal 5432, got %d", ch.Port)
	}
	if ch.Scope != c {
		t.Error("container-typed property must receive the resolving scope itself")
	}
	if ch.plain != "" {
		t.Error("untagged fields must stay untouched")
	}
}

type NamedWheelCar struct {
	Wheel *Wheel `inject:"offroad"`
}

func TestPropertyInjectionNamed(t *testing.T) {
	c := container.NewContainer()

	container.Push[*Wheel](c, container.WithInstance(&Wheel{Size: 15}))
	offroad := &Wheel{Size: 20}
	container.Push[*Wheel](c, container.WithInstance(offroad), container.WithName("offroad"))

	container.Push[*NamedWheelCar](c)
	car, err := container.Get[*NamedWheelCar](c)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if car.Wheel != offroad {
		t.Errorf("expected the tag-named wheel, got size %d", car.Wheel.Size)
	}
}

type FleetCar struct {
	V6 IEngine `inject:""`
}

func TestPropertyInjectionFieldNameFallback(t *testing.T) {
	c := container.NewContainer()

	container.Push[IEngine](c, container.Use[*V8Engine]())
	container.Push[IEngine](c, container.Use[*V6Engine](), container.WithName("v6"))

	// 标签未给名称时退回字段声明名，大小写不敏感
	container.Push[*FleetCar](c)
	car, err := container.Get[*FleetCar](c)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got := car.V6.Ignite(); got != "v6" {
		t.Errorf("expected the engine named after the field, got %q", got)
	}
}

// ---------------- 生命周期通知 ----------------

type readyService struct {
	readyCount int
}

func (s *readyService) ContainerReady() { s.readyCount++ }

func TestContainerReadyCalledOnce(t *testing.T) {
	c := container.NewContainer()

	container.Push[*readyService](c)

	first, err := container.Get[*readyService](c)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	container.Get[*readyService](c)
	container.Get[*readyService](c)

	if first.readyCount != 1 {
		t.Errorf("ContainerReady must fire exactly once, fired %d times", first.readyCount)
	}
}

// ---------------- 深度护栏 ----------------

type chain1 struct{ next *chain2 }
type chain2 struct{ next *chain3 }
type chain3 struct{ next *chain4 }
type chain4 struct{ next *chain5 }
type chain5 struct{}

func pushChain(c *container.Container) {
	container.Push[*chain1](c, container.WithConstructor(func(n *chain2) *chain1 { return &chain1{next: n} }))
	container.Push[*chain2](c, container.WithConstructor(func(n *chain3) *chain2 { return &chain2{next: n} }))
	container.Push[*chain3](c, container.WithConstructor(func(n *chain4) *chain3 { return &chain3{next: n} }))
	container.Push[*chain4](c, container.WithConstructor(func(n *chain5) *chain4 { return &chain4{next: n} }))
	container.Push[*chain5](c)
}

func TestDepthGuard(t *testing.T) {
	// chain1 的完整解析需要深度 4：超出上限 3，失败
	deep := container.NewContainer(container.WithMaxDepth(3))
	pushChain(deep)
	if _, err := container.Get[*chain1](deep); !errors.Is(err, container.ErrMaxDepth) {
		t.Errorf("expected ErrMaxDepth for a chain deeper than the limit, got %v", err)
	}

	// chain2 起步只需深度 3：在上限内，成功
	ok := container.NewContainer(container.WithMaxDepth(3))
	pushChain(ok)
	if _, err := container.Get[*chain2](ok); err != nil {
		t.Errorf("expected a chain within the limit to resolve, got %v", err)
	}
}

type cycleA struct{ b *cycleB }
type cycleB struct{ a *cycleA }

func TestCyclicDependencyFailsWithDepthError(t *testing.T) {
	c := container.NewContainer()

	container.Push[*cycleA](c, container.WithConstructor(func(b *cycleB) *cycleA { return &cycleA{b: b} }))
	container.Push[*cycleB](c, container.WithConstructor(func(a *cycleA) *cycleB { return &cycleB{a: a} }))

	_, err := container.Get[*cycleA](c)
	if !errors.Is(err, container.ErrMaxDepth) {
		t.Fatalf("expected a cycle to surface as ErrMaxDepth, got %v", err)
	}

	var de *container.DepthError
	if !errors.As(err, &de) {
		t.Fatal("expected a *DepthError with request context")
	}
	if de.Max != container.DefaultMaxDepth {
		t.Errorf("expected default max depth %d, got %d", container.DefaultMaxDepth, de.Max)
	}
}

func ExampleContainer_Get() {
	c := container.NewContainer()

	container.Push[IEngine](c, container.Use[*V8Engine]())
	container.Push[IEngine](c, container.Use[*V6Engine](), container.WithName("v6"))

	engine := container.MustGet[IEngine](c)
	named := container.MustGet[IEngine](c, container.Named("v6"))

	fmt.Println(engine.Ignite(), named.Ignite())
	// Output: v8 v6
}
