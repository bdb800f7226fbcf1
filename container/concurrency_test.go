package container_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocrud/ioc/container"
)

type slowService struct{}

func TestConcurrentGetConstructsOnce(t *testing.T) {
	c := container.NewContainer()

	var builds atomic.Int32
	container.Push[*slowService](c, container.WithConstructor(func() *slowService {
		builds.Add(1)
		time.Sleep(10 * time.Millisecond)
		return &slowService{}
	}))

	const goroutines = 50
	results := make([]*slowService, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			svc, err := container.Get[*slowService](c)
			if err != nil {
				t.Errorf("Get failed: %v", err)
				return
			}
			results[idx] = svc
		}(i)
	}
	wg.Wait()

	if n := builds.Load(); n != 1 {
		t.Errorf("expected exactly one construction under contention, got %d", n)
	}
	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatal("all goroutines must observe the same cached instance")
		}
	}
}

func TestConcurrentPushAndGet(t *testing.T) {
	c := container.NewContainer()
	container.Push[*Engine](c)

	// 注册与解析并发竞争不应崩溃或死锁
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			container.Push[*Wheel](c)
		}()
		go func() {
			defer wg.Done()
			container.Get[*Engine](c)
		}()
	}
	wg.Wait()

	if _, err := container.Get[*Wheel](c); err != nil {
		t.Errorf("expected the racing registration to be visible afterwards: %v", err)
	}
}

func BenchmarkGetCached(b *testing.B) {
	c := container.NewContainer()
	container.Push[*Engine](c)
	container.Get[*Engine](c)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		container.Get[*Engine](c)
	}
}

func BenchmarkGetFromGrandchild(b *testing.B) {
	root := container.NewContainer()
	container.Push[*Engine](root)
	scope := root.CreateContainer().CreateContainer()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		container.Get[*Engine](scope)
	}
}
