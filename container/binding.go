package container

import (
	"reflect"
	"strings"
	"sync"
)

// Binding 一条已注册的能力：契约类型、具体类型、名称与实例槽。
// 创建后除实例槽与构造候选外不可变；实例槽一旦写入，在所属作用域存续期间
// 不再替换，除非等价三元组（契约、具体、名称）被再次 Push，此时按
// 重注册覆盖语义重置实例槽。
type Binding struct {
	contract reflect.Type // 接口类型，可为 nil
	concrete reflect.Type // 非接口类型，可为 nil（与 contract 至少一个非空）
	name     string       // 大小写不敏感

	mu       sync.Mutex
	instance any
	built    bool
	ctors    []*constructor
	inflight chan struct{} // 构造进行中信号，跨 goroutine 的单赢者机制
	owner    *Request      // 正在构造的解析链入口，用于同链重入判定
}

// Contract 返回契约类型，未声明时为 nil。
func (b *Binding) Contract() reflect.Type { return b.contract }

// Concrete 返回具体类型，未声明时为 nil。
func (b *Binding) Concrete() reflect.Type { return b.concrete }

// Name 返回绑定名称。
func (b *Binding) Name() string { return b.name }

// Instance 返回已实现的实例，尚未构造时为 nil。
func (b *Binding) Instance() any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.instance
}

// equivalent 判断是否为等价三元组（重注册覆盖判定）。
func (b *Binding) equivalent(contract, concrete reflect.Type, name string) bool {
	return b.contract == contract && b.concrete == concrete && strings.EqualFold(b.name, name)
}

// constructor 一个构造函数候选及其按位置配置的参数元数据。
type constructor struct {
	raw       any
	fn        reflect.Value
	fnType    reflect.Type
	params    []Param
	preferred bool
}

// selectConstructor 构造函数选择策略：显式标记者优先，否则参数最多者胜出，
// 并列时取先注册者。无候选时返回 nil，走零参反射构造。
// 调用方必须持有 b.mu。
func (b *Binding) selectConstructor() *constructor {
	var best *constructor
	for _, ct := range b.ctors {
		if ct.preferred {
			return ct
		}
		if best == nil || ct.fnType.NumIn() > best.fnType.NumIn() {
			best = ct
		}
	}
	return best
}
