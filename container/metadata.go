package container

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// 属性注入标签。格式: `inject:"name,default=value"`，
// 第一段为覆盖名称，default= 提供兜底字面量（按字段类型转换）。
const injectTag = "inject"

// fieldMeta 一个标记了注入的结构体字段。
type fieldMeta struct {
	index      int
	field      string // 字段名，用于错误信息
	name       string // 标签配置的注入名称
	typ        reflect.Type
	hasDefault bool
	defaultLit string
}

// funcMeta 一个函数签名的参数表与返回值形态。
type funcMeta struct {
	in      []reflect.Type
	numOut  int
	errLast bool // 最后一个返回值是否为 error
}

// metadataCache 反射元数据缓存：按类型记忆函数参数表与注入字段集。
// 纯记忆化，无业务逻辑，线程安全；整棵作用域树共享一份
// （子作用域创建时继承根的缓存）。
type metadataCache struct {
	mu      sync.RWMutex
	funcs   map[reflect.Type]*funcMeta
	structs map[reflect.Type][]fieldMeta
}

func newMetadataCache() *metadataCache {
	return &metadataCache{
		funcs:   make(map[reflect.Type]*funcMeta),
		structs: make(map[reflect.Type][]fieldMeta),
	}
}

// funcOf 返回函数类型的参数元数据。
func (m *metadataCache) funcOf(t reflect.Type) *funcMeta {
	m.mu.RLock()
	fm, ok := m.funcs[t]
	m.mu.RUnlock()
	if ok {
		return fm
	}

	fm = &funcMeta{numOut: t.NumOut()}
	for i := 0; i < t.NumIn(); i++ {
		fm.in = append(fm.in, t.In(i))
	}
	if t.NumOut() > 0 && t.Out(t.NumOut()-1) == errorType {
		fm.errLast = true
	}

	m.mu.Lock()
	m.funcs[t] = fm
	m.mu.Unlock()
	return fm
}

// fieldsOf 返回结构体类型上标记了 inject 的导出字段集。
// 传入指针类型时自动解引用；空结果同样缓存，避免重复扫描。
func (m *metadataCache) fieldsOf(t reflect.Type) []fieldMeta {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	m.mu.RLock()
	fields, cached := m.structs[t]
	m.mu.RUnlock()
	if cached {
		return fields
	}

	fields = make([]fieldMeta, 0)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, hasTag := f.Tag.Lookup(injectTag)
		if !hasTag || !f.IsExported() {
			continue
		}

		fm := fieldMeta{index: i, field: f.Name, typ: f.Type}

		// 解析 tag: "name,default=value"
		parts := strings.Split(tag, ",")
		fm.name = strings.TrimSpace(parts[0])
		for _, part := range parts[1:] {
			part = strings.TrimSpace(part)
			if lit, ok := strings.CutPrefix(part, "default="); ok {
				fm.hasDefault = true
				fm.defaultLit = lit
			}
		}

		fields = append(fields, fm)
	}

	m.mu.Lock()
	m.structs[t] = fields
	m.mu.Unlock()
	return fields
}

// convertLiteral 将标签里的兜底字面量转换为字段类型的值。
func convertLiteral(lit string, t reflect.Type) (any, error) {
	rv := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		rv.SetString(lit)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return nil, configErrorf("default literal %q is not a valid %v", lit, t)
		}
		rv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(lit, 10, 64)
		if err != nil {
			return nil, configErrorf("default literal %q is not a valid %v", lit, t)
		}
		rv.SetUint(n)
	case reflect.Bool:
		v, err := strconv.ParseBool(lit)
		if err != nil {
			return nil, configErrorf("default literal %q is not a valid %v", lit, t)
		}
		rv.SetBool(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, configErrorf("default literal %q is not a valid %v", lit, t)
		}
		rv.SetFloat(v)
	default:
		return nil, configErrorf("default literal not supported for field type %v", t)
	}
	return rv.Interface(), nil
}
