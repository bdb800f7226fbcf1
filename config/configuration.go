package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Configuration 配置接口
type Configuration interface {
	// Get 获取配置值
	Get(key string) string
	// GetWithDefault 获取配置值，不存在时返回默认值
	GetWithDefault(key, defaultValue string) string
	// GetInt 获取整数配置值
	GetInt(key string) (int, error)
	// GetBool 获取布尔配置值
	GetBool(key string) (bool, error)
	// GetSection 获取配置节
	GetSection(key string) Configuration
	// Bind 绑定配置到结构体
	Bind(key string, target any) error
	// GetAll 获取所有配置
	GetAll() map[string]any
}

// configuration 配置实现：数据整体原子替换，读取无锁
type configuration struct {
	store atomic.Value // map[string]any
}

func newConfiguration(data map[string]any) *configuration {
	c := &configuration{}
	if data == nil {
		data = make(map[string]any)
	}
	c.store.Store(data)
	return c
}

func (c *configuration) data() map[string]any {
	return c.store.Load().(map[string]any)
}

// Get 获取配置值
func (c *configuration) Get(key string) string {
	value := getByPath(c.data(), key)
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// GetWithDefault 获取配置值，不存在时返回默认值
func (c *configuration) GetWithDefault(key, defaultValue string) string {
	if value := c.Get(key); value != "" {
		return value
	}
	return defaultValue
}

// GetInt 获取整数配置值
func (c *configuration) GetInt(key string) (int, error) {
	value := getByPath(c.data(), key)
	if value == nil {
		return 0, fmt.Errorf("config: key %s not found", key)
	}

	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("config: cannot convert %v to int", value)
	}
}

// GetBool 获取布尔配置值
func (c *configuration) GetBool(key string) (bool, error) {
	value := getByPath(c.data(), key)
	if value == nil {
		return false, fmt.Errorf("config: key %s not found", key)
	}

	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("config: cannot convert %v to bool", value)
	}
}

// GetSection 获取配置节
func (c *configuration) GetSection(key string) Configuration {
	value := getByPath(c.data(), key)
	if m, ok := value.(map[string]any); ok {
		return newConfiguration(m)
	}
	return newConfiguration(nil)
}

// Bind 绑定配置到结构体（经由 YAML 序列化往返）
func (c *configuration) Bind(key string, target any) error {
	var value any
	if key == "" {
		value = c.data()
	} else {
		value = getByPath(c.data(), key)
	}
	if value == nil {
		return fmt.Errorf("config: key %s not found", key)
	}

	raw, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("config: failed to marshal section %s: %w", key, err)
	}
	if err := yaml.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("config: failed to bind section %s: %w", key, err)
	}
	return nil
}

// GetAll 获取所有配置（副本）
func (c *configuration) GetAll() map[string]any {
	result := make(map[string]any)
	mergeMaps(result, c.data())
	return result
}

// Load 加载并绑定指定节的配置到结构体 T
func Load[T any](cfg Configuration, section string) (T, error) {
	var t T
	err := cfg.Bind(section, &t)
	return t, err
}

// pathCache 缓存路径解析结果，: 与 . 均可作分隔符
var pathCache sync.Map

func pathSegments(path string) []string {
	if v, ok := pathCache.Load(path); ok {
		return v.([]string)
	}
	parts := strings.Split(strings.ReplaceAll(path, ":", "."), ".")
	pathCache.Store(path, parts)
	return parts
}

func getByPath(data map[string]any, path string) any {
	if path == "" {
		return data
	}

	current := any(data)
	for _, part := range pathSegments(path) {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}

// mergeMaps 递归合并 src 到 dst
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		if dstMap, ok := dst[k].(map[string]any); ok {
			if srcMap, ok := v.(map[string]any); ok {
				mergeMaps(dstMap, srcMap)
				continue
			}
		}
		dst[k] = v
	}
}

// setNestedValue 按冒号路径写入嵌套值，标量字符串尽量转换为原生类型
func setNestedValue(data map[string]any, path string, value any) {
	parts := strings.Split(path, ":")
	current := data

	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if _, exists := current[part]; !exists {
			current[part] = make(map[string]any)
		}
		m, ok := current[part].(map[string]any)
		if !ok {
			return
		}
		current = m
	}

	if s, ok := value.(string); ok {
		if intValue, err := strconv.Atoi(s); err == nil {
			value = intValue
		} else if floatValue, err := strconv.ParseFloat(s, 64); err == nil {
			value = floatValue
		} else if boolValue, err := strconv.ParseBool(s); err == nil {
			value = boolValue
		}
	}

	current[parts[len(parts)-1]] = value
}
