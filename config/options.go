package config

import (
	"fmt"
	"sync"
)

// Option 静态配置选项：应用启动时绑定一次，之后不再变化
type Option[T any] interface {
	Value() T
}

// NewOption 创建静态配置选项
func NewOption[T any](value T) Option[T] {
	return &option[T]{value: value}
}

type option[T any] struct {
	value T
}

func (o *option[T]) Value() T {
	return o.value
}

// OptionsCache 配置选项缓存，持有某个配置节的最近一次绑定结果
type OptionsCache[T any] struct {
	config  Configuration
	section string
	current T
	mu      sync.RWMutex
}

// NewOptionsCache 创建配置选项缓存并完成首次绑定
func NewOptionsCache[T any](config Configuration, section string) (*OptionsCache[T], error) {
	cache := &OptionsCache[T]{config: config, section: section}
	if err := cache.Reload(); err != nil {
		return nil, err
	}
	return cache, nil
}

// Reload 重新绑定配置节
func (c *OptionsCache[T]) Reload() error {
	var next T
	if err := c.config.Bind(c.section, &next); err != nil {
		return fmt.Errorf("config: failed to bind section %s: %w", c.section, err)
	}

	c.mu.Lock()
	c.current = next
	c.mu.Unlock()
	return nil
}

// Get 获取当前配置值
func (c *OptionsCache[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}
