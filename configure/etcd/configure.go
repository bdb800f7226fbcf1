package etcd

import (
	"fmt"

	"github.com/gocrud/ioc/container"
	"github.com/gocrud/ioc/core"
	"github.com/gocrud/ioc/logging"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// Builder Etcd 客户端配置构建器
type Builder struct {
	configs map[string]Options
	order   []string
	errors  []error
}

// NewBuilder 创建 Etcd 构建器
func NewBuilder() *Builder {
	return &Builder{configs: make(map[string]Options)}
}

// AddClient 添加一个 etcd 客户端配置
func (b *Builder) AddClient(name string, configure func(*Options)) *Builder {
	if _, exists := b.configs[name]; exists {
		b.errors = append(b.errors, fmt.Errorf("etcd client '%s' already configured", name))
		return b
	}

	opts := NewDefaultOptions(name)
	if configure != nil {
		configure(opts)
	}

	if err := opts.Validate(); err != nil {
		b.errors = append(b.errors, fmt.Errorf("invalid etcd configuration for '%s': %w", name, err))
		return b
	}

	b.configs[name] = *opts
	b.order = append(b.order, name)
	return b
}

// Build 构建 Etcd 客户端工厂
func (b *Builder) Build(logger logging.Logger) (*Factory, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("etcd configuration errors: %v", b.errors)
	}
	if len(b.configs) == 0 {
		return nil, nil
	}

	factory := NewFactory()
	for _, name := range b.order {
		opts := b.configs[name]
		if err := factory.Register(opts); err != nil {
			return nil, err
		}
		logger.Info("Etcd client registered",
			logging.Field{Key: "name", Value: opts.Name},
			logging.Field{Key: "endpoints", Value: fmt.Sprintf("%v", opts.Endpoints)})
	}
	return factory, nil
}

// Configure 返回 Etcd 配置器
// 使用示例: builder.Configure(etcd.Configure(func(b *etcd.Builder) { ... }))
func Configure(options func(*Builder)) core.Configurator {
	return func(ctx *core.BuildContext) {
		builder := NewBuilder()
		if options != nil {
			options(builder)
		}

		factory, err := builder.Build(ctx.GetLogger())
		if err != nil {
			ctx.GetLogger().Fatal("Failed to build etcd clients",
				logging.Field{Key: "error", Value: err.Error()})
		}
		if factory == nil {
			return
		}

		scope := ctx.Scope()
		container.Push[*Factory](scope, container.WithInstance(factory))

		factory.Each(func(name string, client *clientv3.Client) {
			container.Push[*clientv3.Client](scope, container.WithInstance(client), container.WithName(name))
			if name == "default" {
				container.Push[*clientv3.Client](scope, container.WithInstance(client))
			}
			ctx.GetLogger().Info("Etcd client registered to scope",
				logging.Field{Key: "name", Value: name})
		})
	}
}
