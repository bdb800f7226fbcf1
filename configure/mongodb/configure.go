package mongodb

import (
	"fmt"

	"github.com/gocrud/ioc/container"
	"github.com/gocrud/ioc/core"
	"github.com/gocrud/ioc/logging"
	"github.com/gocrud/mgo"
)

// Builder MongoDB 配置构建器
type Builder struct {
	configs map[string]Options
	order   []string
	errors  []error
}

// NewBuilder 创建构建器
func NewBuilder() *Builder {
	return &Builder{configs: make(map[string]Options)}
}

// Add 添加 MongoDB 客户端配置
func (b *Builder) Add(name string, uri string, configure func(*Options)) *Builder {
	if _, exists := b.configs[name]; exists {
		b.errors = append(b.errors, fmt.Errorf("mongo client '%s' already configured", name))
		return b
	}

	opts := NewDefaultOptions(name, uri)
	if configure != nil {
		configure(opts)
	}

	if err := opts.Validate(); err != nil {
		b.errors = append(b.errors, fmt.Errorf("invalid mongo configuration for '%s': %w", name, err))
		return b
	}

	b.configs[name] = *opts
	b.order = append(b.order, name)
	return b
}

// Build 构建 MongoDB 工厂
func (b *Builder) Build(logger logging.Logger) (*Factory, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("mongo configuration errors: %v", b.errors)
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
		logger.Info("Mongo client registered",
			logging.Field{Key: "name", Value: opts.Name},
			logging.Field{Key: "uri", Value: opts.Uri})
	}
	return factory, nil
}

// Configure 返回 MongoDB 配置器
// 使用示例: builder.Configure(mongodb.Configure(func(b *mongodb.Builder) { ... }))
func Configure(options func(*Builder)) core.Configurator {
	return func(ctx *core.BuildContext) {
		builder := NewBuilder()
		if options != nil {
			options(builder)
		}

		factory, err := builder.Build(ctx.GetLogger())
		if err != nil {
			ctx.GetLogger().Fatal("Failed to build mongodb clients",
				logging.Field{Key: "error", Value: err.Error()})
		}
		if factory == nil {
			return
		}

		scope := ctx.Scope()
		container.Push[*Factory](scope, container.WithInstance(factory))

		factory.Each(func(name string, client *mgo.Client) {
			container.Push[*mgo.Client](scope, container.WithInstance(client), container.WithName(name))
			if name == "default" {
				container.Push[*mgo.Client](scope, container.WithInstance(client))
			}
			ctx.GetLogger().Info("Mongo client registered to scope",
				logging.Field{Key: "name", Value: name})
		})
	}
}
