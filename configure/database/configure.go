package database

import (
	"fmt"

	"github.com/gocrud/ioc/container"
	"github.com/gocrud/ioc/core"
	"github.com/gocrud/ioc/logging"
	"gorm.io/gorm"
)

// Builder 数据库配置构建器
type Builder struct {
	configs []Options
	errors  []error
}

// NewBuilder 创建数据库构建器
func NewBuilder() *Builder {
	return &Builder{}
}

// Add 添加一个数据库连接配置
func (b *Builder) Add(name string, dialector gorm.Dialector, configure func(*Options)) *Builder {
	opts := NewDefaultOptions(name, dialector)
	if configure != nil {
		configure(opts)
	}

	if err := opts.Validate(); err != nil {
		b.errors = append(b.errors, fmt.Errorf("invalid database configuration for '%s': %w", name, err))
		return b
	}

	b.configs = append(b.configs, *opts)
	return b
}

// Build 构建数据库工厂
func (b *Builder) Build(logger logging.Logger) (*Factory, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("database configuration errors: %v", b.errors)
	}
	if len(b.configs) == 0 {
		return nil, nil
	}

	factory := NewFactory()
	for _, opts := range b.configs {
		if err := factory.Register(opts); err != nil {
			return nil, err
		}
		logger.Info("Database registered",
			logging.Field{Key: "name", Value: opts.Name})
	}
	return factory, nil
}

// Configure 返回数据库配置器
// 使用示例: builder.Configure(database.Configure(func(b *database.Builder) { ... }))
func Configure(options func(*Builder)) core.Configurator {
	return func(ctx *core.BuildContext) {
		builder := NewBuilder()
		if options != nil {
			options(builder)
		}

		factory, err := builder.Build(ctx.GetLogger())
		if err != nil {
			ctx.GetLogger().Fatal("Failed to build databases",
				logging.Field{Key: "error", Value: err.Error()})
		}
		if factory == nil {
			return
		}

		// 工厂实现 io.Closer，根作用域释放时连接随之关闭
		scope := ctx.Scope()
		container.Push[*Factory](scope, container.WithInstance(factory))

		factory.Each(func(name string, db *gorm.DB) {
			container.Push[*gorm.DB](scope, container.WithInstance(db), container.WithName(name))
			if name == "default" {
				container.Push[*gorm.DB](scope, container.WithInstance(db))
			}
			ctx.GetLogger().Info("Database registered to scope",
				logging.Field{Key: "name", Value: name})
		})
	}
}
