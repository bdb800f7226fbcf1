package cron

import (
	"github.com/gocrud/ioc/container"
	"github.com/gocrud/ioc/core"
	"github.com/gocrud/ioc/logging"
)

// Builder Cron 配置构建器
type Builder struct {
	enableSeconds    bool
	enableCronLogger bool
	jobs             []jobDefinition
}

type jobDefinition struct {
	spec    string
	name    string
	handler any // func() 或需要依赖注入的任意函数
}

// NewBuilder 创建 Cron 构建器
func NewBuilder() *Builder {
	return &Builder{}
}

// WithSeconds 启用秒级精度
func (b *Builder) WithSeconds() *Builder {
	b.enableSeconds = true
	return b
}

// EnableCronLogger 启用 cron 库的内部调度日志
func (b *Builder) EnableCronLogger() *Builder {
	b.enableCronLogger = true
	return b
}

// AddJob 添加定时任务
// handler 为 func() 时直接注册；其它函数签名的参数会从作用域解析
//
// 示例：
//
//	b.AddJob("*/5 * * * *", "sync", func(repo *NoteRepo, logger logging.Logger) {
//	    repo.Sync()
//	})
func (b *Builder) AddJob(spec, name string, handler any) *Builder {
	b.jobs = append(b.jobs, jobDefinition{spec: spec, name: name, handler: handler})
	return b
}

// Build 构建 Cron 托管服务
func (b *Builder) Build(scope *container.Container, logger logging.Logger) (*Service, error) {
	svc := newService(logger, serviceOptions{
		EnableSeconds:    b.enableSeconds,
		EnableCronLogger: b.enableCronLogger,
	})

	for _, job := range b.jobs {
		var fn func()
		if direct, ok := job.handler.(func()); ok {
			fn = direct
		} else {
			fn = injected(scope, logger, job.name, job.handler)
		}
		if err := svc.AddJob(job.spec, job.name, fn); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// injected 把任意函数包装为无参任务，参数在每次触发时从作用域解析
func injected(scope *container.Container, logger logging.Logger, name string, handler any) func() {
	return func() {
		if _, err := scope.Invoke(handler); err != nil {
			logger.Error("Cron job invocation failed",
				logging.Field{Key: "job", Value: name},
				logging.Field{Key: "error", Value: err.Error()})
		}
	}
}

// Configure 返回 Cron 配置器
// 使用示例: builder.Configure(cron.Configure(func(b *cron.Builder) { ... }))
func Configure(options func(*Builder)) core.Configurator {
	return func(ctx *core.BuildContext) {
		builder := NewBuilder()
		if options != nil {
			options(builder)
		}

		svc, err := builder.Build(ctx.Scope(), ctx.GetLogger())
		if err != nil {
			ctx.GetLogger().Fatal("Failed to build cron service",
				logging.Field{Key: "error", Value: err.Error()})
		}

		ctx.AddHostedService(svc)
		ctx.GetLogger().Info("Cron service configured",
			logging.Field{Key: "jobs", Value: svc.Len()})
	}
}
