package core

import (
	"github.com/gocrud/ioc/config"
	"github.com/gocrud/ioc/container"
	"github.com/gocrud/ioc/hosting"
	"github.com/gocrud/ioc/logging"
)

// Configurator 配置器函数类型
// 配置器用于扩展应用程序：注册服务、添加托管服务等
type Configurator func(*BuildContext)

// BuildContext 构建上下文
// 提供给配置器的环境：根作用域、配置、日志等核心组件
type BuildContext struct {
	scope          *container.Container
	configuration  config.Configuration
	logger         logging.Logger
	environment    Environment
	hostedServices []hosting.HostedService
}

// Scope 返回应用的根作用域
// 可直接使用 container.Push[T](ctx.Scope(), ...) 注册服务
func (c *BuildContext) Scope() *container.Container {
	return c.scope
}

// AddHostedService 添加托管服务
func (c *BuildContext) AddHostedService(service hosting.HostedService) {
	c.hostedServices = append(c.hostedServices, service)
}

// GetLogger 获取日志记录器
func (c *BuildContext) GetLogger() logging.Logger {
	return c.logger
}

// GetConfiguration 获取配置对象
func (c *BuildContext) GetConfiguration() config.Configuration {
	return c.configuration
}

// GetEnvironment 获取环境信息
func (c *BuildContext) GetEnvironment() Environment {
	return c.environment
}

// ConfigureOptions 绑定配置节并把 Option[T] 注册到根作用域
// 使用示例: core.ConfigureOptions[AppSetting](ctx, "app")
func ConfigureOptions[T any](ctx *BuildContext, section string) error {
	cache, err := config.NewOptionsCache[T](ctx.configuration, section)
	if err != nil {
		return err
	}

	err = container.Push[config.Option[T]](ctx.scope,
		container.WithInstance(config.NewOption(cache.Get())))
	if err != nil {
		return err
	}

	ctx.logger.Debug("Configured options",
		logging.Field{Key: "section", Value: section})
	return nil
}

// AddOptions 注册配置选项的配置器语法糖
// 使用示例: builder.Configure(core.AddOptions[AppSetting]("app"))
func AddOptions[T any](section string) Configurator {
	return func(ctx *BuildContext) {
		if err := ConfigureOptions[T](ctx, section); err != nil {
			ctx.logger.Fatal("Failed to configure options",
				logging.Field{Key: "section", Value: section},
				logging.Field{Key: "error", Value: err.Error()})
		}
	}
}
