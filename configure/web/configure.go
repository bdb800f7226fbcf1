package web

import (
	"github.com/gocrud/ioc/core"
	"github.com/gocrud/ioc/logging"
)

// Configure 返回 Web 配置器
// 使用示例: builder.Configure(web.Configure(func(b *web.Builder) { ... }))
func Configure(options func(*Builder)) core.Configurator {
	return func(ctx *core.BuildContext) {
		builder := NewBuilder(ctx.Scope(), ctx.GetLogger())
		if options != nil {
			options(builder)
		}

		host := builder.Build()
		ctx.AddHostedService(host)

		ctx.GetLogger().Info("Web host configured",
			logging.Field{Key: "port", Value: host.Port()})
	}
}
