package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/ioc/container"
	"github.com/gocrud/ioc/logging"
)

// Builder Web 主机构建器（基于 Gin）
type Builder struct {
	scope  *container.Container
	logger logging.Logger
	port   int
	engine *gin.Engine
}

// NewBuilder 创建 Web 构建器
func NewBuilder(scope *container.Container, logger logging.Logger) *Builder {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Builder{
		scope:  scope,
		logger: logger,
		port:   8080,
		engine: engine,
	}
}

// UsePort 设置端口
func (b *Builder) UsePort(port int) *Builder {
	b.port = port
	return b
}

// Get 注册 GET 路由
func (b *Builder) Get(path string, handlers ...gin.HandlerFunc) *Builder {
	b.engine.GET(path, handlers...)
	return b
}

// Post 注册 POST 路由
func (b *Builder) Post(path string, handlers ...gin.HandlerFunc) *Builder {
	b.engine.POST(path, handlers...)
	return b
}

// Put 注册 PUT 路由
func (b *Builder) Put(path string, handlers ...gin.HandlerFunc) *Builder {
	b.engine.PUT(path, handlers...)
	return b
}

// Delete 注册 DELETE 路由
func (b *Builder) Delete(path string, handlers ...gin.HandlerFunc) *Builder {
	b.engine.DELETE(path, handlers...)
	return b
}

// Use 使用全局中间件
func (b *Builder) Use(middleware ...gin.HandlerFunc) *Builder {
	b.engine.Use(middleware...)
	return b
}

// Group 创建路由组
func (b *Builder) Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	return b.engine.Group(relativePath, handlers...)
}

// Static 服务静态文件
func (b *Builder) Static(relativePath, root string) *Builder {
	b.engine.Static(relativePath, root)
	return b
}

// NoRoute 处理 404
func (b *Builder) NoRoute(handlers ...gin.HandlerFunc) *Builder {
	b.engine.NoRoute(handlers...)
	return b
}

// SetMode 设置 Gin 模式
func (b *Builder) SetMode(mode string) *Builder {
	gin.SetMode(mode)
	return b
}

// Engine 获取 Gin 引擎（用于高级定制）
func (b *Builder) Engine() *gin.Engine {
	return b.engine
}

// Handle 注册依赖注入路由
// handler 的首个参数必须是 *gin.Context，其余参数从作用域解析
//
// 示例：
//
//	b.Handle("GET", "/notes", func(c *gin.Context, repo *NoteRepo) {
//	    c.JSON(200, repo.List())
//	})
func (b *Builder) Handle(method, path string, handler any) *Builder {
	b.engine.Handle(method, path, b.Inject(handler))
	return b
}

// Inject 把依赖注入函数包装为 gin.HandlerFunc
func (b *Builder) Inject(handler any) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 首参数未注册，经兜底值注入当前请求上下文
		_, err := b.scope.Invoke(handler,
			container.InvokeParams(container.Param{Default: c}))
		if err != nil {
			b.logger.Error("Handler invocation failed",
				logging.Field{Key: "path", Value: c.FullPath()},
				logging.Field{Key: "error", Value: err.Error()})
			c.AbortWithStatus(http.StatusInternalServerError)
		}
	}
}

// Build 构建 Web 主机
func (b *Builder) Build() *Host {
	return &Host{
		port:   b.port,
		engine: b.engine,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", b.port),
			Handler: b.engine,
		},
		logger: b.logger,
	}
}

// Host Web 主机
type Host struct {
	port   int
	engine *gin.Engine
	server *http.Server
	logger logging.Logger
}

// Port 返回监听端口
func (h *Host) Port() int {
	return h.port
}

// Start 启动 Web 主机，阻塞直到出错或 context 取消
func (h *Host) Start(ctx context.Context) error {
	h.logger.Info("Starting web host",
		logging.Field{Key: "address", Value: h.server.Addr})

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			h.logger.Error("Web host error",
				logging.Field{Key: "error", Value: err.Error()})
			return err
		}
		return nil
	case <-ctx.Done():
		// Stop 负责关闭监听
		return nil
	}
}

// Stop 优雅停止 Web 主机
func (h *Host) Stop(ctx context.Context) error {
	h.logger.Info("Stopping web host")
	if err := h.server.Shutdown(ctx); err != nil {
		h.logger.Error("Failed to shutdown web host gracefully",
			logging.Field{Key: "error", Value: err.Error()})
		return err
	}
	return nil
}
