package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"sync"
	"syscall"
	"time"

	"github.com/gocrud/ioc/config"
	"github.com/gocrud/ioc/container"
	"github.com/gocrud/ioc/hosting"
	"github.com/gocrud/ioc/logging"
)

// Application 应用程序接口
type Application interface {
	Run() error
	RunAsync(ctx context.Context) error
	Stop(ctx context.Context) error
	Services() *container.Container
	Configuration() config.Configuration
	Logger() logging.Logger
	Environment() Environment
	GetService(ptr any)
}

// ApplicationBuilder 应用程序构建器
type ApplicationBuilder struct {
	environment     string
	configBuilder   *config.ConfigurationBuilder
	loggingBuilder  *logging.LoggingBuilder
	configurators   []Configurator
	shutdownTimeout time.Duration
}

// NewApplicationBuilder 创建应用程序构建器
func NewApplicationBuilder() *ApplicationBuilder {
	return &ApplicationBuilder{
		environment:     "development",
		configBuilder:   config.NewConfigurationBuilder(),
		loggingBuilder:  logging.NewLoggingBuilder(),
		shutdownTimeout: 30 * time.Second,
	}
}

// UseEnvironment 设置环境
func (b *ApplicationBuilder) UseEnvironment(env string) *ApplicationBuilder {
	b.environment = env
	return b
}

// UseShutdownTimeout 设置关闭超时
func (b *ApplicationBuilder) UseShutdownTimeout(timeout time.Duration) *ApplicationBuilder {
	b.shutdownTimeout = timeout
	return b
}

// ConfigureConfiguration 配置配置系统
func (b *ApplicationBuilder) ConfigureConfiguration(configure func(*config.ConfigurationBuilder)) *ApplicationBuilder {
	if configure != nil {
		configure(b.configBuilder)
	}
	return b
}

// ConfigureLogging 配置日志系统
func (b *ApplicationBuilder) ConfigureLogging(configure func(*logging.LoggingBuilder)) *ApplicationBuilder {
	if configure != nil {
		configure(b.loggingBuilder)
	}
	return b
}

// Configure 添加配置器
func (b *ApplicationBuilder) Configure(configurators ...Configurator) *ApplicationBuilder {
	b.configurators = append(b.configurators, configurators...)
	return b
}

// AddTask 添加一个简单的后台任务
func (b *ApplicationBuilder) AddTask(task func(ctx context.Context) error) *ApplicationBuilder {
	return b.Configure(func(ctx *BuildContext) {
		ctx.AddHostedService(&functionalService{task: task})
	})
}

// functionalService 函数式托管服务
type functionalService struct {
	task func(ctx context.Context) error
}

func (f *functionalService) Start(ctx context.Context) error {
	return f.task(ctx)
}

func (f *functionalService) Stop(ctx context.Context) error {
	return nil
}

// Build 构建应用程序
func (b *ApplicationBuilder) Build() Application {
	configuration, err := b.configBuilder.Build()
	if err != nil {
		panic(fmt.Sprintf("ioc: failed to build configuration: %v", err))
	}

	loggerFactory := b.loggingBuilder.Build()
	logger := loggerFactory.CreateLogger("Application")

	logger.Info("Building application",
		logging.Field{Key: "environment", Value: b.environment})

	// 创建根作用域并注册核心服务
	scope := container.NewContainer()
	env := NewEnvironment(b.environment)

	mustPush(logger, container.Push[config.Configuration](scope, container.WithInstance(configuration)))
	mustPush(logger, container.Push[logging.LoggerFactory](scope, container.WithInstance(loggerFactory)))
	mustPush(logger, container.Push[logging.Logger](scope, container.WithInstance(logger)))
	mustPush(logger, container.Push[Environment](scope, container.WithInstance(env)))

	buildContext := &BuildContext{
		scope:         scope,
		configuration: configuration,
		logger:        logger,
		environment:   env,
	}

	for _, configurator := range b.configurators {
		configurator(buildContext)
	}

	return &application{
		scope:           scope,
		configuration:   configuration,
		logger:          logger,
		environment:     env,
		hostedServices:  buildContext.hostedServices,
		shutdownTimeout: b.shutdownTimeout,
		stopCh:          make(chan struct{}),
	}
}

func mustPush(logger logging.Logger, err error) {
	if err != nil {
		logger.Fatal("Failed to register core service",
			logging.Field{Key: "error", Value: err.Error()})
	}
}

// application 应用程序实现
type application struct {
	scope           *container.Container
	configuration   config.Configuration
	logger          logging.Logger
	environment     Environment
	hostedServices  []hosting.HostedService
	shutdownTimeout time.Duration
	stopCh          chan struct{}
	stopOnce        sync.Once
	running         bool
	mu              sync.Mutex
}

// Run 运行应用程序（阻塞直到收到退出信号）
func (a *application) Run() error {
	return a.RunAsync(context.Background())
}

// RunAsync 运行应用程序，ctx 取消时触发优雅关闭
func (a *application) RunAsync(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return errors.New("ioc: application is already running")
	}
	a.running = true
	a.mu.Unlock()

	a.logger.Info("Starting application",
		logging.Field{Key: "environment", Value: a.environment.Name()})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	manager := hosting.NewManager(a.logger)
	for _, service := range a.hostedServices {
		manager.Add(service)
	}
	errCh := manager.StartAll(runCtx)

	a.logger.Info("Application started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info("Received shutdown signal",
			logging.Field{Key: "signal", Value: sig.String()})
	case <-a.stopCh:
		a.logger.Info("Application stop requested")
	case <-ctx.Done():
		a.logger.Info("Context cancelled")
	case err := <-errCh:
		a.logger.Error("Hosted service failed, stopping application",
			logging.Field{Key: "error", Value: err.Error()})
		runErr = err
	}

	a.logger.Info("Shutting down application",
		logging.Field{Key: "timeout", Value: a.shutdownTimeout.String()})
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer shutdownCancel()

	if err := manager.StopAll(shutdownCtx); err != nil {
		a.logger.Error("Failed to stop hosted services",
			logging.Field{Key: "error", Value: err.Error()})
	}
	manager.Wait()

	// 释放根作用域：级联释放子作用域并关闭所有实现 io.Closer 的实例
	a.logger.Info("Disposing root scope")
	a.scope.Dispose()

	a.logger.Info("Application stopped")

	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
	return runErr
}

// Stop 请求停止应用程序
func (a *application) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() { close(a.stopCh) })
	return nil
}

// Services 获取根作用域
func (a *application) Services() *container.Container {
	return a.scope
}

// Configuration 获取配置
func (a *application) Configuration() config.Configuration {
	return a.configuration
}

// Logger 获取日志记录器
func (a *application) Logger() logging.Logger {
	return a.logger
}

// Environment 获取环境
func (a *application) Environment() Environment {
	return a.environment
}

// GetService 解析服务实例到指针参数
//
// 使用示例：
//
//	var svc *MyService
//	app.GetService(&svc)
func (a *application) GetService(ptr any) {
	ptrValue := reflect.ValueOf(ptr)
	if ptrValue.Kind() != reflect.Pointer || ptrValue.IsNil() {
		panic(fmt.Sprintf("ioc: GetService argument must be a non-nil pointer, got %T", ptr))
	}

	elem := ptrValue.Elem()
	instance, err := a.scope.Get(elem.Type())
	if err != nil {
		panic(fmt.Sprintf("ioc: failed to get service %s: %v", elem.Type(), err))
	}
	elem.Set(reflect.ValueOf(instance))
}
