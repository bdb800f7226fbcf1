package logging

// LoggingBuilder 日志构建器
type LoggingBuilder struct {
	providers    []LoggerProvider
	minimumLevel LogLevel
}

// NewLoggingBuilder 创建日志构建器
func NewLoggingBuilder() *LoggingBuilder {
	return &LoggingBuilder{minimumLevel: LogLevelInfo}
}

// SetMinimumLevel 设置最小日志级别
func (b *LoggingBuilder) SetMinimumLevel(level LogLevel) *LoggingBuilder {
	b.minimumLevel = level
	return b
}

// AddProvider 添加日志提供者
func (b *LoggingBuilder) AddProvider(provider LoggerProvider) *LoggingBuilder {
	b.providers = append(b.providers, provider)
	return b
}

// AddConsole 添加控制台日志
func (b *LoggingBuilder) AddConsole(options ...ConsoleProviderOptions) *LoggingBuilder {
	opts := ConsoleProviderOptions{
		IncludeTimestamp: true,
		ColorOutput:      true,
	}
	if len(options) > 0 {
		opts = options[0]
	}
	return b.AddProvider(NewConsoleProvider(opts))
}

// AddFile 添加文件日志
func (b *LoggingBuilder) AddFile(path string, formatter ...Formatter) *LoggingBuilder {
	var f Formatter
	if len(formatter) > 0 {
		f = formatter[0]
	}
	return b.AddProvider(NewFileProvider(path, f))
}

// Build 构建日志工厂
func (b *LoggingBuilder) Build() LoggerFactory {
	factory := NewLoggerFactory()
	factory.SetMinimumLevel(b.minimumLevel)
	for _, provider := range b.providers {
		factory.AddProvider(provider)
	}
	return factory
}
