package logging

import (
	"os"
	"sync"
	"time"
)

// LogLevel 日志级别
type LogLevel int

const (
	LogLevelTrace LogLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)

// String 返回日志级别的字符串表示
func (l LogLevel) String() string {
	switch l {
	case LogLevelTrace:
		return "TRACE"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Field 结构化日志字段
type Field struct {
	Key   string
	Value any
}

// Logger 日志接口
type Logger interface {
	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)
	Log(level LogLevel, msg string, fields ...Field)
	WithFields(fields ...Field) Logger
	WithCategory(category string) Logger
}

// LoggerProvider 日志提供者：接收日志条目并写入某个目的地
type LoggerProvider interface {
	Write(entry *Entry)
}

// LoggerFactory 日志工厂接口
type LoggerFactory interface {
	CreateLogger(category string) Logger
	AddProvider(provider LoggerProvider)
	SetMinimumLevel(level LogLevel)
}

// NewLoggerFactory 创建日志工厂
func NewLoggerFactory() LoggerFactory {
	return &loggerFactory{minimumLevel: LogLevelInfo}
}

// loggerFactory 日志工厂实现
type loggerFactory struct {
	providers    []LoggerProvider
	minimumLevel LogLevel
	mu           sync.RWMutex
}

func (f *loggerFactory) CreateLogger(category string) Logger {
	return &logger{factory: f, category: category}
}

func (f *loggerFactory) AddProvider(provider LoggerProvider) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.providers = append(f.providers, provider)
}

func (f *loggerFactory) SetMinimumLevel(level LogLevel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.minimumLevel = level
}

func (f *loggerFactory) dispatch(entry *Entry) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if entry.Level < f.minimumLevel {
		return
	}
	for _, provider := range f.providers {
		provider.Write(entry)
	}
}

// logger 工厂发放的日志记录器：按类别携带固定字段，条目统一回送工厂分发
type logger struct {
	factory  *loggerFactory
	category string
	fields   []Field
}

func (l *logger) Trace(msg string, fields ...Field) { l.Log(LogLevelTrace, msg, fields...) }
func (l *logger) Debug(msg string, fields ...Field) { l.Log(LogLevelDebug, msg, fields...) }
func (l *logger) Info(msg string, fields ...Field)  { l.Log(LogLevelInfo, msg, fields...) }
func (l *logger) Warn(msg string, fields ...Field)  { l.Log(LogLevelWarn, msg, fields...) }
func (l *logger) Error(msg string, fields ...Field) { l.Log(LogLevelError, msg, fields...) }

func (l *logger) Fatal(msg string, fields ...Field) {
	l.Log(LogLevelFatal, msg, fields...)
	os.Exit(1)
}

func (l *logger) Log(level LogLevel, msg string, fields ...Field) {
	merged := fields
	if len(l.fields) > 0 {
		merged = make([]Field, 0, len(l.fields)+len(fields))
		merged = append(merged, l.fields...)
		merged = append(merged, fields...)
	}

	l.factory.dispatch(&Entry{
		Time:     time.Now(),
		Level:    level,
		Category: l.category,
		Message:  msg,
		Fields:   merged,
	})
}

func (l *logger) WithFields(fields ...Field) Logger {
	return &logger{
		factory:  l.factory,
		category: l.category,
		fields:   append(append([]Field{}, l.fields...), fields...),
	}
}

func (l *logger) WithCategory(category string) Logger {
	return &logger{
		factory:  l.factory,
		category: category,
		fields:   l.fields,
	}
}

// NewLogger 创建一个默认的控制台 Logger（便于测试使用）
func NewLogger() Logger {
	builder := NewLoggingBuilder()
	builder.AddConsole()
	return builder.Build().CreateLogger("default")
}
