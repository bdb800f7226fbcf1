package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// WriterProvider 把格式化后的日志写入任意 io.Writer
type WriterProvider struct {
	out       io.Writer
	formatter Formatter
	mu        sync.Mutex
}

// NewWriterProvider 创建写入器提供者
func NewWriterProvider(out io.Writer, formatter Formatter) *WriterProvider {
	if formatter == nil {
		formatter = NewTextFormatter()
	}
	return &WriterProvider{out: out, formatter: formatter}
}

func (p *WriterProvider) Write(entry *Entry) {
	data, err := p.formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: format error: %v\n", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.out.Write(data); err != nil {
		fmt.Fprintf(os.Stderr, "logging: write error: %v\n", err)
	}
}

// ConsoleProviderOptions 控制台日志选项
type ConsoleProviderOptions struct {
	IncludeTimestamp bool
	TimestampFormat  string
	ColorOutput      bool
	Output           io.Writer
}

// NewConsoleProvider 创建控制台日志提供者
func NewConsoleProvider(options ConsoleProviderOptions) *WriterProvider {
	if options.Output == nil {
		options.Output = os.Stdout
	}
	formatter := &TextFormatter{
		IncludeTimestamp: options.IncludeTimestamp,
		TimestampFormat:  options.TimestampFormat,
		ColorOutput:      options.ColorOutput,
	}
	if formatter.TimestampFormat == "" {
		formatter.TimestampFormat = "2006-01-02 15:04:05"
	}
	return NewWriterProvider(options.Output, formatter)
}

// FileProvider 文件日志提供者，文件在首次写入时打开
type FileProvider struct {
	path      string
	formatter Formatter
	file      *os.File
	openErr   error
	once      sync.Once
	mu        sync.Mutex
}

// NewFileProvider 创建文件日志提供者
func NewFileProvider(path string, formatter Formatter) *FileProvider {
	if formatter == nil {
		formatter = NewTextFormatter()
	}
	return &FileProvider{path: path, formatter: formatter}
}

func (p *FileProvider) Write(entry *Entry) {
	p.once.Do(func() {
		p.file, p.openErr = os.OpenFile(p.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if p.openErr != nil {
			fmt.Fprintf(os.Stderr, "logging: failed to open log file %s: %v\n", p.path, p.openErr)
		}
	})
	if p.openErr != nil {
		return
	}

	data, err := p.formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: format error: %v\n", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.file.Write(data)
}

// Close 关闭日志文件
func (p *FileProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.file == nil {
		return nil
	}
	return p.file.Close()
}
