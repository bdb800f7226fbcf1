package cron

import (
	"context"
	"fmt"
	"sync"

	"github.com/gocrud/ioc/logging"
	"github.com/robfig/cron/v3"
)

// Service Cron 定时任务托管服务
type Service struct {
	cron   *cron.Cron
	logger logging.Logger
	mu     sync.RWMutex
	jobs   map[string]cron.EntryID
}

type serviceOptions struct {
	Location         string
	EnableSeconds    bool
	EnableCronLogger bool
}

func newService(logger logging.Logger, opts serviceOptions) *Service {
	cronOpts := []cron.Option{
		cron.WithChain(cron.Recover(newCronLogger(logger))),
	}
	if opts.EnableCronLogger {
		cronOpts = append(cronOpts, cron.WithLogger(newCronLogger(logger)))
	}
	if opts.EnableSeconds {
		cronOpts = append(cronOpts, cron.WithSeconds())
	}

	return &Service{
		cron:   cron.New(cronOpts...),
		logger: logger,
		jobs:   make(map[string]cron.EntryID),
	}
}

// AddJob 添加定时任务
// spec: cron 表达式，如 "*/5 * * * *"；name: 任务名称（用于日志）
func (s *Service) AddJob(spec, name string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(spec, func() {
		s.logger.Debug("Cron job started",
			logging.Field{Key: "job", Value: name})
		job()
		s.logger.Debug("Cron job completed",
			logging.Field{Key: "job", Value: name})
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job '%s': %w", name, err)
	}

	s.jobs[name] = entryID
	s.logger.Info("Cron job registered",
		logging.Field{Key: "job", Value: name},
		logging.Field{Key: "spec", Value: spec})
	return nil
}

// RemoveJob 移除定时任务
func (s *Service) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
	}
}

// Len 返回已注册任务数
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Start 启动调度器，阻塞直到 context 取消
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Cron service started",
		logging.Field{Key: "jobs", Value: s.Len()})
	s.cron.Start()

	<-ctx.Done()
	return nil
}

// Stop 优雅停止调度器（等待运行中的任务完成）
func (s *Service) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()

	select {
	case <-stopCtx.Done():
		s.logger.Info("Cron service stopped")
	case <-ctx.Done():
		s.logger.Warn("Cron service stop timeout")
	}
	return nil
}

// cronLogger 把框架日志适配到 cron 的日志接口
type cronLogger struct {
	logger logging.Logger
}

func newCronLogger(logger logging.Logger) cron.Logger {
	return &cronLogger{logger: logger}
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, kvFields(keysAndValues)...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	fields := append(kvFields(keysAndValues), logging.Field{Key: "error", Value: err.Error()})
	l.logger.Error(msg, fields...)
}

func kvFields(keysAndValues []any) []logging.Field {
	fields := make([]logging.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, logging.Field{
			Key:   fmt.Sprintf("%v", keysAndValues[i]),
			Value: keysAndValues[i+1],
		})
	}
	return fields
}
