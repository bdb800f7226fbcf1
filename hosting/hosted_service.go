package hosting

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gocrud/ioc/logging"
)

// HostedService 托管服务接口
// 框架会在独立 goroutine 中调用 Start，服务无需自己起协程
type HostedService interface {
	// Start 启动服务。应阻塞执行，直到 context 取消或发生错误。
	Start(ctx context.Context) error

	// Stop 执行优雅关闭。Start 的 context 取消时服务应自行退出，
	// Stop 用于额外的清理工作。
	Stop(ctx context.Context) error
}

// Manager 托管服务管理器
type Manager struct {
	services []HostedService
	logger   logging.Logger
	mu       sync.RWMutex
	wg       sync.WaitGroup
}

// NewManager 创建托管服务管理器
func NewManager(logger logging.Logger) *Manager {
	return &Manager{logger: logger}
}

// Add 添加托管服务
func (m *Manager) Add(service HostedService) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services = append(m.services, service)
}

// Len 返回已注册的服务数量
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.services)
}

// StartAll 并发启动所有托管服务，启动失败通过返回的通道上报
func (m *Manager) StartAll(ctx context.Context) <-chan error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	errCh := make(chan error, len(m.services))
	m.logger.Info("Starting hosted services",
		logging.Field{Key: "count", Value: len(m.services)})

	for i, service := range m.services {
		m.wg.Add(1)
		go func(index int, svc HostedService) {
			defer m.wg.Done()

			err := svc.Start(ctx)
			switch {
			case err == nil:
				m.logger.Debug("Hosted service completed",
					logging.Field{Key: "index", Value: index})
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				m.logger.Debug("Hosted service stopped",
					logging.Field{Key: "index", Value: index})
			default:
				m.logger.Error("Hosted service failed",
					logging.Field{Key: "index", Value: index},
					logging.Field{Key: "error", Value: err.Error()})
				select {
				case errCh <- err:
				default:
				}
			}
		}(i, service)
	}

	return errCh
}

// StopAll 逆序并发停止所有托管服务
func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.logger.Info("Stopping hosted services",
		logging.Field{Key: "count", Value: len(m.services)})

	var wg sync.WaitGroup
	for i := len(m.services) - 1; i >= 0; i-- {
		wg.Add(1)
		go func(index int, svc HostedService) {
			defer wg.Done()
			if err := svc.Stop(ctx); err != nil {
				m.logger.Error("Failed to stop hosted service",
					logging.Field{Key: "index", Value: index},
					logging.Field{Key: "error", Value: err.Error()})
			}
		}(i, m.services[i])
	}
	wg.Wait()
	return nil
}

// Wait 等待所有服务的 Start 返回
func (m *Manager) Wait() {
	m.wg.Wait()
}

// TimedService 定时托管服务：按固定间隔执行任务
type TimedService struct {
	name     string
	interval time.Duration
	task     func(ctx context.Context) error
	logger   logging.Logger
}

// NewTimedService 创建定时托管服务
func NewTimedService(name string, interval time.Duration, task func(ctx context.Context) error, logger logging.Logger) *TimedService {
	return &TimedService{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logger,
	}
}

// Start 启动定时循环，直到 context 取消
func (s *TimedService) Start(ctx context.Context) error {
	s.logger.Info("Timed service started",
		logging.Field{Key: "name", Value: s.name},
		logging.Field{Key: "interval", Value: s.interval.String()})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.task(ctx); err != nil {
				s.logger.Error("Timed task failed",
					logging.Field{Key: "name", Value: s.name},
					logging.Field{Key: "error", Value: err.Error()})
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stop 停止定时服务
func (s *TimedService) Stop(ctx context.Context) error {
	s.logger.Info("Timed service stopped",
		logging.Field{Key: "name", Value: s.name})
	return nil
}
