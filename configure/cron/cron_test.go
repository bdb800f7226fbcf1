package cron_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	cronconf "github.com/gocrud/ioc/configure/cron"
	"github.com/gocrud/ioc/container"
	"github.com/gocrud/ioc/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	ticks atomic.Int32
}

func quietLogger() logging.Logger {
	return logging.NewLoggingBuilder().Build().CreateLogger("test")
}

func TestCronRunsInjectedJob(t *testing.T) {
	scope := container.NewContainer()
	c := &counter{}
	require.NoError(t, container.Push[*counter](scope, container.WithInstance(c)))

	svc, err := cronconf.NewBuilder().
		WithSeconds().
		AddJob("* * * * * *", "tick", func(c *counter) {
			c.ticks.Add(1)
		}).
		Build(scope, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Len())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	// 秒级任务，最多等两秒触发一次
	deadline := time.After(2500 * time.Millisecond)
	for c.ticks.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected the injected job to fire")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, svc.Stop(context.Background()))
}

func TestCronRejectsInvalidSpec(t *testing.T) {
	scope := container.NewContainer()

	_, err := cronconf.NewBuilder().
		AddJob("not-a-spec", "broken", func() {}).
		Build(scope, quietLogger())
	require.Error(t, err)
}

func TestCronRemoveJob(t *testing.T) {
	scope := container.NewContainer()

	svc, err := cronconf.NewBuilder().
		AddJob("@hourly", "keep", func() {}).
		AddJob("@hourly", "drop", func() {}).
		Build(scope, quietLogger())
	require.NoError(t, err)

	svc.RemoveJob("drop")
	assert.Equal(t, 1, svc.Len())
}
