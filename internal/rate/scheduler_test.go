package rate

import (
	"context"
	"testing"
	"time"

	"fxconvert/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRefresher struct{ mock.Mock }

func (m *MockRefresher) Refresh(ctx context.Context, force bool) (*domain.Snapshot, error) {
	args := m.Called(ctx, force)
	snap, _ := args.Get(0).(*domain.Snapshot)
	return snap, args.Error(1)
}

func TestNewScheduler_Constructs(t *testing.T) {
	s := NewScheduler(new(MockRefresher), logrus.New(), 10*time.Second)
	require.NotNil(t, s)
	require.False(t, s.running())
}

func TestScheduler_Shutdown_NoScheduler_ReturnsNil(t *testing.T) {
	s := NewScheduler(new(MockRefresher), logrus.New(), 10*time.Second)
	require.NoError(t, s.Shutdown())
	require.False(t, s.running())
}

func TestScheduler_Start_And_ContextCancel_ShutsDown(t *testing.T) {
	s := NewScheduler(new(MockRefresher), logrus.New(), 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	require.True(t, s.running())

	cancel()

	require.Eventually(t, func() bool { return !s.running() }, 2*time.Second, 10*time.Millisecond,
		"expected scheduler to be shutdown after ctx cancel")
}

func TestScheduler_Shutdown_AfterStart_Idempotent(t *testing.T) {
	s := NewScheduler(new(MockRefresher), logrus.New(), 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	require.True(t, s.running())

	require.NoError(t, s.Shutdown())
	require.False(t, s.running())

	require.NoError(t, s.Shutdown())
}

func TestScheduler_RunsForcedRefresh(t *testing.T) {
	refresher := new(MockRefresher)
	snap := &domain.Snapshot{Table: Aggregate(sampleRecords())}
	called := make(chan struct{}, 8)
	refresher.On("Refresh", mock.Anything, true).
		Run(func(mock.Arguments) { called <- struct{}{} }).
		Return(snap, nil)

	s := NewScheduler(refresher, logrus.New(), 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))
	defer func() { _ = s.Shutdown() }()

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh job did not run")
	}
}

func TestNewScheduler_UsesProvidedInterval(t *testing.T) {
	s := NewScheduler(new(MockRefresher), logrus.New(), 42*time.Second)
	require.Equal(t, 42*time.Second, s.refreshInterval)
}

func TestNewScheduler_DefaultsIntervalWhenInvalid(t *testing.T) {
	s := NewScheduler(new(MockRefresher), logrus.New(), 0)
	require.Equal(t, time.Hour, s.refreshInterval)
}
