package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPrintJobSweeper implements PrintJobSweeper for testing
type mockPrintJobSweeper struct {
	sweepFunc     func(ctx context.Context, retention time.Duration) (int64, error)
	callCount     int32
	lastRetention atomic.Int64
}

func (m *mockPrintJobSweeper) SweepExpiredJobs(ctx context.Context, retention time.Duration) (int64, error) {
	atomic.AddInt32(&m.callCount, 1)
	m.lastRetention.Store(int64(retention))
	if m.sweepFunc != nil {
		return m.sweepFunc(ctx, retention)
	}
	return 0, nil
}

func (m *mockPrintJobSweeper) calls() int32 {
	return atomic.LoadInt32(&m.callCount)
}

// ---------------------------------------------------------------------------
// PrintRetentionConfig Tests
// ---------------------------------------------------------------------------

func TestPrintRetentionConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  PrintRetentionConfig
		wantErr bool
	}{
		{
			name:    "Valid default config",
			config:  DefaultPrintRetentionConfig(),
			wantErr: false,
		},
		{
			name: "Invalid interval",
			config: PrintRetentionConfig{
				Enabled:      true,
				Interval:     0,
				Retention:    30 * 24 * time.Hour,
				SweepTimeout: time.Minute,
			},
			wantErr: true,
		},
		{
			name: "Invalid retention",
			config: PrintRetentionConfig{
				Enabled:      true,
				Interval:     time.Hour,
				Retention:    0,
				SweepTimeout: time.Minute,
			},
			wantErr: true,
		},
		{
			name: "Invalid sweep timeout",
			config: PrintRetentionConfig{
				Enabled:      true,
				Interval:     time.Hour,
				Retention:    30 * 24 * time.Hour,
				SweepTimeout: -time.Second,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// PrintRetentionSweeper Tests
// ---------------------------------------------------------------------------

func TestNewPrintRetentionSweeper(t *testing.T) {
	config := DefaultPrintRetentionConfig()
	jobSweeper := &mockPrintJobSweeper{}
	logger := newTestLogger()

	sweeper, err := NewPrintRetentionSweeper(config, jobSweeper, logger)

	require.NoError(t, err)
	assert.NotNil(t, sweeper)
	assert.False(t, sweeper.IsRunning())
}

func TestNewPrintRetentionSweeper_InvalidConfig(t *testing.T) {
	config := PrintRetentionConfig{Retention: time.Hour}
	jobSweeper := &mockPrintJobSweeper{}
	logger := newTestLogger()

	sweeper, err := NewPrintRetentionSweeper(config, jobSweeper, logger)

	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Nil(t, sweeper)
}

func TestPrintRetentionSweeper_StartStop(t *testing.T) {
	config := DefaultPrintRetentionConfig()
	jobSweeper := &mockPrintJobSweeper{}
	logger := newTestLogger()

	sweeper, err := NewPrintRetentionSweeper(config, jobSweeper, logger)
	require.NoError(t, err)

	ctx := context.Background()

	err = sweeper.Start(ctx)
	require.NoError(t, err)
	assert.True(t, sweeper.IsRunning())

	// Start again should be idempotent
	err = sweeper.Start(ctx)
	require.NoError(t, err)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = sweeper.Stop(stopCtx)
	require.NoError(t, err)
	assert.False(t, sweeper.IsRunning())

	// Stop again should be idempotent
	err = sweeper.Stop(stopCtx)
	require.NoError(t, err)
}

func TestPrintRetentionSweeper_Start_Disabled(t *testing.T) {
	config := DefaultPrintRetentionConfig()
	config.Enabled = false
	jobSweeper := &mockPrintJobSweeper{}
	logger := newTestLogger()

	sweeper, err := NewPrintRetentionSweeper(config, jobSweeper, logger)
	require.NoError(t, err)

	err = sweeper.Start(context.Background())
	require.NoError(t, err)

	assert.False(t, sweeper.IsRunning())
	assert.Equal(t, int32(0), jobSweeper.calls())
}

func TestPrintRetentionSweeper_PeriodicSweep(t *testing.T) {
	config := DefaultPrintRetentionConfig()
	config.Interval = 10 * time.Millisecond
	config.Retention = 7 * 24 * time.Hour
	jobSweeper := &mockPrintJobSweeper{
		sweepFunc: func(ctx context.Context, retention time.Duration) (int64, error) {
			return 4, nil
		},
	}
	logger := newTestLogger()

	sweeper, err := NewPrintRetentionSweeper(config, jobSweeper, logger)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sweeper.Start(ctx))
	defer func() { _ = sweeper.Stop(ctx) }()

	waitForCalls(t, jobSweeper.calls, 2)

	// Sweep passes through the configured retention window
	assert.Equal(t, int64(7*24*time.Hour), jobSweeper.lastRetention.Load())
}

func TestPrintRetentionSweeper_SweepError_KeepsRunning(t *testing.T) {
	config := DefaultPrintRetentionConfig()
	config.Interval = 10 * time.Millisecond
	jobSweeper := &mockPrintJobSweeper{
		sweepFunc: func(ctx context.Context, retention time.Duration) (int64, error) {
			return 0, errors.New("database unavailable")
		},
	}
	logger := newTestLogger()

	sweeper, err := NewPrintRetentionSweeper(config, jobSweeper, logger)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sweeper.Start(ctx))
	defer func() { _ = sweeper.Stop(ctx) }()

	waitForCalls(t, jobSweeper.calls, 3)
	assert.True(t, sweeper.IsRunning())
}

func TestPrintRetentionSweeper_TriggerImmediateSweep(t *testing.T) {
	config := DefaultPrintRetentionConfig()
	config.Interval = time.Hour
	jobSweeper := &mockPrintJobSweeper{}
	logger := newTestLogger()

	sweeper, err := NewPrintRetentionSweeper(config, jobSweeper, logger)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sweeper.Start(ctx))
	defer func() { _ = sweeper.Stop(ctx) }()

	err = sweeper.TriggerImmediateSweep(ctx)
	require.NoError(t, err)

	waitForCalls(t, jobSweeper.calls, 1)
}

func TestPrintRetentionSweeper_TriggerImmediateSweep_NotRunning(t *testing.T) {
	config := DefaultPrintRetentionConfig()
	jobSweeper := &mockPrintJobSweeper{}
	logger := newTestLogger()

	sweeper, err := NewPrintRetentionSweeper(config, jobSweeper, logger)
	require.NoError(t, err)

	err = sweeper.TriggerImmediateSweep(context.Background())

	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
	assert.Equal(t, int32(0), jobSweeper.calls())
}
