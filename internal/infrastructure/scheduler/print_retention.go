package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PrintJobSweeper removes print jobs and their stored PDFs once they age
// past the retention window. Implemented by the print service.
type PrintJobSweeper interface {
	SweepExpiredJobs(ctx context.Context, retention time.Duration) (int64, error)
}

// PrintRetentionConfig holds configuration for the print retention sweeper
type PrintRetentionConfig struct {
	// Enabled determines if the sweeper is active
	Enabled bool

	// Interval is how often the sweep runs
	Interval time.Duration

	// Retention is how long completed print jobs and their PDFs are kept
	Retention time.Duration

	// SweepTimeout is the maximum time for a single sweep
	SweepTimeout time.Duration
}

// DefaultPrintRetentionConfig returns default configuration
func DefaultPrintRetentionConfig() PrintRetentionConfig {
	return PrintRetentionConfig{
		Enabled:      true,
		Interval:     time.Hour,
		Retention:    30 * 24 * time.Hour,
		SweepTimeout: 5 * time.Minute,
	}
}

// Validate validates the configuration
func (c *PrintRetentionConfig) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if c.Retention <= 0 {
		return ErrInvalidConfig
	}
	if c.SweepTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// PrintRetentionSweeper periodically removes expired print jobs. PDFs are
// regenerated on demand from the ledger, so keeping them forever only
// costs storage.
type PrintRetentionSweeper struct {
	config  PrintRetentionConfig
	sweeper PrintJobSweeper
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewPrintRetentionSweeper creates a new print retention sweeper
func NewPrintRetentionSweeper(config PrintRetentionConfig, sweeper PrintJobSweeper, logger *zap.Logger) (*PrintRetentionSweeper, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &PrintRetentionSweeper{
		config:  config,
		sweeper: sweeper,
		logger:  logger,
	}, nil
}

// Start starts the sweeper
func (s *PrintRetentionSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Print retention sweeper is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Print retention sweeper started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("retention", s.config.Retention),
	)

	return nil
}

// Stop gracefully stops the sweeper
func (s *PrintRetentionSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	// Wait for the sweep loop to finish with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Print retention sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Print retention sweeper stop timed out")
		return ctx.Err()
	}
}

// run sweeps on the configured interval until the context is cancelled
func (s *PrintRetentionSweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Print retention loop stopping")
			return
		case <-ticker.C:
			s.executeSweep(ctx)
		}
	}
}

// executeSweep removes one round of expired jobs
func (s *PrintRetentionSweeper) executeSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	startTime := time.Now()
	deleted, err := s.sweeper.SweepExpiredJobs(sweepCtx, s.config.Retention)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Print retention sweep failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	if deleted > 0 {
		s.logger.Info("Print retention sweep completed",
			zap.Duration("duration", duration),
			zap.Int64("jobs_deleted", deleted),
		)
	}
}

// TriggerImmediateSweep triggers an immediate sweep run
func (s *PrintRetentionSweeper) TriggerImmediateSweep(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Triggering immediate print retention sweep")

	// Run in a goroutine to not block
	go func() {
		defer s.wg.Done()
		s.executeSweep(ctx)
	}()

	return nil
}

// IsRunning returns whether the sweeper is running
func (s *PrintRetentionSweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
