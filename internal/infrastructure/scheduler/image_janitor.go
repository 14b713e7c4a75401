package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ImageCleaner reclaims image uploads that were announced but never
// confirmed. Implemented by the catalog image service.
type ImageCleaner interface {
	CleanupAbandoned(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// ImageJanitorConfig holds configuration for the abandoned-upload janitor
type ImageJanitorConfig struct {
	// Enabled determines if the janitor is active
	Enabled bool

	// Interval is how often the sweep runs
	Interval time.Duration

	// Age is how old a pending upload must be before it is reclaimed.
	// It has to comfortably exceed the presigned-URL lifetime, otherwise
	// the janitor races uploads that are still in flight.
	Age time.Duration

	// Batch is the maximum number of records reclaimed per sweep
	Batch int

	// SweepTimeout is the maximum time for a single sweep
	SweepTimeout time.Duration
}

// DefaultImageJanitorConfig returns default configuration
func DefaultImageJanitorConfig() ImageJanitorConfig {
	return ImageJanitorConfig{
		Enabled:      true,
		Interval:     time.Hour,
		Age:          24 * time.Hour,
		Batch:        100,
		SweepTimeout: 2 * time.Minute,
	}
}

// Validate validates the configuration
func (c *ImageJanitorConfig) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if c.Age <= 0 {
		return ErrInvalidConfig
	}
	if c.Batch <= 0 {
		return ErrInvalidConfig
	}
	if c.SweepTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ImageJanitor periodically reclaims abandoned product image uploads:
// rows that stayed pending because the browser never finished the upload
// or never confirmed it.
type ImageJanitor struct {
	config  ImageJanitorConfig
	cleaner ImageCleaner
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewImageJanitor creates a new image janitor
func NewImageJanitor(config ImageJanitorConfig, cleaner ImageCleaner, logger *zap.Logger) (*ImageJanitor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ImageJanitor{
		config:  config,
		cleaner: cleaner,
		logger:  logger,
	}, nil
}

// Start starts the janitor
func (j *ImageJanitor) Start(ctx context.Context) error {
	j.mu.Lock()
	if j.isRunning {
		j.mu.Unlock()
		return nil
	}
	if !j.config.Enabled {
		j.mu.Unlock()
		j.logger.Info("Image janitor is disabled")
		return nil
	}
	j.isRunning = true
	j.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	j.cancel = cancel

	j.wg.Add(1)
	go j.run(ctx)

	j.logger.Info("Image janitor started",
		zap.Duration("interval", j.config.Interval),
		zap.Duration("age", j.config.Age),
		zap.Int("batch", j.config.Batch),
	)

	return nil
}

// Stop gracefully stops the janitor
func (j *ImageJanitor) Stop(ctx context.Context) error {
	j.mu.Lock()
	if !j.isRunning {
		j.mu.Unlock()
		return nil
	}
	j.isRunning = false
	j.mu.Unlock()

	if j.cancel != nil {
		j.cancel()
	}

	// Wait for the sweep loop to finish with timeout
	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		j.logger.Info("Image janitor stopped gracefully")
		return nil
	case <-ctx.Done():
		j.logger.Warn("Image janitor stop timed out")
		return ctx.Err()
	}
}

// run sweeps on the configured interval until the context is cancelled
func (j *ImageJanitor) run(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Debug("Image janitor loop stopping")
			return
		case <-ticker.C:
			j.executeSweep(ctx)
		}
	}
}

// executeSweep reclaims one batch of abandoned uploads
func (j *ImageJanitor) executeSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, j.config.SweepTimeout)
	defer cancel()

	startTime := time.Now()
	reclaimed, err := j.cleaner.CleanupAbandoned(sweepCtx, j.config.Age, j.config.Batch)
	duration := time.Since(startTime)

	if err != nil {
		j.logger.Error("Abandoned upload sweep failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	if reclaimed > 0 {
		j.logger.Info("Abandoned upload sweep completed",
			zap.Duration("duration", duration),
			zap.Int("reclaimed", reclaimed),
		)
	}
}

// TriggerImmediateSweep triggers an immediate sweep run
func (j *ImageJanitor) TriggerImmediateSweep(ctx context.Context) error {
	j.mu.Lock()
	if !j.isRunning {
		j.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	j.wg.Add(1)
	j.mu.Unlock()

	j.logger.Info("Triggering immediate abandoned upload sweep")

	// Run in a goroutine to not block
	go func() {
		defer j.wg.Done()
		j.executeSweep(ctx)
	}()

	return nil
}

// IsRunning returns whether the janitor is running
func (j *ImageJanitor) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.isRunning
}
