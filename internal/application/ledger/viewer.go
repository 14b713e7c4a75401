package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatementFetcher is the slice of StatementService the viewer depends on
type StatementFetcher interface {
	BuildStatement(ctx context.Context, tenantID, partyID uuid.UUID, filter StatementFilter) (*StatementResponse, error)
}

// Selection identifies what the viewer is currently looking at
type Selection struct {
	TenantID uuid.UUID
	PartyID  uuid.UUID
	Filter   StatementFilter
}

// ViewerConfig holds the viewer's timing knobs
type ViewerConfig struct {
	// Debounce is the delay between the last selection change and the fetch
	// it triggers. Changes inside the window supersede each other.
	Debounce time.Duration
	// FetchTimeout bounds a single statement fetch
	FetchTimeout time.Duration
}

const (
	defaultDebounce     = 300 * time.Millisecond
	defaultFetchTimeout = 15 * time.Second
)

func (c ViewerConfig) withDefaults() ViewerConfig {
	if c.Debounce <= 0 {
		c.Debounce = defaultDebounce
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = defaultFetchTimeout
	}
	return c
}

// StatementViewer owns the fetch lifecycle for an interactive client
// inspecting vendor statements. Selection changes are debounced; every
// fetch carries a monotonically increasing request id and a result is
// applied only while its id is still the latest issued, so a slow response
// for one party can never overwrite the statement of the party selected
// after it. A failed fetch records the error and leaves the previously
// delivered statement untouched.
type StatementViewer struct {
	fetcher StatementFetcher
	config  ViewerConfig
	logger  *zap.Logger

	onUpdate func(*StatementResponse)
	onError  func(error)

	mu       sync.Mutex
	timer    *time.Timer
	pending  *Selection
	lastSel  *Selection
	lastSeq  uint64
	current  *StatementResponse
	lastErr  error
	closed   bool
	inflight sync.WaitGroup
}

// NewStatementViewer creates a viewer over the given fetcher
func NewStatementViewer(fetcher StatementFetcher, config ViewerConfig, logger *zap.Logger) *StatementViewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatementViewer{
		fetcher: fetcher,
		config:  config.withDefaults(),
		logger:  logger,
	}
}

// SetOnUpdate registers a callback invoked with each newly applied statement.
// The callback runs outside the viewer's lock.
func (v *StatementViewer) SetOnUpdate(fn func(*StatementResponse)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onUpdate = fn
}

// SetOnError registers a callback invoked when the latest fetch fails
func (v *StatementViewer) SetOnError(fn func(error)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onError = fn
}

// Select points the viewer at a party (or a new filter for the same party).
// The fetch fires after the debounce window; reselecting inside the window
// restarts it, so a burst of changes costs one fetch.
func (v *StatementViewer) Select(sel Selection) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}

	v.pending = &sel
	if v.timer != nil {
		v.timer.Stop()
	}
	v.timer = time.AfterFunc(v.config.Debounce, v.flush)
}

// Refresh refetches the pending or current selection immediately,
// skipping the debounce window.
func (v *StatementViewer) Refresh() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}

	sel := v.pending
	if sel == nil {
		sel = v.lastSel
	}
	if sel == nil {
		v.mu.Unlock()
		return
	}

	if v.timer != nil {
		v.timer.Stop()
	}
	v.pending = nil
	seq := v.issueLocked(*sel)
	v.mu.Unlock()

	go v.fetch(seq, *sel)
}

// Current returns the last successfully applied statement and the error
// state of the latest completed request. The statement stays available
// while the error is non-nil.
func (v *StatementViewer) Current() (*StatementResponse, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current, v.lastErr
}

// Close stops the debounce timer and waits for in-flight fetches to finish
func (v *StatementViewer) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	if v.timer != nil {
		v.timer.Stop()
	}
	v.pending = nil
	v.mu.Unlock()

	v.inflight.Wait()
}

// flush runs when the debounce window elapses
func (v *StatementViewer) flush() {
	v.mu.Lock()
	if v.closed || v.pending == nil {
		v.mu.Unlock()
		return
	}
	sel := *v.pending
	v.pending = nil
	seq := v.issueLocked(sel)
	v.mu.Unlock()

	go v.fetch(seq, sel)
}

// issueLocked assigns the next request id to a selection. Callers hold mu.
func (v *StatementViewer) issueLocked(sel Selection) uint64 {
	v.lastSeq++
	v.lastSel = &sel
	v.inflight.Add(1)
	return v.lastSeq
}

// fetch runs one statement request and applies its outcome
func (v *StatementViewer) fetch(seq uint64, sel Selection) {
	defer v.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), v.config.FetchTimeout)
	defer cancel()

	statement, err := v.fetcher.BuildStatement(ctx, sel.TenantID, sel.PartyID, sel.Filter)
	v.apply(seq, sel, statement, err)
}

// apply records a request's outcome. Results whose id is no longer the
// latest issued are discarded silently: that is the expected fate of a
// fetch superseded by a newer selection, not a failure.
func (v *StatementViewer) apply(seq uint64, sel Selection, statement *StatementResponse, err error) {
	v.mu.Lock()

	if v.closed || seq != v.lastSeq {
		v.mu.Unlock()
		v.logger.Debug("discarding stale statement response",
			zap.Uint64("request_id", seq),
			zap.String("party_id", sel.PartyID.String()),
		)
		return
	}

	var notifyUpdate func(*StatementResponse)
	var notifyError func(error)

	if err != nil {
		// Keep the previously delivered statement; only the error state moves
		v.lastErr = err
		notifyError = v.onError
	} else {
		v.current = statement
		v.lastErr = nil
		notifyUpdate = v.onUpdate
	}
	v.mu.Unlock()

	if err != nil {
		v.logger.Warn("statement fetch failed",
			zap.Uint64("request_id", seq),
			zap.String("party_id", sel.PartyID.String()),
			zap.Error(err),
		)
		if notifyError != nil {
			notifyError(err)
		}
		return
	}

	if notifyUpdate != nil {
		notifyUpdate(statement)
	}
}
