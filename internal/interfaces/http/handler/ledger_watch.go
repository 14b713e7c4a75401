package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	ledgerapp "github.com/govindji/backoffice/internal/application/ledger"
	"github.com/govindji/backoffice/internal/interfaces/http/dto"
)

const (
	// watchEventBufferSize bounds the per-connection event queue. A client
	// that cannot keep up loses events rather than blocking the viewer.
	watchEventBufferSize = 100

	defaultWatchRefreshInterval = 30 * time.Second
	defaultWatchMaxClients      = 100
)

// WatchEvent is one message on a statement watch stream.
type WatchEvent struct {
	Event string `json:"event"`
	Data  string `json:"data"`
	ID    string `json:"id,omitempty"`
}

// LedgerWatchHandler streams live statement updates over Server-Sent Events.
// Each connection owns a StatementViewer: the initial selection fetches the
// statement once, and a refresh ticker refetches it so the client sees
// payments and order changes recorded elsewhere.
type LedgerWatchHandler struct {
	BaseHandler
	fetcher         ledgerapp.StatementFetcher
	viewerConfig    ledgerapp.ViewerConfig
	logger          *zap.Logger
	refreshInterval time.Duration
	maxClients      int64

	clientCount atomic.Int64
}

// LedgerWatchOption configures the LedgerWatchHandler.
type LedgerWatchOption func(*LedgerWatchHandler)

// WithWatchLogger sets the logger for stream lifecycle events.
func WithWatchLogger(logger *zap.Logger) LedgerWatchOption {
	return func(h *LedgerWatchHandler) {
		h.logger = logger
	}
}

// WithWatchRefreshInterval sets how often an idle stream refetches its
// statement.
func WithWatchRefreshInterval(interval time.Duration) LedgerWatchOption {
	return func(h *LedgerWatchHandler) {
		h.refreshInterval = interval
	}
}

// WithWatchMaxClients caps the number of concurrently open streams.
func WithWatchMaxClients(maxClients int64) LedgerWatchOption {
	return func(h *LedgerWatchHandler) {
		h.maxClients = maxClients
	}
}

// NewLedgerWatchHandler creates a watch handler over the given fetcher.
// The viewer config carries the configured debounce and per-fetch timeout.
func NewLedgerWatchHandler(fetcher ledgerapp.StatementFetcher, viewerConfig ledgerapp.ViewerConfig, opts ...LedgerWatchOption) *LedgerWatchHandler {
	h := &LedgerWatchHandler{
		fetcher:         fetcher,
		viewerConfig:    viewerConfig,
		logger:          zap.NewNop(),
		refreshInterval: defaultWatchRefreshInterval,
		maxClients:      defaultWatchMaxClients,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ClientCount returns the number of open streams.
func (h *LedgerWatchHandler) ClientCount() int64 {
	return h.clientCount.Load()
}

// Watch godoc
// @Summary      Watch a party ledger statement
// @Description  Open a Server-Sent Events stream that delivers the reconciled statement on connect and again after each periodic refresh. Events: connected, statement, error
// @Tags         ledger
// @Produce      text/event-stream
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Party ID" format(uuid)
// @Param        date_from query string false "Start of statement date range (ISO 8601)" format(date-time)
// @Param        date_to query string false "End of statement date range (ISO 8601)" format(date-time)
// @Success      200 {string} string "SSE stream"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /parties/{id}/statement/watch [get]
func (h *LedgerWatchHandler) Watch(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	partyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid party ID format")
		return
	}

	var filter ledgerapp.StatementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if h.clientCount.Load() >= h.maxClients {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeTooManyRequests, "Too many open statement streams")
		return
	}
	h.clientCount.Add(1)
	defer h.clientCount.Add(-1)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	events := make(chan WatchEvent, watchEventBufferSize)
	var eventSeq atomic.Uint64
	push := func(evt WatchEvent) {
		select {
		case events <- evt:
		default:
			h.logger.Warn("statement watch buffer full, dropping event",
				zap.String("party_id", partyID.String()),
				zap.String("event", evt.Event),
			)
		}
	}

	viewer := ledgerapp.NewStatementViewer(h.fetcher, h.viewerConfig, h.logger)
	defer viewer.Close()

	viewer.SetOnUpdate(func(statement *ledgerapp.StatementResponse) {
		data, err := json.Marshal(statement)
		if err != nil {
			h.logger.Error("failed to marshal statement for stream",
				zap.String("party_id", partyID.String()),
				zap.Error(err),
			)
			return
		}
		push(WatchEvent{
			Event: "statement",
			Data:  string(data),
			ID:    fmt.Sprintf("%d", eventSeq.Add(1)),
		})
	})
	viewer.SetOnError(func(fetchErr error) {
		data, _ := json.Marshal(gin.H{"error": fetchErr.Error()})
		push(WatchEvent{Event: "error", Data: string(data)})
	})

	connected, _ := json.Marshal(gin.H{
		"party_id":  partyID.String(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
	h.sendEvent(c.Writer, WatchEvent{Event: "connected", Data: string(connected)})
	c.Writer.Flush()

	h.logger.Debug("statement watch opened",
		zap.String("tenant_id", tenantID.String()),
		zap.String("party_id", partyID.String()),
	)

	viewer.Select(ledgerapp.Selection{TenantID: tenantID, PartyID: partyID, Filter: filter})

	ticker := time.NewTicker(h.refreshInterval)
	defer ticker.Stop()

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			h.logger.Debug("statement watch closed",
				zap.String("party_id", partyID.String()),
			)
			return
		case <-ticker.C:
			viewer.Refresh()
		case evt := <-events:
			h.sendEvent(c.Writer, evt)
			c.Writer.Flush()
		}
	}
}

// sendEvent writes one event in SSE wire format.
func (h *LedgerWatchHandler) sendEvent(w io.Writer, evt WatchEvent) {
	if evt.Event != "" {
		fmt.Fprintf(w, "event: %s\n", evt.Event)
	}
	if evt.ID != "" {
		fmt.Fprintf(w, "id: %s\n", evt.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", evt.Data)
}
