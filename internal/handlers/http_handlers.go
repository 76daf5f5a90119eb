package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SachPlayZ/edu-lottery-shirts/internal/events"
	"github.com/SachPlayZ/edu-lottery-shirts/internal/models"
	"github.com/SachPlayZ/edu-lottery-shirts/internal/platform/metrics"
	"github.com/SachPlayZ/edu-lottery-shirts/internal/raffle"
)

// callerKey is the gin context key the caller middleware stores the
// authenticated identity under.
const callerKey = "caller"

// CallerHeader carries the caller identity. The engine trusts the transport
// in front of it to have authenticated this value.
const CallerHeader = "X-Caller-ID"

// HTTPHandler holds the dependencies for the HTTP handlers.
type HTTPHandler struct {
	engine  *raffle.Engine
	metrics *metrics.Metrics
	bus     *events.Bus
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(engine *raffle.Engine, m *metrics.Metrics, bus *events.Bus) *HTTPHandler {
	return &HTTPHandler{engine: engine, metrics: m, bus: bus}
}

// CallerMiddleware extracts the caller identity from the request header and
// rejects requests without one.
func CallerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetHeader(CallerHeader)
		if caller == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing_caller_identity"})
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// RegisterRoutes registers all the application routes. Mutating routes go
// through the caller middleware; queries are public.
func (h *HTTPHandler) RegisterRoutes(router *gin.Engine, gatherer prometheus.Gatherer) {
	router.GET("/healthz", h.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	router.GET("/events", h.StreamEvents)

	router.GET("/participants/count", h.GetParticipantCount)
	router.GET("/participants/:id", h.GetParticipantInfo)
	router.GET("/participants/:id/winner", h.GetIsWinner)
	router.GET("/winners/count", h.GetWinnerCount)
	router.GET("/winners/latest", h.GetLatestWinner)
	router.GET("/winners/:index", h.GetWinnerByIndex)

	mutating := router.Group("/")
	mutating.Use(CallerMiddleware())
	mutating.POST("/enter", h.Enter)
	mutating.POST("/draw", h.DrawWinner)
	mutating.POST("/reset", h.Reset)
}

// Healthz reports liveness.
func (h *HTTPHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, models.AckResponse{Status: "ok"})
}

// Enter handles POST /enter: registers the caller and returns the allocated
// number.
func (h *HTTPHandler) Enter(c *gin.Context) {
	var req models.EnterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_request_body"})
		return
	}

	number, err := h.engine.Enter(c.GetString(callerKey), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.Registrations.Inc()
	c.JSON(http.StatusOK, models.EnterResponse{Number: number})
}

// DrawWinner handles POST /draw: operator-only.
func (h *HTTPHandler) DrawWinner(c *gin.Context) {
	record, err := h.engine.DrawWinner(c.GetString(callerKey))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.Draws.Inc()
	c.JSON(http.StatusOK, record)
}

// Reset handles POST /reset: operator-only.
func (h *HTTPHandler) Reset(c *gin.Context) {
	if err := h.engine.Reset(c.GetString(callerKey)); err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.Resets.Inc()
	c.JSON(http.StatusOK, models.AckResponse{Status: "reset"})
}

// GetParticipantCount handles GET /participants/count.
func (h *HTTPHandler) GetParticipantCount(c *gin.Context) {
	c.JSON(http.StatusOK, models.CountResponse{Count: h.engine.ParticipantCount()})
}

// GetWinnerCount handles GET /winners/count.
func (h *HTTPHandler) GetWinnerCount(c *gin.Context) {
	c.JSON(http.StatusOK, models.CountResponse{Count: h.engine.WinnerCount()})
}

// GetWinnerByIndex handles GET /winners/:index.
func (h *HTTPHandler) GetWinnerByIndex(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_index"})
		return
	}

	record, err := h.engine.WinnerByIndex(index)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetLatestWinner handles GET /winners/latest.
func (h *HTTPHandler) GetLatestWinner(c *gin.Context) {
	record, err := h.engine.LatestWinner()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetParticipantInfo handles GET /participants/:id. Unknown identities are
// not an error: they come back with zero fields and exists=false.
func (h *HTTPHandler) GetParticipantInfo(c *gin.Context) {
	name, number, exists := h.engine.ParticipantInfo(c.Param("id"))
	c.JSON(http.StatusOK, models.ParticipantInfoResponse{Name: name, Number: number, Exists: exists})
}

// GetIsWinner handles GET /participants/:id/winner.
func (h *HTTPHandler) GetIsWinner(c *gin.Context) {
	c.JSON(http.StatusOK, models.IsWinnerResponse{Winner: h.engine.IsWinner(c.Param("id"))})
}

// StreamEvents handles GET /events as a server-sent event stream of the
// engine's notifications.
func (h *HTTPHandler) StreamEvents(c *gin.Context) {
	ch, cancel := h.bus.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Type), ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// respondError maps engine errors to HTTP statuses, keeping the
// authorization category distinct from precondition failures.
func (h *HTTPHandler) respondError(c *gin.Context, err error) {
	status, reason := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, raffle.ErrUnauthorized):
		status, reason = http.StatusForbidden, "unauthorized"
	case errors.Is(err, raffle.ErrAlreadyRegistered):
		status, reason = http.StatusConflict, "already_registered"
	case errors.Is(err, raffle.ErrPoolExhausted):
		status, reason = http.StatusConflict, "pool_exhausted"
	case errors.Is(err, raffle.ErrNoEligibleParticipants):
		status, reason = http.StatusConflict, "no_eligible_participants"
	case errors.Is(err, raffle.ErrIndexOutOfBounds):
		status, reason = http.StatusNotFound, "index_out_of_bounds"
	case errors.Is(err, raffle.ErrNoWinnersYet):
		status, reason = http.StatusNotFound, "no_winners_yet"
	default:
		logger.Errorf("unexpected engine error: %v", err)
	}
	h.metrics.Rejections.WithLabelValues(reason).Inc()
	c.JSON(status, models.ErrorResponse{Error: reason})
}
