package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SachPlayZ/edu-lottery-shirts/internal/events"
	"github.com/SachPlayZ/edu-lottery-shirts/internal/models"
	"github.com/SachPlayZ/edu-lottery-shirts/internal/platform/metrics"
	"github.com/SachPlayZ/edu-lottery-shirts/internal/raffle"
	"github.com/SachPlayZ/edu-lottery-shirts/internal/random"
)

const testOperator = "0xoperator"

func newTestRouter(t *testing.T, src random.Source) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := prometheus.NewRegistry()
	bus := events.NewBus()
	engine := raffle.New(testOperator, raffle.DefaultMaxNumber, src, bus)
	h := NewHTTPHandler(engine, metrics.New(registry), bus)

	router := gin.New()
	h.RegisterRoutes(router, registry)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, caller string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if caller != "" {
		req.Header.Set(CallerHeader, caller)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestEnter(t *testing.T) {
	router := newTestRouter(t, random.Fixed(0))

	t.Run("missing caller identity", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/enter", "", models.EnterRequest{Name: "Alice"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "missing_caller_identity", decode[models.ErrorResponse](t, w).Error)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/enter", bytes.NewBufferString("{"))
		req.Header.Set(CallerHeader, "alice")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("successful registration", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/enter", "alice", models.EnterRequest{Name: "Alice"})
		require.Equal(t, http.StatusOK, w.Code)
		// Fixed(0) entropy picks the lowest unassigned number.
		assert.Equal(t, 1, decode[models.EnterResponse](t, w).Number)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/enter", "alice", models.EnterRequest{Name: "Alice"})
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "already_registered", decode[models.ErrorResponse](t, w).Error)
	})
}

func TestDrawAndReset(t *testing.T) {
	router := newTestRouter(t, random.Fixed(0))

	for _, caller := range []string{"alice", "bob"} {
		w := doJSON(t, router, http.MethodPost, "/enter", caller, models.EnterRequest{Name: caller})
		require.Equal(t, http.StatusOK, w.Code)
	}

	t.Run("draw rejects non-operator", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/draw", "mallory", nil)
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "unauthorized", decode[models.ErrorResponse](t, w).Error)
	})

	t.Run("operator draws first eligible", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/draw", testOperator, nil)
		require.Equal(t, http.StatusOK, w.Code)
		record := decode[models.WinnerRecord](t, w)
		assert.Equal(t, "alice", record.Identity)
		assert.Equal(t, 1, record.Number)
	})

	t.Run("draws exhaust eligibility", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/draw", testOperator, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodPost, "/draw", testOperator, nil)
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "no_eligible_participants", decode[models.ErrorResponse](t, w).Error)
	})

	t.Run("reset rejects non-operator", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/reset", "mallory", nil)
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("operator resets", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/reset", testOperator, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodGet, "/participants/count", "", nil)
		assert.Equal(t, 0, decode[models.CountResponse](t, w).Count)
		w = doJSON(t, router, http.MethodGet, "/winners/count", "", nil)
		assert.Equal(t, 0, decode[models.CountResponse](t, w).Count)
	})
}

func TestQueries(t *testing.T) {
	router := newTestRouter(t, random.Fixed(0))

	t.Run("latest winner with none drawn", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/winners/latest", "", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "no_winners_yet", decode[models.ErrorResponse](t, w).Error)
	})

	t.Run("unknown participant yields exists=false", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/participants/ghost", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		info := decode[models.ParticipantInfoResponse](t, w)
		assert.False(t, info.Exists)
		assert.Empty(t, info.Name)
		assert.Zero(t, info.Number)
	})

	w := doJSON(t, router, http.MethodPost, "/enter", "alice", models.EnterRequest{Name: "Alice"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodPost, "/enter", "bob", models.EnterRequest{Name: "Bob"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodPost, "/draw", testOperator, nil)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("participant info", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/participants/alice", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		info := decode[models.ParticipantInfoResponse](t, w)
		assert.True(t, info.Exists)
		assert.Equal(t, "Alice", info.Name)
		assert.Equal(t, 1, info.Number)
	})

	t.Run("is-winner check", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/participants/alice/winner", "", nil)
		assert.True(t, decode[models.IsWinnerResponse](t, w).Winner)
		w = doJSON(t, router, http.MethodGet, "/participants/bob/winner", "", nil)
		assert.False(t, decode[models.IsWinnerResponse](t, w).Winner)
	})

	t.Run("winner by index", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/winners/0", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", decode[models.WinnerRecord](t, w).Identity)
	})

	t.Run("winner index out of bounds", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/winners/5", "", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "index_out_of_bounds", decode[models.ErrorResponse](t, w).Error)
	})

	t.Run("non-numeric winner index", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/winners/abc", "", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("latest winner", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/winners/latest", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", decode[models.WinnerRecord](t, w).Identity)
	})

	t.Run("healthz", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("metrics endpoint serves", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/metrics", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "raffle_registrations_total")
	})
}
