package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodbridge/foodbridge/internal/lifecycle"
)

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest("GET", "GET /api/ngo/nearby", 200, 20*time.Millisecond)
	m.ObserveRequest("GET", "GET /api/ngo/nearby", 200, 30*time.Millisecond)
	m.ObserveRequest("GET", "", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "GET /api/ngo/nearby", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestWorkflowCounters(t *testing.T) {
	m := New()

	m.Transition(lifecycle.StatusRequested)
	m.Transition(lifecycle.StatusRequested)
	m.Transition(lifecycle.StatusDelivered)
	m.AssignmentConflict("accept")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("REQUESTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("DELIVERED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflicts.WithLabelValues("accept")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Transition(lifecycle.StatusApproved)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `foodbridge_transitions_total{to="APPROVED"} 1`))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.AssignmentConflict("assign")

	assert.Equal(t, 0.0, testutil.ToFloat64(b.conflicts.WithLabelValues("assign")))
}
