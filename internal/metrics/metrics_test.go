package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New()

	m.SetActiveWatches(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ActiveWatches))

	m.CountEvent("modify")
	m.CountEvent("modify")
	m.CountEvent("create")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChangeEvents.WithLabelValues("modify")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChangeEvents.WithLabelValues("create")))

	m.CountDropped()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsDropped))

	m.ObserveTreeBuild(ModeProject, 2*time.Millisecond, nil)
	m.ObserveTreeBuild(ModeList, time.Millisecond, errors.New("boom"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TreeBuilds.WithLabelValues(ModeProject, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TreeBuilds.WithLabelValues(ModeList, "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.TreeBuildDuration))

	m.RecordRequest("GET", "/api/tree/list", 200)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/tree/list", "200")))

	m.WSConnected()
	m.WSConnected()
	m.WSDisconnected()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WSConnections))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SetActiveWatches(1)
		m.CountEvent("create")
		m.CountDropped()
		m.ObserveTreeBuild(ModeList, time.Second, nil)
		m.RecordRequest("GET", "/", 200)
		m.WSConnected()
		m.WSDisconnected()
	})
	assert.Nil(t, m.Registry())
}

func TestIndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.CountDropped()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.EventsDropped))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.EventsDropped))
}

func TestHandler(t *testing.T) {
	m := New()
	m.SetActiveWatches(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "fsview_active_watches 2")
	assert.Contains(t, string(body), "go_goroutines")
}
