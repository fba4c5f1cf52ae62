package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.TasksCreated.Inc()
	m.TasksCreated.Inc()
	m.RemindersSkipped.WithLabelValues("past").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TasksCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemindersSkipped.WithLabelValues("past")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.AlarmsPlayed))
}

func TestHandler(t *testing.T) {
	m := New()
	m.AlarmsPlayed.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_todo_alarms_played_total 1")
	assert.Contains(t, rec.Body.String(), "go_todo_tasks_created_total 0")
}
