package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDispatch(t *testing.T) {
	r := New()
	r.ObserveDispatch("execute_command", "", true, 10*time.Millisecond)
	r.ObserveDispatch("execute_command", "", false, 20*time.Millisecond)
	r.ObserveDispatch("handle_quick_search_result", "function", true, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.dispatch.WithLabelValues("execute_command", "", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.dispatch.WithLabelValues("execute_command", "", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.dispatch.WithLabelValues("handle_quick_search_result", "function", OutcomeSuccess)))
	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

func TestHandlerExposesSeries(t *testing.T) {
	r := New()
	streams := 2
	r.TrackStreams(func() int { return streams })
	r.ObserveDispatch("open_file", "file", true, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `mira_dispatch_total{entry="open_file",kind="file",outcome="success"} 1`)
	assert.Contains(t, string(body), "mira_window_streams 2")
	assert.Contains(t, string(body), "mira_dispatch_duration_seconds_bucket")
}
