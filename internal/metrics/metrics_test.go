package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCompletion(t *testing.T) {
	m := New()

	m.RecordCompletion("openai", nil, 10*time.Millisecond)
	m.RecordCompletion("openai", errors.New("boom"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CompletionRequestsTotal.WithLabelValues("openai", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CompletionRequestsTotal.WithLabelValues("openai", "error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordTurn("chat")
	m.RecordResolution()
	m.SetActiveSessions(3)
}

func TestIndependentRegistries(t *testing.T) {
	a := New()
	b := New()
	a.RecordTurn("chat")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.TurnsTotal.WithLabelValues("chat")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.TurnsTotal.WithLabelValues("chat")))
}
