package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordChatTurn("product_show", "product_show")
	m.RecordChatTurn("product_show", "product_show")
	m.RecordLLMRequest("compose", "success", 120*time.Millisecond)
	m.RecordSearch(SearchFallback, 3)
	m.RecordHTTPRequest("/chat", 200, 40*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChatTurnsTotal.WithLabelValues("product_show", "product_show")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("compose", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchTotal.WithLabelValues(SearchFallback)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/chat", "200")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "omnia_chat_turns_total")
	assert.Contains(t, names, "omnia_llm_request_duration_seconds")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordChatTurn("simple_chat", "conversation")
		m.RecordLLMRequest("converse", "error", time.Second)
		m.RecordSearch(SearchError, 0)
		m.RecordHTTPRequest("/chat", 500, time.Second)
	})
}
