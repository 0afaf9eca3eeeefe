package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(intentTotal.WithLabelValues("send_slack", "rule"))
	IntentClassified("send_slack", "rule")
	assert.Equal(t, before+1, testutil.ToFloat64(intentTotal.WithLabelValues("send_slack", "rule")))

	before = testutil.ToFloat64(dispatchTotal.WithLabelValues("general", OutcomeOK))
	Dispatched("general", OutcomeOK)
	assert.Equal(t, before+1, testutil.ToFloat64(dispatchTotal.WithLabelValues("general", OutcomeOK)))

	before = testutil.ToFloat64(dialogTransitions.WithLabelValues("NEW", "RESOLVED"))
	DialogTransition("NEW", "RESOLVED")
	assert.Equal(t, before+1, testutil.ToFloat64(dialogTransitions.WithLabelValues("NEW", "RESOLVED")))
}

func TestObserveSince(t *testing.T) {
	ObserveSince("test", time.Now().Add(-time.Second))
	assert.Equal(t, 1, testutil.CollectAndCount(collaboratorLatency, "workflowx_collaborator_latency_seconds"))
}
