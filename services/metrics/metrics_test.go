package metrics

import (
	"errors"
	"testing"
	"time"

	scrapeerrors "sjsage522/eventscraper/pkg/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSource(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.ObserveSource("Devpost", 12, 2*time.Second, nil)
	r.ObserveSource("Unstop", 0, time.Second, scrapeerrors.NewSourceTimeout("Unstop", 30*time.Second, nil))
	r.ObserveSource("Unstop", 0, time.Second, errors.New("boom"))

	assert.Equal(t, 12.0, testutil.ToFloat64(r.sourceEvents.WithLabelValues("Devpost")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.sourceEvents.WithLabelValues("Unstop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sourceFailures.WithLabelValues("Unstop", "source_timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sourceFailures.WithLabelValues("Unstop", "unknown")))
	assert.Greater(t, testutil.ToFloat64(r.lastSuccessTS.WithLabelValues("Devpost")), 0.0)
	assert.Equal(t, 1, testutil.CollectAndCount(r.lastSuccessTS), "failed sources never record a success")
}

func TestObserveRun(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.ObserveRun(false, time.Second)
	r.ObserveRun(false, time.Second)
	r.ObserveRun(true, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("error")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.runDuration))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveSource("Devfolio", 1, time.Second, nil)
		r.ObserveRun(false, time.Second)
	})
}

func TestDoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg)
	assert.Panics(t, func() { NewRecorder(reg) })
}
