package metrics

import (
	"time"

	scrapeerrors "sjsage522/eventscraper/pkg/errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "eventscraper"

// Recorder collects per-source and per-run scrape metrics
type Recorder struct {
	sourceEvents   *prometheus.GaugeVec
	sourceFailures *prometheus.CounterVec
	sourceDuration *prometheus.SummaryVec
	lastSuccessTS  *prometheus.GaugeVec
	runsTotal      *prometheus.CounterVec
	runDuration    prometheus.Summary
}

// NewRecorder creates the collectors and registers them with reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{}
	r.sourceEvents = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_events",
		Help:      "Events extracted from a source in its latest pass",
	}, []string{"source"})
	r.sourceFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_failures_total",
		Help:      "Source passes that failed, by error type",
	}, []string{"source", "type"})
	r.sourceDuration = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: namespace,
		Name:      "source_duration_seconds",
		Help:      "Time spent scraping one source",
	}, []string{"source"})
	r.lastSuccessTS = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last source pass without error",
	}, []string{"source"})
	r.runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Aggregation runs by outcome",
	}, []string{"outcome"})
	r.runDuration = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Time spent on a whole aggregation run",
	})

	reg.MustRegister(
		r.sourceEvents, r.sourceFailures, r.sourceDuration,
		r.lastSuccessTS, r.runsTotal, r.runDuration,
	)
	return r
}

// ObserveSource records the outcome of one source pass
func (r *Recorder) ObserveSource(source string, events int, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	r.sourceEvents.WithLabelValues(source).Set(float64(events))
	r.sourceDuration.WithLabelValues(source).Observe(elapsed.Seconds())

	if err != nil {
		errType := string(scrapeerrors.TypeOf(err))
		if errType == "" {
			errType = "unknown"
		}
		r.sourceFailures.WithLabelValues(source, errType).Inc()
		return
	}
	r.lastSuccessTS.WithLabelValues(source).Set(float64(time.Now().Unix()))
}

// ObserveRun records a finished aggregation run
func (r *Recorder) ObserveRun(failed bool, elapsed time.Duration) {
	if r == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	r.runsTotal.WithLabelValues(outcome).Inc()
	r.runDuration.Observe(elapsed.Seconds())
}
