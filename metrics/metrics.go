// Package metrics records Prometheus metrics for fetch runs, storage
// operations and coverage runs.
package metrics

import (
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricsNamespace = "hhscan"
)

var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	apiCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "api_calls_total",
		Help:      "Count of hh.ru API calls",
	}, []string{
		"result",
	})

	fetchRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "fetch_runs_total",
		Help:      "Count of fetch-and-store runs",
	}, []string{
		"result",
	})

	vacanciesStoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "vacancies_stored_total",
		Help:      "Total number of vacancies written to storage",
	})

	storageOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "storage_ops_total",
		Help:      "Count of storage operations",
	}, []string{
		"backend",
		"op",
	})

	coverRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "cover_runs_total",
		Help:      "Count of coverage harness runs",
	}, []string{
		"result",
	})

	coveragePercent = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "coverage_percent",
		Help:      "Total statement coverage reported by the last harness run",
	})

	coverRunDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "cover_run_duration_seconds",
		Help:      "Duration of the last coverage harness run",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	RecordError(label + "." + errToLabel(err))
}

func RecordAPICall(result string) {
	apiCallsTotal.WithLabelValues(result).Inc()
}

func RecordFetchRun(result string, stored int) {
	fetchRunsTotal.WithLabelValues(result).Inc()
	vacanciesStoredTotal.Add(float64(stored))
}

func RecordStorageOp(backend, op string) {
	storageOpsTotal.WithLabelValues(backend, op).Inc()
}

func RecordCoverRun(result string, totalCoverage float64, duration time.Duration) {
	coverRunsTotal.WithLabelValues(result).Inc()
	coveragePercent.Set(totalCoverage)
	coverRunDuration.Set(duration.Seconds())
}
